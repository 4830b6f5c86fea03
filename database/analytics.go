package database

import (
	"database/sql"
	"internship-portal/models"
	"time"
)

// ==================== ANALYTICS ====================

// DashboardStats aggregates the admin dashboard figures. The monthly series
// always holds exactly months entries, oldest first, ending with the current month.
func (r *Repository) DashboardStats(months int) (*models.Dashboard, error) {
	d := &models.Dashboard{
		ApplicationsByStatus: make(map[string]int),
		TopInternships:       make([]models.InternshipCount, 0),
		MonthlyApplications:  make([]models.MonthlyCount, 0),
	}

	counts := []struct {
		dest  *int
		query string
		args  []any
	}{
		{&d.Students, `SELECT COUNT(*) FROM users WHERE role = ?`, []any{string(models.RoleStudent)}},
		{&d.Admins, `SELECT COUNT(*) FROM users WHERE role = ?`, []any{string(models.RoleAdmin)}},
		{&d.InternshipsOpen, `SELECT COUNT(*) FROM internships WHERE status = ?`, []any{string(models.InternshipOpen)}},
		{&d.InternshipsClosed, `SELECT COUNT(*) FROM internships WHERE status = ?`, []any{string(models.InternshipClosed)}},
		{&d.NoticesPublished, `SELECT COUNT(*) FROM notices WHERE published = 1`, nil},
		{&d.Evaluations, `SELECT COUNT(*) FROM evaluations`, nil},
	}
	for _, c := range counts {
		n, err := r.count(c.query, c.args...)
		if err != nil {
			return nil, err
		}
		*c.dest = n
	}

	rows, err := r.db.Query(`SELECT status, COUNT(*) FROM applications GROUP BY status`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			rows.Close()
			return nil, err
		}
		d.ApplicationsByStatus[status] = n
		d.TotalApplications += n
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var avg sql.NullFloat64
	if err := r.db.QueryRow(`SELECT AVG(score) FROM evaluations`).Scan(&avg); err != nil {
		return nil, err
	}
	d.AverageScore = avg.Float64

	decided := d.ApplicationsByStatus[string(models.ApplicationAccepted)] +
		d.ApplicationsByStatus[string(models.ApplicationRejected)]
	if decided > 0 {
		d.AcceptanceRate = float64(d.ApplicationsByStatus[string(models.ApplicationAccepted)]) / float64(decided)
	}

	top, err := r.db.Query(`
		SELECT i.id, i.title, i.company, COUNT(a.id) AS n
		FROM internships i JOIN applications a ON a.internship_id = i.id
		WHERE a.status != ?
		GROUP BY i.id ORDER BY n DESC, i.title ASC LIMIT 10
	`, string(models.ApplicationWithdrawn))
	if err != nil {
		return nil, err
	}
	for top.Next() {
		var ic models.InternshipCount
		if err := top.Scan(&ic.InternshipID, &ic.Title, &ic.Company, &ic.Applications); err != nil {
			top.Close()
			return nil, err
		}
		d.TopInternships = append(d.TopInternships, ic)
	}
	top.Close()
	if err := top.Err(); err != nil {
		return nil, err
	}

	series, err := r.monthlyApplications(time.Now().UTC(), months)
	if err != nil {
		return nil, err
	}
	d.MonthlyApplications = series
	return d, nil
}

// monthlyApplications counts applications per month for the months ending
// with the month of now. Months without applications are reported as zero.
func (r *Repository) monthlyApplications(now time.Time, months int) ([]models.MonthlyCount, error) {
	if months <= 0 {
		return make([]models.MonthlyCount, 0), nil
	}
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)

	// created_at is stored as "YYYY-MM-DD hh:mm:ss..." so the first 7 chars are the month
	rows, err := r.db.Query(`
		SELECT substr(created_at, 1, 7) AS month, COUNT(*)
		FROM applications WHERE created_at >= ?
		GROUP BY month
	`, start.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byMonth := make(map[string]int)
	for rows.Next() {
		var month string
		var n int
		if err := rows.Scan(&month, &n); err != nil {
			return nil, err
		}
		byMonth[month] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	series := make([]models.MonthlyCount, 0, months)
	for m := 0; m < months; m++ {
		month := start.AddDate(0, m, 0).Format("2006-01")
		series = append(series, models.MonthlyCount{Month: month, Count: byMonth[month]})
	}
	return series, nil
}
