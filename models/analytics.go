package models

type Dashboard struct {
	Students             int               `json:"students"`
	Admins               int               `json:"admins"`
	InternshipsOpen      int               `json:"internships_open"`
	InternshipsClosed    int               `json:"internships_closed"`
	ApplicationsByStatus map[string]int    `json:"applications_by_status"`
	TotalApplications    int               `json:"total_applications"`
	NoticesPublished     int               `json:"notices_published"`
	Evaluations          int               `json:"evaluations"`
	AverageScore         float64           `json:"average_score"`
	AcceptanceRate       float64           `json:"acceptance_rate"`
	TopInternships       []InternshipCount `json:"top_internships"`
	MonthlyApplications  []MonthlyCount    `json:"monthly_applications"`
}

type InternshipCount struct {
	InternshipID string `json:"internship_id"`
	Title        string `json:"title"`
	Company      string `json:"company"`
	Applications int    `json:"applications"`
}

type MonthlyCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}
