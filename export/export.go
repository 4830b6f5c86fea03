package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"internship-portal/models"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"

	sheetName = "Applications"
)

// ErrUnsupportedFormat is returned for export formats other than csv and xlsx.
var ErrUnsupportedFormat = errors.New("unsupported export format")

var applicationHeaders = []string{
	"Application ID", "Student", "Student No", "Email", "Internship", "Company",
	"Status", "Admin Note", "Submitted At", "Reviewed At",
}

// ContentType returns the MIME type and file extension for a format.
func ContentType(format string) (string, string, error) {
	switch format {
	case FormatCSV, "":
		return "text/csv; charset=utf-8", "csv", nil
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "xlsx", nil
	}
	return "", "", fmt.Errorf("%w %q", ErrUnsupportedFormat, format)
}

// Filename builds the attachment name for an export taken at t.
func Filename(format string, t time.Time) string {
	_, ext, err := ContentType(format)
	if err != nil {
		ext = FormatCSV
	}
	return fmt.Sprintf("applications_%s.%s", t.Format("20060102_150405"), ext)
}

func applicationRow(a models.Application) []string {
	reviewed := ""
	if a.ReviewedAt != nil {
		reviewed = a.ReviewedAt.UTC().Format(time.RFC3339)
	}
	return []string{
		a.ID, a.StudentName, a.StudentNo, a.StudentEmail, a.InternshipTitle, a.Company,
		string(a.Status), a.AdminNote, a.CreatedAt.UTC().Format(time.RFC3339), reviewed,
	}
}

// sanitizeCell neutralises values a spreadsheet would evaluate as a formula.
func sanitizeCell(v string) string {
	if v != "" && strings.ContainsRune("=+-@\t\r", rune(v[0])) {
		return "'" + v
	}
	return v
}

func WriteApplicationsCSV(w io.Writer, apps []models.Application) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(applicationHeaders); err != nil {
		return err
	}
	for _, a := range apps {
		row := applicationRow(a)
		for i := range row {
			row[i] = sanitizeCell(row[i])
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteApplicationsXLSX(w io.Writer, apps []models.Application) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	for i, header := range applicationHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return err
		}
	}

	for r, a := range apps {
		for c, value := range applicationRow(a) {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			// SetCellStr stores text cells, so values are never parsed as formulas
			if err := f.SetCellStr(sheetName, cell, value); err != nil {
				return err
			}
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
	}); err != nil {
		return err
	}

	return f.Write(w)
}

// WriteApplications writes apps in the requested format.
func WriteApplications(w io.Writer, format string, apps []models.Application) error {
	switch format {
	case FormatCSV, "":
		return WriteApplicationsCSV(w, apps)
	case FormatXLSX:
		return WriteApplicationsXLSX(w, apps)
	}
	return fmt.Errorf("%w %q", ErrUnsupportedFormat, format)
}
