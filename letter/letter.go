package letter

import (
	"bytes"
	"context"
	"strings"
	"time"
)

// Data is everything printed on an application letter.
type Data struct {
	University      string
	Date            time.Time
	Company         string
	Location        string
	InternshipTitle string
	StartDate       string
	EndDate         string
	StudentName     string
	StudentNo       string
	Department      string
	Email           string
	Phone           string
	CoverLetter     string
}

// Paragraphs splits the cover letter on blank lines, dropping empty ones.
func Paragraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func lines(paragraph string) []string {
	return strings.Split(paragraph, "\n")
}

// Render returns the letter as a standalone HTML document.
func Render(ctx context.Context, d Data) ([]byte, error) {
	var buf bytes.Buffer
	if err := Letter(d).Render(ctx, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Filename is the download name for a letter.
func Filename(studentName, company string) string {
	slug := func(s string) string {
		s = strings.ToLower(strings.TrimSpace(s))
		var b strings.Builder
		dash := false
		for _, r := range s {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
				b.WriteRune(r)
				dash = false
			} else if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
		return strings.Trim(b.String(), "-")
	}
	name := strings.Trim(slug(studentName)+"-"+slug(company), "-")
	if name == "" {
		name = "application"
	}
	return "application-letter-" + name + ".html"
}
