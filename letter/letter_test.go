package letter

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_EscapesValues(t *testing.T) {
	html, err := Render(context.Background(), Data{
		University:      "State University",
		Date:            time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		Company:         "Acme & Sons",
		InternshipTitle: "Backend <Intern>",
		StartDate:       "2025-06-01",
		EndDate:         "2025-08-31",
		StudentName:     `Budi "Bobby" Santoso`,
		StudentNo:       "2021-0042",
		CoverLetter:     "First paragraph.\n\n<script>alert('x')</script>\n\nLine one\nLine two",
	})
	require.NoError(t, err)
	out := string(html)

	assert.Contains(t, out, "14 March 2025")
	assert.Contains(t, out, "Acme &amp; Sons")
	assert.Contains(t, out, "Backend &lt;Intern&gt;")
	assert.Contains(t, out, "Budi &#34;Bobby&#34; Santoso")
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "<p>First paragraph.</p>")
	assert.Contains(t, out, "Line one<br>Line two")
	assert.NotContains(t, out, "Phone", "empty rows are omitted")
}

func TestParagraphs(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Paragraphs("a\r\n\r\n\n\nb\n\n  \n"))
	assert.Nil(t, Paragraphs("   "))
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "application-letter-budi-santoso-acme-sons.html", Filename("Budi Santoso", "Acme & Sons!"))
	assert.Equal(t, "application-letter-application.html", Filename("", "***"))
}

func TestRender_StopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Render(ctx, Data{StudentName: "Budi"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLetter_Document(t *testing.T) {
	html, err := Render(context.Background(), Data{
		University: "State University", Company: "Acme", Location: "Bandung",
		StudentName: "Budi", Phone: "0812",
	})
	require.NoError(t, err)
	out := string(html)

	assert.True(t, strings.HasPrefix(out, "<!doctype html>"))
	assert.Contains(t, out, "The Hiring Manager<br>Acme<br>Bandung</p>")
	assert.Contains(t, out, "<tr><td>Phone</td><td>: 0812</td></tr>")
	assert.True(t, strings.HasSuffix(out, "</body></html>"))
}
