package mail

import (
	"bytes"
	"context"
	"fmt"
	"strings"
)

// Templates renders the transactional emails sent by the portal.
type Templates struct {
	AppURL     string
	University string
}

type action struct {
	Label string
	URL   string
}

func (t Templates) build(to, subject string, paragraphs []string, cta *action) (Message, error) {
	var html bytes.Buffer
	if err := email(t.University, subject, paragraphs, cta).Render(context.Background(), &html); err != nil {
		return Message{}, err
	}

	text := strings.Join(paragraphs, "\n\n")
	if cta != nil {
		text += "\n\n" + cta.Label + ": " + cta.URL
	}
	text += "\n\n-- " + t.University + " Internship Office"

	return Message{To: to, Subject: subject, HTMLBody: html.String(), TextBody: text}, nil
}

func (t Templates) link(path string) string {
	return strings.TrimRight(t.AppURL, "/") + path
}

func (t Templates) Welcome(to, name string) (Message, error) {
	return t.build(to, "Welcome to the "+t.University+" internship portal", []string{
		fmt.Sprintf("Hi %s,", name),
		"Your account has been created. You can now browse open internships and submit applications.",
	}, &action{Label: "Browse internships", URL: t.link("/internships")})
}

func (t Templates) ApplicationReceived(to, name, title, company string) (Message, error) {
	return t.build(to, "Application received: "+title, []string{
		fmt.Sprintf("Hi %s,", name),
		fmt.Sprintf("We received your application for %s at %s. You will be notified when its status changes.", title, company),
	}, &action{Label: "View my applications", URL: t.link("/applications")})
}

func (t Templates) ApplicationStatusChanged(to, name, title, company, status, note string) (Message, error) {
	paragraphs := []string{
		fmt.Sprintf("Hi %s,", name),
		fmt.Sprintf("Your application for %s at %s is now: %s.", title, company, humanStatus(status)),
	}
	if note != "" {
		paragraphs = append(paragraphs, "Note from the internship office: "+note)
	}
	return t.build(to, "Application update: "+title, paragraphs,
		&action{Label: "View application", URL: t.link("/applications")})
}

func (t Templates) EvaluationPosted(to, name, title, grade string, score int) (Message, error) {
	return t.build(to, "Internship evaluation posted", []string{
		fmt.Sprintf("Hi %s,", name),
		fmt.Sprintf("Your evaluation for %s has been posted. Score: %d, grade: %s.", title, score, grade),
	}, &action{Label: "View evaluation", URL: t.link("/evaluations")})
}

func (t Templates) PasswordReset(to, name, token string) (Message, error) {
	return t.build(to, "Reset your password", []string{
		fmt.Sprintf("Hi %s,", name),
		"Someone requested a password reset for your account. The link below is valid for 30 minutes.",
		"If you did not request this, you can ignore this email.",
	}, &action{Label: "Reset password", URL: t.link("/reset-password?token=" + token)})
}

func humanStatus(status string) string {
	return strings.ReplaceAll(status, "_", " ")
}
