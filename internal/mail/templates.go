package mail

import (
	"fmt"
	"html/template"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

const baseTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; max-width: 560px; margin: 0 auto;">
	<h2>Golden Pens</h2>
	<p>Hi {{.Name}},</p>
	{{.Body}}
	<p>If you didn't request this, you can safely ignore this email.</p>
	<p>— The Golden Pens team</p>
</body>
</html>`

var emailTemplate = template.Must(template.New("email").Parse(baseTemplate))

type templateData struct {
	Name string
	Body template.HTML
}

// render fills the base template and derives the plain-text alternative
// from the HTML so the two never drift apart.
func render(to, subject, name string, body string) (*Message, error) {
	var html strings.Builder
	err := emailTemplate.Execute(&html, templateData{
		Name: name,
		//nolint:gosec // Body is built from our own literals plus escaped links
		Body: template.HTML(body),
	})
	if err != nil {
		return nil, fmt.Errorf("render email: %w", err)
	}

	text, err := htmltomarkdown.ConvertString(html.String())
	if err != nil {
		return nil, fmt.Errorf("derive text alternative: %w", err)
	}

	return &Message{To: to, Subject: subject, HTML: html.String(), Text: text}, nil
}

// link builds an escaped anchor element.
func link(url, label string) string {
	return fmt.Sprintf(`<p><a href=%q>%s</a></p>`, url, template.HTMLEscapeString(label))
}

// VerificationEmail asks a new user to confirm their address.
// The link stays valid for the configured action token lifetime.
func VerificationEmail(to, name, verifyURL string) (*Message, error) {
	body := `<p>Welcome to Golden Pens! Confirm your email address to start publishing your stories.</p>` +
		link(verifyURL, "Verify my email")
	return render(to, "Verify your email", name, body)
}

// EmailChangeEmail asks a user to confirm a new address before it replaces
// the current one.
func EmailChangeEmail(to, name, verifyURL string) (*Message, error) {
	body := `<p>You asked to change the email on your Golden Pens account. Confirm the new address to finish.</p>` +
		link(verifyURL, "Confirm new email")
	return render(to, "Confirm your new email", name, body)
}

// ResetEmail carries a password reset link.
func ResetEmail(to, name, resetURL string) (*Message, error) {
	body := `<p>We received a request to reset your Golden Pens password.</p>` +
		link(resetURL, "Reset my password")
	return render(to, "Reset your password", name, body)
}
