package email

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"
)

// Mailer sends plain-text email over SMTP. When no host is configured it
// logs the message to the console instead, so the reset-password and
// contact flows stay testable without credentials.
type Mailer struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func New(host, port, username, password, from string) *Mailer {
	return &Mailer{Host: host, Port: port, Username: username, Password: password, From: from}
}

// Send delivers one message. Errors are returned so callers can decide
// whether delivery failure matters (the reset flow only logs them).
func (m *Mailer) Send(to, subject, body string) error {
	if m.Host == "" {
		// Placeholder mode: log the email so it can be "seen" in development.
		log.Println("====================================================")
		log.Printf("--- OUTGOING EMAIL (log-only mode) ---")
		log.Printf("To: %s", to)
		log.Printf("Subject: %s", subject)
		log.Println("--- Body ---")
		log.Println(body)
		log.Println("====================================================")
		return nil
	}

	var msg strings.Builder
	msg.WriteString("From: " + m.From + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := m.Host + ":" + m.Port
	auth := smtp.PlainAuth("", m.Username, m.Password, m.Host)
	return smtp.SendMail(addr, auth, m.From, []string{to}, []byte(msg.String()))
}

// SendPasswordReset emails the time-boxed reset token to the user.
func (m *Mailer) SendPasswordReset(to, token string) error {
	subject := "Réinitialisation de votre mot de passe"
	body := fmt.Sprintf(
		"Bonjour,\n\nVotre code de réinitialisation est : %s\n\nCe code expire dans 15 minutes. Si vous n'êtes pas à l'origine de cette demande, ignorez ce message.",
		token,
	)
	return m.Send(to, subject, body)
}
