package mail

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// Mailer delivers the password-reset email. Implementations report delivery
// failure to the caller instead of swallowing it.
type Mailer interface {
	SendPasswordReset(to, firstName, token, language string) error
}

type SMTPMailer struct {
	dialer       *gomail.Dialer
	from         string
	resetURLBase string
}

func NewSMTPMailer(host string, port int, username, password, from, resetURLBase string) *SMTPMailer {
	return &SMTPMailer{
		dialer:       gomail.NewDialer(host, port, username, password),
		from:         from,
		resetURLBase: resetURLBase,
	}
}

func (m *SMTPMailer) SendPasswordReset(to, firstName, token, language string) error {
	tpl := templateFor(language)
	link := fmt.Sprintf("%s?token=%s", m.resetURLBase, token)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", tpl.subject)
	msg.SetBody("text/plain", tpl.text(firstName, link))
	msg.AddAlternative("text/html", tpl.html(firstName, link))

	return m.dialer.DialAndSend(msg)
}
