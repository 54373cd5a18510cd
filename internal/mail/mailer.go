// Package mail is the outbound email boundary. The core only ever sees the
// Mailer interface; SMTP delivery lives behind it.
package mail

import (
	gomail "github.com/wneessen/go-mail"
)

type Mailer interface {
	Send(to, subject, body string) error
}

type SMTPMailer struct {
	host   string
	port   int
	user   string
	pass   string
	sender string
}

func NewSMTP(host string, port int, user, pass, sender string) *SMTPMailer {
	return &SMTPMailer{host: host, port: port, user: user, pass: pass, sender: sender}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.sender); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	opts := []gomail.Option{gomail.WithPort(m.port)}
	if m.user != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(m.user),
			gomail.WithPassword(m.pass),
		)
	}
	c, err := gomail.NewClient(m.host, opts...)
	if err != nil {
		return err
	}
	return c.DialAndSend(msg)
}
