package services

import (
	"gopkg.in/gomail.v2"
)

// SMTPEmailSender delivers notification emails over SMTP.
type SMTPEmailSender struct {
	host string
	port int
	user string
	pass string
	from string
}

func NewSMTPEmailSender(host string, port int, user, pass, from string) *SMTPEmailSender {
	if from == "" {
		from = user
	}
	return &SMTPEmailSender{host: host, port: port, user: user, pass: pass, from: from}
}

func (s *SMTPEmailSender) SendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(s.host, s.port, s.user, s.pass)
	return d.DialAndSend(m)
}
