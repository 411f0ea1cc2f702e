package registration

import (
	"fmt"
	"io"
	"os"
	"strconv"

	gomail "gopkg.in/gomail.v2"
)

// Attachment e-postaya eklenecek tek bir dosya.
type Attachment struct {
	Filename string
	MIMEType string
	Content  []byte
}

// Message gönderilecek e-posta.
type Message struct {
	Subject     string
	To          []string
	TextBody    string
	HTMLBody    string
	Attachments []Attachment
}

// Mailer e-posta gönderim soyutlaması; testlerde kaydedici (recording)
// bir implementasyonla değiştirilir.
type Mailer interface {
	Send(message *Message) error
}

// SMTPMailer gomail üzerinden gerçek SMTP gönderimi yapar.
type SMTPMailer struct {
	host string
	port int
	user string
	pass string
	from string
}

// NewSMTPMailerFromEnv SMTP ayarlarını ortam değişkenlerinden okur.
func NewSMTPMailerFromEnv() *SMTPMailer {
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		port = 587
	}
	return &SMTPMailer{
		host: os.Getenv("SMTP_HOST"),
		port: port,
		user: os.Getenv("SMTP_USER"),
		pass: os.Getenv("SMTP_PASSWORD"),
		from: os.Getenv("SMTP_FROM"),
	}
}

// CheckConfig zorunlu SMTP ayarlarının varlığını doğrular.
func (m *SMTPMailer) CheckConfig() error {
	if m.host == "" || m.from == "" {
		return fmt.Errorf("SMTP_HOST ve SMTP_FROM tanımlı olmalı")
	}
	return nil
}

// Send mesajı SMTP üzerinden gönderir.
func (m *SMTPMailer) Send(message *Message) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", message.To...)
	msg.SetHeader("Subject", message.Subject)
	msg.SetBody("text/plain", message.TextBody)
	if message.HTMLBody != "" {
		msg.AddAlternative("text/html", message.HTMLBody)
	}
	for _, attachment := range message.Attachments {
		content := attachment.Content
		msg.Attach(attachment.Filename,
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(content)
				return err
			}),
			gomail.SetHeader(map[string][]string{
				"Content-Type": {attachment.MIMEType},
			}),
		)
	}
	dialer := gomail.NewDialer(m.host, m.port, m.user, m.pass)
	return dialer.DialAndSend(msg)
}

var _ Mailer = (*SMTPMailer)(nil)
