package email

import (
	"fmt"
	"io"

	"gopkg.in/gomail.v2"

	"CafePOS/Config"
)

type Attachment struct {
	Name    string
	Content []byte
}

type Message struct {
	To          []string
	CC          []string
	Subject     string
	Body        string
	IsHTML      bool
	Attachments []Attachment
}

// SendEmail delivers a message through the configured SMTP server.
func SendEmail(config Config.MailConfig, message Message) error {
	if config.Host == "" {
		return fmt.Errorf("smtp host is not configured")
	}
	if len(message.To) == 0 {
		return fmt.Errorf("email has no recipients")
	}

	from := config.From
	if from == "" {
		from = config.Username
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", from, config.FromName)
	m.SetHeader("To", message.To...)
	if len(message.CC) > 0 {
		m.SetHeader("Cc", message.CC...)
	}
	m.SetHeader("Subject", message.Subject)
	if message.IsHTML {
		m.SetBody("text/html", message.Body)
	} else {
		m.SetBody("text/plain", message.Body)
	}
	for _, a := range message.Attachments {
		content := a.Content
		m.Attach(a.Name, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(content)
			return err
		}))
	}

	d := gomail.NewDialer(config.Host, config.Port, config.Username, config.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
