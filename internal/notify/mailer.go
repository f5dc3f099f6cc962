package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strings"
	"time"
)

// Message is a plain text mail.
type Message struct {
	To      string
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, m Message) error
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
	// Timeout bounds a delivery when the caller's context has no deadline.
	Timeout time.Duration
}

// SMTPMailer delivers mail through an SMTP relay, upgrading to TLS when the
// server offers STARTTLS.
type SMTPMailer struct {
	conf SMTPConfig
}

func NewSMTPMailer(conf SMTPConfig) *SMTPMailer {
	if conf.Port == "" {
		conf.Port = "587"
	}
	if conf.From == "" {
		conf.From = conf.Username
	}
	if conf.Timeout <= 0 {
		conf.Timeout = DefaultTimeout
	}
	return &SMTPMailer{conf: conf}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.conf.Timeout)
		defer cancel()
	}
	addr := net.JoinHostPort(m.conf.Host, m.conf.Port)

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}
	// a relay that stalls mid conversation fails at the deadline
	deadline, _ := ctx.Deadline()
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return fmt.Errorf("smtp deadline: %w", err)
	}

	client, err := smtp.NewClient(conn, m.conf.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if err = client.Hello("localhost"); err != nil {
		return err
	}
	if ok, _ := client.Extension("STARTTLS"); ok {
		if err = client.StartTLS(&tls.Config{ServerName: m.conf.Host}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}
	if m.conf.Username != "" {
		if ok, _ := client.Extension("AUTH"); ok {
			auth := smtp.PlainAuth("", m.conf.Username, m.conf.Password, m.conf.Host)
			if err = client.Auth(auth); err != nil {
				return fmt.Errorf("smtp auth: %w", err)
			}
		}
	}
	if err = client.Mail(m.conf.From); err != nil {
		return err
	}
	if err = client.Rcpt(msg.To); err != nil {
		return err
	}
	wc, err := client.Data()
	if err != nil {
		return err
	}
	if _, err = wc.Write(m.format(msg)); err != nil {
		return err
	}
	if err = wc.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func (m *SMTPMailer) format(msg Message) []byte {
	from := &mail.Address{Name: oneLine(m.conf.FromName), Address: oneLine(m.conf.From)}
	to := &mail.Address{Address: oneLine(msg.To)}

	var b strings.Builder
	b.WriteString("From: " + from.String() + "\r\n")
	b.WriteString("To: " + to.String() + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", oneLine(msg.Subject)) + "\r\n")
	b.WriteString("Date: " + time.Now().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	return []byte(b.String())
}

func oneLine(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}

// LogMailer writes mails to the log instead of sending them.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, m Message) error {
	log.Printf("mail to=%s subject=%q\n%s", m.To, m.Subject, m.Body)
	return nil
}
