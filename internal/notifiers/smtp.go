package notifiers

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"mime"
	"net"
	"net/smtp"
	"strconv"

	"github.com/sbilibin2017/chat-forum/internal/models"
)

const verificationSubject = "[Chat Forum] Your verification code"

var verificationTemplate = template.Must(template.New("verification").Parse(`<html>
  <body style="font-family: Helvetica, Arial, sans-serif; background-color: #f4f4f4; margin: 0; padding: 0;">
    <div style="max-width: 600px; margin: 40px auto; background-color: #ffffff; padding: 40px; border-radius: 8px;">
      <h2 style="color: #333333; text-align: center;">Welcome to Chat Forum</h2>
      <p style="color: #666666; text-align: center;">Use the code below to finish signing up:</p>
      <div style="background-color: #f8f9fa; border: 1px solid #e9ecef; border-radius: 6px; padding: 20px; margin: 30px 0; text-align: center;">
        <span style="font-size: 32px; font-weight: bold; letter-spacing: 5px; color: #007bff;">{{.Code}}</span>
      </div>
      <p style="font-size: 14px; color: #999999; text-align: center;">This code expires in {{.Minutes}} minutes. Do not share it with anyone.</p>
      <p style="font-size: 14px; color: #999999; text-align: center;">If you did not request this code, you can ignore this email.</p>
    </div>
  </body>
</html>
`))

// SMTPConfig holds mail server settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPNotifier sends verification emails through an SMTP relay.
// smtp.SendMail upgrades to STARTTLS when the server offers it.
type SMTPNotifier struct {
	cfg      SMTPConfig
	sendMail sendMailFunc
}

func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg, sendMail: smtp.SendMail}
}

func (n *SMTPNotifier) Notify(ctx context.Context, notification models.Notification) error {
	msg, err := buildVerificationEmail(n.cfg.From, notification)
	if err != nil {
		return err
	}

	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}
	addr := net.JoinHostPort(n.cfg.Host, strconv.Itoa(n.cfg.Port))

	// net/smtp has no context support; abandon the send when ctx expires.
	errCh := make(chan error, 1)
	go func() {
		errCh <- n.sendMail(addr, auth, n.cfg.From, []string{notification.Email}, msg)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("send mail to %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func buildVerificationEmail(from string, notification models.Notification) ([]byte, error) {
	var body bytes.Buffer
	err := verificationTemplate.Execute(&body, struct {
		Code    string
		Minutes int64
	}{
		Code:    notification.Code,
		Minutes: notification.ExpiresIn / 60,
	})
	if err != nil {
		return nil, fmt.Errorf("render verification email: %w", err)
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "To: %s\r\n", notification.Email)
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", verificationSubject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())

	return msg.Bytes(), nil
}
