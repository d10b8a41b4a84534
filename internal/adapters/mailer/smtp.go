package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"westport-blog/internal/domain"
	"westport-blog/internal/infra/metrics"
)

// SMTP отправляет письма по одному получателю через одно соединение.
// Соединение открывается при первой отправке.
type SMTP struct {
	host     string
	port     int
	user     string
	password string
	from     mail.Address
	now      func() time.Time

	mu     sync.Mutex
	client *smtp.Client
}

var _ domain.Mailer = (*SMTP)(nil)

func NewSMTP(host string, port int, user, password, fromName string) *SMTP {
	return &SMTP{
		host:     host,
		port:     port,
		user:     user,
		password: password,
		from:     mail.Address{Name: fromName, Address: user},
		now:      time.Now,
	}
}

func (s *SMTP) Send(ctx context.Context, msg domain.Message) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	defer func() {
		metrics.ObserveNetworkRequest("smtp", "send", s.host, start, err)
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		c, err := s.dial(ctx)
		if err != nil {
			return fmt.Errorf("smtp подключение: %w", err)
		}
		s.client = c
	}
	if err := s.deliver(msg); err != nil {
		// После сбоя сеанс сбрасывается; если и это не удалось, следующая отправка переподключится.
		if rerr := s.client.Reset(); rerr != nil {
			_ = s.client.Close()
			s.client = nil
		}
		return err
	}
	return nil
}

func (s *SMTP) deliver(msg domain.Message) error {
	if err := s.client.Mail(s.from.Address); err != nil {
		return fmt.Errorf("MAIL FROM: %w", err)
	}
	if err := s.client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("RCPT TO %s: %w", msg.To, err)
	}
	w, err := s.client.Data()
	if err != nil {
		return fmt.Errorf("DATA: %w", err)
	}
	if _, err := w.Write(BuildMessage(s.from, msg, s.now())); err != nil {
		_ = w.Close()
		return fmt.Errorf("запись письма: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("завершение DATA: %w", err)
	}
	return nil
}

func (s *SMTP) dial(ctx context.Context) (*smtp.Client, error) {
	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))
	d := net.Dialer{Timeout: 15 * time.Second}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	c, err := smtp.NewClient(conn, s.host)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.host, MinVersion: tls.VersionTLS12}); err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("STARTTLS: %w", err)
		}
	}
	if s.user != "" && s.password != "" {
		if err := c.Auth(smtp.PlainAuth("", s.user, s.password, s.host)); err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("AUTH: %w", err)
		}
	}
	return c, nil
}

// Close завершает сеанс, если он был открыт.
func (s *SMTP) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		return nil
	}
	err := s.client.Quit()
	if err != nil {
		_ = s.client.Close()
	}
	s.client = nil
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

// BuildMessage собирает RFC 5322 письмо с единственным получателем в To.
func BuildMessage(from mail.Address, msg domain.Message, now time.Time) []byte {
	var buf bytes.Buffer
	header := func(k, v string) {
		buf.WriteString(k)
		buf.WriteString(": ")
		buf.WriteString(v)
		buf.WriteString("\r\n")
	}
	header("From", from.String())
	header("To", (&mail.Address{Address: msg.To}).String())
	header("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	header("Date", now.Format(time.RFC1123Z))
	header("Message-ID", "<"+uuid.NewString()+"@"+domainOf(from.Address)+">")
	if msg.Unsubscribe != "" {
		header("List-Unsubscribe", "<"+msg.Unsubscribe+">")
	}
	header("MIME-Version", "1.0")
	header("Content-Type", "text/html; charset=utf-8")
	header("Content-Transfer-Encoding", "8bit")
	buf.WriteString("\r\n")
	buf.WriteString(msg.HTML)
	return buf.Bytes()
}

func domainOf(addr string) string {
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == '@' {
			return addr[i+1:]
		}
	}
	return "localhost"
}
