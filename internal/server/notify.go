package server

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/alnah/go-folio/internal/assets"
)

// ErrNotify indicates a notification could not be sent.
var ErrNotify = errors.New("notification failed")

// Submission is a validated contact message or comment.
type Submission struct {
	Type       string // "contact" or "comment"
	Name       string
	Email      string
	Message    string
	PostSlug   string
	PostType   string
	ReceivedAt time.Time
}

// IsComment reports whether s is a comment on a document.
func (s Submission) IsComment() bool {
	return s.Type == TypeComment
}

// Notifier tells the site owner about a submission.
type Notifier interface {
	Notify(ctx context.Context, s Submission) error
}

var _ Notifier = (*SMTPNotifier)(nil)

// SMTPSettings configures SMTPNotifier.
type SMTPSettings struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
}

// SendFunc delivers one composed message.
type SendFunc func(ctx context.Context, msg *mail.Msg) error

// smtpTimeout bounds each SMTP exchange when ctx carries no deadline.
const smtpTimeout = 15 * time.Second

// SMTPNotifier sends HTML emails rendered from the contact and comment
// templates.
type SMTPNotifier struct {
	settings SMTPSettings
	loader   assets.AssetLoader
	send     SendFunc
}

// NewSMTPNotifier renders templates from loader (embedded assets when nil).
func NewSMTPNotifier(settings SMTPSettings, loader assets.AssetLoader) *SMTPNotifier {
	if loader == nil {
		loader = assets.NewEmbeddedLoader()
	}
	n := &SMTPNotifier{settings: settings, loader: loader}
	n.send = n.dialAndSend
	return n
}

// emailData is the template context; values are escaped by html/template.
type emailData struct {
	Name       string
	Email      string
	Message    string
	PostType   string
	PostSlug   string
	ReceivedAt string
}

// Notify renders and sends one email.
func (n *SMTPNotifier) Notify(ctx context.Context, s Submission) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrNotify, err)
	}
	msg, err := n.message(s)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotify, err)
	}
	if err := n.send(ctx, msg); err != nil {
		return fmt.Errorf("%w: %v", ErrNotify, err)
	}
	return nil
}

// compose renders the subject and HTML body for s.
func (n *SMTPNotifier) compose(s Submission) (subject, body string, err error) {
	name := assets.ContactEmailTemplate
	subject = "Contact Form: " + s.Name
	if s.IsComment() {
		name = assets.CommentEmailTemplate
		subject = "New Comment on " + s.PostType + ": " + s.PostSlug
	}

	body, err = assets.RenderTemplate(n.loader, name, emailData{
		Name:       s.Name,
		Email:      s.Email,
		Message:    s.Message,
		PostType:   s.PostType,
		PostSlug:   s.PostSlug,
		ReceivedAt: s.ReceivedAt.UTC().Format(time.RFC1123),
	})
	return subject, body, err
}

// message builds the email. An unparsable submitter address only drops the
// Reply-To header.
func (n *SMTPNotifier) message(s Submission) (*mail.Msg, error) {
	subject, body, err := n.compose(s)
	if err != nil {
		return nil, err
	}

	msg := mail.NewMsg()
	if err := msg.From(n.settings.From); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(n.settings.To); err != nil {
		return nil, fmt.Errorf("to address: %w", err)
	}
	_ = msg.ReplyTo(headerValue(s.Email))
	msg.Subject(headerValue(subject))
	msg.SetDate()
	msg.SetMessageID()
	msg.SetBodyString(mail.TypeTextHTML, body)
	return msg, nil
}

// dialAndSend opens one SMTP session per message. The connection timeout
// follows the ctx deadline.
func (n *SMTPNotifier) dialAndSend(ctx context.Context, msg *mail.Msg) error {
	timeout := smtpTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return context.DeadlineExceeded
		}
	}

	opts := []mail.Option{
		mail.WithPort(n.settings.Port),
		mail.WithTimeout(timeout),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if n.settings.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(n.settings.Username),
			mail.WithPassword(n.settings.Password),
		)
	}

	client, err := mail.NewClient(n.settings.Host, opts...)
	if err != nil {
		return err
	}
	return client.DialAndSendWithContext(ctx, msg)
}

// headerValue folds CR and LF so input cannot add headers.
func headerValue(value string) string {
	return strings.NewReplacer("\r", "", "\n", " ").Replace(value)
}
