package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/sakif/dailylog/internal/config"
	"github.com/sakif/dailylog/internal/model"
)

const (
	entrySubjectPrefix = "New Daily Logger Entry: "
	testSubject        = "Daily Logger Test Email"
)

var entryTemplate = template.Must(template.New("entry").Funcs(template.FuncMap{
	"nl2br": nl2br,
}).Parse(`<h2>New Daily Logger Entry</h2>
<p><strong>Date:</strong> {{.Date}}</p>
<p><strong>Title:</strong> {{.Title}}</p>
<p><strong>Category:</strong> {{.Category}}</p>
<p><strong>Understanding Level:</strong> {{.Importance}}/5</p>
<h3>Content:</h3>
<p>{{nl2br .Content}}</p>
`))

const testBody = `<h2>Test Email</h2>
<p>This is a test email from your Daily Logger application.</p>
<p>If you received this, your email configuration is working correctly!</p>
`

// nl2br escapes s and turns line breaks into <br> tags.
func nl2br(s string) template.HTML {
	escaped := template.HTMLEscapeString(strings.ReplaceAll(s, "\r\n", "\n"))
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
}

type entryView struct {
	Date       string
	Title      string
	Category   string
	Importance int
	Content    string
}

// renderEntry builds the subject and HTML body announcing e. Dates are shown
// in loc.
func renderEntry(e model.Entry, loc *time.Location) (subject, body string, err error) {
	if loc == nil {
		loc = time.Local
	}

	var buf bytes.Buffer
	err = entryTemplate.Execute(&buf, entryView{
		Date:       e.Timestamp.In(loc).Format("Mon, 02 Jan 2006 15:04 MST"),
		Title:      e.Title,
		Category:   e.Category.DisplayName(),
		Importance: e.Importance,
		Content:    e.Content,
	})
	if err != nil {
		return "", "", fmt.Errorf("notify: rendering entry %s: %w", e.ID, err)
	}
	return entrySubjectPrefix + e.Title, buf.String(), nil
}

// sender is the part of *mail.Client the Mailer uses.
type sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// Mailer is the SMTP Notifier.
type Mailer struct {
	client sender
	from   string
	to     []string
	loc    *time.Location
}

var _ Notifier = (*Mailer)(nil)

// NewMailer builds a Mailer from the email configuration.
//
// TLS:
// With Secure set the connection is TLS from the first byte (SMTPS, usually
// port 465). Otherwise STARTTLS is used when the server offers it, which is
// what port 587 expects.
func NewMailer(cfg config.EmailConfig, timeout time.Duration, loc *time.Location) (*Mailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTimeout(timeout),
	}
	if cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.User),
			mail.WithPassword(cfg.Password),
		)
	}
	if cfg.Secure {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("notify: creating smtp client: %w", err)
	}

	return newMailer(client, cfg.Sender(), cfg.To, loc), nil
}

func newMailer(client sender, from, to string, loc *time.Location) *Mailer {
	var rcpts []string
	for _, addr := range strings.Split(to, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			rcpts = append(rcpts, addr)
		}
	}
	return &Mailer{client: client, from: from, to: rcpts, loc: loc}
}

func (m *Mailer) Enabled() bool { return true }

// NotifyEntry emails the entry summary to the configured recipients.
func (m *Mailer) NotifyEntry(ctx context.Context, e model.Entry) error {
	subject, body, err := renderEntry(e, m.loc)
	if err != nil {
		return err
	}
	return m.send(ctx, subject, body)
}

// SendTest emails a fixed test message.
func (m *Mailer) SendTest(ctx context.Context) error {
	return m.send(ctx, testSubject, testBody)
}

func (m *Mailer) send(ctx context.Context, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("notify: from address %q: %w", m.from, err)
	}
	if err := msg.To(m.to...); err != nil {
		return fmt.Errorf("notify: recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetDate()
	msg.SetBodyString(mail.TypeTextHTML, body)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("notify: sending %q: %w", subject, err)
	}
	return nil
}
