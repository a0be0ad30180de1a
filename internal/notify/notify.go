// Package notify delivers "new entry" notifications.
//
// Delivery is split in two:
//   - a Notifier knows HOW to send (SMTP via Mailer, or Disabled)
//   - a Queue decides WHEN: it takes entries off the request path and hands
//     them to the Notifier from background workers, with retries
//
// A failed or dropped notification never fails the request that created the
// entry. It is logged and counted, nothing more.
package notify

import (
	"context"
	"errors"
	"time"

	"github.com/sakif/dailylog/internal/config"
	"github.com/sakif/dailylog/internal/model"
)

// ErrDisabled is returned by SendTest when no SMTP transport is configured.
var ErrDisabled = errors.New("notify: email is not configured")

// Notifier sends notifications about journal activity.
type Notifier interface {
	// NotifyEntry announces a newly created entry.
	NotifyEntry(ctx context.Context, entry model.Entry) error
	// SendTest sends a fixed message to check the transport end to end.
	SendTest(ctx context.Context) error
	// Enabled reports whether notifications actually go anywhere.
	Enabled() bool
}

// Disabled is the Notifier used when email is not configured. Entry
// notifications are silently discarded.
type Disabled struct{}

var _ Notifier = Disabled{}

func (Disabled) NotifyEntry(context.Context, model.Entry) error { return nil }
func (Disabled) SendTest(context.Context) error                 { return ErrDisabled }
func (Disabled) Enabled() bool                                  { return false }

// FromConfig returns a Mailer when an SMTP host is configured and Disabled
// otherwise.
func FromConfig(cfg config.EmailConfig, timeout time.Duration, loc *time.Location) (Notifier, error) {
	if !cfg.Enabled() {
		return Disabled{}, nil
	}
	m, err := NewMailer(cfg, timeout, loc)
	if err != nil {
		return nil, err
	}
	return m, nil
}
