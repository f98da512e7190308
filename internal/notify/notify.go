// Package notify delivers hunt milestones to external notification
// services. Delivery is best-effort by design: a failed notification is
// logged and dropped, never allowed to affect the race.
package notify

import (
	"github.com/containrrr/shoutrrr"
	"github.com/containrrr/shoutrrr/pkg/router"
	"github.com/containrrr/shoutrrr/pkg/types"

	"github.com/ademaro/fiphunt/internal/logging"
)

// Notifier sends a titled message to the configured services.
type Notifier interface {
	Send(title, body string)
}

// Sender fans a message out to every configured service URL.
type Sender struct {
	router *router.ServiceRouter
	log    *logging.Logger
}

// NewSender builds a sender from shoutrrr service URLs. An empty list is an
// error; callers that may have no URLs configured should fall back to Nop.
func NewSender(urls []string, log *logging.Logger) (*Sender, error) {
	r, err := shoutrrr.CreateSender(urls...)
	if err != nil {
		return nil, err
	}
	return &Sender{router: r, log: log}, nil
}

// Send delivers the message to all services. Per-service failures are
// logged and swallowed.
func (s *Sender) Send(title, body string) {
	params := &types.Params{"title": title}
	for _, err := range s.router.Send(body, params) {
		if err != nil {
			s.log.Warn("notification delivery failed", "error", err)
		}
	}
}

// Nop is a Notifier that discards everything, used when no service URLs
// are configured.
type Nop struct{}

// Send does nothing.
func (Nop) Send(title, body string) {}
