package enforcer

import (
	"context"
	"fmt"
	"time"

	"mercator-hq/warden/pkg/policy/override"
	"mercator-hq/warden/pkg/policy/validator"
	"mercator-hq/warden/pkg/telemetry/logging"
)

// HandleMessage dispatches a UI message from sender.
//
// A RequestMessage yields the sender tab's stored actions; the other
// messages yield a nil response.
func (e *Enforcer) HandleMessage(ctx context.Context, sender Sender, msg Message) (*Response, error) {
	ctx = logging.WithTabID(ctx, sender.TabID)

	resp, err := e.dispatch(ctx, sender, msg)

	category := "unknown"
	if msg != nil {
		category = string(msg.Category())
	}
	status := "ok"
	if err != nil {
		status = "error"
		e.logger.WarnContext(ctx, "message rejected", "category", category, "origin", sender.Origin, "error", err)
	}
	e.metrics.RecordMessage(category, status)

	return resp, err
}

func (e *Enforcer) dispatch(ctx context.Context, sender Sender, msg Message) (*Response, error) {
	switch m := msg.(type) {
	case RequestMessage:
		actions, ok := e.tabs.Get(sender.TabID)
		if !ok {
			return &Response{}, nil
		}
		return &Response{Response: actions}, nil

	case DisclaimerAcceptance:
		d, err := m.TTL()
		if err != nil {
			return nil, err
		}
		return nil, e.grant(ctx, e.disclaimers, sender, d)

	case StickyCancellation:
		d, err := m.TTL()
		if err != nil {
			return nil, err
		}
		return nil, e.grant(ctx, e.sticky, sender, d)

	case nil:
		return nil, ErrMalformedMessage

	default:
		return nil, ErrUnknownCategory
	}
}

// grant stores now+d under the sender origin's hostname, replacing any
// earlier grant.
func (e *Enforcer) grant(ctx context.Context, store *override.Store, sender Sender, d time.Duration) error {
	host, ok := validator.Hostname(sender.Origin)
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidSender, logging.RedactURL(sender.Origin))
	}

	expiry := store.Grant(host, e.now(), d)

	kind := string(store.Kind())
	e.metrics.RecordOverride(kind)
	e.metrics.SetOverrideEntries(kind, store.Len())
	e.logger.InfoContext(ctx, "override granted",
		"kind", kind,
		"host", host,
		"expires_at", expiry,
	)
	return nil
}
