// Package notify fans build and output events out to interested parties: the live
// reload hub in-process and, optionally, a NATS subject for external tooling.
package notify

import (
	"context"
	"errors"
	"strconv"
	"time"
)

// Kind identifies an event type.
type Kind string

const (
	KindBuildSucceeded Kind = "build.succeeded"
	KindBuildFailed    Kind = "build.failed"
	KindOutputChanged  Kind = "output.changed"
)

// Event describes something that happened to the source or the published output.
type Event struct {
	Kind    Kind      `json:"kind"`
	Path    string    `json:"path,omitempty"`
	Token   string    `json:"token,omitempty"`
	BuildID string    `json:"build_id,omitempty"`
	Error   string    `json:"error,omitempty"`
	Time    time.Time `json:"time"`
}

// NewEvent returns an event stamped with the current time and a fresh token.
func NewEvent(kind Kind) Event {
	now := time.Now()
	return Event{Kind: kind, Time: now, Token: Token(now)}
}

// Token derives a reload token from t.
func Token(t time.Time) string {
	return strconv.FormatInt(t.UnixNano(), 10)
}

// Notifier receives events.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// Func adapts a function to Notifier.
type Func func(ctx context.Context, ev Event) error

func (f Func) Notify(ctx context.Context, ev Event) error { return f(ctx, ev) }

// Multi delivers every event to all notifiers and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, ev Event) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Broadcaster is the part of the live reload hub the notifier needs.
type Broadcaster interface {
	Broadcast(token string)
}

// HubNotifier forwards output changes and failed builds to a live reload hub.
type HubNotifier struct {
	hub Broadcaster
}

// NewHubNotifier creates a notifier for hub.
func NewHubNotifier(hub Broadcaster) *HubNotifier { return &HubNotifier{hub: hub} }

func (h *HubNotifier) Notify(_ context.Context, ev Event) error {
	switch ev.Kind {
	case KindOutputChanged:
		h.hub.Broadcast(ev.Token)
	case KindBuildFailed:
		// Reload onto the error page.
		h.hub.Broadcast("error:" + ev.Token)
	}
	return nil
}
