// Package chat runs the quoting conversation: it classifies each inbound
// message, applies the transition for the user's current step, invokes the
// pricing engine once enough data is collected and emits the replies and the
// quote record.
package chat

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"freightquote/internal/quotelog"
	"freightquote/internal/rate"
	"freightquote/internal/session"
	"freightquote/internal/textnorm"
	"freightquote/internal/whatsapp"
)

// ReplyKind selects how a Reply is sent.
type ReplyKind int

const (
	ReplyText ReplyKind = iota
	ReplyButtons
	ReplyImage
)

// Reply is one outbound message, in send order.
type Reply struct {
	Kind     ReplyKind
	Text     string
	Buttons  []whatsapp.Button
	ImageURL string
}

// Input is an inbound message reduced to what the conversation needs.
type Input struct {
	Text     string
	ButtonID string
}

// InputFrom converts a parsed webhook message.
func InputFrom(m *whatsapp.Message) Input {
	text := m.Text
	if text == "" {
		text = m.ButtonTitle
	}
	return Input{Text: text, ButtonID: m.ButtonID}
}

// Engines hands out the pricing engine for a mode.
type Engines interface {
	ByMode(mode rate.Mode) rate.Engine
}

// Options tunes the conversation.
type Options struct {
	ValidityDays    int
	RestartKeywords []string
	WelcomeImageURL string
	// CourierDestination is written as the destination of courier quotes.
	CourierDestination string
	Now                func() time.Time
}

// Controller drives every user's conversation.
type Controller struct {
	store   session.Store
	engines Engines
	sink    quotelog.Sink
	log     zerolog.Logger
	opts    Options
	restart map[string]bool
}

// New returns a Controller. A nil sink discards quote records.
func New(store session.Store, engines Engines, sink quotelog.Sink, log zerolog.Logger, opts Options) *Controller {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ValidityDays <= 0 {
		opts.ValidityDays = 7
	}
	if sink == nil {
		sink = quotelog.Multi{}
	}
	restart := make(map[string]bool, len(opts.RestartKeywords))
	for _, k := range opts.RestartKeywords {
		if n := textnorm.Normalize(k); n != "" {
			restart[n] = true
		}
	}
	return &Controller{store: store, engines: engines, sink: sink, log: log, opts: opts, restart: restart}
}

// Handle processes one inbound message for userID and returns the replies to
// send. When an error is returned the replies, if any, still go to the user;
// the session keeps its previous step.
func (c *Controller) Handle(ctx context.Context, userID string, in Input) ([]Reply, error) {
	s, err := c.store.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	class := c.classify(s.Step, in)
	log := c.log.With().Str("user", userID).Str("step", s.Step.String()).Str("input", class.String()).Logger()

	if class == inRestart {
		s.Reset()
		if err := c.store.Save(ctx, s); err != nil {
			return nil, fmt.Errorf("save session: %w", err)
		}
		log.Debug().Msg("conversation restarted")
		return c.menu(), nil
	}

	r, ok := transitions[s.Step][class]
	if !ok && s.Step == session.StepStart {
		r, ok = transitions[session.StepStart][inText], true
	}
	if !ok {
		log.Debug().Msg("input ignored")
		return nil, nil
	}
	from := s.Step
	next, replies, err := r.act(c, ctx, s, in)
	if err != nil {
		return replies, fmt.Errorf("%s: %w", from, err)
	}
	if !slices.Contains(r.targets, next) {
		return nil, fmt.Errorf("illegal transition %s -> %s on %s", from, next, class)
	}

	if next == session.StepDone {
		if err := c.store.Delete(ctx, userID); err != nil {
			return replies, fmt.Errorf("delete session: %w", err)
		}
		log.Info().Msg("quote delivered")
		return replies, nil
	}
	s.Step = next
	if err := c.store.Save(ctx, s); err != nil {
		return replies, fmt.Errorf("save session: %w", err)
	}
	if next != from {
		log.Debug().Str("next", next.String()).Msg("step advanced")
	}
	return replies, nil
}

// record hands a delivered quote to the sink. Sink failures are logged only.
func (c *Controller) record(ctx context.Context, rec quotelog.Record) {
	if err := c.sink.Append(ctx, rec); err != nil {
		c.log.Error().Err(err).Str("user", rec.UserID).Str("mode", string(rec.Mode)).Msg("quote log append failed")
	}
}
