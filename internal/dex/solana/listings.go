package solana

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"pumpbot/internal/signal"
)

const programDataPrefix = "Program data: "

// ListingFeed streams pump.fun CreateEvents over a logsSubscribe websocket.
// Each subscription owns its connection and reconnects with capped
// exponential backoff until unsubscribed.
type ListingFeed struct {
	url        string
	program    string
	commitment string
	log        zerolog.Logger
	dialer     *websocket.Dialer

	reconnectDelay    time.Duration
	maxReconnectDelay time.Duration

	mu     sync.Mutex
	nextID int
	subs   map[int]context.CancelFunc
	wg     sync.WaitGroup
}

// FeedOption customizes ListingFeed construction.
type FeedOption func(*ListingFeed)

// WithFeedLogger sets the feed logger.
func WithFeedLogger(log zerolog.Logger) FeedOption {
	return func(f *ListingFeed) { f.log = log }
}

// WithReconnectDelay bounds the reconnect backoff.
func WithReconnectDelay(initial, max time.Duration) FeedOption {
	return func(f *ListingFeed) {
		if initial > 0 {
			f.reconnectDelay = initial
		}
		if max >= initial {
			f.maxReconnectDelay = max
		}
	}
}

// WithCommitment sets the subscription commitment level.
func WithCommitment(c string) FeedOption {
	return func(f *ListingFeed) {
		if c != "" {
			f.commitment = c
		}
	}
}

// NewListingFeed watches logs mentioning program on the websocket endpoint wsURL.
func NewListingFeed(wsURL, program string, opts ...FeedOption) *ListingFeed {
	f := &ListingFeed{
		url:               wsURL,
		program:           program,
		commitment:        "confirmed",
		log:               zerolog.Nop(),
		dialer:            &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		reconnectDelay:    time.Second,
		maxReconnectDelay: 30 * time.Second,
		subs:              make(map[int]context.CancelFunc),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Subscribe starts delivering listings to fn until Unsubscribe or ctx ends.
func (f *ListingFeed) Subscribe(ctx context.Context, fn func(signal.Listing)) (int, error) {
	if fn == nil {
		return 0, errors.New("nil listing callback")
	}
	ctx, cancel := context.WithCancel(ctx)
	f.mu.Lock()
	f.nextID++
	id := f.nextID
	f.subs[id] = cancel
	f.mu.Unlock()

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		f.run(ctx, fn)
	}()
	return id, nil
}

// Unsubscribe stops the subscription id.
func (f *ListingFeed) Unsubscribe(id int) error {
	f.mu.Lock()
	cancel, ok := f.subs[id]
	delete(f.subs, id)
	f.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown subscription %d", id)
	}
	cancel()
	return nil
}

// Close stops every subscription and waits for their connections to drop.
func (f *ListingFeed) Close() {
	f.mu.Lock()
	for id, cancel := range f.subs {
		cancel()
		delete(f.subs, id)
	}
	f.mu.Unlock()
	f.wg.Wait()
}

func (f *ListingFeed) run(ctx context.Context, fn func(signal.Listing)) {
	delay := f.reconnectDelay
	for ctx.Err() == nil {
		subscribed, err := f.session(ctx, fn)
		if ctx.Err() != nil {
			return
		}
		if subscribed {
			delay = f.reconnectDelay
		}
		f.log.Warn().Err(err).Dur("retry_in", delay).Msg("listing feed disconnected")
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		delay *= 2
		if delay > f.maxReconnectDelay {
			delay = f.maxReconnectDelay
		}
	}
}

// session runs one connection. subscribed reports whether the server
// acknowledged logsSubscribe before the connection ended.
func (f *ListingFeed) session(ctx context.Context, fn func(signal.Listing)) (subscribed bool, err error) {
	conn, _, err := f.dialer.DialContext(ctx, f.url, nil)
	if err != nil {
		return false, fmt.Errorf("websocket dial: %w", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	req := map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "logsSubscribe",
		"params": []any{
			map[string]any{"mentions": []string{f.program}},
			map[string]string{"commitment": f.commitment},
		},
	}
	if err := conn.WriteJSON(req); err != nil {
		return false, fmt.Errorf("write subscribe: %w", err)
	}

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return subscribed, err
		}
		switch {
		case gjson.GetBytes(msg, "error").Exists():
			return subscribed, fmt.Errorf("subscribe rejected: %s", gjson.GetBytes(msg, "error.message").String())
		case gjson.GetBytes(msg, "id").Int() == 1 && gjson.GetBytes(msg, "result").Exists():
			subscribed = true
			f.log.Info().Str("program", f.program).Int64("sub", gjson.GetBytes(msg, "result").Int()).Msg("listing feed subscribed")
		case gjson.GetBytes(msg, "method").String() == "logsNotification":
			for _, l := range f.parseNotification(msg) {
				fn(l)
			}
		}
	}
}

// parseNotification extracts every CreateEvent from a logsNotification frame.
func (f *ListingFeed) parseNotification(msg []byte) []signal.Listing {
	result := gjson.GetBytes(msg, "params.result")
	value := result.Get("value")
	if e := value.Get("err"); e.Exists() && e.Type != gjson.Null {
		return nil
	}
	sig := value.Get("signature").String()
	slot := result.Get("context.slot").Uint()

	var out []signal.Listing
	for _, line := range value.Get("logs").Array() {
		text := line.String()
		if !strings.HasPrefix(text, programDataPrefix) {
			continue
		}
		raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(text, programDataPrefix))
		if err != nil {
			continue
		}
		ev, ok, err := DecodeCreateEvent(raw)
		if !ok {
			continue
		}
		if err != nil {
			f.log.Debug().Err(err).Str("sig", sig).Msg("malformed create event")
			continue
		}
		out = append(out, signal.Listing{
			Mint:      ev.Mint.String(),
			Creator:   ev.User.String(),
			Signature: sig,
			Slot:      slot,
			Name:      ev.Name,
			Symbol:    ev.Symbol,
		})
	}
	return out
}
