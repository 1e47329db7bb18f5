package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrHubClosed is returned when the hub is no longer running
var ErrHubClosed = errors.New("notification hub closed")

// DefaultBufferSize is the per-subscriber message buffer
const DefaultBufferSize = 16

// Message is a notification pushed to a connected client
type Message struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	ShiftID   string    `json:"shiftId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type subscriber struct {
	userID string
	ch     chan Message
}

type countRequest struct {
	userID string
	reply  chan int
}

// Hub fans messages out to the open connections of each user.
// All subscriber state is owned by the Run goroutine; other methods talk to it over channels.
type Hub struct {
	register   chan *subscriber
	unregister chan *subscriber
	publish    chan Message
	count      chan countRequest
	done       chan struct{}
	bufferSize int
	logger     *zap.Logger
}

// NewHub creates a hub. Call Run to start it.
func NewHub(logger *zap.Logger, bufferSize int) *Hub {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Hub{
		register:   make(chan *subscriber),
		unregister: make(chan *subscriber),
		publish:    make(chan Message),
		count:      make(chan countRequest),
		done:       make(chan struct{}),
		bufferSize: bufferSize,
		logger:     logger,
	}
}

// Run processes subscriptions and messages until ctx is canceled.
// On return every subscriber channel is closed.
func (h *Hub) Run(ctx context.Context) {
	subs := make(map[string]map[*subscriber]struct{})

	defer func() {
		for _, set := range subs {
			for sub := range set {
				close(sub.ch)
			}
		}
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case sub := <-h.register:
			set, ok := subs[sub.userID]
			if !ok {
				set = make(map[*subscriber]struct{})
				subs[sub.userID] = set
			}
			set[sub] = struct{}{}
			h.logger.Debug("Notification stream opened", zap.String("user_id", sub.userID), zap.Int("connections", len(set)))

		case sub := <-h.unregister:
			set := subs[sub.userID]
			if _, ok := set[sub]; !ok {
				continue
			}
			delete(set, sub)
			close(sub.ch)
			if len(set) == 0 {
				delete(subs, sub.userID)
			}
			h.logger.Debug("Notification stream closed", zap.String("user_id", sub.userID), zap.Int("connections", len(set)))

		case msg := <-h.publish:
			for sub := range subs[msg.UserID] {
				select {
				case sub.ch <- msg:
				default:
					h.logger.Warn("Dropping notification for slow client",
						zap.String("user_id", msg.UserID),
						zap.String("notification_id", msg.ID))
				}
			}

		case req := <-h.count:
			req.reply <- len(subs[req.userID])
		}
	}
}

// Subscribe opens a stream of messages for userID. The returned function must be
// called when the connection closes; it is safe to call more than once.
func (h *Hub) Subscribe(ctx context.Context, userID string) (<-chan Message, func(), error) {
	sub := &subscriber{userID: userID, ch: make(chan Message, h.bufferSize)}

	select {
	case h.register <- sub:
	case <-h.done:
		return nil, nil, ErrHubClosed
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			select {
			case h.unregister <- sub:
			case <-h.done:
			}
		})
	}

	return sub.ch, unsubscribe, nil
}

// Publish delivers msg to every open stream of msg.UserID. Users with no open
// stream are skipped; the message is not queued.
func (h *Hub) Publish(ctx context.Context, msg Message) error {
	select {
	case h.publish <- msg:
		return nil
	case <-h.done:
		return ErrHubClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Connections returns the number of open streams for userID
func (h *Hub) Connections(ctx context.Context, userID string) (int, error) {
	req := countRequest{userID: userID, reply: make(chan int, 1)}
	select {
	case h.count <- req:
	case <-h.done:
		return 0, ErrHubClosed
	case <-ctx.Done():
		return 0, ctx.Err()
	}
	return <-req.reply, nil
}
