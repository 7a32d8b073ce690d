package mailqueue

import (
	"context"
	"time"

	"github.com/handybase/handy/pkg/email"
	"github.com/handybase/handy/pkg/taskqueue"
)

// QueueType is the task queue type reserved for outbound mail.
const QueueType = "mail"

// payload is the stored form of one queued message. Timestamps and delays
// are unix milliseconds so payloads stay portable across processes.
type payload struct {
	Timestamp int64         `json:"timestamp"`
	SendDelay int64         `json:"sendDelay"`
	Message   email.Message `json:"message"`
}

// ready reports whether the message's send delay has elapsed at the given
// instant.
func (p payload) ready(now time.Time) bool {
	return now.UnixMilli()-p.Timestamp >= p.SendDelay
}

// EnqueueOption configures one enqueued message.
type EnqueueOption func(*payload)

// WithSendDelay holds the message back for at least d after enqueue. Drains
// that find the delay unelapsed skip the message and leave it for a later
// pass.
func WithSendDelay(d time.Duration) EnqueueOption {
	return func(p *payload) {
		if d > 0 {
			p.SendDelay = d.Milliseconds()
		}
	}
}

// Enqueue validates the message and stores it unlocked on the mail queue.
// The message is not sent here; the next drain picks it up.
func Enqueue(ctx context.Context, queue taskqueue.Store, msg email.Message, opts ...EnqueueOption) error {
	if queue == nil {
		return ErrNilQueue
	}
	if err := msg.Validate(); err != nil {
		return err
	}

	p := payload{
		Timestamp: time.Now().UnixMilli(),
		Message:   msg,
	}
	for _, opt := range opts {
		opt(&p)
	}
	return queue.Enqueue(ctx, QueueType, false, p)
}
