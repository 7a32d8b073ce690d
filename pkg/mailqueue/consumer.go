package mailqueue

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/handybase/handy/pkg/async"
	"github.com/handybase/handy/pkg/cron"
	"github.com/handybase/handy/pkg/email"
	"github.com/handybase/handy/pkg/logger"
	"github.com/handybase/handy/pkg/taskqueue"
)

// Consumer drains the mail queue through one sender. Construct one per
// process; the queue's cooperative locks keep concurrent consumers from
// double-sending.
type Consumer struct {
	queue  taskqueue.Store
	sender email.Sender
	buffer time.Duration
	id     string
	logger *slog.Logger
}

// ConsumerOption configures a Consumer.
type ConsumerOption func(*Consumer)

// WithBuffer marks the sender as rate limited. A positive buffer switches
// Drain to sequential dispatch and sleeps the buffer between send attempts.
func WithBuffer(d time.Duration) ConsumerOption {
	return func(c *Consumer) {
		if d > 0 {
			c.buffer = d
		}
	}
}

// WithConsumerLogger sets the consumer's logger.
func WithConsumerLogger(log *slog.Logger) ConsumerOption {
	return func(c *Consumer) {
		if log != nil {
			c.logger = log
		}
	}
}

// NewConsumer creates a mail queue consumer.
func NewConsumer(queue taskqueue.Store, sender email.Sender, opts ...ConsumerOption) (*Consumer, error) {
	if queue == nil {
		return nil, ErrNilQueue
	}
	if sender == nil {
		return nil, ErrNilSender
	}
	c := &Consumer{
		queue:  queue,
		sender: sender,
		id:     uuid.NewString(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(logger.ConsumerID(c.id))
	return c, nil
}

// ID returns the consumer's identity, stamped on its log records.
func (c *Consumer) ID() string {
	return c.id
}

// Drain fetches and dispatches every sendable mail item. Fetching locks the
// items, so a concurrent drain sees none of them. A sent item is removed; a
// failed one is unlocked for the next drain. Items whose send delay has not
// elapsed stay locked for the duration of the pass and are unlocked at its
// end, so the same pass never reconsiders them.
//
// The error return covers queue access only; individual send failures are
// logged and resolved through the item's lock state.
func (c *Consumer) Drain(ctx context.Context) error {
	items, err := c.queue.Fetch(ctx, taskqueue.Filter{Type: QueueType}, true)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}

	now := time.Now()
	var sendable []queuedMessage
	var delayed []taskqueue.Item

	for _, item := range items {
		var p payload
		if err := json.Unmarshal(item.Payload, &p); err != nil {
			c.logger.Error("malformed mail payload, unlocking item",
				logger.ItemID(item.ID),
				logger.Error(err))
			c.unlock(ctx, item)
			continue
		}
		if !p.ready(now) {
			delayed = append(delayed, item)
			continue
		}
		sendable = append(sendable, queuedMessage{item: item, msg: p.Message})
	}

	if c.buffer > 0 {
		c.drainSequential(ctx, sendable)
	} else {
		c.drainConcurrent(ctx, sendable)
	}

	for _, item := range delayed {
		c.unlock(ctx, item)
	}
	return nil
}

type queuedMessage struct {
	item taskqueue.Item
	msg  email.Message
}

// drainConcurrent dispatches each message in its own goroutine and waits for
// all of them.
func (c *Consumer) drainConcurrent(ctx context.Context, messages []queuedMessage) {
	futures := make([]*async.Future[struct{}], 0, len(messages))
	for _, qm := range messages {
		futures = append(futures, async.Run(ctx, qm,
			func(ctx context.Context, qm queuedMessage) (struct{}, error) {
				c.dispatch(ctx, qm)
				return struct{}{}, nil
			}))
	}
	_, _ = async.WaitAll(futures...)
}

// drainSequential dispatches messages one at a time, sleeping the buffer
// after every attempt regardless of outcome. This is the rate-limited path.
func (c *Consumer) drainSequential(ctx context.Context, messages []queuedMessage) {
	for i, qm := range messages {
		c.dispatch(ctx, qm)

		if i == len(messages)-1 {
			break
		}
		select {
		case <-time.After(c.buffer):
		case <-ctx.Done():
			// unlock whatever this pass never reached
			for _, rest := range messages[i+1:] {
				c.unlock(ctx, rest.item)
			}
			return
		}
	}
}

// dispatch sends one message and settles its queue item: removed on success,
// unlocked on failure.
func (c *Consumer) dispatch(ctx context.Context, qm queuedMessage) {
	if err := c.sender.Send(ctx, qm.msg); err != nil {
		c.logger.Error("mail send failed, unlocking item",
			logger.ItemID(qm.item.ID),
			logger.Recipient(qm.msg.To),
			logger.Error(err))
		c.unlock(ctx, qm.item)
		return
	}

	if err := c.queue.Remove(ctx, qm.item); err != nil {
		c.logger.Error("failed to remove sent mail item",
			logger.ItemID(qm.item.ID),
			logger.Error(err))
		return
	}
	c.logger.Info("mail sent",
		logger.ItemID(qm.item.ID),
		logger.Recipient(qm.msg.To))
}

func (c *Consumer) unlock(ctx context.Context, item taskqueue.Item) {
	if err := c.queue.SetLockStatus(ctx, item, false); err != nil {
		c.logger.Error("failed to unlock mail item",
			logger.ItemID(item.ID),
			logger.Error(err))
	}
}

// CronTask wraps the consumer in a schedulable task that drains the queue at
// the given frequency.
func (c *Consumer) CronTask(freq time.Duration) cron.Task {
	return cron.Task{
		Name: "processMailQueue",
		Freq: freq,
		Run:  c.Drain,
	}
}
