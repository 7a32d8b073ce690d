package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// TaskName records a cron task name under the key "task_name".
func TaskName(name string) slog.Attr {
	return slog.String("task_name", name)
}

// QueueType records a queue item type under the key "queue_type".
func QueueType(typ string) slog.Attr {
	return slog.String("queue_type", typ)
}

// ItemID records a queue item identifier under the key "item_id".
func ItemID(id int64) slog.Attr {
	return slog.Int64("item_id", id)
}

// Table records an entity table name under the key "table".
func Table(name string) slog.Attr {
	return slog.String("table", name)
}

// ConsumerID records a queue consumer identity under the key "consumer_id".
func ConsumerID(id string) slog.Attr {
	return slog.String("consumer_id", id)
}

// Recipient records a mail recipient under the key "recipient".
func Recipient(to string) slog.Attr {
	return slog.String("recipient", to)
}
