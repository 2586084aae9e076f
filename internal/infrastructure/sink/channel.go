package sink

import (
	"go.uber.org/zap"
)

// Channel is an append-only notification sink backed by a buffered channel.
// All wallet monitors share one instance; the downstream consumer (the agent
// loop) drains Out. Emit never blocks a monitor: when the consumer falls
// behind and the buffer is full, the message is dropped with a warning
// rather than stalling the poll loop.
type Channel struct {
	out    chan string
	logger *zap.Logger
}

// NewChannel builds a sink with the given buffer size.
func NewChannel(buffer int, logger *zap.Logger) *Channel {
	if buffer <= 0 {
		buffer = 64
	}
	return &Channel{
		out:    make(chan string, buffer),
		logger: logger.Named("NotificationSink"),
	}
}

// Emit appends the message to the channel, fire-and-forget.
func (c *Channel) Emit(text string) {
	select {
	case c.out <- text:
	default:
		c.logger.Warn("Notification channel full, dropping message", zap.String("message", text))
	}
}

// Out exposes the receive side for the downstream consumer.
func (c *Channel) Out() <-chan string {
	return c.out
}
