package notifier

import (
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
)

// Notifier delivers a formatted message to the user.
type Notifier interface {
	Notify(text string) error
}

// LogNotifier writes messages to the structured log. Used by `serve`.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{log: logger.With(zap.String("component", "notifier"))}
}

func (n *LogNotifier) Notify(text string) error {
	n.log.Info("notification", zap.String("text", text))
	return nil
}

// WriterNotifier prints messages to an io.Writer, one block per message.
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

func (n *WriterNotifier) Notify(text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, err := fmt.Fprintln(n.w, text); err != nil {
		return fmt.Errorf("write notification: %w", err)
	}
	return nil
}

// Multi fans a message out to every notifier, returning the first error.
type Multi []Notifier

func (m Multi) Notify(text string) error {
	var first error
	for _, n := range m {
		if err := n.Notify(text); err != nil && first == nil {
			first = err
		}
	}
	return first
}
