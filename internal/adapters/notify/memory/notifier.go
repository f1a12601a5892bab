// Package memory records sponsor notices in process. Dev and test use.
package memory

import (
	"context"
	"sync"

	"privescreen/internal/ports/notify"
)

type Notifier struct {
	mu      sync.Mutex
	notices []notify.CompletionNotice
}

func NewNotifier() *Notifier {
	return &Notifier{}
}

func (n *Notifier) NotifyResultReady(ctx context.Context, notice notify.CompletionNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
	return nil
}

// Notices returns a copy of everything recorded so far.
func (n *Notifier) Notices() []notify.CompletionNotice {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notify.CompletionNotice, len(n.notices))
	copy(out, n.notices)
	return out
}
