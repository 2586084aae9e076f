package service

import (
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/patrickmn/go-cache"

	"walletwatch/internal/app/port"
)

// Notification is one emitted message as retained for the status API.
type Notification struct {
	Text      string    `json:"text"`
	EmittedAt time.Time `json:"emittedAt"`
}

// Notifier wraps the downstream sink and keeps a TTL cache of recently
// emitted messages so the API can list them. The cache is best-effort
// observability; the sink remains the contract.
type Notifier struct {
	next   port.NotificationSink
	recent *cache.Cache
	seq    atomic.Uint64
}

// NewNotifier builds a notifier forwarding to next and retaining messages
// for ttl.
func NewNotifier(next port.NotificationSink, ttl, sweep time.Duration) *Notifier {
	return &Notifier{
		next:   next,
		recent: cache.New(ttl, sweep),
	}
}

// Emit forwards the message and records it in the recent cache.
func (n *Notifier) Emit(text string) {
	msg := Notification{Text: text, EmittedAt: time.Now()}
	n.recent.SetDefault(fmt.Sprintf("%020d", n.seq.Add(1)), msg)
	n.next.Emit(text)
}

// Recent returns retained notifications, oldest first.
func (n *Notifier) Recent() []Notification {
	items := n.recent.Items()
	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Notification, 0, len(keys))
	for _, k := range keys {
		out = append(out, items[k].Object.(Notification))
	}
	return out
}
