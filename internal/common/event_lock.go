package common

import (
	"sync"

	"github.com/puzpuzpuz/xsync"
)

// EventLocker hands out one mutex per event id so admission and selection for
// the same event are single-writer while unrelated events stay independent.
type EventLocker struct {
	locks *xsync.MapOf[string, *sync.Mutex]
}

func NewEventLocker() *EventLocker {
	return &EventLocker{locks: xsync.NewMapOf[*sync.Mutex]()}
}

func (l *EventLocker) Lock(eventID string) *sync.Mutex {
	mutex, _ := l.locks.LoadOrCompute(eventID, func() *sync.Mutex {
		return &sync.Mutex{}
	})

	mutex.Lock()
	return mutex
}
