package lock

import (
	"context"
	"strings"
	"sync"
)

// LocalLock serializes runs inside one process. It is the fallback when no
// Redis URL is configured and the API and a looping worker share a binary.
type LocalLock struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewLocalLock() *LocalLock {
	return &LocalLock{held: make(map[string]struct{})}
}

func (l *LocalLock) Acquire(_ context.Context, key string) (func(), bool, error) {
	key = strings.TrimSpace(key)

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, busy := l.held[key]; busy {
		return func() {}, false, nil
	}
	l.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}, true, nil
}
