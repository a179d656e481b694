package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/guilhermesenci/stock-control/internal/application/inventory"
)

var _ inventory.Locker = (*LocalLocker)(nil)

// LocalLocker exclusión por clave dentro del proceso. Solo protege a una instancia.
type LocalLocker struct {
	mu    sync.Mutex
	slots map[string]*slot
}

// slot canal de capacidad 1 que actúa de mutex cancelable; refs cuenta los interesados.
type slot struct {
	ch   chan struct{}
	refs int
}

// NewLocalLocker crea el locker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{slots: make(map[string]*slot)}
}

// Lock espera el turno de key o hasta que venza ctx.
func (l *LocalLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	s, ok := l.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	l.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		l.forget(key, s)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s: %w", ErrNotObtained, key, ctx.Err())
		}
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-s.ch
			l.forget(key, s)
		})
	}, nil
}

func (l *LocalLocker) forget(key string, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}
