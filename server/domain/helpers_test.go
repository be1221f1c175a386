package domain

import (
	"errors"
	"io"
	"log/slog"
	"sync"
)

type fakeTransport struct {
	mu         sync.Mutex
	events     []Event
	closed     bool
	failWrites bool
}

func (f *fakeTransport) WriteEvent(event Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrites {
		return errors.New("transport write failed")
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeTransport) Events() []Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Event, len(f.events))
	copy(out, f.events)
	return out
}

func (f *fakeTransport) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConnection(userID, name string) (*Connection, *fakeTransport) {
	transport := &fakeTransport{}
	return NewConnection(NewUserIdentity(userID, name), transport), transport
}
