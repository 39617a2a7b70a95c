package panel

import (
	"context"
	"sync"
)

// Board is a Sink that keeps the latest state of every panel.
type Board struct {
	mu      sync.Mutex
	states  map[ID]State
	changed chan struct{}
}

var _ Sink = (*Board)(nil)

// NewBoard creates a Board with every panel idle.
func NewBoard() *Board {
	b := &Board{
		states:  make(map[ID]State, len(All)),
		changed: make(chan struct{}),
	}
	for _, id := range All {
		b.states[id] = State{}
	}
	return b
}

func (b *Board) set(id ID, st State) {
	b.mu.Lock()
	b.states[id] = st
	close(b.changed)
	b.changed = make(chan struct{})
	b.mu.Unlock()
}

func (b *Board) SetLoading(id ID) { b.set(id, State{Status: StatusLoading}) }

func (b *Board) SetEmpty(id ID) {
	b.set(id, State{Status: StatusEmpty, Message: EmptyMessage(id)})
}

func (b *Board) SetError(id ID, message string) {
	if message == "" {
		message = DefaultErrorMessage
	}
	b.set(id, State{Status: StatusError, Message: message})
}

func (b *Board) SetContent(id ID, content any) {
	b.set(id, State{Status: StatusContent, Content: content})
}

// Get returns one panel's state.
func (b *Board) Get(id ID) State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.states[id]
}

// Snapshot returns a copy of every panel's state.
func (b *Board) Snapshot() map[ID]State {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[ID]State, len(b.states))
	for id, st := range b.states {
		out[id] = st
	}
	return out
}

func (b *Board) settled() (bool, <-chan struct{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, st := range b.states {
		if !st.Status.Settled() {
			return false, b.changed
		}
	}
	return true, nil
}

// WaitSettled blocks until every panel is empty, errored or showing content.
func (b *Board) WaitSettled(ctx context.Context) error {
	for {
		done, changed := b.settled()
		if done {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changed:
		}
	}
}
