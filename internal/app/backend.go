package app

import (
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/qrepl/internal/terminal"
)

// Backend is a terminal plus the key and resize events that drive it.
type Backend interface {
	Terminal() terminal.Terminal
	Events() <-chan tcell.Event
	// Suspend hands the real terminal to a child process; Resume takes it
	// back.
	Suspend() error
	Resume() error
	Close() error
}

// screenBackend runs the REPL inside a full-screen tcell screen.
type screenBackend struct {
	screen tcell.Screen
	term   *terminal.Screen
	events chan tcell.Event
	done   chan struct{}
	once   sync.Once
}

func newScreenBackend(s tcell.Screen) (*screenBackend, error) {
	if err := s.Init(); err != nil {
		return nil, err
	}
	s.Clear()
	b := &screenBackend{
		screen: s,
		term:   terminal.NewScreen(s),
		events: make(chan tcell.Event, 64),
		done:   make(chan struct{}),
	}
	go b.poll()
	return b, nil
}

func (b *screenBackend) poll() {
	defer close(b.events)
	for {
		ev := b.screen.PollEvent()
		if ev == nil {
			return
		}
		switch ev.(type) {
		case *tcell.EventResize:
			b.screen.Sync()
		case *tcell.EventKey:
		default:
			continue
		}
		// Nobody drains events once the session has returned.
		select {
		case b.events <- ev:
		case <-b.done:
			return
		}
	}
}

func (b *screenBackend) Terminal() terminal.Terminal { return b.term }
func (b *screenBackend) Events() <-chan tcell.Event  { return b.events }

func (b *screenBackend) Suspend() error {
	return b.screen.Suspend()
}

func (b *screenBackend) Resume() error {
	if err := b.screen.Resume(); err != nil {
		return err
	}
	b.screen.Sync()
	return nil
}

func (b *screenBackend) Close() error {
	b.once.Do(func() {
		close(b.done)
		b.screen.Fini()
	})
	return nil
}
