//go:build unix

package app

import (
	"errors"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/sys/unix"

	"github.com/kobzarvs/qrepl/internal/logger"
	"github.com/kobzarvs/qrepl/internal/terminal"
)

const readIdle = 10 * time.Millisecond

// inlineBackend drives the REPL on the terminal as-is: raw stdin, ANSI
// output on stdout, scrollback left alone.
type inlineBackend struct {
	term   *terminal.ANSI
	inFd   int
	events chan tcell.Event
	done   chan struct{}
	winch  chan os.Signal
	paused atomic.Bool
	wg     sync.WaitGroup
	once   sync.Once
}

func newInlineBackend() (Backend, error) {
	inFd := int(os.Stdin.Fd())
	t := terminal.NewANSI(os.Stdout, int(os.Stdout.Fd()))
	if err := t.MakeRaw(inFd); err != nil {
		return nil, err
	}
	b := &inlineBackend{
		term:   t,
		inFd:   inFd,
		events: make(chan tcell.Event, 64),
		done:   make(chan struct{}),
		winch:  make(chan os.Signal, 1),
	}
	signal.Notify(b.winch, unix.SIGWINCH)
	b.wg.Add(2)
	go b.read()
	go b.watchSize()
	go func() {
		b.wg.Wait()
		close(b.events)
	}()
	return b, nil
}

func (b *inlineBackend) Terminal() terminal.Terminal { return b.term }
func (b *inlineBackend) Events() <-chan tcell.Event  { return b.events }

func (b *inlineBackend) send(ev tcell.Event) bool {
	select {
	case b.events <- ev:
		return true
	case <-b.done:
		return false
	}
}

func (b *inlineBackend) read() {
	defer b.wg.Done()
	var dec Decoder
	buf := make([]byte, 256)
	for {
		select {
		case <-b.done:
			return
		default:
		}
		if b.paused.Load() {
			time.Sleep(readIdle)
			continue
		}

		_ = unix.SetNonblock(b.inFd, true)
		n, err := unix.Read(b.inFd, buf)
		_ = unix.SetNonblock(b.inFd, false)

		if err != nil {
			if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) {
				for _, ev := range dec.Flush() {
					if !b.send(ev) {
						return
					}
				}
				time.Sleep(readIdle)
				continue
			}
			if errors.Is(err, unix.EINTR) {
				continue
			}
			logger.Error("stdin read failed", "err", err)
			return
		}
		if n == 0 {
			// EOF: stdin is gone, behave as Ctrl+D.
			b.send(tcell.NewEventKey(tcell.KeyCtrlD, 0, tcell.ModCtrl))
			return
		}
		for _, ev := range dec.Feed(buf[:n]) {
			if !b.send(ev) {
				return
			}
		}
	}
}

func (b *inlineBackend) watchSize() {
	defer b.wg.Done()
	for {
		select {
		case <-b.done:
			return
		case <-b.winch:
			w, h, err := b.term.Size()
			if err != nil {
				logger.Warn("terminal size unavailable", "err", err)
				continue
			}
			if !b.send(tcell.NewEventResize(w, h)) {
				return
			}
		}
	}
}

func (b *inlineBackend) Suspend() error {
	b.paused.Store(true)
	if err := b.term.ShowCursor(); err != nil {
		return err
	}
	if err := b.term.ResetStyle(); err != nil {
		return err
	}
	if err := b.term.Flush(); err != nil {
		return err
	}
	return b.term.Restore(b.inFd)
}

func (b *inlineBackend) Resume() error {
	if err := b.term.MakeRaw(b.inFd); err != nil {
		return err
	}
	b.paused.Store(false)
	return nil
}

func (b *inlineBackend) Close() error {
	var err error
	b.once.Do(func() {
		signal.Stop(b.winch)
		close(b.done)
		_ = b.term.ResetStyle()
		_ = b.term.ShowCursor()
		_ = b.term.Flush()
		err = b.term.Restore(b.inFd)
	})
	return err
}
