// Package speech plays text aloud on the client side. Strategies share the
// Speaker interface and are tried in order by a Chain.
package speech

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var ErrNoSpeakers = errors.New("speech: no speaker configured")

type Speaker interface {
	// Speak blocks until the text has been played, the context is done, or
	// Cancel is called.
	Speak(ctx context.Context, text string) error
	Cancel()
}

// Chain tries each speaker in order; the first one that succeeds wins.
type Chain []Speaker

func (c Chain) Speak(ctx context.Context, text string) error {
	if len(c) == 0 {
		return ErrNoSpeakers
	}
	var errs []error
	for i, s := range c {
		err := s.Speak(ctx, text)
		if err == nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		// a speaker canceled through Cancel was stopped, it did not fail
		if errors.Is(err, context.Canceled) {
			return err
		}
		errs = append(errs, fmt.Errorf("speaker %d: %w", i, err))
	}
	return errors.Join(errs...)
}

func (c Chain) Cancel() {
	for _, s := range c {
		s.Cancel()
	}
}

// slot tracks the single active utterance of a speaker.
type slot struct {
	mu      sync.Mutex
	current *activeRun
}

type activeRun struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// begin stops whatever is playing, waits for it to wind down and returns a
// context for the new run.
func (s *slot) begin(ctx context.Context) (context.Context, *activeRun) {
	runCtx, cancel := context.WithCancel(ctx)
	run := &activeRun{cancel: cancel, done: make(chan struct{})}

	s.mu.Lock()
	prev := s.current
	s.current = run
	s.mu.Unlock()

	if prev != nil {
		prev.cancel()
		<-prev.done
	}
	return runCtx, run
}

func (s *slot) end(run *activeRun) {
	s.mu.Lock()
	if s.current == run {
		s.current = nil
	}
	s.mu.Unlock()
	run.cancel()
	close(run.done)
}

func (s *slot) cancel() {
	s.mu.Lock()
	run := s.current
	s.mu.Unlock()
	if run != nil {
		run.cancel()
	}
}

func (s *slot) active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil
}
