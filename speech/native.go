package speech

import (
	"context"
	"errors"
	"sync"
)

var ErrNotSpeaking = errors.New("speech: nothing is playing")

type Voice struct {
	Name    string
	Lang    string
	Default bool
}

type Utterance struct {
	Text  string
	Voice string
	// Rate is relative to the engine's normal speed; 0 means 1.
	Rate float64
}

// Engine is a platform speech synthesizer.
type Engine interface {
	Voices(ctx context.Context) ([]Voice, error)
	// VoicesChanged signals that the voice list should be reloaded. It may
	// return nil when the engine never changes its voices.
	VoicesChanged() <-chan struct{}
	Start(ctx context.Context, u Utterance) (Playback, error)
}

// Playback is one utterance being spoken.
type Playback interface {
	Wait() error
	Pause() error
	Resume() error
	Stop() error
}

type NativeOption func(*NativeSynth)

func WithNativeVoice(name string) NativeOption {
	return func(n *NativeSynth) { n.voice = name }
}

func WithRate(rate float64) NativeOption {
	return func(n *NativeSynth) { n.rate = rate }
}

// NativeSynth speaks through a local Engine. The voice list is loaded in the
// background and reloaded whenever the engine reports a change.
type NativeSynth struct {
	engine Engine
	voice  string
	rate   float64
	slot   slot

	mu       sync.Mutex
	voices   []Voice
	loadErr  error
	playback Playback
	paused   bool

	loaded    chan struct{}
	loadOnce  sync.Once
	stop      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

func NewNativeSynth(engine Engine, opts ...NativeOption) *NativeSynth {
	n := &NativeSynth{
		engine: engine,
		loaded: make(chan struct{}),
		stop:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(n)
	}
	n.wg.Add(1)
	go n.watchVoices()
	return n
}

func (n *NativeSynth) watchVoices() {
	defer n.wg.Done()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-n.stop
		cancel()
	}()

	n.reloadVoices(ctx)
	changed := n.engine.VoicesChanged()
	for {
		select {
		case <-n.stop:
			return
		case _, ok := <-changed:
			if !ok {
				changed = nil
				continue
			}
			n.reloadVoices(ctx)
		}
	}
}

func (n *NativeSynth) reloadVoices(ctx context.Context) {
	voices, err := n.engine.Voices(ctx)
	n.mu.Lock()
	if err == nil {
		n.voices = voices
	}
	n.loadErr = err
	n.mu.Unlock()
	n.loadOnce.Do(func() { close(n.loaded) })
}

// Voices returns the most recently loaded voice list.
func (n *NativeSynth) Voices() []Voice {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Voice, len(n.voices))
	copy(out, n.voices)
	return out
}

// WaitVoices blocks until the first voice list load has finished.
func (n *NativeSynth) WaitVoices(ctx context.Context) ([]Voice, error) {
	select {
	case <-n.loaded:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	n.mu.Lock()
	err := n.loadErr
	n.mu.Unlock()
	return n.Voices(), err
}

func (n *NativeSynth) Speak(ctx context.Context, text string) error {
	ctx, run := n.slot.begin(ctx)
	defer n.slot.end(run)

	p, err := n.engine.Start(ctx, Utterance{Text: text, Voice: n.voice, Rate: n.rate})
	if err != nil {
		return err
	}
	n.mu.Lock()
	n.playback = p
	n.paused = false
	n.mu.Unlock()

	defer func() {
		n.mu.Lock()
		if n.playback == p {
			n.playback = nil
			n.paused = false
		}
		n.mu.Unlock()
	}()

	done := make(chan error, 1)
	go func() { done <- p.Wait() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		_ = p.Stop()
		<-done
		return ctx.Err()
	}
}

func (n *NativeSynth) Pause() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.playback == nil {
		return ErrNotSpeaking
	}
	if n.paused {
		return nil
	}
	if err := n.playback.Pause(); err != nil {
		return err
	}
	n.paused = true
	return nil
}

func (n *NativeSynth) Resume() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.playback == nil {
		return ErrNotSpeaking
	}
	if !n.paused {
		return nil
	}
	if err := n.playback.Resume(); err != nil {
		return err
	}
	n.paused = false
	return nil
}

func (n *NativeSynth) Cancel() { n.slot.cancel() }

func (n *NativeSynth) Speaking() bool { return n.slot.active() }

func (n *NativeSynth) Paused() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.paused
}

// Close cancels playback and stops watching for voice changes.
func (n *NativeSynth) Close() {
	n.closeOnce.Do(func() {
		n.Cancel()
		close(n.stop)
		n.wg.Wait()
	})
}
