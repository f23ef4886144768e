package speech

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSpeaker struct {
	err      error
	spoken   []string
	canceled int
}

func (s *stubSpeaker) Speak(_ context.Context, text string) error {
	s.spoken = append(s.spoken, text)
	return s.err
}

func (s *stubSpeaker) Cancel() { s.canceled++ }

func TestChain(t *testing.T) {
	failing := &stubSpeaker{err: errors.New("no network")}
	working := &stubSpeaker{}
	unused := &stubSpeaker{}

	chain := Chain{failing, working, unused}
	require.NoError(t, chain.Speak(context.Background(), "hi"))
	assert.Equal(t, []string{"hi"}, failing.spoken)
	assert.Equal(t, []string{"hi"}, working.spoken)
	assert.Empty(t, unused.spoken)

	chain.Cancel()
	assert.Equal(t, 1, unused.canceled)
}

func TestChain_AllFail(t *testing.T) {
	errA := errors.New("a")
	errB := errors.New("b")
	err := Chain{&stubSpeaker{err: errA}, &stubSpeaker{err: errB}}.Speak(context.Background(), "hi")
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)

	assert.ErrorIs(t, Chain{}.Speak(context.Background(), "hi"), ErrNoSpeakers)
}

type recordingPlayer struct {
	mu    sync.Mutex
	audio [][]byte
	types []string
	block bool
}

func (p *recordingPlayer) Play(ctx context.Context, audio []byte, contentType string) error {
	p.mu.Lock()
	p.audio = append(p.audio, audio)
	p.types = append(p.types, contentType)
	block := p.block
	p.mu.Unlock()
	if block {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

func (p *recordingPlayer) plays() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.audio)
}

func ttsServer(t *testing.T, status int, body map[string]any, gotAuth *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tts", r.URL.Path)
		var req ttsRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hello", req.Text)
		if gotAuth != nil {
			*gotAuth = r.Header.Get("Authorization")
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestVendorSpeaker(t *testing.T) {
	var auth string
	srv := ttsServer(t, http.StatusOK, map[string]any{
		"success":     true,
		"audio":       base64.StdEncoding.EncodeToString([]byte("mp3-bytes")),
		"contentType": "audio/mpeg",
	}, &auth)

	player := &recordingPlayer{}
	v := NewVendorSpeaker(srv.URL+"/", player, WithVoice("bella"), WithAccessToken("tok"))
	require.NoError(t, v.Speak(context.Background(), "hello"))

	assert.Equal(t, "Bearer tok", auth)
	require.Equal(t, 1, player.plays())
	assert.Equal(t, []byte("mp3-bytes"), player.audio[0])
	assert.Equal(t, "audio/mpeg", player.types[0])
}

func TestVendorSpeaker_ServerError(t *testing.T) {
	srv := ttsServer(t, http.StatusInternalServerError, map[string]any{"success": false, "error": "vendor down"}, nil)

	player := &recordingPlayer{}
	err := NewVendorSpeaker(srv.URL, player).Speak(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vendor down")
	assert.Zero(t, player.plays())
}

func TestVendorSpeaker_NewSpeechStopsPrevious(t *testing.T) {
	srv := ttsServer(t, http.StatusOK, map[string]any{
		"success": true, "audio": base64.StdEncoding.EncodeToString([]byte("x")), "contentType": "audio/mpeg",
	}, nil)
	player := &recordingPlayer{block: true}
	v := NewVendorSpeaker(srv.URL, player)

	first := make(chan error, 1)
	go func() { first <- v.Speak(context.Background(), "hello") }()
	require.Eventually(t, func() bool { return player.plays() == 1 }, time.Second, time.Millisecond)

	second := make(chan error, 1)
	go func() { second <- v.Speak(context.Background(), "hello") }()

	select {
	case err := <-first:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("first utterance was not stopped")
	}
	require.Eventually(t, func() bool { return player.plays() == 2 }, time.Second, time.Millisecond)

	v.Cancel()
	assert.ErrorIs(t, <-second, context.Canceled)
}

type fakePlayback struct {
	mu      sync.Mutex
	done    chan struct{}
	once    sync.Once
	paused  bool
	stopped bool
}

func newFakePlayback() *fakePlayback { return &fakePlayback{done: make(chan struct{})} }

func (p *fakePlayback) Wait() error {
	<-p.done
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return errors.New("killed")
	}
	return nil
}

func (p *fakePlayback) finish() { p.once.Do(func() { close(p.done) }) }

func (p *fakePlayback) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = true
	return nil
}

func (p *fakePlayback) Resume() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = false
	return nil
}

func (p *fakePlayback) Stop() error {
	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()
	p.finish()
	return nil
}

type fakeEngine struct {
	mu        sync.Mutex
	voiceSets [][]Voice
	loads     int
	changed   chan struct{}
	started   []Utterance
	playbacks []*fakePlayback
}

func (e *fakeEngine) Voices(context.Context) ([]Voice, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	idx := e.loads
	if idx >= len(e.voiceSets) {
		idx = len(e.voiceSets) - 1
	}
	e.loads++
	return e.voiceSets[idx], nil
}

func (e *fakeEngine) VoicesChanged() <-chan struct{} { return e.changed }

func (e *fakeEngine) Start(_ context.Context, u Utterance) (Playback, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p := newFakePlayback()
	e.started = append(e.started, u)
	e.playbacks = append(e.playbacks, p)
	return p, nil
}

func (e *fakeEngine) playback(i int) *fakePlayback {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i >= len(e.playbacks) {
		return nil
	}
	return e.playbacks[i]
}

func TestNativeSynth_VoicesReloadOnChange(t *testing.T) {
	engine := &fakeEngine{
		voiceSets: [][]Voice{{{Name: "en"}}, {{Name: "en"}, {Name: "fr"}}},
		changed:   make(chan struct{}),
	}
	n := NewNativeSynth(engine)
	defer n.Close()

	voices, err := n.WaitVoices(context.Background())
	require.NoError(t, err)
	assert.Len(t, voices, 1)

	engine.changed <- struct{}{}
	assert.Eventually(t, func() bool { return len(n.Voices()) == 2 }, time.Second, time.Millisecond)
}

func TestNativeSynth_PlayPauseResume(t *testing.T) {
	engine := &fakeEngine{voiceSets: [][]Voice{{}}}
	n := NewNativeSynth(engine, WithNativeVoice("en-us"), WithRate(1.25))
	defer n.Close()

	assert.ErrorIs(t, n.Pause(), ErrNotSpeaking)

	done := make(chan error, 1)
	go func() { done <- n.Speak(context.Background(), "hello") }()
	require.Eventually(t, func() bool { return engine.playback(0) != nil && n.Speaking() }, time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return n.Pause() == nil }, time.Second, time.Millisecond)

	p := engine.playback(0)
	assert.True(t, n.Paused())
	p.mu.Lock()
	assert.True(t, p.paused)
	p.mu.Unlock()

	require.NoError(t, n.Resume())
	assert.False(t, n.Paused())

	p.finish()
	require.NoError(t, <-done)
	assert.False(t, n.Speaking())
	assert.Equal(t, Utterance{Text: "hello", Voice: "en-us", Rate: 1.25}, engine.started[0])
}

func TestNativeSynth_NewSpeechStopsPrevious(t *testing.T) {
	engine := &fakeEngine{voiceSets: [][]Voice{{}}}
	n := NewNativeSynth(engine)
	defer n.Close()

	first := make(chan error, 1)
	go func() { first <- n.Speak(context.Background(), "one") }()
	require.Eventually(t, func() bool { return engine.playback(0) != nil }, time.Second, time.Millisecond)

	second := make(chan error, 1)
	go func() { second <- n.Speak(context.Background(), "two") }()

	assert.ErrorIs(t, <-first, context.Canceled)
	require.Eventually(t, func() bool { return engine.playback(1) != nil }, time.Second, time.Millisecond)
	p0 := engine.playback(0)
	p0.mu.Lock()
	assert.True(t, p0.stopped)
	p0.mu.Unlock()

	n.Cancel()
	assert.ErrorIs(t, <-second, context.Canceled)
}

func TestChain_CancelDoesNotStartFallback(t *testing.T) {
	srv := ttsServer(t, http.StatusOK, map[string]any{
		"success": true, "audio": base64.StdEncoding.EncodeToString([]byte("x")), "contentType": "audio/mpeg",
	}, nil)
	player := &recordingPlayer{block: true}
	fallback := &stubSpeaker{}
	chain := Chain{NewVendorSpeaker(srv.URL, player), fallback}

	done := make(chan error, 1)
	go func() { done <- chain.Speak(context.Background(), "hello") }()
	require.Eventually(t, func() bool { return player.plays() == 1 }, time.Second, time.Millisecond)

	chain.Cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("chain kept speaking after Cancel")
	}
	assert.Empty(t, fallback.spoken)
}
