//go:build unix

package speech

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
)

var ErrNoEngine = errors.New("speech: neither espeak nor say is installed")

// ExecEngine drives the espeak (Linux) or say (macOS) command.
type ExecEngine struct {
	bin string
}

func NewExecEngine() (*ExecEngine, error) {
	for _, name := range []string{"espeak-ng", "espeak", "say"} {
		if path, err := exec.LookPath(name); err == nil {
			return &ExecEngine{bin: path}, nil
		}
	}
	return nil, ErrNoEngine
}

func (e *ExecEngine) isSay() bool {
	return strings.HasSuffix(e.bin, "/say")
}

func (e *ExecEngine) Voices(ctx context.Context) ([]Voice, error) {
	var cmd *exec.Cmd
	if e.isSay() {
		cmd = exec.CommandContext(ctx, e.bin, "-v", "?")
	} else {
		cmd = exec.CommandContext(ctx, e.bin, "--voices")
	}
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("speech: list voices: %w", err)
	}
	if e.isSay() {
		return parseSayVoices(out), nil
	}
	return parseEspeakVoices(out), nil
}

// VoicesChanged is nil: installed voices are only read at startup.
func (e *ExecEngine) VoicesChanged() <-chan struct{} { return nil }

func (e *ExecEngine) Start(ctx context.Context, u Utterance) (Playback, error) {
	var args []string
	if u.Voice != "" {
		args = append(args, "-v", u.Voice)
	}
	if u.Rate > 0 {
		// both tools take words per minute; 175 is their normal speed
		args = append(args, "-r", strconv.Itoa(int(175*u.Rate)))
	}
	if !e.isSay() {
		args = append(args, "--")
	}
	args = append(args, u.Text)

	cmd := exec.CommandContext(ctx, e.bin, args...)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("speech: start %s: %w", e.bin, err)
	}
	return &processPlayback{cmd: cmd}, nil
}

type processPlayback struct {
	cmd *exec.Cmd
}

func (p *processPlayback) Wait() error   { return p.cmd.Wait() }
func (p *processPlayback) Pause() error  { return p.cmd.Process.Signal(syscall.SIGSTOP) }
func (p *processPlayback) Resume() error { return p.cmd.Process.Signal(syscall.SIGCONT) }

func (p *processPlayback) Stop() error {
	err := p.cmd.Process.Kill()
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}

// espeak --voices prints a header then "Pty Language Age/Gender VoiceName File Other".
func parseEspeakVoices(out []byte) []Voice {
	var voices []Voice
	sc := bufio.NewScanner(bytes.NewReader(out))
	first := true
	for sc.Scan() {
		if first {
			first = false
			continue
		}
		fields := strings.Fields(sc.Text())
		if len(fields) < 4 {
			continue
		}
		voices = append(voices, Voice{Name: fields[3], Lang: fields[1]})
	}
	return voices
}

// say -v ? prints "Name   lang_REGION   # sample".
func parseSayVoices(out []byte) []Voice {
	var voices []Voice
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line, _, _ := strings.Cut(sc.Text(), "#")
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		lang := fields[len(fields)-1]
		name := strings.Join(fields[:len(fields)-1], " ")
		voices = append(voices, Voice{Name: name, Lang: strings.ReplaceAll(lang, "_", "-")})
	}
	return voices
}

// CommandPlayer plays audio by writing it to a temporary file and running an
// external player (afplay, mpg123 or ffplay).
type CommandPlayer struct {
	bin  string
	args []string
}

func NewCommandPlayer() (*CommandPlayer, error) {
	candidates := []struct {
		name string
		args []string
	}{
		{"afplay", nil},
		{"mpg123", []string{"-q"}},
		{"ffplay", []string{"-nodisp", "-autoexit", "-loglevel", "quiet"}},
	}
	for _, c := range candidates {
		if path, err := exec.LookPath(c.name); err == nil {
			return &CommandPlayer{bin: path, args: c.args}, nil
		}
	}
	return nil, errors.New("speech: no audio player found (afplay, mpg123, ffplay)")
}

func (p *CommandPlayer) Play(ctx context.Context, audio []byte, contentType string) error {
	ext := ".mp3"
	if strings.Contains(contentType, "wav") {
		ext = ".wav"
	}
	f, err := os.CreateTemp("", "voicebridge-*"+ext)
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())
	if _, err := f.Write(audio); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	args := append(append([]string{}, p.args...), f.Name())
	if err := exec.CommandContext(ctx, p.bin, args...).Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("speech: play audio: %w", err)
	}
	return nil
}
