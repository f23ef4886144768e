//go:build unix

// Command speak reads text aloud, first through the VoiceBridge server's
// text-to-speech route and then, if that fails, through the local espeak or
// say synthesizer.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/voicebridge/apiv1/speech"
	"github.com/voicebridge/apiv1/ui"
	"github.com/voicebridge/apiv1/utils"
)

type cliConfig struct {
	ServerURL string  `env:"VOICEBRIDGE_URL" env-default:"http://localhost:5005"`
	Token     string  `env:"VOICEBRIDGE_TOKEN"`
	Voice     string  `env:"VOICEBRIDGE_VOICE"`
	Rate      float64 `env:"VOICEBRIDGE_RATE" env-default:"1"`
}

func main() {
	var cfg cliConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	flag.StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "VoiceBridge server URL")
	flag.StringVar(&cfg.Token, "token", cfg.Token, "access token sent to the server")
	flag.StringVar(&cfg.Voice, "voice", cfg.Voice, "voice preset or id")
	flag.Float64Var(&cfg.Rate, "rate", cfg.Rate, "local speech rate (0.5-2)")
	nativeOnly := flag.Bool("native", false, "skip the server and use the local synthesizer")
	listVoices := flag.Bool("voices", false, "list local voices and exit")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	toasts := ui.NewToasts(ui.WithNotifier(printNewToasts(os.Stderr)))
	defer toasts.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, cfg, *nativeOnly, *listVoices, log, toasts))
}

func run(ctx context.Context, cfg cliConfig, nativeOnly, listVoices bool, log *slog.Logger, toasts *ui.Toasts) int {
	var chain speech.Chain

	if !nativeOnly && !listVoices {
		player, err := speech.NewCommandPlayer()
		if err != nil {
			log.Warn("server speech disabled", utils.Err(err))
			toasts.Warning("No audio player found, using the local synthesizer")
		} else {
			chain = append(chain, speech.NewVendorSpeaker(cfg.ServerURL, player,
				speech.WithVoice(cfg.Voice),
				speech.WithAccessToken(cfg.Token),
			))
		}
	}

	engine, err := speech.NewExecEngine()
	if err != nil {
		log.Warn("local speech disabled", utils.Err(err))
	} else {
		var opts []speech.NativeOption
		if nativeOnly {
			opts = append(opts, speech.WithNativeVoice(cfg.Voice))
		}
		native := speech.NewNativeSynth(engine, append(opts, speech.WithRate(cfg.Rate))...)
		defer native.Close()

		if listVoices {
			voices, err := native.WaitVoices(ctx)
			if err != nil {
				toasts.Error("Could not list voices: " + err.Error())
				return 1
			}
			for _, v := range voices {
				fmt.Printf("%-24s %s\n", v.Name, v.Lang)
			}
			return 0
		}
		chain = append(chain, native)
	}
	if listVoices {
		toasts.Error("No local synthesizer found")
		return 1
	}

	text := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if text == "" {
		text, err = readAll(os.Stdin)
		if err != nil {
			toasts.Error("Could not read text: " + err.Error())
			return 1
		}
	}
	if text == "" {
		toasts.Info("Nothing to say")
		return 0
	}

	if err := chain.Speak(ctx, text); err != nil {
		log.Error("speech failed", utils.Err(err))
		toasts.Error("Speech failed. Try again or use -native")
		return 1
	}
	return 0
}

func readAll(r io.Reader) (string, error) {
	b, err := io.ReadAll(bufio.NewReader(r))
	return strings.TrimSpace(string(b)), err
}

// printNewToasts writes each toast once, when it first appears.
func printNewToasts(w io.Writer) func([]ui.Toast) {
	var mu sync.Mutex
	seen := map[string]bool{}
	return func(list []ui.Toast) {
		mu.Lock()
		defer mu.Unlock()
		for _, t := range list {
			if seen[t.ID] {
				continue
			}
			seen[t.ID] = true
			fmt.Fprintf(w, "[%s] %s %s\n", t.CreatedAt.Format(time.Kitchen), strings.ToUpper(string(t.Type)), t.Message)
		}
	}
}
