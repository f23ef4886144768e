package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/voicebridge/apiv1/ai"
	"github.com/voicebridge/apiv1/config"
	"github.com/voicebridge/apiv1/dbhelper"
	"github.com/voicebridge/apiv1/elevenlabs"
	"github.com/voicebridge/apiv1/guides"
	"github.com/voicebridge/apiv1/mailer"
	"github.com/voicebridge/apiv1/routes"
	"github.com/voicebridge/apiv1/utils"
)

func main() {
	cfg := config.MustLoad()

	// Setting up logs
	var out io.Writer = os.Stdout
	if cfg.LogFile != "" {
		file, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o666)
		if err != nil {
			slog.Error("failed to open log file", utils.Err(err))
			os.Exit(1)
		}
		defer file.Close()
		out = file
	}
	log := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", utils.Err(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	// Setting up database
	store, err := dbhelper.OpenDB(cfg.DB)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.InitDB(); err != nil {
		return err
	}

	gemini, err := ai.NewGemini(ctx, ai.GeminiConfig{
		APIKey:     cfg.Gemini.APIKey,
		Model:      cfg.Gemini.Model,
		ImageModel: cfg.Gemini.ImageModel,
		Timeout:    cfg.VendorTimeout,
	})
	if err != nil {
		return err
	}
	if cfg.Gemini.APIKey == "" {
		log.Warn("GEMINI_API_KEY is not set, AI routes will fail")
	}
	if cfg.TTS.APIKey == "" {
		log.Warn("ELEVENLABS_API_KEY is not set, speech routes will fail")
	}

	catalog, err := guides.Default()
	if err != nil {
		return err
	}

	h := routes.NewHandler(routes.Deps{
		Log:        log,
		Users:      store,
		Sessions:   store,
		Tokens:     utils.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL),
		Mail:       mailer.New(log, cfg.Mail),
		Assistant:  ai.NewAssistant(gemini),
		Speech:     elevenlabs.New(cfg.TTS.APIKey, cfg.TTS.BaseURL, cfg.TTS.Model, cfg.VendorTimeout),
		Guides:     catalog,
		CodeTTL:    cfg.Auth.VerificationCodeTTL,
		RateLimit:  cfg.Auth.RateLimit,
		TrustProxy: cfg.Auth.TrustProxy,
	})

	// Opening the webserver
	r := mux.NewRouter()
	r.StrictSlash(true)
	routes.CreateRoutes(r, h)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", slog.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
