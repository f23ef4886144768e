package routes

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/voicebridge/apiv1/ai"
	"github.com/voicebridge/apiv1/elevenlabs"
	"github.com/voicebridge/apiv1/guides"
	"github.com/voicebridge/apiv1/mailer"
	"github.com/voicebridge/apiv1/middlewares"
	"github.com/voicebridge/apiv1/models"
	"github.com/voicebridge/apiv1/stats"
	"github.com/voicebridge/apiv1/utils"
)

type UserStore interface {
	LoginUserWithPassword(ctx context.Context, email, password string) (models.User, error)
	VerifyEmailCode(ctx context.Context, email, code string) (models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	SetVerificationCode(ctx context.Context, email, code string, expiry time.Time) error
	GetUserByID(ctx context.Context, id string) (models.User, error)
	UpdateSettings(ctx context.Context, userID string, settings models.Settings) (models.User, error)
}

type SessionStore interface {
	CreateTherapySession(ctx context.Context, session *models.TherapySession) error
	DailyStats(ctx context.Context, userID string) (stats.Daily, error)
}

type TokenIssuer interface {
	CreateAccessToken(userID, email string) (string, error)
	VerifyAccessToken(tokenString string) (*utils.AccessClaims, error)
}

// Assistant is the generative AI vendor as seen by the handlers.
type Assistant interface {
	CorrectSpeech(ctx context.Context, transcript string, audio *ai.Audio) (*ai.Correction, error)
	ColorReport(ctx context.Context, color string, audio *ai.Audio, persona string) (*ai.ColorReport, error)
	Mirror(ctx context.Context, text string, audio *ai.Audio, persona string) (*ai.MirrorResult, error)
	Play(ctx context.Context, scenario, childInput string, history []ai.HistoryTurn, persona string) (*ai.PlayTurn, error)
	WorldBuild(ctx context.Context, text string, audio *ai.Audio, persona string) (*ai.Story, error)
	Illustrate(ctx context.Context, prompt string) (string, error)
	AnalyzeSpeech(ctx context.Context, in ai.AnalyzeInput) (*ai.SpeechAnalysis, error)
	ClassifyEmotion(ctx context.Context, audio *ai.Audio) (*ai.EmotionClassification, error)
}

// SpeechVendor is the text-to-speech vendor.
type SpeechVendor interface {
	Synthesize(ctx context.Context, req elevenlabs.SynthesisRequest) ([]byte, error)
	Voices(ctx context.Context) ([]elevenlabs.Voice, error)
}

type Deps struct {
	Log       *slog.Logger
	Users     UserStore
	Sessions  SessionStore
	Tokens    TokenIssuer
	Mail      mailer.Sender
	Assistant Assistant
	Speech    SpeechVendor
	Guides    *guides.Catalog
	CodeTTL   time.Duration
	RateLimit float64
	// TrustProxy makes the rate limiter honour forwarding headers.
	TrustProxy bool
}

type Handler struct {
	log        *slog.Logger
	users      UserStore
	sessions   SessionStore
	tokens     TokenIssuer
	mail       mailer.Sender
	assistant  Assistant
	speech     SpeechVendor
	guides     *guides.Catalog
	codeTTL    time.Duration
	rateLimit  float64
	trustProxy bool
	now        func() time.Time
}

func NewHandler(d Deps) *Handler {
	if d.CodeTTL <= 0 {
		d.CodeTTL = utils.DEFAULT_VERIFICATION_CODE_TTL
	}
	return &Handler{
		log:        d.Log,
		users:      d.Users,
		sessions:   d.Sessions,
		tokens:     d.Tokens,
		mail:       d.Mail,
		assistant:  d.Assistant,
		speech:     d.Speech,
		guides:     d.Guides,
		codeTTL:    d.CodeTTL,
		rateLimit:  d.RateLimit,
		trustProxy: d.TrustProxy,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func CreateRoutes(r *mux.Router, h *Handler) {
	r.Use(middlewares.RequestLogger(h.log))
	requireAuth := middlewares.IsAccessTokenAuthorized(h.tokens, h.log)

	auth := r.PathPrefix("/api/auth").Subrouter()
	if h.rateLimit > 0 {
		auth.Use(middlewares.RateLimit(h.rateLimit, h.trustProxy))
	}
	AuthRouter(auth, h)

	user := r.PathPrefix("/api/user").Subrouter()
	user.Use(requireAuth)
	user.HandleFunc("/me", h.Me).Methods(http.MethodGet)
	user.HandleFunc("/settings", h.UpdateSettings).Methods(http.MethodPut)

	r.HandleFunc("/api/bridge/correct", h.BridgeCorrect).Methods(http.MethodPost)

	r.HandleFunc("/api/guides", h.ListGuides).Methods(http.MethodGet)
	r.HandleFunc("/api/guides/{id}", h.GetGuide).Methods(http.MethodGet)

	kids := r.PathPrefix("/api/kids").Subrouter()
	kids.HandleFunc("/color-reporter", h.ColorReporter).Methods(http.MethodPost)
	kids.HandleFunc("/mirror", h.Mirror).Methods(http.MethodPost)
	kids.HandleFunc("/play", h.Play).Methods(http.MethodPost)
	kids.HandleFunc("/world-build", h.WorldBuild).Methods(http.MethodPost)

	therapy := r.PathPrefix("/api/therapy").Subrouter()
	therapy.HandleFunc("/analyze", h.TherapyAnalyze).Methods(http.MethodPost)
	therapy.HandleFunc("/emotion", h.TherapyEmotion).Methods(http.MethodPost)
	therapy.HandleFunc("/stats", h.TherapyStats).Methods(http.MethodGet)
	therapy.HandleFunc("/tts", h.TherapyTTS).Methods(http.MethodPost)
	therapy.Handle("/sessions", requireAuth(http.HandlerFunc(h.CreateSession))).Methods(http.MethodPost)

	r.HandleFunc("/api/tts", h.TTS).Methods(http.MethodPost)
	r.HandleFunc("/api/voices", h.Voices).Methods(http.MethodGet)

	DashboardRouter(r, h)
}
