package routes

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voicebridge/apiv1/ai"
	"github.com/voicebridge/apiv1/config"
	"github.com/voicebridge/apiv1/dbhelper"
	"github.com/voicebridge/apiv1/elevenlabs"
	"github.com/voicebridge/apiv1/guides"
	"github.com/voicebridge/apiv1/models"
	"github.com/voicebridge/apiv1/utils"
)

type fakeAssistant struct {
	mu         sync.Mutex
	calls      []string
	err        error
	illustrErr error
	story      *ai.Story
	lastAudio  *ai.Audio
}

func (f *fakeAssistant) record(name string, audio *ai.Audio) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	f.lastAudio = audio
	return f.err
}

func (f *fakeAssistant) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeAssistant) CorrectSpeech(_ context.Context, transcript string, audio *ai.Audio) (*ai.Correction, error) {
	if err := f.record("correct", audio); err != nil {
		return nil, err
	}
	return &ai.Correction{OriginalTranscript: transcript, CorrectedText: "I want water", Confidence: 0.9}, nil
}

func (f *fakeAssistant) ColorReport(_ context.Context, color string, audio *ai.Audio, _ string) (*ai.ColorReport, error) {
	if err := f.record("color", audio); err != nil {
		return nil, err
	}
	return &ai.ColorReport{Color: color, Emotion: "happy", Intensity: 3}, nil
}

func (f *fakeAssistant) Mirror(_ context.Context, text string, audio *ai.Audio, _ string) (*ai.MirrorResult, error) {
	if err := f.record("mirror", audio); err != nil {
		return nil, err
	}
	return &ai.MirrorResult{Transcript: text, DetectedEmotion: "sad"}, nil
}

func (f *fakeAssistant) Play(_ context.Context, _, _ string, _ []ai.HistoryTurn, _ string) (*ai.PlayTurn, error) {
	if err := f.record("play", nil); err != nil {
		return nil, err
	}
	return &ai.PlayTurn{Response: "Let's build a castle!"}, nil
}

func (f *fakeAssistant) WorldBuild(_ context.Context, _ string, audio *ai.Audio, _ string) (*ai.Story, error) {
	if err := f.record("world", audio); err != nil {
		return nil, err
	}
	story := *f.story
	return &story, nil
}

func (f *fakeAssistant) Illustrate(_ context.Context, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "illustrate")
	if f.illustrErr != nil {
		return "", f.illustrErr
	}
	return "data:image/png;base64,AAAA", nil
}

func (f *fakeAssistant) AnalyzeSpeech(_ context.Context, in ai.AnalyzeInput) (*ai.SpeechAnalysis, error) {
	if err := f.record("analyze", in.Audio); err != nil {
		return nil, err
	}
	return &ai.SpeechAnalysis{TranscribedText: in.TranscribedText, Accuracy: 88}, nil
}

func (f *fakeAssistant) ClassifyEmotion(_ context.Context, audio *ai.Audio) (*ai.EmotionClassification, error) {
	if err := f.record("emotion", audio); err != nil {
		return nil, err
	}
	return &ai.EmotionClassification{Emotion: "calm", Confidence: 0.7}, nil
}

type fakeSpeech struct {
	mu       sync.Mutex
	requests []elevenlabs.SynthesisRequest
	err      error
}

func (f *fakeSpeech) Synthesize(_ context.Context, req elevenlabs.SynthesisRequest) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return []byte("mp3"), nil
}

func (f *fakeSpeech) Voices(_ context.Context) ([]elevenlabs.Voice, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []elevenlabs.Voice{{VoiceID: "v1", Name: "Rachel"}}, nil
}

type fakeMailer struct {
	mu    sync.Mutex
	codes map[string]string
}

func (f *fakeMailer) SendVerificationCode(_ context.Context, to, _ string, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.codes == nil {
		f.codes = map[string]string{}
	}
	f.codes[to] = code
	return nil
}

func (f *fakeMailer) codeFor(email string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.codes[email]
}

type testServer struct {
	router    *mux.Router
	store     *dbhelper.Store
	tokens    *utils.TokenIssuer
	assistant *fakeAssistant
	speech    *fakeSpeech
	mail      *fakeMailer
}

func newTestServer(t *testing.T, rateLimit float64) *testServer {
	t.Helper()
	store, err := dbhelper.OpenDB(config.DBConfig{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, store.InitDB())
	t.Cleanup(func() { _ = store.Close() })

	catalog, err := guides.Default()
	require.NoError(t, err)

	ts := &testServer{
		store:     store,
		tokens:    utils.NewTokenIssuer("test-secret", time.Hour),
		assistant: &fakeAssistant{story: &ai.Story{Title: "Moon Land", Story: "Once...", ImagePrompt: "a moon castle"}},
		speech:    &fakeSpeech{},
		mail:      &fakeMailer{},
	}
	h := NewHandler(Deps{
		Log:       slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
		Users:     store,
		Sessions:  store,
		Tokens:    ts.tokens,
		Mail:      ts.mail,
		Assistant: ts.assistant,
		Speech:    ts.speech,
		Guides:    catalog,
		RateLimit: rateLimit,
	})
	ts.router = mux.NewRouter()
	CreateRoutes(ts.router, h)
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body any, header http.Header) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func (ts *testServer) createUser(t *testing.T, email, password string, verified bool) models.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	u := models.User{Email: email, Name: "Sam", PasswordHash: hash, IsEmailVerified: verified}
	u.ApplySettings(models.DefaultSettings())
	require.NoError(t, ts.store.CreateUser(context.Background(), &u))
	return u
}

func bearer(t *testing.T, ts *testServer, u models.User) http.Header {
	t.Helper()
	token, err := ts.tokens.CreateAccessToken(u.ID, u.Email)
	require.NoError(t, err)
	return http.Header{"Authorization": []string{"Bearer " + token}}
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t, 0)
	ts.createUser(t, "sam@example.com", "correct-horse", true)

	t.Run("email is case-insensitive", func(t *testing.T) {
		rec, body := ts.do(t, http.MethodPost, "/api/auth/login",
			map[string]string{"email": "SAM@Example.com", "password": "correct-horse"}, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, body["success"])
		assert.NotEmpty(t, body["accessToken"])
		user := body["user"].(map[string]any)
		assert.Equal(t, "sam@example.com", user["email"])
		assert.NotContains(t, user, "passwordHash")

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "vb_token", cookies[0].Name)
	})

	t.Run("unknown user and wrong password look the same", func(t *testing.T) {
		rec1, body1 := ts.do(t, http.MethodPost, "/api/auth/login",
			map[string]string{"email": "nobody@example.com", "password": "correct-horse"}, nil)
		rec2, body2 := ts.do(t, http.MethodPost, "/api/auth/login",
			map[string]string{"email": "sam@example.com", "password": "wrong"}, nil)
		assert.Equal(t, http.StatusUnauthorized, rec1.Code)
		assert.Equal(t, rec1.Code, rec2.Code)
		assert.Equal(t, body1, body2)
		assert.Equal(t, utils.INVALID_CREDENTIALS_ERROR, body1["error"])
	})

	t.Run("missing fields", func(t *testing.T) {
		rec, body := ts.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "sam@example.com"}, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, utils.MISSING_LOGIN_FIELDS_ERROR, body["error"])
	})

	t.Run("malformed body", func(t *testing.T) {
		rec, body := ts.do(t, http.MethodPost, "/api/auth/login", `{"email":`, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, utils.INVALID_REQUEST_ERROR, body["error"])
	})
}

func TestLogin_Unverified(t *testing.T) {
	ts := newTestServer(t, 0)
	ts.createUser(t, "new@example.com", "correct-horse", false)

	rec, body := ts.do(t, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "new@example.com", "password": "correct-horse"}, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, true, body["requiresVerification"])
	assert.Equal(t, false, body["success"])
}

func TestSignupAndVerify(t *testing.T) {
	ts := newTestServer(t, 0)

	rec, body := ts.do(t, http.MethodPost, "/api/auth/signup", map[string]any{
		"email":    "Kid@Example.com",
		"password": "longenough",
		"name":     "Kid",
		"disability": map[string]any{
			"type":         "stutter",
			"triggerWords": []string{"hello"},
		},
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "kid@example.com", body["email"])

	code := ts.mail.codeFor("kid@example.com")
	require.Len(t, code, 6)

	rec, _ = ts.do(t, http.MethodPost, "/api/auth/signup",
		map[string]any{"email": "kid@example.com", "password": "longenough", "name": "Kid"}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	verify := func(email, code string) (*httptest.ResponseRecorder, map[string]any) {
		return ts.do(t, http.MethodPost, "/api/auth/verify-email", map[string]string{"email": email, "code": code}, nil)
	}

	rec, body = verify("kid@example.com", "000000x")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, utils.INVALID_CODE_ERROR, body["error"])

	rec, body = verify("ghost@example.com", code)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, utils.ACCOUNT_NOT_FOUND_ERROR, body["error"])

	rec, body = verify("KID@example.com", code)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, body["accessToken"])
	user := body["user"].(map[string]any)
	assert.Equal(t, true, user["isEmailVerified"])
	assert.Equal(t, []any{"hello"}, user["disability"].(map[string]any)["triggerWords"])

	rec, body = verify("kid@example.com", code)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, utils.ALREADY_VERIFIED_ERROR, body["error"])

	rec, _ = verify("kid@example.com", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignup_Invalid(t *testing.T) {
	ts := newTestServer(t, 0)

	rec, body := ts.do(t, http.MethodPost, "/api/auth/signup",
		map[string]any{"email": "not-an-email", "password": "short", "name": "x"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, utils.INVALID_SIGNUP_ERROR, body["error"])
}

func TestResendVerification(t *testing.T) {
	ts := newTestServer(t, 0)
	ts.createUser(t, "pending@example.com", "correct-horse", false)
	ts.createUser(t, "done@example.com", "correct-horse", true)

	for _, email := range []string{"pending@example.com", "done@example.com", "ghost@example.com"} {
		rec, body := ts.do(t, http.MethodPost, "/api/auth/resend-verification", map[string]string{"email": email}, nil)
		assert.Equal(t, http.StatusOK, rec.Code, email)
		assert.Equal(t, utils.VERIFICATION_SENT_MESSAGE, body["message"], email)
	}
	assert.Len(t, ts.mail.codeFor("pending@example.com"), 6)
	assert.Empty(t, ts.mail.codeFor("done@example.com"))
	assert.Empty(t, ts.mail.codeFor("ghost@example.com"))
}

func TestAuthRateLimit(t *testing.T) {
	ts := newTestServer(t, 1)
	body := map[string]string{"email": "x@example.com", "password": "pw"}

	rec, _ := ts.do(t, http.MethodPost, "/api/auth/login", body, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec, _ = ts.do(t, http.MethodPost, "/api/auth/login", body, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestUserRoutes(t *testing.T) {
	ts := newTestServer(t, 0)
	u := ts.createUser(t, "sam@example.com", "correct-horse", true)

	rec, _ := ts.do(t, http.MethodGet, "/api/user/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, body := ts.do(t, http.MethodGet, "/api/user/me", nil, bearer(t, ts, u))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "sam@example.com", body["user"].(map[string]any)["email"])

	rec, body = ts.do(t, http.MethodPut, "/api/user/settings",
		map[string]any{"fontMode": "dyslexic", "highContrast": true}, bearer(t, ts, u))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	settings := body["user"].(map[string]any)["settings"].(map[string]any)
	assert.Equal(t, "dyslexic", settings["fontMode"])
	assert.Equal(t, true, settings["highContrast"])
	assert.Equal(t, "medium", settings["textSize"])
	assert.Equal(t, 1.0, settings["speechRate"])

	rec, _ = ts.do(t, http.MethodPut, "/api/user/settings", map[string]any{"fontMode": "comic"}, bearer(t, ts, u))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAIRoutes_RejectMissingInputBeforeVendor(t *testing.T) {
	ts := newTestServer(t, 0)

	cases := []struct {
		path string
		body any
	}{
		{"/api/bridge/correct", map[string]any{}},
		{"/api/bridge/correct", map[string]any{"mimeType": "audio/wav"}},
		{"/api/kids/color-reporter", map[string]any{"color": "blue"}},
		{"/api/kids/color-reporter", map[string]any{"audioData": "AAAA"}},
		{"/api/kids/mirror", map[string]any{"persona": "friend"}},
		{"/api/kids/play", map[string]any{"scenario": "castle"}},
		{"/api/kids/world-build", map[string]any{}},
		{"/api/therapy/analyze", map[string]any{"transcribedText": "hello"}},
		{"/api/therapy/emotion", map[string]any{"mimeType": "audio/webm"}},
		{"/api/bridge/correct", map[string]any{"audioBase64": "!!not base64!!"}},
	}
	for _, tc := range cases {
		rec, body := ts.do(t, http.MethodPost, tc.path, tc.body, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, tc.path)
		assert.Equal(t, false, body["success"], tc.path)
		assert.NotEmpty(t, body["error"], tc.path)
	}
	assert.Zero(t, ts.assistant.callCount())
}

func TestBridgeCorrect(t *testing.T) {
	ts := newTestServer(t, 0)

	rec, body := ts.do(t, http.MethodPost, "/api/bridge/correct", map[string]any{"rawTranscript": "i w-want water"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, "I want water", data["correctedText"])
	assert.Nil(t, ts.assistant.lastAudio)

	audio := "data:audio/wav;base64," + base64.StdEncoding.EncodeToString([]byte("RIFF"))
	rec, _ = ts.do(t, http.MethodPost, "/api/bridge/correct", map[string]any{"audioBase64": audio}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, ts.assistant.lastAudio)
	assert.Equal(t, "audio/wav", ts.assistant.lastAudio.MIMEType)
	assert.Equal(t, []byte("RIFF"), ts.assistant.lastAudio.Data)
}

func TestAIRoutes_VendorFailure(t *testing.T) {
	ts := newTestServer(t, 0)
	ts.assistant.err = errors.New("quota exceeded")

	rec, body := ts.do(t, http.MethodPost, "/api/kids/play", map[string]any{"scenario": "castle", "childInput": "hi"}, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, utils.AI_SERVICE_ERROR, body["error"])
	assert.NotContains(t, body, "details")

	rec, body = ts.do(t, http.MethodPost, "/api/therapy/analyze",
		map[string]any{"targetText": "sun", "transcribedText": "thun"}, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "quota exceeded", body["details"])
}

func TestTherapyAnalyze_SilentAttempt(t *testing.T) {
	ts := newTestServer(t, 0)

	rec, body := ts.do(t, http.MethodPost, "/api/therapy/analyze", map[string]any{"targetText": "sun", "transcribedText": "  "}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, 0.0, data["accuracy"])
	assert.Equal(t, 0.0, data["overallScore"])
	assert.Equal(t, utils.NO_SPEECH_FEEDBACK, data["feedback"])
	assert.Zero(t, ts.assistant.callCount())

	rec, body = ts.do(t, http.MethodPost, "/api/therapy/analyze", map[string]any{"targetText": "sun", "transcribedText": "thun"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 88.0, body["data"].(map[string]any)["accuracy"])
}

func TestWorldBuild(t *testing.T) {
	ts := newTestServer(t, 0)

	rec, body := ts.do(t, http.MethodPost, "/api/kids/world-build", map[string]any{"text": "a moon made of cheese"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "data:image/png;base64,AAAA", body["data"].(map[string]any)["imageUrl"])

	ts.assistant.illustrErr = errors.New("image model down")
	rec, body = ts.do(t, http.MethodPost, "/api/kids/world-build", map[string]any{"text": "a moon made of cheese"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, "Moon Land", data["title"])
	assert.NotContains(t, data, "imageUrl")
}

func TestTTS(t *testing.T) {
	ts := newTestServer(t, 0)

	rec, body := ts.do(t, http.MethodPost, "/api/tts", map[string]any{"text": "hello", "voiceId": "Bella"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("mp3")), body["audio"])
	assert.Equal(t, "audio/mpeg", body["contentType"])
	require.Len(t, ts.speech.requests, 1)
	assert.Equal(t, "EXAVITQu4vr4xnSDxMaL", ts.speech.requests[0].VoiceID)
	assert.Equal(t, elevenlabs.DefaultSettings, ts.speech.requests[0].Settings)

	rec, _ = ts.do(t, http.MethodPost, "/api/tts", map[string]any{"text": "hello", "voiceId": "customVoice123", "stability": 0.2}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "customVoice123", ts.speech.requests[1].VoiceID)
	assert.Equal(t, 0.2, ts.speech.requests[1].Settings.Stability)

	rec, _ = ts.do(t, http.MethodPost, "/api/therapy/tts", map[string]any{"text": "slowly"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	therapy := ts.speech.requests[2]
	assert.Equal(t, "EXAVITQu4vr4xnSDxMaL", therapy.VoiceID)
	assert.Equal(t, 0.75, therapy.Settings.Stability)
	assert.Equal(t, 0.8, therapy.Settings.SimilarityBoost)
	require.NotNil(t, therapy.Settings.Speed)
	assert.Equal(t, 0.9, *therapy.Settings.Speed)

	rec, _ = ts.do(t, http.MethodPost, "/api/tts", map[string]any{"voiceId": "adam"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, ts.speech.requests, 3)

	ts.speech.err = errors.New("vendor down")
	rec, body = ts.do(t, http.MethodPost, "/api/tts", map[string]any{"text": "hello"}, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, utils.TTS_ERROR, body["error"])
}

func TestVoices(t *testing.T) {
	ts := newTestServer(t, 0)

	rec, body := ts.do(t, http.MethodGet, "/api/voices", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["voices"], 1)
}

func TestGuides(t *testing.T) {
	ts := newTestServer(t, 0)

	rec, body := ts.do(t, http.MethodGet, "/api/guides?category=PLOSIVE&difficulty=easy", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2.0, body["count"])

	rec, body = ts.do(t, http.MethodGet, "/api/guides", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10.0, body["count"])

	rec, body = ts.do(t, http.MethodGet, "/api/guides/s", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "s", body["data"].(map[string]any)["id"])

	rec, _ = ts.do(t, http.MethodGet, "/api/guides/zz", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTherapySessionsAndStats(t *testing.T) {
	ts := newTestServer(t, 0)
	u := ts.createUser(t, "sam@example.com", "correct-horse", true)

	rec, _ := ts.do(t, http.MethodGet, "/api/therapy/stats", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body := ts.do(t, http.MethodGet, "/api/therapy/stats?userId="+u.ID, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{
		"totalSessions": 0.0, "totalDuration": 0.0, "totalWords": 0.0,
		"avgAccuracy": 0.0, "avgClarity": 0.0, "avgOverall": 0.0,
	}, body["data"])

	rec, _ = ts.do(t, http.MethodPost, "/api/therapy/sessions", map[string]any{"duration": 30}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	for _, acc := range []float64{80, 90, 100} {
		rec, _ = ts.do(t, http.MethodPost, "/api/therapy/sessions", map[string]any{
			"duration": 30, "accuracy": acc, "clarityScore": 70, "overallScore": 75, "targetText": "red lorry",
		}, bearer(t, ts, u))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec, body = ts.do(t, http.MethodGet, "/api/therapy/stats?userId="+u.ID, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, 3.0, data["totalSessions"])
	assert.Equal(t, 90.0, data["totalDuration"])
	assert.Equal(t, 6.0, data["totalWords"])
	assert.Equal(t, 90.0, data["avgAccuracy"])
}

func TestDashboard(t *testing.T) {
	ts := newTestServer(t, 0)
	u := ts.createUser(t, "sam@example.com", "correct-horse", true)

	rec, _ := ts.do(t, http.MethodGet, "/dashboard/therapy", nil, nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec, _ = ts.do(t, http.MethodGet, "/dashboard", nil, http.Header{"Authorization": []string{"Bearer forged"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	token, err := ts.tokens.CreateAccessToken(u.ID, u.Email)
	require.NoError(t, err)
	rec, _ = ts.do(t, http.MethodGet, "/dashboard/therapy", nil, http.Header{"Cookie": []string{"vb_token=" + token}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Speech Therapy")
	assert.Contains(t, rec.Body.String(), "Welcome back, Sam")

	rec, _ = ts.do(t, http.MethodGet, "/dashboard/nope", nil, bearer(t, ts, u))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = ts.do(t, http.MethodGet, "/login", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAIRoutes_BlankTextIsMissing(t *testing.T) {
	ts := newTestServer(t, 0)

	cases := []struct {
		path string
		body any
	}{
		{"/api/kids/mirror", map[string]any{"text": "   "}},
		{"/api/kids/world-build", map[string]any{"text": "\t\n"}},
		{"/api/bridge/correct", map[string]any{"rawTranscript": "  "}},
		{"/api/kids/play", map[string]any{"scenario": "castle", "childInput": " "}},
		{"/api/therapy/analyze", map[string]any{"targetText": "  ", "transcribedText": "sun"}},
	}
	for _, tc := range cases {
		rec, body := ts.do(t, http.MethodPost, tc.path, tc.body, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, tc.path)
		assert.NotEqual(t, utils.INVALID_REQUEST_ERROR, body["error"], tc.path)
	}
	assert.Zero(t, ts.assistant.callCount())

	rec, _ := ts.do(t, http.MethodPost, "/api/tts", map[string]any{"text": "   "}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, ts.speech.requests)
}

func TestDecodeValidBody_Errors(t *testing.T) {
	decode := func(body string) error {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte(body)))
		_, err := DecodeValidBody[MirrorRequest](httptest.NewRecorder(), req)
		return err
	}

	err := decode(`{"text": "  "}`)
	assert.ErrorIs(t, err, utils.ErrValidation)

	err = decode(`{"text": "hi", "extra": 1}`)
	assert.ErrorIs(t, err, errMalformedBody)
	assert.NotErrorIs(t, err, utils.ErrValidation)

	assert.NoError(t, decode(`{"text": " hi "}`))
}
