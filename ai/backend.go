package ai

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/voicebridge/apiv1/utils"
	"google.golang.org/genai"
)

// Audio is an inline audio clip sent along with a prompt.
type Audio struct {
	Data     []byte
	MIMEType string
}

type Image struct {
	Data     []byte
	MIMEType string
}

// Request is one generation round trip.
type Request struct {
	System string
	Prompt string
	Audio  *Audio
	JSON   bool
}

// Backend is the vendor model service.
type Backend interface {
	Generate(ctx context.Context, req Request) (string, error)
	GenerateImage(ctx context.Context, prompt string) (*Image, error)
}

var ErrNotConfigured = errors.New("ai: GEMINI_API_KEY is not set")

// GeminiConfig holds the startup settings. Model and ImageModel are fallbacks:
// GEMINI_MODEL and GEMINI_IMAGE_MODEL are looked up again on every call so a
// model switch needs no restart.
type GeminiConfig struct {
	APIKey     string
	Model      string
	ImageModel string
	Timeout    time.Duration
}

const (
	modelEnv      = "GEMINI_MODEL"
	imageModelEnv = "GEMINI_IMAGE_MODEL"
)

func (g *Gemini) model() string {
	if m := os.Getenv(modelEnv); m != "" {
		return m
	}
	return g.cfg.Model
}

func (g *Gemini) imageModel() string {
	if m := os.Getenv(imageModelEnv); m != "" {
		return m
	}
	return g.cfg.ImageModel
}

// Gemini talks to the Gemini API. The client is created lazily so a missing
// key only fails the requests that need it.
type Gemini struct {
	cfg    GeminiConfig
	client *genai.Client
}

func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	g := &Gemini{cfg: cfg}
	if cfg.APIKey == "" {
		return g, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("ai: new gemini client: %w", err)
	}
	g.client = client
	return g, nil
}

func (g *Gemini) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.cfg.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, g.cfg.Timeout)
}

func (g *Gemini) Generate(ctx context.Context, req Request) (string, error) {
	if g.client == nil {
		return "", ErrNotConfigured
	}
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	parts := []*genai.Part{genai.NewPartFromText(req.Prompt)}
	if req.Audio != nil {
		parts = append(parts, genai.NewPartFromBytes(req.Audio.Data, req.Audio.MIMEType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	cfg := &genai.GenerateContentConfig{}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.JSON {
		cfg.ResponseMIMEType = "application/json"
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model(), contents, cfg)
	if err != nil {
		return "", fmt.Errorf("ai: generate content: %w: %w", utils.ErrVendor, err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("ai: %w: empty response", utils.ErrVendor)
	}
	return text, nil
}

func (g *Gemini) GenerateImage(ctx context.Context, prompt string) (*Image, error) {
	if g.client == nil {
		return nil, ErrNotConfigured
	}
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	resp, err := g.client.Models.GenerateImages(ctx, g.imageModel(), prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("ai: generate image: %w: %w", utils.ErrVendor, err)
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return nil, fmt.Errorf("ai: %w: no image returned", utils.ErrVendor)
	}
	img := resp.GeneratedImages[0].Image
	mime := img.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	return &Image{Data: img.ImageBytes, MIMEType: mime}, nil
}
