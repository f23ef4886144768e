package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeAudio(t *testing.T) {
	tests := []struct {
		name     string
		encoded  string
		mime     string
		wantMIME string
		wantErr  bool
	}{
		{name: "raw base64 default mime", encoded: "aGVsbG8=", wantMIME: DefaultAudioMIME},
		{name: "raw base64 explicit mime", encoded: "aGVsbG8=", mime: "audio/wav", wantMIME: "audio/wav"},
		{name: "data url", encoded: "data:audio/ogg;base64,aGVsbG8=", wantMIME: "audio/ogg"},
		{name: "data url with codec", encoded: "data:audio/webm;codecs=opus;base64,aGVsbG8=", wantMIME: "audio/webm"},
		{name: "explicit beats data url", encoded: "data:audio/ogg;base64,aGVsbG8=", mime: "audio/mp4", wantMIME: "audio/mp4"},
		{name: "unpadded", encoded: "aGVsbG8", wantMIME: DefaultAudioMIME},
		{name: "garbage", encoded: "!!!", wantErr: true},
		{name: "empty", encoded: "", wantErr: true},
		{name: "data url without payload separator", encoded: "data:audio/ogg;base64", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			audio, err := DecodeAudio(tt.encoded, tt.mime)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAudio)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []byte("hello"), audio.Data)
			assert.Equal(t, tt.wantMIME, audio.MIMEType)
		})
	}
}

func TestGemini_NotConfigured(t *testing.T) {
	g, err := NewGemini(context.Background(), GeminiConfig{Model: "gemini-2.0-flash"})
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), Request{Prompt: "hi"})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = g.GenerateImage(context.Background(), "a cat")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestGemini_ModelReadPerCall(t *testing.T) {
	g, err := NewGemini(context.Background(), GeminiConfig{Model: "gemini-2.0-flash", ImageModel: "imagen-3.0-generate-002"})
	require.NoError(t, err)

	t.Setenv(modelEnv, "")
	t.Setenv(imageModelEnv, "")
	assert.Equal(t, "gemini-2.0-flash", g.model())
	assert.Equal(t, "imagen-3.0-generate-002", g.imageModel())

	t.Setenv(modelEnv, "gemini-2.5-pro")
	t.Setenv(imageModelEnv, "imagen-4.0-generate-001")
	assert.Equal(t, "gemini-2.5-pro", g.model())
	assert.Equal(t, "imagen-4.0-generate-001", g.imageModel())
}
