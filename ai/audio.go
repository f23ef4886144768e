package ai

import (
	"encoding/base64"
	"errors"
	"strings"
)

const DefaultAudioMIME = "audio/webm"

var ErrInvalidAudio = errors.New("ai: audio is not valid base64")

// DecodeAudio accepts raw base64 or a data URL ("data:audio/wav;base64,...").
// An explicit mimeType wins over the one embedded in the data URL.
func DecodeAudio(encoded, mimeType string) (*Audio, error) {
	payload := strings.TrimSpace(encoded)
	embedded := ""
	if strings.HasPrefix(payload, "data:") {
		header, data, ok := strings.Cut(payload, ",")
		if !ok {
			return nil, ErrInvalidAudio
		}
		embedded = strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
		if i := strings.Index(embedded, ";"); i >= 0 {
			embedded = embedded[:i]
		}
		payload = data
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(payload)
	}
	if err != nil || len(data) == 0 {
		return nil, ErrInvalidAudio
	}

	switch {
	case mimeType != "":
	case embedded != "":
		mimeType = embedded
	default:
		mimeType = DefaultAudioMIME
	}
	return &Audio{Data: data, MIMEType: mimeType}, nil
}
