package elevenlabs

import "strings"

// Premade ElevenLabs voices addressable by name.
var voicePresets = map[string]string{
	"rachel": "21m00Tcm4TlvDq8ikWAM",
	"domi":   "AZnzlk1XvdvUeBnXmlld",
	"bella":  "EXAVITQu4vr4xnSDxMaL",
	"antoni": "ErXwobaYiN019PkySvjV",
	"elli":   "MF3mGyEYCl7XYWbV9V6O",
	"josh":   "TxGEqnHWrfWFTfGW9XZX",
	"arnold": "VR6AewLTigWG4xSOukaG",
	"adam":   "pNInz6obpgDQGcFmaJgB",
	"sam":    "yoZ06aMxZJJ28mfd3POQ",
}

const (
	DefaultVoice = "rachel"
	TherapyVoice = "bella"
)

var DefaultSettings = VoiceSettings{Stability: 0.5, SimilarityBoost: 0.75}

// TherapySettings favours a steady, slightly slower delivery.
var TherapySettings = VoiceSettings{Stability: 0.75, SimilarityBoost: 0.8}

const DefaultTherapySpeed = 0.9

// ResolveVoice maps a preset name to its voice id. Unknown values are taken
// to be voice ids already; an empty value selects fallback.
func ResolveVoice(voice, fallback string) string {
	voice = strings.TrimSpace(voice)
	if voice == "" {
		voice = fallback
	}
	if id, ok := voicePresets[strings.ToLower(voice)]; ok {
		return id
	}
	return voice
}
