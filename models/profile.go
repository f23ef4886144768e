package models

import "time"

type DisabilityProfile struct {
	Type         string   `json:"type"`
	Severity     string   `json:"severity"`
	TriggerWords []string `json:"triggerWords"`
	Description  string   `json:"description"`
}

type Settings struct {
	VoiceID       string  `json:"voiceId"`
	SpeechRate    float64 `json:"speechRate"`
	FontMode      string  `json:"fontMode"`
	TextSize      string  `json:"textSize"`
	HighContrast  bool    `json:"highContrast"`
	ReducedMotion bool    `json:"reducedMotion"`
}

// Profile is the normalized user shape returned by login and verification.
type Profile struct {
	ID              string            `json:"id"`
	Email           string            `json:"email"`
	Name            string            `json:"name"`
	IsEmailVerified bool              `json:"isEmailVerified"`
	Disability      DisabilityProfile `json:"disability"`
	Settings        Settings          `json:"settings"`
	CreatedAt       time.Time         `json:"createdAt"`
}

func (u *User) Profile() Profile {
	return Profile{
		ID:              u.ID,
		Email:           u.Email,
		Name:            u.Name,
		IsEmailVerified: u.IsEmailVerified,
		Disability: DisabilityProfile{
			Type:         u.DisabilityType,
			Severity:     u.DisabilitySeverity,
			TriggerWords: u.TriggerWordList(),
			Description:  u.DisabilityDescription,
		},
		Settings:  u.CurrentSettings(),
		CreatedAt: u.CreatedAt,
	}
}

// DefaultSettings are the personalization values of a new account.
func DefaultSettings() Settings {
	return Settings{SpeechRate: 1, FontMode: "standard", TextSize: "medium"}
}

func (u *User) CurrentSettings() Settings {
	return Settings{
		VoiceID:       u.VoiceID,
		SpeechRate:    u.SpeechRate,
		FontMode:      u.FontMode,
		TextSize:      u.TextSize,
		HighContrast:  u.HighContrast,
		ReducedMotion: u.ReducedMotion,
	}
}

func (u *User) ApplySettings(s Settings) {
	u.VoiceID = s.VoiceID
	u.SpeechRate = s.SpeechRate
	u.FontMode = s.FontMode
	u.TextSize = s.TextSize
	u.HighContrast = s.HighContrast
	u.ReducedMotion = s.ReducedMotion
}
