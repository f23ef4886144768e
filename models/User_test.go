package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func TestUser_TriggerWordList(t *testing.T) {
	u := &User{}
	assert.Equal(t, []string{}, u.TriggerWordList())

	u.SetTriggerWords([]string{"loud", "dark"})
	assert.Equal(t, []string{"loud", "dark"}, u.TriggerWordList())

	u.TriggerWords = datatypes.JSON(`{"not":"a list"}`)
	assert.Equal(t, []string{}, u.TriggerWordList())

	u.SetTriggerWords(nil)
	assert.JSONEq(t, `[]`, string(u.TriggerWords))
}

func TestUser_Profile(t *testing.T) {
	u := &User{
		ID:                 "u-1",
		Email:              "kid@x.com",
		Name:               "Kid",
		IsEmailVerified:    true,
		DisabilityType:     "stuttering",
		DisabilitySeverity: "mild",
		VoiceID:            "rachel",
		SpeechRate:         0.9,
		FontMode:           "dyslexic",
		TextSize:           "large",
		HighContrast:       true,
	}
	u.SetTriggerWords([]string{"p", "b"})

	p := u.Profile()
	assert.Equal(t, "u-1", p.ID)
	assert.Equal(t, []string{"p", "b"}, p.Disability.TriggerWords)
	assert.Equal(t, "stuttering", p.Disability.Type)
	assert.Equal(t, "dyslexic", p.Settings.FontMode)
	assert.True(t, p.Settings.HighContrast)
	assert.False(t, p.Settings.ReducedMotion)

	u.ApplySettings(Settings{VoiceID: "adam", SpeechRate: 1.2, FontMode: "standard", TextSize: "small", ReducedMotion: true})
	assert.Equal(t, "adam", u.VoiceID)
	assert.True(t, u.ReducedMotion)
	assert.False(t, u.HighContrast)
}
