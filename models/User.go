package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	ID           string `gorm:"primaryKey;size:36"`
	Email        string `gorm:"size:255;uniqueIndex;not null"`
	Name         string `gorm:"size:255"`
	PasswordHash string `gorm:"not null"`

	IsEmailVerified    bool       `gorm:"not null;default:false"`
	VerificationCode   *string    `gorm:"size:16"`
	VerificationExpiry *time.Time

	DisabilityType        string `gorm:"size:64"`
	DisabilitySeverity    string `gorm:"size:32"`
	TriggerWords          datatypes.JSON
	DisabilityDescription string `gorm:"type:text"`

	VoiceID       string  `gorm:"size:64"`
	SpeechRate    float64 `gorm:"not null;default:1"`
	FontMode      string  `gorm:"size:32;not null;default:'standard'"`
	TextSize      string  `gorm:"size:16;not null;default:'medium'"`
	HighContrast  bool    `gorm:"not null;default:false"`
	ReducedMotion bool    `gorm:"not null;default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Sessions []TherapySession `gorm:"constraint:OnDelete:CASCADE"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// TriggerWordList deserializes the stored trigger words. A missing or
// malformed column yields an empty list.
func (u *User) TriggerWordList() []string {
	words := []string{}
	if len(u.TriggerWords) == 0 {
		return words
	}
	if err := json.Unmarshal(u.TriggerWords, &words); err != nil || words == nil {
		return []string{}
	}
	return words
}

func (u *User) SetTriggerWords(words []string) {
	if words == nil {
		words = []string{}
	}
	b, _ := json.Marshal(words)
	u.TriggerWords = datatypes.JSON(b)
}
