package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TherapySession is written once at the end of a practice attempt and only
// read afterwards.
type TherapySession struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	UserID       string    `gorm:"size:36;not null;index:idx_sessions_user_created,priority:1" json:"userId"`
	Duration     int       `gorm:"not null;default:0" json:"duration"`
	Accuracy     float64   `json:"accuracy"`
	ClarityScore float64   `json:"clarityScore"`
	OverallScore float64   `json:"overallScore"`
	TargetText   string    `gorm:"type:text" json:"targetText"`
	CreatedAt    time.Time `gorm:"index:idx_sessions_user_created,priority:2" json:"createdAt"`
}

func (s *TherapySession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
