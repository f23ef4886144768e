package dbhelper

import (
	"context"
	"fmt"
	"time"

	"github.com/voicebridge/apiv1/models"
	"github.com/voicebridge/apiv1/stats"
)

func (s *Store) CreateTherapySession(ctx context.Context, session *models.TherapySession) error {
	const op = "dbhelper.CreateTherapySession"

	if session.CreatedAt.IsZero() {
		session.CreatedAt = s.now()
	}
	if err := s.DB.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListSessionsBetween returns the user's sessions created in [from, to).
func (s *Store) ListSessionsBetween(ctx context.Context, userID string, from, to time.Time) ([]models.TherapySession, error) {
	const op = "dbhelper.ListSessionsBetween"

	var sessions []models.TherapySession
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, from.UTC(), to.UTC()).
		Order("created_at").
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sessions, nil
}

func (s *Store) DailyStats(ctx context.Context, userID string) (stats.Daily, error) {
	from, to := stats.DayWindow(s.now())
	sessions, err := s.ListSessionsBetween(ctx, userID, from, to)
	if err != nil {
		return stats.Daily{}, err
	}
	return stats.Summarize(sessions), nil
}
