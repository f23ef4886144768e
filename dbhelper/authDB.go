package dbhelper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/voicebridge/apiv1/models"
	"github.com/voicebridge/apiv1/utils"
	"gorm.io/gorm"
)

func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	const op = "dbhelper.GetUserByEmail"

	var user models.User
	err := s.DB.WithContext(ctx).
		Where("LOWER(email) = ?", utils.NormalizeEmail(email)).
		Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user, fmt.Errorf("%s: %w", op, utils.ErrNotFound)
	}
	if err != nil {
		return user, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (models.User, error) {
	const op = "dbhelper.GetUserByID"

	var user models.User
	err := s.DB.WithContext(ctx).Where("id = ?", id).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user, fmt.Errorf("%s: %w", op, utils.ErrNotFound)
	}
	if err != nil {
		return user, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// LoginUserWithPassword returns the account when the password matches and the
// email is verified. Unknown accounts and wrong passwords share one error.
func (s *Store) LoginUserWithPassword(ctx context.Context, email, password string) (models.User, error) {
	const op = "dbhelper.LoginUserWithPassword"

	user, err := s.GetUserByEmail(ctx, email)
	if errors.Is(err, utils.ErrNotFound) {
		return models.User{}, fmt.Errorf("%s: %w", op, utils.ErrInvalidCredentials)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	if utils.ComparePasswords(user.PasswordHash, password) != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, utils.ErrInvalidCredentials)
	}
	if !user.IsEmailVerified {
		return user, fmt.Errorf("%s: %w", op, utils.ErrVerificationRequired)
	}
	return user, nil
}

// CreateUser inserts a new, unverified account. The email is stored normalized.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	const op = "dbhelper.CreateUser"

	user.Email = utils.NormalizeEmail(user.Email)

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("LOWER(email) = ?", user.Email).Count(&count).Error; err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if count > 0 {
			return fmt.Errorf("%s: %w", op, utils.ErrEmailTaken)
		}
		if err := tx.Create(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%s: %w", op, utils.ErrEmailTaken)
			}
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	})
}

// SetVerificationCode replaces the pending code of an unverified account.
func (s *Store) SetVerificationCode(ctx context.Context, email, code string, expiry time.Time) error {
	const op = "dbhelper.SetVerificationCode"

	result := s.DB.WithContext(ctx).Model(&models.User{}).
		Where("LOWER(email) = ? AND is_email_verified = ?", utils.NormalizeEmail(email), false).
		Updates(map[string]interface{}{
			"verification_code":   code,
			"verification_expiry": expiry,
		})
	if result.Error != nil {
		return fmt.Errorf("%s: %w", op, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, utils.ErrNotFound)
	}
	return nil
}

// VerifyEmailCode checks the preconditions in order (account, state, code,
// expiry) and only then flips the account to verified. The final update is
// conditional on the account still being unverified with the same code, so
// of two concurrent attempts exactly one succeeds.
func (s *Store) VerifyEmailCode(ctx context.Context, email, code string) (models.User, error) {
	const op = "dbhelper.VerifyEmailCode"

	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	if user.IsEmailVerified {
		return models.User{}, fmt.Errorf("%s: %w", op, utils.ErrAlreadyVerified)
	}
	if user.VerificationCode == nil || *user.VerificationCode != code {
		return models.User{}, fmt.Errorf("%s: %w", op, utils.ErrCodeMismatch)
	}
	if user.VerificationExpiry == nil || s.now().After(*user.VerificationExpiry) {
		return models.User{}, fmt.Errorf("%s: %w", op, utils.ErrCodeExpired)
	}

	result := s.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND is_email_verified = ? AND verification_code = ?", user.ID, false, code).
		Updates(map[string]interface{}{
			"is_email_verified":   true,
			"verification_code":   nil,
			"verification_expiry": nil,
		})
	if result.Error != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, result.Error)
	}
	if result.RowsAffected == 0 {
		return models.User{}, fmt.Errorf("%s: %w", op, utils.ErrAlreadyVerified)
	}

	user.IsEmailVerified = true
	user.VerificationCode = nil
	user.VerificationExpiry = nil
	return user, nil
}

func (s *Store) UpdateSettings(ctx context.Context, userID string, settings models.Settings) (models.User, error) {
	const op = "dbhelper.UpdateSettings"

	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	user.ApplySettings(settings)

	err = s.DB.WithContext(ctx).Model(&user).Select(
		"voice_id", "speech_rate", "font_mode", "text_size", "high_contrast", "reduced_motion",
	).Updates(&user).Error
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}
