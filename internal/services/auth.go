package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"smart-clinic-server/internal/config"
	"smart-clinic-server/internal/models"
	"smart-clinic-server/internal/notify"
	"smart-clinic-server/internal/utils"
)

// AuthService registers accounts and issues, rotates and revokes tokens.
type AuthService struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Notifier notify.Notifier
	Log      *logrus.Entry

	now func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(db *gorm.DB, cfg *config.Config, notifier notify.Notifier, log *logrus.Entry) *AuthService {
	return &AuthService{DB: db, Cfg: cfg, Notifier: notifier, Log: log, now: time.Now}
}

// Tokens is a freshly issued access/refresh pair.
type Tokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// RegisterPatient creates a patient account together with its profile.
func (s *AuthService) RegisterPatient(ctx context.Context, user *models.User, password string, profile *models.Patient) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := createUser(tx, user, password, models.RolePatient); err != nil {
			return err
		}
		profile.UserID = user.ID
		if err := tx.Omit(clause.Associations).Create(profile).Error; err != nil {
			return fmt.Errorf("create patient: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	profile.User = user
	s.Log.WithField("user_id", user.ID).Info("patient registered")
	return nil
}

// CreateAdmin creates an administrator account.
func (s *AuthService) CreateAdmin(ctx context.Context, user *models.User, password string) error {
	if err := createUser(s.DB.WithContext(ctx), user, password, models.RoleAdmin); err != nil {
		return err
	}
	s.Log.WithField("user_id", user.ID).Info("admin created")
	return nil
}

func createUser(tx *gorm.DB, user *models.User, password string, role models.Role) error {
	var taken int64
	if err := tx.Model(&models.User{}).Where("email = ?", user.Email).Count(&taken).Error; err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if taken > 0 {
		return ErrRecordExists
	}
	if err := user.SetPassword(password); err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.Role = role
	user.IsActive = true
	if err := tx.Omit(clause.Associations).Create(user).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// Login checks credentials and issues a token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, *Tokens, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("load user: %w", err)
	}
	if !user.CheckPassword(password) {
		return nil, nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, nil, ErrAccountInactive
	}

	tokens, err := s.issue(s.DB.WithContext(ctx), &user)
	if err != nil {
		return nil, nil, err
	}
	return &user, tokens, nil
}

// Refresh exchanges a stored refresh token for a new pair and revokes the old one.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	claims, err := utils.ValidateToken(refreshToken, s.Cfg.JWTRefreshSecret)
	if err != nil {
		return nil, ErrInvalidToken
	}

	var tokens *Tokens
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stored models.RefreshToken
		if err := tx.Where("token = ? AND user_id = ?", refreshToken, claims.UserID).First(&stored).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidToken
			}
			return fmt.Errorf("load refresh token: %w", err)
		}
		if !stored.Usable(s.now()) {
			return ErrInvalidToken
		}

		var user models.User
		if err := tx.First(&user, "id = ?", claims.UserID).Error; err != nil {
			return notFoundOr(err, "load user")
		}
		if !user.IsActive {
			return ErrAccountInactive
		}

		if err := tx.Model(&stored).Update("is_revoked", true).Error; err != nil {
			return fmt.Errorf("revoke refresh token: %w", err)
		}
		tokens, err = s.issue(tx, &user)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

// Logout revokes the refresh token. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	err := s.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token = ? AND is_revoked = ?", refreshToken, false).
		Updates(map[string]interface{}{"is_revoked": true, "expires_at": s.now()}).Error
	if err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// ForgotPassword emails a reset link when the address belongs to an account.
// Unknown addresses succeed silently.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.Log.WithField("email", email).Debug("password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("load user: %w", err)
	}

	token, expiry, err := utils.GeneratePasswordResetToken(&user, s.Cfg)
	if err != nil {
		return err
	}
	if err := s.DB.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"reset_token":        token,
		"reset_token_expiry": expiry,
	}).Error; err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	link := s.Cfg.AppURL + "/reset-password?token=" + url.QueryEscape(token)
	if err := s.Notifier.PasswordReset(user.Email, link); err != nil {
		s.Log.WithError(err).WithField("user_id", user.ID).Warn("failed to send password reset email")
	}
	return nil
}

// ResetPassword sets a new password for the holder of a valid reset token and
// revokes every refresh token of the account.
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	claims, err := utils.ValidateToken(token, s.Cfg.JWTPasswordReset)
	if err != nil {
		return ErrInvalidToken
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("id = ? AND reset_token = ?", claims.UserID, token).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidToken
			}
			return fmt.Errorf("load user: %w", err)
		}
		if user.ResetTokenExpiry == nil || user.ResetTokenExpiry.Before(s.now()) {
			return ErrInvalidToken
		}

		if err := user.SetPassword(password); err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		if err := tx.Model(&user).Updates(map[string]interface{}{
			"password":           user.Password,
			"reset_token":        "",
			"reset_token_expiry": nil,
		}).Error; err != nil {
			return fmt.Errorf("update password: %w", err)
		}
		if err := tx.Model(&models.RefreshToken{}).Where("user_id = ?", user.ID).
			Update("is_revoked", true).Error; err != nil {
			return fmt.Errorf("revoke refresh tokens: %w", err)
		}
		return nil
	})
}

// User loads an account by id.
func (s *AuthService) User(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "load user")
	}
	return &user, nil
}

func (s *AuthService) issue(tx *gorm.DB, user *models.User) (*Tokens, error) {
	access, refresh, err := utils.GenerateTokens(user, s.Cfg)
	if err != nil {
		return nil, err
	}
	expires := s.now().Add(time.Duration(s.Cfg.JWTRefreshExpirationHours) * time.Hour)
	if err := tx.Create(&models.RefreshToken{
		UserID:    user.ID,
		Token:     refresh,
		ExpiresAt: expires,
	}).Error; err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	return &Tokens{AccessToken: access, RefreshToken: refresh, ExpiresAt: expires}, nil
}
