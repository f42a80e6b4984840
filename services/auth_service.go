package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/rpupo63/portfolio-backend/database"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const (
	// ResetTokenTTL is how long a password reset link stays valid.
	ResetTokenTTL = time.Hour

	resetTokenBytes = 32
)

type RegisterForm struct {
	Name            string `json:"name" validate:"required,min=2,max=100"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6,bcryptlen"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

type LoginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Remember bool   `json:"remember"`
}

type ForgotPasswordForm struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordForm struct {
	Password        string `json:"password" validate:"required,min=6,bcryptlen"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

type AuthService struct {
	db     database.Database
	mailer Mailer
	now    func() time.Time
	logger zerolog.Logger
}

func NewAuthService(db database.Database, mailer Mailer, opts ...Option) *AuthService {
	o := newServiceOptions("auth", opts)
	return &AuthService{
		db:     db,
		mailer: mailer,
		now:    o.now,
		logger: o.logger,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a non-admin account.
func (s *AuthService) Register(ctx context.Context, form RegisterForm) (*models.User, error) {
	form.Name = strings.TrimSpace(form.Name)
	form.Email = normalizeEmail(form.Email)
	if err := validateForm(form); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errs.NewInternalError("could not hash password").WithCause(err)
	}

	user := &models.User{
		Name:         form.Name,
		Email:        form.Email,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}

	err = s.db.Transaction(ctx, func(tx database.Database) error {
		exists, err := tx.UserRepo().EmailExists(ctx, user.Email)
		if err != nil {
			return errs.NewDatabaseError("check", "user", err)
		}
		if exists {
			return errs.NewEmailTakenError()
		}
		if err := tx.UserRepo().Add(ctx, user); err != nil {
			dbErr := errs.NewDatabaseError("create", "user", err)
			if errs.IsAlreadyExists(dbErr) {
				return errs.NewEmailTakenError()
			}
			return dbErr
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("userId", user.ID.String()).Msg("user registered")
	return user, nil
}

// Login checks the credentials and returns the matching user.
func (s *AuthService) Login(ctx context.Context, form LoginForm) (*models.User, error) {
	form.Email = normalizeEmail(form.Email)
	if err := validateForm(form); err != nil {
		return nil, err
	}

	user, err := s.db.UserRepo().FindByEmail(ctx, form.Email)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, errs.NewInvalidCredentialsError()
		}
		return nil, errs.NewDatabaseError("find", "user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(form.Password)); err != nil {
		return nil, errs.NewInvalidCredentialsError()
	}
	return user, nil
}

// RequestPasswordReset stores a fresh reset token for the account and mails
// a link built from baseURL. Unknown addresses fail with ErrEmailNotFound.
func (s *AuthService) RequestPasswordReset(ctx context.Context, form ForgotPasswordForm, baseURL string) error {
	form.Email = normalizeEmail(form.Email)
	if err := validateForm(form); err != nil {
		return err
	}

	user, err := s.db.UserRepo().FindByEmail(ctx, form.Email)
	if err != nil {
		if database.IsNotFound(err) {
			return errs.NewEmailNotFoundError()
		}
		return errs.NewDatabaseError("find", "user", err)
	}

	token, err := newResetToken()
	if err != nil {
		return errs.NewInternalError("could not generate reset token").WithCause(err)
	}
	if err := s.db.UserRepo().SetResetToken(ctx, user.ID, token, s.now().Add(ResetTokenTTL)); err != nil {
		return errs.NewDatabaseError("update", "user", err)
	}

	resetURL := fmt.Sprintf("%s/reset-password/%s", strings.TrimSuffix(baseURL, "/"), token)
	if err := s.mailer.Send(ctx, PasswordResetEmail(user.Email, resetURL)); err != nil {
		s.logger.Error().Err(err).Str("userId", user.ID.String()).Msg("failed to send reset email")
		return errs.NewMailDeliveryError(err)
	}

	s.logger.Info().Str("userId", user.ID.String()).Msg("password reset requested")
	return nil
}

// ValidateResetToken returns the user owning an unexpired token. An expired
// token is cleared as it is rejected.
func (s *AuthService) ValidateResetToken(ctx context.Context, token string) (*models.User, error) {
	user, err := s.checkResetToken(ctx, s.db, token)
	if errs.IsResetTokenInvalidError(err) {
		s.clearExpiredToken(ctx, token)
	}
	return user, err
}

func (s *AuthService) checkResetToken(ctx context.Context, db database.Database, token string) (*models.User, error) {
	if token == "" {
		return nil, errs.NewResetTokenInvalidError()
	}

	user, err := db.UserRepo().FindByResetToken(ctx, token)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, errs.NewResetTokenInvalidError()
		}
		return nil, errs.NewDatabaseError("find", "user", err)
	}
	if !user.ResetTokenValid(token, s.now()) {
		return nil, errs.NewResetTokenInvalidError()
	}
	return user, nil
}

// ResetPassword consumes the token and sets a new password.
func (s *AuthService) ResetPassword(ctx context.Context, token string, form ResetPasswordForm) (*models.User, error) {
	var user *models.User
	err := s.db.Transaction(ctx, func(tx database.Database) error {
		var err error
		user, err = s.checkResetToken(ctx, tx, token)
		if err != nil {
			return err
		}
		if err := validateForm(form); err != nil {
			return err
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
		if err != nil {
			return errs.NewInternalError("could not hash password").WithCause(err)
		}
		if err := tx.UserRepo().UpdatePassword(ctx, user.ID, string(hash)); err != nil {
			return errs.NewDatabaseError("update", "user", err)
		}
		return nil
	})
	if err != nil {
		if errs.IsResetTokenInvalidError(err) {
			s.clearExpiredToken(ctx, token)
		}
		return nil, err
	}

	s.logger.Info().Str("userId", user.ID.String()).Msg("password reset")
	return user, nil
}

func (s *AuthService) clearExpiredToken(ctx context.Context, token string) {
	if token == "" {
		return
	}
	user, err := s.db.UserRepo().FindByResetToken(ctx, token)
	if err != nil || user.ResetTokenValid(token, s.now()) {
		return
	}
	if err := s.db.UserRepo().ClearResetToken(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Str("userId", user.ID.String()).Msg("failed to clear expired reset token")
	}
}

// CreateAdmin registers an admin account, or promotes the existing account
// with that email and replaces its password.
func (s *AuthService) CreateAdmin(ctx context.Context, form RegisterForm) (*models.User, error) {
	form.Name = strings.TrimSpace(form.Name)
	form.Email = normalizeEmail(form.Email)
	if err := validateForm(form); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errs.NewInternalError("could not hash password").WithCause(err)
	}

	var user *models.User
	err = s.db.Transaction(ctx, func(tx database.Database) error {
		existing, err := tx.UserRepo().FindByEmail(ctx, form.Email)
		switch {
		case err == nil:
			if err := tx.UserRepo().UpdatePassword(ctx, existing.ID, string(hash)); err != nil {
				return errs.NewDatabaseError("update", "user", err)
			}
			if err := tx.UserRepo().SetAdmin(ctx, existing.ID, true); err != nil {
				return errs.NewDatabaseError("update", "user", err)
			}
			existing.IsAdmin = true
			user = existing
			return nil
		case !database.IsNotFound(err):
			return errs.NewDatabaseError("find", "user", err)
		}

		user = &models.User{
			Name:         form.Name,
			Email:        form.Email,
			PasswordHash: string(hash),
			IsAdmin:      true,
			CreatedAt:    s.now(),
		}
		if err := tx.UserRepo().Add(ctx, user); err != nil {
			return errs.NewDatabaseError("create", "user", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func newResetToken() (string, error) {
	b := make([]byte, resetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
