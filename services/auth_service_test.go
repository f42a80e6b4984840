package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/portfolio-backend/database/databasetest"
	"github.com/rpupo63/portfolio-backend/errs"
)

func validRegisterForm(email string) RegisterForm {
	return RegisterForm{
		Name:            "Ana Souza",
		Email:           email,
		Password:        "secret123",
		ConfirmPassword: "secret123",
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	db := databasetest.Open(t)
	auth := NewAuthService(db, &recordingMailer{})

	user, err := auth.Register(ctx, validRegisterForm("  Ana@Example.com "))
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.False(t, user.IsAdmin)
	assert.NotEqual(t, "secret123", user.PasswordHash)

	t.Run("email taken regardless of case", func(t *testing.T) {
		_, err := auth.Register(ctx, validRegisterForm("ANA@example.com"))
		require.Error(t, err)
		assert.True(t, errs.IsEmailTakenError(err))
	})

	t.Run("field validation", func(t *testing.T) {
		form := validRegisterForm("new@example.com")
		form.Name = "A"
		form.ConfirmPassword = "different"

		_, err := auth.Register(ctx, form)
		require.Error(t, err)

		var apiErr *errs.ApiErr
		require.ErrorAs(t, err, &apiErr)
		assert.True(t, errs.IsValidation(err))
		assert.Equal(t, "Must be at least 2 characters long.", apiErr.Fields["name"])
		assert.Equal(t, "Passwords must match.", apiErr.Fields["confirm_password"])
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	db := databasetest.Open(t)
	auth := NewAuthService(db, &recordingMailer{})
	registered, err := auth.Register(ctx, validRegisterForm("ana@example.com"))
	require.NoError(t, err)

	user, err := auth.Login(ctx, LoginForm{Email: "Ana@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	_, err = auth.Login(ctx, LoginForm{Email: "ana@example.com", Password: "wrong-password"})
	assert.True(t, errs.IsInvalidCredentialsError(err))

	_, err = auth.Login(ctx, LoginForm{Email: "nobody@example.com", Password: "secret123"})
	assert.True(t, errs.IsInvalidCredentialsError(err))
}

func resetTokenFrom(t *testing.T, email Email) string {
	t.Helper()
	const marker = "/reset-password/"
	i := strings.Index(email.Text, marker)
	require.GreaterOrEqual(t, i, 0, "no reset link in %q", email.Text)
	rest := email.Text[i+len(marker):]
	return rest[:strings.IndexByte(rest, '\n')]
}

func TestPasswordResetIsSingleUse(t *testing.T) {
	ctx := context.Background()
	db := databasetest.Open(t)
	mailer := &recordingMailer{}
	clock := newFakeClock()
	auth := NewAuthService(db, mailer, WithClock(clock.Now))
	_, err := auth.Register(ctx, validRegisterForm("ana@example.com"))
	require.NoError(t, err)

	require.NoError(t, auth.RequestPasswordReset(ctx, ForgotPasswordForm{Email: "ana@example.com"}, "https://site.example/"))
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, []string{"ana@example.com"}, mailer.sent[0].To)
	assert.Equal(t, "Password Reset Request", mailer.sent[0].Subject)
	assert.Contains(t, mailer.sent[0].Text, "https://site.example/reset-password/")

	token := resetTokenFrom(t, mailer.sent[0])
	_, err = auth.ValidateResetToken(ctx, token)
	require.NoError(t, err)

	clock.Advance(30 * time.Minute)
	_, err = auth.ResetPassword(ctx, token, ResetPasswordForm{Password: "brand-new", ConfirmPassword: "brand-new"})
	require.NoError(t, err)

	_, err = auth.Login(ctx, LoginForm{Email: "ana@example.com", Password: "brand-new"})
	require.NoError(t, err)
	_, err = auth.Login(ctx, LoginForm{Email: "ana@example.com", Password: "secret123"})
	assert.True(t, errs.IsInvalidCredentialsError(err))

	_, err = auth.ResetPassword(ctx, token, ResetPasswordForm{Password: "again-new", ConfirmPassword: "again-new"})
	assert.True(t, errs.IsResetTokenInvalidError(err))
}

func TestPasswordResetTokenExpiresAfterAnHour(t *testing.T) {
	ctx := context.Background()
	db := databasetest.Open(t)
	mailer := &recordingMailer{}
	clock := newFakeClock()
	auth := NewAuthService(db, mailer, WithClock(clock.Now))
	user, err := auth.Register(ctx, validRegisterForm("ana@example.com"))
	require.NoError(t, err)

	require.NoError(t, auth.RequestPasswordReset(ctx, ForgotPasswordForm{Email: "ana@example.com"}, "http://localhost:8080"))
	token := resetTokenFrom(t, mailer.sent[0])

	clock.Advance(time.Hour + time.Second)
	_, err = auth.ValidateResetToken(ctx, token)
	assert.True(t, errs.IsResetTokenInvalidError(err))

	stored, err := db.UserRepo().FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ResetToken, "expired token is cleared")

	_, err = auth.ResetPassword(ctx, token, ResetPasswordForm{Password: "brand-new", ConfirmPassword: "brand-new"})
	assert.True(t, errs.IsResetTokenInvalidError(err))
}

func TestRequestPasswordResetFailures(t *testing.T) {
	ctx := context.Background()
	db := databasetest.Open(t)

	auth := NewAuthService(db, &recordingMailer{})
	err := auth.RequestPasswordReset(ctx, ForgotPasswordForm{Email: "nobody@example.com"}, "http://localhost")
	assert.True(t, errs.IsEmailNotFoundError(err))

	_, err = auth.Register(ctx, validRegisterForm("ana@example.com"))
	require.NoError(t, err)

	broken := NewAuthService(db, &recordingMailer{err: errors.New("smtp down")})
	err = broken.RequestPasswordReset(ctx, ForgotPasswordForm{Email: "ana@example.com"}, "http://localhost")
	assert.ErrorIs(t, err, errs.ErrMailDelivery)

	_, err = auth.ValidateResetToken(ctx, "")
	assert.True(t, errs.IsResetTokenInvalidError(err))
}

func TestCreateAdmin(t *testing.T) {
	ctx := context.Background()
	db := databasetest.Open(t)
	auth := NewAuthService(db, &recordingMailer{})

	created, err := auth.CreateAdmin(ctx, validRegisterForm("owner@example.com"))
	require.NoError(t, err)
	assert.True(t, created.IsAdmin)

	visitor, err := auth.Register(ctx, validRegisterForm("visitor@example.com"))
	require.NoError(t, err)

	form := validRegisterForm("visitor@example.com")
	form.Password, form.ConfirmPassword = "promoted1", "promoted1"
	promoted, err := auth.CreateAdmin(ctx, form)
	require.NoError(t, err)
	assert.Equal(t, visitor.ID, promoted.ID)
	assert.True(t, promoted.IsAdmin)

	_, err = auth.Login(ctx, LoginForm{Email: "visitor@example.com", Password: "promoted1"})
	require.NoError(t, err)
}

func TestPasswordLengthCountsBytes(t *testing.T) {
	ctx := context.Background()
	db := databasetest.Open(t)
	mailer := &recordingMailer{}
	auth := NewAuthService(db, mailer)

	// 72 runes, 144 bytes.
	long := strings.Repeat("é", 72)
	assertTooLong := func(t *testing.T, err error) {
		t.Helper()
		require.Error(t, err)
		var apiErr *errs.ApiErr
		require.ErrorAs(t, err, &apiErr)
		assert.True(t, errs.IsValidation(err))
		assert.Contains(t, apiErr.Fields["password"], "72 bytes")
	}

	t.Run("register", func(t *testing.T) {
		form := validRegisterForm("ana@example.com")
		form.Password, form.ConfirmPassword = long, long
		_, err := auth.Register(ctx, form)
		assertTooLong(t, err)
	})

	t.Run("create admin", func(t *testing.T) {
		form := validRegisterForm("owner@example.com")
		form.Password, form.ConfirmPassword = long, long
		_, err := auth.CreateAdmin(ctx, form)
		assertTooLong(t, err)
	})

	t.Run("reset keeps the token usable", func(t *testing.T) {
		_, err := auth.Register(ctx, validRegisterForm("bea@example.com"))
		require.NoError(t, err)
		require.NoError(t, auth.RequestPasswordReset(ctx, ForgotPasswordForm{Email: "bea@example.com"}, "https://site.example/"))
		token := resetTokenFrom(t, mailer.sent[len(mailer.sent)-1])

		_, err = auth.ResetPassword(ctx, token, ResetPasswordForm{Password: long, ConfirmPassword: long})
		assertTooLong(t, err)

		fits := strings.Repeat("é", 36)
		_, err = auth.ResetPassword(ctx, token, ResetPasswordForm{Password: fits, ConfirmPassword: fits})
		require.NoError(t, err)
		_, err = auth.Login(ctx, LoginForm{Email: "bea@example.com", Password: fits})
		require.NoError(t, err)
	})
}
