package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
	"github.com/rpupo63/portfolio-backend/services"
)

const (
	sessionCookieName = "session"
	rememberMeTTL     = 30 * 24 * time.Hour
)

type sessionManager struct {
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func newSessionManager(secret string, ttl time.Duration, secure bool) *sessionManager {
	return &sessionManager{
		secret: []byte(secret),
		ttl:    ttl,
		secure: secure,
		now:    time.Now,
	}
}

// issue signs a session for user. Remembered sessions survive browser
// restarts; the others use a cookie without expiry.
func (m *sessionManager) issue(w http.ResponseWriter, user *models.User, remember bool) error {
	ttl := m.ttl
	if remember {
		ttl = rememberMeTTL
	}
	now := m.now()

	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"name":  user.Name,
		"admin": user.IsAdmin,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return fmt.Errorf("failed to sign session: %w", err)
	}

	cookie := &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if remember {
		cookie.Expires = now.Add(ttl)
		cookie.MaxAge = int(ttl.Seconds())
	}
	http.SetCookie(w, cookie)
	return nil
}

// read decodes the session cookie. It returns nil without error when the
// request carries no session.
func (m *sessionManager) read(r *http.Request) (*services.Principal, error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}

	token, err := jwt.Parse(cookie.Value, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errs.NewExpiredSessionError()
		}
		return nil, errs.NewInvalidSessionError(err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errs.NewInvalidSessionError(jwt.ErrTokenInvalidClaims)
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return nil, errs.NewInvalidSessionError(err)
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, errs.NewInvalidSessionError(err)
	}
	name, _ := claims["name"].(string)
	admin, _ := claims["admin"].(bool)

	return &services.Principal{UserID: userID, Name: name, IsAdmin: admin}, nil
}

func (m *sessionManager) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
