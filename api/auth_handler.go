package api

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type authHandler struct {
	responder           Responder
	logger              zerolog.Logger
	auth                *services.AuthService
	sessions            *sessionManager
	baseURL             string
	concealUnknownEmail bool
}

func newAuthHandler(auth *services.AuthService, sessions *sessionManager, baseURL string, concealUnknownEmail bool) authHandler {
	logger := log.With().Str("handlerName", "authHandler").Logger()

	return authHandler{
		responder:           NewResponder(logger),
		logger:              logger,
		auth:                auth,
		sessions:            sessions,
		baseURL:             baseURL,
		concealUnknownEmail: concealUnknownEmail,
	}
}

func (h authHandler) alreadyLoggedIn(w http.ResponseWriter, r *http.Request) bool {
	principal := ctxGetPrincipal(r.Context())
	if principal == nil {
		return false
	}
	if wantsJSON(r) {
		h.responder.WriteJSON(w, FormPageResponse{pageMeta: pageMeta{CurrentUser: principal}})
	} else {
		redirect(w, r, "/")
	}
	return true
}

func (h authHandler) formPage(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.alreadyLoggedIn(w, r) {
			return
		}
		h.responder.WriteJSON(w, FormPageResponse{
			pageMeta: pageMeta{Flashes: popFlashes(w, r)},
			Form:     name,
			Next:     safeNext(r.URL.Query().Get("next")),
		})
	}
}

// register creates a visitor account
// @Summary Register
// @Tags Auth
// @Accept x-www-form-urlencoded,json
// @Produce json
// @Success 201 {object} SessionResponse
// @Failure 400 {object} ErrorResponse "Validation failed or email already in use"
// @Router /register [post]
func (h authHandler) register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.alreadyLoggedIn(w, r) {
			return
		}

		var form services.RegisterForm
		err := decodeRequest(w, r, &form, func(v url.Values) {
			form.Name = v.Get("name")
			form.Email = v.Get("email")
			form.Password = v.Get("password")
			form.ConfirmPassword = v.Get("confirm_password")
		})
		if err != nil {
			h.responder.Fail(w, r, err, "/register")
			return
		}

		user, err := h.auth.Register(r.Context(), form)
		if err != nil {
			h.responder.Fail(w, r, err, "/register")
			return
		}

		if wantsJSON(r) {
			h.responder.WriteJSONStatus(w, http.StatusCreated, SessionResponse{User: user})
			return
		}
		setFlash(w, flashSuccess, "Your account has been created! You can now log in.")
		redirect(w, r, "/login")
	}
}

// login starts a session
// @Summary Login
// @Tags Auth
// @Accept x-www-form-urlencoded,json
// @Produce json
// @Success 200 {object} SessionResponse
// @Failure 401 {object} ErrorResponse "Incorrect email or password"
// @Router /login [post]
func (h authHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.alreadyLoggedIn(w, r) {
			return
		}

		next := safeNext(r.URL.Query().Get("next"))
		loginPage := "/login"
		if next != "" {
			loginPage += "?next=" + url.QueryEscape(next)
		}

		var form services.LoginForm
		err := decodeRequest(w, r, &form, func(v url.Values) {
			form.Email = v.Get("email")
			form.Password = v.Get("password")
			form.Remember = formBool(v, "remember")
			if n := safeNext(v.Get("next")); n != "" {
				next = n
			}
		})
		if err != nil {
			h.responder.Fail(w, r, err, loginPage)
			return
		}

		user, err := h.auth.Login(r.Context(), form)
		if err != nil {
			if errs.IsInvalidCredentialsError(err) && !wantsJSON(r) {
				setFlash(w, flashDanger, "Login unsuccessful. Please check email and password.")
				redirect(w, r, loginPage)
				return
			}
			h.responder.Fail(w, r, err, loginPage)
			return
		}

		if err := h.sessions.issue(w, user, form.Remember); err != nil {
			h.responder.Fail(w, r, errs.NewInternalError("could not start session").WithCause(err), loginPage)
			return
		}
		h.logger.Info().Str("userId", user.ID.String()).Bool("remember", form.Remember).Msg("user logged in")

		if next == "" {
			next = "/"
		}
		if wantsJSON(r) {
			h.responder.WriteJSON(w, SessionResponse{User: user, Next: next})
			return
		}
		redirect(w, r, next)
	}
}

func (h authHandler) logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.sessions.clear(w)
		if wantsJSON(r) {
			h.responder.WriteJSON(w, StatusResponse{Status: "logged_out"})
			return
		}
		setFlash(w, flashInfo, "You have been logged out.")
		redirect(w, r, "/")
	}
}

// forgotPassword mails a reset link to a registered address
// @Summary Request a password reset
// @Tags Auth
// @Accept x-www-form-urlencoded,json
// @Produce json
// @Success 200 {object} StatusResponse
// @Failure 404 {object} ErrorResponse "No account with that email"
// @Router /forgot-password [post]
func (h authHandler) forgotPassword() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.alreadyLoggedIn(w, r) {
			return
		}

		var form services.ForgotPasswordForm
		err := decodeRequest(w, r, &form, func(v url.Values) {
			form.Email = v.Get("email")
		})
		if err != nil {
			h.responder.Fail(w, r, err, "/forgot-password")
			return
		}

		err = h.auth.RequestPasswordReset(r.Context(), form, h.resetBaseURL(r))
		if err != nil && !(errs.IsEmailNotFoundError(err) && h.concealUnknownEmail) {
			if errs.IsEmailNotFoundError(err) && !wantsJSON(r) {
				setFlash(w, flashWarning, "There is no account with that email. You must register first.")
				redirect(w, r, "/login")
				return
			}
			h.responder.Fail(w, r, err, "/forgot-password")
			return
		}

		if wantsJSON(r) {
			h.responder.WriteJSON(w, StatusResponse{Status: "reset_requested"})
			return
		}
		setFlash(w, flashInfo, "An email has been sent with instructions to reset your password.")
		redirect(w, r, "/login")
	}
}

func (h authHandler) resetBaseURL(r *http.Request) string {
	if h.baseURL != "" {
		return h.baseURL
	}
	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

func (h authHandler) invalidToken(w http.ResponseWriter, r *http.Request, err error) {
	if wantsJSON(r) || !errs.IsResetTokenInvalidError(err) {
		h.responder.Fail(w, r, err, "/forgot-password")
		return
	}
	setFlash(w, flashWarning, "That is an invalid or expired token.")
	redirect(w, r, "/forgot-password")
}

func (h authHandler) resetPasswordPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.alreadyLoggedIn(w, r) {
			return
		}

		token := chi.URLParam(r, "token")
		if _, err := h.auth.ValidateResetToken(r.Context(), token); err != nil {
			h.invalidToken(w, r, err)
			return
		}
		h.responder.WriteJSON(w, ResetPageResponse{
			pageMeta: pageMeta{Flashes: popFlashes(w, r)},
			Form:     "reset_password",
			Token:    token,
		})
	}
}

// resetPassword consumes a reset token and sets a new password
// @Summary Reset password
// @Tags Auth
// @Param token path string true "Reset token"
// @Success 200 {object} StatusResponse
// @Failure 400 {object} ErrorResponse "Invalid or expired token, or invalid password"
// @Router /reset-password/{token} [post]
func (h authHandler) resetPassword() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.alreadyLoggedIn(w, r) {
			return
		}

		token := chi.URLParam(r, "token")
		var form services.ResetPasswordForm
		err := decodeRequest(w, r, &form, func(v url.Values) {
			form.Password = v.Get("password")
			form.ConfirmPassword = v.Get("confirm_password")
		})
		if err != nil {
			h.responder.Fail(w, r, err, r.URL.Path)
			return
		}

		if _, err := h.auth.ResetPassword(r.Context(), token, form); err != nil {
			if errs.IsResetTokenInvalidError(err) {
				h.invalidToken(w, r, err)
				return
			}
			h.responder.Fail(w, r, err, r.URL.Path)
			return
		}

		if wantsJSON(r) {
			h.responder.WriteJSON(w, StatusResponse{Status: "password_updated"})
			return
		}
		setFlash(w, flashSuccess, "Your password has been updated! You can now log in.")
		redirect(w, r, "/login")
	}
}
