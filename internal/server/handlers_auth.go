package server

import (
	"errors"
	"net/http"

	"fileshare-web/internal/app"
)

func (s *Server) registerPage(w http.ResponseWriter, r *http.Request) {
	sess := s.cfg.Session.loadSession(r)
	s.renderPage(w, sess, "register", pageData{})
}

func (s *Server) registerSubmit(w http.ResponseWriter, r *http.Request) {
	sess := s.cfg.Session.loadSession(r)

	in := app.RegisterInput{
		FirstName: r.PostFormValue("firstName"),
		LastName:  r.PostFormValue("lastName"),
		Email:     r.PostFormValue("email"),
		Password:  r.PostFormValue("password"),
	}

	u, err := s.auth.Register(r.Context(), in)
	switch {
	case errors.Is(err, app.ErrValidation):
		s.flashRedirect(w, r, sess, "danger", "All fields required", "/register")
		return
	case errors.Is(err, app.ErrConflict):
		s.flashRedirect(w, r, sess, "danger", "Email already registered", "/register")
		return
	case err != nil:
		s.serverError(w, r, sess, err)
		return
	}

	sess.PendingEmail = u.Email
	s.flashRedirect(w, r, sess, "warning",
		"Registered. A verification code has been sent; enter it on the verify page.", "/verify")
}

func (s *Server) verifyPage(w http.ResponseWriter, r *http.Request) {
	sess := s.cfg.Session.loadSession(r)
	s.renderPage(w, sess, "verify", pageData{Email: sess.PendingEmail})
}

func (s *Server) verifySubmit(w http.ResponseWriter, r *http.Request) {
	sess := s.cfg.Session.loadSession(r)

	email := r.PostFormValue("email")
	code := r.PostFormValue("code")

	err := s.auth.Verify(r.Context(), email, code)
	switch {
	case errors.Is(err, app.ErrNotFound):
		s.flashRedirect(w, r, sess, "danger", "No such user. Please register.", "/register")
	case errors.Is(err, app.ErrAlreadyVerified):
		s.flashRedirect(w, r, sess, "info", "Already verified. Please login.", "/login")
	case errors.Is(err, app.ErrCodeExpired):
		s.flashRedirect(w, r, sess, "danger", "Code expired. Register again.", "/register")
	case errors.Is(err, app.ErrValidation):
		s.flashRedirect(w, r, sess, "danger", "Invalid verification code.", "/verify")
	case err != nil:
		s.serverError(w, r, sess, err)
	default:
		sess.PendingEmail = ""
		s.flashRedirect(w, r, sess, "success", "Email verified. You can now login.", "/login")
	}
}

func (s *Server) loginPage(w http.ResponseWriter, r *http.Request) {
	sess := s.cfg.Session.loadSession(r)
	s.renderPage(w, sess, "login", pageData{})
}

func (s *Server) loginSubmit(w http.ResponseWriter, r *http.Request) {
	sess := s.cfg.Session.loadSession(r)

	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	u, err := s.auth.Login(r.Context(), email, password)
	switch {
	case errors.Is(err, app.ErrUnverified):
		// Restart the verification flow; no session is established.
		sess.PendingEmail = u.Email
		if sess.PendingEmail == "" {
			sess.PendingEmail = email
		}
		s.flashRedirect(w, r, sess, "warning", "Email not verified. Please verify first.", "/verify")
		return
	case errors.Is(err, app.ErrAuth):
		s.flashRedirect(w, r, sess, "danger", "Invalid credentials", "/login")
		return
	case err != nil:
		s.serverError(w, r, sess, err)
		return
	}

	sess.UserID = u.ID.String()
	sess.PendingEmail = ""
	s.flashRedirect(w, r, sess, "success", "Login successful", "/home")
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	// Drop everything, then start a fresh session holding only the notice.
	s.cfg.Session.clearSession(w)
	s.flashRedirect(w, r, sessionData{}, "info", "Logged out", "/login")
}

// serverError covers unexpected failures: logged, surfaced as a generic
// notice, never fatal to the process.
func (s *Server) serverError(w http.ResponseWriter, r *http.Request, sess sessionData, err error) {
	s.log.Error().Err(err).
		Str("rid", RequestIDFromContext(r.Context())).
		Str("path", r.URL.Path).
		Msg("request failed")
	s.flashRedirect(w, r, sess, "danger", "Something went wrong. Please try again.", "/login")
}
