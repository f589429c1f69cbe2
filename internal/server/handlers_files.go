package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"fileshare-web/internal/app"
	"fileshare-web/internal/store"
)

func (s *Server) homePage(w http.ResponseWriter, r *http.Request) {
	sess := s.cfg.Session.loadSession(r)
	owner, ok := s.currentUser(sess)
	if !ok {
		s.flashRedirect(w, r, sess, "warning", "Please login first", "/login")
		return
	}

	user, err := s.users.ByID(r.Context(), owner)
	switch {
	case errors.Is(err, store.ErrNotFound):
		// Stale cookie for a user that no longer exists.
		s.cfg.Session.clearSession(w)
		s.flashRedirect(w, r, sessionData{}, "warning", "Please login first", "/login")
		return
	case err != nil:
		s.serverError(w, r, sess, err)
		return
	}

	files, err := s.files.List(r.Context(), owner)
	if err != nil {
		s.serverError(w, r, sess, err)
		return
	}

	s.renderPage(w, sess, "home", pageData{User: user, Files: files})
}

func (s *Server) uploadSubmit(w http.ResponseWriter, r *http.Request) {
	sess := s.cfg.Session.loadSession(r)
	owner, ok := s.currentUser(sess)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if s.cfg.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.flashRedirect(w, r, sess, "danger", "File too large", "/home")
			return
		}
		s.flashRedirect(w, r, sess, "danger", "No file selected", "/home")
		return
	}
	defer func() { _ = file.Close() }()

	// Absent or non-integer expire_days means the file never expires.
	expireDays, _ := strconv.Atoi(r.PostFormValue("expire_days"))

	_, err = s.files.Upload(r.Context(), owner, file, header.Filename,
		r.PostFormValue("file_password"), expireDays)
	switch {
	case errors.Is(err, app.ErrNoFile):
		s.flashRedirect(w, r, sess, "danger", "No file selected", "/home")
	case errors.Is(err, app.ErrValidation):
		s.flashRedirect(w, r, sess, "danger", "File type not allowed", "/home")
	case err != nil:
		s.serverError(w, r, sess, err)
	default:
		s.flashRedirect(w, r, sess, "success", "File uploaded", "/home")
	}
}

// filePage serves a shared link: a password prompt for protected files,
// a direct download otherwise. No login is required here.
func (s *Server) filePage(w http.ResponseWriter, r *http.Request) {
	sess := s.cfg.Session.loadSession(r)

	id, ok := s.fileID(w, r, sess)
	if !ok {
		return
	}

	f, err := s.files.Stat(r.Context(), id)
	switch {
	case errors.Is(err, app.ErrNotFound):
		s.flashRedirect(w, r, sess, "danger", "File not found", "/home")
		return
	case errors.Is(err, app.ErrExpired):
		s.flashRedirect(w, r, sess, "danger", "File expired", "/home")
		return
	case err != nil:
		s.serverError(w, r, sess, err)
		return
	}

	if f.PasswordHash != nil {
		s.renderPage(w, sess, "file_password", pageData{File: f})
		return
	}

	s.streamFile(w, r, sess, id, "")
}

func (s *Server) fileSubmit(w http.ResponseWriter, r *http.Request) {
	sess := s.cfg.Session.loadSession(r)

	id, ok := s.fileID(w, r, sess)
	if !ok {
		return
	}

	s.streamFile(w, r, sess, id, r.PostFormValue("password"))
}

// streamFile runs the access check and, on success, writes the blob as an
// attachment download carrying the original filename.
func (s *Server) streamFile(w http.ResponseWriter, r *http.Request, sess sessionData, id uuid.UUID, password string) {
	dl, err := s.files.Access(r.Context(), id, password)
	switch {
	case errors.Is(err, app.ErrNotFound):
		s.flashRedirect(w, r, sess, "danger", "File not found", "/home")
		return
	case errors.Is(err, app.ErrExpired):
		s.flashRedirect(w, r, sess, "danger", "File expired", "/home")
		return
	case errors.Is(err, app.ErrAuth):
		s.flashRedirect(w, r, sess, "danger", "Incorrect password", "/file/"+id.String())
		return
	case err != nil:
		s.serverError(w, r, sess, err)
		return
	}
	defer func() { _ = dl.Close() }()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, dl.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, dl)
}

func (s *Server) deleteSubmit(w http.ResponseWriter, r *http.Request) {
	sess := s.cfg.Session.loadSession(r)
	owner, ok := s.currentUser(sess)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	id, ok := s.fileID(w, r, sess)
	if !ok {
		return
	}

	err := s.files.Delete(r.Context(), owner, id)
	switch {
	case errors.Is(err, app.ErrPermission):
		s.flashRedirect(w, r, sess, "danger", "File not found or permission denied", "/home")
	case err != nil:
		s.serverError(w, r, sess, err)
	default:
		s.flashRedirect(w, r, sess, "success", "File deleted", "/home")
	}
}

// fileID parses the {id} route segment. An unparsable id is reported the
// same way as a missing file.
func (s *Server) fileID(w http.ResponseWriter, r *http.Request, sess sessionData) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.flashRedirect(w, r, sess, "danger", "File not found", "/home")
		return uuid.Nil, false
	}
	return id, true
}
