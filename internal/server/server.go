// Package server is the HTTP surface of the file-sharing application:
// routing, signed-cookie sessions, flash messages and the HTML form
// handlers over the auth and file-lifecycle services.
package server

import (
	"context"
	"encoding/json"
	"html/template"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"fileshare-web/internal/app"
	"fileshare-web/internal/store"
)

// Config holds the server's own settings; service dependencies are
// passed to New separately.
type Config struct {
	Addr           string
	BaseURL        string
	Session        SessionConfig
	MaxUploadBytes int64 // zero means unlimited
}

type Server struct {
	httpServer *http.Server

	cfg   Config
	auth  *app.Auth
	files *app.Files
	users store.Users
	tmpl  *template.Template
	log   zerolog.Logger
}

func New(cfg Config, auth *app.Auth, files *app.Files, users store.Users, log zerolog.Logger) *Server {
	s := &Server{
		cfg:   cfg,
		auth:  auth,
		files: files,
		users: users,
		tmpl:  parseTemplates(),
		log:   log,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(log))

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/login", http.StatusSeeOther)
	})
	r.Get("/register", s.registerPage)
	r.Post("/register", s.registerSubmit)
	r.Get("/verify", s.verifyPage)
	r.Post("/verify", s.verifySubmit)
	r.Get("/login", s.loginPage)
	r.Post("/login", s.loginSubmit)
	r.Get("/home", s.homePage)
	r.Post("/upload", s.uploadSubmit)
	r.Get("/file/{id}", s.filePage)
	r.Post("/file/{id}", s.fileSubmit)
	r.Post("/delete/{id}", s.deleteSubmit)
	r.Get("/logout", s.logout)

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok"})
	})

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.httpServer.Serve(ln)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the router for httptest-based tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// pageData is everything any page template can need.
type pageData struct {
	Flashes []flash
	Email   string
	User    store.User
	Files   []store.File
	File    store.File
	BaseURL string
}

func (s *Server) render(w http.ResponseWriter, name string, data pageData) {
	data.BaseURL = s.cfg.BaseURL
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		s.log.Error().Err(err).Str("template", name).Msg("render failed")
	}
}

// renderPage pops pending flashes into the page and persists the session
// with those flashes cleared.
func (s *Server) renderPage(w http.ResponseWriter, sess sessionData, name string, data pageData) {
	data.Flashes = sess.popFlashes()
	s.cfg.Session.saveSession(w, sess)
	s.render(w, name, data)
}

// flashRedirect queues a notice and sends the browser to target.
func (s *Server) flashRedirect(w http.ResponseWriter, r *http.Request, sess sessionData, category, message, target string) {
	sess.addFlash(category, message)
	s.cfg.Session.saveSession(w, sess)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// currentUser returns the logged-in user id, if any.
func (s *Server) currentUser(sess sessionData) (uuid.UUID, bool) {
	if sess.UserID == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(sess.UserID)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
