package server

import (
	"embed"
	"html/template"
	"net/http"
	"os"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type indexData struct {
	Title    string
	HasLogo  bool
	Unlocked bool
	Message  string
	Resume   string
	Job      string
}

// handleIndex serves the single page form
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess := s.lookup(r)

	data := indexData{
		Title:    "Executive Career Architect",
		HasLogo:  s.logoExists(),
		Unlocked: sess.Unlocked(),
		Message:  sess.Message(),
		Resume:   FieldResume,
		Job:      FieldJobDescription,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, data); err != nil {
		s.log.WithError(err).Error("failed to render index page")
	}
}

// handleLogo serves the configured logo, 404 when it is absent
func (s *Server) handleLogo(w http.ResponseWriter, r *http.Request) {
	if !s.logoExists() {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, s.cfg.LogoPath)
}

func (s *Server) logoExists() bool {
	if s.cfg.LogoPath == "" {
		return false
	}
	info, err := os.Stat(s.cfg.LogoPath)
	return err == nil && !info.IsDir()
}
