// Package server exposes the template store and renderer over HTTP: CRUD
// for template sources, a render preview endpoint and, when configured, the
// WhatsApp webhook.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lojasmm/cartaz/internal/component"
	"github.com/lojasmm/cartaz/internal/render"
	"github.com/lojasmm/cartaz/internal/source"
	"github.com/lojasmm/cartaz/internal/store"
	"github.com/lojasmm/cartaz/internal/tmplerr"
	"github.com/lojasmm/cartaz/internal/whatsapp"
)

// maxBody caps uploaded template sources and render requests.
const maxBody = 1 << 20

type Server struct {
	store   store.Store
	opts    render.Options
	webhook *whatsapp.WebhookHandler
}

// New returns a server over s. webhook may be nil.
func New(s store.Store, opts render.Options, webhook *whatsapp.WebhookHandler) *Server {
	return &Server{store: s, opts: opts, webhook: webhook}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/templates", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Put("/", s.handlePut)
			r.Delete("/", s.handleDelete)
			r.Get("/keys", s.handleKeys)
			r.Post("/render/{key}", s.handleRender)
		})
	})

	if s.webhook != nil {
		r.Get("/webhook", s.webhook.HandleVerify)
		r.Post("/webhook", s.webhook.HandleIncoming)
	}
	return r
}

type sourceInfo struct {
	Name      string        `json:"name"`
	Format    source.Format `json:"format"`
	UpdatedAt string        `json:"updated_at"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List()
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]sourceInfo, 0, len(list))
	for _, src := range list {
		out = append(out, sourceInfo{Name: src.Name, Format: src.Format, UpdatedAt: src.UpdatedAt.Format(time.RFC3339)})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	src, err := s.store.Get(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, src)
}

// handlePut stores the raw request body. The format comes from ?format=,
// then the content type, then detection. The body must parse.
func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		writeError(w, err)
		return
	}

	format, err := requestFormat(r, name, body)
	if err != nil {
		writeError(w, err)
		return
	}
	rr, err := render.New(body, render.Options{Format: format})
	if err != nil {
		writeError(w, err)
		return
	}
	keys, err := rr.Keys()
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.store.Save(store.Source{Name: name, Format: format, Body: string(body)}); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"name": name, "format": format, "keys": keys})
}

func requestFormat(r *http.Request, name string, body []byte) (source.Format, error) {
	if f := r.URL.Query().Get("format"); f != "" {
		return source.ParseFormat(f)
	}
	ct := r.Header.Get("Content-Type")
	switch {
	case strings.Contains(ct, "xml"):
		return source.FormatXML, nil
	case strings.Contains(ct, "yaml"):
		return source.FormatYAML, nil
	case strings.Contains(ct, "json"):
		return source.FormatJSON, nil
	}
	return source.Detect(name, body), nil
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(chi.URLParam(r, "name")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleKeys(w http.ResponseWriter, r *http.Request) {
	rr, err := s.renderer(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	keys, err := rr.Keys()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, keys)
}

type renderRequest struct {
	Keywords map[string]any `json:"keywords"`
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
			return
		}
	}

	rr, err := s.renderer(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := rr.Render(chi.URLParam(r, "key"), component.Callables{}, req.Keywords, nil)
	if err != nil {
		writeError(w, err)
		return
	}
	preview, err := render.NewPreview(res)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

func (s *Server) renderer(name string) (*render.Renderer, error) {
	src, err := s.store.Get(name)
	if err != nil {
		return nil, err
	}
	opts := s.opts
	opts.Format = src.Format
	opts.Name = src.Name
	return render.New([]byte(src.Body), opts)
}

// Find renders key from the first stored source that defines it.
func (s *Server) Find(key string, keywords map[string]any) (render.Result, error) {
	list, err := s.store.List()
	if err != nil {
		return nil, err
	}
	for _, src := range list {
		opts := s.opts
		opts.Format = src.Format
		opts.Name = src.Name
		rr, err := render.New([]byte(src.Body), opts)
		if err != nil {
			log.Printf("server: skipping source %s: %v", src.Name, err)
			continue
		}
		res, err := rr.Render(key, nil, keywords, nil)
		if errors.Is(err, tmplerr.ErrNotFound) {
			continue
		}
		return res, err
	}
	return nil, tmplerr.New(tmplerr.NotFound, "no stored source defines %q", key)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		log.Printf("server: encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, tmplerr.ErrNotFound):
		status = http.StatusNotFound
	case tmplerr.KindOf(err) == tmplerr.Parse:
		status = http.StatusBadRequest
	case tmplerr.KindOf(err) != "":
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		log.Printf("server: %v", err)
	}
	body := map[string]string{"error": err.Error()}
	if k := tmplerr.KindOf(err); k != "" {
		body["kind"] = string(k)
	}
	writeJSON(w, status, body)
}
