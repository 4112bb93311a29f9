// Package server exposes the processed dataset over HTTP.
package server

import (
	"encoding/json"
	"net/http"

	"emperror.dev/errors"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/stahnma/gh-trending/internal/format"
	"github.com/stahnma/gh-trending/internal/store"
	"github.com/stahnma/gh-trending/internal/trending"
)

// Server serves the trending listing from a store.
type Server struct {
	store  store.Store
	name   string
	log    logrus.FieldLogger
	router  *mux.Router
	handler http.Handler
}

// New creates a Server reading the processed document name from st.
func New(st store.Store, name string, log logrus.FieldLogger) *Server {
	s := &Server{store: st, name: name, log: log, router: mux.NewRouter()}
	s.RegisterRoutes(s.router)
	s.handler = loggingMiddleware(log)(s.router)
	return s
}

// RegisterRoutes adds the API routes to r.
func (s *Server) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/healthz", s.health).Methods(http.MethodGet)
	r.HandleFunc("/api/trending", s.listTrending).Methods(http.MethodGet)
	r.HandleFunc("/api/languages", s.listLanguages).Methods(http.MethodGet)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listTrending(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.load(w, r)
	if !ok {
		return
	}
	page := ParseQuery(r.URL.Query()).Apply(ds.Repositories)
	page.LastUpdated = ds.Metadata.LastUpdated
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) listLanguages(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.load(w, r)
	if !ok {
		return
	}
	languages := ds.Languages
	if languages == nil {
		languages = []string{}
	}
	distribution := ds.Metadata.LanguageDistribution
	if distribution == nil {
		distribution = map[string]int{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"languages":             languages,
		"language_distribution": distribution,
	})
}

// load reads the processed dataset, writing an error response on failure.
func (s *Server) load(w http.ResponseWriter, r *http.Request) (*trending.ProcessedDataset, bool) {
	data, err := s.store.Read(r.Context(), s.name)
	if err != nil {
		if errors.Is(err, trending.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no processed data yet")
			return nil, false
		}
		s.log.WithError(err).Error("failed to read processed dataset")
		writeError(w, http.StatusInternalServerError, "failed to read data")
		return nil, false
	}
	var ds trending.ProcessedDataset
	if err := json.Unmarshal(data, &ds); err != nil {
		s.log.WithError(err).Error("processed dataset is not valid JSON")
		writeError(w, http.StatusInternalServerError, "failed to read data")
		return nil, false
	}
	return &ds, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := format.Encode(v)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
