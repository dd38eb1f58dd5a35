// Package server exposes the mockup generator over HTTP.
package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"mocksmith/internal/config"
	"mocksmith/internal/gemini"
	"mocksmith/internal/logging"
	"mocksmith/internal/mockup"
	"mocksmith/internal/store"
)

// Mocker is the generation surface the handlers need.
type Mocker interface {
	GenerateBatch(ctx context.Context, description string) (*mockup.Batch, error)
	GeneratePalette(ctx context.Context, baseColor string) (*mockup.Palette, error)
	EditImage(ctx context.Context, img *gemini.Image, instruction string) (*gemini.Image, error)
}

// Persister is the storage surface the handlers need.
type Persister interface {
	SaveProject(ctx context.Context, description string, batch *mockup.Batch, palette *mockup.Palette) (string, error)
	GetProject(ctx context.Context, id string) (*store.Project, error)
	ListProjects(ctx context.Context) ([]store.ProjectSummary, error)
}

// Server routes mockup requests to the generator and store.
type Server struct {
	gen   Mocker
	store Persister
	http  *http.Server
}

// New builds a server bound to cfg.Server.Addr.
func New(cfg *config.Config, gen Mocker, st Persister) *Server {
	s := &Server{gen: gen, store: st}

	readTimeout, writeTimeout := cfg.ServerTimeouts()
	s.http = &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      s.Router(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
	return s
}

// Router builds the HTTP route table. Exposed for tests.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.requestID, s.recoverPanic)

	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	r.HandleFunc("/api/generate", s.handleGenerate).Methods("POST")
	r.HandleFunc("/api/palette", s.handlePalette).Methods("POST")
	r.HandleFunc("/api/images/edit", s.handleEditImage).Methods("POST")
	r.HandleFunc("/api/projects", s.handleListProjects).Methods("GET")
	r.HandleFunc("/api/projects/{id}", s.handleGetProject).Methods("GET")
	return r
}

// Start blocks serving HTTP until Shutdown or a listener error.
func (s *Server) Start() error {
	logging.Server("listening on %s", s.http.Addr)
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// requestID tags every request with a correlation id for the logs.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.New().String()[:8]
		w.Header().Set("X-Request-ID", id)
		rl := logging.WithRequestID(logging.CategoryServer, id)
		rl.Info("%s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r.WithContext(withRequestLogger(r.Context(), rl)))
	})
}

func (s *Server) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				logging.ServerError("panic serving %s: %v", r.URL.Path, v)
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type ctxKey int

const requestLoggerKey ctxKey = 0

func withRequestLogger(ctx context.Context, rl *logging.RequestLogger) context.Context {
	return context.WithValue(ctx, requestLoggerKey, rl)
}

func requestLogger(ctx context.Context) *logging.RequestLogger {
	if rl, ok := ctx.Value(requestLoggerKey).(*logging.RequestLogger); ok {
		return rl
	}
	return logging.WithRequestID(logging.CategoryServer, "-")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, format string, args ...interface{}) {
	writeJSON(w, status, map[string]string{"error": fmt.Sprintf(format, args...)})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type generateRequest struct {
	Description string `json:"description"`
	BaseColor   string `json:"base_color,omitempty"`
}

type screenResponse struct {
	Title       string `json:"title"`
	MimeType    string `json:"mime_type,omitempty"`
	ImageBase64 string `json:"image_base64,omitempty"`
	ReactCode   string `json:"react_code"`
	HTMLCode    string `json:"html_code"`
}

type generateResponse struct {
	ProjectID string           `json:"project_id,omitempty"`
	Screens   []screenResponse `json:"screens"`
	Failures  []mockup.Failure `json:"failures,omitempty"`
	Palette   *mockup.Palette  `json:"palette,omitempty"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	rl := requestLogger(r.Context())

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: %v", err)
		return
	}

	var palette *mockup.Palette
	if strings.TrimSpace(req.BaseColor) != "" {
		p, err := s.gen.GeneratePalette(r.Context(), req.BaseColor)
		if err != nil {
			writeError(w, http.StatusBadRequest, "palette: %v", err)
			return
		}
		palette = p
	}

	batch, err := s.gen.GenerateBatch(r.Context(), req.Description)
	if errors.Is(err, mockup.ErrNoScreens) {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	if err != nil {
		// Every screen failed. The reasons still go back to the caller.
		rl.Error("generation failed: %v", err)
		resp := generateResponse{Screens: []screenResponse{}}
		if batch != nil {
			resp.Failures = batch.Failures
		}
		writeJSON(w, http.StatusBadGateway, resp)
		return
	}

	resp := generateResponse{Palette: palette, Failures: batch.Failures}
	for _, sc := range batch.Screens {
		sr := screenResponse{Title: sc.Title, ReactCode: sc.ReactCode, HTMLCode: sc.HTMLCode}
		if sc.Image != nil {
			sr.MimeType = sc.Image.MimeType
			sr.ImageBase64 = base64.StdEncoding.EncodeToString(sc.Image.Data)
		}
		resp.Screens = append(resp.Screens, sr)
	}

	if s.store != nil {
		id, err := s.store.SaveProject(r.Context(), req.Description, batch, palette)
		if err != nil {
			rl.Error("failed to persist project: %v", err)
		} else {
			resp.ProjectID = id
		}
	}

	rl.Info("generated %d screens, %d failures", len(batch.Screens), len(batch.Failures))
	writeJSON(w, http.StatusCreated, resp)
}

type paletteRequest struct {
	BaseColor string `json:"base_color"`
}

func (s *Server) handlePalette(w http.ResponseWriter, r *http.Request) {
	var req paletteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: %v", err)
		return
	}

	palette, err := s.gen.GeneratePalette(r.Context(), req.BaseColor)
	if err != nil {
		// Upstream failures are the gateway's fault, bad colors the caller's.
		status := http.StatusBadRequest
		if strings.Contains(err.Error(), "generation failed") {
			status = http.StatusBadGateway
		}
		writeError(w, status, "%v", err)
		return
	}
	writeJSON(w, http.StatusOK, palette)
}

type editImageRequest struct {
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
	Instruction string `json:"instruction"`
}

type editImageResponse struct {
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

func (s *Server) handleEditImage(w http.ResponseWriter, r *http.Request) {
	var req editImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: %v", err)
		return
	}

	data, err := base64.StdEncoding.DecodeString(req.ImageBase64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "image_base64 is not valid base64: %v", err)
		return
	}

	img := &gemini.Image{MimeType: req.MimeType, Data: data}
	edited, err := s.gen.EditImage(r.Context(), img, req.Instruction)
	if err != nil {
		status := http.StatusBadGateway
		if len(data) == 0 || req.Instruction == "" || !strings.HasPrefix(req.MimeType, "image/") {
			status = http.StatusBadRequest
		}
		writeError(w, status, "%v", err)
		return
	}

	writeJSON(w, http.StatusOK, editImageResponse{
		ImageBase64: base64.StdEncoding.EncodeToString(edited.Data),
		MimeType:    edited.MimeType,
	})
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "storage is disabled")
		return
	}
	list, err := s.store.ListProjects(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "%v", err)
		return
	}
	if list == nil {
		list = []store.ProjectSummary{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "storage is disabled")
		return
	}
	id := mux.Vars(r)["id"]
	p, err := s.store.GetProject(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "%v", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
