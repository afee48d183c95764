package server

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/threatsketch/threatsketch/internal/apilog"
	"github.com/threatsketch/threatsketch/internal/display"
	"github.com/threatsketch/threatsketch/internal/llm"
)

//go:embed web/index.html
var webFS embed.FS

// AppConfig represents the optional application configuration loaded
// from app.yaml. Absent values fall back to built-in defaults.
type AppConfig struct {
	App struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
	} `yaml:"app"`
	Prompts struct {
		System string `yaml:"system"`
		User   string `yaml:"user"`
	} `yaml:"prompts"`
}

// Server is the ThreatSketch HTTP server.
type Server struct {
	gateway     llm.Gateway
	templates   llm.Templates
	apiLog      *apilog.Logger
	appCfg      *AppConfig
	temperature float32
	page        *template.Template
	mux         *http.ServeMux
}

// Config holds the server configuration. Gateway is required; a nil
// APILog disables API-call logging.
type Config struct {
	Gateway     llm.Gateway
	APILog      *apilog.Logger
	AppYAMLPath string
	Temperature float32
}

// New creates and initializes a new Server.
func New(cfg Config) (*Server, error) {
	if cfg.Gateway == nil {
		return nil, fmt.Errorf("gateway is required")
	}

	appCfg, err := loadAppConfig(cfg.AppYAMLPath)
	if err != nil {
		return nil, fmt.Errorf("load app config: %w", err)
	}

	templates := llm.DefaultTemplates()
	if appCfg.Prompts.System != "" {
		templates.System = appCfg.Prompts.System
	}
	if appCfg.Prompts.User != "" {
		templates.User = appCfg.Prompts.User
	}

	page, err := template.ParseFS(webFS, "web/index.html")
	if err != nil {
		return nil, fmt.Errorf("parse index template: %w", err)
	}

	s := &Server{
		gateway:     cfg.Gateway,
		templates:   templates,
		apiLog:      cfg.APILog,
		appCfg:      appCfg,
		temperature: cfg.Temperature,
		page:        page,
		mux:         http.NewServeMux(),
	}

	s.registerRoutes()
	return s, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return corsMiddleware(requestLogMiddleware(s.mux))
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/save", s.handleSave)
	s.mux.HandleFunc("/generate_misuse_cases", s.handleGenerateMisuseCases)
}

// loadAppConfig reads app.yaml if present. A missing file (or empty
// path) means defaults; a malformed file is an error.
func loadAppConfig(path string) (*AppConfig, error) {
	cfg := &AppConfig{}
	cfg.App.Name = "ThreatSketch"
	cfg.App.Description = "Generator misuse case untuk diagram use case"

	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read app config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse app config: %w", err)
	}
	if cfg.App.Name == "" {
		cfg.App.Name = "ThreatSketch"
	}
	return cfg, nil
}

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// errorBody builds the common error response shape.
func errorBody(message string) map[string]any {
	return map[string]any{"status": "error", "message": message}
}

// softErrorBody builds the graceful-degradation shape: an error
// payload with an empty data array, served with HTTP 200 so the
// calling UI can render a friendly message instead of failing hard.
func softErrorBody(message string) map[string]any {
	return map[string]any{
		"status":  "error",
		"message": message,
		"data":    []any{},
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		display.LogRequest(r.Method, r.URL.Path, rec.status, time.Since(start), r.RemoteAddr)
	})
}
