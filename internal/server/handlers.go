package server

import (
	"encoding/json"
	"net/http"
	"time"
)

// handleIndex serves the rendered application page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, map[string]any{
		"AppName":     s.appCfg.App.Name,
		"Description": s.appCfg.App.Description,
	}); err != nil {
		s.apiLog.ErrorWithStack("render index", err)
	}
}

// handleHealth returns a simple health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"app":          s.appCfg.App.Name,
		"model":        s.gateway.Model(),
		"ai_available": s.gateway.Available(),
		"time":         time.Now().UTC().Format(time.RFC3339),
	})
}

// handleSave acknowledges a diagram save request. Diagram persistence
// is a stub: the payload is validated as JSON and dropped.
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.apiLog.ErrorWithStack("Error saving diagram", err)
		writeJSON(w, http.StatusInternalServerError,
			errorBody("Gagal menyimpan diagram: "+err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "success"})
}
