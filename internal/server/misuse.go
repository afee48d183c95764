package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/threatsketch/threatsketch/internal/apilog"
	"github.com/threatsketch/threatsketch/internal/llm"
)

// defaultSystemName is used when the request names no system.
const defaultSystemName = "the system"

// misuseRequest is the POST /generate_misuse_cases body.
type misuseRequest struct {
	UseCaseName   string   `json:"useCaseName"`
	SystemName    string   `json:"systemName"`
	OtherUseCases []string `json:"otherUseCases"`
}

// handleGenerateMisuseCases runs the full pipeline: availability
// guard, validation, prompt build, one gateway call, two-stage JSON
// recovery, shape normalization. Gateway and parse failures degrade
// to a 200 "soft error" with an empty data array.
func (s *Server) handleGenerateMisuseCases(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Programming errors surface as 500, never as a broken connection.
	defer func() {
		if rec := recover(); rec != nil {
			err := fmt.Errorf("panic: %v", rec)
			s.apiLog.ErrorWithStack("Unexpected error in generate_misuse_cases", err)
			writeJSON(w, http.StatusInternalServerError,
				softErrorBody("Kesalahan tidak terduga: "+err.Error()))
		}
	}()

	// Availability guard runs before validation or prompt building,
	// and before any API-call log entry.
	if !s.gateway.Available() {
		writeJSON(w, http.StatusServiceUnavailable,
			errorBody("AI service tidak tersedia. Fitur ini memerlukan konfigurasi AI."))
		return
	}

	var req misuseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest,
			errorBody("Permintaan tidak valid: "+err.Error()))
		return
	}

	if strings.TrimSpace(req.UseCaseName) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("Nama use case diperlukan"))
		return
	}
	if req.SystemName == "" {
		req.SystemName = defaultSystemName
	}

	systemPrompt, userPrompt := s.templates.Build(llm.Input{
		UseCaseName:   req.UseCaseName,
		SystemName:    req.SystemName,
		OtherUseCases: req.OtherUseCases,
	})

	start := s.apiLog.Request(apilog.Call{
		Model:       s.gateway.Model(),
		Temperature: s.temperature,
		Messages:    []string{systemPrompt, userPrompt},
		Params: map[string]string{
			"use_case":    req.UseCaseName,
			"system_name": req.SystemName,
		},
	})

	raw, err := s.gateway.Complete(r.Context(), systemPrompt, userPrompt)
	if err != nil {
		s.apiLog.Response(start, "error", 0, err)
		s.apiLog.ErrorWithStack("LLM API error", err)
		writeJSON(w, http.StatusOK,
			softErrorBody("Error saat generate kasus penyalahgunaan: "+err.Error()))
		return
	}
	s.apiLog.Response(start, "success", len(raw), nil)

	cases, err := llm.ParseMisuseCases(raw)
	if err != nil {
		msg := "Gagal memproses respons LLM sebagai JSON"
		s.apiLog.Response(start, "error", 0, fmt.Errorf("%s: %w", msg, err))
		writeJSON(w, http.StatusOK, softErrorBody(msg))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"data":   llm.Normalize(cases),
	})
}
