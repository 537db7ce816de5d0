package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"faqrag/internal/rag"
)

type askRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k"`
}

type askResponse struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	slog.Info("received question", "question", truncate(req.Question, 50))

	result, err := s.core.Answer(r.Context(), req.Question, req.TopK)
	if err != nil {
		if errors.Is(err, rag.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("failed to answer question", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	slog.Info("generated answer", "sources", len(result.Sources))
	writeJSON(w, http.StatusOK, askResponse{Answer: result.Answer, Sources: result.Sources})
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
