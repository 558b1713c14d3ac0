package http

import (
	"net/http"
	"strconv"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
)

type optionsResponse struct {
	Difficulties []domain.Option[domain.Difficulty] `json:"difficulties"`
	Categories   []domain.Option[int]               `json:"categories"`
	Defaults     domain.QuizConfiguration           `json:"defaults"`
	MaxCount     int                                `json:"maxCount"`
}

// LeaderboardHandler serves GET /leaderboard?limit=N.
func LeaderboardHandler(leaderboard *app.LeaderboardService, topN int, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				http.Error(w, "limit must be an integer", http.StatusBadRequest)
				return
			}
			limit = n
		}
		writeJSON(w, logger, leaderboard.TopN(r.Context(), clampLimit(limit, topN)))
	}
}

// OptionsHandler serves GET /options with the settings tables.
func OptionsHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, logger, optionsResponse{
			Difficulties: domain.DifficultyOptions,
			Categories:   domain.CategoryOptions,
			Defaults:     domain.DefaultQuizConfiguration(),
			MaxCount:     domain.MaxQuestionCount,
		})
	}
}

func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte("ok"))
}

// NewMux wires every route of the service.
func NewMux(ws *WSHandler, leaderboard *app.LeaderboardService, topN int, logger *zap.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", HealthHandler)
	mux.HandleFunc("/options", OptionsHandler(logger))
	mux.HandleFunc("/leaderboard", LeaderboardHandler(leaderboard, topN, logger))
	mux.HandleFunc("/ws", ws.ServeWS)
	return mux
}

func writeJSON(w http.ResponseWriter, logger *zap.Logger, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Error("encode response", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}
