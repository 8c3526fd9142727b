package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

/* ======================
   Request / Response Types
   ====================== */

type PlayRequest struct {
	PlayerID string `json:"playerId"`
}

type PlayResponse struct {
	OK                   bool            `json:"ok"`
	Error                string          `json:"error,omitempty"`
	Outcome              string          `json:"outcome,omitempty"`
	Reason               string          `json:"reason,omitempty"`
	Layer                int             `json:"layer,omitempty"`
	Payout               decimal.Decimal `json:"payout"`
	EntryCost            decimal.Decimal `json:"entryCost"`
	VaultBalance         decimal.Decimal `json:"vaultBalance"`
	SeasonEnded          bool            `json:"seasonEnded,omitempty"`
	NextAllowedAt        string          `json:"nextAllowedAt,omitempty"`
	NextWinAllowedAt     string          `json:"nextWinAllowedAt,omitempty"`
	NextAllowedInSeconds int64           `json:"nextAllowedInSeconds,omitempty"`
}

type SubmitRequest struct {
	PlayerID string `json:"playerId"`
	Formula  string `json:"formula"`
}

type SubmitResponse struct {
	OK        bool            `json:"ok"`
	Error     string          `json:"error,omitempty"`
	Accepted  bool            `json:"accepted"`
	Payout    decimal.Decimal `json:"payout"`
	SeasonEnd bool            `json:"seasonEnd,omitempty"`
}

type BroadcastRequest struct {
	PlayerID string `json:"playerId"`
	Text     string `json:"text"`
}

type BroadcastResponse struct {
	OK                   bool   `json:"ok"`
	Error                string `json:"error,omitempty"`
	Accepted             bool   `json:"accepted"`
	NextAllowedAt        string `json:"nextAllowedAt,omitempty"`
	NextAllowedInSeconds int64  `json:"nextAllowedInSeconds,omitempty"`
}

type StatusResponse struct {
	OK           bool            `json:"ok"`
	SeasonID     string          `json:"seasonId"`
	Active       bool            `json:"active"`
	EndReason    string          `json:"endReason,omitempty"`
	VictorID     string          `json:"victorId,omitempty"`
	VaultBalance decimal.Decimal `json:"vaultBalance"`
	RecentEvents []PlayEvent     `json:"recentEvents"`
	Broadcasts   []Broadcast     `json:"broadcasts"`
}

type LeaderboardResponse struct {
	OK      bool               `json:"ok"`
	Results []LeaderboardEntry `json:"results"`
}

type SimpleResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

/* ======================
   Error mapping
   ====================== */

const (
	errCodeInvalidRequest    = "INVALID_REQUEST"
	errCodeInvalidPlayerID   = "INVALID_PLAYER_ID"
	errCodeRateLimited       = "RATE_LIMITED"
	errCodeSeasonEnded       = "SEASON_ENDED"
	errCodeSeasonActive      = "SEASON_ACTIVE"
	errCodeInvalidSubmission = "INVALID_SUBMISSION"
	errCodeInvalidText       = "INVALID_TEXT"
	errCodeConflict          = "CONFLICT"
	errCodeInternal          = "INTERNAL_ERROR"
	errCodeUnauthorized      = "UNAUTHORIZED"
)

func registerRoutes(mux *http.ServeMux, db *sql.DB, engine *Engine, cfg Config, logger *zap.Logger) {
	mux.HandleFunc("/health", healthHandler(db))
	mux.HandleFunc("/play", playHandler(engine, logger))
	mux.HandleFunc("/submit", submitHandler(engine, logger))
	mux.HandleFunc("/broadcast", broadcastHandler(engine, logger))
	mux.HandleFunc("/status", statusHandler(db))
	mux.HandleFunc("/leaderboard", leaderboardHandler(db))
	mux.HandleFunc("/analytics", analyticsHandler(db, engine.cfg, engine.clock))
	mux.HandleFunc("/events", eventsHandler(db))
	mux.HandleFunc("/admin/season/start", seasonStartHandler(db, cfg, engine.clock, logger))
}

func healthHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}
}

func playHandler(engine *Engine, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		var req PlayRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			json.NewEncoder(w).Encode(PlayResponse{OK: false, Error: errCodeInvalidRequest})
			return
		}
		if !isValidPlayerID(req.PlayerID) {
			json.NewEncoder(w).Encode(PlayResponse{OK: false, Error: errCodeInvalidPlayerID})
			return
		}

		result, err := engine.Play(r.Context(), req.PlayerID)
		if err != nil {
			var rle *rateLimitError
			switch {
			case errors.As(err, &rle):
				json.NewEncoder(w).Encode(PlayResponse{
					OK:                   false,
					Error:                errCodeRateLimited,
					NextAllowedInSeconds: ceilSeconds(rle.Remaining),
				})
			case errors.Is(err, errSeasonEnded):
				json.NewEncoder(w).Encode(PlayResponse{OK: false, Error: errCodeSeasonEnded})
			case errors.Is(err, errConflict):
				json.NewEncoder(w).Encode(PlayResponse{OK: false, Error: errCodeConflict})
			default:
				logger.Error("play failed", zap.String("playerId", req.PlayerID), zap.Error(err))
				json.NewEncoder(w).Encode(PlayResponse{OK: false, Error: errCodeInternal})
			}
			return
		}

		resp := PlayResponse{
			OK:            true,
			Outcome:       result.Outcome,
			Reason:        result.Reason,
			Layer:         result.Layer,
			Payout:        result.Payout,
			EntryCost:     result.EntryCost,
			VaultBalance:  result.VaultBalance,
			SeasonEnded:   result.SeasonEnded,
			NextAllowedAt: result.NextAllowedAt.Format(time.RFC3339),
		}
		if !result.NextWinAllowedAt.IsZero() {
			resp.NextWinAllowedAt = result.NextWinAllowedAt.Format(time.RFC3339)
		}
		json.NewEncoder(w).Encode(resp)
	}
}

func submitHandler(engine *Engine, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		var req SubmitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			json.NewEncoder(w).Encode(SubmitResponse{OK: false, Error: errCodeInvalidRequest})
			return
		}
		if !isValidPlayerID(req.PlayerID) {
			json.NewEncoder(w).Encode(SubmitResponse{OK: false, Error: errCodeInvalidPlayerID})
			return
		}

		result, err := engine.Submit(r.Context(), req.PlayerID, req.Formula)
		if err != nil {
			switch {
			case errors.Is(err, errSeasonEnded):
				json.NewEncoder(w).Encode(SubmitResponse{OK: false, Error: errCodeSeasonEnded})
			case errors.Is(err, errConflict):
				json.NewEncoder(w).Encode(SubmitResponse{OK: false, Error: errCodeConflict})
			default:
				logger.Error("submit failed", zap.String("playerId", req.PlayerID), zap.Error(err))
				json.NewEncoder(w).Encode(SubmitResponse{OK: false, Error: errCodeInternal})
			}
			return
		}

		switch result.Status {
		case SubmitInvalid:
			json.NewEncoder(w).Encode(SubmitResponse{OK: false, Error: errCodeInvalidSubmission})
		case SubmitAccepted:
			json.NewEncoder(w).Encode(SubmitResponse{
				OK:        true,
				Accepted:  true,
				Payout:    result.Payout,
				SeasonEnd: true,
			})
		default:
			json.NewEncoder(w).Encode(SubmitResponse{OK: true, Accepted: false})
		}
	}
}

func broadcastHandler(engine *Engine, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		var req BroadcastRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			json.NewEncoder(w).Encode(BroadcastResponse{OK: false, Error: errCodeInvalidRequest})
			return
		}
		if !isValidPlayerID(req.PlayerID) {
			json.NewEncoder(w).Encode(BroadcastResponse{OK: false, Error: errCodeInvalidPlayerID})
			return
		}
		if !validBroadcastText(req.Text) {
			json.NewEncoder(w).Encode(BroadcastResponse{OK: false, Error: errCodeInvalidText})
			return
		}

		nextAllowedAt, err := engine.Broadcast(r.Context(), req.PlayerID, req.Text)
		if err != nil {
			var rle *rateLimitError
			if errors.As(err, &rle) {
				json.NewEncoder(w).Encode(BroadcastResponse{
					OK:                   false,
					Error:                errCodeRateLimited,
					NextAllowedInSeconds: ceilSeconds(rle.Remaining),
				})
				return
			}
			logger.Error("broadcast failed", zap.String("playerId", req.PlayerID), zap.Error(err))
			json.NewEncoder(w).Encode(BroadcastResponse{OK: false, Error: errCodeInternal})
			return
		}

		json.NewEncoder(w).Encode(BroadcastResponse{
			OK:            true,
			Accepted:      true,
			NextAllowedAt: nextAllowedAt.Format(time.RFC3339),
		})
	}
}

func statusHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		season, err := loadLatestSeason(db)
		if err != nil {
			json.NewEncoder(w).Encode(SimpleResponse{OK: false, Error: errCodeInternal})
			return
		}

		balance, err := vaultBalance(db, season.SeasonID)
		if err != nil {
			json.NewEncoder(w).Encode(SimpleResponse{OK: false, Error: errCodeInternal})
			return
		}

		events, err := recentPlayEvents(db, season.SeasonID, 50)
		if err != nil {
			json.NewEncoder(w).Encode(SimpleResponse{OK: false, Error: errCodeInternal})
			return
		}

		broadcasts, err := recentBroadcasts(db, 20)
		if err != nil {
			json.NewEncoder(w).Encode(SimpleResponse{OK: false, Error: errCodeInternal})
			return
		}

		resp := StatusResponse{
			OK:           true,
			SeasonID:     season.SeasonID,
			Active:       season.Active(),
			VaultBalance: balance,
			RecentEvents: events,
			Broadcasts:   broadcasts,
		}
		if !season.Active() {
			resp.EndReason = season.EndReason
			if season.VictorID.Valid {
				resp.VictorID = season.VictorID.String
			}
		}

		json.NewEncoder(w).Encode(resp)
	}
}

func leaderboardHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		results, err := topPerformers(db, 5)
		if err != nil {
			json.NewEncoder(w).Encode(SimpleResponse{OK: false, Error: errCodeInternal})
			return
		}

		json.NewEncoder(w).Encode(LeaderboardResponse{OK: true, Results: results})
	}
}

func analyticsHandler(db *sql.DB, cfg Config, clock Clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		season, err := loadLatestSeason(db)
		if err != nil {
			json.NewEncoder(w).Encode(SimpleResponse{OK: false, Error: errCodeInternal})
			return
		}

		report, err := buildAnalyticsReport(db, season.SeasonID, cfg, clock.Now())
		if err != nil {
			json.NewEncoder(w).Encode(SimpleResponse{OK: false, Error: errCodeInternal})
			return
		}

		json.NewEncoder(w).Encode(report)
	}
}

func ceilSeconds(d time.Duration) int64 {
	secs := int64(d / time.Second)
	if d%time.Second != 0 {
		secs++
	}
	return secs
}
