package main

import (
	"crypto/subtle"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

type SeasonStartRequest struct {
	AdminKey string `json:"adminKey"`
}

type SeasonStartResponse struct {
	OK       bool   `json:"ok"`
	Error    string `json:"error,omitempty"`
	SeasonID string `json:"seasonId,omitempty"`
}

func adminKeyMatches(cfg Config, presented string) bool {
	if cfg.AdminKey == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cfg.AdminKey), []byte(presented)) == 1
}

// seasonStartHandler is the explicit external operation that starts
// the next season once the current one is Legacy. It never fires
// automatically.
func seasonStartHandler(db *sql.DB, cfg Config, clock Clock, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		var req SeasonStartRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			json.NewEncoder(w).Encode(SeasonStartResponse{OK: false, Error: errCodeInvalidRequest})
			return
		}
		if !adminKeyMatches(cfg, req.AdminKey) {
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(SeasonStartResponse{OK: false, Error: errCodeUnauthorized})
			return
		}

		seasonID, err := startNextSeason(r.Context(), db, cfg, clock)
		if err != nil {
			if errors.Is(err, errSeasonActive) {
				json.NewEncoder(w).Encode(SeasonStartResponse{OK: false, Error: errCodeSeasonActive})
				return
			}
			logger.Error("season start failed", zap.Error(err))
			json.NewEncoder(w).Encode(SeasonStartResponse{OK: false, Error: errCodeInternal})
			return
		}

		logger.Info("season started", zap.String("seasonId", seasonID))
		json.NewEncoder(w).Encode(SeasonStartResponse{OK: true, SeasonID: seasonID})
	}
}
