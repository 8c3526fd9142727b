package main

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"
)

// sniper waits for the wall clock to hit the residue second and fires
// a single play, retrying until it lands a win.

type PlayRequest struct {
	PlayerID string `json:"playerId"`
}

type PlayResponse struct {
	OK           bool        `json:"ok"`
	Error        string      `json:"error,omitempty"`
	Outcome      string      `json:"outcome"`
	Payout       json.Number `json:"payout"`
	VaultBalance json.Number `json:"vaultBalance"`
}

func main() {
	url := os.Getenv("SNIPER_URL")
	if url == "" {
		url = "http://127.0.0.1:8080/play"
	}
	playerID := os.Getenv("SNIPER_PLAYER_ID")
	if playerID == "" {
		playerID = "sniper"
	}
	residue := int64(7)
	if raw := os.Getenv("SNIPER_RESIDUE"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil {
			residue = parsed
		}
	}

	log.Println("targeting:", url)
	log.Println("waiting for the anomaly (second ends in", residue, ")")

	client := &http.Client{Timeout: 5 * time.Second}

	for {
		if time.Now().Unix()%10 != residue {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		resp, err := fire(client, url, playerID)
		if err != nil {
			log.Println("request failed:", err)
			return
		}

		if resp.OK && resp.Outcome == "win" {
			log.Println("hit! payout:", resp.Payout, "vault now:", resp.VaultBalance)
			return
		}
		if resp.Error == "RATE_LIMITED" {
			log.Println("rate limited, holding fire")
			time.Sleep(time.Second)
			continue
		}
		if resp.Error == "SEASON_ENDED" {
			log.Println("season is over")
			return
		}

		log.Println("missed, retrying")
		time.Sleep(time.Second)
	}
}

func fire(client *http.Client, url, playerID string) (*PlayResponse, error) {
	body, err := json.Marshal(PlayRequest{PlayerID: playerID})
	if err != nil {
		return nil, err
	}

	httpResp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	var resp PlayResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
