package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rocketscienceinc/gobbler-backend/internal/entity"
)

const reportTimeout = 5 * time.Second

// GameResult is the handoff to the rating collaborator once a game ends.
type GameResult struct {
	RoomID             string       `json:"roomId"`
	RedPlayerIdentity  string       `json:"redPlayerIdentity"`
	BluePlayerIdentity string       `json:"bluePlayerIdentity"`
	WinnerColor        entity.Color `json:"winnerColor"`
	TotalMoves         int          `json:"totalMoves"`
}

type ResultReporter interface {
	// Report hands the result off without blocking gameplay. Failures are
	// logged, never surfaced.
	Report(result *GameResult)
}

type httpResultReporter struct {
	logger *slog.Logger
	url    string
	client *http.Client
}

func NewResultReporter(logger *slog.Logger, url string) ResultReporter {
	return &httpResultReporter{
		logger: logger.With("component", "result-reporter"),
		url:    url,
		client: &http.Client{Timeout: reportTimeout},
	}
}

func (that *httpResultReporter) Report(result *GameResult) {
	if that.url == "" {
		return
	}

	// Guest seats have no durable identity; nothing to rate.
	if result.RedPlayerIdentity == "" || result.BluePlayerIdentity == "" {
		that.logger.Debug("skipping result report for anonymous players", "roomID", result.RoomID)
		return
	}

	go func() {
		if err := that.post(result); err != nil {
			that.logger.Error("failed to report game result", "roomID", result.RoomID, "error", err)
		}
	}()
}

func (that *httpResultReporter) post(result *GameResult) error {
	body, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, that.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := that.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post result: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("rating service responded %s", resp.Status)
	}

	return nil
}
