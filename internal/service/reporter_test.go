package service

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gobbler-backend/internal/entity"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestResultReporter_Report(t *testing.T) {
	t.Run("Finished game posts to the rating service", func(t *testing.T) {
		// Given: a rating endpoint capturing requests
		var mu sync.Mutex
		var received []GameResult

		rating := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var result GameResult
			require.NoError(t, json.NewDecoder(r.Body).Decode(&result))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			mu.Lock()
			received = append(received, result)
			mu.Unlock()
		}))
		defer rating.Close()

		reporter := NewResultReporter(discardLogger(), rating.URL)

		// When: a result with both identities is handed off
		reporter.Report(&GameResult{
			RoomID:             "AB12",
			RedPlayerIdentity:  "id-alice",
			BluePlayerIdentity: "id-bob",
			WinnerColor:        entity.ColorRed,
			TotalMoves:         5,
		})

		// Then: the post arrives asynchronously
		assert.Eventually(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			return len(received) == 1
		}, 5*time.Second, 10*time.Millisecond)

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, "AB12", received[0].RoomID)
		assert.Equal(t, entity.ColorRed, received[0].WinnerColor)
		assert.Equal(t, 5, received[0].TotalMoves)
	})

	t.Run("Anonymous seats are never reported", func(t *testing.T) {
		var posts int
		var mu sync.Mutex

		rating := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			mu.Lock()
			posts++
			mu.Unlock()
		}))
		defer rating.Close()

		reporter := NewResultReporter(discardLogger(), rating.URL)

		reporter.Report(&GameResult{RoomID: "AB12", RedPlayerIdentity: "id-alice", WinnerColor: entity.ColorRed})

		time.Sleep(200 * time.Millisecond)

		mu.Lock()
		defer mu.Unlock()
		assert.Zero(t, posts)
	})

	t.Run("Unconfigured reporter is a no-op", func(t *testing.T) {
		reporter := NewResultReporter(discardLogger(), "")

		// nothing to assert beyond not panicking
		reporter.Report(&GameResult{RoomID: "AB12", RedPlayerIdentity: "a", BluePlayerIdentity: "b"})
	})
}
