package client

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rocketscienceinc/gobbler-backend/internal/bot"
	"github.com/rocketscienceinc/gobbler-backend/internal/entity"
)

// Session is the room/seat identity persisted for the rejoin handshake.
type Session struct {
	RoomID     string       `json:"roomId"`
	Color      entity.Color `json:"color"`
	PlayerName string       `json:"playerName"`
	Identity   string       `json:"identity"`
}

// SavedGame is a locally persisted game, used by the offline AI mode.
type SavedGame struct {
	GameState  *entity.GameState `json:"gameState"`
	Difficulty bot.Difficulty    `json:"difficulty"`
}

// Store is the local key-value collaborator. Loads report absence, never
// corruption: a damaged entry reads as "no saved state".
type Store interface {
	SaveSession(session *Session) error
	LoadSession() (*Session, bool)
	ClearSession() error

	SaveGame(game *SavedGame) error
	LoadGame() (*SavedGame, bool)
}

const (
	sessionFile = "session.json"
	gameFile    = "game.json"

	storeFileMode = 0o600
)

// FileStore keeps each entry as a JSON file under one directory.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (that *FileStore) SaveSession(session *Session) error {
	return that.write(sessionFile, session)
}

func (that *FileStore) LoadSession() (*Session, bool) {
	var session Session
	if !that.read(sessionFile, &session) || session.RoomID == "" {
		return nil, false
	}

	return &session, true
}

func (that *FileStore) ClearSession() error {
	err := os.Remove(filepath.Join(that.dir, sessionFile))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	return nil
}

func (that *FileStore) SaveGame(game *SavedGame) error {
	return that.write(gameFile, game)
}

func (that *FileStore) LoadGame() (*SavedGame, bool) {
	var game SavedGame
	if !that.read(gameFile, &game) || game.GameState == nil {
		return nil, false
	}

	return &game, true
}

func (that *FileStore) write(name string, value any) error {
	if err := os.MkdirAll(that.dir, 0o700); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}

	if err = os.WriteFile(filepath.Join(that.dir, name), data, storeFileMode); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	return nil
}

// read returns false for missing and for unparseable entries alike.
func (that *FileStore) read(name string, value any) bool {
	data, err := os.ReadFile(filepath.Join(that.dir, name))
	if err != nil {
		return false
	}

	return json.Unmarshal(data, value) == nil
}
