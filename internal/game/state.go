package game

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"PulseBeacon/internal/model"
)

// LoadState reads the game state from a JSON file. Returns a zero state if the file doesn't exist.
func LoadState(filePath string) (*model.GameState, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &model.GameState{}, nil
		}
		return nil, err
	}
	var state model.GameState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// SaveState writes the game state to a JSON file, creating its directory.
func SaveState(filePath string, state *model.GameState) error {
	state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(filePath, data, 0644)
}
