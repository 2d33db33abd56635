package mud

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// FlightLog records statistics for one connection.
type FlightLog struct {
	Timestamp    time.Time `json:"timestamp"`
	Player       string    `json:"player"`
	Mode         string    `json:"mode"`
	Flights      int       `json:"flights"`
	SecondsAloft float64   `json:"seconds_aloft"`
	Potions      int       `json:"potions"`
	PeakLevel    float64   `json:"peak_level"`
}

// saveFlightLog appends the log as a single JSON line to flights.jsonl.
// Errors are logged but never crash the server.
func saveFlightLog(fl FlightLog, logger *slog.Logger) {
	dir, err := flightLogDir()
	if err != nil {
		logger.Warn("flight log: cannot determine data dir", "error", err)
		return
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Warn("flight log: cannot create data dir", "error", err)
		return
	}
	f, err := os.OpenFile(filepath.Join(dir, "flights.jsonl"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		logger.Warn("flight log: cannot open file", "error", err)
		return
	}
	defer f.Close()
	data, err := json.Marshal(fl)
	if err != nil {
		logger.Warn("flight log: cannot marshal JSON", "error", err)
		return
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		logger.Warn("flight log: write failed", "error", err)
	}
}

func flightLogDir() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "mysticism-mud"), nil
}
