package internal

import (
	"log"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

var (
	// DefaultConfigPath is the default path to the config file
	DefaultAppName        = "studyshelf"
	DefaultConfigPath     = filepath.Join(getHomeDir(), ".config", DefaultAppName)
	DefaultDataDir        = filepath.Join(DefaultConfigPath, "data")
	DefaultExtractionRoot = filepath.Join(DefaultDataDir, "study-sync")
	DefaultDBPath         = filepath.Join(DefaultDataDir, "studyshelf.db")

	// Default Database settings
	DefaultDatabaseDSN = "file::memory:?cache=shared" // Default to in-memory SQLite
)

// Storage keys for persisted snapshots. The handle key addresses the
// capability store, everything else the string KV store.
const (
	KeyLibrary    = "studyshelf.library"
	KeyQueue      = "studyshelf.queue"
	KeyDoneByDate = "studyshelf.doneByDate"
	KeyMemos      = "studyshelf.memos"
	// KeyArchiveManifest maps archive-relative paths to the stable ids
	// assigned on extraction, so a re-import can reuse them.
	KeyArchiveManifest = "studyshelf.archiveManifest"
	KeyRootHandle      = "study-root"
)

func getHomeDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current working directory if home directory is unavailable
		cwd, cwdErr := os.Getwd()
		if cwdErr != nil {
			// Last resort - use tmp directory
			log.Printf("Unable to get home or working directory, using /tmp: %v", err)
			return "/tmp"
		}
		log.Printf("Unable to get home directory, using current working directory: %v", err)
		return cwd
	}
	return homeDir
}

// GetLogger returns a properly configured zerolog logger instance
func GetLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}
