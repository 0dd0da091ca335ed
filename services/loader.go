package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/gorm"
)

// ProcessDirectory bulk-loads historical payloads: every *.json file in dir
// is read and applied through ProcessPayload with no notification sink. A
// file may contain a single payload object or an array of them.
//
// Payloads with an unknown discriminator are logged and skipped; any other
// failure aborts the run.
func ProcessDirectory(db *gorm.DB, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read payload directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", entry.Name(), err)
		}

		payloads, err := splitPayloads(data)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", entry.Name(), err)
		}

		for _, payload := range payloads {
			if _, err := ProcessPayload(db, payload, nil); err != nil {
				if errors.Is(err, ErrUnknownPayloadType) {
					log.Printf("Skipping payload in %s: %v", entry.Name(), err)
					continue
				}
				return fmt.Errorf("failed to process payload from %s: %w", entry.Name(), err)
			}
			log.Printf("Processed payload from %s", entry.Name())
		}
	}

	return nil
}

// splitPayloads returns the individual payload documents in a file: the
// elements of a top-level array, or the document itself.
func splitPayloads(data []byte) ([]json.RawMessage, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, err
		}
		return items, nil
	}
	return []json.RawMessage{json.RawMessage(data)}, nil
}
