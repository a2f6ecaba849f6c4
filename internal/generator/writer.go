package generator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kavya/transintelliflow/backend/internal/domain"
)

// RunArtifacts bundles the generated requests and their dispatch outcomes for
// offline inspection.
type RunArtifacts struct {
	Requests []domain.TransactionRequest `json:"requests"`
	Records  []domain.DispatchRecord     `json:"records"`
}

// WriteArtifacts serializes a run into requests.json and records.json under
// the provided directory.
func WriteArtifacts(artifacts RunArtifacts, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	requestsPath := filepath.Join(dir, "requests.json")
	if err := writeJSON(requestsPath, artifacts.Requests); err != nil {
		return err
	}

	recordsPath := filepath.Join(dir, "records.json")
	if err := writeJSON(recordsPath, artifacts.Records); err != nil {
		return err
	}

	return nil
}

func writeJSON(path string, data any) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encode json for %s: %w", path, err)
	}
	return nil
}
