package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"alttext/internal/pipeline"
	jsonx "alttext/internal/shared/json"
)

// Sink is the persistence boundary for finished results. Implementations
// receive every field unmodified.
type Sink interface {
	Save(result pipeline.GenerationResult) (path string, err error)
}

// JSONSink writes one pretty-printed JSON file per image into a directory.
type JSONSink struct {
	dir string
}

// NewJSONSink creates the output directory if needed.
func NewJSONSink(dir string) (*JSONSink, error) {
	if dir == "" {
		return nil, fmt.Errorf("output directory not set")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	return &JSONSink{dir: dir}, nil
}

func (s *JSONSink) Save(result pipeline.GenerationResult) (string, error) {
	data, err := jsonx.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode result %s: %w", result.ImageID, err)
	}

	path := filepath.Join(s.dir, fileStem(result.ImageID)+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write result %s: %w", result.ImageID, err)
	}
	return path, nil
}

// fileStem flattens an image id into a safe file name.
func fileStem(id string) string {
	if id == "" {
		return "result"
	}
	replacer := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "..", "_")
	return replacer.Replace(id)
}
