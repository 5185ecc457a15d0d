package recorder

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/goccy/go-json"
)

// JSONFileRecorder appends every recorded value as one json line
type JSONFileRecorder struct {
	mu   sync.Mutex
	path string
	file *os.File
}

func NewJSONFileRecorder(path string) (*JSONFileRecorder, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("unable to open %s: %w", path, err)
	}
	return &JSONFileRecorder{path: path, file: file}, nil
}

func (r *JSONFileRecorder) Record(value any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return fmt.Errorf("recorder %s is closed", r.path)
	}
	return writeLine(r.file, value)
}

func (r *JSONFileRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

func writeLine(w io.Writer, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("unable to encode record: %w", err)
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// ReadAll decodes every line of a recorded file into T
func ReadAll[T any](path string) ([]T, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = file.Close()
	}()

	var values []T
	decoder := json.NewDecoder(file)
	for decoder.More() {
		var value T
		if err := decoder.Decode(&value); err != nil {
			return nil, fmt.Errorf("unable to decode record %d of %s: %w", len(values), path, err)
		}
		values = append(values, value)
	}
	return values, nil
}
