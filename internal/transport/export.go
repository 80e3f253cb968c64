package transport

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// WritePathsJSON encodes paths as [[[x,y,z],...],...] for external plotting.
func WritePathsJSON(w io.Writer, paths []Path) error {
	enc := json.NewEncoder(w)
	if paths == nil {
		paths = []Path{}
	}
	return enc.Encode(paths)
}

// SavePaths writes paths to a JSON file at path.
func SavePaths(path string, paths []Path) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WritePathsJSON(f, paths); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode paths: %w", err)
	}
	return f.Close()
}

// ReadPathsJSON decodes the format written by WritePathsJSON.
func ReadPathsJSON(r io.Reader) ([]Path, error) {
	var paths []Path
	if err := json.NewDecoder(r).Decode(&paths); err != nil {
		return nil, err
	}
	return paths, nil
}
