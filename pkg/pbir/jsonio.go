package pbir

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// writeJSONFile atomically replaces path with the two-space-indented JSON
// encoding of v: temp file in the same directory, then rename. Field order
// and casing follow the struct definition exactly; external tooling reads
// these files and depends on both.
func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return NewWriteError("encode", path, err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".reportsmith-*")
	if err != nil {
		return NewWriteError("write", path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return NewWriteError("write", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return NewWriteError("write", path, err)
	}

	// Preserve existing permissions when replacing a file.
	if info, err := os.Stat(path); err == nil {
		_ = os.Chmod(tmpName, info.Mode())
	} else {
		_ = os.Chmod(tmpName, 0o644)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return NewWriteError("rename", path, err)
	}
	return nil
}

// readJSONFile decodes path into v. A missing file surfaces as the raw
// os error so callers can classify it with the entity kind they know.
func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return NewFormatError(path, err)
	}
	return nil
}

// removeEntityFile deletes path and, when its parent directory is left with
// no entries, the parent directory too.
func removeEntityFile(kind, name, path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return NewNotFound(kind, name, path)
	} else if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	if err := os.Remove(path); err != nil {
		return NewWriteError("remove", path, err)
	}

	parent := filepath.Dir(path)
	if entries, err := os.ReadDir(parent); err == nil && len(entries) == 0 {
		if err := os.Remove(parent); err != nil {
			return NewWriteError("remove", parent, err)
		}
	}
	return nil
}
