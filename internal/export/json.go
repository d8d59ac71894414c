package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

const fileMode = 0o644

// SaveJSON writes v to path as 4-space indented JSON, replacing any existing file.
// HTML characters are not escaped and no trailing newline is written.
func SaveJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	if err := os.WriteFile(path, bytes.TrimRight(buf.Bytes(), "\n"), fileMode); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
