package datasync

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/scanvoca/scanvoca/internal/dictionary"
)

// Wordbook is the bundled word list shipped with the mobile app.
type Wordbook struct {
	TotalWords int     `json:"totalWords" yaml:"totalWords"`
	Words      []Entry `json:"words" yaml:"words"`
}

// Entry is one word of a wordbook.
type Entry struct {
	Word          string              `json:"word" yaml:"word"`
	Pronunciation *string             `json:"pronunciation,omitempty" yaml:"pronunciation,omitempty"`
	Difficulty    *int                `json:"difficulty,omitempty" yaml:"difficulty,omitempty"`
	Meanings      dictionary.Meanings `json:"meanings" yaml:"meanings"`
}

// LoadWordbook reads entries from a JSON wordbook or a YAML file.
// A YAML file may hold either a wordbook object or a plain list of entries.
func LoadWordbook(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile(%s) > %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return parseYAMLWordbook(data)
	case ".json":
		var book Wordbook
		if err := json.Unmarshal(data, &book); err != nil {
			return nil, fmt.Errorf("json.Unmarshal(%s) > %w", path, err)
		}
		return book.Words, nil
	default:
		return nil, fmt.Errorf("unsupported wordbook format %q", filepath.Ext(path))
	}
}

func parseYAMLWordbook(data []byte) ([]Entry, error) {
	trimmed := bytes.TrimSpace(data)
	if bytes.HasPrefix(trimmed, []byte("-")) {
		var entries []Entry
		if err := yaml.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("yaml.Unmarshal > %w", err)
		}
		return entries, nil
	}
	var book Wordbook
	if err := yaml.Unmarshal(data, &book); err != nil {
		return nil, fmt.Errorf("yaml.Unmarshal > %w", err)
	}
	return book.Words, nil
}
