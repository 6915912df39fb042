package dictionary

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Origin is the provenance of a record. It never changes after creation.
type Origin string

const (
	OriginImported  Origin = "imported"
	OriginGenerated Origin = "generated"
	OriginManual    Origin = "manual"
)

// MaxWordLength is the width of the word column.
const MaxWordLength = 100

// Record is a resolved word definition.
type Record struct {
	ID            int64     `db:"id" json:"id,omitempty" yaml:"-"`
	Word          string    `db:"word" json:"word" yaml:"word" validate:"required,max=100"`
	Pronunciation *string   `db:"pronunciation" json:"pronunciation,omitempty" yaml:"pronunciation,omitempty"`
	Difficulty    *int      `db:"difficulty" json:"difficulty,omitempty" yaml:"difficulty,omitempty" validate:"omitempty,min=1,max=5"`
	Meanings      Meanings  `db:"meanings" json:"meanings" yaml:"meanings" validate:"required,min=1,dive"`
	Origin        Origin    `db:"origin" json:"origin" yaml:"origin,omitempty"`
	UsageCount    int       `db:"usage_count" json:"usageCount" yaml:"usageCount,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt" yaml:"createdAt,omitempty"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt" yaml:"updatedAt,omitempty"`
}

// Meaning is one sense of a word.
type Meaning struct {
	PartOfSpeech string    `json:"partOfSpeech" yaml:"partOfSpeech" validate:"required"`
	Korean       string    `json:"korean" yaml:"korean" validate:"required"`
	English      *string   `json:"english,omitempty" yaml:"english,omitempty"`
	Examples     []Example `json:"examples" yaml:"examples" validate:"dive"`
}

type Example struct {
	EN string `json:"en" yaml:"en"`
	KO string `json:"ko" yaml:"ko"`
}

// Meanings is stored as a JSON column.
type Meanings []Meaning

// Value implements driver.Valuer.
func (m Meanings) Value() (driver.Value, error) {
	if m == nil {
		return "[]", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal(meanings) > %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (m *Meanings) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported meanings column type %T", src)
	}
	if len(data) == 0 {
		*m = nil
		return nil
	}
	if err := json.Unmarshal(data, m); err != nil {
		return fmt.Errorf("json.Unmarshal(meanings) > %w", err)
	}
	return nil
}

// Normalize returns the store key for a raw lookup word.
func Normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Stats summarizes the stored words.
type Stats struct {
	TotalWords     int64 `db:"total_words" json:"totalWords" yaml:"totalWords"`
	GeneratedWords int64 `db:"generated_words" json:"generatedWords" yaml:"generatedWords"`
	ImportedWords  int64 `db:"imported_words" json:"importedWords" yaml:"importedWords"`
	ManualWords    int64 `db:"manual_words" json:"manualWords" yaml:"manualWords"`
	TotalUsage     int64 `db:"total_usage" json:"totalUsage" yaml:"totalUsage"`
}

// AverageUsage returns the mean usage count per word.
func (s Stats) AverageUsage() float64 {
	if s.TotalWords == 0 {
		return 0
	}
	return float64(s.TotalUsage) / float64(s.TotalWords)
}

// SavedGenerations is the number of lookups answered without calling the generation service.
func (s Stats) SavedGenerations() int64 {
	saved := s.TotalUsage - s.TotalWords
	if saved < 0 {
		return 0
	}
	return saved
}

// HitRate is the percentage of lookups that were served from storage.
func (s Stats) HitRate() float64 {
	if s.TotalUsage == 0 {
		return 0
	}
	return float64(s.SavedGenerations()) / float64(s.TotalUsage) * 100
}
