package inference

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/scanvoca/scanvoca/internal/dictionary"
	"github.com/scanvoca/scanvoca/internal/validation"
)

// definitionPayload is the JSON object a provider is asked to return.
type definitionPayload struct {
	Word          string           `json:"word"`
	Pronunciation string           `json:"pronunciation"`
	Difficulty    *int             `json:"difficulty" validate:"omitempty,min=1,max=5"`
	Meanings      []meaningPayload `json:"meanings" validate:"required,min=1,dive"`
}

type meaningPayload struct {
	PartOfSpeech string               `json:"partOfSpeech" validate:"required"`
	Korean       string               `json:"korean" validate:"required"`
	English      string               `json:"english"`
	Examples     []dictionary.Example `json:"examples"`
}

var payloadValidator *validation.Validator

func init() {
	v, err := validation.New("json")
	if err != nil {
		panic(fmt.Sprintf("validation.New > %v", err))
	}
	payloadValidator = v
}

// ParseDefinition turns a raw provider reply into a generated record for word.
// The record key is always word, whatever the reply claims.
// Every failure wraps ErrMalformedResponse.
func ParseDefinition(word, content string) (dictionary.Record, error) {
	content = extractJSONObject(stripCodeFence(content))
	if strings.TrimSpace(content) == "" {
		return dictionary.Record{}, fmt.Errorf("%w: empty content", ErrMalformedResponse)
	}

	var payload definitionPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return dictionary.Record{}, fmt.Errorf("%w: json.Unmarshal(%s) > %w", ErrMalformedResponse, content, err)
	}
	fieldErrors, err := payloadValidator.Struct(payload)
	if err != nil {
		return dictionary.Record{}, fmt.Errorf("%w: validate > %w", ErrMalformedResponse, err)
	}
	if len(fieldErrors) > 0 {
		return dictionary.Record{}, fmt.Errorf("%w: %s", ErrMalformedResponse, validation.Messages(fieldErrors))
	}

	rec := dictionary.Record{
		Word:       word,
		Difficulty: payload.Difficulty,
		Meanings:   make(dictionary.Meanings, 0, len(payload.Meanings)),
		Origin:     dictionary.OriginGenerated,
		UsageCount: 1,
	}
	if p := strings.TrimSpace(payload.Pronunciation); p != "" {
		rec.Pronunciation = &p
	}
	for _, m := range payload.Meanings {
		meaning := dictionary.Meaning{
			PartOfSpeech: strings.TrimSpace(m.PartOfSpeech),
			Korean:       strings.TrimSpace(m.Korean),
			Examples:     m.Examples,
		}
		if e := strings.TrimSpace(m.English); e != "" {
			meaning.English = &e
		}
		if meaning.Examples == nil {
			meaning.Examples = []dictionary.Example{}
		}
		rec.Meanings = append(rec.Meanings, meaning)
	}
	return rec, nil
}

// stripCodeFence removes a surrounding ```json ... ``` block.
func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```")
	if i := strings.IndexByte(content, '\n'); i >= 0 {
		content = content[i+1:]
	} else {
		content = strings.TrimPrefix(content, "json")
	}
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}

// extractJSONObject returns the first balanced JSON object in content,
// ignoring braces inside string literals. Content without one is returned as is.
func extractJSONObject(content string) string {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i, ch := range content {
		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' && inString {
			escaped = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch ch {
		case '{':
			if start == -1 {
				start = i
			}
			depth++
		case '}':
			if start == -1 {
				continue
			}
			depth--
			if depth == 0 {
				return content[start : i+1]
			}
		}
	}
	return content
}
