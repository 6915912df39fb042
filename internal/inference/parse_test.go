package inference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scanvoca/scanvoca/internal/dictionary"
)

const catReply = `{
  "word": "cat",
  "pronunciation": "/kæt/",
  "difficulty": 1,
  "meanings": [
    {
      "partOfSpeech": "noun",
      "korean": "고양이",
      "english": "a small domesticated feline",
      "examples": [{"en": "The cat sat on the mat.", "ko": "고양이가 매트 위에 앉았다."}]
    }
  ]
}`

func TestParseDefinition(t *testing.T) {
	pronunciation := "/kæt/"
	english := "a small domesticated feline"
	difficulty := 1
	wantCat := dictionary.Record{
		Word:          "cat",
		Pronunciation: &pronunciation,
		Difficulty:    &difficulty,
		Meanings: dictionary.Meanings{
			{
				PartOfSpeech: "noun",
				Korean:       "고양이",
				English:      &english,
				Examples:     []dictionary.Example{{EN: "The cat sat on the mat.", KO: "고양이가 매트 위에 앉았다."}},
			},
		},
		Origin:     dictionary.OriginGenerated,
		UsageCount: 1,
	}

	tests := []struct {
		name    string
		word    string
		content string
		want    dictionary.Record
		wantErr bool
	}{
		{
			name:    "plain json",
			word:    "cat",
			content: catReply,
			want:    wantCat,
		},
		{
			name:    "fenced json",
			word:    "cat",
			content: "```json\n" + catReply + "\n```",
			want:    wantCat,
		},
		{
			name:    "surrounding prose",
			word:    "cat",
			content: "Here is the entry:\n" + catReply + "\nLet me know if you need more.",
			want:    wantCat,
		},
		{
			name:    "reply word is ignored in favour of the requested key",
			word:    "cat",
			content: `{"word": "Cats", "pronunciation": "/kæt/", "difficulty": 1, "meanings": [{"partOfSpeech": "noun", "korean": "고양이", "english": "a small domesticated feline", "examples": [{"en": "The cat sat on the mat.", "ko": "고양이가 매트 위에 앉았다."}]}]}`,
			want:    wantCat,
		},
		{
			name:    "optional fields omitted",
			word:    "run",
			content: `{"word": "run", "meanings": [{"partOfSpeech": "verb", "korean": "달리다"}]}`,
			want: dictionary.Record{
				Word: "run",
				Meanings: dictionary.Meanings{
					{PartOfSpeech: "verb", Korean: "달리다", Examples: []dictionary.Example{}},
				},
				Origin:     dictionary.OriginGenerated,
				UsageCount: 1,
			},
		},
		{
			name:    "braces inside strings",
			word:    "brace",
			content: `{"word": "brace", "meanings": [{"partOfSpeech": "noun", "korean": "중괄호 {}", "english": "the } character"}]}`,
			want: dictionary.Record{
				Word: "brace",
				Meanings: dictionary.Meanings{
					{PartOfSpeech: "noun", Korean: "중괄호 {}", English: ptr("the } character"), Examples: []dictionary.Example{}},
				},
				Origin:     dictionary.OriginGenerated,
				UsageCount: 1,
			},
		},
		{name: "empty", word: "cat", content: "  ", wantErr: true},
		{name: "not json", word: "cat", content: "I cannot help with that.", wantErr: true},
		{name: "truncated", word: "cat", content: `{"word": "cat", "meanings": [`, wantErr: true},
		{name: "no meanings", word: "cat", content: `{"word": "cat", "meanings": []}`, wantErr: true},
		{name: "meaning without korean", word: "cat", content: `{"word": "cat", "meanings": [{"partOfSpeech": "noun"}]}`, wantErr: true},
		{name: "difficulty out of range", word: "cat", content: `{"word": "cat", "difficulty": 9, "meanings": [{"partOfSpeech": "noun", "korean": "고양이"}]}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDefinition(tt.word, tt.content)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrMalformedResponse)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "no fence", content: `{"a":1}`, want: `{"a":1}`},
		{name: "json fence", content: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "bare fence", content: "```\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "single line fence", content: "```json{\"a\":1}```", want: `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripCodeFence(tt.content))
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("serendipity")
	assert.Contains(t, prompt, `"serendipity"`)
	assert.Contains(t, prompt, "partOfSpeech")
	assert.Contains(t, prompt, "difficulty")
}

func ptr[T any](v T) *T {
	return &v
}
