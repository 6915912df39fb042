package inference

import "fmt"

const systemPrompt = "You are an English-Korean learner's dictionary. You answer with a single JSON object and nothing else."

// SystemPrompt returns the instruction sent as the system role by providers that support one.
func SystemPrompt() string {
	return systemPrompt
}

// BuildPrompt returns the definition request for word.
func BuildPrompt(word string) string {
	return fmt.Sprintf(`Define the English word %q for a Korean speaker.

Reply with this JSON structure:
{
  "word": %q,
  "pronunciation": "IPA transcription",
  "difficulty": 1,
  "meanings": [
    {
      "partOfSpeech": "noun",
      "korean": "Korean translation",
      "english": "English definition",
      "examples": [
        {"en": "Example sentence", "ko": "Korean translation of the example"}
      ]
    }
  ]
}

Rules:
- "difficulty" is an integer from 1 (beginner) to 5 (advanced).
- "partOfSpeech" uses English labels: noun, verb, adjective, adverb, preposition, conjunction, pronoun, interjection.
- Give one or two meanings for common words and one or two examples per meaning.
- Output only the JSON object, complete and properly closed.`, word, word)
}
