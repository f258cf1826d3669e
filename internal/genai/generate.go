package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

const generatePromptTemplate = `You are an expert technical interviewer specializing in %s.
Generate %d high-quality, technically accurate interview questions with detailed and well-structured answers.

Guidelines:
- Ensure questions are appropriate for the "%s" interview round.
- The difficulty level is "%s" (easy, medium, or hard).
- Each answer must be factual, in-depth, and free from inaccuracies.
- Provide detailed explanations, best practices, and real-world examples.
- Do not generate incorrect or vague questions.
- Strictly return only a valid JSON array. Do NOT include markdown, explanations, or any other text.

JSON format:
[
  {
    "question": "...",
    "answer": "...",
    "difficulty": "%s"
  }
]`

// GenerateQuestions asks the model for n question/answer pairs for the
// given round and difficulty. For non-technical rounds language is empty
// and the prompt falls back to a general specialization.
func (c *client) GenerateQuestions(ctx context.Context, roundName, difficulty, language string, n int) ([]GeneratedQuestion, error) {
	if n <= 0 {
		n = 25
	}

	specialization := language
	if specialization == "" {
		specialization = roundName + " interviews"
	}

	prompt := fmt.Sprintf(generatePromptTemplate, specialization, n, roundName, difficulty, difficulty)

	text, err := c.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	questions, err := ParseQuestions(text)
	if err != nil {
		return nil, err
	}
	return questions, nil
}

// ParseQuestions extracts and decodes the generated question array from
// raw model output.
func ParseQuestions(text string) ([]GeneratedQuestion, error) {
	raw, err := ExtractJSON(text)
	if err != nil {
		return nil, &MalformedResponseError{Raw: text, Err: err}
	}

	var questions []GeneratedQuestion
	if err := json.Unmarshal([]byte(raw), &questions); err != nil {
		return nil, &MalformedResponseError{Raw: text, Err: err}
	}
	if len(questions) == 0 {
		return nil, &MalformedResponseError{Raw: text, Err: fmt.Errorf("empty question array")}
	}

	for i, q := range questions {
		if strings.TrimSpace(q.Question) == "" || strings.TrimSpace(q.Answer) == "" {
			return nil, &MalformedResponseError{
				Raw: text,
				Err: fmt.Errorf("question %d missing question or answer text", i),
			}
		}
	}
	return questions, nil
}
