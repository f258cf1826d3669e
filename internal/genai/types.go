// Package genai calls an OpenAI-compatible chat-completion API to produce
// interview questions and explanations. The model is expected to answer
// with JSON but routinely wraps it in prose or code fences; everything it
// returns goes through a tolerant extraction step before parsing.
package genai

import "context"

type GeneratedQuestion struct {
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Difficulty string `json:"difficulty"`
}

type Explanation struct {
	Explanation        string   `json:"explanation"`
	Examples           []string `json:"examples"`
	KeyPoints          []string `json:"key_points"`
	ActionableInsights []string `json:"actionable_insights"`
}

// Generator is the boundary the handlers depend on; tests swap in a fake.
type Generator interface {
	GenerateQuestions(ctx context.Context, roundName, difficulty, language string, n int) ([]GeneratedQuestion, error)
	Explain(ctx context.Context, question string) (Explanation, error)
}

// MalformedResponseError means the model's output contained no parseable
// JSON of the expected shape. Raw retains the response for diagnostics.
type MalformedResponseError struct {
	Raw string
	Err error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return "malformed generation response: " + e.Err.Error()
	}
	return "malformed generation response"
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }
