package genai

import (
	"context"
	"encoding/json"
	"fmt"
)

const explainPromptTemplate = `You are an expert educator who explains concepts in a clear, comprehensive, and structured way.

Given the following question, provide a detailed answer with examples, key points, and actionable insights.

Question: %s

IMPORTANT: Your response MUST be a valid JSON object with the following structure:
{
  "explanation": "detailed explanation here",
  "examples": ["example1", "example2", "example3"],
  "key_points": ["key point 1", "key point 2", "key point 3"],
  "actionable_insights": ["insight 1", "insight 2", "insight 3"]
}

Do not include any text, markdown formatting, or other content outside of this JSON structure.
Return ONLY the raw JSON object.`

// Explain asks the model for a structured deep-dive on one question.
func (c *client) Explain(ctx context.Context, question string) (Explanation, error) {
	text, err := c.complete(ctx, fmt.Sprintf(explainPromptTemplate, question))
	if err != nil {
		return Explanation{}, err
	}
	return ParseExplanation(text)
}

// ParseExplanation extracts and decodes the explanation object, requiring
// all four fields the prompt demands.
func ParseExplanation(text string) (Explanation, error) {
	raw, err := ExtractJSON(text)
	if err != nil {
		return Explanation{}, &MalformedResponseError{Raw: text, Err: err}
	}

	var exp Explanation
	if err := json.Unmarshal([]byte(raw), &exp); err != nil {
		return Explanation{}, &MalformedResponseError{Raw: text, Err: err}
	}

	switch {
	case exp.Explanation == "":
		err = fmt.Errorf("missing required field: explanation")
	case exp.Examples == nil:
		err = fmt.Errorf("missing required field: examples")
	case exp.KeyPoints == nil:
		err = fmt.Errorf("missing required field: key_points")
	case exp.ActionableInsights == nil:
		err = fmt.Errorf("missing required field: actionable_insights")
	}
	if err != nil {
		return Explanation{}, &MalformedResponseError{Raw: text, Err: err}
	}
	return exp, nil
}
