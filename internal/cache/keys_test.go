package cache

import (
	"reflect"
	"testing"
)

func TestQuestionsReadKey(t *testing.T) {
	tests := []struct {
		name       string
		language   string
		difficulty string
		want       string
	}{
		{"unfiltered", "", "", "questions:c1:r1"},
		{"language", "go", "", "questions:c1:r1:go"},
		{"difficulty", "", "hard", "questions:c1:r1:difficulty:hard"},
		{"both", "go", "hard", "questions:c1:r1:go:hard"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := QuestionsReadKey("c1", "r1", tt.language, tt.difficulty)
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestQuestionKeyVariants(t *testing.T) {
	got := QuestionKeyVariants("c1", "r1", "go", "easy")
	want := []string{
		"questions:c1:r1",
		"questions:c1:r1:go",
		"questions:c1:r1:difficulty:easy",
		"questions:c1:r1:go:easy",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("variants = %v, want %v", got, want)
	}

	// Without dimensions only the base key is derivable.
	got = QuestionKeyVariants("c1", "r1", "", "")
	if len(got) != 1 || got[0] != "questions:c1:r1" {
		t.Fatalf("variants = %v, want base key only", got)
	}
}
