package ai

import (
	"errors"
	"testing"
)

func TestParseFeedbackReply(t *testing.T) {
	reply := `{"feedback": "Well done.", "mark": {"vocabMark": 3, "grammarMark": 2, "contentMark": 3}}`
	result, err := parseFeedbackReply(reply)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Feedback != "Well done." {
		t.Errorf("feedback = %q, want %q", result.Feedback, "Well done.")
	}
	if result.Mark == nil || result.Mark.VocabMark == nil || *result.Mark.VocabMark != 3 {
		t.Errorf("vocabMark not parsed: %+v", result.Mark)
	}
	if result.Mark.GrammarMark == nil || *result.Mark.GrammarMark != 2 {
		t.Errorf("grammarMark not parsed: %+v", result.Mark)
	}
}

func TestParseFeedbackReplyFeedbackOnly(t *testing.T) {
	result, err := parseFeedbackReply(`{"feedback": "Correct, the past participle of go is gone."}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Mark != nil {
		t.Errorf("mark = %+v, want nil", result.Mark)
	}
}

func TestParseFeedbackReplyEmpty(t *testing.T) {
	for _, raw := range []string{"", "   ", "\n\t"} {
		if _, err := parseFeedbackReply(raw); !errors.Is(err, ErrEmptyReply) {
			t.Errorf("parseFeedbackReply(%q) error = %v, want ErrEmptyReply", raw, err)
		}
	}
}

func TestParseFeedbackReplyMalformed(t *testing.T) {
	cases := []string{
		"Sure! Here is the feedback you asked for.",
		`{"feedback": `,
		`{"mark": {"vocabMark": 3}}`,
		`{}`,
	}
	for _, raw := range cases {
		if _, err := parseFeedbackReply(raw); !errors.Is(err, ErrMalformedReply) {
			t.Errorf("parseFeedbackReply(%q) error = %v, want ErrMalformedReply", raw, err)
		}
	}
}
