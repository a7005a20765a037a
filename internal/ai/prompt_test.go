package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"exam-service/internal/models"
)

// stubTranscriber maps audio URLs to canned transcripts.
type stubTranscriber struct {
	transcripts map[string]string
	err         error
	calls       int
}

func (s *stubTranscriber) Transcribe(_ context.Context, audioURL string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.transcripts[audioURL], nil
}

func TestWrittenQuestionPrompt(t *testing.T) {
	c := NewCompositor(&stubTranscriber{})
	prompt := c.WrittenQuestion(context.Background(), "Describe your weekend", "I goed to the park")

	for _, want := range []string{
		"Describe your weekend",
		`"I goed to the park"`,
		"vocabMark",
		"grammarMark",
		"contentMark",
		"0 = a1 level",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(prompt, "media prompts") {
		t.Error("prompt mentions media prompts with none attached")
	}
}

func TestWrittenQuestionInlinesAudioAttachment(t *testing.T) {
	stub := &stubTranscriber{transcripts: map[string]string{
		"http://media/clip.wav": "the weather in spring",
	}}
	c := NewCompositor(stub)
	prompt := c.WrittenQuestion(context.Background(), "Listen and respond", "It is sunny",
		&models.MediaPrompt{URL: "http://media/clip.wav", Type: "audio"})

	if !strings.Contains(prompt, "the weather in spring") {
		t.Error("attachment transcript not inlined")
	}
	if stub.calls != 1 {
		t.Errorf("transcriber called %d times, want 1", stub.calls)
	}
}

func TestWrittenQuestionSkipsUntranscribableAttachment(t *testing.T) {
	stub := &stubTranscriber{err: errors.New("whisper unavailable")}
	c := NewCompositor(stub)
	prompt := c.WrittenQuestion(context.Background(), "Listen and respond", "It is sunny",
		&models.MediaPrompt{URL: "http://media/clip.wav", Type: "audio"},
		nil,
		&models.MediaPrompt{URL: "http://media/pic.png", Type: "image"})

	if strings.Contains(prompt, "media prompts") {
		t.Error("failed attachment should be omitted, not mentioned")
	}
	// The image attachment must not reach the transcriber at all.
	if stub.calls != 1 {
		t.Errorf("transcriber called %d times, want 1", stub.calls)
	}
}

func TestAudioQuestionAbortsWhenStudentAudioFails(t *testing.T) {
	c := NewCompositor(&stubTranscriber{err: errors.New("download failed")})
	if _, err := c.AudioQuestion(context.Background(), "Talk about food", "http://media/resp.wav"); err == nil {
		t.Fatal("expected error when student response cannot be transcribed")
	}
}

func TestAudioQuestionPrompt(t *testing.T) {
	stub := &stubTranscriber{transcripts: map[string]string{
		"http://media/resp.wav": "I like pasta and rice",
	}}
	c := NewCompositor(stub)
	prompt, err := c.AudioQuestion(context.Background(), "Talk about food", "http://media/resp.wav")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"I like pasta and rice", "fluencyMark", "pronunciationMark", "placeholder score of 4"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestReadOutloudPrompt(t *testing.T) {
	stub := &stubTranscriber{transcripts: map[string]string{
		"http://media/read.wav": "the quick brown fox",
	}}
	c := NewCompositor(stub)
	prompt, err := c.ReadOutloud(context.Background(), "The quick brown fox jumps", "http://media/read.wav")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"read the given text out loud", "the quick brown fox", "accuracyMark"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestMultiChoicePrompt(t *testing.T) {
	options := []models.ChoiceOption{
		{ID: "a", Text: "went", Correct: true},
		{ID: "b", Text: "goed"},
		{ID: "c", Text: "gone"},
	}
	c := NewCompositor(&stubTranscriber{})
	prompt := c.MultiChoice(context.Background(), "Pick the past tense of go", `["b"]`, options)

	for _, want := range []string{"1) went", "2) goed", "3) gone", `"goed"`} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	// The correct-answers line carries only the correct option.
	if !strings.Contains(prompt, "Here are the correct answer(s):\n\n1) went") {
		t.Error("correct answers line wrong")
	}
}

func TestMultiChoicePromptBareID(t *testing.T) {
	options := []models.ChoiceOption{{ID: "a", Text: "went", Correct: true}}
	c := NewCompositor(&stubTranscriber{})
	prompt := c.MultiChoice(context.Background(), "Pick one", "a", options)
	if !strings.Contains(prompt, `"went"`) {
		t.Error("bare option id not resolved to its text")
	}
}

func TestReorderSentencePromptRejectsBadResponse(t *testing.T) {
	c := NewCompositor(&stubTranscriber{})
	if _, err := c.ReorderSentence(context.Background(), "Order the words", "not-json", nil); err == nil {
		t.Fatal("expected decode error for non-JSON response")
	}
}

func TestFillBlanksPrompt(t *testing.T) {
	groups := []models.FillBlanksGroup{
		{Text: "The capital of France is 1.__________", Blanks: []models.Blank{{Text: "Paris"}}},
	}
	c := NewCompositor(&stubTranscriber{})
	prompt, err := c.FillBlanks(context.Background(), "Complete the sentence", `[["paris"]]`, groups, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"QUESTION#1", "1. Paris", "1. paris", "case sensitive"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
