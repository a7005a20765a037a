package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"exam-service/internal/ai"

	"github.com/gin-gonic/gin"
)

type stubGenerator struct {
	result *ai.FeedbackResult
	err    error
	calls  int
}

func (s *stubGenerator) GenerateFeedback(_ context.Context, _ string) (*ai.FeedbackResult, error) {
	s.calls++
	return s.result, s.err
}

type stubPromptTranscriber struct {
	transcript string
	err        error
}

func (s *stubPromptTranscriber) Transcribe(_ context.Context, _ string) (string, error) {
	return s.transcript, s.err
}

func newFeedbackRouter(gen *stubGenerator, tr ai.Transcriber) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewFeedbackHandler(ai.NewCompositor(tr), gen)
	r := gin.New()
	r.POST("/written-question", h.WrittenQuestion)
	r.POST("/audio-question", h.AudioQuestion)
	r.POST("/multi-choice", h.MultiChoice)
	r.POST("/fill-blanks", h.FillBlanks)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWrittenQuestionFeedback(t *testing.T) {
	gen := &stubGenerator{result: &ai.FeedbackResult{Feedback: "Nice work."}}
	r := newFeedbackRouter(gen, &stubPromptTranscriber{})

	w := postJSON(t, r, "/written-question", `{"text": "I went to the park", "prompt": "Describe your weekend"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp ai.FeedbackResult
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.Feedback != "Nice work." {
		t.Errorf("feedback = %q", resp.Feedback)
	}
}

func TestWrittenQuestionRequiresText(t *testing.T) {
	gen := &stubGenerator{result: &ai.FeedbackResult{Feedback: "unused"}}
	r := newFeedbackRouter(gen, &stubPromptTranscriber{})

	w := postJSON(t, r, "/written-question", `{"prompt": "Describe your weekend"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if gen.calls != 0 {
		t.Errorf("generator called %d times before validation, want 0", gen.calls)
	}
}

func TestAudioQuestionRequiresAudioAndPrompt(t *testing.T) {
	gen := &stubGenerator{}
	r := newFeedbackRouter(gen, &stubPromptTranscriber{})

	for _, body := range []string{
		`{"prompt": "Talk about food"}`,
		`{"audioUrl": "http://media/resp.wav"}`,
	} {
		w := postJSON(t, r, "/audio-question", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, w.Code)
		}
	}
	if gen.calls != 0 {
		t.Errorf("generator called %d times, want 0", gen.calls)
	}
}

func TestAudioQuestionTranscriptionFailure(t *testing.T) {
	gen := &stubGenerator{}
	r := newFeedbackRouter(gen, &stubPromptTranscriber{err: errors.New("whisper down")})

	w := postJSON(t, r, "/audio-question", `{"audioUrl": "http://media/resp.wav", "prompt": "Talk about food"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if !strings.Contains(w.Body.String(), externalFailureText) {
		t.Errorf("body = %s, want external failure message", w.Body.String())
	}
	if gen.calls != 0 {
		t.Errorf("generator called %d times after failed transcription, want 0", gen.calls)
	}
}

func TestFeedbackSoftFailsOnMalformedReply(t *testing.T) {
	gen := &stubGenerator{err: ai.ErrMalformedReply}
	r := newFeedbackRouter(gen, &stubPromptTranscriber{})

	w := postJSON(t, r, "/written-question", `{"text": "hello"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp["feedback"] != errorFeedbackText {
		t.Errorf("feedback = %q, want placeholder", resp["feedback"])
	}
}

func TestFeedbackFailsOnTransportError(t *testing.T) {
	gen := &stubGenerator{err: errors.New("connection refused")}
	r := newFeedbackRouter(gen, &stubPromptTranscriber{})

	w := postJSON(t, r, "/written-question", `{"text": "hello"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}

func TestMultiChoiceRequiresOptions(t *testing.T) {
	gen := &stubGenerator{}
	r := newFeedbackRouter(gen, &stubPromptTranscriber{})

	w := postJSON(t, r, "/multi-choice", `{"text": "[\"a\"]", "prompt": "Pick one"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestFillBlanksRejectsUndecodableResponse(t *testing.T) {
	gen := &stubGenerator{result: &ai.FeedbackResult{Feedback: "unused"}}
	r := newFeedbackRouter(gen, &stubPromptTranscriber{})

	body := `{"text": "not-json", "prompt": "Fill it in", "fillBlanksQuestionList": [{"text": "1.__", "blanks": [{"text": "Paris"}]}]}`
	w := postJSON(t, r, "/fill-blanks", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if gen.calls != 0 {
		t.Errorf("generator called %d times, want 0", gen.calls)
	}
}
