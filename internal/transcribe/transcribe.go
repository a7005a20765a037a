package transcribe

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"exam-service/internal/logger"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// maxAudioBytes bounds the download so a bad URL cannot exhaust memory.
const maxAudioBytes = 25 << 20

// Service converts a spoken-audio URL into text: download the payload,
// forward it to Whisper, return the trimmed transcript. Each step fails
// distinctly so callers can tell a dead link from a speech-to-text outage.
type Service struct {
	api  *openai.Client
	http *http.Client
}

func New(apiKey, baseURL string) *Service {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Service{
		api:  openai.NewClientWithConfig(cfg),
		http: &http.Client{Timeout: 60 * time.Second},
	}
}

// Transcribe returns the transcript of the audio at the given URL.
func (s *Service) Transcribe(ctx context.Context, audioURL string) (string, error) {
	data, err := s.download(ctx, audioURL)
	if err != nil {
		logger.Log.Warn("audio download failed", zap.String("url", audioURL), zap.Error(err))
		return "", fmt.Errorf("download audio: %w", err)
	}

	resp, err := s.api.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		Reader:   bytes.NewReader(data),
		FilePath: "response.wav",
	})
	if err != nil {
		logger.Log.Warn("transcription failed", zap.String("url", audioURL), zap.Error(err))
		return "", fmt.Errorf("transcribe audio: %w", err)
	}

	return strings.TrimSpace(resp.Text), nil
}

func (s *Service) download(ctx context.Context, audioURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioBytes))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty audio payload")
	}
	return data, nil
}
