package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mindgarden/mindgarden/config"
)

var geminiClient = &http.Client{Timeout: 10 * time.Second}

// ErrGeminiUnavailable is returned when the upstream call fails or the key is missing.
var ErrGeminiUnavailable = errors.New("suggestion upstream unavailable")

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GenerateSuggestions asks the generative-language API for short coping
// suggestions based on the user's free-text input.
func GenerateSuggestions(ctx context.Context, userInput string) (string, error) {
	cfg := config.Get()
	if cfg.GeminiAPIKey == "" {
		return "", ErrGeminiUnavailable
	}

	prompt := fmt.Sprintf(`User mood/input: %q

Give 2 short, practical, comforting suggestions.
Respond ONLY in English.
Be a little informal and friendly.
Return strictly a bullet point list.
Also suggest:
- one related music
- one related article I might like to read.
`, userInput)

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: prompt}},
		}},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimRight(cfg.GeminiBaseURL, "/"), cfg.GeminiModel, cfg.GeminiAPIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := geminiClient.Do(req)
	if err != nil {
		if Sugar != nil {
			Sugar.Warnf("gemini request failed: %v", err)
		}
		return "", ErrGeminiUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if Sugar != nil {
			Sugar.Warnf("gemini returned status %d", resp.StatusCode)
		}
		return "", ErrGeminiUnavailable
	}

	var parsed geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", ErrGeminiUnavailable
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", ErrGeminiUnavailable
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

// FallbackSuggestions is returned when the upstream is unreachable so the
// check-in flow never depends on it.
func FallbackSuggestions() string {
	return strings.Join([]string{
		"- Take a few slow deep breaths and give yourself a short break.",
		"- Write down what you're feeling to clear your mind.",
		"- 🎵 Music: Try a calm lo-fi playlist.",
		"- 📖 Article: Read about simple mindfulness techniques.",
	}, "\n")
}
