package config

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

var GeminiClient *genai.GenerativeModel

// InitGoogleServices creates the Gemini client used by the timetable
// auto-scheduler. The feature is optional; without an API key the draft
// generation endpoint returns an error while the rest of the API works.
func InitGoogleServices(apiKey string) error {
	if apiKey == "" {
		slog.Warn("GEMINI_API_KEY is not set, timetable draft generation is disabled")
		return nil
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return fmt.Errorf("unable to create Gemini client: %v", err)
	}
	GeminiClient = client.GenerativeModel("gemini-1.5-flash")
	slog.Info("Gemini API client initialized")

	return nil
}
