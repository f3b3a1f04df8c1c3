// Package simfeedback scores clinical-simulation practice attempts with the
// Gemini API and persists the structured result.
package simfeedback

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"sim-bleepy/logger"
	simModel "sim-bleepy/models/sim"

	"google.golang.org/genai"
)

// Service handles sim-attempt scoring.
type Service struct {
	model string
}

func NewService() *Service {
	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &Service{model: model}
}

// ScoreResult is the structured feedback the scorer returns.
type ScoreResult struct {
	Score        int      `json:"score"` // 0-100
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
	Summary      string   `json:"summary"`
}

// Score sends the scenario brief and the student's answer to Gemini and
// parses the JSON verdict.
func (s *Service) Score(scenario *simModel.SimScenario, answer string) (*ScoreResult, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	prompt := fmt.Sprintf(`You are an experienced clinical educator marking a medical student's
response to a simulation scenario. Return ONLY valid JSON.

Scenario:
%s

Student response:
%s

Required JSON format:
{
"score": number,             // 0-100, overall clinical quality
"strengths": [string],       // what the student did well
"improvements": [string],    // concrete things to do differently
"summary": string            // two-sentence overall verdict
}`, scenario.Brief, answer)

	content := &genai.Content{
		Parts: []*genai.Part{
			{Text: prompt},
		},
	}

	result, err := client.Models.GenerateContent(ctx, s.model, []*genai.Content{content}, nil)
	if err != nil {
		return nil, fmt.Errorf("Gemini request failed: %w", err)
	}

	text := result.Text()
	parsed, err := parseScoreJSON(text)
	if err != nil {
		return nil, fmt.Errorf("could not parse scorer output: %w", err)
	}
	return parsed, nil
}

// ScoreAsync runs scoring on its own goroutine and updates the attempt row
// when done. The attempt was created in processing state by the controller.
func (s *Service) ScoreAsync(attemptID uint, scenario *simModel.SimScenario, answer string, save func(attemptID uint, res *ScoreResult, scoreErr error)) {
	go func() {
		res, err := s.Score(scenario, answer)
		if err != nil {
			logger.Error(fmt.Sprintf("Scoring sim attempt %d failed", attemptID), err)
		}
		save(attemptID, res, err)
	}()
}

// parseScoreJSON tolerates the model wrapping its JSON in a code fence.
func parseScoreJSON(text string) (*ScoreResult, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var res ScoreResult
	if err := json.Unmarshal([]byte(text), &res); err != nil {
		return nil, err
	}
	if res.Score < 0 {
		res.Score = 0
	}
	if res.Score > 100 {
		res.Score = 100
	}
	return &res, nil
}
