package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// Recommendation is one suggested activity for the trip.
type Recommendation struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// RecommendationQuery is what the AI needs to suggest activities.
type RecommendationQuery struct {
	Destination string
	Preferences PreferenceSet
	Duration    int
}

type AIClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

func NewAIClient(apiKey, model, baseURL string) *AIClient {
	return &AIClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	ReturnFullText bool    `json:"return_full_text"`
}

type hfResponse []struct {
	GeneratedText string `json:"generated_text"`
}

// Recommend asks the model for activities matching the preferences and
// parses its numbered list.
func (c *AIClient) Recommend(ctx context.Context, rq RecommendationQuery) ([]Recommendation, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	jsonBody, err := json.Marshal(hfRequest{
		Inputs: buildPrompt(rq),
		Parameters: hfParameters{
			MaxNewTokens:   400,
			Temperature:    0.6,
			ReturnFullText: false,
		},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/models/%s", c.baseURL, c.model), bytes.NewReader(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode == http.StatusServiceUnavailable {
		return nil, fmt.Errorf("AI model is loading")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HuggingFace API error (%d): %s", resp.StatusCode, string(body))
	}

	var hf hfResponse
	if err := json.Unmarshal(body, &hf); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}
	if len(hf) == 0 || strings.TrimSpace(hf[0].GeneratedText) == "" {
		return nil, fmt.Errorf("empty response from AI")
	}

	recs := parseRecommendations(hf[0].GeneratedText)
	if len(recs) == 0 {
		return nil, fmt.Errorf("no recommendations in AI response")
	}
	return recs, nil
}

func buildPrompt(rq RecommendationQuery) string {
	prefs := "no particular preference"
	if len(rq.Preferences) > 0 {
		prefs = strings.Join(rq.Preferences, ", ")
	}
	days := rq.Duration
	if days < 1 {
		days = 1
	}

	return fmt.Sprintf(`[INST] You are a helpful travel assistant.
Suggest up to 6 activities for a %d-day trip to %s for a traveler interested in: %s.
Answer with a numbered list only, one activity per line, formatted as
"1. Title: one-sentence description". [/INST]`, days, rq.Destination, prefs)
}

var numberedLine = regexp.MustCompile(`^\s*\d+[.)]\s*(.+)$`)

// parseRecommendations reads "N. Title: description" lines. A line without a
// separator becomes a title-only recommendation.
func parseRecommendations(text string) []Recommendation {
	var recs []Recommendation
	for _, line := range strings.Split(text, "\n") {
		m := numberedLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		item := strings.TrimSpace(strings.ReplaceAll(m[1], "**", ""))
		title, desc, found := strings.Cut(item, ":")
		if !found {
			title, desc, _ = strings.Cut(item, " - ")
		}
		title = strings.TrimSpace(title)
		if title == "" {
			continue
		}
		recs = append(recs, Recommendation{Title: title, Description: strings.TrimSpace(desc)})
	}
	return recs
}
