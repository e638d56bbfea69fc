package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

/* ─── Request / Response types ───────────────────────────────────────── */

// suggestRequest is the request body for POST /api/entries/suggest.
type suggestRequest struct {
	Description string `json:"description"`
}

// suggestionResponse is the entry pre-fill returned by the AI. Confidence is
// 1-5 indicating how accurate the estimate is.
type suggestionResponse struct {
	FoodName   string  `json:"foodName"`
	Calories   float64 `json:"calories"`
	Confidence int     `json:"confidence"`
}

const foodSystemPrompt = `You are a nutrition assistant. Parse the food description and return a JSON object with:
- "foodName" (string, cleaned up title case)
- "calories" (integer, total for the full quantity described)
- "confidence" (integer 1-5: 5=exact known nutritional data, 4=very close estimate, 3=reasonable estimate, 2=rough guess, 1=very uncertain)

Always provide your best estimate, even for unfamiliar or vague items. Only return {"error": "unrecognized"} if the input is not food at all (e.g. random characters, non-food objects).
Return only valid JSON, no explanation.`

/* ─── OpenAI HTTP client ─────────────────────────────────────────────── */

// openAIMessage is a single message in the OpenAI chat completions request.
type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// openAIRequest is the request body for the OpenAI chat completions API.
type openAIRequest struct {
	Model          string          `json:"model"`
	Messages       []openAIMessage `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat map[string]any  `json:"response_format"`
}

// callOpenAI sends a chat completions request and returns the raw content string
// from the first choice.
func callOpenAI(ctx context.Context, messages []openAIMessage, baseURL string) (string, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("OPENAI_API_KEY not set")
	}

	bodyBytes, err := json.Marshal(openAIRequest{
		Model:          "gpt-4o-mini",
		Messages:       messages,
		Temperature:    0,
		ResponseFormat: map[string]any{"type": "json_object"},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/v1/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openai returned status %d: %s", resp.StatusCode, string(respBytes))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBytes, &result); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return result.Choices[0].Message.Content, nil
}

/* ─── Handler ────────────────────────────────────────────────────────── */

// suggestEntry handles POST /api/entries/suggest. It turns a free-text food
// description into a foodName/calories pair the client can pre-fill a new
// entry with. Nothing is stored.
func (h *Handler) suggestEntry(c *gin.Context) {
	var req suggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		apiError(c, http.StatusBadRequest, "description is required")
		return
	}

	content, err := callOpenAI(c.Request.Context(), []openAIMessage{
		{Role: "system", Content: foodSystemPrompt},
		{Role: "user", Content: req.Description},
	}, h.openAIBaseURL)
	if err != nil {
		log.WithError(err).Error("[suggest] OpenAI error")
		apiError(c, http.StatusInternalServerError, "openai request failed")
		return
	}

	var errorResp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(content), &errorResp); err != nil {
		log.WithError(err).Error("[suggest] Failed to parse OpenAI response")
		apiError(c, http.StatusInternalServerError, "openai request failed")
		return
	}
	if errorResp.Error == "unrecognized" {
		c.JSON(http.StatusOK, gin.H{"error": "unrecognized"})
		return
	}

	var suggestion suggestionResponse
	if err := json.Unmarshal([]byte(content), &suggestion); err != nil {
		log.WithError(err).Error("[suggest] Failed to parse suggestion JSON")
		apiError(c, http.StatusInternalServerError, "openai request failed")
		return
	}
	// A usable suggestion needs at least a name and a positive calorie count.
	if suggestion.FoodName == "" || suggestion.Calories <= 0 {
		c.JSON(http.StatusOK, gin.H{"error": "unrecognized"})
		return
	}

	c.JSON(http.StatusOK, suggestion)
}
