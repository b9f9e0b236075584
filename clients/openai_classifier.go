package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"civicreport-be/metrics"

	"github.com/sirupsen/logrus"
)

const (
	openAIChatURL      = "https://api.openai.com/v1/chat/completions"
	DefaultOpenAIModel = "gpt-3.5-turbo"
	categoryPrompt     = "Generate a short category (less than 5 words) for the following problem description:"
	maxCategoryWords   = 5
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// OpenAIClassifier labels report descriptions through the chat completions API.
type OpenAIClassifier struct {
	client  *http.Client
	key     string
	model   string
	baseURL string
	log     *logrus.Entry
}

func NewOpenAIClassifier(client *http.Client, key, model string, log *logrus.Entry) *OpenAIClassifier {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIClassifier{client: client, key: key, model: model, baseURL: openAIChatURL, log: log}
}

func (c *OpenAIClassifier) Classify(ctx context.Context, text string) (string, error) {
	if c.key == "" {
		return "", errMissingKey
	}
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: categoryPrompt},
			{Role: "user", Content: text},
		},
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.key)

	t0 := time.Now()
	outcome := "error"
	defer func() {
		metrics.ExternalDurationMs.WithLabelValues("classifier", outcome).Observe(float64(time.Since(t0).Milliseconds()))
	}()

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("classify request: %w", err)
	}
	defer resp.Body.Close()

	var r chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return "", fmt.Errorf("decode classify response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		if r.Error != nil {
			return "", fmt.Errorf("classify failed: %d %s", resp.StatusCode, r.Error.Message)
		}
		return "", fmt.Errorf("classify failed: unexpected status %d", resp.StatusCode)
	}
	if len(r.Choices) == 0 {
		outcome = "empty"
		return "", nil
	}

	label := normalizeCategory(r.Choices[0].Message.Content)
	if label == "" {
		outcome = "empty"
		return "", nil
	}
	outcome = "ok"
	c.log.WithFields(logrus.Fields{"category": label, "ms": time.Since(t0).Milliseconds()}).Debug("classified description")
	return label, nil
}

// normalizeCategory strips the quoting and trailing punctuation models like to add and caps
// the label at maxCategoryWords words.
func normalizeCategory(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "\"'`")
	s = strings.TrimRight(s, ".!")
	words := strings.Fields(s)
	if len(words) > maxCategoryWords {
		words = words[:maxCategoryWords]
	}
	return strings.Join(words, " ")
}
