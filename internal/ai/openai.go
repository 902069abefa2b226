package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/melosbot/telegram-chat-organizer/internal"
)

// openAIClient talks to the OpenAI chat completions API, or any
// OpenAI-compatible endpoint reachable through the configured base URL.
type openAIClient struct {
	opts       Options
	httpClient *http.Client
}

func newOpenAIClient(opts Options) *openAIClient {
	return &openAIClient{
		opts:       opts,
		httpClient: &http.Client{Timeout: opts.Timeout},
	}
}

func (c *openAIClient) Provider() string {
	return internal.ProviderOpenAI
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content json.RawMessage `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *openAIClient) Classify(ctx context.Context, chats []internal.Chat, folders []internal.Folder) (internal.Draft, error) {
	systemPrompt, userPrompt := internal.BuildPrompts(chats, folders)

	payload := openAIRequest{
		Model: c.opts.Model,
		Messages: []openAIMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.1,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return internal.Draft{}, &ClassificationError{Provider: c.Provider(), Err: err}
	}

	endpoint, err := c.endpoint()
	if err != nil {
		return internal.Draft{}, &ClassificationError{Provider: c.Provider(), Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return internal.Draft{}, &ClassificationError{Provider: c.Provider(), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return internal.Draft{}, &ClassificationError{Provider: c.Provider(), Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return internal.Draft{}, &ClassificationError{Provider: c.Provider(), Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return internal.Draft{}, &ClassificationError{
			Provider: c.Provider(),
			Status:   resp.StatusCode,
			Err:      fmt.Errorf("%s", internal.Truncate(string(respBody), 300)),
		}
	}

	var decoded openAIResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return internal.Draft{}, &ClassificationError{Provider: c.Provider(), Err: err}
	}
	if decoded.Error != nil {
		return internal.Draft{}, &ClassificationError{
			Provider: c.Provider(),
			Err:      fmt.Errorf("api error: %s", decoded.Error.Message),
		}
	}
	if len(decoded.Choices) == 0 {
		return internal.Draft{}, &ClassificationError{
			Provider: c.Provider(),
			Err:      fmt.Errorf("response contains no choices"),
		}
	}

	text, err := decodeContent(decoded.Choices[0].Message.Content)
	if err != nil {
		return internal.Draft{}, &ClassificationError{Provider: c.Provider(), Err: err}
	}

	d, err := internal.ParseAIResponse(text)
	if err != nil {
		return internal.Draft{}, &ClassificationError{Provider: c.Provider(), Err: err}
	}
	return d, nil
}

// endpoint derives the chat completions URL from the configured base. A bare
// host gets the standard /v1 prefix; a base that already ends with the chat
// completions path is used as-is, so gateway-style base URLs work unchanged.
func (c *openAIClient) endpoint() (string, error) {
	parsed, err := url.Parse(c.opts.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", c.opts.BaseURL, err)
	}
	path := strings.TrimRight(parsed.Path, "/")
	if path == "" {
		path = "/v1"
	}
	if !strings.HasSuffix(path, "/chat/completions") {
		path += "/chat/completions"
	}
	parsed.Path = path
	return parsed.String(), nil
}

// decodeContent handles both content encodings the chat API uses: a plain
// string, or an array of typed parts whose text fields are concatenated.
func decodeContent(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", fmt.Errorf("response message has no content")
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text, nil
	}

	var parts []struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &parts); err != nil {
		return "", fmt.Errorf("unrecognized content encoding")
	}
	var builder strings.Builder
	for _, part := range parts {
		builder.WriteString(part.Text)
	}
	return builder.String(), nil
}
