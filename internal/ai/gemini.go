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

// geminiClient talks to the Gemini generateContent API.
type geminiClient struct {
	opts       Options
	httpClient *http.Client
}

func newGeminiClient(opts Options) *geminiClient {
	return &geminiClient{
		opts:       opts,
		httpClient: &http.Client{Timeout: opts.Timeout},
	}
}

func (c *geminiClient) Provider() string {
	return internal.ProviderGemini
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent `json:"system_instruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  struct {
		Temperature      float64 `json:"temperature"`
		ResponseMimeType string  `json:"responseMimeType"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *geminiClient) Classify(ctx context.Context, chats []internal.Chat, folders []internal.Folder) (internal.Draft, error) {
	systemPrompt, userPrompt := internal.BuildPrompts(chats, folders)

	payload := geminiRequest{
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: systemPrompt}}},
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: userPrompt}}},
		},
	}
	payload.GenerationConfig.Temperature = 0.1
	payload.GenerationConfig.ResponseMimeType = "application/json"

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

	var decoded geminiResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return internal.Draft{}, &ClassificationError{Provider: c.Provider(), Err: err}
	}
	if decoded.Error != nil {
		return internal.Draft{}, &ClassificationError{
			Provider: c.Provider(),
			Err:      fmt.Errorf("api error: %s", decoded.Error.Message),
		}
	}
	if decoded.PromptFeedback != nil && decoded.PromptFeedback.BlockReason != "" {
		return internal.Draft{}, &ClassificationError{
			Provider: c.Provider(),
			Err:      fmt.Errorf("prompt blocked: %s", decoded.PromptFeedback.BlockReason),
		}
	}
	if len(decoded.Candidates) == 0 {
		return internal.Draft{}, &ClassificationError{
			Provider: c.Provider(),
			Err:      fmt.Errorf("response contains no candidates"),
		}
	}

	var texts []string
	for _, part := range decoded.Candidates[0].Content.Parts {
		if part.Text != "" {
			texts = append(texts, part.Text)
		}
	}
	if len(texts) == 0 {
		return internal.Draft{}, &ClassificationError{
			Provider: c.Provider(),
			Err:      fmt.Errorf("candidate contains no text parts"),
		}
	}

	d, err := internal.ParseAIResponse(strings.Join(texts, "\n"))
	if err != nil {
		return internal.Draft{}, &ClassificationError{Provider: c.Provider(), Err: err}
	}
	return d, nil
}

// endpoint derives the generateContent URL. A bare host gets the standard
// /v1beta prefix; the model segment is path-escaped, and the key travels as
// a query parameter per the Gemini API convention.
func (c *geminiClient) endpoint() (string, error) {
	parsed, err := url.Parse(c.opts.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", c.opts.BaseURL, err)
	}
	path := strings.TrimRight(parsed.Path, "/")
	if path == "" {
		path = "/v1beta"
	}
	if !strings.HasSuffix(path, "/models") {
		path += "/models"
	}
	parsed.Path = path + "/" + url.PathEscape(c.opts.Model) + ":generateContent"

	query := parsed.Query()
	query.Set("key", c.opts.APIKey)
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}
