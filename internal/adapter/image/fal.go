package image

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	defaultFalBaseURL = "https://fal.run"
	defaultFalModel   = "fal-ai/recraft/v3/text-to-image"

	// maxImageBody bounds how much image data we read from the upstream.
	maxImageBody = 20 * 1024 * 1024 // 20 MB
)

// FalConfig configures the fal.ai client.
type FalConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

// FalClient implements Client against the fal.ai synchronous inference API.
type FalClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
	logger  *slog.Logger
}

// NewFalClient creates a fal.ai text-to-image client.
func NewFalClient(cfg FalConfig, logger *slog.Logger) *FalClient {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultFalBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultFalModel
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	return &FalClient{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type falRequest struct {
	Prompt    string `json:"prompt"`
	ImageSize string `json:"image_size"`
	NumImages int    `json:"num_images"`
	Style     string `json:"style"`
}

type falResponse struct {
	Images []struct {
		URL string `json:"url"`
	} `json:"images"`
}

// Generate implements Client. It submits the prompt, then fetches the
// returned image URL and hands back the raw bytes.
func (c *FalClient) Generate(ctx context.Context, prompt string) (*Image, error) {
	body, err := json.Marshal(falRequest{
		Prompt:    prompt,
		ImageSize: "square",
		NumImages: 1,
		Style:     "digital_illustration",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+c.model, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Key "+c.apiKey)

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxImageBody))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image API error %d: %s", httpResp.StatusCode, respBody)
	}

	var falResp falResponse
	if err := json.Unmarshal(respBody, &falResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(falResp.Images) == 0 || falResp.Images[0].URL == "" {
		return nil, fmt.Errorf("no image generated")
	}

	return c.fetch(ctx, falResp.Images[0].URL)
}

// fetch downloads the generated image.
func (c *FalClient) fetch(ctx context.Context, url string) (*Image, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create fetch request: %w", err)
	}

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch image: status %d", httpResp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxImageBody))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	mimeType := httpResp.Header.Get("Content-Type")
	if mimeType == "" || !strings.HasPrefix(mimeType, "image/") {
		mimeType = "image/png"
	}

	c.logger.Debug("image generated", "bytes", len(data), "mime", mimeType)
	return &Image{Data: data, MimeType: mimeType}, nil
}
