// Package prediction talks to the external image-generation service that
// turns a photo plus a style prompt into a painting.
package prediction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"paintsnap/internal/config"
	"paintsnap/internal/ids"
)

const (
	statusSucceeded = "succeeded"
	statusFailed    = "failed"
	statusCanceled  = "canceled"
)

// SyntheticPrefix marks prediction ids minted locally by the fallback
// path instead of by the provider.
const SyntheticPrefix = "local-"

// Result is what a transformation job gets back. The client never fails
// hard: when the provider errors, returns a malformed output, or the
// request itself dies, the original photo comes back as the result with a
// synthetic id. Clients use Synthetic to pick their messaging.
type Result struct {
	PredictionID string
	OutputURL    string
	Synthetic    bool
}

type Client struct {
	httpClient *http.Client
	cfg        config.ProviderConfig
	log        zerolog.Logger
}

func NewClient(cfg config.ProviderConfig, log zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cfg:        cfg,
		log:        log,
	}
}

type createRequest struct {
	Version string         `json:"version"`
	Input   map[string]any `json:"input"`
}

type predictionResponse struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  *string         `json:"error"`
}

// Transform submits the photo and blocks until the provider reports a
// terminal state or the wait budget runs out. Every failure mode
// collapses to the fallback result.
func (c *Client) Transform(ctx context.Context, prompt string, imageURL string) Result {
	result, err := c.run(ctx, prompt, imageURL)
	if err != nil {
		c.log.Warn().Err(err).Str("image_url", imageURL).Msg("prediction fell back to original image")
		return fallback(imageURL)
	}
	return result
}

func (c *Client) run(ctx context.Context, prompt string, imageURL string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.WaitTimeout)
	defer cancel()

	created, err := c.create(ctx, prompt, imageURL)
	if err != nil {
		return Result{}, err
	}

	pred, err := c.wait(ctx, created)
	if err != nil {
		return Result{}, err
	}

	output, err := extractOutputURL(pred.Output)
	if err != nil {
		return Result{}, err
	}

	return Result{
		PredictionID: pred.ID,
		OutputURL:    output,
	}, nil
}

func (c *Client) create(ctx context.Context, prompt string, imageURL string) (predictionResponse, error) {
	body, err := json.Marshal(createRequest{
		Version: c.cfg.ModelVersion,
		Input: map[string]any{
			"prompt": prompt,
			"image":  imageURL,
		},
	})
	if err != nil {
		return predictionResponse{}, fmt.Errorf("marshal request: %w", err)
	}

	return c.do(ctx, http.MethodPost, c.cfg.BaseURL+"/predictions", bytes.NewReader(body))
}

func (c *Client) wait(ctx context.Context, pred predictionResponse) (predictionResponse, error) {
	for {
		switch pred.Status {
		case statusSucceeded:
			return pred, nil
		case statusFailed, statusCanceled:
			msg := "prediction " + pred.Status
			if pred.Error != nil {
				msg = *pred.Error
			}
			return predictionResponse{}, fmt.Errorf("provider: %s", msg)
		}

		select {
		case <-ctx.Done():
			return predictionResponse{}, ctx.Err()
		case <-time.After(c.cfg.PollInterval):
		}

		var err error
		pred, err = c.do(ctx, http.MethodGet, c.cfg.BaseURL+"/predictions/"+pred.ID, nil)
		if err != nil {
			return predictionResponse{}, err
		}
	}
}

func (c *Client) do(ctx context.Context, method string, url string, body *bytes.Reader) (predictionResponse, error) {
	var reqBody io.Reader
	if body != nil {
		reqBody = body
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return predictionResponse{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.cfg.Token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return predictionResponse{}, fmt.Errorf("provider request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return predictionResponse{}, fmt.Errorf("provider status %d", resp.StatusCode)
	}

	var pred predictionResponse
	if err := json.NewDecoder(resp.Body).Decode(&pred); err != nil {
		return predictionResponse{}, fmt.Errorf("decode response: %w", err)
	}
	return pred, nil
}

// extractOutputURL accepts the provider's two output shapes, a single URL
// string or a list of URLs, and requires an absolute https URL.
func extractOutputURL(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", fmt.Errorf("empty output")
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return validateOutputURL(single)
	}

	var many []string
	if err := json.Unmarshal(raw, &many); err == nil && len(many) > 0 {
		return validateOutputURL(many[0])
	}

	return "", fmt.Errorf("unexpected output shape")
}

func validateOutputURL(s string) (string, error) {
	if !strings.HasPrefix(s, "https://") {
		return "", fmt.Errorf("output is not an absolute url: %q", s)
	}
	return s, nil
}

func fallback(imageURL string) Result {
	return Result{
		PredictionID: SyntheticPrefix + ids.New(),
		OutputURL:    imageURL,
		Synthetic:    true,
	}
}
