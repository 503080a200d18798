// Package proxy delegates chat turns to an external AI service over HTTP.
package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"telebot/internal/domain"
	"telebot/internal/domain/models"
)

const (
	healthTimeout   = 3 * time.Second
	maxResponseSize = 10 << 20
)

// Provider calls POST {baseURL}/ai/chat after a GET {baseURL}/health probe
type Provider struct {
	baseURL string
	client  *http.Client
}

// NewProvider creates a proxy provider. A nil client uses http.DefaultClient.
func NewProvider(baseURL string, client *http.Client) (*Provider, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("proxy base URL is required")
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Provider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "proxy"
}

// Respond forwards the request unchanged and decodes the service's reply
func (p *Provider) Respond(ctx context.Context, req *models.AIChatRequest) (*models.AIChatResponse, error) {
	if err := p.checkHealth(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/ai/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: proxy: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: proxy: read response: %v", domain.ErrUpstreamUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		detail := gjson.GetBytes(data, "detail").String()
		if detail == "" {
			detail = http.StatusText(resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: proxy: status %d: %s", domain.ErrUpstreamUnavailable, resp.StatusCode, detail)
	}

	return decodeResponse(data)
}

func (p *Provider) checkHealth(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to build health request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: proxy health: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<10))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: proxy health: status %d", domain.ErrUpstreamUnavailable, resp.StatusCode)
	}
	return nil
}

func decodeResponse(data []byte) (*models.AIChatResponse, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: proxy: response is not valid JSON", domain.ErrUpstreamUnavailable)
	}

	message := gjson.GetBytes(data, "message")
	if message.Type != gjson.String {
		return nil, fmt.Errorf("%w: proxy: response has no message", domain.ErrUpstreamUnavailable)
	}

	files := make(map[string]string)
	gjson.GetBytes(data, "files").ForEach(func(key, value gjson.Result) bool {
		if value.Type == gjson.String {
			files[key.String()] = value.String()
		}
		return true
	})

	return &models.AIChatResponse{
		Message: message.String(),
		Files:   files,
	}, nil
}
