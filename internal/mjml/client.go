// Package mjml compiles MJML markup to responsive HTML via the hosted
// MJML render API.
package mjml

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ignite/outreach-platform/internal/config"
	"github.com/ignite/outreach-platform/internal/pkg/httpretry"
)

// Compiler renders MJML source into HTML. Implementations must be safe for
// concurrent use.
type Compiler interface {
	// Compile renders the given MJML document. Markup problems come back in
	// errs with a nil error; err is reserved for transport failures.
	Compile(ctx context.Context, source string) (html string, errs []string, err error)
}

// Client calls the hosted MJML render endpoint with basic-auth app
// credentials and retries on transient failures.
type Client struct {
	baseURL    string
	appID      string
	secretKey  string
	httpClient httpretry.HTTPDoer
}

// NewClient creates an MJML API client from config. A nil doer gets a
// retrying client with the configured timeout.
func NewClient(cfg config.MJMLConfig, doer httpretry.HTTPDoer) *Client {
	if doer == nil {
		doer = httpretry.NewRetryClient(&http.Client{Timeout: cfg.Timeout()}, 3)
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		appID:      cfg.AppID,
		secretKey:  cfg.SecretKey,
		httpClient: doer,
	}
}

type renderRequest struct {
	MJML string `json:"mjml"`
}

type renderResponse struct {
	HTML    string      `json:"html"`
	Errors  []mjmlError `json:"errors"`
	Message string      `json:"message"`
}

type mjmlError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
	TagName string `json:"tagName"`
}

// Compile renders MJML source to HTML.
func (c *Client) Compile(ctx context.Context, source string) (string, []string, error) {
	payload, err := json.Marshal(renderRequest{MJML: source})
	if err != nil {
		return "", nil, fmt.Errorf("mjml: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/render", bytes.NewReader(payload))
	if err != nil {
		return "", nil, fmt.Errorf("mjml: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.appID, c.secretKey)
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(payload)), nil
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("mjml: render request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return "", nil, fmt.Errorf("mjml: read response: %w", err)
	}

	var rr renderResponse
	if err := json.Unmarshal(body, &rr); err != nil {
		return "", nil, fmt.Errorf("mjml: parse response (HTTP %d): %w", resp.StatusCode, err)
	}

	// 400 with a parse-error payload means bad markup, not a broken service.
	if resp.StatusCode == http.StatusBadRequest || len(rr.Errors) > 0 {
		msgs := make([]string, 0, len(rr.Errors)+1)
		for _, e := range rr.Errors {
			if e.TagName != "" {
				msgs = append(msgs, fmt.Sprintf("line %d: %s (%s)", e.Line, e.Message, e.TagName))
			} else {
				msgs = append(msgs, fmt.Sprintf("line %d: %s", e.Line, e.Message))
			}
		}
		if len(msgs) == 0 && rr.Message != "" {
			msgs = append(msgs, rr.Message)
		}
		if len(msgs) > 0 {
			return "", msgs, nil
		}
	}

	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("mjml: render API returned HTTP %d: %s", resp.StatusCode, rr.Message)
	}

	return rr.HTML, nil, nil
}
