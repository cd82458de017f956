// Package detectlanguage is a small client for the detectlanguage.com API.
// Only the endpoints the proxy needs are implemented.
package detectlanguage

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/gonkalabs/detectlang-proxy-go/internal/detect"
)

// DefaultBaseURL is the public v0.2 endpoint.
const DefaultBaseURL = "https://ws.detectlanguage.com/0.2"

// maxRespBody caps how much of any upstream response we read. Real
// responses are a few hundred bytes.
const maxRespBody = 1 << 20

// maxErrBody caps how much of an unexpected upstream body we keep for errors.
const maxErrBody = 4 << 10

// Client calls detectlanguage.com with a single API key.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New creates a Client. baseURL may be empty to use DefaultBaseURL.
// A zero timeout disables the overall client timeout; the request context
// still applies.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

type detectRequest struct {
	Q string `json:"q"`
}

type detectResponse struct {
	Data struct {
		Detections []detect.Detection `json:"detections"`
	} `json:"data"`
}

type errorResponse struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Detect sends text to /detect and returns the provider's detections in the
// order they were received.
func (c *Client) Detect(ctx context.Context, text string) ([]detect.Detection, error) {
	payload, err := json.Marshal(detectRequest{Q: text})
	if err != nil {
		return nil, goerr.Wrap(err, "detectlanguage: marshal")
	}

	body, err := c.do(ctx, http.MethodPost, "/detect", payload)
	if err != nil {
		return nil, err
	}

	var result detectResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, goerr.Wrap(err, "detectlanguage: decode detections",
			goerr.V("body", truncate(body)))
	}
	if result.Data.Detections == nil {
		return []detect.Detection{}, nil
	}
	return result.Data.Detections, nil
}

// Status describes the account the API key belongs to.
type Status struct {
	Date             string `json:"date"`
	Requests         int    `json:"requests"`
	Bytes            int    `json:"bytes"`
	Plan             string `json:"plan"`
	PlanExpires      string `json:"plan_expires"`
	DailyRequestsMax int    `json:"daily_requests_limit"`
	DailyBytesMax    int    `json:"daily_bytes_limit"`
	Status           string `json:"status"`
}

// Status fetches /user/status. It is a cheap way to check that the key works.
func (c *Client) Status(ctx context.Context) (*Status, error) {
	body, err := c.do(ctx, http.MethodGet, "/user/status", nil)
	if err != nil {
		return nil, err
	}
	var st Status
	if err := json.Unmarshal(body, &st); err != nil {
		return nil, goerr.Wrap(err, "detectlanguage: decode status",
			goerr.V("body", truncate(body)))
	}
	return &st, nil
}

// do executes an authenticated request and returns the body of a successful
// response. Upstream-reported failures come back as *detect.APIError.
func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	url := c.baseURL + path

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, goerr.Wrap(err, "detectlanguage: request", goerr.V("url", url))
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	slog.Debug("upstream request", "method", method, "url", url, "bodyLen", len(payload))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "detectlanguage: send", goerr.V("url", url))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxRespBody))
	if err != nil {
		return nil, goerr.Wrap(err, "detectlanguage: read body",
			goerr.V("url", url), goerr.V("status", resp.StatusCode))
	}

	// The API sometimes reports errors with a 200 status, so always look
	// for an error object before treating the body as a result.
	var apiErr errorResponse
	if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != nil {
		return nil, &detect.APIError{
			Status:  resp.StatusCode,
			Code:    apiErr.Error.Code,
			Message: apiErr.Error.Message,
		}
	}
	if resp.StatusCode >= 400 {
		return nil, &detect.APIError{
			Status:  resp.StatusCode,
			Message: strings.TrimSpace(string(truncate(respBody))),
		}
	}
	return respBody, nil
}

func truncate(b []byte) []byte {
	if len(b) > maxErrBody {
		return b[:maxErrBody]
	}
	return b
}
