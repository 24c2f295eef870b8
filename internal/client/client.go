// Package client talks to the prediction API the same way the browser UI does.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bryanwahyu/neuro-fusion/internal/domain/analysis"
	"github.com/bryanwahyu/neuro-fusion/internal/domain/condition"
	"github.com/bryanwahyu/neuro-fusion/internal/domain/fusionmodel"
	"github.com/bryanwahyu/neuro-fusion/internal/domain/prediction"
)

// DefaultBaseURL matches the server's default port.
const DefaultBaseURL = "http://localhost:3001"

// ErrNotSuccessful is returned when the server answers 2xx with success=false.
var ErrNotSuccessful = errors.New("prediction was not successful")

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string // the server's "error" field
	Detail     string // the server's "message" field, if any
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (%d): %s", e.Message, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.StatusCode)
}

// Health is the /api/health payload.
type Health struct {
	Status      string    `json:"status"`
	ModelLoaded bool      `json:"modelLoaded"`
	Timestamp   time.Time `json:"timestamp"`
}

// LoadModelResult is the /api/load-model payload.
type LoadModelResult struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message"`
	ModelInfo *fusionmodel.Info `json:"modelInfo,omitempty"`
}

// PredictResult is the /api/predict payload.
type PredictResult struct {
	Success     bool                    `json:"success"`
	Predictions []prediction.Prediction `json:"predictions"`
	Metadata    prediction.Metadata     `json:"metadata"`
}

// File is one upload for SubmitAnalysis.
type File struct {
	Name   string
	Reader io.Reader
}

// Submission is the input to SubmitAnalysis. Missing pieces are simply not sent.
type Submission struct {
	MRI           *File
	EEG           *File
	ClinicalNotes string
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithAPIKey sends X-API-Key on every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CheckHealth calls GET /api/health.
func (c *Client) CheckHealth(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.do(ctx, http.MethodGet, "/api/health", nil, "", &h); err != nil {
		return nil, fmt.Errorf("health check failed: %w", err)
	}
	return &h, nil
}

// SubmitAnalysis uploads the three modalities and returns the ranked predictions.
func (c *Client) SubmitAnalysis(ctx context.Context, s Submission) (*PredictResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for field, f := range map[string]*File{"mri": s.MRI, "eeg": s.EEG} {
		if f == nil {
			continue
		}
		fw, err := mw.CreateFormFile(field, f.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s part: %w", field, err)
		}
		if _, err := io.Copy(fw, f.Reader); err != nil {
			return nil, fmt.Errorf("failed to read %s file: %w", field, err)
		}
	}
	if err := mw.WriteField("clinicalNotes", s.ClinicalNotes); err != nil {
		return nil, fmt.Errorf("failed to write clinical notes: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish form: %w", err)
	}

	var res PredictResult
	if err := c.do(ctx, http.MethodPost, "/api/predict", &buf, mw.FormDataContentType(), &res); err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, ErrNotSuccessful
	}
	return &res, nil
}

// LoadModel asks the server to load modelPath, or its default model when empty.
// A server falling back to mock predictions is not an error: check Success.
func (c *Client) LoadModel(ctx context.Context, modelPath string) (*LoadModelResult, error) {
	payload := map[string]string{}
	if modelPath != "" {
		payload["modelPath"] = modelPath
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	var res LoadModelResult
	if err := c.do(ctx, http.MethodPost, "/api/load-model", bytes.NewReader(body), "application/json", &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Conditions returns the reference catalog.
func (c *Client) Conditions(ctx context.Context) ([]condition.Info, error) {
	var res struct {
		Conditions []condition.Info `json:"conditions"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/conditions", nil, "", &res); err != nil {
		return nil, err
	}
	return res.Conditions, nil
}

// History returns the most recent prediction runs.
func (c *Client) History(ctx context.Context, limit int) ([]analysis.Run, error) {
	path := "/api/predictions"
	if limit > 0 {
		path += "?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	}
	var res struct {
		Runs []analysis.Run `json:"runs"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, "", &res); err != nil {
		return nil, err
	}
	return res.Runs, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var envelope struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error != "" {
		apiErr.Message = envelope.Error
		apiErr.Detail = envelope.Message
		return apiErr
	}

	apiErr.Message = http.StatusText(resp.StatusCode)
	apiErr.Detail = strings.TrimSpace(string(raw))
	return apiErr
}
