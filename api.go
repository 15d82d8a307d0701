package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// APIClient wraps the marketplace REST backend. All methods are plain
// request/response except StreamAnswer, which hands the caller the raw
// response body for incremental decoding.
type APIClient struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger

	// token is the bearer token attached to every request once the user
	// has signed in. Empty means anonymous.
	token string
}

// NewAPIClient creates a client for the given base URL. The timeout covers
// plain requests only; streaming requests manage their own deadline via
// context so a long answer is not cut off mid-stream.
func NewAPIClient(baseURL string, timeout time.Duration, logger *slog.Logger) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// SetToken sets the bearer token used for subsequent requests
func (c *APIClient) SetToken(token string) {
	c.token = token
}

// Host returns the backend host, used to scope the prompt history
func (c *APIClient) Host() string {
	if u, err := url.Parse(c.baseURL); err == nil && u.Host != "" {
		return u.Host
	}
	return c.baseURL
}

// apiError is the backend's error envelope
type apiError struct {
	Message string `json:"message"`
}

func (c *APIClient) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("X-Request-Id", uuid.NewString())
	return req, nil
}

// do issues the request and decodes a JSON response into out (out may be
// nil). Non-2xx statuses are mapped to an error carrying the backend's
// message field when one is present.
func (c *APIClient) do(req *http.Request, out any) error {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("api request",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}

	// Some endpoints reply with an empty body on success; treat that as
	// a zero value rather than a decode failure.
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", req.URL.Path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var e apiError
	if err := json.Unmarshal(data, &e); err == nil && e.Message != "" {
		return fmt.Errorf("%s (HTTP %d)", e.Message, resp.StatusCode)
	}
	return fmt.Errorf("HTTP error! status: %d", resp.StatusCode)
}

// ---- auth ----

// User is the signed-in account. userType distinguishes individual users
// from company accounts.
type User struct {
	ID       int    `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	UserType string `json:"userType"`
	Token    string `json:"token,omitempty"`
}

// Login authenticates and returns the account record
func (c *APIClient) Login(ctx context.Context, email, password string) (*User, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	var user User
	if err := c.do(req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Register creates a user account
func (c *APIClient) Register(ctx context.Context, email, password, name string) (*User, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/register", map[string]string{
		"email":    email,
		"password": password,
		"name":     name,
	})
	if err != nil {
		return nil, err
	}
	var user User
	if err := c.do(req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// RegisterCompany creates a company account. logo is a base64-encoded
// image or empty.
func (c *APIClient) RegisterCompany(ctx context.Context, category, name, logo string) error {
	body := map[string]any{
		"category": category,
		"name":     name,
	}
	if logo != "" {
		body["logo"] = logo
	} else {
		body["logo"] = nil
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/register/company", body)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// ---- assignments & proposals ----

// Assignments lists all postings
func (c *APIClient) Assignments(ctx context.Context) ([]Assignment, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/assignments", nil)
	if err != nil {
		return nil, err
	}
	var assignments []Assignment
	if err := c.do(req, &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

// CreateAssignment posts a new assignment (company accounts)
func (c *APIClient) CreateAssignment(ctx context.Context, a Assignment) (*Assignment, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/assignments", a)
	if err != nil {
		return nil, err
	}
	var created Assignment
	if err := c.do(req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Proposals lists the proposals submitted for an assignment
func (c *APIClient) Proposals(ctx context.Context, assignmentID int) ([]Proposal, error) {
	req, err := c.newRequest(ctx, http.MethodGet, fmt.Sprintf("/assignments/%d/proposals", assignmentID), nil)
	if err != nil {
		return nil, err
	}
	var proposals []Proposal
	if err := c.do(req, &proposals); err != nil {
		return nil, err
	}
	return proposals, nil
}

// SubmitProposal submits a proposal for an assignment
func (c *APIClient) SubmitProposal(ctx context.Context, p Proposal) (*Proposal, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/proposals", p)
	if err != nil {
		return nil, err
	}
	var created Proposal
	if err := c.do(req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// AcceptProposal marks a proposal accepted (company accounts)
func (c *APIClient) AcceptProposal(ctx context.Context, proposalID int) error {
	req, err := c.newRequest(ctx, http.MethodPost, fmt.Sprintf("/proposals/%d/accept", proposalID), nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// ---- answer ----

// StreamRequest is the body of POST /answer/stream. PreContent carries the
// serialized transcript so far and AssignmentContent the assignment
// snapshot; both are null when absent.
type StreamRequest struct {
	Question          string  `json:"question"`
	PreContent        *string `json:"preContent"`
	AssignmentContent *string `json:"assignmentContent"`
}

// StreamAnswer opens the streaming answer endpoint and returns the raw
// response body. The caller owns the body and must close it; cancellation
// and timeout ride on ctx, not the client timeout.
func (c *APIClient) StreamAnswer(ctx context.Context, reqBody StreamRequest) (io.ReadCloser, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/answer/stream", reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	// Bypass the client-wide timeout: a streaming answer legitimately
	// outlives a CRUD request.
	streamClient := &http.Client{Transport: c.http.Transport}
	resp, err := streamClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stream request failed: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		defer resp.Body.Close()
		return nil, decodeAPIError(resp)
	}
	return resp.Body, nil
}

// SummaryChat asks the backend to summarize a finished conversation into a
// proposal draft. Returns plain text.
func (c *APIClient) SummaryChat(ctx context.Context, assignmentID int, totalContent string) (string, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/answer/summaryChat", map[string]any{
		"assignmentId": assignmentID,
		"totalContent": totalContent,
	})
	if err != nil {
		return "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("summary request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return "", decodeAPIError(resp)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read summary: %w", err)
	}
	return string(data), nil
}

// Health pings the backend
func (c *APIClient) Health(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/test", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("backend returned status %d", resp.StatusCode)
	}
	return nil
}
