package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/atinyakov/HydroPal/internal/models"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.Status, e.Message)
}

// APIClient calls the HydroPal REST API.
type APIClient struct {
	BaseURL string
	HTTP    *http.Client
	// Token is sent as a bearer token when set.
	Token string
}

// NewAPIClient returns a client for baseURL using httpClient.
func NewAPIClient(baseURL string, httpClient *http.Client) *APIClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &APIClient{BaseURL: strings.TrimRight(baseURL, "/"), HTTP: httpClient}
}

// do sends body as JSON and decodes the response into out.
func (c *APIClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(status int, data []byte) error {
	var er errorResponse
	if err := json.Unmarshal(data, &er); err != nil || er.Message == "" {
		msg := strings.TrimSpace(string(data))
		if msg == "" {
			msg = http.StatusText(status)
		}
		return &APIError{Status: status, Message: msg}
	}
	return &APIError{Status: status, Message: er.Message}
}

// Register creates an account and returns the new session.
func (c *APIClient) Register(ctx context.Context, name, email, password string) (*Session, error) {
	var res authResponse
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", body, &res); err != nil {
		return nil, err
	}
	return &Session{BaseURL: c.BaseURL, Token: res.Token, User: res.User}, nil
}

// Login authenticates and returns the new session.
func (c *APIClient) Login(ctx context.Context, email, password string) (*Session, error) {
	var res authResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &res); err != nil {
		return nil, err
	}
	return &Session{BaseURL: c.BaseURL, Token: res.Token, User: res.User}, nil
}

// Profile fetches the logged-in user's profile.
func (c *APIClient) Profile(ctx context.Context) (*models.PublicUser, error) {
	var res struct {
		User models.PublicUser `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/profile", nil, &res); err != nil {
		return nil, err
	}
	return &res.User, nil
}

// LogWater records amountMl millilitres.
func (c *APIClient) LogWater(ctx context.Context, amountMl float64) (*models.Entry, error) {
	var res struct {
		Data models.Entry `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/water", map[string]float64{"amount": amountMl}, &res); err != nil {
		return nil, err
	}
	return &res.Data, nil
}

// TodayTotal returns today's logged millilitres.
func (c *APIClient) TodayTotal(ctx context.Context) (float64, error) {
	var res struct {
		Total float64 `json:"total"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/water/today", nil, &res); err != nil {
		return 0, err
	}
	return res.Total, nil
}

// ClearToday deletes today's water logs and returns how many went.
func (c *APIClient) ClearToday(ctx context.Context) (int64, error) {
	var res struct {
		DeletedCount int64 `json:"deletedCount"`
	}
	if err := c.do(ctx, http.MethodDelete, "/api/auth/water/today", nil, &res); err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Ranking returns today's top drinkers. A zero limit uses the server default.
func (c *APIClient) Ranking(ctx context.Context, limit int) ([]models.RankEntry, error) {
	path := "/api/auth/water/ranking"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var res struct {
		Data []models.RankEntry `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &res); err != nil {
		return nil, err
	}
	return res.Data, nil
}

// Monthly returns twelve monthly totals. A zero year means the current one.
func (c *APIClient) Monthly(ctx context.Context, year int) ([]float64, error) {
	path := "/api/auth/water/monthly"
	if year != 0 {
		path += "?year=" + strconv.Itoa(year)
	}
	var res struct {
		Data []float64 `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &res); err != nil {
		return nil, err
	}
	return res.Data, nil
}

// ListEntries lists the user's entries, optionally of one type.
func (c *APIClient) ListEntries(ctx context.Context, logType models.LogType) ([]models.Entry, error) {
	path := "/api/data"
	if logType != "" {
		path += "?type=" + url.QueryEscape(string(logType))
	}
	var res struct {
		Data []models.Entry `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &res); err != nil {
		return nil, err
	}
	return res.Data, nil
}

// CreateEntry stores a new tracking entry.
func (c *APIClient) CreateEntry(ctx context.Context, logType models.LogType, data models.Data) (*models.CreatedEntry, error) {
	body := map[string]any{"logType": logType, "data": data}
	var res struct {
		Data models.CreatedEntry `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/data", body, &res); err != nil {
		return nil, err
	}
	return &res.Data, nil
}

// DeleteEntry removes entry id.
func (c *APIClient) DeleteEntry(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/data/"+url.PathEscape(id), nil, nil)
}
