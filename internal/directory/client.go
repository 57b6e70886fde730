// Package directory is the HTTP client for the remote user directory
// (reqres.in compatible). It maps the snake_case wire format to domain types
// and reports every failure as domain.ErrNetwork. Nothing is retried.
package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/msomdec/userdesk/internal/domain"
)

// DefaultBaseURL is the public demo API.
const DefaultBaseURL = "https://reqres.in/api"

// Client implements domain.Directory over HTTP.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the transport used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithAPIKey sends key in the x-api-key header on every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// New creates a Client rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StatusError is returned for non-2xx responses. It matches domain.ErrNetwork.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
}

func (e *StatusError) Is(target error) bool {
	return target == domain.ErrNetwork
}

type userDTO struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Avatar    string `json:"avatar"`
}

func (d userDTO) toDomain() domain.UserRecord {
	return domain.UserRecord{
		ID:        d.ID,
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Email:     d.Email,
		AvatarURL: d.Avatar,
	}
}

type listResponse struct {
	Page       int       `json:"page"`
	TotalPages int       `json:"total_pages"`
	Data       []userDTO `json:"data"`
}

type updateRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// updateResponse is the echo of a PUT. The demo API only echoes the fields
// that were sent, so every field is optional.
type updateResponse struct {
	ID        *int64  `json:"id"`
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Avatar    *string `json:"avatar"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// List fetches one page of users.
func (c *Client) List(ctx context.Context, page int) (domain.Page, error) {
	q := url.Values{"page": {strconv.Itoa(page)}}
	var resp listResponse
	if err := c.do(ctx, http.MethodGet, "/users?"+q.Encode(), nil, &resp); err != nil {
		return domain.Page{}, err
	}

	records := make(domain.UserCollection, len(resp.Data))
	for i, d := range resp.Data {
		records[i] = d.toDomain()
	}
	if resp.Page == 0 {
		resp.Page = page
	}
	return domain.Page{Records: records, Page: resp.Page, TotalPages: resp.TotalPages}, nil
}

// Update sends the edited fields and returns the server's view of the record.
func (c *Client) Update(ctx context.Context, id int64, fields domain.UserFields) (domain.UserRecord, error) {
	body := updateRequest{FirstName: fields.FirstName, LastName: fields.LastName, Email: fields.Email}
	var resp updateResponse
	if err := c.do(ctx, http.MethodPut, "/users/"+strconv.FormatInt(id, 10), body, &resp); err != nil {
		return domain.UserRecord{}, err
	}

	rec := domain.UserRecord{ID: id, FirstName: fields.FirstName, LastName: fields.LastName, Email: fields.Email}
	return domain.UserPatch{
		ID:        id,
		FirstName: resp.FirstName,
		LastName:  resp.LastName,
		Email:     resp.Email,
		AvatarURL: resp.Avatar,
	}.Apply(rec), nil
}

// Delete removes a user. The response body is ignored.
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/users/"+strconv.FormatInt(id, 10), nil, nil)
}

// Login exchanges credentials for an opaque token. A 4xx answer is reported
// as domain.ErrUnauthorized.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "/login", loginRequest{Email: email, Password: password}, &resp); err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.StatusCode >= 400 && se.StatusCode < 500 {
			return "", fmt.Errorf("%w: login rejected with status %d", domain.ErrUnauthorized, se.StatusCode)
		}
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("%w: login response has no token", domain.ErrNetwork)
	}
	return resp.Token, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, dst any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", domain.ErrNetwork, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		slog.Debug("directory request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%w: %s %s: %v", domain.ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
		return &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode}
	}

	if dst == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: decode %s %s: %v", domain.ErrNetwork, method, path, err)
	}
	return nil
}
