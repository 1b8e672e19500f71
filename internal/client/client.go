// Package client is a Go API client for the geodata manager server,
// used by the CLI. It keeps the login token in a local file so separate
// CLI invocations share one session.
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
	"os"
	"path/filepath"
	"time"

	"github.com/sakif/geodata-manager/internal/model"
)

// Error kinds, mirroring the server's error taxonomy.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrBadRequest   = errors.New("bad request")
	ErrServer       = errors.New("server error")
)

// APIError carries the server's message alongside the error kind, so
// callers can both branch on the kind and show the message.
type APIError struct {
	Kind    error
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Kind
}

// Client talks to the server and persists the session token at
// tokenPath between invocations.
type Client struct {
	baseURL   string
	tokenPath string
	token     string
	http      *http.Client
}

func New(baseURL, tokenPath string) *Client {
	c := &Client{
		baseURL:   baseURL,
		tokenPath: tokenPath,
		http:      &http.Client{Timeout: 30 * time.Second},
	}
	if data, err := os.ReadFile(tokenPath); err == nil {
		c.token = string(bytes.TrimSpace(data))
	}
	return c
}

// Authenticated reports whether a session token is present. It does not
// verify the token with the server; an expired token surfaces as
// ErrUnauthorized on the next call.
func (c *Client) Authenticated() bool {
	return c.token != ""
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	var res struct {
		User *model.User `json:"user"`
	}
	body := map[string]string{"username": username, "email": email, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/api/users/register", body, &res); err != nil {
		return nil, err
	}
	return res.User, nil
}

// Login authenticates and persists the token for later invocations.
func (c *Client) Login(ctx context.Context, email, password string) (*model.User, error) {
	var res struct {
		Token string      `json:"token"`
		User  *model.User `json:"user"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/api/users/login", body, &res); err != nil {
		return nil, err
	}

	c.token = res.Token
	if err := c.saveToken(); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}
	return res.User, nil
}

// Logout forgets the stored session. Tokens are stateless on the
// server, so this is purely local.
func (c *Client) Logout() error {
	c.token = ""
	if err := os.Remove(c.tokenPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing session: %w", err)
	}
	return nil
}

// Account fetches the logged-in user's profile.
func (c *Client) Account(ctx context.Context) (*model.User, error) {
	var res struct {
		User *model.User `json:"user"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/users/account", nil, &res); err != nil {
		return nil, err
	}
	return res.User, nil
}

// Upload sends a local file to the server and returns the created
// record.
func (c *Client) Upload(ctx context.Context, filePath string) (*model.GeoData, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("fileUrl", filepath.Base(filePath))
	if err != nil {
		return nil, fmt.Errorf("building form: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("building form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/geoData/upload", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var res struct {
		GeoData *model.GeoData `json:"geoData"`
	}
	if err := c.send(req, &res); err != nil {
		return nil, err
	}
	return res.GeoData, nil
}

// List fetches every record on the server.
func (c *Client) List(ctx context.Context) ([]model.GeoData, error) {
	var res struct {
		GeoData []model.GeoData `json:"geoData"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/geoData/list", nil, &res); err != nil {
		return nil, err
	}
	return res.GeoData, nil
}

// Mine fetches the caller's records.
func (c *Client) Mine(ctx context.Context) ([]model.GeoData, error) {
	var res struct {
		GeoData []model.GeoData `json:"geoData"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/geoData/my-geodata", nil, &res); err != nil {
		return nil, err
	}
	return res.GeoData, nil
}

// Rename changes a record's file name. The server re-checks that the
// new name keeps a supported extension.
func (c *Client) Rename(ctx context.Context, id, fileName string) (*model.GeoData, error) {
	var res struct {
		GeoData *model.GeoData `json:"geoData"`
	}
	body := map[string]string{"fileName": fileName}
	if err := c.doJSON(ctx, http.MethodPut, "/api/geoData/"+id, body, &res); err != nil {
		return nil, err
	}
	return res.GeoData, nil
}

// Toggle flips a record's visibility and returns the new value.
func (c *Client) Toggle(ctx context.Context, id string) (bool, error) {
	var res struct {
		IsVisible bool `json:"isVisible"`
	}
	if err := c.doJSON(ctx, http.MethodPatch, "/api/geoData/"+id+"/toggle", nil, &res); err != nil {
		return false, err
	}
	return res.IsVisible, nil
}

// Delete removes a record and its stored file.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/geoData/"+id, nil, nil)
}

func (c *Client) saveToken() error {
	if dir := filepath.Dir(c.tokenPath); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}
	return os.WriteFile(c.tokenPath, []byte(c.token), 0o600)
}

// doJSON sends an optional JSON body and decodes the enveloped response
// into out.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	if c.token != "" {
		req.Header.Set("Authorization", c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// decodeError turns an error response into an APIError, keeping the
// server's message when the body is a well-formed envelope.
func decodeError(resp *http.Response) error {
	kind := ErrServer
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		kind = ErrUnauthorized
	case http.StatusNotFound:
		kind = ErrNotFound
	case http.StatusBadRequest, http.StatusConflict:
		kind = ErrBadRequest
	}

	var env struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil || env.Message == "" {
		env.Message = resp.Status
	}
	return &APIError{Kind: kind, Message: env.Message}
}
