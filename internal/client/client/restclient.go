package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskplanner/internal/common"
)

// RESTClient is the HTTP implementation of Client.
type RESTClient struct {
	baseURL      string
	http         *http.Client
	accessToken  string
	refreshToken string
}

// NewTaskPlannerClientService builds a RESTClient for the given base URL,
// e.g. "http://127.0.0.1:8000".
func NewTaskPlannerClientService(baseURL string) (*RESTClient, error) {
	return &RESTClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// send performs one HTTP round trip. A url.Values body goes out form-encoded,
// anything else non-nil as JSON. Transport failures map to ErrUnavailable.
func (c *RESTClient) send(ctx context.Context, method, path string, body any, authed bool) (int, []byte, error) {
	var reader io.Reader
	contentType := ""

	switch b := body.(type) {
	case nil:
	case url.Values:
		reader = strings.NewReader(b.Encode())
		contentType = "application/x-www-form-urlencoded"
	default:
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		reader = bytes.NewReader(data)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if authed && c.accessToken != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerSchema+" "+c.accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, ErrUnavailable
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, data, nil
}

// do runs an API call. On a 401 for an authenticated call it refreshes the
// token pair and retries once, so a session survives access token expiry.
func (c *RESTClient) do(ctx context.Context, method, path string, body any, authed bool, out any) error {
	status, data, err := c.send(ctx, method, path, body, authed)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized && authed && c.refreshToken != "" {
		if err := c.refresh(ctx); err != nil {
			return ErrUnauthorized
		}
		status, data, err = c.send(ctx, method, path, body, authed)
		if err != nil {
			return err
		}
	}

	switch {
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	case status != http.StatusOK:
		return &APIError{Status: status, Detail: detailFrom(data)}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *RESTClient) refresh(ctx context.Context) error {
	body := map[string]string{"refresh_token": c.refreshToken}

	status, data, err := c.send(ctx, http.MethodPost, "/token/refresh", body, false)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return ErrUnauthorized
	}

	var pair TokenPair
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	c.accessToken = pair.AccessToken
	c.refreshToken = pair.RefreshToken
	return nil
}

func detailFrom(data []byte) string {
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	return body.Detail
}

// Ping checks server liveness with a short deadline of its own.
func (c *RESTClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return c.do(ctx, http.MethodGet, "/health", nil, false, nil)
}

func (c *RESTClient) Register(ctx context.Context, username, email string, password []byte) error {
	body := map[string]string{"username": username, "email": email, "password": string(password)}
	return c.do(ctx, http.MethodPost, "/users", body, false, nil)
}

// Login exchanges credentials for a token pair and installs it on the client.
func (c *RESTClient) Login(ctx context.Context, username string, password []byte) (*TokenPair, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", string(password))

	var pair TokenPair
	if err := c.do(ctx, http.MethodPost, "/token", form, false, &pair); err != nil {
		return nil, err
	}
	c.accessToken = pair.AccessToken
	c.refreshToken = pair.RefreshToken
	return &pair, nil
}

func (c *RESTClient) Me(ctx context.Context) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, true, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *RESTClient) VisibleTodos(ctx context.Context) ([]Todo, error) {
	var todos []Todo
	if err := c.do(ctx, http.MethodGet, "/todos", nil, true, &todos); err != nil {
		return nil, err
	}
	return todos, nil
}

func (c *RESTClient) GetTodo(ctx context.Context, id int64) (*Todo, error) {
	var todo Todo
	path := fmt.Sprintf("/todos/%d", id)
	if err := c.do(ctx, http.MethodGet, path, nil, true, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

func (c *RESTClient) CreateTodo(ctx context.Context, req CreateTodoRequest) (*Todo, error) {
	var todo Todo
	if err := c.do(ctx, http.MethodPost, "/todos", req, true, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

func (c *RESTClient) SetTodoDone(ctx context.Context, id int64, done bool) (*Todo, error) {
	var todo Todo
	path := fmt.Sprintf("/todos/%d", id)
	if err := c.do(ctx, http.MethodPut, path, map[string]bool{"done": done}, true, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

func (c *RESTClient) DeleteTodo(ctx context.Context, id int64) (*Todo, error) {
	var todo Todo
	path := fmt.Sprintf("/todos/%d", id)
	if err := c.do(ctx, http.MethodDelete, path, nil, true, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

func (c *RESTClient) Workspaces(ctx context.Context) ([]Workspace, error) {
	var list []Workspace
	if err := c.do(ctx, http.MethodGet, "/workspaces", nil, true, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *RESTClient) SetTokens(access, refresh string) {
	c.accessToken = access
	c.refreshToken = refresh
}

func (c *RESTClient) Tokens() (string, string) {
	return c.accessToken, c.refreshToken
}

func (c *RESTClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}
