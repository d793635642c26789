// Package client talks to the Daily Post REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dailypost/dailypost/models"
)

// DefaultTimeout bounds every request that has no earlier deadline.
const DefaultTimeout = 10 * time.Second

var (
	// ErrNetwork wraps transport failures (connection refused, DNS, reset...).
	ErrNetwork = errors.New("network error")
	// ErrTimeout is returned when a request exceeds its deadline.
	ErrTimeout = errors.New("request timed out")
)

// RemoteError is a non-2xx response or a body with success=false.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string { return e.Message }

// Client is a REST API client. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration

	mu    sync.RWMutex
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout replaces DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithToken sets the admin bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New creates a client for the API rooted at baseURL, e.g. http://localhost:3001/api.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns the bearer token in use.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Image is a file attached to a create, update or upload request.
type Image struct {
	Name string
	Body io.Reader
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return classifyTransport(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return classifyTransport(err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := env.Message
		if decodeErr != nil || msg == "" {
			msg = fmt.Sprintf("HTTP error! status: %d", resp.StatusCode)
		}
		return &RemoteError{Status: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return &RemoteError{Status: resp.StatusCode, Message: "invalid response body"}
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "request failed"
		}
		return &RemoteError{Status: resp.StatusCode, Message: msg}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &RemoteError{Status: resp.StatusCode, Message: "invalid response data"}
		}
	}
	return nil
}

func classifyTransport(err error) error {
	var nerr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &nerr) && nerr.Timeout()) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrNetwork, err)
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, body, contentType, out)
}

// multipartBody writes non-empty fields and an optional file part.
func multipartBody(fields map[string]string, fileField string, img *Image) (io.Reader, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for k, v := range fields {
		if v == "" {
			continue
		}
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	if img != nil && img.Body != nil {
		part, err := w.CreateFormFile(fileField, img.Name)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, img.Body); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

// ListParams filters GET /posts. Zero values are omitted.
type ListParams struct {
	Category string
	Limit    int
	Offset   int
	Search   string
}

func (p ListParams) encode() string {
	q := url.Values{}
	if p.Category != "" && !models.IsWildcardCategory(p.Category) {
		q.Set("category", p.Category)
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Offset > 0 {
		q.Set("offset", strconv.Itoa(p.Offset))
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// ListPosts calls GET /posts.
func (c *Client) ListPosts(ctx context.Context, p ListParams) ([]models.Post, error) {
	var posts []models.Post
	if err := c.doJSON(ctx, http.MethodGet, "/posts"+p.encode(), nil, &posts); err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return posts, nil
}

// GetPost calls GET /posts/:id.
func (c *Client) GetPost(ctx context.Context, id int64) (models.Post, error) {
	var post models.Post
	err := c.doJSON(ctx, http.MethodGet, "/posts/"+strconv.FormatInt(id, 10), nil, &post)
	return post, err
}

// CreatePost calls POST /posts with a multipart form.
func (c *Client) CreatePost(ctx context.Context, d models.Draft, img *Image) (models.Post, error) {
	body, ct, err := multipartBody(draftFields(d), "imageFile", img)
	if err != nil {
		return models.Post{}, fmt.Errorf("encode form: %w", err)
	}
	var post models.Post
	err = c.do(ctx, http.MethodPost, "/posts", body, ct, &post)
	return post, err
}

// UpdatePost calls PUT /posts/:id with a multipart form.
func (c *Client) UpdatePost(ctx context.Context, p models.Post, img *Image) (models.Post, error) {
	image := ""
	if p.Image != nil {
		image = *p.Image
	}
	fields := draftFields(models.Draft{
		Title:    p.Title,
		Excerpt:  p.Excerpt,
		Content:  p.Content,
		Category: p.Category,
		Author:   p.Author,
		Image:    image,
		Featured: p.Featured,
	})
	body, ct, err := multipartBody(fields, "imageFile", img)
	if err != nil {
		return models.Post{}, fmt.Errorf("encode form: %w", err)
	}
	var post models.Post
	err = c.do(ctx, http.MethodPut, "/posts/"+strconv.FormatInt(p.ID, 10), body, ct, &post)
	return post, err
}

// DeletePost calls DELETE /posts/:id.
func (c *Client) DeletePost(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, "/posts/"+strconv.FormatInt(id, 10), nil, nil)
}

// UploadImage calls POST /posts/upload and returns the stored image URL.
func (c *Client) UploadImage(ctx context.Context, img Image) (string, error) {
	body, ct, err := multipartBody(nil, "image", &img)
	if err != nil {
		return "", fmt.Errorf("encode form: %w", err)
	}
	var out struct {
		URL string `json:"url"`
	}
	if err := c.do(ctx, http.MethodPost, "/posts/upload", body, ct, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

// LoginResult is the data returned by POST /admin/login.
type LoginResult struct {
	Token string       `json:"token"`
	Admin models.Admin `json:"admin"`
}

// Login calls POST /admin/login and keeps the returned token for later requests.
func (c *Client) Login(ctx context.Context, username, password string) (LoginResult, error) {
	var res LoginResult
	in := map[string]string{"username": username, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/admin/login", in, &res); err != nil {
		return LoginResult{}, err
	}
	c.setToken(res.Token)
	return res, nil
}

// Logout calls POST /admin/logout and forgets the token even when the call fails.
func (c *Client) Logout(ctx context.Context) error {
	err := c.doJSON(ctx, http.MethodPost, "/admin/logout", nil, nil)
	c.setToken("")
	return err
}

// Health calls GET /health.
func (c *Client) Health(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodGet, "/health", nil, nil)
}

func draftFields(d models.Draft) map[string]string {
	return map[string]string{
		"title":    d.Title,
		"excerpt":  d.Excerpt,
		"content":  d.Content,
		"category": string(d.Category),
		"author":   d.Author,
		"image":    d.Image,
		"featured": strconv.FormatBool(d.Featured),
	}
}
