// Package client talks to the article-admin HTTP API.
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

	"article-admin/internal/article"
)

// StatusError is a non-2xx response that maps to no article error.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api returned %d: %s", e.Code, e.Message)
}

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

func (c *Client) List(ctx context.Context) ([]article.Summary, error) {
	var out []article.Summary
	if err := c.do(ctx, http.MethodGet, "/articles", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Get(ctx context.Context, id string) (*article.Article, error) {
	return c.article(ctx, http.MethodGet, articlePath(id), nil)
}

func (c *Client) Create(ctx context.Context, f article.Fields) (*article.Article, error) {
	return c.article(ctx, http.MethodPost, "/articles", f)
}

func (c *Client) Update(ctx context.Context, id string, p article.Patch) (*article.Article, error) {
	return c.article(ctx, http.MethodPut, articlePath(id), p)
}

func (c *Client) Delete(ctx context.Context, id string) (*article.Article, error) {
	return c.article(ctx, http.MethodDelete, articlePath(id), nil)
}

func (c *Client) SetPublished(ctx context.Context, id string, published bool) (*article.Article, error) {
	return c.article(ctx, http.MethodPut, articlePath(id)+"/publish", map[string]bool{"published": published})
}

func articlePath(id string) string {
	return "/articles/" + url.PathEscape(id)
}

func (c *Client) article(ctx context.Context, method, path string, body any) (*article.Article, error) {
	var a article.Article
	if err := c.do(ctx, method, path, body, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return responseError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func responseError(resp *http.Response) error {
	var e struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&e)
	msg := e.Error
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", article.ErrNotFound, msg)
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", article.ErrValidation, msg)
	default:
		return &StatusError{Code: resp.StatusCode, Message: msg}
	}
}
