// Package ingest turns a web page into the starting point of an article draft.
package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	readability "github.com/go-shiori/go-readability"
)

// MaxPageBytes caps how much of a source page is read.
const MaxPageBytes = 10 * 1024 * 1024

var ErrPageTooLarge = errors.New("page exceeds size limit")

// Page is the readable part of a fetched page.
type Page struct {
	URL      string
	Title    string
	Byline   string
	SiteName string
	Text     string
}

type SourceClient interface {
	Fetch(ctx context.Context, pageURL string) (Page, error)
}

type readabilityClient struct {
	http *http.Client
}

func NewSourceClient(httpClient *http.Client) SourceClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &readabilityClient{http: httpClient}
}

func (c *readabilityClient) Fetch(ctx context.Context, pageURL string) (Page, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return Page{}, fmt.Errorf("invalid url %q: %w", pageURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Page{}, fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Page{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Page{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Page{}, fmt.Errorf("fetch %s: unexpected status %d", pageURL, resp.StatusCode)
	}
	if resp.ContentLength > MaxPageBytes {
		return Page{}, fmt.Errorf("fetch %s: %w", pageURL, ErrPageTooLarge)
	}

	// read one byte past the limit to tell a full page from a truncated one
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxPageBytes+1))
	if err != nil {
		return Page{}, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	if len(body) > MaxPageBytes {
		return Page{}, fmt.Errorf("fetch %s: %w", pageURL, ErrPageTooLarge)
	}

	doc, err := readability.FromReader(bytes.NewReader(body), u)
	if err != nil {
		return Page{}, fmt.Errorf("extract %s: %w", pageURL, err)
	}

	return Page{
		URL:      u.String(),
		Title:    doc.Title,
		Byline:   doc.Byline,
		SiteName: doc.SiteName,
		Text:     doc.TextContent,
	}, nil
}
