package analyzer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	defaultFetchTimeout = 10 * time.Second
	defaultUserAgent    = "SEOForge-Bot/2.0"
	maxBodySize         = 5 << 20
)

var bufferPool = sync.Pool{
	New: func() interface{} {
		return new(bytes.Buffer)
	},
}

// Page is a fetched document and what was extracted from it
type Page struct {
	URL             string
	StatusCode      int
	HTML            string
	Title           string
	MetaDescription string
	Text            string
	Latency         time.Duration
}

// FetchError reports a transport failure or a non-2xx response
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Fetcher retrieves pages for analysis
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}

// HTTPFetcher fetches pages over HTTP and extracts title, meta description and text
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

// NewHTTPFetcher creates a fetcher with a pooled transport
func NewHTTPFetcher(timeout time.Duration, userAgent string) *HTTPFetcher {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &HTTPFetcher{
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		userAgent: userAgent,
	}
}

// Fetch downloads url. Latency covers the request and reading the body.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufferPool.Put(buf)

	if _, err := io.Copy(buf, io.LimitReader(resp.Body, maxBodySize)); err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	latency := time.Since(start)

	page, err := ParsePage(buf.String())
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	page.URL = url
	page.StatusCode = resp.StatusCode
	page.Latency = latency
	return page, nil
}

// ParsePage extracts the title, meta description and visible text from html
func ParsePage(html string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	return &Page{
		HTML:            html,
		Title:           strings.TrimSpace(doc.Find("title").First().Text()),
		MetaDescription: metaDescription(doc),
		Text:            visibleText(doc),
	}, nil
}

func metaDescription(doc *goquery.Document) string {
	var content string
	doc.Find("meta[name]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !strings.EqualFold(strings.TrimSpace(s.AttrOr("name", "")), "description") {
			return true
		}
		content = strings.TrimSpace(s.AttrOr("content", ""))
		return false
	})
	return content
}

// visibleText joins every text node with a space, skipping script, style and
// noscript elements, and collapses whitespace. Adjacent elements never glue
// their words together.
func visibleText(doc *goquery.Document) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			b.WriteByte(' ')
			return
		case html.ElementNode:
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript:
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// structure counts the heading and list elements in markup
type structure struct {
	h1, h2, lists int
}

func countStructure(html string) structure {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return structure{}
	}
	return structure{
		h1:    doc.Find("h1").Length(),
		h2:    doc.Find("h2").Length(),
		lists: doc.Find("ul, ol, li").Length(),
	}
}
