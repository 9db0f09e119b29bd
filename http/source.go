// Package http provides an archive source backed by HTTP GET requests.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	nethttp "net/http"
	"net/url"
	"path"
)

// ErrStatus is returned when the server answers with a non-200 status.
var ErrStatus = errors.New("http: unexpected status")

// Source fetches an archive from a URL. It satisfies jarscan.Source.
type Source struct {
	url     string
	name    string
	ctx     context.Context
	client  *nethttp.Client
	headers nethttp.Header
}

// Option configures a Source.
type Option func(*Source)

// WithClient sets the HTTP client used for requests.
func WithClient(client *nethttp.Client) Option {
	return func(s *Source) {
		s.client = client
	}
}

// WithHeaders sets additional headers on each request.
func WithHeaders(headers nethttp.Header) Option {
	return func(s *Source) {
		if headers == nil {
			return
		}
		s.headers = headers.Clone()
	}
}

// WithHeader sets a single header on each request.
func WithHeader(key, value string) Option {
	return func(s *Source) {
		if s.headers == nil {
			s.headers = make(nethttp.Header)
		}
		s.headers.Set(key, value)
	}
}

// WithName overrides the display name. By default the last element of the
// URL path is used.
func WithName(name string) Option {
	return func(s *Source) {
		s.name = name
	}
}

// WithContext sets the context attached to requests made by Open.
func WithContext(ctx context.Context) Option {
	return func(s *Source) {
		s.ctx = ctx
	}
}

// NewSource creates a Source for rawURL. Only http and https URLs are
// accepted. No request is made until Open.
func NewSource(rawURL string, opts ...Option) (*Source, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("http: parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("http: unsupported scheme %q", u.Scheme)
	}

	s := &Source{
		url:    rawURL,
		name:   path.Base(u.Path),
		ctx:    context.Background(),
		client: nethttp.DefaultClient,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.client == nil {
		s.client = nethttp.DefaultClient
	}
	if s.name == "" || s.name == "/" || s.name == "." {
		s.name = u.Host
	}
	return s, nil
}

// Name returns the display name of the archive.
func (s *Source) Name() string {
	return s.name
}

// URL returns the source URL.
func (s *Source) URL() string {
	return s.url
}

// Open requests the archive and returns the response body.
// The caller closes it.
func (s *Source) Open() (io.ReadCloser, error) {
	req, err := nethttp.NewRequestWithContext(s.ctx, nethttp.MethodGet, s.url, nethttp.NoBody)
	if err != nil {
		return nil, err
	}
	for key, values := range s.headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != nethttp.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: %s: %s", ErrStatus, s.url, resp.Status)
	}
	return resp.Body, nil
}
