package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mercator-hq/warden/pkg/policy/document"
	"mercator-hq/warden/pkg/telemetry/tracing"
)

// DefaultMaxBytes caps the size of a fetched policy document.
const DefaultMaxBytes = 8 << 20

// ErrUnexpectedStatus is matched by errors for non-200 HTTP responses.
var ErrUnexpectedStatus = errors.New("unexpected status")

// StatusError reports a non-200 response from a policy endpoint.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s %d", e.URL, ErrUnexpectedStatus, e.StatusCode)
}

// Is reports whether target is ErrUnexpectedStatus.
func (e *StatusError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}

// Source yields one raw policy document per Fetch.
type Source interface {
	// Name identifies the source in logs and metrics ("internal", "external").
	Name() string

	// Location is the URL or path the source reads from.
	Location() string

	// Fetch retrieves and decodes the document.
	Fetch(ctx context.Context) (*document.Object, error)
}

// New builds a source for location. http and https URLs are fetched with
// client (http.DefaultClient when nil); file URLs and bare paths are read
// from disk.
func New(name, location string, client *http.Client) (Source, error) {
	if location == "" {
		return nil, fmt.Errorf("source %s: location is empty", name)
	}
	u, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("source %s: invalid location: %w", name, err)
	}

	switch u.Scheme {
	case "http", "https":
		return NewHTTPSource(name, location, client), nil
	case "file":
		return NewFileSource(name, filepath.FromSlash(u.Path)), nil
	case "":
		return NewFileSource(name, location), nil
	default:
		return nil, fmt.Errorf("source %s: unsupported scheme %q", name, u.Scheme)
	}
}

// HTTPSource fetches a document with a GET request.
type HTTPSource struct {
	name     string
	url      string
	client   *http.Client
	maxBytes int64
}

// NewHTTPSource creates an HTTP source. Requests carry
// Cache-Control: no-store so intermediaries never serve a stale policy.
func NewHTTPSource(name, rawURL string, client *http.Client) *HTTPSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSource{name: name, url: rawURL, client: client, maxBytes: DefaultMaxBytes}
}

func (s *HTTPSource) Name() string     { return s.name }
func (s *HTTPSource) Location() string { return s.url }

// Fetch performs the request. Only 200 is accepted.
func (s *HTTPSource) Fetch(ctx context.Context) (*document.Object, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")
	tracing.InjectHeaders(ctx, req.Header)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", s.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{URL: s.url, StatusCode: resp.StatusCode}
	}

	data, err := readLimited(resp.Body, s.maxBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.url, err)
	}
	doc, err := document.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", s.url, err)
	}
	return doc, nil
}

// FileSource reads a document from the local filesystem.
type FileSource struct {
	name string
	path string
}

// NewFileSource creates a file source.
func NewFileSource(name, path string) *FileSource {
	return &FileSource{name: name, path: path}
}

func (s *FileSource) Name() string     { return s.name }
func (s *FileSource) Location() string { return s.path }

// Path returns the file path, for watchers.
func (s *FileSource) Path() string { return s.path }

// Fetch reads and decodes the file.
func (s *FileSource) Fetch(ctx context.Context) (*document.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open policy file: %w", err)
	}
	defer f.Close()

	data, err := readLimited(f, DefaultMaxBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file %s: %w", s.path, err)
	}
	doc, err := document.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode policy file %s: %w", s.path, err)
	}
	return doc, nil
}

// StaticSource returns a fixed document or error. It backs tests and
// embedders that push policy in-process.
type StaticSource struct {
	name string
	doc  *document.Object
	err  error
}

// NewStaticSource creates a source that always returns doc and err.
func NewStaticSource(name string, doc *document.Object, err error) *StaticSource {
	return &StaticSource{name: name, doc: doc, err: err}
}

func (s *StaticSource) Name() string     { return s.name }
func (s *StaticSource) Location() string { return "static:" + s.name }

// Fetch returns the configured result.
func (s *StaticSource) Fetch(ctx context.Context) (*document.Object, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.doc == nil {
		return document.New(), nil
	}
	return s.doc, nil
}

// SameLocation reports whether two locations name the same resource. File
// paths are compared after cleaning.
func SameLocation(a, b string) bool {
	if a == b {
		return true
	}
	if a == "" || b == "" {
		return false
	}
	return normalizeLocation(a) == normalizeLocation(b)
}

func normalizeLocation(loc string) string {
	u, err := url.Parse(loc)
	if err != nil {
		return loc
	}
	switch u.Scheme {
	case "", "file":
		p := u.Path
		if u.Scheme == "" {
			p = loc
		}
		if abs, err := filepath.Abs(filepath.FromSlash(p)); err == nil {
			return "file:" + abs
		}
		return "file:" + filepath.Clean(p)
	default:
		u.Scheme = strings.ToLower(u.Scheme)
		u.Host = strings.ToLower(u.Host)
		return u.String()
	}
}

// NewHTTPClient returns a client with the given per-request timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

func readLimited(r io.Reader, max int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > max {
		return nil, fmt.Errorf("document exceeds %d bytes", max)
	}
	return data, nil
}
