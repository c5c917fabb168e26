// Package fetch retrieves remote artifacts over HTTP(S) into a local
// directory. Some artifact stores answer unauthenticated requests with an
// HTML login page and status 200; the fetcher detects that and reports it
// as an authentication failure instead of handing the gate an HTML file
// disguised as a package.
package fetch

import (
	"bytes"
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

// ErrAuthentication is returned when the server demands credentials, either
// by status code or by answering with a login/forbidden HTML page.
var ErrAuthentication = errors.New("authentication required")

// authMarkers are the case-insensitive HTML body markers that classify a
// 200 response as an auth wall.
var authMarkers = []string{"login", "sign in", "authentication", "forbidden"}

// sniffLimit bounds how much of a response body is inspected for markers.
const sniffLimit = 64 * 1024

// Credentials carry HTTP basic auth for the artifact store. The zero value
// means anonymous access.
type Credentials struct {
	Username string
	Password string
}

// Fetcher downloads remote artifacts with bounded retries.
type Fetcher struct {
	client *retryablehttp.Client
	log    *zap.Logger
}

// New builds a fetcher. insecure disables TLS certificate verification,
// mirroring the --insecure CLI flag.
func New(timeout time.Duration, insecure bool, log *zap.Logger) *Fetcher {
	if log == nil {
		log = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = time.Minute
	}

	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.Logger = nil
	client.HTTPClient.Timeout = timeout
	client.HTTPClient.Transport = &http.Transport{
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: insecure,
			MinVersion:         tls.VersionTLS12,
		},
	}

	return &Fetcher{client: client, log: log}
}

// Fetch downloads rawURL into destDir and returns the local file path. The
// local name comes from the URL path's last element.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, creds Credentials, destDir string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", errors.Wrapf(err, "parse url %q", rawURL)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", errors.Wrap(err, "build request")
	}
	if creds.Username != "" {
		req.SetBasicAuth(creds.Username, creds.Password)
	}

	f.log.Debug("fetching remote artifact", zap.String("url", parsed.Redacted()))

	resp, err := f.client.Do(req)
	if err != nil {
		return "", errors.Wrapf(err, "fetch %s", parsed.Redacted())
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return "", errors.Wrapf(ErrAuthentication, "%s: status %d", parsed.Redacted(), resp.StatusCode)
	default:
		return "", errors.Newf("fetch %s: unexpected status %d", parsed.Redacted(), resp.StatusCode)
	}

	head := make([]byte, sniffLimit)
	n, readErr := io.ReadFull(resp.Body, head)
	if readErr != nil && readErr != io.ErrUnexpectedEOF && readErr != io.EOF {
		return "", errors.Wrap(readErr, "read response")
	}
	head = head[:n]

	if isAuthWall(resp.Header.Get("Content-Type"), head) {
		return "", errors.Wrapf(ErrAuthentication, "%s answered with a login page", parsed.Redacted())
	}

	name := path.Base(parsed.Path)
	if name == "/" || name == "." || name == "" {
		name = "artifact"
	}
	localPath := filepath.Join(destDir, name)

	out, err := os.OpenFile(localPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return "", errors.Wrap(err, "create local file")
	}
	defer out.Close()

	if _, err := out.Write(head); err != nil {
		return "", errors.Wrap(err, "write local file")
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		return "", errors.Wrap(err, "write local file")
	}

	f.log.Debug("fetched remote artifact",
		zap.String("url", parsed.Redacted()),
		zap.String("path", localPath))

	return localPath, nil
}

// isAuthWall reports whether a 200 response smells like an HTML auth page.
func isAuthWall(contentType string, head []byte) bool {
	isHTML := strings.Contains(strings.ToLower(contentType), "text/html") ||
		bytes.Contains(bytes.ToLower(head[:min(len(head), 512)]), []byte("<html"))
	if !isHTML {
		return false
	}

	lower := strings.ToLower(string(head))
	for _, marker := range authMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// IsRemote reports whether the artifact reference is a URL the fetcher
// handles rather than a local path.
func IsRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}
