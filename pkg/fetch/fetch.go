// Package fetch performs the provisioner's network calls: archive
// downloads into the scratch cache and small JSON metadata lookups.
// Downloads are fatal on failure; metadata lookups are best-effort and
// callers degrade gracefully when they error.
package fetch

import (
	"fmt"
	"io"
	"net/http"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/sandpress/sandpress/pkg/errors"
	"github.com/sandpress/sandpress/pkg/filesystem"
	"github.com/sandpress/sandpress/pkg/logging"
	"github.com/sandpress/sandpress/pkg/types"
)

var log = logging.GetLogger("fetch")

const userAgent = "sandpress"

// Client downloads archives and fetches metadata over HTTP(S).
type Client struct {
	httpClient *http.Client
	fs         types.FS
	cacheDir   string
}

// New creates a Client writing scratch files under cacheDir.
func New(fsys types.FS, cacheDir string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		fs:         fsys,
		cacheDir:   cacheDir,
	}
}

// Download fetches url into a uniquely named scratch file inside the
// cache directory and returns its path. The caller owns the scratch
// file and must remove it when done, on success and failure alike.
func (c *Client) Download(url string) (string, error) {
	if err := c.fs.MkdirAll(c.cacheDir, filesystem.DirMode); err != nil {
		return "", errors.Wrapf(err, errors.ErrDirCreate, "cannot create cache dir %s", c.cacheDir)
	}

	log.Info().Str("url", url).Msg("Downloading archive")

	body, err := c.get(url, "application/octet-stream")
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrDownload, "downloading %s", url)
	}
	defer func() { _ = body.Close() }()

	data, err := io.ReadAll(body)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrDownload, "reading response body of %s", url)
	}

	scratch := fmt.Sprintf("%s/download-%s.zip", c.cacheDir, uuid.NewString())
	if err := c.fs.WriteFile(scratch, data, filesystem.FileMode); err != nil {
		return "", errors.Wrapf(err, errors.ErrFileWrite, "writing scratch file %s", scratch)
	}

	log.Debug().Str("path", scratch).Int("bytes", len(data)).Msg("Download complete")
	return scratch, nil
}

// GetJSON fetches url and decodes the JSON response into v. Failures
// get the metadata error code so callers can tell them apart from
// fatal download failures.
func (c *Client) GetJSON(url string, v interface{}) error {
	body, err := c.get(url, "application/json")
	if err != nil {
		return errors.Wrapf(err, errors.ErrMetadata, "fetching metadata from %s", url)
	}
	defer func() { _ = body.Close() }()

	if err := gojson.NewDecoder(body).Decode(v); err != nil {
		return errors.Wrapf(err, errors.ErrMetadata, "decoding metadata from %s", url)
	}
	return nil
}

func (c *Client) get(url, accept string) (io.ReadCloser, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return resp.Body, nil
}
