// Package asc is a minimal App Store Connect API client covering the four
// resource collections the profile upsert workflow touches: certificates,
// bundle IDs, devices, and provisioning profiles.
package asc

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DefaultBaseURL is the production App Store Connect API endpoint.
const DefaultBaseURL = "https://api.appstoreconnect.apple.com/v1"

// doer abstracts the retrying HTTP transport.
type doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client issues authenticated requests against the App Store Connect API.
// It owns no business logic; every method decodes the wire format into
// typed records and nothing else.
type Client struct {
	baseURL    string
	tokens     *TokenSource
	httpClient doer
	log        logrus.FieldLogger
}

// NewClient returns a client for the given base URL. Pass DefaultBaseURL
// outside of tests.
func NewClient(baseURL string, tokens *TokenSource, logger logrus.FieldLogger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
		httpClient: newRetryTransport(30*time.Second, DefaultRetryConfig()),
		log:        logger,
	}
}

// pagedLinks carries the next-page link of a collection document.
type pagedLinks struct {
	Self string `json:"self"`
	Next string `json:"next"`
}

// doRequest executes one authenticated request. urlStr may be a path
// relative to the base URL or an absolute next-page link returned by a
// previous listing.
func (c *Client) doRequest(method, urlStr string, query url.Values, body []byte) (*http.Response, error) {
	if !strings.HasPrefix(urlStr, "http") {
		urlStr = c.baseURL + urlStr
	}
	endpoint, err := url.Parse(urlStr)
	if err != nil {
		return nil, errors.Wrap(err, "parsing request URL")
	}
	if query != nil {
		endpoint.RawQuery = query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequest(method, endpoint.String(), bodyReader)
	if err != nil {
		return nil, errors.Wrap(err, "creating request")
	}

	token, err := c.tokens.Token()
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log.WithFields(logrus.Fields{
		"method": method,
		"url":    endpoint.String(),
	}).Debug("App Store Connect request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, endpoint.Path)
	}
	return resp, nil
}

// do executes a request and decodes a 2xx response body into out (when out
// is non-nil). 404 is mapped to ErrNotFound; other non-2xx statuses are
// returned as an *ErrorResponse carrying the service's error objects.
func (c *Client) do(method, urlStr string, query url.Values, body []byte, out interface{}) error {
	resp, err := c.doRequest(method, urlStr, query, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "reading response body")
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(respBody, out); err != nil {
			return errors.Wrapf(err, "decoding %s %s response", method, urlStr)
		}
		return nil
	}

	if resp.StatusCode == http.StatusNotFound {
		return errors.Wrapf(ErrNotFound, "%s %s", method, urlStr)
	}

	errResp := &ErrorResponse{StatusCode: resp.StatusCode}
	if err := json.Unmarshal(respBody, errResp); err != nil || len(errResp.Errors) == 0 {
		return errors.Errorf("%s %s returned unexpected status %d: %s",
			method, urlStr, resp.StatusCode, string(respBody))
	}
	for _, svcErr := range errResp.Errors {
		c.log.WithFields(logrus.Fields{
			"code":   svcErr.Code,
			"detail": svcErr.Detail,
		}).Error("App Store Connect error")
	}
	return errResp
}
