// Package jamf is a minimal client for the Jamf Pro classic API: record
// updates pushed by the populator and object snapshots fetched by the poller.
package jamf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	errspkg "github.com/brysontyrrell/voltron/internal/errors"
	"github.com/brysontyrrell/voltron/internal/logging"
)

const (
	// updateTimeout bounds record update pushes.
	updateTimeout = 30 * time.Second
	// fetchTimeout bounds snapshot fetches, which return materially larger
	// payloads than an update push.
	fetchTimeout = 90 * time.Second
)

// Client talks to a single Jamf Pro instance with basic-auth credentials.
type Client struct {
	domain     string
	username   string
	password   string
	deviceType string
	logger     logging.ServiceLogger

	updateClient *http.Client
	fetchClient  *http.Client
}

// New builds a Client for the given Jamf Pro domain. A bare domain is
// addressed over https; a domain carrying an explicit scheme is used as-is.
// deviceType selects the JSSResource collection targeted by record updates.
func New(domain, username, password, deviceType string, logger logging.ServiceLogger) *Client {
	return &Client{
		domain:       baseURL(domain),
		username:     username,
		password:     password,
		deviceType:   strings.ToLower(deviceType),
		logger:       logger,
		updateClient: &http.Client{Timeout: updateTimeout},
		fetchClient:  &http.Client{Timeout: fetchTimeout},
	}
}

// UpdateRecord PUTs an XML document onto the device record identified by
// serial number. Connection failures and non-2xx responses are distinguished
// error kinds; neither is retried here.
func (c *Client) UpdateRecord(ctx context.Context, serialNumber string, document []byte) error {
	endpoint := fmt.Sprintf("%s/JSSResource/%s/serialnumber/%s",
		c.domain, c.deviceType, url.PathEscape(serialNumber))

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(document))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "text/xml")
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.updateClient.Do(req)
	if err != nil {
		c.logger.Error("Unable to connect to Jamf Pro API", err, logging.LogFields{"endpoint": endpoint})
		return errspkg.Unreachable("update record", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("Error communicating with Jamf Pro API", nil, logging.LogFields{
			"endpoint":    endpoint,
			"status_code": resp.StatusCode,
		})
		return errspkg.Rejected("update record", endpoint, resp.StatusCode)
	}

	c.logger.Info("API request successful", logging.LogFields{"status_code": resp.StatusCode})
	return nil
}

// FetchObject GETs a point-in-time JSON snapshot of the object at
// /JSSResource/<endpoint>/id/<objectID>.
func (c *Client) FetchObject(ctx context.Context, objectEndpoint, objectID string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/JSSResource/%s/id/%s",
		c.domain, objectEndpoint, url.PathEscape(objectID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.fetchClient.Do(req)
	if err != nil {
		c.logger.Error("Unable to connect to Jamf Pro API", err, logging.LogFields{"endpoint": endpoint})
		return nil, errspkg.Unreachable("fetch object", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("Error communicating with Jamf Pro API", nil, logging.LogFields{
			"endpoint":    endpoint,
			"status_code": resp.StatusCode,
		})
		return nil, errspkg.Rejected("fetch object", endpoint, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errspkg.Unreachable("fetch object", endpoint, err)
	}

	c.logger.Info("API request successful", logging.LogFields{"status_code": resp.StatusCode})
	return body, nil
}

func baseURL(domain string) string {
	if strings.Contains(domain, "://") {
		return strings.TrimSuffix(domain, "/")
	}
	return "https://" + strings.TrimSuffix(domain, "/")
}
