package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jsphweid/noterelay/logging"
	"github.com/pkg/errors"
)

var ErrNetworkUnavailable = errors.New("backend unreachable")

// Client talks to the generation backend. The port is looked up on every
// call because the backend may move while the relay is running.
type Client struct {
	host string
	port func() int
	http *http.Client
}

func NewClient(host string, port func() int) *Client {
	return &Client{
		host: host,
		port: port,
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) BaseURL() string {
	return fmt.Sprintf("http://%v:%v", c.host, c.port())
}

// Send performs one request and returns the response status. Network errors
// wrap ErrNetworkUnavailable.
func (c *Client) Send(ctx context.Context, method string, path string, body []byte) (int, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL()+path, reader)
	if err != nil {
		return 0, errors.Wrap(err, "could not create backend request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, errors.Wrapf(ErrNetworkUnavailable, "%v %v: %v", method, path, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

// fire logs the outcome and never reports it, nothing upstream acts on it.
func (c *Client) fire(ctx context.Context, method string, path string, body []byte) {
	log := logging.WithFields(logging.Fields{"method": method, "url": c.BaseURL() + path})
	status, err := c.Send(ctx, method, path, body)
	if err != nil {
		log.WithError(err).Warn("backend request failed")
		return
	}
	log.WithField("status", status).Info("backend request complete")
}

func (c *Client) FromScratch(ctx context.Context) {
	c.fire(ctx, http.MethodGet, "/from_scratch", nil)
}

func (c *Client) FromRecorded(ctx context.Context) {
	c.fire(ctx, http.MethodPost, "/from_recorded", nil)
}

// FromConditioned asks for a continuation of a previously generated result.
// The selection is sent as a JSON string.
func (c *Client) FromConditioned(ctx context.Context, selected string) {
	body, _ := json.Marshal(selected)
	c.fire(ctx, http.MethodPost, "/from_conditioned", body)
}
