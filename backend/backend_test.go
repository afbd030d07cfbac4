package backend

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type recorded struct {
	method string
	path   string
	body   string
}

func newBackend(t *testing.T) (*httptest.Server, *[]recorded, func() int) {
	var mu sync.Mutex
	var reqs []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		reqs = append(reqs, recorded{r.Method, r.URL.Path, string(body)})
		mu.Unlock()
		w.Write([]byte(`{"ok": true}`))
	}))
	t.Cleanup(srv.Close)

	_, portStr, _ := net.SplitHostPort(srv.Listener.Addr().String())
	port, _ := strconv.Atoi(portStr)
	return srv, &reqs, func() int { return port }
}

func TestOutboundCalls(t *testing.T) {
	_, reqs, port := newBackend(t)
	c := NewClient("127.0.0.1", port)
	ctx := context.Background()

	c.FromScratch(ctx)
	c.FromRecorded(ctx)
	c.FromConditioned(ctx, "1")

	assert.Equal(t, []recorded{
		{http.MethodGet, "/from_scratch", ""},
		{http.MethodPost, "/from_recorded", ""},
		{http.MethodPost, "/from_conditioned", `"1"`},
	}, *reqs)
}

func TestPortIsReadPerCall(t *testing.T) {
	_, reqs, realPort := newBackend(t)
	port := 1
	c := NewClient("127.0.0.1", func() int { return port })

	assert.Equal(t, "http://127.0.0.1:1", c.BaseURL())
	port = realPort()
	status, err := c.Send(context.Background(), http.MethodGet, "/from_scratch", nil)

	assert.NoError(t, err)
	assert.Equal(t, 200, status)
	assert.Len(t, *reqs, 1)
}

func TestUnreachableBackend(t *testing.T) {
	srv, _, port := newBackend(t)
	srv.Close()
	c := NewClient("127.0.0.1", port)

	_, err := c.Send(context.Background(), http.MethodPost, "/from_recorded", nil)
	assert.True(t, errors.Is(err, ErrNetworkUnavailable))

	// fire and forget variants only log
	c.FromRecorded(context.Background())
}
