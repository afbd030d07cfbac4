package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jsphweid/noterelay/model"
	"github.com/pkg/errors"
)

const writeWait = 10 * time.Second

// conn adapts a websocket to session.Client. gorilla/websocket allows one
// concurrent writer, HTTP handlers and the read loop can both emit.
type conn struct {
	id string
	ws *websocket.Conn
	mu sync.Mutex
}

func newConn(ws *websocket.Conn) *conn {
	return &conn{id: uuid.New().String(), ws: ws}
}

func (c *conn) ID() string {
	return c.id
}

func (c *conn) Emit(event string, args ...interface{}) error {
	env := model.Envelope{Event: event}
	for _, a := range args {
		raw, err := json.Marshal(a)
		if err != nil {
			return errors.Wrapf(err, "could not encode %v argument", event)
		}
		env.Args = append(env.Args, raw)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.ws.WriteJSON(env); err != nil {
		return errors.Wrapf(err, "could not send %v", event)
	}
	return nil
}
