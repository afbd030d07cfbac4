package model

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Port accepts both JSON numbers and numeric strings.
type Port int

func (p *Port) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return errors.Wrapf(err, "invalid port %s", string(data))
	}
	*p = Port(n)
	return nil
}

type PortUpdateBody struct {
	NewPort *Port `json:"new_port"`
}

// Envelope is the frame exchanged with the client over the websocket.
type Envelope struct {
	Event string            `json:"event"`
	Args  []json.RawMessage `json:"args,omitempty"`
}
