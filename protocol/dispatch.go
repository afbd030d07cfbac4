package protocol

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/jsphweid/noterelay/model"
	"github.com/jsphweid/noterelay/session"
	"github.com/pkg/errors"
)

// inbound signals
const (
	EventNewNote         = "new_note"
	EventNewTrack        = "new_track"
	EventWriteMidi       = "write_midi"
	EventFromScratch     = "from_scratch"
	EventFromConditioned = "from_conditioned"
)

var ErrUnknownEvent = errors.New("unknown event")

func decodeArg(args []json.RawMessage, i int, v interface{}) error {
	if i >= len(args) {
		return errors.Errorf("missing argument %v", i)
	}
	if err := json.Unmarshal(args[i], v); err != nil {
		return errors.Wrapf(err, "argument %v", i)
	}
	return nil
}

// Dispatch routes one frame from client c. Events from a single connection
// must be dispatched one at a time to keep their order.
func (h *Handshake) Dispatch(ctx context.Context, c session.Client, env model.Envelope) error {
	switch env.Event {
	case EventNewNote:
		var pitch string
		var start, duration float64
		if err := decodeArg(env.Args, 0, &pitch); err != nil {
			return errors.Wrap(err, env.Event)
		}
		if err := decodeArg(env.Args, 1, &start); err != nil {
			return errors.Wrap(err, env.Event)
		}
		if err := decodeArg(env.Args, 2, &duration); err != nil {
			return errors.Wrap(err, env.Event)
		}
		h.Note(pitch, start, duration)
	case EventNewTrack:
		h.NewTrack()
	case EventWriteMidi:
		return h.WriteMidi(ctx, c)
	case EventFromScratch:
		h.FromScratch()
	case EventFromConditioned:
		if len(env.Args) == 0 {
			return errors.Errorf("%v: missing selection", env.Event)
		}
		var selected string
		if err := json.Unmarshal(env.Args[0], &selected); err != nil {
			// numbers are passed through as written
			selected = strings.TrimSpace(string(env.Args[0]))
		}
		h.FromConditioned(selected)
	default:
		return errors.Wrapf(ErrUnknownEvent, "%q", env.Event)
	}
	return nil
}
