package protocol

import (
	"context"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/jsphweid/noterelay/logging"
	"github.com/jsphweid/noterelay/model"
	"github.com/jsphweid/noterelay/persist"
	"github.com/jsphweid/noterelay/session"
	"github.com/jsphweid/noterelay/timing"
	"github.com/jsphweid/noterelay/track"
)

// outbound signals
const (
	EventNewPort  = "new_port"
	EventNewMidi  = "new_midi"
	EventFinished = "finished_writing_recording"
)

type State int

const (
	Idle State = iota
	PortKnown
	RecordingInProgress
	WriteInFlight
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case PortKnown:
		return "PortKnown"
	case RecordingInProgress:
		return "RecordingInProgress"
	case WriteInFlight:
		return "WriteInFlight"
	}
	return "Unknown"
}

type Persister interface {
	Persist(ctx context.Context, t model.Track) (persist.Result, error)
}

type Backend interface {
	FromScratch(ctx context.Context)
	FromRecorded(ctx context.Context)
	FromConditioned(ctx context.Context, selected string)
}

type Options struct {
	Session   *session.Session
	Tracks    *track.Accumulator
	Persister Persister
	Backend   Backend
	// metadata every new recording starts with
	Defaults track.Metadata
	// quiet period before the "notes captured" summary is logged
	SummaryDelay time.Duration
}

// Handshake keeps the client, the relay and the backend in agreement about
// the backend port and about which artifact is ready.
type Handshake struct {
	opts Options

	mu     sync.Mutex
	state  State
	writes int
	// bumped by NewTrack, lets a write tell whether a recording began under it
	resets int

	summarize func(func())
	pending   sync.WaitGroup
}

func New(opts Options) *Handshake {
	if opts.SummaryDelay == 0 {
		opts.SummaryDelay = time.Second
	}
	return &Handshake{
		opts:      opts,
		summarize: debounce.New(opts.SummaryDelay),
	}
}

func (h *Handshake) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.writes > 0 {
		return WriteInFlight
	}
	return h.state
}

func (h *Handshake) portKnown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state == Idle {
		h.state = PortKnown
	}
}

func emit(c session.Client, event string, args ...interface{}) {
	log := logging.WithFields(logging.Fields{"client_id": c.ID(), "event": event})
	if err := c.Emit(event, args...); err != nil {
		log.WithError(err).Warn("could not notify client")
		return
	}
	log.Debug("client notified")
}

// Connect makes c the current client and tells it where the backend lives.
func (h *Handshake) Connect(c session.Client) {
	h.opts.Session.SetClient(c)
	logging.WithField("client_id", c.ID()).Info("a user connected")
	emit(c, EventNewPort, h.opts.Session.Port())
	h.portKnown()
}

// PortChanged records the port the backend now listens on. Repeating the same
// port is harmless.
func (h *Handshake) PortChanged(port int) {
	h.opts.Session.SetPort(port)
	logging.WithField("port", port).Info("backend port updated")
	if c, ok := h.opts.Session.Client(); ok {
		emit(c, EventNewPort, port)
	}
	h.portKnown()
}

// ContentReady is dropped when nobody is connected. It is not replayed to
// clients that connect later.
func (h *Handshake) ContentReady() {
	c, ok := h.opts.Session.Client()
	if !ok {
		logging.Info("new content ready but no client connected, dropping")
		return
	}
	emit(c, EventNewMidi)
}

// NewTrack starts a new recording. Unpersisted notes are lost.
func (h *Handshake) NewTrack() {
	if h.State() == WriteInFlight {
		logging.Warn("new recording started while the previous one is being written")
	}
	id := h.opts.Tracks.Reset(h.opts.Defaults)
	h.mu.Lock()
	h.resets++
	h.state = RecordingInProgress
	h.mu.Unlock()
	logging.WithField("track_id", id).Info("new recording")
}

// Note converts and appends a captured note. Notes are accepted in every
// state, a note without a preceding NewTrack lands in the current track.
func (h *Handshake) Note(pitch string, startMs float64, durationMs float64) {
	if _, err := timing.ParsePitch(pitch); err != nil {
		logging.WithError(err).Warn("dropping note")
		return
	}
	if s := h.State(); s != RecordingInProgress {
		logging.WithField("state", s.String()).Debug("note outside of a recording")
	}

	evt := timing.Convert(pitch, startMs, durationMs, h.opts.Tracks.Tempo())
	h.opts.Tracks.Append(evt)

	h.summarize(func() {
		logging.WithField("events", h.opts.Tracks.Len()).Info("notes captured")
	})
}

// WriteMidi persists a snapshot of the current track and then signals
// "finished" to the registered client and to caller. Both may be the same
// connection, in which case it hears about it twice. The backend is asked to
// generate from the recording afterwards. A recording started while the write
// was in flight stays in progress.
func (h *Handshake) WriteMidi(ctx context.Context, caller session.Client) error {
	h.mu.Lock()
	h.writes++
	resets := h.resets
	snap := h.opts.Tracks.Snapshot()
	h.mu.Unlock()

	res, err := h.opts.Persister.Persist(ctx, snap)

	h.mu.Lock()
	h.writes--
	if h.resets == resets {
		h.state = Idle
	}
	h.mu.Unlock()

	if err != nil {
		logging.WithError(err).WithField("track_id", snap.ID).Error("could not write recording")
		return err
	}
	logging.WithFields(logging.Fields{
		"track_id": snap.ID,
		"path":     res.Path,
		"copied":   res.Copied,
	}).Info("recording finished")

	if c, ok := h.opts.Session.Client(); ok {
		emit(c, EventFinished)
	}
	if caller != nil {
		emit(caller, EventFinished)
	}

	h.toBackend(func(ctx context.Context) { h.opts.Backend.FromRecorded(ctx) })
	return nil
}

func (h *Handshake) FromScratch() {
	h.toBackend(func(ctx context.Context) { h.opts.Backend.FromScratch(ctx) })
}

func (h *Handshake) FromConditioned(selected string) {
	h.toBackend(func(ctx context.Context) { h.opts.Backend.FromConditioned(ctx, selected) })
}

// toBackend does not wait for the request, the backend answers through
// /midi_ready when it is done.
func (h *Handshake) toBackend(call func(ctx context.Context)) {
	if h.opts.Backend == nil {
		return
	}
	h.pending.Add(1)
	go func() {
		defer h.pending.Done()
		call(context.Background())
	}()
}

// Wait blocks until outstanding backend requests have returned.
func (h *Handshake) Wait() {
	h.pending.Wait()
}
