package track

import (
	"sync"

	"github.com/google/uuid"
	"github.com/jsphweid/noterelay/constants"
	"github.com/jsphweid/noterelay/model"
)

type Metadata struct {
	TempoBPM       int
	TimeSignature  model.TimeSignature
	Instrument     uint8
	InstrumentName string
}

func DefaultMetadata() Metadata {
	return Metadata{
		TempoBPM: constants.DefaultTempoBPM,
		TimeSignature: model.TimeSignature{
			BeatsPerBar: constants.DefaultBeatsPerBar,
			BeatUnit:    constants.DefaultBeatUnit,
		},
		Instrument:     constants.DefaultInstrument,
		InstrumentName: constants.DefaultInstrumentName,
	}
}

// Accumulator holds the single active recording.
type Accumulator struct {
	mu    sync.Mutex
	track model.Track
}

func New(meta Metadata) *Accumulator {
	a := &Accumulator{}
	a.Reset(meta)
	return a
}

// Reset throws away the active track, unpersisted events included.
func (a *Accumulator) Reset(meta Metadata) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.track = model.Track{
		ID:             uuid.New().String(),
		TempoBPM:       meta.TempoBPM,
		TimeSignature:  meta.TimeSignature,
		Instrument:     meta.Instrument,
		InstrumentName: meta.InstrumentName,
	}
	return a.track.ID
}

// Append returns the number of events in the track after the append.
func (a *Accumulator) Append(evt model.NoteEvent) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.track.Events = append(a.track.Events, evt)
	return len(a.track.Events)
}

func (a *Accumulator) Tempo() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.track.TempoBPM
}

func (a *Accumulator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.track.Events)
}

// Snapshot copies the active track so a write in progress is unaffected by
// later appends or resets.
func (a *Accumulator) Snapshot() model.Track {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.track.Clone()
}
