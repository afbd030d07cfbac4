package model

import "golang.org/x/exp/slices"

type TimeSignature struct {
	BeatsPerBar uint8
	BeatUnit    uint8
}

type Track struct {
	// NOTE: only used to correlate log lines, never serialized
	ID string

	Events         []NoteEvent
	TempoBPM       int
	TimeSignature  TimeSignature
	Instrument     uint8
	InstrumentName string
}

// Clone returns a copy that shares no memory with t.
func (t Track) Clone() Track {
	res := t
	res.Events = slices.Clone(t.Events)
	return res
}
