package model

// NoteEvent is a single note in the tick domain. StartTick keeps the exact
// converted value and is only rounded when the track is serialized.
type NoteEvent struct {
	Pitch         string
	StartTick     float64
	DurationTicks uint32
}
