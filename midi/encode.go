package midi

import (
	"bytes"
	"math"
	"os"
	"sort"

	"github.com/jsphweid/noterelay/constants"
	"github.com/jsphweid/noterelay/model"
	"github.com/jsphweid/noterelay/timing"
	"github.com/pkg/errors"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

type absEvent struct {
	tick uint64
	// 0 for ends of notes that have a length, 1 for starts and zero length ends
	phase int
	order int
	isOff bool
	msg   gomidi.Message
}

func noteEvents(events []model.NoteEvent) ([]absEvent, error) {
	res := make([]absEvent, 0, len(events)*2)
	for i, e := range events {
		key, err := timing.ParsePitch(e.Pitch)
		if err != nil {
			return nil, errors.Wrapf(err, "event %v", i)
		}
		start := uint64(math.Round(math.Max(e.StartTick, 0)))
		offPhase := 0
		if e.DurationTicks == 0 {
			offPhase = 1
		}
		res = append(res,
			absEvent{tick: start, phase: 1, order: i, msg: gomidi.NoteOn(0, key, constants.DefaultVelocity)},
			absEvent{tick: start + uint64(e.DurationTicks), phase: offPhase, order: i, isOff: true, msg: gomidi.NoteOff(0, key)},
		)
	}

	// at the same tick, ends of earlier notes go first so a repeated key is not
	// cut short. A zero length note keeps its end right after its start.
	sort.Slice(res, func(i, j int) bool {
		a, b := res[i], res[j]
		if a.tick != b.tick {
			return a.tick < b.tick
		}
		if a.phase != b.phase {
			return a.phase < b.phase
		}
		if a.order != b.order {
			return a.order < b.order
		}
		return !a.isOff && b.isOff
	})
	return res, nil
}

// Encode serializes t into a single track Standard MIDI File. The same track
// always produces the same bytes.
func Encode(t model.Track) ([]byte, error) {
	events, err := noteEvents(t.Events)
	if err != nil {
		return nil, errors.Wrap(err, "could not encode track")
	}

	var tr smf.Track
	tr.Add(0, smf.MetaTempo(float64(t.TempoBPM)))
	tr.Add(0, smf.MetaMeter(t.TimeSignature.BeatsPerBar, t.TimeSignature.BeatUnit))
	tr.Add(0, gomidi.ProgramChange(0, t.Instrument))
	if t.InstrumentName != "" {
		tr.Add(0, smf.MetaInstrument(t.InstrumentName))
	}

	var last uint64
	for _, e := range events {
		delta := e.tick - last
		if delta > math.MaxUint32 {
			return nil, errors.Errorf("gap of %v ticks does not fit in a midi delta", delta)
		}
		tr.Add(uint32(delta), e.msg)
		last = e.tick
	}
	tr.Close(0)

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(constants.TicksPerQuarter)
	if err := s.Add(tr); err != nil {
		return nil, errors.Wrap(err, "could not add track")
	}

	buf := new(bytes.Buffer)
	if _, err := s.WriteTo(buf); err != nil {
		return nil, errors.Wrap(err, "could not write smf")
	}
	return buf.Bytes(), nil
}

// WriteFile fully replaces path with the encoded track.
func WriteFile(path string, t model.Track) error {
	data, err := Encode(t)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0666); err != nil {
		return errors.Wrapf(err, "write failed for %v", path)
	}
	return nil
}
