package midi

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

func ReadMidiFile(filepath string) (s *smf.SMF, e error) {
	var blank smf.SMF
	var err error

	// handle panics
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r, ok := recover().(string); ok {
			e = errors.New(r)
		}
	}()

	dat, err := os.ReadFile(filepath)

	if err != nil {
		errText := fmt.Sprintf("Error reading midi file... %s", err.Error())
		return &blank, errors.New(errText)
	}
	res, err := smf.ReadFrom(bytes.NewReader(dat))

	if err != nil {
		errText := fmt.Sprintf("Error parsing midi file... %s", err.Error())
		return &blank, errors.New(errText)
	}

	return res, nil
}

type SummaryNote struct {
	Key           uint8
	StartTick     uint64
	DurationTicks uint64
}

// Summary is what a recording artifact carries, read back from a file.
type Summary struct {
	Resolution     uint16
	TempoBPM       float64
	BeatsPerBar    uint8
	BeatUnit       uint8
	Program        uint8
	InstrumentName string
	Notes          []SummaryNote
}

// Summarize pairs note starts with their ends. Notes are ordered by start.
func Summarize(s *smf.SMF) Summary {
	var res Summary
	if ticks, ok := s.TimeFormat.(smf.MetricTicks); ok {
		res.Resolution = ticks.Resolution()
	}

	open := make(map[uint8][]int)
	for _, track := range s.Tracks {
		var absTicks uint64
		for _, evt := range track {
			absTicks += uint64(evt.Delta)
			msg := gomidi.Message(evt.Message)
			var channel, key, velocity, program uint8
			switch {
			case evt.Message.GetMetaTempo(&res.TempoBPM):
			case evt.Message.GetMetaMeter(&res.BeatsPerBar, &res.BeatUnit):
			case evt.Message.GetMetaInstrument(&res.InstrumentName):
			case msg.GetProgramChange(&channel, &program):
				res.Program = program
			case msg.GetNoteStart(&channel, &key, &velocity):
				open[key] = append(open[key], len(res.Notes))
				res.Notes = append(res.Notes, SummaryNote{Key: key, StartTick: absTicks})
			case msg.GetNoteEnd(&channel, &key):
				idxs := open[key]
				if len(idxs) == 0 {
					continue
				}
				n := &res.Notes[idxs[0]]
				n.DurationTicks = absTicks - n.StartTick
				open[key] = idxs[1:]
			}
		}
	}
	return res
}
