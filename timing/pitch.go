package timing

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var pitchRegexp = regexp.MustCompile(`^([A-Ga-g])([#b]*)(-?\d+)$`)

var pitchClasses = map[byte]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

// ParsePitch turns scientific pitch notation ("C4", "F#3", "Bb-1") or a bare
// MIDI key number ("60") into a MIDI key. C4 is 60.
func ParsePitch(name string) (uint8, error) {
	name = strings.TrimSpace(name)

	if n, err := strconv.Atoi(name); err == nil {
		return checkKey(n, name)
	}

	m := pitchRegexp.FindStringSubmatch(name)
	if m == nil {
		return 0, errors.Errorf("unrecognized pitch %q", name)
	}

	key := pitchClasses[strings.ToUpper(m[1])[0]]
	for _, acc := range m[2] {
		if acc == '#' {
			key++
		} else {
			key--
		}
	}

	octave, err := strconv.Atoi(m[3])
	if err != nil {
		return 0, errors.Wrapf(err, "bad octave in pitch %q", name)
	}
	return checkKey((octave+1)*12+key, name)
}

func checkKey(n int, name string) (uint8, error) {
	if n < 0 || n > 127 {
		return 0, errors.Errorf("pitch %q is outside the MIDI range", name)
	}
	return uint8(n), nil
}
