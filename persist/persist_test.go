package persist

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jsphweid/noterelay/model"
	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type fakeMirror struct {
	paths []string
	err   error
}

func (f *fakeMirror) Upload(ctx context.Context, path string) error {
	f.paths = append(f.paths, path)
	return f.err
}

func sampleTrack() model.Track {
	return model.Track{
		ID: "t1",
		Events: []model.NoteEvent{
			{Pitch: "C4", StartTick: 0, DurationTicks: 120},
			{Pitch: "G4", StartTick: 125, DurationTicks: 60},
		},
		TempoBPM:       120,
		TimeSignature:  model.TimeSignature{BeatsPerBar: 4, BeatUnit: 4},
		Instrument:     2,
		InstrumentName: "Piano",
	}
}

func TestPersistWritesAndCopies(t *testing.T) {
	dir := t.TempDir()
	primary := filepath.Join(dir, "midi", "my_recording.mid")
	backend := filepath.Join(dir, "my_recording_copy.mid")
	m := &fakeMirror{}

	s := NewSequencer(Options{PrimaryPath: primary, BackendPath: backend, Mirror: m})
	res, err := s.Persist(context.Background(), sampleTrack())

	assert := assert.New(t)
	assert.NoError(err)
	assert.Equal(primary, res.Path)
	assert.True(res.Copied)
	assert.True(res.Mirrored)
	assert.Empty(res.Transient)
	assert.Equal([]string{primary}, m.paths)

	written, _ := os.ReadFile(primary)
	copied, _ := os.ReadFile(backend)
	assert.NotEmpty(written)
	assert.Equal(written, copied)
}

func TestPersistTwiceIsByteIdentical(t *testing.T) {
	dir := t.TempDir()
	primary := filepath.Join(dir, "my_recording.mid")
	s := NewSequencer(Options{PrimaryPath: primary})

	_, err := s.Persist(context.Background(), sampleTrack())
	assert.NoError(t, err)
	first, _ := os.ReadFile(primary)

	_, err = s.Persist(context.Background(), sampleTrack())
	assert.NoError(t, err)
	second, _ := os.ReadFile(primary)

	assert.Equal(t, first, second)
}

func TestPersistReplacesPreviousArtifact(t *testing.T) {
	primary := filepath.Join(t.TempDir(), "my_recording.mid")
	os.WriteFile(primary, []byte("stale data that is longer than nothing"), 0666)

	empty := sampleTrack()
	empty.Events = nil
	s := NewSequencer(Options{PrimaryPath: primary})
	_, err := s.Persist(context.Background(), empty)
	assert.NoError(t, err)

	data, _ := os.ReadFile(primary)
	assert.Equal(t, []byte("MThd"), data[:4])
}

func TestCopyFailureIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	primary := filepath.Join(dir, "my_recording.mid")
	backend := filepath.Join(dir, "missing", "dir", "my_recording.mid")
	m := &fakeMirror{err: errors.New("bucket gone")}

	s := NewSequencer(Options{PrimaryPath: primary, BackendPath: backend, Mirror: m})
	res, err := s.Persist(context.Background(), sampleTrack())

	assert := assert.New(t)
	assert.NoError(err)
	assert.False(res.Copied)
	assert.False(res.Mirrored)
	assert.Len(res.Transient, 2)
	for _, e := range res.Transient {
		assert.True(pkgerrors.Is(e, ErrTransientIO))
	}
	_, statErr := os.Stat(primary)
	assert.NoError(statErr)
}

func TestWriteFailureIsReturned(t *testing.T) {
	// a non empty directory can be neither deleted nor written over
	primary := filepath.Join(t.TempDir(), "my_recording.mid")
	os.MkdirAll(filepath.Join(primary, "child"), 0777)

	s := NewSequencer(Options{PrimaryPath: primary})
	res, err := s.Persist(context.Background(), sampleTrack())

	assert := assert.New(t)
	assert.Error(err)
	assert.Len(res.Transient, 1)
}

func TestPauseIsApplied(t *testing.T) {
	primary := filepath.Join(t.TempDir(), "my_recording.mid")
	s := NewSequencer(Options{PrimaryPath: primary, Pause: 20 * time.Millisecond})

	start := time.Now()
	_, err := s.Persist(context.Background(), sampleTrack())
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

type overlapMirror struct {
	mu      sync.Mutex
	active  int
	maxSeen int
}

func (m *overlapMirror) Upload(ctx context.Context, path string) error {
	m.mu.Lock()
	m.active++
	if m.active > m.maxSeen {
		m.maxSeen = m.active
	}
	m.mu.Unlock()

	time.Sleep(10 * time.Millisecond)

	m.mu.Lock()
	m.active--
	m.mu.Unlock()
	return nil
}

func TestConcurrentPersistDoesNotOverlap(t *testing.T) {
	primary := filepath.Join(t.TempDir(), "my_recording.mid")
	m := &overlapMirror{}
	s := NewSequencer(Options{PrimaryPath: primary, Pause: 10 * time.Millisecond, Mirror: m})

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.Persist(context.Background(), sampleTrack())
		}(i)
	}
	wg.Wait()

	assert := assert.New(t)
	for _, err := range errs {
		assert.NoError(err)
	}
	assert.Equal(1, m.maxSeen)

	first, err := os.ReadFile(primary)
	assert.NoError(err)
	_, err = s.Persist(context.Background(), sampleTrack())
	assert.NoError(err)
	again, err := os.ReadFile(primary)
	assert.NoError(err)
	assert.Equal(first, again)
}
