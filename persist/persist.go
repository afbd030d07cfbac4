package persist

import (
	"context"
	"sync"
	"time"

	"github.com/jsphweid/noterelay/logging"
	"github.com/jsphweid/noterelay/midi"
	"github.com/jsphweid/noterelay/mirror"
	"github.com/jsphweid/noterelay/model"
	"github.com/jsphweid/noterelay/util"
	"github.com/pkg/errors"
)

// ErrTransientIO marks delete/copy/mirror failures. They are logged and never
// stop a write.
var ErrTransientIO = errors.New("transient io error")

type Options struct {
	PrimaryPath string
	BackendPath string
	// Pause is slept after the delete and again after the copy. Zero skips it.
	Pause  time.Duration
	Mirror mirror.Uploader
}

type Result struct {
	Path     string
	Copied   bool
	Mirrored bool
	// Transient holds the swallowed errors, each wrapping ErrTransientIO
	Transient []error
}

// Sequencer writes the recording artifact. Writes never overlap.
type Sequencer struct {
	opts Options
	mu   sync.Mutex
}

func NewSequencer(opts Options) *Sequencer {
	return &Sequencer{opts: opts}
}

func transient(err error, msg string) error {
	return errors.Wrapf(ErrTransientIO, "%v: %v", msg, err)
}

// Persist runs delete, pause, write, copy, mirror, pause in that order. Only a
// failure to produce the primary artifact is returned. t must already be a
// snapshot, it is not copied again.
func (s *Sequencer) Persist(ctx context.Context, t model.Track) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := Result{Path: s.opts.PrimaryPath}
	log := logging.WithFields(logging.Fields{"track_id": t.ID, "path": s.opts.PrimaryPath})

	if err := util.RemoveIfExists(s.opts.PrimaryPath); err != nil {
		err = transient(err, "could not delete previous recording")
		log.WithError(err).Warn("delete failed, writing anyway")
		res.Transient = append(res.Transient, err)
	}

	s.pause()

	if err := util.EnsureParentDir(s.opts.PrimaryPath); err != nil {
		return res, err
	}
	if err := midi.WriteFile(s.opts.PrimaryPath, t); err != nil {
		return res, err
	}
	log.WithField("events", len(t.Events)).Info("recording written")

	if s.opts.BackendPath != "" {
		if err := util.CopyFile(s.opts.PrimaryPath, s.opts.BackendPath); err != nil {
			err = transient(err, "could not copy recording for backend")
			log.WithError(err).WithField("backend_path", s.opts.BackendPath).Warn("copy failed")
			res.Transient = append(res.Transient, err)
		} else {
			res.Copied = true
			log.WithField("backend_path", s.opts.BackendPath).Info("recording copied")
		}
	}

	if s.opts.Mirror != nil {
		if err := s.opts.Mirror.Upload(ctx, s.opts.PrimaryPath); err != nil {
			err = transient(err, "could not mirror recording")
			log.WithError(err).Warn("mirror failed")
			res.Transient = append(res.Transient, err)
		} else {
			res.Mirrored = true
		}
	}

	s.pause()
	return res, nil
}

func (s *Sequencer) pause() {
	if s.opts.Pause > 0 {
		time.Sleep(s.opts.Pause)
	}
}
