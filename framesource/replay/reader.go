package replay

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/jenourish/bodytrack/framesource"
	"github.com/jenourish/bodytrack/logging"
	"github.com/jenourish/bodytrack/tracking"
	"github.com/jenourish/bodytrack/tracking/kinect"
)

const maxLineBytes = 4 << 20

// Options configure a replay Source.
type Options struct {
	// Loop restarts the recording from the top when it ends.
	Loop bool
	// Clock anchors replayed timestamps. The wall clock is used when nil.
	Clock clock.Clock
}

// Source plays back a recording file.
type Source struct {
	path       string
	opts       Options
	family     tracking.Family
	translator *framesource.ClockTranslator
	logger     logging.Logger

	mu      sync.Mutex
	file    *os.File
	scanner *bufio.Scanner
	line    int
	frames  int

	// lastTicks and step follow the recording's frame interval so a loop restarts one interval
	// after the last frame played.
	lastTicks int64
	haveLast  bool
	step      time.Duration
}

var _ framesource.Source = (*Source)(nil)

// Open opens a recording and reads its header.
func Open(path string, opts Options, logger logging.Logger) (*Source, error) {
	//nolint:gosec
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening recording")
	}
	s := &Source{
		path:       path,
		opts:       opts,
		translator: framesource.NewClockTranslator(opts.Clock),
		logger:     logger,
		file:       file,
	}
	h, err := s.readHeader()
	if err != nil {
		return nil, errors.Wrapf(multierr.Combine(err, file.Close()), "reading %s", path)
	}
	s.family, err = kinect.FamilyByName(h.Family)
	if err != nil {
		return nil, errors.Wrapf(multierr.Combine(err, file.Close()), "reading %s", path)
	}
	return s, nil
}

// Family returns the hardware family the recording was made with.
func (s *Source) Family() tracking.Family {
	return s.family
}

func (s *Source) readHeader() (header, error) {
	s.scanner = bufio.NewScanner(s.file)
	s.scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	s.line = 0
	for s.scanner.Scan() {
		s.line++
		if len(s.scanner.Bytes()) == 0 {
			continue
		}
		var h header
		if err := json.Unmarshal(s.scanner.Bytes(), &h); err != nil {
			return header{}, errors.Wrapf(err, "line %d: decoding header", s.line)
		}
		return h, h.validate()
	}
	if err := s.scanner.Err(); err != nil {
		return header{}, err
	}
	return header{}, errors.New("recording is empty")
}

// NextFrame returns the next recorded frame. No-frame lines yield framesource.ErrNoFrame and the
// end of a non-looping recording yields io.EOF.
func (s *Source) NextFrame(ctx context.Context) (tracking.Frame, error) {
	if err := ctx.Err(); err != nil {
		return tracking.Frame{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return tracking.Frame{}, errors.New("recording is closed")
	}

	for {
		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return tracking.Frame{}, errors.Wrapf(err, "line %d", s.line+1)
			}
			if !s.opts.Loop || s.frames == 0 {
				return tracking.Frame{}, io.EOF
			}
			if err := s.rewind(); err != nil {
				return tracking.Frame{}, err
			}
			continue
		}
		s.line++
		if len(s.scanner.Bytes()) == 0 {
			continue
		}
		var rec frameRecord
		if err := json.Unmarshal(s.scanner.Bytes(), &rec); err != nil {
			return tracking.Frame{}, errors.Wrapf(err, "line %d: decoding frame", s.line)
		}
		if rec.NoFrame {
			return tracking.Frame{}, framesource.ErrNoFrame
		}
		s.frames++
		if s.haveLast && rec.Ticks > s.lastTicks {
			s.step = framesource.TicksToDuration(rec.Ticks - s.lastTicks)
		}
		s.lastTicks, s.haveLast = rec.Ticks, true
		frame := tracking.Frame{
			Time:       s.translator.Translate(rec.Ticks),
			Candidates: make([]tracking.Candidate, 0, len(rec.Bodies)),
		}
		for _, b := range rec.Bodies {
			frame.Candidates = append(frame.Candidates, b.candidate(s.family))
		}
		return frame, nil
	}
}

func (s *Source) rewind() error {
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return errors.Wrap(err, "rewinding recording")
	}
	if _, err := s.readHeader(); err != nil {
		return err
	}
	step := s.step
	if step <= 0 {
		step = time.Microsecond
	}
	s.haveLast = false
	s.translator.Continue(step)
	s.logger.Debugw("looping recording", "path", s.path, "frames", s.frames, "step", step)
	return nil
}

// Close closes the recording file.
func (s *Source) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
