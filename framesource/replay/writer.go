package replay

import (
	"bufio"
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/jenourish/bodytrack/tracking"
)

// Writer records frames in the replay format.
type Writer struct {
	buf    *bufio.Writer
	enc    *json.Encoder
	closer io.Closer
}

// NewWriter writes a header for the named family to w and returns a Writer for the frames.
func NewWriter(w io.Writer, family string) (*Writer, error) {
	buf := bufio.NewWriter(w)
	wr := &Writer{buf: buf, enc: json.NewEncoder(buf)}
	if err := wr.enc.Encode(header{Format: formatName, Version: formatVersion, Family: family}); err != nil {
		return nil, errors.Wrap(err, "writing header")
	}
	return wr, nil
}

// Create creates a recording file at path.
func Create(path, family string) (*Writer, error) {
	//nolint:gosec
	file, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "creating recording")
	}
	wr, err := NewWriter(file, family)
	if err != nil {
		return nil, multierr.Combine(err, file.Close())
	}
	wr.closer = file
	return wr, nil
}

// WriteFrame records one hardware tick's bodies.
func (w *Writer) WriteFrame(ticks int64, candidates []tracking.Candidate) error {
	rec := frameRecord{Ticks: ticks, Bodies: make([]bodyRecord, 0, len(candidates))}
	for _, cand := range candidates {
		rec.Bodies = append(rec.Bodies, recordBody(cand))
	}
	return errors.Wrap(w.enc.Encode(rec), "writing frame")
}

// WriteNoFrame records a poll that found no new hardware frame.
func (w *Writer) WriteNoFrame() error {
	return errors.Wrap(w.enc.Encode(frameRecord{NoFrame: true}), "writing frame")
}

// Close flushes buffered frames and closes the file if the Writer opened it.
func (w *Writer) Close() error {
	err := w.buf.Flush()
	if w.closer != nil {
		err = multierr.Combine(err, w.closer.Close())
	}
	return err
}
