package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"

	"stalkercraft.ai/internal/telemetry"
)

// SegmentWriter appends JSON lines to numbered zstd segments under baseDir.
// Callers pick the segment per record; moving to a different segment closes
// the current file.
type SegmentWriter struct {
	baseDir    string
	prefix     string
	// flushEvery bounds how many lines sit in the buffer; 0 flushes only on
	// rotation and Close.
	flushEvery int

	mu       sync.Mutex
	segment  uint64
	open     bool
	f        *os.File
	enc      *zstd.Encoder
	w        *bufio.Writer
	pending  int
	lines    int64
	segments int
}

type WriterStats struct {
	Lines    int64
	Segments int
}

func NewSegmentWriter(baseDir, prefix string, flushEvery int) *SegmentWriter {
	return &SegmentWriter{baseDir: baseDir, prefix: prefix, flushEvery: flushEvery}
}

func (w *SegmentWriter) Write(segment uint64, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode line: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.open || segment != w.segment {
		if err := w.openLocked(segment); err != nil {
			return err
		}
	}
	b = append(b, '\n')
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	w.lines++
	w.pending++
	if w.flushEvery > 0 && w.pending >= w.flushEvery {
		w.pending = 0
		return w.w.Flush()
	}
	return nil
}

func (w *SegmentWriter) Stats() WriterStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return WriterStats{Lines: w.lines, Segments: w.segments}
}

func (w *SegmentWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

// Path returns the file a segment is written to.
func (w *SegmentWriter) Path(segment uint64) string {
	return filepath.Join(w.baseDir, fmt.Sprintf("%s-%04d.jsonl.zst", w.prefix, segment))
}

func (w *SegmentWriter) openLocked(segment uint64) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	p := w.Path(segment)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	// Appending starts a new zstd frame; readers decode concatenated frames.
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f, w.enc = f, enc
	w.w = bufio.NewWriterSize(enc, 64*1024)
	w.segment, w.open = segment, true
	w.pending = 0
	w.segments++
	return nil
}

func (w *SegmentWriter) closeLocked() error {
	if !w.open {
		return nil
	}
	w.open = false
	ferr := w.w.Flush()
	eerr := w.enc.Close()
	cerr := w.f.Close()
	w.f, w.enc, w.w = nil, nil, nil
	for _, err := range []error{ferr, eerr, cerr} {
		if err != nil {
			return fmt.Errorf("close segment %d: %w", w.segment, err)
		}
	}
	return nil
}

// EventLogger is a telemetry.Sink writing agent events as compressed JSONL,
// one segment per segmentTicks of simulation time.
type EventLogger struct {
	w            *SegmentWriter
	segmentTicks uint64
}

func NewEventLogger(runDir string, segmentTicks uint64) *EventLogger {
	return &EventLogger{
		w:            NewSegmentWriter(filepath.Join(runDir, "events"), "stalker", 64),
		segmentTicks: max(segmentTicks, 1),
	}
}

func (l *EventLogger) Emit(e telemetry.Event) error {
	return l.w.Write(e.Tick/l.segmentTicks, e)
}

func (l *EventLogger) Stats() WriterStats { return l.w.Stats() }
func (l *EventLogger) Close() error       { return l.w.Close() }
