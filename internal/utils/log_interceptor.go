package utils

import (
	"bytes"
	"io"
	"log/slog"
	"sync"
	"time"
)

// LogInterceptor prefixes every complete line written to it with a sequence
// number and a timestamp before passing it on to the target. Partial lines are
// held back until their newline arrives or Close is called.
type LogInterceptor struct {
	mu      sync.Mutex
	target  io.Writer
	seq     uint64
	pending bytes.Buffer
	now     func() time.Time
}

func NewLogInterceptor(target io.Writer) *LogInterceptor {
	return &LogInterceptor{target: target, now: time.Now}
}

// Write always reports len(p) on success; the bytes forwarded to the target
// include the added prefixes.
func (i *LogInterceptor) Write(p []byte) (int, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.pending.Write(p)
	for {
		idx := bytes.IndexByte(i.pending.Bytes(), '\n')
		if idx < 0 {
			break
		}
		line := i.pending.Next(idx + 1)
		line = bytes.TrimRight(line, "\r\n")
		if err := i.writeLine(line); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

// Close flushes a trailing partial line.
func (i *LogInterceptor) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.pending.Len() == 0 {
		return nil
	}
	line := bytes.TrimRight(i.pending.Bytes(), "\r\n")
	i.pending.Reset()
	return i.writeLine(line)
}

func (i *LogInterceptor) writeLine(line []byte) error {
	i.seq++
	prefix := slog.Uint64("line", i.seq).String() + " " +
		slog.String("time", i.now().Format(time.RFC3339)).String() + " "

	var buf bytes.Buffer
	buf.Grow(len(prefix) + len(line) + 1)
	buf.WriteString(prefix)
	buf.Write(line)
	buf.WriteByte('\n')
	_, err := i.target.Write(buf.Bytes())
	return err
}
