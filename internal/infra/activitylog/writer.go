package activitylog

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Writer is the process-wide activity log. Every line goes to the console as
// is and to LOG_DIR/log_YYYY-MM-DD.txt prefixed with a timestamp.
type Writer struct {
	dir     string
	console io.Writer
	now     func() time.Time

	mu   sync.Mutex
	day  string
	file *os.File
}

func New(dir string, console io.Writer) *Writer {
	return &Writer{dir: dir, console: console, now: time.Now}
}

// Write never fails because of the file: a log directory problem is
// reported on the console and the line is still printed there.
func (w *Writer) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.console != nil {
		w.console.Write(p)
	}

	now := w.now()
	f, err := w.fileFor(now)
	if err != nil {
		if w.console != nil {
			fmt.Fprintf(w.console, "⚠️ activity log indisponível: %v\n", err)
		}
		return len(p), nil
	}

	stamp := now.Format("2006-01-02 15:04:05")
	for _, line := range bytes.SplitAfter(p, []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		fmt.Fprintf(f, "[%s] %s", stamp, line)
		if line[len(line)-1] != '\n' {
			f.Write([]byte("\n"))
		}
	}
	return len(p), nil
}

// Path devolve o arquivo do dia informado.
func (w *Writer) Path(t time.Time) string {
	return filepath.Join(w.dir, "log_"+t.Format("2006-01-02")+".txt")
}

func (w *Writer) fileFor(now time.Time) (*os.File, error) {
	day := now.Format("2006-01-02")
	if w.file != nil && w.day == day {
		return w.file, nil
	}
	if w.file != nil {
		w.file.Close()
		w.file = nil
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(w.Path(now), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	w.file = f
	w.day = day
	return f, nil
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}
