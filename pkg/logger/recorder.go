package logger

import (
	"fmt"
	"sync"
)

// Entry is one record captured by a Recorder.
type Entry struct {
	Severity Severity
	Msg      string
	Args     []any
	Detail   string
}

// Recorder is an in-memory Logger used by tests to assert on log calls.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
	ctx     []any
	parent  *Recorder
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) root() *Recorder {
	if r.parent != nil {
		return r.parent.root()
	}
	return r
}

func (r *Recorder) add(sev Severity, msg, detail string, args []any) {
	root := r.root()
	root.mu.Lock()
	defer root.mu.Unlock()
	all := append(append([]any(nil), r.ctx...), args...)
	root.entries = append(root.entries, Entry{Severity: sev, Msg: msg, Args: all, Detail: detail})
}

func (r *Recorder) Debug(msg string, args ...any)  { r.add(SeverityDebug, msg, "", args) }
func (r *Recorder) Info(msg string, args ...any)   { r.add(SeverityInfo, msg, "", args) }
func (r *Recorder) Notice(msg string, args ...any) { r.add(SeverityNotice, msg, "", args) }
func (r *Recorder) Warn(msg string, args ...any)   { r.add(SeverityWarning, msg, "", args) }
func (r *Recorder) Error(msg string, args ...any)  { r.add(SeverityError, msg, "", args) }
func (r *Recorder) Emerg(msg string, args ...any)  { r.add(SeverityEmerg, msg, "", args) }

func (r *Recorder) Log(msg string, sev Severity, detail string) { r.add(sev, msg, detail, nil) }

func (r *Recorder) With(args ...any) Logger {
	return &Recorder{ctx: append(append([]any(nil), r.ctx...), args...), parent: r}
}

// Entries returns a copy of everything recorded so far.
func (r *Recorder) Entries() []Entry {
	root := r.root()
	root.mu.Lock()
	defer root.mu.Unlock()
	return append([]Entry(nil), root.entries...)
}

// Count returns how many records at sev have msg.
func (r *Recorder) Count(sev Severity, msg string) int {
	n := 0
	for _, e := range r.Entries() {
		if e.Severity == sev && e.Msg == msg {
			n++
		}
	}
	return n
}

// Messages returns the messages recorded at sev.
func (r *Recorder) Messages(sev Severity) []string {
	var out []string
	for _, e := range r.Entries() {
		if e.Severity == sev {
			out = append(out, e.Msg)
		}
	}
	return out
}

// Attr returns the value of key in e's args.
func (e Entry) Attr(key string) (any, bool) {
	for i := 0; i+1 < len(e.Args); i += 2 {
		if k, ok := e.Args[i].(string); ok && k == key {
			return e.Args[i+1], true
		}
	}
	return nil, false
}

func (e Entry) String() string {
	return fmt.Sprintf("%s %s %v", e.Severity, e.Msg, e.Args)
}

// Personal.AI order the ending
