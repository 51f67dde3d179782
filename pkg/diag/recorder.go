package diag

import "sync"

// Recorder keeps every diagnostic it receives and optionally forwards it.
type Recorder struct {
	mu    sync.Mutex
	diags []Diagnostic
	next  Sink
}

// NewRecorder returns a Recorder forwarding to next, which may be nil.
func NewRecorder(next Sink) *Recorder {
	return &Recorder{next: next}
}

func (r *Recorder) Log(level Level, loc Location, format string, args ...any) {
	d := Diagnostic{Level: level, Loc: loc, Message: sprintf(format, args)}

	r.mu.Lock()
	r.diags = append(r.diags, d)
	r.mu.Unlock()

	if r.next != nil {
		r.next.Log(level, loc, format, args...)
	}
}

// Diagnostics returns a copy of everything recorded so far.
func (r *Recorder) Diagnostics() []Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Diagnostic, len(r.diags))
	copy(out, r.diags)
	return out
}

// Count returns how many diagnostics were recorded at level or above.
func (r *Recorder) Count(level Level) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, d := range r.diags {
		if d.Level >= level {
			n++
		}
	}
	return n
}

// Errors is shorthand for Count(Error).
func (r *Recorder) Errors() int {
	return r.Count(Error)
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	r.diags = nil
	r.mu.Unlock()
}
