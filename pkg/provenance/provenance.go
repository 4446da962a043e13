// Package provenance implements the append-only audit log that backs every
// computed figure in a loss report. Each calculation stage records the
// inputs, formula, source, and value behind its outputs; the recorder
// guarantees that entries are never mutated or removed once appended, so
// the trail is tamper-evident within a single run.
package provenance

import "sync"

// Entry is a single step in the audit trail. Entries are immutable once
// created; ordering within a recorder reflects the causal sequence of the
// computation, not wall-clock time.
type Entry struct {
	// StepID identifies the step. By convention the entry that finalizes a
	// stage output uses the output key itself as its StepID; that is what
	// the coverage check below keys on.
	StepID string `json:"step_id"`

	// Description is a human-readable account of what was done.
	Description string `json:"description"`

	// Formula is the human-readable formula or method used, if any. It is
	// documentation, not executable.
	Formula string `json:"formula,omitempty"`

	// SourceRef cites the table, publication, or URL the value came from.
	SourceRef string `json:"source_ref,omitempty"`

	// SourceDate is the publication or vintage date of the source.
	SourceDate string `json:"source_date,omitempty"`

	// Value is the numeric result recorded at this step.
	Value float64 `json:"value"`

	// IsFallback marks values produced from a documented fallback rather
	// than the authoritative source.
	IsFallback bool `json:"is_fallback"`
}

// Recorder is an append-only log of Entries. It is safe for concurrent
// append; callers that need per-stage grouping give each stage its own
// recorder and concatenate with Append afterward.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record appends one entry. There is no API to remove or modify entries.
func (r *Recorder) Record(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

// Append appends a group of entries preserving their order, used to
// concatenate per-stage logs into a run-level log.
func (r *Recorder) Append(entries ...Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entries...)
}

// Entries returns a copy of the recorded entries in append order.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len returns the number of recorded entries.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// UsedFallback reports whether any recorded entry is a fallback.
func (r *Recorder) UsedFallback() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.IsFallback {
			return true
		}
	}
	return false
}

// MissingCoverage returns the output keys that no entry covers. A key is
// covered when some entry's StepID equals it. Stages are required to have
// full coverage before their outputs are accepted.
func MissingCoverage(entries []Entry, keys []string) []string {
	covered := make(map[string]bool, len(entries))
	for _, e := range entries {
		covered[e.StepID] = true
	}
	var missing []string
	for _, k := range keys {
		if !covered[k] {
			missing = append(missing, k)
		}
	}
	return missing
}
