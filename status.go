package html2img

import (
	"fmt"
	"strings"
	"sync"
)

// Phase is the position of the export state machine.
type Phase int

// Export phases. Ready -> InProgress -> {Success, Failed} -> Ready.
const (
	PhaseReady Phase = iota
	PhaseInProgress
	PhaseSuccess
	PhaseFailed
)

// String implements fmt.Stringer.
func (p Phase) String() string {
	switch p {
	case PhaseReady:
		return "ready"
	case PhaseInProgress:
		return "in_progress"
	case PhaseSuccess:
		return "success"
	case PhaseFailed:
		return "failed"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// MarshalText implements encoding.TextMarshaler.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Status is the user-visible progress of the current or last export.
type Status struct {
	Phase  Phase  `json:"phase"`
	Format Format `json:"format"`
	Reason string `json:"reason,omitempty"`
}

// ReadyStatus is the idle status.
var ReadyStatus = Status{Phase: PhaseReady}

// Message renders the status line shown to users.
func (s Status) Message() string {
	label := s.Format.Label()
	switch s.Phase {
	case PhaseInProgress:
		return fmt.Sprintf("Generating %s...", label)
	case PhaseSuccess:
		return fmt.Sprintf("%s downloaded successfully!", label)
	case PhaseFailed:
		if label == "" {
			label = "export"
		}
		msg := fmt.Sprintf("Error: Could not generate %s.", label)
		if s.Reason != "" {
			msg += " (" + s.Reason + ")"
		}
		return msg
	}
	return "Ready to export."
}

// Terminal reports whether the status ends an export run.
func (s Status) Terminal() bool {
	return s.Phase == PhaseSuccess || s.Phase == PhaseFailed
}

// subscriberBuffer bounds each subscriber's queue; slow readers drop updates.
const subscriberBuffer = 8

// Reporter holds the current status and fans changes out to subscribers.
// It is safe for concurrent use.
type Reporter struct {
	mu      sync.Mutex
	current Status
	subs    map[int]chan Status
	nextID  int
}

// NewReporter returns a Reporter in the ready phase.
func NewReporter() *Reporter {
	return &Reporter{current: ReadyStatus, subs: make(map[int]chan Status)}
}

// Current returns the latest status.
func (r *Reporter) Current() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Start records that an export of format f began.
func (r *Reporter) Start(f Format) {
	r.set(Status{Phase: PhaseInProgress, Format: f})
}

// Succeed records a successful export of format f.
func (r *Reporter) Succeed(f Format) {
	r.set(Status{Phase: PhaseSuccess, Format: f})
}

// Fail records a failed export of format f. The reason is collapsed to one line.
func (r *Reporter) Fail(f Format, reason string) {
	r.set(Status{Phase: PhaseFailed, Format: f, Reason: oneLine(reason)})
}

// Reset returns the reporter to the ready phase.
func (r *Reporter) Reset() {
	r.set(ReadyStatus)
}

// Subscribe returns a channel receiving every subsequent status change,
// starting with the current one. Call cancel to stop and close the channel.
func (r *Reporter) Subscribe() (<-chan Status, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.subs == nil {
		r.subs = make(map[int]chan Status)
	}
	id := r.nextID
	r.nextID++
	ch := make(chan Status, subscriberBuffer)
	ch <- r.current
	r.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			if c, ok := r.subs[id]; ok {
				delete(r.subs, id)
				close(c)
			}
		})
	}
	return ch, cancel
}

func (r *Reporter) set(s Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = s
	for _, ch := range r.subs {
		select {
		case ch <- s:
		default:
		}
	}
}

// oneLine joins the lines of s with spaces and trims it.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
