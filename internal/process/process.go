package process

import (
	"errors"
	"time"
)

// ErrInvalidPID is returned for PIDs that would target the caller's own
// process group or every process.
var ErrInvalidPID = errors.New("invalid pid")

// pollInterval is how often TerminateTree checks for exit during grace.
const pollInterval = 50 * time.Millisecond

// TerminateTree asks the process tree rooted at pid to exit, waits up to
// grace for it to go away, then kills what remains.
// A process that is already gone is not an error.
func TerminateTree(pid int, grace time.Duration) error {
	if pid <= 1 {
		return ErrInvalidPID
	}
	if !Alive(pid) {
		return nil
	}

	_ = signalTree(pid)
	deadline := time.Now().Add(grace)
	for time.Now().Before(deadline) {
		if !Alive(pid) {
			return nil
		}
		time.Sleep(pollInterval)
	}
	return killTree(pid)
}
