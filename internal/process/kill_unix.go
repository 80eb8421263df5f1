//go:build !windows

package process

import (
	"errors"
	"syscall"
)

// Alive reports whether pid still exists. Zombies count as alive.
func Alive(pid int) bool {
	err := syscall.Kill(pid, 0)
	return err == nil || errors.Is(err, syscall.EPERM)
}

// signalTree sends SIGTERM to the process group led by pid.
func signalTree(pid int) error {
	return syscall.Kill(-pid, syscall.SIGTERM)
}

// killTree sends SIGKILL to the process group led by pid.
func killTree(pid int) error {
	err := syscall.Kill(-pid, syscall.SIGKILL)
	if errors.Is(err, syscall.ESRCH) {
		return nil
	}
	return err
}
