//go:build windows

package process

import (
	"os"
	"os/exec"
	"strconv"
)

// Alive reports whether pid still exists.
func Alive(pid int) bool {
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	_ = p.Release()
	return true
}

// signalTree asks the tree rooted at pid to close (taskkill /T).
func signalTree(pid int) error {
	return exec.Command("taskkill", "/T", "/PID", strconv.Itoa(pid)).Run() // #nosec G204 -- numeric pid
}

// killTree force-kills the tree rooted at pid (taskkill /F /T).
func killTree(pid int) error {
	return exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run() // #nosec G204 -- numeric pid
}
