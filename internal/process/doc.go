// Package process terminates browser process trees left behind by a closed
// capture engine.
package process
