// Package process terminates the browser process tree a layout engine
// leaves behind.
package process
