//go:build windows

package main

import "golang.org/x/sys/windows"

// raisePriority moves the process to a higher scheduling class. HIGH is tried
// first; REALTIME is never used since it can starve the system.
func raisePriority() error {
	proc := windows.CurrentProcess()
	if err := windows.SetPriorityClass(proc, windows.HIGH_PRIORITY_CLASS); err == nil {
		return nil
	}
	return windows.SetPriorityClass(proc, windows.ABOVE_NORMAL_PRIORITY_CLASS)
}
