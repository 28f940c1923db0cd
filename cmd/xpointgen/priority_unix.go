//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package main

import "golang.org/x/sys/unix"

// priorityNice is the niceness asked for; lowering it needs CAP_SYS_NICE or
// root, so failure is expected for ordinary users.
const priorityNice = -5

func raisePriority() error {
	return unix.Setpriority(unix.PRIO_PROCESS, 0, priorityNice)
}
