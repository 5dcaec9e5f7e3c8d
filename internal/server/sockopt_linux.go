//go:build linux

package server

import (
	"fmt"
	"net"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// setUserTimeout bounds how long data written to conn may stay
// unacknowledged before the kernel drops the connection, so a writer
// blocked on a vanished client fails instead of hanging. d <= 0 and
// connections without a socket are left alone.
func setUserTimeout(conn net.Conn, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	sc, ok := conn.(syscall.Conn)
	if !ok {
		return nil
	}
	raw, err := sc.SyscallConn()
	if err != nil {
		return err
	}
	var opErr error
	err = raw.Control(func(fd uintptr) {
		opErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_USER_TIMEOUT, int(d.Milliseconds()))
	})
	if err != nil {
		return err
	}
	if opErr != nil {
		return fmt.Errorf("set TCP_USER_TIMEOUT: %w", opErr)
	}
	return nil
}
