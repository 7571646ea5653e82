//go:build windows

package adapter

import "syscall"

// WSAECONNREFUSED
var errConnRefused error = syscall.Errno(10061)
