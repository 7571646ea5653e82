//go:build !windows

package adapter

import "syscall"

var errConnRefused error = syscall.ECONNREFUSED
