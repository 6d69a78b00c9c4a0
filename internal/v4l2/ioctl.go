//go:build linux

package v4l2

import (
	"syscall"
	"unsafe"
)

func ioctl(fd int, req uint, arg unsafe.Pointer) error {
	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, uintptr(fd), uintptr(req), uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

// openBlocking opens a device without O_NONBLOCK so that the buffer
// dequeue handshake blocks until the kernel has a slot to hand back.
func openBlocking(path string) (int, error) {
	return syscall.Open(path, syscall.O_RDWR, 0)
}

// openQuery opens a device non-blocking for capability queries only.
func openQuery(path string) (int, error) {
	return syscall.Open(path, syscall.O_RDWR|syscall.O_NONBLOCK, 0)
}
