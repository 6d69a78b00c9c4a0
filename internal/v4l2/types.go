//go:build linux

package v4l2

import "bytes"

// Capability flags.
const (
	capVideoOutput = 0x00000002
	capStreaming   = 0x04000000
	capDeviceCaps  = 0x80000000
)

// Buffer and memory types.
const (
	bufTypeVideoOutput = 2
	memoryMmap         = 1
)

// Field order: progressive frames only.
const fieldNone = 1

// FourCCString renders a pixel format identifier as its four-character code.
func FourCCString(fourcc uint32) string {
	return string([]byte{
		byte(fourcc),
		byte(fourcc >> 8),
		byte(fourcc >> 16),
		byte(fourcc >> 24),
	})
}

// cstr converts a null-terminated byte slice to a Go string.
func cstr(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}
