//go:build linux

// Package v4l2 provides pure Go bindings to the Video4Linux2 (V4L2) output
// API used to feed loopback video devices.
//
// This package does not use cgo, enabling simple cross-compilation for
// different Linux architectures (amd64, arm64, arm).
//
// # Output Devices
//
// Open a video output device, declare its format, and stream buffers:
//
//	out, err := v4l2.OpenOutput(0) // /dev/video0
//	out.SetFormat(1920, 1080, fourcc)
//	out.SetFPS(15)
//	out.InitBuffers(4)
//	for {
//	    idx, buf, _ := out.NextBuffer() // blocking handshake with the kernel
//	    n := copy(buf, frame)
//	    out.Enqueue(idx, uint32(n))
//	}
//
// The kernel allocates each buffer at the declared worst-case image size;
// Enqueue's used-length is what tells the consumer where the real frame
// ends.
//
// # Device Enumeration
//
// Use FindOutputDevices to discover all V4L2 video output devices:
//
//	devices, err := v4l2.FindOutputDevices()
//	for _, dev := range devices {
//	    fmt.Printf("%s: %s\n", dev.DevicePath, dev.DeviceName)
//	}
package v4l2
