//go:build linux

package v4l2

import (
	"fmt"
	"syscall"
	"unsafe"
)

// Output owns one V4L2 video output device. It is not safe for concurrent
// use; one stream pipeline owns one Output for its whole lifetime.
type Output struct {
	fd   int
	path string

	buffers   [][]byte
	unused    []int
	streaming bool
	sizeImage uint32
}

// OpenOutput opens /dev/video<index> and verifies it supports streaming
// video output.
func OpenOutput(index int) (*Output, error) {
	path := fmt.Sprintf("/dev/video%d", index)
	fd, err := openBlocking(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	cap := v4l2Capability{}
	if err := ioctl(fd, vidiocQuerycap, unsafe.Pointer(&cap)); err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("%s is not a V4L2 device: %w", path, err)
	}

	caps := cap.capabilities
	if caps&capDeviceCaps != 0 {
		caps = cap.deviceCaps
	}
	if caps&capVideoOutput == 0 {
		syscall.Close(fd)
		return nil, fmt.Errorf("%s does not support video output", path)
	}
	if caps&capStreaming == 0 {
		syscall.Close(fd)
		return nil, fmt.Errorf("%s does not support streaming io", path)
	}

	return &Output{fd: fd, path: path}, nil
}

// Path returns the device path.
func (o *Output) Path() string {
	return o.path
}

// SetFormat declares the output geometry and pixel format. sizeImage is the
// worst-case compressed frame size to request per buffer; the driver may
// round it up. Valid only while no buffers are mapped.
func (o *Output) SetFormat(width, height, fourcc, sizeImage uint32) error {
	if len(o.buffers) > 0 {
		return fmt.Errorf("%s: format change with buffers mapped", o.path)
	}

	format := v4l2Format{typ: bufTypeVideoOutput}
	format.pix.width = width
	format.pix.height = height
	format.pix.pixelformat = fourcc
	format.pix.field = fieldNone
	format.pix.sizeimage = sizeImage

	if err := ioctl(o.fd, vidiocSFmt, unsafe.Pointer(&format)); err != nil {
		return fmt.Errorf("%s rejected format %dx%d %s: %w",
			o.path, width, height, FourCCString(fourcc), err)
	}
	// The driver reports the geometry it actually accepted.
	if format.pix.width != width || format.pix.height != height || format.pix.pixelformat != fourcc {
		return fmt.Errorf("%s adjusted format to %dx%d %s",
			o.path, format.pix.width, format.pix.height, FourCCString(format.pix.pixelformat))
	}
	o.sizeImage = format.pix.sizeimage
	return nil
}

// SetFPS declares the nominal output frame rate.
func (o *Output) SetFPS(fps uint32) error {
	if fps == 0 {
		return fmt.Errorf("%s: zero frame rate", o.path)
	}
	parm := v4l2Streamparm{typ: bufTypeVideoOutput}
	parm.output.timeperframe = v4l2Fract{numerator: 1, denominator: fps}
	if err := ioctl(o.fd, vidiocSParm, unsafe.Pointer(&parm)); err != nil {
		return fmt.Errorf("%s rejected %d fps: %w", o.path, fps, err)
	}
	return nil
}

// InitBuffers requests count mmap buffers from the driver and maps them.
func (o *Output) InitBuffers(count uint32) error {
	req := v4l2RequestBuffers{
		count:  count,
		typ:    bufTypeVideoOutput,
		memory: memoryMmap,
	}
	if err := ioctl(o.fd, vidiocReqbufs, unsafe.Pointer(&req)); err != nil {
		return fmt.Errorf("%s: buffer request failed: %w", o.path, err)
	}
	if req.count < 2 {
		return fmt.Errorf("%s: driver granted only %d buffers", o.path, req.count)
	}

	o.buffers = make([][]byte, req.count)
	o.unused = o.unused[:0]
	for i := range o.buffers {
		buf := v4l2Buffer{
			index:  uint32(i),
			typ:    bufTypeVideoOutput,
			memory: memoryMmap,
		}
		if err := ioctl(o.fd, vidiocQuerybuf, unsafe.Pointer(&buf)); err != nil {
			o.unmapAll()
			return fmt.Errorf("%s: failed to query buffer %d: %w", o.path, i, err)
		}
		data, err := syscall.Mmap(o.fd, buf.mmapOffset(), int(buf.length),
			syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED)
		if err != nil {
			o.unmapAll()
			return fmt.Errorf("%s: failed to map buffer %d: %w", o.path, i, err)
		}
		o.buffers[i] = data
		o.unused = append(o.unused, i)
	}
	return nil
}

// NextBuffer hands back a writable buffer and its index. Until every buffer
// has been queued once it returns a fresh slot; after that it blocks in the
// kernel until the driver releases one.
func (o *Output) NextBuffer() (int, []byte, error) {
	if n := len(o.unused); n > 0 {
		idx := o.unused[n-1]
		o.unused = o.unused[:n-1]
		return idx, o.buffers[idx], nil
	}

	buf := v4l2Buffer{
		typ:    bufTypeVideoOutput,
		memory: memoryMmap,
	}
	if err := ioctl(o.fd, vidiocDqbuf, unsafe.Pointer(&buf)); err != nil {
		return 0, nil, fmt.Errorf("%s: buffer dequeue failed: %w", o.path, err)
	}
	if int(buf.index) >= len(o.buffers) {
		return 0, nil, fmt.Errorf("%s: driver returned unknown buffer %d", o.path, buf.index)
	}
	return int(buf.index), o.buffers[buf.index], nil
}

// Enqueue submits a filled buffer. used is the number of valid bytes at the
// start of the buffer; the consumer sees exactly that many. Streaming is
// switched on with the first queued buffer.
func (o *Output) Enqueue(index int, used uint32) error {
	buf := v4l2Buffer{
		index:     uint32(index),
		typ:       bufTypeVideoOutput,
		memory:    memoryMmap,
		bytesused: used,
		field:     fieldNone,
	}
	if err := ioctl(o.fd, vidiocQbuf, unsafe.Pointer(&buf)); err != nil {
		return fmt.Errorf("%s: buffer queue failed: %w", o.path, err)
	}

	if !o.streaming {
		typ := int32(bufTypeVideoOutput)
		if err := ioctl(o.fd, vidiocStreamon, unsafe.Pointer(&typ)); err != nil {
			return fmt.Errorf("%s: failed to start streaming: %w", o.path, err)
		}
		o.streaming = true
	}
	return nil
}

// ReleaseBuffers stops streaming, unmaps all buffers, and returns them to
// the driver so a new format can be declared.
func (o *Output) ReleaseBuffers() error {
	if o.streaming {
		typ := int32(bufTypeVideoOutput)
		if err := ioctl(o.fd, vidiocStreamoff, unsafe.Pointer(&typ)); err != nil {
			return fmt.Errorf("%s: failed to stop streaming: %w", o.path, err)
		}
		o.streaming = false
	}
	o.unmapAll()

	req := v4l2RequestBuffers{
		count:  0,
		typ:    bufTypeVideoOutput,
		memory: memoryMmap,
	}
	if err := ioctl(o.fd, vidiocReqbufs, unsafe.Pointer(&req)); err != nil {
		return fmt.Errorf("%s: failed to release buffers: %w", o.path, err)
	}
	return nil
}

func (o *Output) unmapAll() {
	for i, b := range o.buffers {
		if b != nil {
			syscall.Munmap(b)
			o.buffers[i] = nil
		}
	}
	o.buffers = nil
	o.unused = o.unused[:0]
}

// Close releases buffers and the device.
func (o *Output) Close() error {
	o.unmapAll()
	return syscall.Close(o.fd)
}
