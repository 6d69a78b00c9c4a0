// Package sink delivers compressed video frames into one V4L2 output
// device. The device's buffers are sized for a worst-case frame, so every
// delivery copies exactly the payload length and reports that length to the
// kernel; the consumer has no other way to learn where a frame ends.
package sink

import (
	"fmt"
	"log/slog"

	"github.com/smazurov/camlink/internal/media"
)

// Format is the complete declaration a V4L2 output device needs before the
// first frame write.
type Format struct {
	Width  uint32
	Height uint32
	FPS    uint8
	Codec  media.Codec
}

func (f Format) String() string {
	return fmt.Sprintf("%dx%d@%d %s", f.Width, f.Height, f.FPS, f.Codec)
}

// device is the slice of the V4L2 output surface the sink drives. It is
// satisfied by *v4l2.Output.
type device interface {
	SetFormat(width, height, fourcc, sizeImage uint32) error
	SetFPS(fps uint32) error
	InitBuffers(count uint32) error
	NextBuffer() (int, []byte, error)
	Enqueue(index int, used uint32) error
	ReleaseBuffers() error
	Path() string
	Close() error
}

// bufferCount is how many output buffers the sink keeps in flight with the
// kernel.
const bufferCount = 4

// minSizeImage floors the per-buffer allocation so tiny geometries still
// hold a worst-case compressed frame.
const minSizeImage = 1 << 20

// Sink owns exactly one video output device. It is driven by a single
// pipeline goroutine; format changes and deliveries never overlap.
type Sink struct {
	dev    device
	logger *slog.Logger

	format    Format
	committed bool
}

// New wraps an output device. Used directly by tests; production code goes
// through Open.
func New(dev device, logger *slog.Logger) *Sink {
	return &Sink{dev: dev, logger: logger}
}

// Format returns the committed format, if any.
func (s *Sink) Format() (Format, bool) {
	return s.format, s.committed
}

// Apply declares or re-declares the output format. With an identical format
// already committed it is a no-op. Otherwise buffers are torn down and
// re-requested under the new geometry; in-flight frames are gone, which is
// acceptable because the stream they belonged to is over.
func (s *Sink) Apply(f Format) error {
	if s.committed && f == s.format {
		return nil
	}
	if f.Width == 0 || f.Height == 0 || f.FPS == 0 {
		return fmt.Errorf("incomplete format %s", f)
	}

	if s.committed {
		s.logger.Info("Reconfiguring output device", "device", s.dev.Path(), "format", f.String())
		if err := s.dev.ReleaseBuffers(); err != nil {
			return fmt.Errorf("failed to tear down old format: %w", err)
		}
		s.committed = false
	}

	sizeImage := f.Width * f.Height
	if sizeImage < minSizeImage {
		sizeImage = minSizeImage
	}

	if err := s.dev.SetFormat(f.Width, f.Height, f.Codec.FourCC(), sizeImage); err != nil {
		return err
	}
	if err := s.dev.SetFPS(uint32(f.FPS)); err != nil {
		return err
	}
	if err := s.dev.InitBuffers(bufferCount); err != nil {
		return err
	}

	s.format = f
	s.committed = true
	s.logger.Info("Output format committed", "device", s.dev.Path(), "format", f.String())
	return nil
}

// Deliver copies one compressed frame into the next writable kernel buffer.
// The buffer is oversized; exactly len(payload) bytes are written and
// reported, and the remainder is never touched.
func (s *Sink) Deliver(codec media.Codec, payload []byte) error {
	if !s.committed {
		return fmt.Errorf("frame delivered before format was negotiated")
	}
	if codec != s.format.Codec {
		return fmt.Errorf("frame codec %s does not match committed %s", codec, s.format.Codec)
	}
	if len(payload) == 0 {
		return fmt.Errorf("empty frame payload")
	}

	index, buf, err := s.dev.NextBuffer()
	if err != nil {
		return err
	}
	if len(payload) > len(buf) {
		return fmt.Errorf("frame of %d bytes exceeds %d-byte output buffer", len(payload), len(buf))
	}

	copy(buf[:len(payload)], payload)
	return s.dev.Enqueue(index, uint32(len(payload)))
}

// Close releases the device.
func (s *Sink) Close() error {
	return s.dev.Close()
}
