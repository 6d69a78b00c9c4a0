// Package replay implements the camera session contract on top of recorded
// unit streams. A replay file is a flat sequence of length-prefixed records,
// one per media unit, and stands in for a live camera during development,
// benchmarks, and loopback testing.
package replay

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/smazurov/camlink/internal/camera"
	"github.com/smazurov/camlink/internal/media"
)

// File format: 4-byte magic, then records. Each record is a kind byte
// followed by kind-specific fields, all little-endian.
var magic = [4]byte{'C', 'L', 'R', '1'}

const (
	kindDescriptorV1 uint8 = 1
	kindDescriptorV2 uint8 = 2
	kindKeyframe     uint8 = 3
	kindDeltaframe   uint8 = 4
	kindAudio        uint8 = 5
	kindMetadata     uint8 = 6
)

// maxPayload bounds a single record so a corrupt length field cannot drive
// an arbitrarily large allocation.
const maxPayload = 64 << 20

// Options control replay pacing and termination.
type Options struct {
	// Interval is the delay before each frame unit. Zero replays as fast as
	// the consumer drains.
	Interval time.Duration

	// Loop restarts the file after the last record instead of ending the
	// session.
	Loop bool
}

// Session replays media units from a file. It satisfies camera.Session.
type Session struct {
	path    string
	opts    Options
	file    *os.File
	r       *bufio.Reader
	started time.Time
}

// Open opens a replay session for the given file.
func Open(path string, opts Options) (*Session, error) {
	s := &Session{path: path, opts: opts, started: time.Now()}
	if err := s.rewind(); err != nil {
		return nil, err
	}
	return s, nil
}

// Connector adapts Open to the camera.Connector signature, replaying the
// target's ReplayPath.
func Connector(opts Options) camera.Connector {
	return func(_ context.Context, target camera.Target) (camera.Session, error) {
		if target.ReplayPath == "" {
			return nil, fmt.Errorf("camera %s has no replay file", target.Name)
		}
		return Open(target.ReplayPath, opts)
	}
}

func (s *Session) rewind() error {
	if s.file != nil {
		s.file.Close()
	}
	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("failed to open replay file: %w", err)
	}
	r := bufio.NewReader(f)
	var m [4]byte
	if _, err := io.ReadFull(r, m[:]); err != nil {
		f.Close()
		return fmt.Errorf("failed to read replay header: %w", err)
	}
	if m != magic {
		f.Close()
		return fmt.Errorf("%s is not a replay file", s.path)
	}
	s.file = f
	s.r = r
	return nil
}

// NextUnit returns the next recorded unit. At end of file it either rewinds
// (Loop) or returns io.EOF, which the supervisor treats as a dropped stream.
func (s *Session) NextUnit(ctx context.Context) (media.Unit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	u, err := s.readUnit()
	if errors.Is(err, io.EOF) && s.opts.Loop {
		if err := s.rewind(); err != nil {
			return nil, err
		}
		u, err = s.readUnit()
	}
	if err != nil {
		return nil, err
	}
	if s.opts.Interval > 0 {
		if _, frame := frameCodec(u); frame {
			select {
			case <-time.After(s.opts.Interval):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return u, nil
}

func frameCodec(u media.Unit) (media.Codec, bool) {
	switch u := u.(type) {
	case media.Keyframe:
		return u.Codec, true
	case media.Deltaframe:
		return u.Codec, true
	default:
		return 0, false
	}
}

func (s *Session) readUnit() (media.Unit, error) {
	kind, err := s.r.ReadByte()
	if err != nil {
		return nil, err
	}
	switch kind {
	case kindDescriptorV1, kindDescriptorV2:
		var fields struct {
			Width  uint32
			Height uint32
			FPS    uint8
		}
		if err := binary.Read(s.r, binary.LittleEndian, &fields); err != nil {
			return nil, fmt.Errorf("truncated descriptor record: %w", err)
		}
		if kind == kindDescriptorV1 {
			return media.DescriptorV1{Width: fields.Width, Height: fields.Height, FPS: fields.FPS}, nil
		}
		return media.DescriptorV2{Width: fields.Width, Height: fields.Height, FPS: fields.FPS}, nil
	case kindKeyframe, kindDeltaframe:
		codec, err := s.r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("truncated frame record: %w", err)
		}
		payload, err := s.readPayload()
		if err != nil {
			return nil, err
		}
		c := media.Codec(codec)
		if kind == kindKeyframe {
			return media.Keyframe{Codec: c, Payload: payload}, nil
		}
		return media.Deltaframe{Codec: c, Payload: payload}, nil
	case kindAudio:
		payload, err := s.readPayload()
		if err != nil {
			return nil, err
		}
		return media.Audio{Payload: payload}, nil
	case kindMetadata:
		payload, err := s.readPayload()
		if err != nil {
			return nil, err
		}
		return media.Metadata{Payload: payload}, nil
	default:
		return nil, fmt.Errorf("unknown record kind 0x%02x", kind)
	}
}

func (s *Session) readPayload() ([]byte, error) {
	var n uint32
	if err := binary.Read(s.r, binary.LittleEndian, &n); err != nil {
		return nil, fmt.Errorf("truncated record length: %w", err)
	}
	if n > maxPayload {
		return nil, fmt.Errorf("record payload of %d bytes exceeds limit", n)
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(s.r, payload); err != nil {
		return nil, fmt.Errorf("truncated record payload: %w", err)
	}
	return payload, nil
}

// Clock reports the session start time so the management path sees a camera
// with its clock already set.
func (s *Session) Clock(_ context.Context) (*time.Time, error) {
	t := s.started
	return &t, nil
}

// SetClock accepts and discards the new time.
func (s *Session) SetClock(_ context.Context, _ time.Time) error {
	return nil
}

// Firmware identifies the replay transport in place of a firmware version.
func (s *Session) Firmware(_ context.Context) (string, error) {
	return "replay/" + s.path, nil
}

// Close releases the underlying file.
func (s *Session) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
