package replay

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/smazurov/camlink/internal/media"
)

// Writer produces replay files. It is used by tests and by tooling that
// converts captured camera traffic into fixtures.
type Writer struct {
	file *os.File
	w    *bufio.Writer
}

// Create creates or truncates a replay file and writes the header.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create replay file: %w", err)
	}
	w := bufio.NewWriter(f)
	if _, err := w.Write(magic[:]); err != nil {
		f.Close()
		return nil, err
	}
	return &Writer{file: f, w: w}, nil
}

// Append writes one unit record.
func (w *Writer) Append(u media.Unit) error {
	switch u := u.(type) {
	case media.DescriptorV1:
		return w.writeDescriptor(kindDescriptorV1, u.Width, u.Height, u.FPS)
	case media.DescriptorV2:
		return w.writeDescriptor(kindDescriptorV2, u.Width, u.Height, u.FPS)
	case media.Keyframe:
		return w.writeFrame(kindKeyframe, u.Codec, u.Payload)
	case media.Deltaframe:
		return w.writeFrame(kindDeltaframe, u.Codec, u.Payload)
	case media.Audio:
		return w.writeBlob(kindAudio, u.Payload)
	case media.Metadata:
		return w.writeBlob(kindMetadata, u.Payload)
	default:
		return fmt.Errorf("unsupported unit type %T", u)
	}
}

func (w *Writer) writeDescriptor(kind uint8, width, height uint32, fps uint8) error {
	if err := w.w.WriteByte(kind); err != nil {
		return err
	}
	fields := struct {
		Width  uint32
		Height uint32
		FPS    uint8
	}{width, height, fps}
	return binary.Write(w.w, binary.LittleEndian, &fields)
}

func (w *Writer) writeFrame(kind uint8, codec media.Codec, payload []byte) error {
	if err := w.w.WriteByte(kind); err != nil {
		return err
	}
	if err := w.w.WriteByte(uint8(codec)); err != nil {
		return err
	}
	return w.writePayload(payload)
}

func (w *Writer) writeBlob(kind uint8, payload []byte) error {
	if err := w.w.WriteByte(kind); err != nil {
		return err
	}
	return w.writePayload(payload)
}

func (w *Writer) writePayload(payload []byte) error {
	if err := binary.Write(w.w, binary.LittleEndian, uint32(len(payload))); err != nil {
		return err
	}
	_, err := w.w.Write(payload)
	return err
}

// Close flushes buffered records and closes the file.
func (w *Writer) Close() error {
	if err := w.w.Flush(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}
