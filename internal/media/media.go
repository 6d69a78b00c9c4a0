// Package media defines the self-describing units carried on a camera
// stream: stream descriptors announcing geometry and frame rate, compressed
// video frames, and the audio/metadata kinds the bridge passes over.
package media

// Codec identifies the compressed video format of a frame unit.
type Codec int

// Supported video codecs.
const (
	CodecH264 Codec = iota
	CodecH265
)

// String returns the conventional codec name.
func (c Codec) String() string {
	switch c {
	case CodecH264:
		return "h264"
	case CodecH265:
		return "h265"
	default:
		return "unknown"
	}
}

// FourCC returns the V4L2 pixel format identifier for the codec.
func (c Codec) FourCC() uint32 {
	switch c {
	case CodecH265:
		return FourCCHEVC
	default:
		return FourCCH264
	}
}

// V4L2 compressed pixel formats, little-endian fourcc encoding.
const (
	FourCCH264 uint32 = 0x34363248 // 'H264'
	FourCCHEVC uint32 = 0x43564548 // 'HEVC'
)

// Unit is one element of a camera stream. Implementations are the closed set
// of types below; consumers switch on the concrete type.
type Unit interface {
	unit()
}

// DescriptorV1 announces stream geometry and frame rate. A camera sends at
// most one per format epoch, and may send another if its configuration
// changes mid-stream.
type DescriptorV1 struct {
	Width  uint32
	Height uint32
	FPS    uint8
}

// DescriptorV2 carries the same fields as DescriptorV1 with a distinct wire
// encoding; newer firmware emits this variant.
type DescriptorV2 struct {
	Width  uint32
	Height uint32
	FPS    uint8
}

// Keyframe is a self-contained decodable frame.
type Keyframe struct {
	Codec   Codec
	Payload []byte
}

// Deltaframe is a frame that needs the preceding keyframe for decode
// context. The bridge forwards it exactly like a keyframe.
type Deltaframe struct {
	Codec   Codec
	Payload []byte
}

// Audio is an audio block. The video bridge drops these.
type Audio struct {
	Payload []byte
}

// Metadata is an opaque metadata block. The video bridge drops these.
type Metadata struct {
	Payload []byte
}

func (DescriptorV1) unit() {}
func (DescriptorV2) unit() {}
func (Keyframe) unit()     {}
func (Deltaframe) unit()   {}
func (Audio) unit()        {}
func (Metadata) unit()     {}
