//go:build linux && (amd64 || arm64)

package v4l2

import (
	"syscall"
	"unsafe"
)

// Compile-time struct size assertions.
// These will cause build failures if struct sizes don't match kernel expectations.
var (
	_ [104]byte = [unsafe.Sizeof(v4l2Capability{})]byte{}
	_ [48]byte  = [unsafe.Sizeof(v4l2PixFormat{})]byte{}
	_ [208]byte = [unsafe.Sizeof(v4l2Format{})]byte{}
	_ [20]byte  = [unsafe.Sizeof(v4l2RequestBuffers{})]byte{}
	_ [16]byte  = [unsafe.Sizeof(v4l2Timecode{})]byte{}
	_ [88]byte  = [unsafe.Sizeof(v4l2Buffer{})]byte{}
	_ [8]byte   = [unsafe.Sizeof(v4l2Fract{})]byte{}
	_ [40]byte  = [unsafe.Sizeof(v4l2OutputParm{})]byte{}
	_ [204]byte = [unsafe.Sizeof(v4l2Streamparm{})]byte{}
)

// IOCTL constants for 64-bit architectures.
const (
	vidiocQuerycap  = 0x80685600
	vidiocGFmt      = 0xc0d05604
	vidiocSFmt      = 0xc0d05605
	vidiocReqbufs   = 0xc0145608
	vidiocQuerybuf  = 0xc0585609
	vidiocQbuf      = 0xc058560f
	vidiocDqbuf     = 0xc0585611
	vidiocStreamon  = 0x40045612
	vidiocStreamoff = 0x40045613
	vidiocSParm     = 0xc0cc5616
)

// v4l2Capability has size 104 bytes.
type v4l2Capability struct {
	driver       [16]byte  // offset 0
	card         [32]byte  // offset 16
	busInfo      [32]byte  // offset 48
	version      uint32    // offset 80
	capabilities uint32    // offset 84
	deviceCaps   uint32    // offset 88
	reserved     [3]uint32 // offset 92
}

// v4l2PixFormat has size 48 bytes.
type v4l2PixFormat struct {
	width        uint32 // offset 0
	height       uint32 // offset 4
	pixelformat  uint32 // offset 8
	field        uint32 // offset 12
	bytesperline uint32 // offset 16
	sizeimage    uint32 // offset 20
	colorspace   uint32 // offset 24
	priv         uint32 // offset 28
	flags        uint32 // offset 32
	ycbcrEnc     uint32 // offset 36
	quantization uint32 // offset 40
	xferFunc     uint32 // offset 44
}

// v4l2Format has size 208 bytes. The fmt union is 8-byte aligned on 64-bit
// because some members carry pointers.
type v4l2Format struct {
	typ uint32        // offset 0
	_   [4]byte       // padding to align the union
	pix v4l2PixFormat // offset 8 (union with window/vbi formats)
	_   [152]byte     // remainder of the 200-byte union
}

// v4l2RequestBuffers has size 20 bytes.
type v4l2RequestBuffers struct {
	count        uint32  // offset 0
	typ          uint32  // offset 4
	memory       uint32  // offset 8
	capabilities uint32  // offset 12
	flags        uint8   // offset 16
	reserved     [3]byte // offset 17
}

// v4l2Timecode has size 16 bytes.
type v4l2Timecode struct {
	typ      uint32  // offset 0
	flags    uint32  // offset 4
	frames   uint8   // offset 8
	seconds  uint8   // offset 9
	minutes  uint8   // offset 10
	hours    uint8   // offset 11
	userbits [4]byte // offset 12
}

// v4l2Buffer has size 88 bytes.
type v4l2Buffer struct {
	index     uint32          // offset 0
	typ       uint32          // offset 4
	bytesused uint32          // offset 8
	flags     uint32          // offset 12
	field     uint32          // offset 16
	_         [4]byte         // padding to align timestamp
	timestamp syscall.Timeval // offset 24
	timecode  v4l2Timecode    // offset 40
	sequence  uint32          // offset 56
	memory    uint32          // offset 60
	m         uint64          // offset 64 - union {offset, userptr, planes, fd}
	length    uint32          // offset 72
	reserved2 uint32          // offset 76
	requestFd uint32          // offset 80
	_         [4]byte         // padding to 88
}

// mmapOffset extracts the mmap offset from the m union.
func (b *v4l2Buffer) mmapOffset() int64 {
	return int64(uint32(b.m))
}

// v4l2Fract has size 8 bytes.
type v4l2Fract struct {
	numerator   uint32
	denominator uint32
}

// v4l2OutputParm has size 40 bytes.
type v4l2OutputParm struct {
	capability   uint32    // offset 0
	outputmode   uint32    // offset 4
	timeperframe v4l2Fract // offset 8
	extendedmode uint32    // offset 16
	writebuffers uint32    // offset 20
	reserved     [4]uint32 // offset 24
}

// v4l2Streamparm has size 204 bytes.
type v4l2Streamparm struct {
	typ    uint32         // offset 0
	output v4l2OutputParm // offset 4 (union with captureparm)
	_      [160]byte      // remainder of the 200-byte union
}
