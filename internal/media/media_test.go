package media

import "testing"

func TestCodec_String(t *testing.T) {
	tests := []struct {
		codec Codec
		want  string
	}{
		{CodecH264, "h264"},
		{CodecH265, "h265"},
		{Codec(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.codec.String(); got != tt.want {
			t.Errorf("Codec(%d).String() = %q, want %q", tt.codec, got, tt.want)
		}
	}
}

func TestCodec_FourCC(t *testing.T) {
	if got := CodecH264.FourCC(); got != FourCCH264 {
		t.Errorf("H264 fourcc = %#x, want %#x", got, FourCCH264)
	}
	if got := CodecH265.FourCC(); got != FourCCHEVC {
		t.Errorf("H265 fourcc = %#x, want %#x", got, FourCCHEVC)
	}
}

func TestFourCC_Encoding(t *testing.T) {
	// Little-endian byte order: first character in the low byte.
	if b := byte(FourCCH264 & 0xFF); b != 'H' {
		t.Errorf("low byte of H264 fourcc = %c, want H", b)
	}
	if b := byte(FourCCHEVC >> 24 & 0xFF); b != 'C' {
		t.Errorf("high byte of HEVC fourcc = %c, want C", b)
	}
}
