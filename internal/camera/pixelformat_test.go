package camera

import "testing"

func TestPixelFormat_Encoding(t *testing.T) {
	tests := []struct {
		name   string
		format PixelFormat
		want   string
	}{
		{"mono8", FormatMono8, "mono8"},
		{"rgb8", FormatRGB8, "rgb8"},
		{"bayer", FormatBayerRG8, "bayer_rggb8"},
		{"invalid", FormatInvalid, "INVALID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.format.Encoding(); got != tt.want {
				t.Errorf("Encoding() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParsePixelFormat(t *testing.T) {
	tests := []struct {
		name string
		want PixelFormat
	}{
		{"Mono8", FormatMono8},
		{"RGB8", FormatRGB8},
		{"BayerRG8", FormatBayerRG8},
		{"BayerGB8", FormatInvalid},
		{"", FormatInvalid},
	}

	for _, tt := range tests {
		if got := ParsePixelFormat(tt.name); got != tt.want {
			t.Errorf("ParsePixelFormat(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestPixelFormat_BytesPerPixel(t *testing.T) {
	if got := FormatRGB8.BytesPerPixel(); got != 3 {
		t.Errorf("RGB8 BytesPerPixel() = %d, want 3", got)
	}
	if got := FormatMono8.BytesPerPixel(); got != 1 {
		t.Errorf("Mono8 BytesPerPixel() = %d, want 1", got)
	}
	if got := FormatInvalid.BytesPerPixel(); got != 0 {
		t.Errorf("Invalid BytesPerPixel() = %d, want 0", got)
	}
}
