package camera

// PixelFormat identifies the raw layout of frame data.
type PixelFormat int

// Supported pixel formats.
const (
	FormatInvalid PixelFormat = iota
	FormatMono8
	FormatRGB8
	FormatBayerRG8
)

// String returns the device-side format name.
func (f PixelFormat) String() string {
	switch f {
	case FormatMono8:
		return "Mono8"
	case FormatRGB8:
		return "RGB8"
	case FormatBayerRG8:
		return "BayerRG8"
	default:
		return "Invalid"
	}
}

// EncodingInvalid is the wire encoding label for formats with no
// defined encoding. Frames carrying it are still published so
// consumers see the frame flow even when they cannot decode it.
const EncodingInvalid = "INVALID"

// Encoding returns the wire encoding label for the format, or
// EncodingInvalid for formats without one.
func (f PixelFormat) Encoding() string {
	switch f {
	case FormatMono8:
		return "mono8"
	case FormatRGB8:
		return "rgb8"
	case FormatBayerRG8:
		return "bayer_rggb8"
	default:
		return EncodingInvalid
	}
}

// BytesPerPixel returns the storage size of one pixel, or 0 for
// invalid formats.
func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case FormatMono8, FormatBayerRG8:
		return 1
	case FormatRGB8:
		return 3
	default:
		return 0
	}
}

// ParsePixelFormat maps a device format name to a PixelFormat.
// Unrecognized names map to FormatInvalid.
func ParsePixelFormat(name string) PixelFormat {
	switch name {
	case "Mono8":
		return FormatMono8
	case "RGB8":
		return FormatRGB8
	case "BayerRG8":
		return FormatBayerRG8
	default:
		return FormatInvalid
	}
}
