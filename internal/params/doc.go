// Package params maps logical setting names to camera device nodes
// and applies values to them with round-trip verification.
//
// Definitions come from a plain text parameter file, one per line:
//
//	exposure_time float ExposureTime
//	pixel_format  enum  PixelFormat
//
// The Registry preserves file order and tolerates bad lines. The
// Applier dispatches typed writes to the device and compares what came
// back: exact for int, bool, and enum, a 2.5% relative tolerance for
// float. Unverified writes are outcomes, not errors; the device's
// actual value is surfaced so callers can record it.
package params
