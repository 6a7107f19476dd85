// Package camera abstracts the camera vendor SDK behind the Driver
// interface.
//
// The bridge never talks to a device directly; everything goes through
// a Driver. The interface's contract is verification: every setting
// write returns the value the device actually took, read back after
// the write, so callers can detect silent clamping.
//
// The package also provides Discover, a bounded retry loop for finding
// a serial number at startup, and SimDriver, a software camera used in
// tests and broker-only development setups.
package camera
