// Package audit keeps a persistent record of camera setting changes.
//
// Every write that goes through the settings channel lands here with
// its requested value, the value the device actually took, and whether
// the round-trip verification passed. Entries are grouped by a session
// ID generated per bridge run, so "what changed since the camera last
// behaved" is a single query.
//
// Storage is a single SQLite table. The trail is optional and off by
// default; the bridge runs identically without it.
package audit
