// Package metrics writes spinbridge throughput statistics to InfluxDB.
//
// The bridge's status reporter already logs frame rates and drop
// ratios; this package gives the same numbers a queryable home. The
// sink is optional: when metrics.enabled is false the bridge runs
// with logging only.
//
// Writes are batched and asynchronous; a slow or absent InfluxDB never
// backpressures the publication path.
package metrics
