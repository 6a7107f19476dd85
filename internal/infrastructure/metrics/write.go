package metrics

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteThroughput writes one status interval's frame statistics.
//
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - camera: Camera identifier (frame id)
//   - inRate: Device-reported input frame rate in Hz
//   - outRate: Achieved publication rate in Hz
//   - dropRate: Dropped-to-published ratio for the interval
func (c *Client) WriteThroughput(camera string, inRate, outRate, dropRate float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"frame_throughput",
		map[string]string{
			"camera": camera,
		},
		map[string]interface{}{
			"rate_in_hz":  inRate,
			"rate_out_hz": outRate,
			"drop_rate":   dropRate,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteSettingApply records the outcome of a verified setting write.
//
// Parameters:
//   - camera: Camera identifier
//   - setting: Logical setting name
//   - ok: Whether the apply verified successfully
func (c *Client) WriteSettingApply(camera string, setting string, ok bool) {
	if !c.IsConnected() {
		return
	}

	applied := 0.0
	if ok {
		applied = 1.0
	}

	point := write.NewPoint(
		"setting_apply",
		map[string]string{
			"camera":  camera,
			"setting": setting,
		},
		map[string]interface{}{
			"ok": applied,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for measurements that don't fit the helper methods.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
