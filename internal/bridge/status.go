package bridge

import (
	"time"
)

// runStatus reports throughput statistics every interval until stop.
func (b *Bridge) runStatus(interval time.Duration) {
	defer b.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopCh:
			return
		case <-ticker.C:
			b.reportStatus()
		}
	}
}

// reportStatus logs and publishes one interval's statistics, then
// resets the counters. The drop rate is dropped-to-published for the
// interval, zero when nothing was published.
func (b *Bridge) reportStatus() {
	if !b.isCameraRunning() {
		b.log.Warn("camera is not online", "serial", b.cfg.Camera.SerialNumber)
		return
	}

	published, dropped := b.stats.snapshotAndReset()

	now := time.Now()
	elapsedNs := now.Sub(b.lastStatus).Nanoseconds()
	if elapsedNs < 1 {
		elapsedNs = 1
	}
	b.lastStatus = now

	outRate := float64(published) * 1e9 / float64(elapsedNs)

	dropRate := 0.0
	if published > 0 {
		dropRate = float64(dropped) / float64(published)
	}

	inRate, err := b.driver.ReceiveFrameRate()
	if err != nil {
		b.log.Warn("reading receive frame rate", "error", err)
	}

	b.log.Info("frame throughput",
		"rate_in_hz", inRate,
		"rate_out_hz", outRate,
		"drop_pct", dropRate*100)

	b.pub.publishStatus(&StatusMessage{
		Serial:    b.cfg.Camera.SerialNumber,
		FrameID:   b.cfg.Camera.FrameID,
		Timestamp: now,
		RateInHz:  inRate,
		RateOutHz: outRate,
		DropRate:  dropRate,
		Published: published,
		Dropped:   dropped,
	})

	if b.metrics != nil {
		b.metrics.WriteThroughput(b.cfg.Camera.FrameID, inRate, outRate, dropRate)
	}
}
