package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/calder-vision/spinbridge/internal/infrastructure/audit"
	"github.com/calder-vision/spinbridge/internal/params"
)

// auditRecordTimeout bounds each best-effort audit insert.
const auditRecordTimeout = 2 * time.Second

// handleSettings processes one settings batch from the settings topic.
//
// Each setting is applied independently: an unknown name, a type
// mismatch, or a device fault is recorded in that setting's result and
// the rest of the batch proceeds. The ack always reports success; the
// per-setting outcomes ride along in Results.
func (b *Bridge) handleSettings(_ string, payload []byte) error {
	var req SettingsRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		b.log.Warn("malformed settings payload", "error", err)
		return fmt.Errorf("parsing settings request: %w", err)
	}

	// Map iteration order is random; sort for deterministic logs and
	// audit ordering.
	names := make([]string, 0, len(req.Settings))
	for name := range req.Settings {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]SettingResult, 0, len(names))
	for _, name := range names {
		results = append(results, b.applySetting(name, req.Settings[name]))
	}

	b.pub.publishAck(&SettingsAck{
		Successful: true,
		Reason:     "all good!",
		Results:    results,
	})
	return nil
}

// applySetting applies one named setting and records the outcome.
func (b *Bridge) applySetting(name string, raw any) SettingResult {
	result := SettingResult{Name: name}

	desc, ok := b.registry.Lookup(name)
	if !ok {
		b.log.Warn("unknown setting", "name", name)
		result.Error = params.ErrUnknownParameter.Error()
		return result
	}

	value, err := params.FromJSON(raw)
	if err != nil {
		b.log.Warn("bad setting value", "name", name, "error", err)
		result.Error = err.Error()
		return result
	}

	res, err := b.applier.Apply(desc, value)
	if err != nil {
		b.log.Warn("setting apply failed", "name", name, "error", err)
		result.Error = err.Error()
		b.recordChange("settings", name, value.String(), "", false)
		return result
	}

	result.Actual = res.Actual
	result.Verified = res.Verified
	b.recordChange("settings", name, value.String(), res.Actual, res.Verified)

	if b.metrics != nil {
		b.metrics.WriteSettingApply(b.cfg.Camera.FrameID, name, res.Verified)
	}
	return result
}

// recordChange writes one audit entry. Failures are logged, never
// propagated; the trail is an observer, not a gate.
func (b *Bridge) recordChange(source, setting, requested, actual string, verified bool) {
	if b.audit == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), auditRecordTimeout)
	defer cancel()

	change := &audit.SettingChange{
		Camera:         b.cfg.Camera.SerialNumber,
		Setting:        setting,
		RequestedValue: requested,
		ActualValue:    actual,
		Verified:       verified,
		Source:         source,
	}
	if err := b.audit.Record(ctx, change); err != nil {
		b.log.Warn("recording setting change", "setting", setting, "error", err)
	}
}
