package bridge

import (
	"encoding/json"
	"time"
)

// ImageMessage is one published frame. Data is base64-encoded by the
// JSON marshaller; Encoding names the pixel layout the bytes carry.
type ImageMessage struct {
	FrameID   string    `json:"frame_id"`
	SessionID string    `json:"session_id"`
	Seq       uint64    `json:"seq"`
	Timestamp time.Time `json:"timestamp"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Step      int       `json:"step"`
	Encoding  string    `json:"encoding"`
	Data      []byte    `json:"data"`
}

// MetaMessage carries per-frame acquisition metadata. It is published
// whenever a meta subscriber is present, independent of the image
// stream, so consumers can watch exposure behavior without paying for
// pixel data.
type MetaMessage struct {
	FrameID         string    `json:"frame_id"`
	SessionID       string    `json:"session_id"`
	Seq             uint64    `json:"seq"`
	Timestamp       time.Time `json:"timestamp"`
	CameraTime      int64     `json:"camera_time_ns"`
	Brightness      float64   `json:"brightness"`
	ExposureTime    uint32    `json:"exposure_time"`
	MaxExposureTime uint32    `json:"max_exposure_time"`
	Gain            float32   `json:"gain"`
}

// StatusMessage is the periodic throughput report.
type StatusMessage struct {
	Serial    string    `json:"serial"`
	FrameID   string    `json:"frame_id"`
	Timestamp time.Time `json:"timestamp"`
	RateInHz  float64   `json:"rate_in_hz"`
	RateOutHz float64   `json:"rate_out_hz"`
	DropRate  float64   `json:"drop_rate"`
	Published uint64    `json:"published"`
	Dropped   uint64    `json:"dropped"`
}

// ControlCommand adjusts exposure and gain on the fly. Zero exposure
// and a gain at or below GainUnset mean "leave that field alone".
type ControlCommand struct {
	ExposureTime uint32  `json:"exposure_time"`
	Gain         float32 `json:"gain"`
}

// UnmarshalJSON decodes a control payload, defaulting an absent gain
// to GainUnset. Gain's zero value is a real gain, so a sender that
// omits the field must not be read as asking for 0 dB.
func (c *ControlCommand) UnmarshalJSON(data []byte) error {
	var raw struct {
		ExposureTime uint32   `json:"exposure_time"`
		Gain         *float32 `json:"gain"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.ExposureTime = raw.ExposureTime
	c.Gain = GainUnset
	if raw.Gain != nil {
		c.Gain = *raw.Gain
	}
	return nil
}

// SettingDeclaration announces one settable parameter. The full list
// is retained on the declared-settings topic so consumers can discover
// what the camera accepts without probing.
type SettingDeclaration struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// SettingsRequest is a batch of setting changes keyed by logical
// parameter name.
type SettingsRequest struct {
	Settings map[string]any `json:"settings"`
}

// SettingResult reports one setting's outcome within an ack.
type SettingResult struct {
	Name     string `json:"name"`
	Actual   string `json:"actual,omitempty"`
	Verified bool   `json:"verified"`
	Error    string `json:"error,omitempty"`
}

// SettingsAck acknowledges a settings batch. Successful is always
// true; per-setting outcomes are carried in Results so consumers that
// care can inspect them, and ones that don't aren't blocked.
type SettingsAck struct {
	Successful bool            `json:"successful"`
	Reason     string          `json:"reason"`
	Results    []SettingResult `json:"results,omitempty"`
}
