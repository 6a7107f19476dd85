package bridge

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CalibrationMatrix is a row-major matrix as stored in calibration
// YAML files.
type CalibrationMatrix struct {
	Rows int       `yaml:"rows" json:"rows"`
	Cols int       `yaml:"cols" json:"cols"`
	Data []float64 `yaml:"data" json:"data"`
}

// Calibration describes the camera's intrinsics. It is loaded once at
// startup and published verbatim alongside every image so consumers
// can rectify without a side channel.
type Calibration struct {
	CameraName      string            `yaml:"camera_name" json:"camera_name"`
	ImageWidth      int               `yaml:"image_width" json:"image_width"`
	ImageHeight     int               `yaml:"image_height" json:"image_height"`
	DistortionModel string            `yaml:"distortion_model" json:"distortion_model"`
	Distortion      CalibrationMatrix `yaml:"distortion_coefficients" json:"distortion_coefficients"`
	CameraMatrix    CalibrationMatrix `yaml:"camera_matrix" json:"camera_matrix"`
	Rectification   CalibrationMatrix `yaml:"rectification_matrix" json:"rectification_matrix"`
	Projection      CalibrationMatrix `yaml:"projection_matrix" json:"projection_matrix"`
}

// LoadCalibration reads a calibration YAML file.
//
// A missing or empty path is not an error; the bridge publishes
// frames without calibration. Parse failures are reported so a
// present-but-broken file is noticed.
func LoadCalibration(path string) (*Calibration, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading calibration file: %w", err)
	}

	var cal Calibration
	if err := yaml.Unmarshal(data, &cal); err != nil {
		return nil, fmt.Errorf("parsing calibration file: %w", err)
	}

	return &cal, nil
}
