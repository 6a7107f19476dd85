// Package config loads and validates spinbridge configuration.
//
// Configuration is read from a YAML file, merged over hardcoded
// defaults, and finally overridden by SPINBRIDGE_* environment
// variables. Validation collects all problems into a single error so
// a misconfigured deployment fails fast with a complete picture.
//
// Note that the camera parameter file referenced by
// camera.parameter_file is NOT parsed here; its line-oriented format
// belongs to the params package. This package only carries its path.
package config
