// SPDX-License-Identifier: EPL-2.0

package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Frame sizes the Opus multistream encoder accepts. gopus only emits 20 ms
// frames at 48 kHz.
var validFrameSizes = []int{960}

// Load reads the YAML file at path over the defaults and validates the result.
// An empty path yields the validated defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		cfg := Default()
		return cfg, Validate(cfg)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes YAML from r over the defaults. Unknown keys are
// rejected. An empty document keeps the defaults.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if !cfg.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel))
	}

	// Encode
	if cfg.Encode.Bitrate < 6000 {
		errs = append(errs, fmt.Errorf("encode.bitrate %d is below 6000", cfg.Encode.Bitrate))
	}
	if cfg.Encode.Complexity < 0 || cfg.Encode.Complexity > 10 {
		errs = append(errs, fmt.Errorf("encode.complexity %d must be 0-10", cfg.Encode.Complexity))
	}
	switch cfg.Encode.Application {
	case ApplicationAudio, ApplicationVoIP, ApplicationLowDelay:
	default:
		errs = append(errs, fmt.Errorf("encode.application %q is invalid; valid values: audio, voip, lowdelay", cfg.Encode.Application))
	}

	// Codec
	validFrame := false
	for _, fs := range validFrameSizes {
		if cfg.Codec.FrameSize == fs {
			validFrame = true
			break
		}
	}
	if !validFrame {
		errs = append(errs, fmt.Errorf("codec.frame_size %d is invalid; valid values: %v", cfg.Codec.FrameSize, validFrameSizes))
	}
	if cfg.Codec.Channels <= 0 {
		errs = append(errs, fmt.Errorf("codec.channels %d must be positive", cfg.Codec.Channels))
	}
	if cfg.Codec.MappingFamily < 0 || cfg.Codec.MappingFamily > 255 {
		errs = append(errs, fmt.Errorf("codec.mapping_family %d is out of range", cfg.Codec.MappingFamily))
	}

	// Render
	if cfg.Render.BlockSize <= 0 {
		errs = append(errs, fmt.Errorf("render.block_size %d must be positive", cfg.Render.BlockSize))
	}
	if cfg.Render.Taps <= 0 {
		errs = append(errs, fmt.Errorf("render.taps %d must be positive", cfg.Render.Taps))
	}

	// Output
	switch cfg.Output.BitDepth {
	case 16, 24, 32:
	default:
		errs = append(errs, fmt.Errorf("output.bit_depth %d is invalid; valid values: 16, 24, 32", cfg.Output.BitDepth))
	}

	return errors.Join(errs...)
}
