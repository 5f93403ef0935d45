// SPDX-License-Identifier: EPL-2.0

// Package config loads the optional YAML settings shared by the surround
// programs. Every field has a default, so a missing file is not an error for
// callers that pass an empty path.
package config

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a known level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Codec application hints.
const (
	ApplicationAudio    = "audio"
	ApplicationVoIP     = "voip"
	ApplicationLowDelay = "lowdelay"
)

type Config struct {
	LogLevel LogLevel     `yaml:"log_level"`
	Encode   EncodeConfig `yaml:"encode"`
	Codec    CodecConfig  `yaml:"codec"`
	Render   RenderConfig `yaml:"render"`
	Output   OutputConfig `yaml:"output"`
}

type EncodeConfig struct {
	// Bitrate in bits per second. The command line argument wins when given.
	Bitrate int `yaml:"bitrate"`
	// Complexity 0-10.
	Complexity  int    `yaml:"complexity"`
	Application string `yaml:"application"`
	// DownmixInputs folds multichannel stems (mp3 is always stereo) to mono
	// instead of rejecting them.
	DownmixInputs bool `yaml:"downmix_inputs"`
}

type CodecConfig struct {
	// FrameSize in samples per channel; 960 is 20 ms at 48 kHz.
	FrameSize     int `yaml:"frame_size"`
	Channels      int `yaml:"channels"`
	MappingFamily int `yaml:"mapping_family"`
}

type RenderConfig struct {
	BlockSize  int    `yaml:"block_size"`
	Taps       int    `yaml:"taps"`
	Normalize  bool   `yaml:"normalize"`
	StrictRate bool   `yaml:"strict_rate"`
	FilterDir  string `yaml:"filter_dir"`
}

type OutputConfig struct {
	// BitDepth of written WAV files: 16, 24 or 32.
	BitDepth int `yaml:"bit_depth"`
}

// Default returns the settings used when no file is given.
func Default() *Config {
	return &Config{
		LogLevel: LogInfo,
		Encode: EncodeConfig{
			Bitrate:     256000,
			Complexity:  10,
			Application: ApplicationAudio,
		},
		Codec: CodecConfig{
			FrameSize:     960,
			Channels:      5,
			MappingFamily: 1,
		},
		Render: RenderConfig{
			BlockSize: 512,
			Taps:      1024,
		},
		Output: OutputConfig{
			BitDepth: 24,
		},
	}
}
