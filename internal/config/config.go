package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/danmuck/focusctl/internal/focus"
	"github.com/danmuck/focusctl/internal/protocol"
	"github.com/danmuck/focusctl/internal/protocol/flow"
	"github.com/danmuck/focusctl/internal/transport"
	"github.com/danmuck/focusctl/internal/transport/serialport"
)

var ErrInvalid = errors.New("config: invalid")

// Config is the resolved focusd configuration.
type Config struct {
	DeviceName     string
	Port           string
	Baud           int
	ReadTimeout    time.Duration
	Tick           time.Duration
	CharDelay      time.Duration
	Flow           flow.Config
	LineCapacity   int
	RxBuffer       int
	MetricsAddr    string
	LEDCount       int
	LEDModes       int
	KeymapLayers   int
	KeymapKeys     int
	KeymapDefaults []protocol.Key
}

type fileConfig struct {
	DeviceName      string  `toml:"device_name"`
	Port            string  `toml:"port"`
	Baud            int     `toml:"baud"`
	ReadTimeout     string  `toml:"read_timeout"`
	Tick            string  `toml:"tick"`
	CharDelay       string  `toml:"char_delay"`
	PauseWatermark  int     `toml:"pause_watermark"`
	ResumeWatermark int     `toml:"resume_watermark"`
	LineCapacity    int     `toml:"line_capacity"`
	RxBuffer        int     `toml:"rx_buffer"`
	MetricsAddr     string  `toml:"metrics_addr"`
	LEDCount        int     `toml:"led_count"`
	LEDModes        int     `toml:"led_modes"`
	KeymapLayers    int     `toml:"keymap_layers"`
	KeymapKeys      int     `toml:"keymap_keys"`
	KeymapDefaults  []int64 `toml:"keymap_defaults"`
}

func DefaultConfig() Config {
	serial := serialport.DefaultConfig()
	engine := focus.DefaultConfig()
	return Config{
		DeviceName:   "focus",
		Baud:         serial.BaudRate,
		ReadTimeout:  serial.ReadTimeout,
		Tick:         time.Millisecond,
		CharDelay:    engine.CharDelay,
		Flow:         engine.Flow,
		LineCapacity: engine.LineCapacity,
		RxBuffer:     transport.DefaultRxCapacity,
		LEDCount:     64,
		LEDModes:     4,
		KeymapLayers: 2,
		KeymapKeys:   64,
	}
}

// Load reads a TOML file and applies every key it defines over DefaultConfig.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load focusd config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%w: unknown key %q", ErrInvalid, undecoded[0].String())
	}

	if meta.IsDefined("device_name") {
		if name := strings.TrimSpace(raw.DeviceName); name != "" {
			cfg.DeviceName = name
		}
	}
	if meta.IsDefined("port") {
		cfg.Port = strings.TrimSpace(raw.Port)
	}
	if meta.IsDefined("baud") {
		cfg.Baud = raw.Baud
	}

	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"read_timeout", raw.ReadTimeout, &cfg.ReadTimeout},
		{"tick", raw.Tick, &cfg.Tick},
		{"char_delay", raw.CharDelay, &cfg.CharDelay},
	}
	for _, d := range durations {
		if !meta.IsDefined(d.key) {
			continue
		}
		v, err := time.ParseDuration(strings.TrimSpace(d.raw))
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", d.key, err)
		}
		*d.dst = v
	}

	if meta.IsDefined("pause_watermark") {
		cfg.Flow.PauseWatermark = raw.PauseWatermark
	}
	if meta.IsDefined("resume_watermark") {
		cfg.Flow.ResumeWatermark = raw.ResumeWatermark
	}
	if meta.IsDefined("line_capacity") {
		cfg.LineCapacity = raw.LineCapacity
	}
	if meta.IsDefined("rx_buffer") {
		cfg.RxBuffer = raw.RxBuffer
	}
	if meta.IsDefined("metrics_addr") {
		cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)
	}
	if meta.IsDefined("led_count") {
		cfg.LEDCount = raw.LEDCount
	}
	if meta.IsDefined("led_modes") {
		cfg.LEDModes = raw.LEDModes
	}
	if meta.IsDefined("keymap_layers") {
		cfg.KeymapLayers = raw.KeymapLayers
	}
	if meta.IsDefined("keymap_keys") {
		cfg.KeymapKeys = raw.KeymapKeys
	}
	if meta.IsDefined("keymap_defaults") {
		keys, err := parseKeys(raw.KeymapDefaults)
		if err != nil {
			return Config{}, err
		}
		cfg.KeymapDefaults = keys
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func parseKeys(in []int64) ([]protocol.Key, error) {
	out := make([]protocol.Key, 0, len(in))
	for i, v := range in {
		if v < 0 || v > 0xffff {
			return nil, fmt.Errorf("%w: keymap_defaults[%d]=%d out of range", ErrInvalid, i, v)
		}
		out = append(out, protocol.Key(v))
	}
	return out, nil
}

// Validate checks the fields the file cannot express safely. The port may be
// empty here; serve requires it separately.
func (c Config) Validate() error {
	if strings.TrimSpace(c.DeviceName) == "" {
		return fmt.Errorf("%w: missing device_name", ErrInvalid)
	}
	if c.Baud <= 0 {
		return fmt.Errorf("%w: baud %d", ErrInvalid, c.Baud)
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("%w: read_timeout must be positive", ErrInvalid)
	}
	if c.CharDelay < 0 {
		return fmt.Errorf("%w: negative char_delay", ErrInvalid)
	}
	if c.Tick <= 0 {
		return fmt.Errorf("%w: tick must be positive", ErrInvalid)
	}
	if err := c.Flow.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.LineCapacity <= 0 || c.LineCapacity > protocol.DefaultLineCapacity {
		return fmt.Errorf("%w: line_capacity must be in 1..%d", ErrInvalid, protocol.DefaultLineCapacity)
	}
	if c.RxBuffer <= c.Flow.PauseWatermark {
		return fmt.Errorf("%w: rx_buffer %d must exceed pause_watermark %d", ErrInvalid, c.RxBuffer, c.Flow.PauseWatermark)
	}
	if c.LEDCount <= 0 || c.LEDModes <= 0 || c.LEDModes > 255 {
		return fmt.Errorf("%w: led_count and led_modes must be positive (modes <= 255)", ErrInvalid)
	}
	if c.KeymapLayers <= 0 || c.KeymapKeys <= 0 {
		return fmt.Errorf("%w: keymap shape %dx%d", ErrInvalid, c.KeymapLayers, c.KeymapKeys)
	}
	if len(c.KeymapDefaults) > c.KeymapLayers*c.KeymapKeys {
		return fmt.Errorf("%w: %d keymap_defaults exceed %d slots", ErrInvalid, len(c.KeymapDefaults), c.KeymapLayers*c.KeymapKeys)
	}
	return nil
}

// Engine returns the engine settings. Pacer, metrics and logger are left for
// the caller to wire.
func (c Config) Engine() focus.Config {
	cfg := focus.DefaultConfig()
	cfg.CharDelay = c.CharDelay
	cfg.LineCapacity = c.LineCapacity
	cfg.Flow = c.Flow
	return cfg
}

func (c Config) Serial() serialport.Config {
	return serialport.Config{
		Device:      c.Port,
		BaudRate:    c.Baud,
		ReadTimeout: c.ReadTimeout,
		RxCapacity:  c.RxBuffer,
	}
}
