package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// AxisConfig holds the pin assignments and motion parameters of one axis.
type AxisConfig struct {
	DirPin        int `yaml:"dir_pin"`        // H-bridge direction select
	PWMPin        int `yaml:"pwm_pin"`        // H-bridge speed (PWM)
	SensorChannel int `yaml:"sensor_channel"` // ADC channel of the position pot
	FwdLimitPin   int `yaml:"fwd_limit_pin"`  // end-of-span switch (active low)
	RevLimitPin   int `yaml:"rev_limit_pin"`  // home switch (active low)
	SpanDeg       int `yaml:"span_deg"`       // angular travel in degrees
	SpeedPct      int `yaml:"speed_pct"`      // default drive speed, % of full scale
	BackoffPct    int `yaml:"backoff_pct"`    // reduced speed near target
	CalSpeedPct   int `yaml:"cal_speed_pct"`  // speed while seeking the home switch
}

// NetworkConfig holds the per-deployment endpoints.
type NetworkConfig struct {
	RequestAddr string `yaml:"request_addr"` // bind address for command datagrams
	EventAddr   string `yaml:"event_addr"`   // client address for position events
}

// DefaultsConfig contains generic loop and protocol parameters.
type DefaultsConfig struct {
	TickMs       int  `yaml:"tick_ms"`        // control loop period
	ProximityDeg int  `yaml:"proximity_deg"`  // remaining delta at which speed backs off
	ToleranceDeg int  `yaml:"tolerance_deg"`  // remaining delta counted as arrival
	DeadbandDeg  int  `yaml:"deadband_deg"`   // minimum change before a position event
	NudgeDeg     int  `yaml:"nudge_deg"`      // degrees per nudge command
	CalTimeoutS  int  `yaml:"cal_timeout_s"`  // budget for a calibration run
	MoveTimeoutS int  `yaml:"move_timeout_s"` // budget for a positioning move
	DebugLevel   int  `yaml:"debug_level"`    // debug level 0-4 (0=off, 1=info, 2=live, 3=verbose, 4=trace)
	MockGPIO     bool `yaml:"mock_gpio"`      // use mock GPIO (true=dev/test, false=real Raspberry Pi)
}

// Config aggregates all controller configuration.
type Config struct {
	Azimuth   AxisConfig     `yaml:"azimuth"`
	Elevation AxisConfig     `yaml:"elevation"`
	Network   NetworkConfig  `yaml:"network"`
	Defaults  DefaultsConfig `yaml:"defaults"`
}

// Load reads a YAML file and returns the configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}

	// Basic validation
	if cfg.Network.EventAddr == "" {
		return nil, fmt.Errorf("network.event_addr is required (client address for position events)")
	}
	if cfg.Network.RequestAddr == "" {
		cfg.Network.RequestAddr = ":8888"
	}

	if err := validateAxis("azimuth", &cfg.Azimuth, 360, 30); err != nil {
		return nil, err
	}
	if err := validateAxis("elevation", &cfg.Elevation, 90, 20); err != nil {
		return nil, err
	}

	if cfg.Defaults.TickMs <= 0 {
		cfg.Defaults.TickMs = 25 // reasonable default
	}
	if cfg.Defaults.ProximityDeg <= 0 {
		cfg.Defaults.ProximityDeg = 5
	}
	if cfg.Defaults.ToleranceDeg <= 0 {
		cfg.Defaults.ToleranceDeg = 1
	}
	if cfg.Defaults.DeadbandDeg <= 0 {
		cfg.Defaults.DeadbandDeg = 2
	}
	if cfg.Defaults.NudgeDeg <= 0 {
		cfg.Defaults.NudgeDeg = 2
	}
	if cfg.Defaults.CalTimeoutS <= 0 {
		cfg.Defaults.CalTimeoutS = 30
	}
	if cfg.Defaults.MoveTimeoutS <= 0 {
		cfg.Defaults.MoveTimeoutS = 30
	}
	if cfg.Defaults.ToleranceDeg > cfg.Defaults.ProximityDeg {
		return nil, fmt.Errorf("tolerance_deg (%d) must not exceed proximity_deg (%d)",
			cfg.Defaults.ToleranceDeg, cfg.Defaults.ProximityDeg)
	}

	return &cfg, nil
}

func validateAxis(name string, a *AxisConfig, defaultSpan, defaultSpeed int) error {
	if a.DirPin <= 0 || a.PWMPin <= 0 {
		return fmt.Errorf("%s: dir_pin and pwm_pin are required", name)
	}
	if a.FwdLimitPin <= 0 || a.RevLimitPin <= 0 {
		return fmt.Errorf("%s: fwd_limit_pin and rev_limit_pin are required", name)
	}
	if a.SensorChannel < 0 || a.SensorChannel > 7 {
		return fmt.Errorf("%s: sensor_channel must be 0-7, got %d", name, a.SensorChannel)
	}
	if a.SpanDeg <= 0 {
		a.SpanDeg = defaultSpan
	}
	if a.SpanDeg > 360 {
		return fmt.Errorf("%s: span_deg must be <= 360, got %d", name, a.SpanDeg)
	}
	if a.SpeedPct <= 0 {
		a.SpeedPct = defaultSpeed
	}
	if a.SpeedPct > 100 {
		return fmt.Errorf("%s: speed_pct must be <= 100, got %d", name, a.SpeedPct)
	}
	if a.BackoffPct <= 0 {
		a.BackoffPct = 10
	}
	if a.CalSpeedPct <= 0 {
		a.CalSpeedPct = 20
	}
	return nil
}

// Tick returns the control loop period.
func (c *Config) Tick() time.Duration {
	return time.Duration(c.Defaults.TickMs) * time.Millisecond
}

// CalTimeout returns the calibration budget.
func (c *Config) CalTimeout() time.Duration {
	return time.Duration(c.Defaults.CalTimeoutS) * time.Second
}

// MoveTimeout returns the positioning move budget.
func (c *Config) MoveTimeout() time.Duration {
	return time.Duration(c.Defaults.MoveTimeoutS) * time.Second
}

// CalTicks returns the calibration budget in loop iterations.
func (c *Config) CalTicks() int {
	return int(c.CalTimeout() / c.Tick())
}

// MoveTicks returns the move budget in loop iterations.
func (c *Config) MoveTicks() int {
	return int(c.MoveTimeout() / c.Tick())
}
