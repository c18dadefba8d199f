// Package config loads the YAML inventory used by snmpq poll.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/snmp-query/snmpq-go/pkg/device"
	"github.com/snmp-query/snmpq-go/pkg/mib"
	"github.com/snmp-query/snmpq-go/pkg/query"
	"github.com/snmp-query/snmpq-go/pkg/wire"
)

type Config struct {
	Defaults DeviceConfig   `yaml:"defaults"`
	Devices  []DeviceConfig `yaml:"devices"`
	MIBs     []string       `yaml:"mibs"`
	Poll     PollConfig     `yaml:"poll"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Log      LogConfig      `yaml:"log"`
}

// DeviceConfig describes one agent. Zero fields inherit from defaults,
// except retries where only an absent key inherits.
type DeviceConfig struct {
	Host           string        `yaml:"host"`
	Port           uint16        `yaml:"port"`
	Version        string        `yaml:"version"`
	Community      string        `yaml:"community"`
	Timeout        time.Duration `yaml:"timeout"`
	Retries        *int          `yaml:"retries"`
	MaxRepetitions uint32        `yaml:"max_repetitions"`
	WalkMode       string        `yaml:"walk_mode"`
}

type PollConfig struct {
	Interval    time.Duration `yaml:"interval"`
	Concurrency int           `yaml:"concurrency"`
	Timeout     time.Duration `yaml:"timeout"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	// Events is an optional CBOR query event file.
	Events string `yaml:"events"`
}

// Load reads, defaults and validates a configuration file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

// Parse is Load without the file read.
func Parse(raw []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Defaults.Port == 0 {
		c.Defaults.Port = query.DefaultPort
	}
	if c.Defaults.Version == "" {
		c.Defaults.Version = "2c"
	}
	if c.Defaults.Community == "" {
		c.Defaults.Community = "public"
	}
	if c.Defaults.Timeout == 0 {
		c.Defaults.Timeout = 2 * time.Second
	}
	if c.Defaults.Retries == nil {
		r := 3
		c.Defaults.Retries = &r
	}
	if c.Defaults.MaxRepetitions == 0 {
		c.Defaults.MaxRepetitions = 25
	}
	if c.Defaults.WalkMode == "" {
		c.Defaults.WalkMode = "auto"
	}
	for i := range c.Devices {
		c.Devices[i].inherit(c.Defaults)
	}

	if c.Poll.Interval == 0 {
		c.Poll.Interval = time.Minute
	}
	if c.Poll.Concurrency == 0 {
		c.Poll.Concurrency = 16
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

func (d *DeviceConfig) inherit(def DeviceConfig) {
	if d.Port == 0 {
		d.Port = def.Port
	}
	if d.Version == "" {
		d.Version = def.Version
	}
	if d.Community == "" {
		d.Community = def.Community
	}
	if d.Timeout == 0 {
		d.Timeout = def.Timeout
	}
	if d.Retries == nil && def.Retries != nil {
		r := *def.Retries
		d.Retries = &r
	}
	if d.MaxRepetitions == 0 {
		d.MaxRepetitions = def.MaxRepetitions
	}
	if d.WalkMode == "" {
		d.WalkMode = def.WalkMode
	}
}

func (c *Config) validate() error {
	if len(c.Devices) == 0 {
		return fmt.Errorf("devices: at least one device is required")
	}
	seen := make(map[string]bool, len(c.Devices))
	for i, d := range c.Devices {
		if err := d.validate(); err != nil {
			return fmt.Errorf("devices[%d]: %w", i, err)
		}
		addr := d.Target().String()
		if seen[addr] {
			return fmt.Errorf("devices[%d]: duplicate device %s", i, addr)
		}
		seen[addr] = true
	}
	if c.Poll.Interval < 0 || c.Poll.Timeout < 0 {
		return fmt.Errorf("poll: interval and timeout must not be negative")
	}
	if c.Poll.Concurrency < 0 {
		return fmt.Errorf("poll.concurrency must not be negative")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

func (d DeviceConfig) validate() error {
	if d.Host == "" {
		return fmt.Errorf("host is required")
	}
	if d.Retries != nil && *d.Retries < 0 {
		return fmt.Errorf("retries must not be negative")
	}
	creds, err := d.Credentials()
	if err != nil {
		return err
	}
	k, err := d.walkKind()
	if err != nil {
		return err
	}
	if k == wire.KindBulkWalk && !creds.Version().SupportsBulk() {
		return fmt.Errorf("walk_mode bulkwalk over %s: %w", creds.Version(), wire.ErrNotSupported)
	}
	return nil
}

// Target returns the agent address.
func (d DeviceConfig) Target() query.Target {
	return query.Target{Host: d.Host, Port: d.Port}
}

// Credentials builds the credential variant for the configured version.
func (d DeviceConfig) Credentials() (wire.Credentials, error) {
	v, err := wire.ParseVersion(d.Version)
	if err != nil {
		return nil, err
	}
	return wire.NewCredentials(v, d.Community)
}

// walkKind returns 0 for "auto".
func (d DeviceConfig) walkKind() (wire.Kind, error) {
	if strings.EqualFold(d.WalkMode, "auto") {
		return 0, nil
	}
	k, err := wire.ParseKind(d.WalkMode)
	if err != nil {
		return 0, err
	}
	if k == wire.KindGet {
		return 0, fmt.Errorf("walk_mode %q: %w", d.WalkMode, wire.ErrNotSupported)
	}
	return k, nil
}

// DeviceOptions returns the device options equivalent to d.
func (d DeviceConfig) DeviceOptions() []device.Option {
	opts := []device.Option{
		device.WithPort(d.Port),
		device.WithTimeout(d.Timeout),
		device.WithMaxRepetitions(d.MaxRepetitions),
	}
	if d.Retries != nil {
		opts = append(opts, device.WithRetries(*d.Retries))
	}
	if k, err := d.walkKind(); err == nil && k != 0 {
		opts = append(opts, device.WithWalkMode(k))
	}
	return opts
}

// NewDevice builds a Device for d on exec.
func (d DeviceConfig) NewDevice(exec *query.Executor, extra ...device.Option) (*device.Device, error) {
	creds, err := d.Credentials()
	if err != nil {
		return nil, err
	}
	return device.New(d.Host, creds, exec, append(d.DeviceOptions(), extra...)...)
}

// Table returns the embedded symbol table extended with every file or
// directory listed under mibs.
func (c *Config) Table() (*mib.Table, error) {
	t, err := mib.Default()
	if err != nil {
		return nil, err
	}
	for _, path := range c.MIBs {
		fi, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("mibs: %w", err)
		}
		var sub *mib.Table
		if fi.IsDir() {
			sub, err = mib.LoadDir(path)
		} else {
			sub, err = mib.LoadFile(path)
		}
		if err != nil {
			return nil, fmt.Errorf("mibs: %w", err)
		}
		if err := t.Merge(sub); err != nil {
			return nil, fmt.Errorf("mibs: %s: %w", path, err)
		}
	}
	return t, nil
}
