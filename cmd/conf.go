package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/rfrandse/phosphor-networkd/monitor"
)

type Config struct {
	// ConfDir is where systemd-networkd's per-interface configuration
	// files live.
	ConfDir string `yaml:"confDir"`

	Monitor *monitor.Config `yaml:"monitor"`
}

func (c Config) String() string {
	m, err := yaml.MarshalWithOptions(c, yaml.Indent(2), yaml.IndentSequence(true))
	if err != nil {
		return "marshalling error..."
	}
	return string(m)
}

func (c *Config) UnmarshalYAML(b []byte) error {
	// Needed to break recursive calls into UnmarshalYAML
	type config Config

	def := &config{
		ConfDir: "/etc/systemd/network",
	}

	if err := yaml.Unmarshal(b, def); err != nil {
		return err
	}

	*c = Config(*def)

	return nil
}

// ReadConf loads the configuration file. A missing file isn't an error:
// the defaults cover a bare installation.
func ReadConf(path string) (*Config, error) {
	r, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug("no configuration file, running on defaults", "path", path)
		conf := Config{}
		if err := conf.UnmarshalYAML([]byte("{}")); err != nil {
			return nil, err
		}
		return &conf, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading the configuration file: %w", err)
	}

	conf := Config{}
	if err := yaml.Unmarshal(r, &conf); err != nil {
		return nil, fmt.Errorf("error unmarshaling the configuration: %w", err)
	}

	return &conf, nil
}
