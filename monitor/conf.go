package monitor

import (
	"github.com/goccy/go-yaml"
)

type Config struct {
	Log bool `yaml:"log"`

	// Which rtnetlink multicast groups to join.
	Routes    bool `yaml:"routes"`
	Addresses bool `yaml:"addresses"`
	Neighbors bool `yaml:"neighbors"`

	// Where to expose prometheus metrics. A zero port disables the
	// listener altogether.
	BindAddress string `yaml:"bindAddress"`
	MetricsPort uint16 `yaml:"metricsPort"`
}

var DefaultConfig = Config{
	Log:         true,
	Routes:      true,
	Addresses:   true,
	Neighbors:   true,
	BindAddress: "127.0.0.1",
	MetricsPort: 0,
}

func (c *Config) UnmarshalYAML(b []byte) error {
	// Needed to break recursive calls into UnmarshalYAML
	type config Config

	def := config(DefaultConfig)

	if err := yaml.Unmarshal(b, &def); err != nil {
		return err
	}

	*c = Config(def)

	return nil
}
