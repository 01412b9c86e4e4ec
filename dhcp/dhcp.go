// Package dhcp reads the DHCP-related knobs out of systemd-networkd
// configuration files. The daemon doesn't run its own DHCP client; it
// only needs to know what networkd was told so it can report and adjust
// the effective configuration.
package dhcp

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/ini.v1"
)

// Val is the per-family DHCP enablement a [Network] DHCP= line resolves
// to. The key takes "ipv4", "ipv6" or a boolean covering both.
type Val struct {
	V4 bool
	V6 bool
}

// Config is the effective DHCP configuration. Every knob defaults to on,
// matching networkd's own defaults, so an empty or absent file yields a
// fully permissive configuration.
type Config struct {
	Value               Val
	DNSEnabled          bool
	NTPEnabled          bool
	HostnameEnabled     bool
	SendHostnameEnabled bool
	IPv6AcceptRA        bool
}

var defaults = Config{
	Value:               Val{V4: true, V6: true},
	DNSEnabled:          true,
	NTPEnabled:          true,
	HostnameEnabled:     true,
	SendHostnameEnabled: true,
}

// parseBool accepts the spellings systemd does.
func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "yes", "y", "true", "t", "on":
		return true, true
	case "0", "no", "n", "false", "f", "off":
		return false, true
	}
	return false, false
}

func parseDHCPValue(s string) (Val, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ipv4":
		return Val{V4: true, V6: false}, true
	case "ipv6":
		return Val{V4: false, V6: true}, true
	}
	if b, ok := parseBool(s); ok {
		return Val{V4: b, V6: b}, true
	}
	return Val{}, false
}

// boolProp resolves one boolean key, falling back to def when the key is
// absent or unparsable. Bad values are worth a log line; absent ones are
// the common case and aren't.
func boolProp(file *ini.File, section, key string, def bool) bool {
	str := file.Section(section).Key(key).String()
	if str == "" {
		return def
	}
	b, ok := parseBool(str)
	if !ok {
		slog.Warn("ignoring invalid value", "section", section, "key", key, "value", str)
		return def
	}
	return b
}

// FromFile reads the effective DHCP configuration out of one networkd
// configuration file.
func FromFile(path string) (Config, error) {
	file, err := ini.Load(path)
	if err != nil {
		return Config{}, fmt.Errorf("error reading %q: %w", path, err)
	}

	conf := defaults
	if str := file.Section("Network").Key("DHCP").String(); str != "" {
		if val, ok := parseDHCPValue(str); ok {
			conf.Value = val
		} else {
			slog.Warn("ignoring invalid value", "section", "Network", "key", "DHCP", "value", str)
		}
	}
	conf.IPv6AcceptRA = boolProp(file, "Network", "IPv6AcceptRA", conf.IPv6AcceptRA)
	conf.DNSEnabled = boolProp(file, "DHCP", "UseDNS", conf.DNSEnabled)
	conf.NTPEnabled = boolProp(file, "DHCP", "UseNTP", conf.NTPEnabled)
	conf.HostnameEnabled = boolProp(file, "DHCP", "UseHostname", conf.HostnameEnabled)
	conf.SendHostnameEnabled = boolProp(file, "DHCP", "SendHostname", conf.SendHostnameEnabled)
	return conf, nil
}

// NewestConfFile picks the most recently modified file in a configuration
// directory; networkd generators drop one file per interface there and
// the newest one reflects the latest write. Returns "" when the
// directory holds no files.
func NewestConfFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("error listing %q: %w", dir, err)
	}

	var (
		newest     string
		newestTime time.Time
	)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(newestTime) {
			newest = filepath.Join(dir, entry.Name())
			newestTime = info.ModTime()
		}
	}
	return newest, nil
}

// FromConfDir resolves the configuration from the newest file in dir,
// falling back to the defaults when the directory is empty.
func FromConfDir(dir string) (Config, error) {
	path, err := NewestConfFile(dir)
	if err != nil {
		return Config{}, err
	}
	if path == "" {
		return defaults, nil
	}
	slog.Info("using DHCP options", "file", path)
	return FromFile(path)
}
