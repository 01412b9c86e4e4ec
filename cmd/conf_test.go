package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadConfDefaults(t *testing.T) {
	conf, err := ReadConf(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conf.ConfDir != "/etc/systemd/network" {
		t.Errorf("got confDir %q", conf.ConfDir)
	}
	if conf.Monitor != nil {
		t.Errorf("monitor config should stay nil when unconfigured, got %+v", conf.Monitor)
	}
}

func TestReadConf(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.yaml")
	contents := `
confDir: /run/systemd/network
monitor:
  neighbors: false
  metricsPort: 9099
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	conf, err := ReadConf(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conf.ConfDir != "/run/systemd/network" {
		t.Errorf("got confDir %q", conf.ConfDir)
	}
	if conf.Monitor == nil {
		t.Fatal("monitor config should be populated")
	}
	if conf.Monitor.Neighbors {
		t.Error("neighbors should be disabled")
	}
	if !conf.Monitor.Routes || !conf.Monitor.Addresses {
		t.Error("unset groups should keep their defaults")
	}
	if conf.Monitor.MetricsPort != 9099 {
		t.Errorf("got metricsPort %d", conf.Monitor.MetricsPort)
	}
}
