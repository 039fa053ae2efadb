package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/bleradar/internal/config"
	"github.com/muurk/bleradar/internal/radio"
)

func TestApplyRunFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	addRunFlags(cmd)
	if err := cmd.Flags().Parse([]string{"--dwell", "3s", "--carry-forward", "--mqtt", "tcp://broker:1883", "--no-advertise", "--quiet"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	c := config.Default()
	applyRunFlags(cmd, c)

	if got := c.Scan.Dwell.Std(); got != 3*time.Second {
		t.Errorf("Dwell = %v, want 3s", got)
	}
	if got := c.Scan.Interval.Std(); got != 5*time.Second {
		t.Errorf("Interval = %v, want unchanged 5s", got)
	}
	if !c.Scan.CarryForward {
		t.Error("CarryForward = false, want true")
	}
	if c.Publish.MQTT.Broker != "tcp://broker:1883" {
		t.Errorf("Broker = %q", c.Publish.MQTT.Broker)
	}
	if c.Publish.Server.Advertise {
		t.Error("Advertise = true, want false")
	}
	if c.Publish.Console.Enabled || c.Publish.Console.Watch {
		t.Error("console output should be disabled by --quiet")
	}
}

func TestLoadResolvers(t *testing.T) {
	dir := t.TempDir()
	vendors := filepath.Join(dir, "oui.txt")
	if err := os.WriteFile(vendors, []byte("AC:23:3F (hex) Shenzhen Minew\n"), 0644); err != nil {
		t.Fatal(err)
	}
	svcDir := filepath.Join(dir, "services")
	if err := os.MkdirAll(svcDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(svcDir, "sig.txt"), []byte("0x180F\nBattery Service\n"), 0644); err != nil {
		t.Fatal(err)
	}

	c := config.Default()
	c.Datasets.Vendors = vendors
	c.Datasets.Services = svcDir
	c.Datasets.BuiltinVendors = false

	v, s, err := loadResolvers(c)
	if err != nil {
		t.Fatalf("loadResolvers() error = %v", err)
	}
	if name, ok := v.Lookup("ac:23:3f:00:00:01"); !ok || name != "Shenzhen Minew" {
		t.Errorf("vendor Lookup() = %q, %v", name, ok)
	}
	if desc, ok := s.Lookup("180F"); !ok || desc != "Battery Service" {
		t.Errorf("service Lookup() = %q, %v", desc, ok)
	}
}

func TestLoadResolvers_Missing(t *testing.T) {
	c := config.Default()
	c.Datasets.Vendors = filepath.Join(t.TempDir(), "missing.txt")

	if _, _, err := loadResolvers(c); err == nil {
		t.Fatal("loadResolvers() error = nil, want error for missing dataset")
	}

	c.Datasets.AllowMissing = true
	v, _, err := loadResolvers(c)
	if err != nil {
		t.Fatalf("loadResolvers() with AllowMissing error = %v", err)
	}
	if _, ok := v.Lookup("ZZ:ZZ:ZZ:00:00:00"); ok {
		t.Error("Lookup() of an invalid address should miss")
	}
}

func TestBuildSinks_NoneConfigured(t *testing.T) {
	c := config.Default()
	c.Publish.Console.Enabled = false

	set, err := buildSinks(t.Context(), c)
	if err != nil {
		t.Fatalf("buildSinks() error = %v", err)
	}
	defer set.close()

	if set.server != nil || set.watch != nil {
		t.Error("no server or watch expected")
	}
	if err := set.publisher.Publish(t.Context(), nil); err != nil {
		t.Errorf("Publish() on empty set error = %v", err)
	}
}

func TestBuildSinks_BadFormat(t *testing.T) {
	c := config.Default()
	c.Publish.File.Path = filepath.Join(t.TempDir(), "snap")
	c.Publish.File.Format = "xml"

	if _, err := buildSinks(t.Context(), c); err == nil {
		t.Error("buildSinks() error = nil, want format error")
	}
}

func TestCheckAdapters(t *testing.T) {
	transport := &radio.Simulated{Adapters: []*radio.SimulatedAdapter{{Name: "sim0"}, {Name: "sim1"}}}

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"shared file", filepath.Join(t.TempDir(), "snapshot.json"), true},
		{"per-adapter file", filepath.Join(t.TempDir(), "{adapter}.json"), false},
		{"no file", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := config.Default()
			c.Publish.File.Path = tt.path

			err := checkAdapters(t.Context(), transport, c)
			if (err != nil) != tt.wantErr {
				t.Errorf("checkAdapters() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigShow_MasksPassword(t *testing.T) {
	cfg = config.Default()
	cfg.Publish.MQTT.Password = "hunter2"
	t.Cleanup(func() { cfg = nil })

	var buf bytes.Buffer
	configShowCmd.SetOut(&buf)
	t.Cleanup(func() { configShowCmd.SetOut(nil) })

	if err := runConfigShow(configShowCmd, nil); err != nil {
		t.Fatalf("runConfigShow() error = %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "hunter2") {
		t.Error("password printed in clear")
	}
	if !strings.Contains(out, maskedSecret) {
		t.Errorf("output missing mask:\n%s", out)
	}
	if cfg.Publish.MQTT.Password != "hunter2" {
		t.Error("runConfigShow() modified the loaded configuration")
	}
}
