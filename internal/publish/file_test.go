package publish

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/muurk/bleradar/internal/discovery"
)

func sampleSnapshot(adapter string, cycle uint64) *discovery.Snapshot {
	return &discovery.Snapshot{
		Adapter:   adapter,
		Cycle:     cycle,
		Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Devices: []discovery.Device{
			{
				Address:             "AA:BB:CC:00:11:22",
				Name:                discovery.StringPtr("Thermo"),
				RSSI:                discovery.Int16Ptr(-61),
				ServiceIDs:          []string{"180F"},
				ServiceDescriptions: []*string{discovery.StringPtr("Battery Service")},
			},
		},
	}
}

func TestFile_PublishJSONSupersedes(t *testing.T) {
	dir := t.TempDir()
	f := NewFile(filepath.Join(dir, "out", "{adapter}.json"), FormatJSON)

	ctx := context.Background()
	if err := f.Publish(ctx, sampleSnapshot("hci0", 1)); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if err := f.Publish(ctx, sampleSnapshot("hci0", 2)); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	path := filepath.Join(dir, "out", "hci0.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got discovery.Snapshot
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("snapshot file is not valid JSON: %v", err)
	}
	if got.Cycle != 2 {
		t.Errorf("Cycle = %d, want 2", got.Cycle)
	}
	if len(got.Devices) != 1 || got.Devices[0].Address != "AA:BB:CC:00:11:22" {
		t.Errorf("Devices = %+v", got.Devices)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind")
	}
}

func TestFile_SharedPathRejectsSecondAdapter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	f := NewFile(path, FormatJSON)
	ctx := context.Background()

	if err := f.Publish(ctx, sampleSnapshot("hci0", 1)); err != nil {
		t.Fatalf("Publish(hci0) error = %v", err)
	}
	if err := f.Publish(ctx, sampleSnapshot("hci1", 1)); !errors.Is(err, ErrSharedFile) {
		t.Fatalf("Publish(hci1) error = %v, want ErrSharedFile", err)
	}
	if err := f.Publish(ctx, sampleSnapshot("hci0", 2)); err != nil {
		t.Fatalf("Publish(hci0) error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got discovery.Snapshot
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.Adapter != "hci0" || got.Cycle != 2 {
		t.Errorf("file holds %s cycle %d, want hci0 cycle 2", got.Adapter, got.Cycle)
	}
}

func TestPerAdapter(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/tmp/{adapter}.json", true},
		{"/var/lib/bleradar/{adapter}/snapshot.yaml", true},
		{"/tmp/snapshot.json", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := PerAdapter(tt.path); got != tt.want {
			t.Errorf("PerAdapter(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestFile_PublishYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.yaml")
	f := NewFile(path, FormatYAML)

	if err := f.Publish(context.Background(), sampleSnapshot("sim0", 7)); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got discovery.Snapshot
	if err := yaml.Unmarshal(data, &got); err != nil {
		t.Fatalf("snapshot file is not valid YAML: %v", err)
	}
	if got.Adapter != "sim0" || got.Cycle != 7 {
		t.Errorf("got adapter %q cycle %d", got.Adapter, got.Cycle)
	}
}

func TestFile_CanceledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.json")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := NewFile(path, FormatJSON).Publish(ctx, sampleSnapshot("a", 1)); err == nil {
		t.Error("Publish() with canceled context should fail")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file written despite canceled context")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatJSON, false},
		{"JSON", FormatJSON, false},
		{"yml", FormatYAML, false},
		{"yaml", FormatYAML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
