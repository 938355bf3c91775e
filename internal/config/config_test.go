package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/datasweeper/internal/export"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.DefaultTarget != "csv" || c.PreviewRows != 5 || c.ChartWidth != 40 {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.ServeAddr != "127.0.0.1:8080" || c.MaxUploadMB != 32 || c.LogLevel != "info" || c.LogFormat != "text" {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if tgt, err := c.Target(); err != nil || tgt != export.CSV {
		t.Fatalf("Target() = %v, %v", tgt, err)
	}
}

func TestSaveThenLoadWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	c := &Global{DefaultTarget: "xlsx", PreviewRows: 9, ChartWidth: 20, LogLevel: "debug", LogFormat: "json", ServeAddr: ":9000", MaxUploadMB: 4}
	if err := Save(c, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config not written: %v", err)
	}

	t.Setenv("DATASWEEPER_CHART_WIDTH", "12")
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.DefaultTarget != "xlsx" || got.PreviewRows != 9 || got.ServeAddr != ":9000" || got.MaxUploadMB != 4 {
		t.Fatalf("file values not loaded: %+v", got)
	}
	if got.ChartWidth != 12 {
		t.Fatalf("env override ignored: chart_width = %d", got.ChartWidth)
	}
	if tgt, _ := got.Target(); tgt != export.Spreadsheet {
		t.Fatalf("Target() = %v, want Spreadsheet", tgt)
	}
}

func TestSetValidates(t *testing.T) {
	c := &Global{}
	ok := map[string]string{
		"default_target": "Excel",
		"preview_rows":   "3",
		"log_level":      "WARN",
		"log_format":     "json",
		"out_dir":        "out",
		"serve_addr":     ":8081",
	}
	for k, v := range ok {
		if err := c.Set(k, v); err != nil {
			t.Fatalf("Set(%s, %s): %v", k, v, err)
		}
	}
	if c.DefaultTarget != "xlsx" || c.LogLevel != "warn" || c.PreviewRows != 3 {
		t.Fatalf("unexpected values: %+v", c)
	}
	if v, _ := c.Get("preview_rows"); v != "3" {
		t.Fatalf("Get(preview_rows) = %q", v)
	}

	bad := map[string]string{
		"default_target": "pdf",
		"chart_width":    "0",
		"max_upload_mb":  "lots",
		"log_level":      "loud",
		"log_format":     "xml",
		"api_key":        "x",
	}
	for k, v := range bad {
		if err := c.Set(k, v); err == nil {
			t.Fatalf("Set(%s, %s) should fail", k, v)
		}
	}
}

func TestGetCoversEveryKey(t *testing.T) {
	c := &Global{}
	for _, k := range Keys {
		if _, err := c.Get(k); err != nil {
			t.Fatalf("Get(%s): %v", k, err)
		}
	}
}
