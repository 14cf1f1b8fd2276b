package config

import (
	"testing"
	"time"

	"gopkg.in/yaml.v2"
)

func TestDefaultConfig(t *testing.T) {
	c := Default()
	if len(c.TargetNames) == 0 || c.TargetNames[0] != "dolphin-emu" {
		t.Errorf("unexpected default target names: %v", c.TargetNames)
	}
	if len(c.BackingFiles) != 2 {
		t.Errorf("unexpected default backing files: %v", c.BackingFiles)
	}
	if c.SettleDelay() != 250*time.Millisecond {
		t.Errorf("SettleDelay() = %v, want 250ms", c.SettleDelay())
	}
}

func TestPartialConfigKeepsDefaults(t *testing.T) {
	in := "target-names:\n  - dolphin-emu-custom\n"
	c := Default()
	if err := yaml.Unmarshal([]byte(in), c); err != nil {
		t.Fatal(err)
	}
	c.fillDefaults()

	if len(c.TargetNames) != 1 || c.TargetNames[0] != "dolphin-emu-custom" {
		t.Errorf("TargetNames = %v, want the file's value", c.TargetNames)
	}
	if len(c.BackingFiles) != 2 {
		t.Errorf("BackingFiles = %v, want defaults", c.BackingFiles)
	}
	if c.SettleDelayMillis != 250 {
		t.Errorf("SettleDelayMillis = %d, want 250", c.SettleDelayMillis)
	}
}

func TestNegativeSettleDelayReplaced(t *testing.T) {
	c := &Config{SettleDelayMillis: -1}
	c.fillDefaults()
	if c.SettleDelayMillis != 250 {
		t.Errorf("SettleDelayMillis = %d, want 250", c.SettleDelayMillis)
	}
}
