// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Aurelia Instruments

package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func resetConfigGlobals(t *testing.T) {
	t.Helper()
	savedPort, savedBaud := portName, baudRate
	savedURL, savedUser, savedVerify := wsURL, wsUsername, wsNoSSLVerify
	savedPath, savedSamples := configPath, configADCSamples
	t.Cleanup(func() {
		portName, baudRate = savedPort, savedBaud
		wsURL, wsUsername, wsNoSSLVerify = savedURL, savedUser, savedVerify
		configPath, configADCSamples = savedPath, savedSamples
	})
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestApplyConfigFileOverlaysUnsetFlags(t *testing.T) {
	resetConfigGlobals(t)

	configPath = writeConfig(t, `
port = "/dev/ttyACM1"
baud = 57600
username = "service"
no_ssl_verify = true
adc_samples = 32
`)

	if err := applyConfigFile(rootCmd); err != nil {
		t.Fatalf("apply config: %v", err)
	}
	if portName != "/dev/ttyACM1" {
		t.Fatalf("unexpected port: %q", portName)
	}
	if baudRate != 57600 {
		t.Fatalf("unexpected baud: %d", baudRate)
	}
	if wsUsername != "service" {
		t.Fatalf("unexpected username: %q", wsUsername)
	}
	if !wsNoSSLVerify {
		t.Fatalf("expected no_ssl_verify set")
	}
	if configADCSamples != 32 {
		t.Fatalf("unexpected adc samples: %d", configADCSamples)
	}
}

func TestApplyConfigFilePartialFileLeavesDefaults(t *testing.T) {
	resetConfigGlobals(t)

	portName = ""
	baudRate = 115200
	configPath = writeConfig(t, `port = "/dev/ttyACM0"`)

	if err := applyConfigFile(rootCmd); err != nil {
		t.Fatalf("apply config: %v", err)
	}
	if portName != "/dev/ttyACM0" {
		t.Fatalf("unexpected port: %q", portName)
	}
	if baudRate != 115200 {
		t.Fatalf("baud changed without being defined: %d", baudRate)
	}
}

func TestApplyConfigFileRejectsBadSampleCount(t *testing.T) {
	resetConfigGlobals(t)

	configPath = writeConfig(t, `adc_samples = 0`)

	if err := applyConfigFile(rootCmd); err == nil {
		t.Fatalf("expected sample count validation error")
	}
}

func TestApplyConfigFileMissingExplicitFileIsError(t *testing.T) {
	resetConfigGlobals(t)

	configPath = filepath.Join(t.TempDir(), "nope.toml")

	if err := applyConfigFile(rootCmd); err == nil {
		t.Fatalf("expected error for missing --config file")
	}
}

// Keep this test last in the file: marking a flag as changed on the
// shared root command cannot be undone.
func TestApplyConfigFileExplicitFlagWins(t *testing.T) {
	resetConfigGlobals(t)

	if err := rootCmd.PersistentFlags().Set("baud", "9600"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	baudRate = 9600
	configPath = writeConfig(t, `baud = 57600`)

	if err := applyConfigFile(rootCmd); err != nil {
		t.Fatalf("apply config: %v", err)
	}
	if baudRate != 9600 {
		t.Fatalf("config file overrode explicit flag: %d", baudRate)
	}
}
