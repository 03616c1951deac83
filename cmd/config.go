// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Aurelia Instruments

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
)

// duetctl config.toml key mapping to connection defaults. Explicit
// command-line flags always win over the file.
type fileConfig struct {
	Port        string `toml:"port"`
	Baud        int    `toml:"baud"`
	URL         string `toml:"url"`
	Username    string `toml:"username"`
	NoSSLVerify bool   `toml:"no_ssl_verify"`
	ADCSamples  int    `toml:"adc_samples"`
}

// defaultConfigPath returns ~/.config/duetctl/config.toml, or "" when
// the home directory cannot be determined.
func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "duetctl", "config.toml")
}

// applyConfigFile overlays config file values under any flag the user
// did not set explicitly. A missing default-location file is fine; a
// missing --config file is an error.
func applyConfigFile(cmd *cobra.Command) error {
	path := configPath
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath()
		if path == "" {
			return nil
		}
		if _, err := os.Stat(path); err != nil {
			return nil
		}
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}

	flags := cmd.Root().PersistentFlags()

	if meta.IsDefined("port") && !flags.Changed("port") {
		portName = strings.TrimSpace(raw.Port)
	}
	if meta.IsDefined("baud") && !flags.Changed("baud") {
		baudRate = raw.Baud
	}
	if meta.IsDefined("url") && !flags.Changed("url") {
		wsURL = strings.TrimSpace(raw.URL)
	}
	if meta.IsDefined("username") && !flags.Changed("username") {
		wsUsername = strings.TrimSpace(raw.Username)
	}
	if meta.IsDefined("no_ssl_verify") && !flags.Changed("no-ssl-verify") {
		wsNoSSLVerify = raw.NoSSLVerify
	}
	if meta.IsDefined("adc_samples") {
		if raw.ADCSamples <= 0 {
			return fmt.Errorf("load config %s: adc_samples must be positive, got %d", path, raw.ADCSamples)
		}
		configADCSamples = raw.ADCSamples
	}

	log.Debug().Str("path", path).Msg("applied config file")
	return nil
}
