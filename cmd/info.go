// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Aurelia Instruments

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show firmware version, serial number, and hardware revision",
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	client, connInfo, closer, err := openClient()
	if err != nil {
		return err
	}
	defer closer()

	ctx := context.Background()

	version, err := client.Version(ctx)
	if err != nil {
		return fmt.Errorf("get version: %w", err)
	}

	serial, revision, err := client.SerialNumber(ctx)
	if err != nil {
		return fmt.Errorf("get serial number: %w", err)
	}

	fmt.Printf("Connection:        %s\n", connInfo)
	fmt.Printf("Firmware version:  %s\n", version)
	fmt.Printf("Serial number:     %s\n", serial)
	fmt.Printf("Hardware revision: %d\n", revision)
	return nil
}
