// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Aurelia Instruments

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var resetBootloader bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restart the module's firmware",
	Long: `Restart the module's firmware.

With --bootloader, the module restarts into its UF2 bootloader and
mounts as a mass-storage device for firmware updates.`,
	RunE: runReset,
}

func init() {
	resetCmd.Flags().BoolVar(&resetBootloader, "bootloader", false, "Restart into the UF2 bootloader")
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	client, _, closer, err := openClient()
	if err != nil {
		return err
	}
	defer closer()

	ctx := context.Background()

	if resetBootloader {
		if err := client.ResetIntoBootloader(ctx); err != nil {
			return fmt.Errorf("reset into bootloader: %w", err)
		}
		fmt.Println("Module restarting into bootloader")
		return nil
	}

	if err := client.SoftReset(ctx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	fmt.Println("Module restarting")
	return nil
}
