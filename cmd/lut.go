// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Aurelia Instruments

package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var lutCmd = &cobra.Command{
	Use:   "lut",
	Short: "Manage the oscillator ramp calibration table",
}

var lutWriteCmd = &cobra.Command{
	Use:   "write <entry> <period> <castor> <pollux>",
	Short: "Stage one calibration table entry on the module",
	Long: `Stage one calibration table entry on the module.

entry is the table row index, period the oscillator timer period, and
castor/pollux the charge DAC codes for each oscillator. Staged entries
take effect immediately but are not persisted until "lut commit".`,
	Args: cobra.ExactArgs(4),
	RunE: runLUTWrite,
}

var lutCommitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Persist the staged calibration table to NVM",
	RunE:  runLUTCommit,
}

var lutEraseCmd = &cobra.Command{
	Use:   "erase",
	Short: "Erase the persisted calibration table",
	RunE:  runLUTErase,
}

func init() {
	lutCmd.AddCommand(lutWriteCmd, lutCommitCmd, lutEraseCmd)
	rootCmd.AddCommand(lutCmd)
}

func runLUTWrite(cmd *cobra.Command, args []string) error {
	entry, err := strconv.ParseUint(args[0], 10, 8)
	if err != nil {
		return fmt.Errorf("invalid entry %q: %w", args[0], err)
	}
	period, err := strconv.ParseUint(args[1], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid period %q: %w", args[1], err)
	}
	castor, err := strconv.ParseUint(args[2], 10, 16)
	if err != nil {
		return fmt.Errorf("invalid castor code %q: %w", args[2], err)
	}
	pollux, err := strconv.ParseUint(args[3], 10, 16)
	if err != nil {
		return fmt.Errorf("invalid pollux code %q: %w", args[3], err)
	}

	client, _, closer, err := openClient()
	if err != nil {
		return err
	}
	defer closer()

	if err := client.WriteLUTEntry(context.Background(), uint8(entry), uint32(period), uint16(castor), uint16(pollux)); err != nil {
		return fmt.Errorf("write entry %d: %w", entry, err)
	}

	fmt.Printf("Staged entry %d: period=%d castor=%d pollux=%d\n", entry, period, castor, pollux)
	return nil
}

func runLUTCommit(cmd *cobra.Command, args []string) error {
	client, _, closer, err := openClient()
	if err != nil {
		return err
	}
	defer closer()

	if err := client.WriteLUT(context.Background()); err != nil {
		return fmt.Errorf("commit table: %w", err)
	}

	fmt.Println("Calibration table written to NVM")
	return nil
}

func runLUTErase(cmd *cobra.Command, args []string) error {
	client, _, closer, err := openClient()
	if err != nil {
		return err
	}
	defer closer()

	if err := client.EraseLUT(context.Background()); err != nil {
		return fmt.Errorf("erase table: %w", err)
	}

	fmt.Println("Calibration table erased")
	return nil
}
