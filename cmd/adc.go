// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Aurelia Instruments

package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aurelia-instruments/duetctl/pkg/duet"
)

var (
	adcSamples int

	// configADCSamples carries the adc_samples value from the config
	// file; the --samples flag wins when set explicitly.
	configADCSamples int
)

var adcCmd = &cobra.Command{
	Use:   "adc",
	Short: "Read the module's ADC channels",
}

var adcReadCmd = &cobra.Command{
	Use:   "read <channel>",
	Short: "Read an ADC channel and report the averaged code and voltage",
	Long: `Read an ADC channel and report the averaged code and voltage.

The channel may be given by number (0-8) or by schematic name:
DUTY_A, DUTY_A_POT, DUTY_B, DUTY_B_POT, CHORUS_POT, CV_A_POT,
CV_B_POT, CV_A, CV_B.`,
	Args: cobra.ExactArgs(1),
	RunE: runADCRead,
}

func init() {
	adcReadCmd.Flags().IntVarP(&adcSamples, "samples", "n", 0, "Number of samples to average (default 10)")
	adcCmd.AddCommand(adcReadCmd)
	rootCmd.AddCommand(adcCmd)
}

// parseADCChannel accepts a numeric index or a schematic name,
// case-insensitively.
func parseADCChannel(arg string) (duet.ADCChannel, error) {
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 0 || n > int(duet.ADCCVB) {
			return 0, fmt.Errorf("ADC channel %d out of range (0-%d)", n, duet.ADCCVB)
		}
		return duet.ADCChannel(n), nil
	}

	name := strings.ToUpper(strings.TrimSpace(arg))
	for ch := duet.ADCDutyA; ch <= duet.ADCCVB; ch++ {
		if ch.String() == name {
			return ch, nil
		}
	}
	return 0, fmt.Errorf("unknown ADC channel %q", arg)
}

func runADCRead(cmd *cobra.Command, args []string) error {
	channel, err := parseADCChannel(args[0])
	if err != nil {
		return err
	}

	samples := adcSamples
	if !cmd.Flags().Changed("samples") && configADCSamples > 0 {
		samples = configADCSamples
	}
	if samples <= 0 {
		samples = duet.DefaultADCSamples
	}

	client, _, closer, err := openClient()
	if err != nil {
		return err
	}
	defer closer()

	ctx := context.Background()

	revision, err := client.HardwareRevision(ctx)
	if err != nil {
		return fmt.Errorf("get hardware revision: %w", err)
	}

	code, err := client.ReadADCAverage(ctx, channel, samples)
	if err != nil {
		return fmt.Errorf("read %s: %w", channel, err)
	}

	volts := duet.CodeToVolts(revision, uint16(code+0.5))

	fmt.Printf("%s: %.1f (%.4f V, %d samples, rev %d)\n", channel, code, volts, samples, revision)
	return nil
}
