// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Aurelia Instruments

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/aurelia-instruments/duetctl/pkg/duet"
)

var monitorTUI bool

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Stream live telemetry from the module",
	Long: `Stream live telemetry from the module.

Prints one line per update until interrupted. With --tui, renders a
live full-screen view instead.`,
	RunE: runMonitor,
}

func init() {
	monitorCmd.Flags().BoolVar(&monitorTUI, "tui", false, "Render a live full-screen view")
	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(cmd *cobra.Command, args []string) error {
	client, connInfo, closer, err := openClient()
	if err != nil {
		return err
	}
	defer closer()

	if monitorTUI {
		return runMonitorTUI(client, connInfo)
	}

	updates := make(chan duet.MonitorUpdate, 16)
	err = client.EnableMonitor(context.Background(), func(u duet.MonitorUpdate) {
		select {
		case updates <- u:
		default:
			// Printing is slower than the stream; drop rather than
			// stall the transport's reader.
		}
	})
	if err != nil {
		return fmt.Errorf("enable monitor: %w", err)
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)

	fmt.Fprintln(os.Stderr, "Streaming telemetry, press Ctrl-C to stop")

	for {
		select {
		case u := <-updates:
			fmt.Printf("%s  castor knob=%+.4f cv=%+.4f  pollux knob=%+.4f cv=%+.4f  lfo=%+.4f  btn=%d  loop=%dus\n",
				time.Now().Format("15:04:05.000"),
				u.CastorPitchKnob, u.CastorPitchCV,
				u.PolluxPitchKnob, u.PolluxPitchCV,
				u.LFOValue, u.ButtonState, u.LoopTime)
		case <-interrupt:
			fmt.Fprintln(os.Stderr, "\nStopping monitor")
			if err := client.DisableMonitor(context.Background()); err != nil {
				return fmt.Errorf("disable monitor: %w", err)
			}
			return nil
		}
	}
}
