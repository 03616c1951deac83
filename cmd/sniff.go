// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Aurelia Instruments

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aurelia-instruments/duetctl/pkg/sysex"
)

var sniffCmd = &cobra.Command{
	Use:   "sniff",
	Short: "Display inbound SysEx frames in human-readable form",
	Long: `Continuously decode and display SysEx frames as they arrive.

Each frame is shown with timestamp, command name, and a hex dump of
the unstuffed payload. Useful for watching what the module volunteers
on the wire, or what another host is saying to it.

Supports both serial and WebSocket connections.`,
	RunE: runSniff,
}

func init() {
	rootCmd.AddCommand(sniffCmd)
}

func runSniff(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	fmt.Printf("duetctl - SysEx frame log\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	decoder := sysex.NewDecoder()
	buf := make([]byte, 128)

	for {
		n, err := conn.Read(buf)
		if err != nil {
			// A WebSocket read error usually means the connection is
			// permanently closed; exit gracefully.
			if err == ErrConnectionClosed {
				log.Warn().Msg("connection closed")
				return nil
			}
			log.Warn().Err(err).Msg("read error")
			continue
		}

		for i := 0; i < n; i++ {
			frame, err := decoder.DecodeByte(buf[i])
			if err != nil {
				fmt.Printf("[ERROR] %v\n", err)
				continue
			}
			if frame != nil {
				fmt.Print(sysex.FormatFrame(frame))
			}
		}
	}
}
