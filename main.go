// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Aurelia Instruments
//
// duetctl - factory and service tool for the Duet synthesizer module

package main

import (
	"os"

	"github.com/aurelia-instruments/duetctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
