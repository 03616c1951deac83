// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Aurelia Instruments

package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aurelia-instruments/duetctl/pkg/duet"
)

// Messages
type monitorMsg duet.MonitorUpdate
type monitorTickMsg time.Time

// TUI model
type monitorModel struct {
	connInfo string

	last     *duet.MonitorUpdate
	lastAt   time.Time
	total    uint64
	rate     float64
	rateBase uint64

	width    int
	height   int
	quitting bool
}

func initialMonitorModel(connInfo string) monitorModel {
	return monitorModel{
		connInfo: connInfo,
		width:    80,
		height:   24,
	}
}

func (m monitorModel) Init() tea.Cmd {
	return tea.Batch(
		monitorTickCmd(),
		tea.EnterAltScreen,
	)
}

func monitorTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return monitorTickMsg(t)
	})
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case monitorTickMsg:
		m.rate = float64(m.total - m.rateBase)
		m.rateBase = m.total
		return m, monitorTickCmd()

	case monitorMsg:
		u := duet.MonitorUpdate(msg)
		m.last = &u
		m.lastAt = time.Now()
		m.total++
	}

	return m, nil
}

// pitchBar renders a pitch value in octaves as a centered bar.
func pitchBar(v float64, width int) string {
	if width < 3 {
		width = 3
	}
	center := width / 2
	pos := center + int(v/1.2*float64(center))
	if pos < 0 {
		pos = 0
	}
	if pos >= width {
		pos = width - 1
	}

	bar := make([]byte, width)
	for i := range bar {
		bar[i] = '-'
	}
	bar[center] = '|'
	bar[pos] = 'o'
	return string(bar)
}

func (m monitorModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	var s strings.Builder
	s.WriteString(titleStyle.Render("DUET - LIVE MONITOR"))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("Connection: %s | Press 'q' to quit", m.connInfo)))
	s.WriteString("\n\n")

	if m.last == nil {
		s.WriteString(warningStyle.Render("Waiting for telemetry..."))
		s.WriteString("\n")
		return s.String()
	}

	barWidth := m.width - 40
	if barWidth < 11 {
		barWidth = 11
	}

	pitch := strings.Builder{}
	pitch.WriteString(fmt.Sprintf("%s %s %s\n",
		labelStyle.Render("Castor knob:"),
		valueStyle.Render(fmt.Sprintf("%+.4f oct", m.last.CastorPitchKnob)),
		headerStyle.Render(pitchBar(m.last.CastorPitchKnob, barWidth)),
	))
	pitch.WriteString(fmt.Sprintf("%s %s %s\n",
		labelStyle.Render("Castor CV:  "),
		valueStyle.Render(fmt.Sprintf("%+.4f oct", m.last.CastorPitchCV)),
		headerStyle.Render(pitchBar(m.last.CastorPitchCV, barWidth)),
	))
	pitch.WriteString(fmt.Sprintf("%s %s %s\n",
		labelStyle.Render("Pollux knob:"),
		valueStyle.Render(fmt.Sprintf("%+.4f oct", m.last.PolluxPitchKnob)),
		headerStyle.Render(pitchBar(m.last.PolluxPitchKnob, barWidth)),
	))
	pitch.WriteString(fmt.Sprintf("%s %s %s\n",
		labelStyle.Render("Pollux CV:  "),
		valueStyle.Render(fmt.Sprintf("%+.4f oct", m.last.PolluxPitchCV)),
		headerStyle.Render(pitchBar(m.last.PolluxPitchCV, barWidth)),
	))
	pitch.WriteString(fmt.Sprintf("%s %s %s",
		labelStyle.Render("LFO:        "),
		valueStyle.Render(fmt.Sprintf("%+.4f    ", m.last.LFOValue)),
		headerStyle.Render(pitchBar(m.last.LFOValue, barWidth)),
	))
	s.WriteString(boxStyle.Render(pitch.String()))
	s.WriteString("\n\n")

	status := strings.Builder{}
	status.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
		labelStyle.Render("Button:"), valueStyle.Render(fmt.Sprintf("0x%02X", m.last.ButtonState)),
		labelStyle.Render("Updates:"), valueStyle.Render(fmt.Sprintf("%d", m.total)),
		labelStyle.Render("Rate:"), valueStyle.Render(fmt.Sprintf("%.0f/s", m.rate)),
	))
	status.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s",
		labelStyle.Render("Loop:"), valueStyle.Render(fmt.Sprintf("%d us", m.last.LoopTime)),
		labelStyle.Render("Animation:"), valueStyle.Render(fmt.Sprintf("%d us", m.last.AnimationTime)),
		labelStyle.Render("Sample:"), valueStyle.Render(fmt.Sprintf("%d us", m.last.SampleTime)),
	))
	s.WriteString(boxStyle.Render(status.String()))
	s.WriteString("\n")

	return s.String()
}

func runMonitorTUI(client *duet.Client, connInfo string) error {
	p := tea.NewProgram(initialMonitorModel(connInfo))

	err := client.EnableMonitor(context.Background(), func(u duet.MonitorUpdate) {
		p.Send(monitorMsg(u))
	})
	if err != nil {
		return fmt.Errorf("enable monitor: %w", err)
	}

	_, runErr := p.Run()

	if err := client.DisableMonitor(context.Background()); err != nil {
		log.Warn().Err(err).Msg("disable monitor failed")
	}

	return runErr
}
