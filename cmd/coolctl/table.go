package main

import (
	"fmt"
	"strings"

	"codeberg.org/mutker/coolctl/internal/sensors"
	"github.com/charmbracelet/lipgloss"
)

const (
	defaultMarker = " (default)"
	valueWidth    = 10
	minLabelWidth = 6
)

var (
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	sepStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("237"))
	defaultStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// renderSensors lays out a reading as a sensor/temperature table, marking
// the default sensor.
func renderSensors(samples []sensors.Sample) string {
	labelW := minLabelWidth
	for _, s := range samples {
		w := lipgloss.Width(s.Key)
		if s.Key == sensors.DefaultKey {
			w += len(defaultMarker)
		}
		labelW = max(labelW, w)
	}
	labelW += 2

	label := lipgloss.NewStyle().Width(labelW)
	value := lipgloss.NewStyle().Width(valueWidth).Align(lipgloss.Right)

	var b strings.Builder
	b.WriteString(headerStyle.Render(label.Render("Sensor") + value.Render("Temp (°C)")))
	b.WriteString("\n")
	b.WriteString(sepStyle.Render(strings.Repeat("─", labelW+valueWidth)))
	b.WriteString("\n")

	for _, s := range samples {
		name := s.Key
		if s.Key == sensors.DefaultKey {
			name += defaultStyle.Render(defaultMarker)
		}
		b.WriteString(label.Render(name))
		b.WriteString(value.Render(fmt.Sprintf("%.1f", s.Celsius)))
		b.WriteString("\n")
	}

	return b.String()
}
