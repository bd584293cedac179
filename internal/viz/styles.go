package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
)

var (
	canvasStyle      = lipgloss.NewStyle().Padding(1, 2)
	statsStyle       = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(46)
	headerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	activeParamStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	graphStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444")).Bold(true)

	StatusRunning = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff88"))
	StatusPaused  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffaa00"))

	SparkHigh = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88"))
	SparkMid  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00"))
	SparkLow  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
)

// Gauge renders a centred bar for a value in [-1, 1]; the left half fills
// for negative values.
func Gauge(v float64, width int) string {
	half := width / 2
	n := int(v * float64(half))
	if n > half {
		n = half
	}
	if n < -half {
		n = -half
	}

	left := strings.Repeat("░", half)
	right := strings.Repeat("░", half)
	if n < 0 {
		left = strings.Repeat("░", half+n) + SparkLow.Render(strings.Repeat("█", -n))
	} else if n > 0 {
		right = SparkHigh.Render(strings.Repeat("█", n)) + strings.Repeat("░", half-n)
	}
	return left + "│" + right
}

var sparkLevels = []rune("▁▂▃▄▅▆▇█")

// Sparkline shows the magnitude of the last width samples, scaled to the
// largest of them. Positive samples are drawn high, negative ones low.
func Sparkline(values []float64, width int) string {
	if len(values) > width {
		values = values[len(values)-width:]
	}
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}

	peak := lo.Max(lo.Map(values, func(v float64, _ int) float64 { return math.Abs(v) }))
	if peak == 0 {
		peak = 1
	}

	var b strings.Builder
	for _, v := range values {
		level := int(math.Abs(v) / peak * float64(len(sparkLevels)-1))
		c := string(sparkLevels[level])
		switch {
		case v > 0:
			b.WriteString(SparkHigh.Render(c))
		case v < 0:
			b.WriteString(SparkLow.Render(c))
		default:
			b.WriteString(SparkMid.Render(c))
		}
	}
	return b.String()
}
