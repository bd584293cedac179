package analysis

import (
	"math"
	"strings"

	"github.com/san-kum/vehsim/internal/vehicle"
)

type Point struct{ X, Y float64 }

// PhasePlane holds a trajectory projected onto two state functions.
type PhasePlane struct {
	XLabel, YLabel string
	Points         []Point
}

// NewPhasePlane plots body sideslip (x) against yaw rate (y). Samples
// below minSpeed are skipped as sideslip is undefined at rest.
func NewPhasePlane(states []vehicle.State, minSpeed float64) *PhasePlane {
	pp := &PhasePlane{
		XLabel: "beta [rad]",
		YLabel: "r [rad/s]",
		Points: make([]Point, 0, len(states)),
	}
	for _, s := range states {
		if s.Speed() < minSpeed {
			continue
		}
		pp.Points = append(pp.Points, Point{
			X: math.Atan2(s.VY, math.Abs(s.VX)),
			Y: s.R,
		})
	}
	return pp
}

// ASCII renders the plane with axes where they fall inside the bounds.
func (pp *PhasePlane) ASCII(width, height int) string {
	if pp == nil || len(pp.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := pp.Points[0].X, pp.Points[0].X
	minY, maxY := pp.Points[0].Y, pp.Points[0].Y
	for _, p := range pp.Points {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	col := func(x float64) int { return int((x - minX) / rangeX * float64(width-1)) }
	row := func(y float64) int { return height - 1 - int((y-minY)/rangeY*float64(height-1)) }

	for _, p := range pp.Points {
		r, c := row(p.Y), col(p.X)
		if r >= 0 && r < height && c >= 0 && c < width {
			canvas[r][c] = '•'
		}
	}

	if minX <= 0 && maxX >= 0 {
		c := col(0)
		for r := 0; r < height; r++ {
			if canvas[r][c] == ' ' {
				canvas[r][c] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		r := row(0)
		for c := 0; c < width; c++ {
			if canvas[r][c] == ' ' {
				canvas[r][c] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, line := range canvas {
		sb.WriteString(string(line))
		sb.WriteRune('\n')
	}
	return sb.String()
}
