package viz

import (
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// Each terminal cell is one Braille character holding a 2x4 dot block.
// dotBits[row][col] is the bit of that dot above U+2800.
var dotBits = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

const brailleBlank rune = 0x2800

// Canvas is a Braille dot raster of Width x Height cells, addressed in dots:
// (Width*2) x (Height*4).
type Canvas struct {
	Width, Height int
	cells         []rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h, cells: make([]rune, w*h)}
	c.Clear()
	return c
}

// At returns the character of one cell.
func (c *Canvas) At(col, row int) rune {
	return c.cells[row*c.Width+col]
}

// Set lights the dot at (x, y). Dots off the canvas are dropped.
func (c *Canvas) Set(x, y int) {
	col, row := x/2, y/4
	if x < 0 || y < 0 || col >= c.Width || row >= c.Height {
		return
	}
	c.cells[row*c.Width+col] |= dotBits[y%4][x%2]
}

func (c *Canvas) Clear() {
	for i := range c.cells {
		c.cells[i] = brailleBlank
	}
}

// DrawLine lights one dot per step along the longer axis.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx, dy := x1-x0, y1-y0
	n := max(absInt(dx), absInt(dy))
	if n == 0 {
		c.Set(x0, y0)
		return
	}
	for i := 0; i <= n; i++ {
		f := float64(i) / float64(n)
		c.Set(x0+int(math.Round(f*float64(dx))), y0+int(math.Round(f*float64(dy))))
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	b.Grow(len(c.cells)*3 + c.Height)
	for row := 0; row < c.Height; row++ {
		b.WriteString(string(c.cells[row*c.Width : (row+1)*c.Width]))
		b.WriteByte('\n')
	}
	return b.String()
}

// Viewport maps world metres onto canvas sub-pixels, centred on a point,
// with +y pointing up the screen.
type Viewport struct {
	Center mgl64.Vec2
	Scale  float64 // sub-pixels per metre
	canvas *Canvas
}

func (v Viewport) Project(p mgl64.Vec2) (int, int) {
	d := p.Sub(v.Center).Mul(v.Scale)
	cx, cy := v.canvas.Width, v.canvas.Height*2
	return cx + int(math.Round(d.X())), cy - int(math.Round(d.Y()))
}

func (v Viewport) Plot(p mgl64.Vec2) {
	x, y := v.Project(p)
	v.canvas.Set(x, y)
}

func (v Viewport) Line(a, b mgl64.Vec2) {
	x0, y0 := v.Project(a)
	x1, y1 := v.Project(b)
	v.canvas.DrawLine(x0, y0, x1, y1)
}

// Polygon draws a closed outline.
func (v Viewport) Polygon(pts []mgl64.Vec2) {
	for i := range pts {
		v.Line(pts[i], pts[(i+1)%len(pts)])
	}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
