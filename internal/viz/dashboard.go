package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/vehsim/internal/control"
	"github.com/san-kum/vehsim/internal/sim"
	"github.com/san-kum/vehsim/internal/vehicle"
)

const (
	width           = 72
	height          = 24
	historyCapacity = 600
	trailCapacity   = 400
	frameRate       = 60
	gridSpacing     = 5.0 // m

	steerStep    = 0.02
	throttleStep = 0.1
)

// Tunable parameters offered in the dashboard, in display order.
var tunable = []string{"m", "I_z", "c_down", "cm1", "cr0", "D", "shrinkage"}

// Snapshot stores state at a specific time for replay.
type Snapshot struct {
	State vehicle.State
	Input vehicle.Input
	Time  float64
}

// Builder makes a fresh model for a parameter set. The dashboard calls it
// whenever a parameter is tuned, since a model's parameters are fixed.
type Builder func(p vehicle.Params) (vehicle.Model, error)

type TickMsg time.Time

// Dashboard is the Bubble Tea model of the live view.
type Dashboard struct {
	name          string
	build         Builder
	driver        sim.Driver
	manual        *control.Manual
	simulator     *sim.Simulator
	params        vehicle.Params
	initialParams vehicle.Params
	selected      int
	state         vehicle.State
	initialState  vehicle.State
	in            vehicle.Input
	t, dt         float64
	canvas        *Canvas
	scale         float64
	trail         []mgl64.Vec2
	speedHistory  []float64
	yawHistory    []float64
	history       []Snapshot
	playHead      int
	running       bool
	showHelp      bool
	failures      int
	lastErr       error
}

// NewDashboard builds the live view. When driver is a *control.Manual the
// arrow keys drive the car.
func NewDashboard(name string, build Builder, p vehicle.Params, driver sim.Driver, x0 vehicle.State, dt float64) (*Dashboard, error) {
	model, err := build(p)
	if err != nil {
		return nil, err
	}
	d := &Dashboard{
		name:          name,
		build:         build,
		driver:        driver,
		simulator:     sim.New(model, driver),
		params:        p,
		initialParams: p,
		state:         x0,
		initialState:  x0,
		dt:            dt,
		canvas:        NewCanvas(width, height),
		scale:         4,
		trail:         make([]mgl64.Vec2, 0, trailCapacity),
		speedHistory:  make([]float64, 0, historyCapacity),
		yawHistory:    make([]float64, 0, historyCapacity),
		history:       make([]Snapshot, 0, historyCapacity),
		playHead:      -1,
		running:       true,
	}
	if m, ok := driver.(*control.Manual); ok {
		d.manual = m
	}
	return d, nil
}

func (d *Dashboard) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (d *Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return d, d.handleKey(msg)
	case TickMsg:
		if d.running {
			if d.playHead == -1 {
				d.advanceFrame()
			} else {
				d.playHead++
				if d.playHead >= len(d.history) {
					d.playHead = -1
				}
			}
		}
		return d, tick()
	}
	return d, nil
}

func (d *Dashboard) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit
	case " ":
		d.running = !d.running
	case "r":
		d.reset()
	case "[":
		d.scrub(-1)
	case "]":
		d.scrub(1)
	case "tab":
		d.selected = (d.selected + 1) % len(tunable)
	case "+", "=":
		d.adjustParam(1.05)
	case "-", "_":
		d.adjustParam(0.95)
	case "z":
		d.scale = math.Min(d.scale*1.25, 64)
	case "Z":
		d.scale = math.Max(d.scale/1.25, 0.25)
	case "?":
		d.showHelp = !d.showHelp
	}

	if d.manual != nil {
		switch msg.String() {
		case "left", "a":
			d.manual.Nudge(steerStep, 0)
		case "right", "d":
			d.manual.Nudge(-steerStep, 0)
		case "up", "w":
			d.manual.Nudge(0, throttleStep)
		case "down", "s":
			d.manual.Nudge(0, -throttleStep)
		case "c":
			d.manual.Center()
		}
	}
	return nil
}

// advanceFrame runs enough ticks to keep the simulation in real time.
func (d *Dashboard) advanceFrame() {
	steps := int(math.Max(1, math.Round(1.0/frameRate/d.dt)))
	for i := 0; i < steps; i++ {
		d.Step()
	}
}

// Step advances one tick. A rejected step keeps the previous state.
func (d *Dashboard) Step() {
	next, in, err := d.simulator.Step(d.state, d.t, d.dt)
	d.in = in
	if err != nil {
		d.failures++
		d.lastErr = err
		next = d.state
	}
	d.state = next
	d.t += d.dt

	d.trail = appendCapped(d.trail, mgl64.Vec2{d.state.X, d.state.Y}, trailCapacity)
	d.speedHistory = appendCapped(d.speedHistory, d.state.Speed(), historyCapacity)
	d.yawHistory = appendCapped(d.yawHistory, d.state.R, historyCapacity)
	d.history = appendCapped(d.history, Snapshot{State: d.state, Input: in, Time: d.t}, historyCapacity)
}

func appendCapped[T any](s []T, v T, capacity int) []T {
	s = append(s, v)
	if len(s) > capacity {
		s = s[1:]
	}
	return s
}

func (d *Dashboard) adjustParam(factor float64) {
	key := tunable[d.selected]
	p := d.params
	if err := p.SetParam(key, p.GetParams()[key]*factor); err != nil {
		d.lastErr = err
		return
	}
	if err := p.Validate(); err != nil {
		d.lastErr = err
		return
	}
	if err := d.rebuild(p); err != nil {
		d.lastErr = err
	}
}

func (d *Dashboard) rebuild(p vehicle.Params) error {
	model, err := d.build(p)
	if err != nil {
		return err
	}
	d.params = p
	d.simulator = sim.New(model, d.driver)
	return nil
}

// scrub changes the playback position in history.
func (d *Dashboard) scrub(dir int) {
	if d.playHead == -1 {
		if len(d.history) == 0 {
			return
		}
		d.playHead = len(d.history) - 1
		d.running = false
	}
	d.playHead += dir
	if d.playHead < 0 {
		d.playHead = 0
	}
	if d.playHead >= len(d.history) {
		d.playHead = -1
	}
}

// reset restores the initial state and parameters.
func (d *Dashboard) reset() {
	d.t = 0
	d.state = d.initialState
	d.in = vehicle.Input{}
	d.trail = d.trail[:0]
	d.speedHistory = d.speedHistory[:0]
	d.yawHistory = d.yawHistory[:0]
	d.history = d.history[:0]
	d.playHead = -1
	d.failures = 0
	d.lastErr = nil
	if d.manual != nil {
		d.manual.Center()
	}
	if r, ok := d.driver.(interface{ Reset() }); ok {
		r.Reset()
	}
	if err := d.rebuild(d.initialParams); err != nil {
		d.lastErr = err
	}
}

// shown returns the snapshot on screen: the replay position or the live state.
func (d *Dashboard) shown() Snapshot {
	if d.playHead >= 0 && d.playHead < len(d.history) {
		return d.history[d.playHead]
	}
	return Snapshot{State: d.state, Input: d.in, Time: d.t}
}

// draw renders the track view centred on the car.
func (d *Dashboard) draw(snap Snapshot) {
	d.canvas.Clear()
	s := snap.State
	vp := Viewport{Center: mgl64.Vec2{s.X, s.Y}, Scale: d.scale, canvas: d.canvas}

	// Ground markers so motion is visible while the camera follows the car.
	halfW := float64(d.canvas.Width) / d.scale
	halfH := float64(d.canvas.Height*2) / d.scale
	for gx := math.Floor((s.X-halfW)/gridSpacing) * gridSpacing; gx <= s.X+halfW; gx += gridSpacing {
		for gy := math.Floor((s.Y-halfH)/gridSpacing) * gridSpacing; gy <= s.Y+halfH; gy += gridSpacing {
			vp.Plot(mgl64.Vec2{gx, gy})
		}
	}

	for _, p := range d.trail {
		vp.Plot(p)
	}

	vp.Polygon(ChassisOutline(d.params.Kinematic, s))
	a, b := FrontWheel(d.params.Kinematic, s, snap.Input.Delta)
	vp.Line(a, b)
}

// ChassisOutline returns the world-frame corners of the car body.
func ChassisOutline(k vehicle.Kinematic, s vehicle.State) []mgl64.Vec2 {
	halfTrack := k.BF / 2
	body := []mgl64.Vec2{
		{k.LF, halfTrack},
		{-k.LR, halfTrack},
		{-k.LR, -halfTrack},
		{k.LF, -halfTrack},
	}
	rot := mgl64.Rotate2D(s.Yaw)
	pos := mgl64.Vec2{s.X, s.Y}
	out := make([]mgl64.Vec2, len(body))
	for i, c := range body {
		out[i] = pos.Add(rot.Mul2x1(c))
	}
	return out
}

// FrontWheel returns the endpoints of a steered wheel at the front axle.
func FrontWheel(k vehicle.Kinematic, s vehicle.State, delta float64) (mgl64.Vec2, mgl64.Vec2) {
	const radius = 0.25
	rot := mgl64.Rotate2D(s.Yaw)
	hub := mgl64.Vec2{s.X, s.Y}.Add(rot.Mul2x1(mgl64.Vec2{k.LF, 0}))
	dir := mgl64.Rotate2D(s.Yaw + delta).Mul2x1(mgl64.Vec2{radius, 0})
	return hub.Sub(dir), hub.Add(dir)
}

func (d *Dashboard) View() string {
	snap := d.shown()
	d.draw(snap)
	canvasView := canvasStyle.Render(d.canvas.String())

	status := StatusRunning.Render("RUNNING")
	switch {
	case d.playHead != -1:
		status = StatusPaused.Render(fmt.Sprintf("REPLAY (%.1fs)", snap.Time-d.t))
	case !d.running:
		status = StatusPaused.Render("PAUSED")
	}

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(d.name)) + "\n")
	s.WriteString(status + "\n\n")

	if len(d.speedHistory) > 1 {
		chart := asciigraph.Plot(d.speedHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Speed [m/s]"))
		s.WriteString(graphStyle.Render(chart) + "\n")
		s.WriteString(labelStyle.Render("Yaw rate") + Sparkline(d.yawHistory, 30) + "\n\n")
	}

	st := snap.State
	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", snap.Time))
	row("Position", fmt.Sprintf("%.1f, %.1f m", st.X, st.Y))
	row("Heading", fmt.Sprintf("%.1f°", st.Yaw*180/math.Pi))
	row("Speed", fmt.Sprintf("%.2f m/s", st.Speed()))
	row("v_x / v_y", fmt.Sprintf("%.2f / %.2f", st.VX, st.VY))
	row("Yaw rate", fmt.Sprintf("%.3f rad/s", st.R))
	row("Blend", fmt.Sprintf("%.2f", vehicle.KinematicBlend(st.Speed())))
	s.WriteString(labelStyle.Render("Steer") + Gauge(snap.Input.Delta/0.35, 20) + "\n")
	s.WriteString(labelStyle.Render("Throttle") + Gauge(snap.Input.DC, 20) + "\n")
	if d.failures > 0 {
		row("Rejected", fmt.Sprintf("%d", d.failures))
	}
	if d.lastErr != nil {
		s.WriteString(errorStyle.Render(d.lastErr.Error()) + "\n")
	}

	s.WriteString("\nPARAMETERS\n")
	current, initial := d.params.GetParams(), d.initialParams.GetParams()
	for i, k := range tunable {
		val, ref := current[k], initial[k]
		barWidth, ratio := 10, 0.5
		if ref != 0 {
			ratio = val / (2.0 * ref)
		}
		ratio = math.Max(0, math.Min(1, ratio))
		filled := int(ratio * float64(barWidth))
		bar := "[" + strings.Repeat("=", filled) + strings.Repeat("-", barWidth-filled) + "]"
		line := fmt.Sprintf("%-10s %s %.3g", k, bar, val)
		if i == d.selected {
			s.WriteString(activeParamStyle.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + labelStyle.Render(line) + "\n")
		}
	}

	keys := "SP:Pause R:Reset Q:Quit ?:Help\nTab:Param +/-:Tune [ ]:Replay"
	if d.manual != nil {
		keys += "\n←→:Steer ↑↓:Throttle C:Center"
	}
	s.WriteString(helpStyle.Render("─────────────────────\n" + keys))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if d.showHelp {
		return helpOverlay + "\n\n" + mainView
	}
	return mainView
}

const helpOverlay = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  R        - Reset run and parameters ║
║  Q        - Quit                     ║
║  Tab      - Cycle parameters         ║
║  + / -    - Tune parameter (±5%)     ║
║  z / Z    - Zoom in / out            ║
║  [ / ]    - Replay back / forward    ║
║  Arrows   - Steer and throttle       ║
║  C        - Center controls          ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`

// Run starts the dashboard full screen and blocks until it quits.
func Run(d *Dashboard) error {
	_, err := tea.NewProgram(d, tea.WithAltScreen()).Run()
	return err
}
