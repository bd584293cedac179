package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/vehsim/internal/config"
	"github.com/san-kum/vehsim/internal/experiment"
	"github.com/san-kum/vehsim/internal/vehicle"
)

var presetInfo = map[string]string{
	"acceleration": "75 m straight, full throttle",
	"skidpad":      "steady circle at 8 m/s",
	"slalom":       "sinusoidal steering",
	"coastdown":    "roll out from 20 m/s",
	"parking":      "full lock at walking pace",
	"lanechange":   "lane keeping with torque vectoring",
}

// Menu picks a preset. Chosen is empty when the user quit without picking.
type Menu struct {
	presets []string
	cursor  int
	Chosen  string
}

func NewMenu() *Menu {
	return &Menu{presets: config.ListPresets()}
}

func (m *Menu) Init() tea.Cmd { return nil }

func (m *Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.Chosen = m.presets[m.cursor]
		return m, tea.Quit
	}
	return m, nil
}

func (m *Menu) View() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render("VEHSIM") + "\n\n")
	for i, name := range m.presets {
		line := fmt.Sprintf("%-14s %s", name, presetInfo[name])
		if i == m.cursor {
			s.WriteString(activeParamStyle.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + labelStyle.Render(line) + "\n")
		}
	}
	s.WriteString("\n" + helpStyle.Render("↑↓:Select Enter:Run Q:Quit"))
	return s.String()
}

// DashboardFor builds a live view of a configured run. With manual set the
// preset driver is replaced by keyboard control.
func DashboardFor(reg *experiment.Registry, name string, cfg *config.Config, manual bool) (*Dashboard, error) {
	cfg = cfg.Clone()
	if manual {
		cfg.Driver = "manual"
	}
	p, err := cfg.GetVehicle()
	if err != nil {
		return nil, err
	}
	driver, err := reg.GetDriver(cfg.Driver, cfg.DriverParams, p)
	if err != nil {
		return nil, err
	}
	build := func(p vehicle.Params) (vehicle.Model, error) {
		return reg.GetModel(cfg.Model, cfg.Integrator, cfg.YawControl, p)
	}
	return NewDashboard(name, build, p, driver, cfg.GetInitState(), cfg.Dt)
}

// Interactive shows the preset menu, then runs the chosen preset live.
func Interactive(reg *experiment.Registry, manual bool) error {
	menu := NewMenu()
	if _, err := tea.NewProgram(menu).Run(); err != nil {
		return err
	}
	if menu.Chosen == "" {
		return nil
	}
	d, err := DashboardFor(reg, menu.Chosen, config.GetPreset(menu.Chosen), manual)
	if err != nil {
		return err
	}
	return Run(d)
}
