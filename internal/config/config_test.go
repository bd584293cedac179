package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/vehsim/internal/dynamo"
	"github.com/san-kum/vehsim/internal/sim"
	"github.com/san-kum/vehsim/internal/vehicle"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "bicycle", cfg.Model)
	assert.Equal(t, "euler", cfg.Integrator)
	assert.Positive(t, cfg.Dt)
	assert.Positive(t, cfg.Duration)

	sc, err := cfg.SimConfig()
	require.NoError(t, err)
	assert.Equal(t, sim.RecoveryHalt, sc.Recovery)
	assert.Equal(t, DefaultMaxFailures, sc.MaxFailures)
}

func TestSimConfigRejectsUnknownRecovery(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Recovery = "pray"
	_, err := cfg.SimConfig()
	assert.Error(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")

	cfg := GetPreset("slalom")
	require.NotNil(t, cfg)
	cfg.Seed = 42
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("driver: cruise\ninit_state:\n  vx: 3\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "cruise", cfg.Driver)
	assert.Equal(t, "bicycle", cfg.Model)
	assert.Equal(t, DefaultDt, cfg.Dt)
	assert.Equal(t, vehicle.State{VX: 3}, cfg.GetInitState())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestParseVehicle(t *testing.T) {
	p, err := ParseVehicle([]byte(`
inertia:
  m: 250
tire:
  D: 1.4
kinematics:
  axle_load_split: true
`))
	require.NoError(t, err)

	want := vehicle.DefaultParams()
	want.Inertia.M = 250
	want.Tire.D = 1.4
	want.Kinematic.AxleLoadSplit = true
	assert.Equal(t, want, p)
}

func TestParseVehicleRejectsBadParams(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"zero mass", "inertia:\n  m: 0\n"},
		{"negative wheelbase", "kinematics:\n  l_R: -0.7\n"},
		{"load fraction", "kinematics:\n  w_front: 1.5\n"},
		{"negative drag", "aero:\n  c_drag: -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseVehicle([]byte(tt.yaml))
			assert.ErrorIs(t, err, dynamo.ErrParameterBounds)
		})
	}
}

func TestVehicleRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "car.yaml")
	p := DefaultVehicle()
	p.Aero.CDown = 2.5
	require.NoError(t, SaveVehicle(path, p))

	loaded, err := LoadVehicle(path)
	require.NoError(t, err)
	assert.Equal(t, p, loaded)

	cfg := DefaultConfig()
	cfg.Vehicle = path
	got, err := cfg.GetVehicle()
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("acceleration")
	require.NotNil(t, cfg)
	assert.Equal(t, 75.0, cfg.StopDistance)
	assert.Equal(t, 1.0, cfg.DriverParams.DC)

	cfg.Metrics[0] = "changed"
	assert.Equal(t, "finish_time", GetPreset("acceleration").Metrics[0])

	assert.Nil(t, GetPreset("endurance"))
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	assert.Equal(t, []string{"acceleration", "coastdown", "lanechange", "parking", "skidpad", "slalom"}, names)

	for _, name := range names {
		_, err := GetPreset(name).SimConfig()
		assert.NoError(t, err, name)
	}
}
