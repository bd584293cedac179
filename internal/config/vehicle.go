package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/vehsim/internal/vehicle"
)

func DefaultVehicle() vehicle.Params {
	return vehicle.DefaultParams()
}

// LoadVehicle reads a vehicle parameter file. Groups or keys missing from
// the file keep their default values.
func LoadVehicle(path string) (vehicle.Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return vehicle.Params{}, err
	}
	return ParseVehicle(data)
}

func ParseVehicle(data []byte) (vehicle.Params, error) {
	p := DefaultVehicle()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return vehicle.Params{}, fmt.Errorf("parse vehicle: %w", err)
	}
	if err := p.Validate(); err != nil {
		return vehicle.Params{}, err
	}
	return p, nil
}

func SaveVehicle(path string, p vehicle.Params) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
