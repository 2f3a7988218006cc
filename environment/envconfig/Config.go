// Package envconfig provides configuration structs for configuring
// environments with default physical parameters and tasks. Environment
// configurations in this package are YAML serializable.
package envconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	env "github.com/samuelfneumann/gopole/environment"
	"github.com/samuelfneumann/gopole/environment/classiccontrol/cartpole"
	ts "github.com/samuelfneumann/gopole/timestep"
)

// IntegratorName stores the integration strategies that can be
// configured with this package
type IntegratorName string

// Integration strategies available for configuration
const (
	Euler IntegratorName = "Euler"
	RK4   IntegratorName = "RK4"
)

// Config implements a specific configuration of the cart-pole
// environment: the integration strategy, the episode cutoff, the
// discount, and the physical parameters.
type Config struct {
	Integrator    IntegratorName `yaml:"integrator"`
	EpisodeCutoff uint           `yaml:"episode_cutoff"`
	Discount      float64        `yaml:"discount"`

	Gravity               float64 `yaml:"gravity"`
	CartMass              float64 `yaml:"cart_mass"`
	PoleMass              float64 `yaml:"pole_mass"`
	PoleLength            float64 `yaml:"pole_length"`
	MaxForce              float64 `yaml:"max_force"`
	Dt                    float64 `yaml:"dt"`
	AngleThreshold        float64 `yaml:"angle_threshold"`
	DisplacementThreshold float64 `yaml:"displacement_threshold"`
}

// DefaultConfig returns the reference environment configuration:
// forward-Euler integration, a 1000-step episode cutoff, and the
// default physical parameters.
func DefaultConfig() Config {
	params := cartpole.DefaultParams()

	return Config{
		Integrator:            Euler,
		EpisodeCutoff:         1000,
		Discount:              1.0,
		Gravity:               params.Gravity,
		CartMass:              params.CartMass,
		PoleMass:              params.PoleMass,
		PoleLength:            params.PoleLength,
		MaxForce:              params.MaxForce,
		Dt:                    params.Dt,
		AngleThreshold:        params.AngleThreshold,
		DisplacementThreshold: params.DisplacementThreshold,
	}
}

// Load reads a Config from the YAML file at path. Fields missing from
// the file keep their default values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("load: could not read config: %v", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("load: could not parse config: %v", err)
	}
	return config, nil
}

// Save writes the Config as YAML to the file at path
func Save(path string, config Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("save: could not encode config: %v", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Params returns the physical parameters described by the Config
func (c Config) Params() cartpole.Params {
	return cartpole.Params{
		Gravity:               c.Gravity,
		CartMass:              c.CartMass,
		PoleMass:              c.PoleMass,
		PoleLength:            c.PoleLength,
		MaxForce:              c.MaxForce,
		Dt:                    c.Dt,
		AngleThreshold:        c.AngleThreshold,
		DisplacementThreshold: c.DisplacementThreshold,
	}
}

// Create returns the environment described by the Config as well as
// the first timestep of the environment
func (c Config) Create(seed uint64) (env.Environment, ts.TimeStep, error) {
	var integrator cartpole.Integrator
	switch c.Integrator {
	case Euler, "":
		integrator = cartpole.NewEuler()
	case RK4:
		integrator = cartpole.NewRK4()
	default:
		return nil, ts.TimeStep{}, fmt.Errorf("create: no such "+
			"integrator %v", c.Integrator)
	}

	params := c.Params()
	starter := cartpole.NewStateStarter(seed)
	task := cartpole.NewRegulate(starter, int(c.EpisodeCutoff), params)

	return cartpole.NewContinuousWith(task, c.Discount, params, integrator)
}
