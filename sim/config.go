package sim

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/quillaja/gravtree/physics"
)

// ErrInvalidScenario wraps every validation failure from ParseScenario.
var ErrInvalidScenario = errors.New("invalid scenario")

// Scenario is the JSON description of a run.
//
//	{"name": "binary", "g": 1, "dt": 0.01, "steps": 100,
//	 "bodies": [{"mass": 1, "pos": [0, 0, 0]}, ...]}
//
// A missing g means physics.G, a missing theta means octree.DefaultTheta.
type Scenario struct {
	Name       string       `json:"name"`
	G          float64      `json:"g,omitempty"`
	Theta      *float64     `json:"theta,omitempty"`
	Dt         float64      `json:"dt"`
	Steps      int          `json:"steps,omitempty"`
	Workers    int          `json:"workers,omitempty"`
	Integrator string       `json:"integrator,omitempty"`
	AutoOrbit  bool         `json:"auto_orbit,omitempty"`
	Bodies     []BodyConfig `json:"bodies"`
}

// BodyConfig is one body of a scenario. A zero id is replaced by the
// body's index.
type BodyConfig struct {
	ID     uint64     `json:"id"`
	Mass   float64    `json:"mass"`
	Radius float64    `json:"radius,omitempty"`
	Pos    [3]float64 `json:"pos"`
	Vel    [3]float64 `json:"vel"`
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	sc, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// ParseScenario decodes and validates a scenario.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}
	if err := sc.validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (sc *Scenario) validate() error {
	if sc.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidScenario, sc.Dt)
	}
	if sc.G < 0 {
		return fmt.Errorf("%w: g must not be negative, got %g", ErrInvalidScenario, sc.G)
	}
	if sc.Theta != nil && *sc.Theta < 0 {
		return fmt.Errorf("%w: theta must not be negative, got %g", ErrInvalidScenario, *sc.Theta)
	}
	if sc.Steps < 0 {
		return fmt.Errorf("%w: steps must not be negative, got %d", ErrInvalidScenario, sc.Steps)
	}
	switch sc.Integrator {
	case "", Verlet, SymplecticEuler:
	default:
		return fmt.Errorf("%w: unknown integrator %q", ErrInvalidScenario, sc.Integrator)
	}
	if len(sc.Bodies) == 0 {
		return fmt.Errorf("%w: no bodies", ErrInvalidScenario)
	}
	for i, b := range sc.Bodies {
		if b.Mass < 0 {
			return fmt.Errorf("%w: body %d has negative mass %g", ErrInvalidScenario, i, b.Mass)
		}
		if b.Radius < 0 {
			return fmt.Errorf("%w: body %d has negative radius %g", ErrInvalidScenario, i, b.Radius)
		}
	}
	return nil
}

// Settings merges the scenario over DefaultSettings.
func (sc *Scenario) Settings() Settings {
	s := DefaultSettings()
	if sc.G > 0 {
		s.G = sc.G
	}
	if sc.Theta != nil {
		s.Theta = *sc.Theta
	}
	s.Dt = sc.Dt
	if sc.Workers > 0 {
		s.Workers = sc.Workers
	}
	if sc.Integrator != "" {
		s.Integrator = sc.Integrator
	}
	return s
}

// NewBodies builds the scenario's bodies. With auto_orbit, every body at
// rest except the first is given a circular velocity around the first,
// in the plane perpendicular to the z axis.
func (sc *Scenario) NewBodies() ([]*physics.Body, error) {
	g := sc.Settings().G
	bodies := make([]*physics.Body, len(sc.Bodies))
	for i, c := range sc.Bodies {
		id := c.ID
		if id == 0 {
			id = uint64(i)
		}
		bodies[i] = &physics.Body{
			ID:     id,
			Mass:   c.Mass,
			Radius: c.Radius,
			State: physics.State{
				Position: mgl64.Vec3(c.Pos),
				Velocity: mgl64.Vec3(c.Vel),
			},
		}
	}

	if !sc.AutoOrbit {
		return bodies, nil
	}
	central := bodies[0]
	for i, b := range bodies[1:] {
		if b.State.Velocity != (mgl64.Vec3{}) {
			continue
		}
		offset := b.Position().Sub(central.Position())
		v, err := physics.CircularVelocity(central.Mass, g, offset, mgl64.Vec3{0, 0, 1})
		if err != nil {
			return nil, fmt.Errorf("%w: body %d: %v", ErrInvalidScenario, i+1, err)
		}
		b.State.Velocity = v.Add(central.State.Velocity)
	}
	return bodies, nil
}
