// nbody runs a scenario file through the Barnes–Hut simulation loop.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/quillaja/gravtree/sim"
)

func main() {
	scenarioFile := flag.String("scenario", "", "scenario JSON file (required)")
	steps := flag.Int("steps", 0, "number of steps to run (overrides the scenario)")
	dt := flag.Float64("dt", 0, "seconds per step (overrides the scenario)")
	theta := flag.Float64("theta", -1, "opening threshold, 0 for exact sums (overrides the scenario)")
	g := flag.Float64("g", 0, "gravitational constant (overrides the scenario)")
	workers := flag.Int("workers", 0, "goroutines for acceleration queries (overrides the scenario)")
	integrator := flag.String("integrator", "", "verlet or euler (overrides the scenario)")
	quiet := flag.Bool("quiet", false, "do not print progress")
	flag.Parse()

	if *scenarioFile == "" {
		flag.Usage()
		os.Exit(2)
	}
	if err := run(*scenarioFile, *steps, *dt, *theta, *g, *workers, *integrator, *quiet); err != nil {
		fmt.Fprintf(os.Stderr, "nbody: %v\n", err)
		os.Exit(1)
	}
}

// simDays is the simulated span in days. It stays in float64 since a
// time.Duration overflows past about 292 years.
func simDays(dt float64, steps int) float64 {
	return dt * float64(steps) / 86400
}

func run(file string, steps int, dt, theta, g float64, workers int, integrator string, quiet bool) error {
	sc, err := sim.LoadScenario(file)
	if err != nil {
		return err
	}
	bodies, err := sc.NewBodies()
	if err != nil {
		return err
	}

	settings := sc.Settings()
	if dt > 0 {
		settings.Dt = dt
	}
	if theta >= 0 {
		settings.Theta = theta
	}
	if g > 0 {
		settings.G = g
	}
	if workers > 0 {
		settings.Workers = workers
	}
	switch integrator {
	case "":
	case sim.Verlet, sim.SymplecticEuler:
		settings.Integrator = integrator
	default:
		return fmt.Errorf("unknown integrator %q", integrator)
	}
	if steps <= 0 {
		steps = sc.Steps
	}

	// print parameters
	fmt.Printf("scenario: %s\nbodies: %d\nintegrator: %s\ntheta: %g\nG: %g\nstep: %g sec\nsteps: %d\nsimulation time: %.1f days\n",
		sc.Name,
		len(bodies),
		settings.Integrator,
		settings.Theta,
		settings.G,
		settings.Dt,
		steps,
		simDays(settings.Dt, steps))

	w := sim.NewWorld(bodies, settings)
	e0 := w.Energy()
	start := time.Now()

	for step := 1; step <= steps; step++ {
		stats := w.Step()
		if quiet {
			continue
		}

		// progress
		avgTimePerStep := time.Since(start) / time.Duration(step)
		estTimeLeft := avgTimePerStep * time.Duration(steps-step)
		fmt.Printf("%.1f%%, %d bodies, %d nodes, depth %d, %s/step, %s remaining, %s elapsed          \r",
			100*float64(step)/float64(steps),
			stats.Bodies,
			stats.Nodes,
			stats.Depth,
			avgTimePerStep.Truncate(time.Microsecond),
			estTimeLeft.Truncate(time.Second),
			time.Since(start).Truncate(time.Second),
		)
	}

	e1 := w.Energy()
	fmt.Printf("\nDone. Took %s\n", time.Since(start).Truncate(time.Millisecond))
	if e0 != 0 {
		fmt.Printf("energy: %g -> %g (%.3g relative)\n", e0, e1, (e1-e0)/e0)
	}
	for _, b := range w.Bodies {
		p, v := b.Position(), b.State.Velocity
		fmt.Printf("%6d  m=%-12.6g p=[%.4g, %.4g, %.4g] v=[%.4g, %.4g, %.4g]\n",
			b.ID, b.Mass, p[0], p[1], p[2], v[0], v[1], v[2])
	}
	return nil
}
