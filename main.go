package main

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/gopole/environment/classiccontrol/cartpole"
	"github.com/samuelfneumann/gopole/environment/envconfig"
	"github.com/samuelfneumann/gopole/render"
	"github.com/samuelfneumann/gopole/trackers"
)

func main() {
	var seed uint64 = 192382

	// Create the environment
	config := envconfig.DefaultConfig()
	config.Integrator = envconfig.RK4

	e, step, err := config.Create(seed)
	if err != nil {
		panic(err)
	}

	// Track episodic returns and episode lengths
	returns := trackers.NewReturn("./data.bin")
	lengths := trackers.NewEpisodeLength("./lengths.bin")
	returns.Track(step)
	lengths.Track(step)

	// Run a scripted bang-bang policy: push the cart toward the side
	// the pole leans
	action := mat.NewVecDense(1, nil)
	for i := 0; i < 100_000; i++ {
		if step.Last() {
			step, err = e.Reset()
			if err != nil {
				panic(err)
			}
			returns.Track(step)
			lengths.Track(step)
			continue
		}

		force := cartpole.MaxForce
		if math.Signbit(step.Observation.AtVec(0)) {
			force = -force
		}
		action.SetVec(0, force)

		step, _, err = e.Step(action)
		if err != nil {
			panic(err)
		}
		returns.Track(step)
		lengths.Track(step)
	}
	returns.Save()
	lengths.Save()

	data := trackers.LoadData("./data.bin")
	if len(data) > 10 {
		data = data[len(data)-10:]
	}
	fmt.Println(data)

	// Save a snapshot of wherever the final episode ended up
	if c, ok := e.(*cartpole.Continuous); ok {
		if err := render.SavePNG("./cartpole.png", c.State(),
			c.Params()); err != nil {
			panic(err)
		}
	}
}
