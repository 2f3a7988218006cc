// Package render draws 2D side-view snapshots of the cart-pole
// environment. It is a read-only collaborator: it borrows a state
// snapshot and the physical parameters for the duration of one call
// and owns no environment state.
package render

import (
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/gopole/environment/classiccontrol/cartpole"
)

const (
	ViewportW float64 = 600.0
	ViewportH float64 = 400.0
	Scale     float64 = 100.0 // Pixels per metre

	cartW     float64 = 0.4  // Metres
	cartH     float64 = 0.25 // Metres
	axleY     float64 = ViewportH * 0.75
	lineWidth float64 = 2.0
)

var (
	background    = color.RGBA{255, 255, 255, 255}
	trackShade    = color.RGBA{120, 120, 120, 255}
	cartShade     = color.RGBA{40, 40, 40, 255}
	poleShade     = color.RGBA{170, 110, 40, 255}
	axleShade     = color.RGBA{60, 60, 200, 255}
	complyShade   = color.RGBA{30, 140, 30, 255}
	violatedShade = color.RGBA{190, 30, 30, 255}
)

// Snapshot renders the argument state as a side-view scene: the cart
// rectangle at the cart displacement, the pole segment rotated by the
// pole angle from upright, and dashed threshold lines for the angle
// and displacement limits. Each pair of threshold lines is drawn green
// while the state complies with the corresponding limit and red once
// it does not.
func Snapshot(state mat.Vector, params cartpole.Params) *gg.Context {
	angle := state.AtVec(0)
	position := state.AtVec(2)

	dc := gg.NewContext(int(ViewportW), int(ViewportH))
	dc.SetColor(background)
	dc.Clear()

	// Track
	dc.SetColor(trackShade)
	dc.SetLineWidth(lineWidth)
	dc.DrawLine(0, axleY, ViewportW, axleY)
	dc.Stroke()

	// Displacement threshold lines
	dc.SetColor(thresholdShade(math.Abs(position) <=
		params.DisplacementThreshold))
	dc.SetDash(6, 6)
	for _, sign := range []float64{-1, 1} {
		x := toPixelX(sign * params.DisplacementThreshold)
		dc.DrawLine(x, 0, x, ViewportH)
	}
	dc.Stroke()

	// Angle threshold rays from the pole pivot
	pivotX := toPixelX(position)
	pivotY := axleY - cartH*Scale
	rayLength := (params.PoleLength + 0.5) * Scale

	dc.SetColor(thresholdShade(math.Abs(angle) <= params.AngleThreshold))
	for _, sign := range []float64{-1, 1} {
		dx := math.Sin(sign*params.AngleThreshold) * rayLength
		dy := math.Cos(sign*params.AngleThreshold) * rayLength
		dc.DrawLine(pivotX, pivotY, pivotX+dx, pivotY-dy)
	}
	dc.Stroke()
	dc.SetDash()

	// Cart
	dc.SetColor(cartShade)
	dc.DrawRectangle(pivotX-cartW*Scale/2, axleY-cartH*Scale,
		cartW*Scale, cartH*Scale)
	dc.Fill()

	// Pole, rotated by the pole angle from upright
	tipX := pivotX + math.Sin(angle)*params.PoleLength*Scale
	tipY := pivotY - math.Cos(angle)*params.PoleLength*Scale

	dc.SetColor(poleShade)
	dc.SetLineWidth(3 * lineWidth)
	dc.DrawLine(pivotX, pivotY, tipX, tipY)
	dc.Stroke()

	// Axle
	dc.SetColor(axleShade)
	dc.DrawCircle(pivotX, pivotY, lineWidth*2)
	dc.Fill()

	return dc
}

// SavePNG renders the argument state and saves the scene as a PNG
// image at path
func SavePNG(path string, state mat.Vector, params cartpole.Params) error {
	return Snapshot(state, params).SavePNG(path)
}

// toPixelX converts a world x coordinate in metres to a pixel
// coordinate, with the origin at the viewport centre
func toPixelX(x float64) float64 {
	return ViewportW/2 + x*Scale
}

// thresholdShade returns the colour for a threshold line given whether
// the state complies with the threshold
func thresholdShade(complies bool) color.Color {
	if complies {
		return complyShade
	}
	return violatedShade
}
