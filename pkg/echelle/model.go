package echelle

import(
	"fmt"
	"math"
)

// Geometry is a validated parameter set in base units: meters and
// radians only. Get one from InstrumentParameters.Geometry(). All the
// methods are pure; a Geometry is a value and never changes under you.
type Geometry struct {
	GrooveSpacing       float64 // Λ (m)
	IncidenceAngle      float64 // α (rad)
	CameraInclination   float64 // ξ (rad)
	FocalDistance       float64 // F (m)
	SensorWidth         float64 // W (m)
	AspectRatio         float64 // sensor height / width

	VerticalDeclination float64 // κ (rad)
	PrismAngle          float64 // apex angle of the symmetric prism (rad)
	PrismN0             float64
	SellmeyerLambda0    float64 // λ0 (m)
	SellmeyerF0         float64
}

// SensorHeight is in meters.
func (g Geometry)SensorHeight() float64 { return g.SensorWidth * g.AspectRatio }

// XToLambda is the grating equation. x is the normalized horizontal
// position on the sensor, 0.0 (left) to 1.0 (right); the center of the
// sensor sees rays diffracted at β = -ξ, and in general
//
//   β = (0.5 - x) × W / 2F - ξ
//   λ = Λ/M × [sin α - sin β]
//
// The result is in meters.
func (g Geometry)XToLambda(x float64, order int) (float64, error) {
	if order == 0 {
		return 0, &DomainError{order}
	}
	beta := (0.5 - x) * g.SensorWidth / 2 / g.FocalDistance - g.CameraInclination
	return g.GrooveSpacing / float64(order) * (math.Sin(g.IncidenceAngle) - math.Sin(beta)), nil
}

// RefractiveIndex of the prism glass at wavelength lambda, from the
// single-term Sellmeyer form n0 + sqrt(F0·λ0⁻² / (λ0⁻² - λ⁻²)). Below
// λ0 the radicand goes negative and there is no real index.
func (g Geometry)RefractiveIndex(lambda float64) (float64, error) {
	inv0 := math.Pow(g.SellmeyerLambda0, -2)
	invL := math.Pow(lambda, -2)
	radicand := g.SellmeyerF0 * inv0 / (inv0 - invL)

	if math.IsNaN(radicand) || math.IsInf(radicand, 0) {
		return 0, &OpticalModelError{lambda, "Sellmeyer radicand is not finite"}
	} else if radicand <= 0 {
		return 0, &OpticalModelError{lambda, fmt.Sprintf("Sellmeyer radicand %g is not positive", radicand)}
	}

	return g.PrismN0 + math.Sqrt(radicand), nil
}

// PrismDeviation is the deviation angle (rad) of a ray passing
// symmetrically through the prism.
func (g Geometry)PrismDeviation(lambda float64) (float64, error) {
	n, err := g.RefractiveIndex(lambda)
	if err != nil {
		return 0, err
	}

	half := g.PrismAngle / 2
	s := n * math.Sin(half)
	if s < -1 || s > 1 {
		return 0, &OpticalModelError{lambda, fmt.Sprintf("total internal reflection (n·sin(A/2) = %g)", s)}
	}

	return 2 * (math.Asin(s) - half), nil
}

// LambdaToY gives the normalized vertical position on the sensor at
// which wavelength lambda lands. The sign convention of the
// declination is a calibration constant, fitted per instrument.
func (g Geometry)LambdaToY(lambda float64) (float64, error) {
	dev, err := g.PrismDeviation(lambda)
	if err != nil {
		return 0, err
	}
	return (g.VerticalDeclination + dev) / g.SensorHeight() * g.FocalDistance, nil
}

// XToY composes the two: where on the sensor does column x of this
// order sit vertically.
func (g Geometry)XToY(x float64, order int) (float64, float64, error) {
	lambda, err := g.XToLambda(x, order)
	if err != nil {
		return 0, 0, err
	}
	y, err := g.LambdaToY(lambda)
	return lambda, y, err
}
