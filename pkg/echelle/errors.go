package echelle

import(
	"errors"
	"fmt"
)

// ErrNoSamples is returned by Stitch when none of the partial spectra
// has enough samples to contribute to a composite.
var ErrNoSamples = errors.New("no usable partial spectrum samples")

// A ConfigurationError means an instrument parameter (or the order
// range) is outside its physically valid range. It is fatal to the
// whole pipeline call; nothing silently defaults.
type ConfigurationError struct {
	Param  string
	Value  float64
	Reason string
}

func (e *ConfigurationError)Error() string {
	return fmt.Sprintf("parameter '%s' = %g: %s", e.Param, e.Value, e.Reason)
}

// A DomainError is returned when a per-order function is handed
// diffraction order zero.
type DomainError struct {
	Order int
}

func (e *DomainError)Error() string {
	return fmt.Sprintf("diffraction order %d is invalid (grating equation divides by M)", e.Order)
}

// An OpticalModelError means the prism model has no real solution for
// this wavelength under the current parameters. Callers drop the
// sample and carry on.
type OpticalModelError struct {
	Wavelength float64 // meters
	Reason     string
}

func (e *OpticalModelError)Error() string {
	return fmt.Sprintf("optical model at %.3f nm: %s", e.Wavelength*1e9, e.Reason)
}

func IsOpticalModelError(err error) bool {
	var ome *OpticalModelError
	return errors.As(err, &ome)
}

func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
