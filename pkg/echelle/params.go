package echelle

import(
	"fmt"
	"math"
	"strings"
)

// A Bounded is a parameter value along with its valid range.
type Bounded struct {
	Min   float64 `yaml:"min"`
	Value float64 `yaml:"value"`
	Max   float64 `yaml:"max"`
}

func (b Bounded)InRange() bool { return b.Value >= b.Min && b.Value <= b.Max }

// InstrumentParameters describe the spectrograph, in the units people
// measure them in (microns, millimeters, nanometers, radians). Nothing
// in the optical model reads these directly; call Geometry() to get a
// validated set in base SI units.
type InstrumentParameters struct {
	FirstOrder          Bounded `yaml:"first_order_number"`
	LastOrder           Bounded `yaml:"last_order_number"`

	// Horizontal dispersion (blazed echelle grating)
	GrooveSpacing       Bounded `yaml:"groove_spacing"`       // Λ, μm
	IncidenceAngle      Bounded `yaml:"incidence_angle"`      // α, rad
	CameraInclination   Bounded `yaml:"camera_inclination"`   // ξ, rad
	FocalDistance       Bounded `yaml:"focal_distance"`       // F, mm
	SensorWidth         Bounded `yaml:"sensor_width"`         // W, mm
	AspectRatio         Bounded `yaml:"cmos_aspect_ratio"`    // sensor height / width

	// Vertical dispersion (prism)
	VerticalDeclination Bounded `yaml:"vertical_declination"` // κ, rad
	PrismAngle          Bounded `yaml:"prism_angle"`          // rad
	PrismN0             Bounded `yaml:"prism_n0"`
	SellmeyerLambda0    Bounded `yaml:"sellmeyer_lambda0"`    // nm
	SellmeyerF0         Bounded `yaml:"sellmeyer_f0"`
}

type paramKind int

const(
	kindPlain paramKind = iota
	kindLength               // must be > 0
	kindAngle                // must be within ±π
	kindOrder                // an integer diffraction order
)

type paramSpec struct {
	Key    string   // the short name, used when we write files
	Labels []string // other names accepted on input
	Kind   paramKind
	Scale  float64  // multiply by this to get base units
	field  func(*InstrumentParameters) *Bounded
}

// The order here is the order we write parameter files in.
var paramSpecs = []paramSpec{
	{"first_order_number", nil, kindOrder, 1, func(p *InstrumentParameters) *Bounded { return &p.FirstOrder }},
	{"last_order_number",  nil, kindOrder, 1, func(p *InstrumentParameters) *Bounded { return &p.LastOrder }},

	{"groove_spacing", []string{"Λ groove spacing (μm)"}, kindLength, 1e-6,
		func(p *InstrumentParameters) *Bounded { return &p.GrooveSpacing }},
	{"incidence_angle", []string{"α incident angle (rad)"}, kindAngle, 1,
		func(p *InstrumentParameters) *Bounded { return &p.IncidenceAngle }},
	{"camera_inclination", []string{"ξ horizontal camera inclination (rad)"}, kindAngle, 1,
		func(p *InstrumentParameters) *Bounded { return &p.CameraInclination }},
	{"focal_distance", []string{"F camera foc dist (mm)"}, kindLength, 1e-3,
		func(p *InstrumentParameters) *Bounded { return &p.FocalDistance }},
	{"sensor_width", []string{"W camera CMOS width (mm)"}, kindLength, 1e-3,
		func(p *InstrumentParameters) *Bounded { return &p.SensorWidth }},
	{"cmos_aspect_ratio", nil, kindLength, 1,
		func(p *InstrumentParameters) *Bounded { return &p.AspectRatio }},

	{"vertical_declination", []string{"κ vertical camera declination (rad)"}, kindAngle, 1,
		func(p *InstrumentParameters) *Bounded { return &p.VerticalDeclination }},
	{"prism_angle", nil, kindAngle, 1,
		func(p *InstrumentParameters) *Bounded { return &p.PrismAngle }},
	{"prism_n0", nil, kindPlain, 1,
		func(p *InstrumentParameters) *Bounded { return &p.PrismN0 }},
	{"sellmeyer_lambda0", []string{"prism_Sellmeyer_lambda0 (nm)"}, kindLength, 1e-9,
		func(p *InstrumentParameters) *Bounded { return &p.SellmeyerLambda0 }},
	{"sellmeyer_f0", []string{"prism_Sellmeyer_F0"}, kindPlain, 1,
		func(p *InstrumentParameters) *Bounded { return &p.SellmeyerF0 }},
}

// DefaultParameters are tuned for a 13.3μm echelle behind a flint
// prism, imaged by an APS-C camera with an 84mm lens.
func DefaultParameters() InstrumentParameters {
	return InstrumentParameters{
		FirstOrder:          Bounded{-20,    4,       20},
		LastOrder:           Bounded{-20,   16,       20},
		GrooveSpacing:       Bounded{  0,   13.333,   30},
		IncidenceAngle:      Bounded{ -1,    0.4,      1},
		CameraInclination:   Bounded{  0,    0.12,   0.2},
		FocalDistance:       Bounded{ 10,   84,      300},
		SensorWidth:         Bounded{  1,   24,       50},
		AspectRatio:         Bounded{0.1,   16.0/24,   2},
		VerticalDeclination: Bounded{1.4,   1.534,  1.55},
		PrismAngle:          Bounded{ -2,   -1.045,   -1},
		PrismN0:             Bounded{1.3,   1.38,    1.4},
		SellmeyerLambda0:    Bounded{ 50,  180,      500},
		SellmeyerF0:         Bounded{  0,    0.252,  0.5},
	}
}

func lookupSpec(key string) (paramSpec, bool) {
	key = strings.TrimSpace(key)
	for _, s := range paramSpecs {
		if s.Key == key {
			return s, true
		}
		for _, l := range s.Labels {
			if l == key {
				return s, true
			}
		}
	}
	return paramSpec{}, false
}

// ParameterKeys lists the short parameter names, in file order.
func ParameterKeys() []string {
	keys := []string{}
	for _, s := range paramSpecs {
		keys = append(keys, s.Key)
	}
	return keys
}

// Set assigns the value of a parameter by name (short or long label).
// The range is not checked here; that happens in Geometry().
func (p *InstrumentParameters)Set(key string, val float64) error {
	s, ok := lookupSpec(key)
	if !ok {
		return fmt.Errorf("unknown parameter '%s'", key)
	}
	s.field(p).Value = val
	return nil
}

func (p InstrumentParameters)Get(key string) (float64, error) {
	s, ok := lookupSpec(key)
	if !ok {
		return 0, fmt.Errorf("unknown parameter '%s'", key)
	}
	return s.field(&p).Value, nil
}

// Validate checks every parameter against its range, and the
// physical constraints (lengths > 0, angles within ±π).
func (p InstrumentParameters)Validate() error {
	for _, s := range paramSpecs {
		b := *s.field(&p)
		v := b.Value

		switch {
		case math.IsNaN(v) || math.IsInf(v, 0):
			return &ConfigurationError{s.Key, v, "not a finite number"}
		case !b.InRange():
			return &ConfigurationError{s.Key, v, fmt.Sprintf("outside valid range [%g, %g]", b.Min, b.Max)}
		case s.Kind == kindLength && v <= 0:
			return &ConfigurationError{s.Key, v, "must be > 0"}
		case s.Kind == kindAngle && math.Abs(v) > math.Pi:
			return &ConfigurationError{s.Key, v, "angle must be within ±π"}
		case s.Kind == kindOrder && v != math.Trunc(v):
			return &ConfigurationError{s.Key, v, "diffraction order must be an integer"}
		}
	}

	if p.FirstOrder.Value > p.LastOrder.Value {
		return &ConfigurationError{"first_order_number", p.FirstOrder.Value,
			fmt.Sprintf("greater than last_order_number (%g)", p.LastOrder.Value)}
	}
	if len(p.Orders()) == 0 {
		return &ConfigurationError{"first_order_number", p.FirstOrder.Value, "order range contains only M=0"}
	}

	return nil
}

// Orders returns the active diffraction orders, first to last
// inclusive, skipping the (meaningless) zeroth order.
func (p InstrumentParameters)Orders() []int {
	orders := []int{}
	for m := int(p.FirstOrder.Value); m <= int(p.LastOrder.Value); m++ {
		if m != 0 {
			orders = append(orders, m)
		}
	}
	return orders
}

// Geometry validates the parameters and converts them into base units.
func (p InstrumentParameters)Geometry() (Geometry, error) {
	if err := p.Validate(); err != nil {
		return Geometry{}, err
	}

	base := func(b Bounded, key string) float64 {
		s, _ := lookupSpec(key)
		return b.Value * s.Scale
	}

	return Geometry{
		GrooveSpacing:       base(p.GrooveSpacing, "groove_spacing"),
		IncidenceAngle:      p.IncidenceAngle.Value,
		CameraInclination:   p.CameraInclination.Value,
		FocalDistance:       base(p.FocalDistance, "focal_distance"),
		SensorWidth:         base(p.SensorWidth, "sensor_width"),
		AspectRatio:         p.AspectRatio.Value,
		VerticalDeclination: p.VerticalDeclination.Value,
		PrismAngle:          p.PrismAngle.Value,
		PrismN0:             p.PrismN0.Value,
		SellmeyerLambda0:    base(p.SellmeyerLambda0, "sellmeyer_lambda0"),
		SellmeyerF0:         p.SellmeyerF0.Value,
	}, nil
}

func (p InstrumentParameters)String() string {
	str := "InstrumentParameters[\n"
	for _, s := range paramSpecs {
		b := s.field(&p)
		str += fmt.Sprintf("  %-22s %10g  [%g, %g]\n", s.Key, b.Value, b.Min, b.Max)
	}
	return str + "]\n"
}
