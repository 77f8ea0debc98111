package echelle_test

import(
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abworrall/echelle/pkg/echelle"
)

func TestDefaultParametersAreValid(t *testing.T) {
	p := echelle.DefaultParameters()
	require.NoError(t, p.Validate())
	assert.Equal(t, []int{4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}, p.Orders())
}

func TestGeometryUsesBaseUnits(t *testing.T) {
	g, err := echelle.DefaultParameters().Geometry()
	require.NoError(t, err)

	assert.InDelta(t, 13.333e-6, g.GrooveSpacing, 1e-15)
	assert.InDelta(t, 0.084, g.FocalDistance, 1e-15)
	assert.InDelta(t, 0.024, g.SensorWidth, 1e-15)
	assert.InDelta(t, 180e-9, g.SellmeyerLambda0, 1e-20)
	assert.InDelta(t, 0.016, g.SensorHeight(), 1e-15)
	assert.Equal(t, 0.4, g.IncidenceAngle)
}

func TestValidateRejectsBadParameters(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value float64
	}{
		{"zero focal distance", "focal_distance", 0},
		{"focal distance out of range", "focal_distance", 1000},
		{"zero groove spacing", "groove_spacing", 0},
		{"zero lambda0", "sellmeyer_lambda0", 0},
		{"fractional order", "first_order_number", 4.5},
		{"first after last", "first_order_number", 17},
		{"only order zero", "last_order_number", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := echelle.DefaultParameters()
			if tt.name == "only order zero" {
				require.NoError(t, p.Set("first_order_number", 0))
			}
			require.NoError(t, p.Set(tt.key, tt.value))

			_, err := p.Geometry()
			var ce *echelle.ConfigurationError
			require.True(t, errors.As(err, &ce), "got %v", err)
			assert.True(t, echelle.IsConfigurationError(err))
		})
	}
}

func TestOrdersSkipZero(t *testing.T) {
	p := echelle.DefaultParameters()
	require.NoError(t, p.Set("first_order_number", -2))
	require.NoError(t, p.Set("last_order_number", 2))
	assert.Equal(t, []int{-2, -1, 1, 2}, p.Orders())
}

func TestSetAcceptsLongLabels(t *testing.T) {
	p := echelle.DefaultParameters()
	require.NoError(t, p.Set("Λ groove spacing (μm)", 20))
	require.NoError(t, p.Set("  F camera foc dist (mm) ", 100))

	v, err := p.Get("groove_spacing")
	require.NoError(t, err)
	assert.Equal(t, 20.0, v)
	assert.Equal(t, 100.0, p.FocalDistance.Value)

	assert.Error(t, p.Set("flux capacitor", 1.21))
}
