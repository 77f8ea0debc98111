package echelle_test

import(
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abworrall/echelle/pkg/echelle"
)

func TestXToLambdaIsMonotonic(t *testing.T) {
	g := defaultGeometry(t)

	for _, order := range []int{-12, -3, 1, 4, 9, 16, 20} {
		prev, err := g.XToLambda(0, order)
		require.NoError(t, err)

		for i:=1; i<=1000; i++ {
			lambda, err := g.XToLambda(float64(i)/1000, order)
			require.NoError(t, err)
			if order > 0 {
				assert.Greater(t, lambda, prev, "order %d, step %d", order, i)
			} else {
				assert.Less(t, lambda, prev, "order %d, step %d", order, i)
			}
			prev = lambda
		}
	}
}

func TestXToLambdaAtSensorCenter(t *testing.T) {
	g := defaultGeometry(t)

	// The center column sees β = -ξ
	lambda, err := g.XToLambda(0.5, 9)
	require.NoError(t, err)
	want := g.GrooveSpacing / 9 * (math.Sin(g.IncidenceAngle) + math.Sin(g.CameraInclination))
	assert.InDelta(t, want, lambda, 1e-15)
	assert.InDelta(t, 754.25e-9, lambda, 0.01e-9)
}

func TestXToLambdaOrderZero(t *testing.T) {
	g := defaultGeometry(t)

	_, err := g.XToLambda(0.5, 0)
	var de *echelle.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, 0, de.Order)
}

func TestRefractiveIndex(t *testing.T) {
	g := defaultGeometry(t) // λ0 = 180nm

	n, err := g.RefractiveIndex(600e-9)
	require.NoError(t, err)
	assert.Greater(t, n, g.PrismN0)
	assert.InDelta(t, 1.9062, n, 1e-4)

	for _, lambda := range []float64{150e-9, 100e-9, 180e-9} {
		_, err := g.RefractiveIndex(lambda)
		assert.True(t, echelle.IsOpticalModelError(err), "λ=%g should have no real index", lambda)
	}

	g.SellmeyerF0 = 0 // radicand exactly zero
	_, err = g.RefractiveIndex(600e-9)
	assert.True(t, echelle.IsOpticalModelError(err))
}

func TestPrismDeviationTotalInternalReflection(t *testing.T) {
	g := defaultGeometry(t)

	// Just above λ0 the index blows up
	_, err := g.PrismDeviation(181e-9)
	assert.True(t, echelle.IsOpticalModelError(err))

	dev, err := g.PrismDeviation(600e-9)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(dev))
}

func TestLambdaToY(t *testing.T) {
	g := defaultGeometry(t)

	lambda, y, err := g.XToY(0.5, 9)
	require.NoError(t, err)
	assert.InDelta(t, 754.25e-9, lambda, 0.01e-9)
	assert.InDelta(t, 0.4913, y, 1e-4)

	// Longer wavelengths are deviated less, so sit higher up the frame
	yRed, err := g.LambdaToY(800e-9)
	require.NoError(t, err)
	yBlue, err := g.LambdaToY(500e-9)
	require.NoError(t, err)
	assert.Greater(t, yRed, yBlue)
}
