package echelle_test

import(
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/abworrall/echelle/pkg/echelle"
)

func defaultGeometry(t *testing.T) echelle.Geometry {
	t.Helper()
	g, err := echelle.DefaultParameters().Geometry()
	require.NoError(t, err)
	return g
}
