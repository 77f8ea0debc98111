package echelle

import(
	"fmt"
	"log"
	"math"
	"runtime"
	"sync"

	"github.com/abworrall/echelle/pkg/emath"
)

// ExtractOrder walks the sensor columns left to right, works out where
// this order's light lands vertically in each column, and samples the
// image there. Columns whose wavelength lands off the sensor are
// dropped; so are columns where the prism model has no solution.
func ExtractOrder(g Geometry, img *emath.FloatGrid, order int) (PartialSpectrum, error) {
	ps := PartialSpectrum{Order: order, Wavelengths: []float64{}, Intensities: []float64{}}
	if order == 0 {
		return ps, &DomainError{order}
	}

	width, height := img.Dx(), img.Dy()
	for col:=0; col<width; col++ {
		x := float64(col) / float64(width)

		lambda, err := g.XToLambda(x, order)
		if err != nil {
			return ps, err
		}
		if !(lambda > 0) {
			ps.OffSensor++ // unphysical, e.g. a negative order under these angles
			continue
		}

		y, err := g.LambdaToY(lambda)
		if err != nil {
			ps.ModelErrors++
			continue
		}
		if !(y > 0 && y < 1) {
			ps.OffSensor++
			continue
		}

		// y=0 is the bottom of the frame, row 0 is the top
		row := int(math.Round((1.0 - y) * float64(height)))
		if row < 0 || row >= height {
			ps.OffSensor++
			continue
		}

		ps.Wavelengths = append(ps.Wavelengths, lambda)
		ps.Intensities = append(ps.Intensities, img.Get(col, row))
	}

	return ps, nil
}

type extractJob struct {
	Index   int
	Order   int

	// Output
	Partial PartialSpectrum
	Err     error
}

// ExtractOrders runs ExtractOrder for each order, using a pool of
// goroutines. The image and geometry are only ever read. The results
// come back in the same order as `orders`.
func ExtractOrders(g Geometry, img *emath.FloatGrid, orders []int, nWorkers int) ([]PartialSpectrum, error) {
	if img.IsEmpty() {
		return nil, fmt.Errorf("ExtractOrders: empty sensor image")
	}
	if nWorkers <= 0 {
		nWorkers = runtime.NumCPU()
	}
	if nWorkers > len(orders) {
		nWorkers = len(orders)
	}

	var wg sync.WaitGroup
	jobsChan    := make(chan extractJob, len(orders))
	resultsChan := make(chan extractJob, len(orders))

	for i:=0; i<nWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobsChan {
				job.Partial, job.Err = ExtractOrder(g, img, job.Order)
				resultsChan<- job
			}
		}()
	}

	for i, order := range orders {
		jobsChan<- extractJob{Index: i, Order: order}
	}
	close(jobsChan)
	wg.Wait()
	close(resultsChan)

	partials := make([]PartialSpectrum, len(orders))
	for result := range resultsChan {
		if result.Err != nil {
			return nil, fmt.Errorf("extract order %d: %w", result.Order, result.Err)
		}
		partials[result.Index] = result.Partial
	}

	return partials, nil
}

// logPartials is for verbose runs.
func logPartials(partials []PartialSpectrum) {
	for _, ps := range partials {
		log.Printf("  %s\n", ps)
	}
}
