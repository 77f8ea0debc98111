package main

import(
	"flag"
	"log"

	"github.com/abworrall/echelle/pkg/echelle"
	"github.com/abworrall/echelle/pkg/overlay"
)

var(
	fVerbosity int
	fParameterFile string
	fSaveParameters string
	fInverseSamples int
	fWorkers int
	fDecimate int
	fBackground float64
	fUnit string
	fLines string
	fOutputFilename string
	fFITSFilename string
	fOverlayFilename string
	fHDRFilename string
	fPreviewFilename string
	fComparisonFilename string
)

func init() {
	flag.IntVar(&fVerbosity, "v", 0, "how verbose to get")
	flag.StringVar(&fParameterFile, "params", "", "instrument parameter file (key = value lines)")
	flag.StringVar(&fSaveParameters, "saveparams", "", "write the instrument parameters in use to this file")
	flag.IntVar(&fInverseSamples, "samples", 0, "points per order when inverting x->wavelength, for annotations")
	flag.IntVar(&fWorkers, "workers", 0, "how many orders to extract concurrently")
	flag.IntVar(&fDecimate, "decimate", 0, "average NxN pixel blocks before extraction (2, 4, 8 ...)")
	flag.Float64Var(&fBackground, "bg", -1, "subtract the intensity at this percentile as background (0 = minimum)")
	flag.StringVar(&fUnit, "unit", "", "wavelength unit of the output spectrum: nm or m")
	flag.StringVar(&fLines, "lines", "", "reference line list (nm, intensity); default is neon")
	flag.StringVar(&fOutputFilename, "o", "", "name of output spectrum file")
	flag.StringVar(&fFITSFilename, "fits", "", "also write the spectrum as a 1-D FITS image")
	flag.StringVar(&fOverlayFilename, "overlay", "", "write a PNG of the frame with order traces and reference lines")
	flag.StringVar(&fHDRFilename, "hdr", "", "write the preprocessed sensor image as Radiance HDR")
	flag.StringVar(&fPreviewFilename, "preview", "", "write the preprocessed sensor image as a gray PNG")
	flag.StringVar(&fComparisonFilename, "compare", "", "write the normalized spectrum next to a synthetic reference-line spectrum")
	flag.Parse()

	log.Printf("echelle-spec starting\n")
}

func main() {
	p := echelle.NewPipeline()
	if err := p.LoadFilesAndDirs(flag.Args()...); err != nil {
		log.Fatal(err)
	}

	// Override the config file with command line args, if relevant
	if fVerbosity > 0 { p.Config.Verbosity = fVerbosity }
	if fInverseSamples > 0 { p.Config.InverseSamples = fInverseSamples }
	if fWorkers > 0 { p.Config.Workers = fWorkers }
	if fDecimate > 0 { p.Config.Decimate = fDecimate }
	if fBackground >= 0 { p.Config.BackgroundPercentile = fBackground }
	if fUnit != "" { p.Config.WavelengthUnit = fUnit }
	if fLines != "" { p.Config.ReferenceLines = fLines }
	if fOutputFilename != "" { p.Config.OutputFilename = fOutputFilename }
	if fFITSFilename != "" { p.Config.FITSFilename = fFITSFilename }
	if fOverlayFilename != "" { p.Config.OverlayFilename = fOverlayFilename }
	if fHDRFilename != "" { p.Config.HDRFilename = fHDRFilename }
	if fPreviewFilename != "" { p.Config.PreviewFilename = fPreviewFilename }
	if fComparisonFilename != "" { p.Config.ComparisonFilename = fComparisonFilename }

	if fParameterFile != "" {
		params, err := echelle.LoadParameterFile(fParameterFile)
		if err != nil {
			log.Fatal(err)
		}
		p.UseParameters(params)
	}

	if err := p.Run(); err != nil {
		log.Fatal(err)
	}

	if p.Config.Verbosity > 0 {
		log.Printf("%s", p)
	}

	if err := p.WriteOutputs(); err != nil {
		log.Fatal(err)
	}

	if fn := p.Config.OverlayFilename; fn != "" {
		err := overlay.WritePNG(fn, &p.Image, p.Geometry, p.Params.Orders(), p.Markers, overlay.DefaultOptions())
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("Overlay written to '%s'\n", fn)
	}

	if fSaveParameters != "" {
		if err := echelle.SaveParameterFile(fSaveParameters, p.Params); err != nil {
			log.Fatal(err)
		}
		log.Printf("Instrument parameters written to '%s'\n", fSaveParameters)
	}
}
