package echelle

import(
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/abworrall/echelle/pkg/emath"
	"github.com/abworrall/echelle/pkg/sensor"
)

// A Pipeline takes a sensor frame through to a composite spectrum.
// Load stuff in, then call Prepare, Extract, Stitch, Annotate in that
// order (or just Run). Every stage recomputes from scratch, so after
// changing Params you can simply run it again.
type Pipeline struct {
	Config
	Params         InstrumentParameters
	paramsLoaded   bool

	Frame          sensor.Frame
	Image          emath.FloatGrid       // The preprocessed SensorImage
	Lines        []ReferenceLine

	// Values we figure out
	Geometry       Geometry
	Mapper        *InverseMapper
	Partials     []PartialSpectrum
	Composite      CompositeSpectrum
	Markers      []Marker
}

func NewPipeline() Pipeline {
	return Pipeline{
		Config: NewConfig(),
		Params: DefaultParameters(),
	}
}

func (p Pipeline)String() string {
	str := fmt.Sprintf("Pipeline [\n  frame: %s\n  image: %s\n", p.Frame, p.Image.Stats())
	for _, ps := range p.Partials {
		str += fmt.Sprintf("  %s\n", ps)
	}
	return str + fmt.Sprintf("  %s\n]\n", p.Composite)
}

func (p *Pipeline)LoadFilesAndDirs(args ...string) error {
	for _, arg := range args {
		item, err := os.Stat(arg)

		switch {

		case err != nil:
			return fmt.Errorf("load %s: %v", arg, err)

		case item.IsDir():
			// Is a dir, recurse into contents
			contents, err := os.ReadDir(arg)
			if err != nil {
				return fmt.Errorf("readdir %s: %v", arg, err)
			}
			for _, content := range contents {
				if err := p.LoadFilesAndDirs(filepath.Join(arg, content.Name())); err != nil {
					return fmt.Errorf("load %s: %v", arg, err)
				}
			}

		default: // is a file, load it
			if err := p.loadFile(arg); err != nil {
				return fmt.Errorf("loadfile %s: %v", arg, err)
			}
		}
	}

	return nil
}

func (p *Pipeline)loadFile(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))

	switch {

	case ext == ".yaml" || ext == ".yml":
		cfg, err := LoadConfig(filename)
		if err != nil {
			return fmt.Errorf("Loading %s as config YAML failed: %w", filename, err)
		}
		p.Config = cfg
		log.Printf("Loaded base configuration from %s\n", filename)

	case ext == ".dat":
		// Parameter files and line lists share the extension
		isLineList, err := IsLineListFile(filename)
		if err != nil {
			return err
		}
		if isLineList {
			lines, err := LoadLineList(filename)
			if err != nil {
				return fmt.Errorf("Loading %s as a line list failed: %w", filename, err)
			}
			p.Lines = lines
			log.Printf("Loaded %d reference lines from %s\n", len(lines), filename)
			return nil
		}

		// Overlay, so a second parameter file only changes what it names
		params := p.Params
		nApplied, err := OverlayParameterFile(filename, &params)
		if err != nil {
			return fmt.Errorf("Loading %s as instrument parameters failed: %w", filename, err)
		}
		if nApplied == 0 {
			log.Printf("No instrument parameters found in %s, ignoring it\n", filename)
			return nil
		}
		p.Params = params
		p.paramsLoaded = true
		log.Printf("Loaded %d instrument parameters from %s\n", nApplied, filename)

	case sensor.IsImageFile(filename):
		if !p.Frame.Grid.IsEmpty() {
			log.Printf("Already have a frame (%s), ignoring %s\n", p.Frame.LoadFilename, filename)
			return nil
		}
		frame, err := sensor.LoadFile(filename)
		if err != nil {
			return err
		}
		p.Frame = frame
		log.Printf("Loaded frame %s\n", frame)
	}

	return nil
}

// UseParameters replaces the instrument parameters, e.g. after an
// interactive adjustment. Call Run again to recompute.
func (p *Pipeline)UseParameters(params InstrumentParameters) {
	p.Params = params
	p.paramsLoaded = true
}

// Prepare validates the parameters, builds the geometry, and
// preprocesses the frame. A bad parameter stops everything here.
func (p *Pipeline)Prepare() error {
	if err := p.Config.Finalize(); err != nil {
		return err
	}

	if !p.paramsLoaded && p.Config.ParameterFile != "" {
		params, err := LoadParameterFile(p.Config.ParameterFile)
		if err != nil {
			return err
		}
		p.Params = params
		p.paramsLoaded = true
	}

	g, err := p.Params.Geometry()
	if err != nil {
		return err
	}
	p.Geometry = g
	p.Mapper = NewInverseMapper(g, p.Config.InverseSamples)

	if p.Frame.Grid.IsEmpty() {
		return fmt.Errorf("no sensor image loaded")
	}
	pp := sensor.Preprocess{Decimate: p.Config.Decimate, BackgroundPercentile: p.Config.BackgroundPercentile}
	p.Image = pp.Apply(p.Frame.Grid)
	if p.Image.IsEmpty() {
		return fmt.Errorf("sensor image %dx%d is smaller than one decimation block (%d)",
			p.Frame.Grid.Dx(), p.Frame.Grid.Dy(), p.Config.Decimate)
	}

	if p.Lines == nil {
		if p.Config.ReferenceLines != "" {
			if p.Lines, err = LoadLineList(p.Config.ReferenceLines); err != nil {
				return err
			}
		} else {
			p.Lines = NeonLines()
		}
	}

	if p.Config.Verbosity > 0 {
		log.Printf("Final configuration:-\n\n%s\n%s", p.Config.AsYaml(), p.Params)
	}
	return nil
}

func (p *Pipeline)Extract() error {
	orders := p.Params.Orders()
	if len(orders) == 0 {
		return &ConfigurationError{"first_order_number", p.Params.FirstOrder.Value, "no active orders"}
	}
	log.Printf("Extracting %d orders (%d..%d) from %s\n", len(orders), orders[0], orders[len(orders)-1], p.Image.Stats())

	partials, err := ExtractOrders(p.Geometry, &p.Image, orders, p.Config.Workers)
	if err != nil {
		return err
	}
	p.Partials = partials

	if p.Config.Verbosity > 0 {
		logPartials(partials)
	}
	return nil
}

func (p *Pipeline)Stitch() error {
	cs, err := Stitch(p.Partials)
	if err != nil {
		return fmt.Errorf("stitch: %w", err)
	}
	p.Composite = cs
	log.Printf("Stitched %s\n", cs)
	return nil
}

func (p *Pipeline)Annotate() error {
	markers, err := Annotate(p.Mapper, p.Params.Orders(), p.Lines)
	if err != nil {
		return err
	}
	p.Markers = markers
	return nil
}

// Run does all the stages.
func (p *Pipeline)Run() error {
	for _, stage := range []func() error{p.Prepare, p.Extract, p.Stitch, p.Annotate} {
		if err := stage(); err != nil {
			return err
		}
	}
	return nil
}

// WriteOutputs writes whichever spectrum files are configured.
func (p *Pipeline)WriteOutputs() error {
	if fn := p.Config.OutputFilename; fn != "" {
		if err := p.Composite.WriteToFile(fn, p.Config.WavelengthUnit); err != nil {
			return err
		}
		log.Printf("Spectrum written to '%s'\n", fn)
	}
	if fn := p.Config.FITSFilename; fn != "" {
		if err := p.Composite.WriteToFITSFile(fn); err != nil {
			return err
		}
		log.Printf("FITS spectrum written to '%s'\n", fn)
	}
	if fn := p.Config.HDRFilename; fn != "" {
		if err := sensor.WriteHDR(fn, &p.Image); err != nil {
			return err
		}
		log.Printf("Preprocessed sensor image written to '%s'\n", fn)
	}
	if fn := p.Config.PreviewFilename; fn != "" {
		if err := p.Image.ToImg(filepath.Base(p.Frame.LoadFilename), fn); err != nil {
			return fmt.Errorf("preview '%s': %w", fn, err)
		}
		log.Printf("Preprocessed sensor preview written to '%s'\n", fn)
	}
	if fn := p.Config.ComparisonFilename; fn != "" {
		reference := SyntheticSpectrum(p.Lines, p.Composite.Wavelengths)
		if err := p.Composite.Normalize().WriteComparisonToFile(fn, p.Config.WavelengthUnit, reference); err != nil {
			return err
		}
		log.Printf("Comparison against %d reference lines written to '%s'\n", len(p.Lines), fn)
	}
	return nil
}
