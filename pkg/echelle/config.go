package echelle

import(
	"fmt"
	"log"
	"runtime"

	"github.com/knadh/koanf"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"gopkg.in/yaml.v2"
)

/* Example config file ...

verbosity: 1
parameterfile: echelle_parameters.dat
inversesamples: 20
workers: 4
decimate: 4
backgroundpercentile: 2.0
wavelengthunit: nm
referencelines: neon-nist-cropped.dat
outputfilename: spectrum.dat
fitsfilename: spectrum.fits
overlayfilename: overlay.png
hdrfilename: preprocessed.hdr
previewfilename: preprocessed.png
comparisonfilename: comparison.dat

*/

// Config holds the settings for a run of the pipeline. The instrument
// itself is described by InstrumentParameters, which live in their own
// file.
type Config struct {
	Verbosity            int     `koanf:"verbosity"            yaml:"verbosity"`

	ParameterFile        string  `koanf:"parameterfile"        yaml:"parameterfile"`
	InverseSamples       int     `koanf:"inversesamples"       yaml:"inversesamples"`
	Workers              int     `koanf:"workers"              yaml:"workers"`

	// Sensor image preprocessing
	Decimate             int     `koanf:"decimate"             yaml:"decimate"`             // 2, 4, 8; below 2 keeps Bayer residue
	BackgroundPercentile float64 `koanf:"backgroundpercentile" yaml:"backgroundpercentile"` // 0 == subtract the minimum

	// Outputs; an empty filename means don't write it
	WavelengthUnit       string  `koanf:"wavelengthunit"       yaml:"wavelengthunit"`
	ReferenceLines       string  `koanf:"referencelines"       yaml:"referencelines"`       // a line list file; empty means neon
	OutputFilename       string  `koanf:"outputfilename"       yaml:"outputfilename"`
	FITSFilename         string  `koanf:"fitsfilename"         yaml:"fitsfilename"`
	OverlayFilename      string  `koanf:"overlayfilename"      yaml:"overlayfilename"`
	HDRFilename          string  `koanf:"hdrfilename"          yaml:"hdrfilename"`          // the preprocessed SensorImage
	PreviewFilename      string  `koanf:"previewfilename"      yaml:"previewfilename"`      // ... as a gray PNG
	ComparisonFilename   string  `koanf:"comparisonfilename"   yaml:"comparisonfilename"`   // normalized spectrum vs synthetic reference
}

func NewConfig() Config {
	return Config{
		ParameterFile:  DefaultParameterFile,
		InverseSamples: DefaultInverseSamples,
		Workers:        runtime.NumCPU(),
		Decimate:       4,
		WavelengthUnit: "nm",
		OutputFilename: "spectrum.dat",
	}
}

// LoadConfig layers a yaml file over the defaults.
func LoadConfig(filename string) (Config, error) {
	k := koanf.New(".")
	c := Config{}

	if err := k.Load(structs.Provider(NewConfig(), "koanf"), nil); err != nil {
		return c, fmt.Errorf("config defaults: %w", err)
	}
	if err := k.Load(file.Provider(filename), kyaml.Parser()); err != nil {
		return c, fmt.Errorf("config read %s: %w", filename, err)
	}
	if err := k.Unmarshal("", &c); err != nil {
		return c, fmt.Errorf("config parse %s: %w", filename, err)
	}

	return c, c.Finalize()
}

// Finalize does sanity checks and fills in anything derived.
func (c *Config)Finalize() error {
	if c.InverseSamples < 2 {
		c.InverseSamples = DefaultInverseSamples
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Decimate < 1 {
		c.Decimate = 1
	}
	if c.BackgroundPercentile < 0 || c.BackgroundPercentile > 100 {
		return fmt.Errorf("backgroundpercentile %g not in [0,100]", c.BackgroundPercentile)
	}
	if _, err := unitScale(c.WavelengthUnit); err != nil {
		return err
	}
	return nil
}

func (c Config)AsYaml() string {
	b, err := yaml.Marshal(c)
	if err != nil {
		log.Fatalf("Can't marshal config yaml: %v\n", err)
	}
	return string(b)
}
