package echelle

import(
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
)

// DefaultParameterFile is where the tool looks for instrument
// parameters if nothing else is specified.
const DefaultParameterFile = "echelle_parameters.dat"

// ReadParameters reads `key = value` lines into p. Lines that can't
// be parsed, or name a parameter we don't know, are logged and
// skipped. Returns how many lines were applied, and how many skipped.
func ReadParameters(r io.Reader, p *InstrumentParameters, source string) (int, int, error) {
	nApplied, nSkipped := 0, 0
	scanner := bufio.NewScanner(r)

	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, val, found := strings.Cut(line, "=")
		if !found {
			log.Printf("Warning: no `=` in line #%d of '%s', skipping\n", n, source)
			nSkipped++
			continue
		}

		key = strings.TrimSpace(key)
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			log.Printf("Warning: could not process value `%s` for key `%s` in line #%d of '%s'\n",
				strings.TrimSpace(val), key, n, source)
			nSkipped++
			continue
		}

		if err := p.Set(key, f); err != nil {
			log.Printf("Warning: line #%d of '%s': %v\n", n, source, err)
			nSkipped++
			continue
		}
		nApplied++
	}

	if err := scanner.Err(); err != nil {
		return nApplied, nSkipped, fmt.Errorf("read '%s': %w", source, err)
	}
	return nApplied, nSkipped, nil
}

// LoadParameterFile starts from DefaultParameters and overlays whatever
// the file contains. A missing file is not an error; the defaults are
// used.
func LoadParameterFile(filename string) (InstrumentParameters, error) {
	p := DefaultParameters()

	if _, err := os.Stat(filename); os.IsNotExist(err) {
		log.Printf("Warning: could not read '%s'; using default values for image processing\n", filename)
		return p, nil
	}

	_, err := OverlayParameterFile(filename, &p)
	return p, err
}

// OverlayParameterFile reads the file's values over whatever p already
// holds, leaving parameters the file doesn't mention alone. Returns how
// many values were applied.
func OverlayParameterFile(filename string, p *InstrumentParameters) (int, error) {
	f, err := os.Open(filename)
	if err != nil {
		return 0, fmt.Errorf("open '%s': %w", filename, err)
	}
	defer f.Close()

	nApplied, _, err := ReadParameters(f, p, filename)
	return nApplied, err
}

// WriteParameters writes p in the same format ReadParameters reads.
func WriteParameters(w io.Writer, p InstrumentParameters) error {
	bw := bufio.NewWriter(w)
	for _, s := range paramSpecs {
		if _, err := fmt.Fprintf(bw, "%-40s = %s\n", s.Key, strconv.FormatFloat(s.field(&p).Value, 'g', -1, 64)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func SaveParameterFile(filename string, p InstrumentParameters) error {
	if writer, err := os.Create(filename); err != nil {
		return fmt.Errorf("open+w '%s': %w", filename, err)
	} else {
		defer writer.Close()
		return WriteParameters(writer, p)
	}
}
