// Command specfit decomposes an observed spectrum into the physical
// components of a science pack and prints the fitted feature table.
//
// Usage:
//
//	specfit -pack science.yaml -instrument instrument.yaml -spectrum spec.csv [flags]
//
// The spectrum file is CSV with columns wavelength[micron], flux and
// optionally uncertainty; without an uncertainty column, 10% of the flux is
// assumed. Instrument segments are selected with -segments (glob patterns
// allowed); without it, the instrument name stored in the science pack is
// used.
//
// Examples:
//
//	specfit -pack classic.yaml -instrument spitzer.yaml -spectrum m101.csv
//	specfit -pack classic.yaml -instrument spitzer.yaml -segments 'spitzer.irs.*.1' -spectrum m101.csv -out fitted.yaml
//	specfit -pack classic.yaml -instrument spitzer.yaml -spectrum m101.csv -guess-only
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/cwbudde/algo-specfit/feature"
	"github.com/cwbudde/algo-specfit/instrument"
	"github.com/cwbudde/algo-specfit/model"
)

func main() {
	packFile := flag.String("pack", "", "science pack YAML file (required)")
	instFile := flag.String("instrument", "", "instrument pack YAML file (required)")
	specFile := flag.String("spectrum", "", "observed spectrum CSV file (required)")
	segments := flag.String("segments", "", "comma-separated segment names or glob patterns")
	redshift := flag.Float64("redshift", 0, "source redshift (overrides the pack value when nonzero)")
	maxIter := flag.Int("maxiter", 1000, "maximum solver iterations")
	keepFWHM := flag.Bool("keep-fwhm", false, "use line FWHMs from the pack instead of the instrument resolution")
	guessOnly := flag.Bool("guess-only", false, "print the initial guess without fitting")
	outFile := flag.String("out", "", "write the resulting feature table to this file")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: specfit -pack science.yaml -instrument instrument.yaml -spectrum spec.csv [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Fits the physical components of a science pack to an observed spectrum.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *packFile == "" || *instFile == "" || *specFile == "" {
		flag.Usage()
		os.Exit(2)
	}

	m, err := model.Load(*packFile)
	if err != nil {
		fatal(err)
	}
	if *redshift != 0 {
		m.Features.Redshift = *redshift
	}

	pack, err := instrument.Load(*instFile)
	if err != nil {
		fatal(err)
	}
	patterns := strings.Split(*segments, ",")
	if *segments == "" {
		if m.Features.Instrument == "" {
			fatal(fmt.Errorf("no -segments given and the science pack names no instrument"))
		}
		patterns = strings.Split(m.Features.Instrument, ",")
	}
	ins, err := pack.Select(patterns...)
	if err != nil {
		fatal(err)
	}

	spec, err := readSpectrum(*specFile)
	if err != nil {
		fatal(err)
	}

	if err := m.Guess(spec, ins, model.GuessOptions{KeepLineFWHM: *keepFWHM}); err != nil {
		fatal(err)
	}
	if !*guessOnly {
		info, err := m.Fit(spec, ins, model.FitOptions{
			MaxIterations: *maxIter,
			KeepLineFWHM:  *keepFWHM,
		})
		if err != nil {
			fatal(err)
		}
		fmt.Fprintf(os.Stderr, "%s after %d iterations, cost %.6g over %d samples\n",
			info.Message, info.Iterations, info.Cost, info.Samples)
	}

	printTable(os.Stdout, m.Features)

	if *outFile != "" {
		if err := m.Save(*outFile); err != nil {
			fatal(err)
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", *outFile)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

// readSpectrum loads a CSV spectrum: wavelength, flux and optionally
// uncertainty. A non-numeric first row is treated as a header.
func readSpectrum(path string) (model.Spectrum, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Spectrum{}, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var spec model.Spectrum
	for row := 0; ; row++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return model.Spectrum{}, fmt.Errorf("%s: %w", path, err)
		}
		if len(rec) < 2 {
			return model.Spectrum{}, fmt.Errorf("%s: row %d has %d columns, want at least 2", path, row+1, len(rec))
		}
		w, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			if row == 0 {
				continue // header
			}
			return model.Spectrum{}, fmt.Errorf("%s: row %d: %w", path, row+1, err)
		}
		y, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return model.Spectrum{}, fmt.Errorf("%s: row %d: %w", path, row+1, err)
		}
		unc := 0.1 * y
		if len(rec) >= 3 {
			unc, err = strconv.ParseFloat(rec[2], 64)
			if err != nil {
				return model.Spectrum{}, fmt.Errorf("%s: row %d: %w", path, row+1, err)
			}
		}
		spec.Wavelength = append(spec.Wavelength, w)
		spec.Flux = append(spec.Flux, y)
		spec.Uncertainty = append(spec.Uncertainty, unc)
	}
	if len(spec.Wavelength) == 0 {
		return model.Spectrum{}, fmt.Errorf("%s: no samples", path)
	}
	return spec, nil
}

func printTable(w io.Writer, t *feature.Table) {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tTEMPERATURE\tTAU\tPOWER\tWAVELENGTH\tFWHM")
	for _, row := range t.Features() {
		cols := []*feature.Bounded{row.Temperature, row.Tau, row.Power, row.Wavelength, row.FWHM}
		fmt.Fprintf(tw, "%s\t%s", row.Name, row.Kind)
		for _, c := range cols {
			if c == nil {
				fmt.Fprint(tw, "\t-")
			} else {
				fmt.Fprintf(tw, "\t%s", c)
			}
		}
		fmt.Fprintln(tw)
	}
	tw.Flush()
}
