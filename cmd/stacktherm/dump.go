package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sarchlab/stacktherm/calculator"
	"github.com/sarchlab/stacktherm/grid"
	"github.com/sarchlab/stacktherm/report"
)

// dumpWriter names and creates the files of a dump directory.
type dumpWriter struct {
	dir      string
	compress bool
}

func (d dumpWriter) write(name string, fn func(io.Writer) error) error {
	path := filepath.Join(d.dir, name)
	if d.compress {
		path += report.ZstdSuffix
	}

	w, err := report.Create(path)
	if err != nil {
		return err
	}

	err = fn(w)
	if err != nil {
		w.Close()
		return fmt.Errorf("%s: %w", path, err)
	}

	return w.Close()
}

func (d dumpWriter) writeRaw(name string, fn func(io.Writer) error) error {
	return dumpWriter{dir: d.dir}.write(name, fn)
}

type dumpStep struct {
	name string
	fn   func(io.Writer) error
}

func dumpResults(
	dir string,
	compress bool,
	cycle uint64,
	calc *calculator.Calculator,
	logic *grid.Grid2D,
	trend *report.Trend,
) error {
	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return err
	}

	d := dumpWriter{dir: dir, compress: compress}

	steps := []dumpStep{
		{"power_map.txt", func(w io.Writer) error {
			return report.WritePowerMap(w, cycle, calc.AccumulatedMap(true))
		}},
		{"vault_usage.txt", func(w io.Writer) error {
			return report.WriteVaultUsage(w, calc.VaultUsage())
		}},
		{"temperature.txt", calc.Thermal().PrintSteadyState},
	}

	if logic != nil {
		steps = append(steps, dumpStep{"logic_power.txt", func(w io.Writer) error {
			return report.WriteLogicPower(w, cycle, logic)
		}})
	}

	if calc.PDN() != nil {
		steps = append(steps, dumpStep{"voltage.txt", calc.PDN().PrintVoltage})
	}

	if sample, ok := calc.Thermal().LastSample(); ok {
		steps = append(steps,
			dumpStep{"sample_power.txt", calc.Thermal().PrintSamplePower},
			dumpStep{"transient_temperature.txt", func(w io.Writer) error {
				return calc.Thermal().PrintTransientTemperature(w, sample.ID)
			}},
		)
	}

	for _, s := range steps {
		err = d.write(s.name, s.fn)
		if err != nil {
			return err
		}
	}

	t := calc.Temperature()
	for l := 0; l < t.Z(); l++ {
		err = d.writeRaw(fmt.Sprintf("temperature_layer%d.png", l),
			func(w io.Writer) error {
				return report.HeatMapPNG(w, "temperature", t, l)
			})
		if err != nil {
			return err
		}
	}

	if len(trend.Points()) == 0 {
		return nil
	}

	return d.writeRaw("trend.html", func(w io.Writer) error {
		return report.TransientChart(w, trend.Points())
	})
}
