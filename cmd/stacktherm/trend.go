package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/sarchlab/stacktherm/datarecording"
	"github.com/sarchlab/stacktherm/report"
)

func newTrendCmd() *cobra.Command {
	var chart string

	cmd := &cobra.Command{
		Use:   "trend DB",
		Short: "Print the peak transient temperature of each recorded sample.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(args[0]); err != nil {
				return err
			}

			reader := datarecording.NewReader(args[0])
			defer reader.Close()

			points, err := readTrend(cmd.Context(), reader)
			if err != nil {
				return err
			}

			err = printTrend(cmd.OutOrStdout(), points)
			if err != nil || chart == "" {
				return err
			}

			f, err := os.Create(chart)
			if err != nil {
				return err
			}
			defer f.Close()

			return report.TransientChart(f, points)
		},
	}

	cmd.Flags().StringVar(&chart, "chart", "", "Also write an HTML chart here.")

	return cmd
}

func readTrend(
	ctx context.Context,
	reader datarecording.DataReader,
) ([]report.TrendPoint, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	trend := report.NewTrend()

	reader.MapTable(datarecording.TableTemperatureTransient, datarecording.CellEntry{})
	reader.MapTable(datarecording.TableVoltageTransient, datarecording.CellEntry{})
	reader.MapTable(datarecording.TablePowerSample, datarecording.CellEntry{})

	temps, err := peaks(ctx, reader, datarecording.TableTemperatureTransient, math.Max)
	if err != nil {
		return nil, err
	}

	volts, err := peaks(ctx, reader, datarecording.TableVoltageTransient, math.Min)
	if err != nil {
		return nil, err
	}

	watts, err := sums(ctx, reader, datarecording.TablePowerSample)
	if err != nil {
		return nil, err
	}

	for _, c := range sortedKeys(watts) {
		trend.AddPower(c, watts[c])
	}

	for _, c := range sortedKeys(temps) {
		trend.AddTemperature(c, temps[c])
	}

	for _, c := range sortedKeys(volts) {
		trend.AddVoltage(c, volts[c])
	}

	points := trend.Points()
	sort.Slice(points, func(i, j int) bool {
		return points[i].Cycle < points[j].Cycle
	})

	return points, nil
}

func query(
	ctx context.Context,
	reader datarecording.DataReader,
	table string,
) ([]*datarecording.CellEntry, error) {
	results, _, err := reader.Query(ctx, table, datarecording.QueryParams{
		OrderBy: "Cycle",
	})
	if err != nil {
		return nil, err
	}

	entries := make([]*datarecording.CellEntry, len(results))
	for i, r := range results {
		entries[i] = r.(*datarecording.CellEntry)
	}

	return entries, nil
}

func peaks(
	ctx context.Context,
	reader datarecording.DataReader,
	table string,
	pick func(a, b float64) float64,
) (map[uint64]float64, error) {
	entries, err := query(ctx, reader, table)
	if err != nil {
		return nil, err
	}

	out := make(map[uint64]float64)
	for _, e := range entries {
		v, ok := out[e.Cycle]
		if !ok {
			v = e.Value
		}

		out[e.Cycle] = pick(v, e.Value)
	}

	return out, nil
}

func sums(
	ctx context.Context,
	reader datarecording.DataReader,
	table string,
) (map[uint64]float64, error) {
	entries, err := query(ctx, reader, table)
	if err != nil {
		return nil, err
	}

	out := make(map[uint64]float64)
	for _, e := range entries {
		out[e.Cycle] += e.Value
	}

	return out, nil
}

func sortedKeys(m map[uint64]float64) []uint64 {
	keys := make([]uint64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	return keys
}

func printTrend(w io.Writer, points []report.TrendPoint) error {
	_, err := fmt.Fprintln(w, "# cycle power_W peak_K min_V")
	if err != nil {
		return err
	}

	for _, p := range points {
		minV := "-"
		if p.HasVoltage {
			minV = fmt.Sprintf("%.4f", p.MinVoltage)
		}

		_, err = fmt.Fprintf(w, "%d %.6g %.3f %s\n",
			p.Cycle, p.SampleWatts, p.PeakTemp, minV)
		if err != nil {
			return err
		}
	}

	return nil
}
