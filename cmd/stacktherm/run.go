package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sarchlab/stacktherm/calculator"
	"github.com/sarchlab/stacktherm/grid"
	"github.com/sarchlab/stacktherm/monitoring"
	"github.com/sarchlab/stacktherm/pdn"
	"github.com/sarchlab/stacktherm/power"
	"github.com/sarchlab/stacktherm/report"
	"github.com/sarchlab/stacktherm/sim"
	"github.com/sarchlab/stacktherm/simulation"
	"github.com/sarchlab/stacktherm/thermal"
	"github.com/sarchlab/stacktherm/trace"
)

type runFlags struct {
	mode       string
	freqGHz    float64
	epoch      uint64
	logicPower string
	logicWatts float64

	thermalX, thermalY int
	ambient            float64
	heatSink           float64
	packageH           float64
	fixedEdges         float64

	pdnX, pdnY   int
	vdd          float64
	tsvMap       string
	c4Map        string
	noPDN        bool
	transientPDN bool

	monitor bool
	port    int
	browser bool
	hold    bool

	noRecord bool
	output   string

	dump     string
	compress bool
	verbose  bool
}

func newRunCmd() *cobra.Command {
	device := &deviceFlags{}
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run TRACE",
		Short: "Replay an access trace and solve the temperature and voltage.",
		Long: "run replays an access trace, or standard input if TRACE is " +
			"\"-\". Traces ending in .zst are decompressed. After the trace, " +
			"the steady-state temperature and voltage of the average power " +
			"are solved.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], device, flags)
		},
	}

	device.register(cmd.Flags())

	f := cmd.Flags()
	f.StringVar(&flags.mode, "mode", "steady",
		"steady solves once at the end; transient also steps every epoch.")
	f.Float64Var(&flags.freqGHz, "freq-ghz", 1.25, "Clock of the trace cycles.")
	f.Uint64Var(&flags.epoch, "epoch", 100000, "Cycles per power sample.")
	f.StringVar(&flags.logicPower, "logic-power", "",
		"File with the static logic-layer power map in watts.")
	f.Float64Var(&flags.logicWatts, "logic-watts", 0,
		"Static logic-layer power spread uniformly, in watts.")

	f.IntVar(&flags.thermalX, "thermal-x", 16, "Thermal grid columns.")
	f.IntVar(&flags.thermalY, "thermal-y", 16, "Thermal grid rows.")
	f.Float64Var(&flags.ambient, "ambient", 318.15, "Ambient temperature in K.")
	f.Float64Var(&flags.heatSink, "heat-sink", 2e4,
		"Heat sink film coefficient in W/(m^2 K).")
	f.Float64Var(&flags.packageH, "package-h", 1e3,
		"Package film coefficient in W/(m^2 K).")
	f.Float64Var(&flags.fixedEdges, "fixed-edges", 0,
		"Film coefficient of the chip edges to ambient. 0 keeps them adiabatic.")

	f.IntVar(&flags.pdnX, "pdn-x", 8, "PDN grid columns.")
	f.IntVar(&flags.pdnY, "pdn-y", 8, "PDN grid rows.")
	f.Float64Var(&flags.vdd, "vdd", 1.2, "Supply voltage.")
	f.StringVar(&flags.tsvMap, "tsv-map", "", "File with the TSV positions.")
	f.StringVar(&flags.c4Map, "c4-map", "", "File with the C4 bump positions.")
	f.BoolVar(&flags.noPDN, "no-pdn", false, "Do not solve the PDN.")
	f.BoolVar(&flags.transientPDN, "transient-pdn", false,
		"Step the PDN every epoch in transient mode.")

	f.BoolVar(&flags.monitor, "monitor", false, "Serve the run over HTTP.")
	f.IntVar(&flags.port, "port", 0, "Port of the monitoring server.")
	f.BoolVar(&flags.browser, "browser", false, "Open the monitor in a browser.")
	f.BoolVar(&flags.hold, "hold", false,
		"Keep the monitor up after the run until interrupted.")

	f.BoolVar(&flags.noRecord, "no-record", false, "Do not write the SQLite file.")
	f.StringVar(&flags.output, "output", "",
		"Name of the SQLite file, without extension.")

	f.StringVar(&flags.dump, "dump", "",
		"Directory to write text dumps, heat maps and charts to.")
	f.BoolVar(&flags.compress, "compress", false, "Compress text dumps with zstd.")
	f.BoolVarP(&flags.verbose, "verbose", "v", false, "Log every sample.")

	return cmd
}

func (f *runFlags) calcMode() (calculator.Mode, error) {
	switch f.mode {
	case "steady":
		return calculator.ModeSteady, nil
	case "transient":
		return calculator.ModeTransient, nil
	default:
		return 0, fmt.Errorf("unknown mode %q", f.mode)
	}
}

func readFile[T any](path string, parse func(io.Reader) (T, error)) (T, error) {
	var zero T

	file, err := os.Open(path)
	if err != nil {
		return zero, err
	}
	defer file.Close()

	v, err := parse(file)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", path, err)
	}

	return v, nil
}

func (f *runFlags) thermalBuilder() thermal.Builder {
	b := thermal.MakeBuilder().
		WithGrid(f.thermalX, f.thermalY).
		WithAmbient(f.ambient).
		WithHeatSink(f.heatSink, f.packageH)

	if f.fixedEdges > 0 {
		b = b.WithLateralBoundary(thermal.FixedTemperature, f.fixedEdges)
	}

	return b
}

func (f *runFlags) pdnBuilder() (pdn.Builder, error) {
	b := pdn.MakeBuilder().
		WithGrid(f.pdnX, f.pdnY).
		WithVdd(f.vdd)

	if f.tsvMap != "" {
		m, err := readFile(f.tsvMap, pdn.ParseConnectivityMap)
		if err != nil {
			return b, err
		}

		b = b.WithTSVMap(m)
	}

	if f.c4Map != "" {
		m, err := readFile(f.c4Map, pdn.ParseConnectivityMap)
		if err != nil {
			return b, err
		}

		b = b.WithC4Map(m)
	}

	return b, nil
}

func (f *runFlags) calculatorBuilder(
	device *deviceFlags,
) (calculator.Builder, *grid.Grid2D, error) {
	b := calculator.MakeBuilder()

	mode, err := f.calcMode()
	if err != nil {
		return b, nil, err
	}

	if f.freqGHz <= 0 || f.epoch == 0 {
		return b, nil, fmt.Errorf(
			"frequency and epoch must be positive, got %g GHz and %d cycles",
			f.freqGHz, f.epoch)
	}

	m, err := device.mapper()
	if err != nil {
		return b, nil, err
	}

	var logic *grid.Grid2D

	switch {
	case f.logicPower != "":
		logic, err = readFile(f.logicPower, power.ReadLogicPower)
		if err != nil {
			return b, nil, err
		}
	case f.logicWatts > 0:
		logic = power.UniformLogicPower(m.X(), m.Y(), f.logicWatts)
	}

	b = b.WithMapper(m).
		WithFreq(sim.Freq(f.freqGHz) * sim.GHz).
		WithPowerEpoch(f.epoch).
		WithLogicPower(logic).
		WithMode(mode).
		WithThermal(f.thermalBuilder()).
		WithTransientPDN(f.transientPDN)

	if f.noPDN {
		return b.WithoutPDN(), logic, nil
	}

	pb, err := f.pdnBuilder()
	if err != nil {
		return b, nil, err
	}

	return b.WithPDN(pb), logic, nil
}

func (f *runFlags) simulationBuilder(cb calculator.Builder) simulation.Builder {
	b := simulation.MakeBuilder().WithCalculator(cb)

	if f.monitor {
		if f.port > 0 {
			b = b.WithMonitorPort(f.port)
		}

		if f.browser {
			b = b.WithBrowser()
		}
	} else {
		b = b.WithoutMonitoring()
	}

	if f.noRecord {
		b = b.WithoutRecording()
	} else if f.output != "" {
		b = b.WithOutputFileName(f.output)
	}

	if f.verbose {
		b = b.WithLogger(log.New(os.Stderr, "", log.LstdFlags))
	}

	return b
}

func openTrace(path string) (io.ReadCloser, uint64, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), 0, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}

	var size uint64
	if info, err := file.Stat(); err == nil {
		size = uint64(info.Size())
	}

	if !strings.HasSuffix(path, report.ZstdSuffix) {
		return file, size, nil
	}

	zr, err := report.NewZstdReader(file)
	if err != nil {
		file.Close()
		return nil, 0, err
	}

	return struct {
		io.Reader
		io.Closer
	}{zr, multiCloser{zr, file}}, 0, nil
}

type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var first error

	for _, c := range m {
		err := c.Close()
		if err != nil && first == nil {
			first = err
		}
	}

	return first
}

func run(cmd *cobra.Command, tracePath string, device *deviceFlags, flags *runFlags) error {
	cb, logic, err := flags.calculatorBuilder(device)
	if err != nil {
		return err
	}

	in, size, err := openTrace(tracePath)
	if err != nil {
		return err
	}
	defer in.Close()

	s := flags.simulationBuilder(cb).Build()
	defer s.Terminate()

	trend := report.NewTrend()
	s.Calculator().AcceptHook(monitoring.NewTrendHook(trend))

	stats, err := s.Replay(trace.NewReader(in), size)
	if err != nil {
		return err
	}

	calc := s.Calculator()
	if stats.LastCycle > 0 {
		err = calc.CalcSteadyState(stats.LastCycle)
		if err != nil {
			return err
		}
	} else {
		fmt.Fprintln(os.Stderr, "The trace is empty. Nothing to solve.")
	}

	err = printSummary(cmd.OutOrStdout(), s.ID(), stats, calc)
	if err != nil {
		return err
	}

	if flags.dump != "" && stats.LastCycle > 0 {
		err = dumpResults(flags.dump, flags.compress, stats.LastCycle,
			calc, logic, trend)
		if err != nil {
			return err
		}
	}

	if flags.monitor && flags.hold {
		ctx, stop := signal.NotifyContext(context.Background(),
			os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Fprintf(os.Stderr, "Serving %s until interrupted.\n",
			s.GetMonitor().Addr())
		<-ctx.Done()
	}

	return nil
}

func printSummary(
	w io.Writer,
	id string,
	stats trace.Stats,
	calc *calculator.Calculator,
) error {
	total, ioEnergy, _ := calc.Energy()

	_, err := fmt.Fprintf(w,
		"run %s\ncycles %d\nevents %d\ndropped %d\n"+
			"core energy %.6g J\nio energy %.6g J\n",
		id, stats.LastCycle, stats.Events, stats.Dropped, total, ioEnergy)
	if err != nil {
		return err
	}

	if t := calc.Temperature(); t != nil {
		_, err = fmt.Fprintf(w, "peak temperature %.3f K\n", t.Max())
		if err != nil {
			return err
		}
	}

	if v := calc.Voltage(); v != nil {
		_, err = fmt.Fprintf(w, "min voltage %.4f V\nir drop %.4f V\n",
			v.Min(), calc.PDN().IRDrop())
	}

	return err
}
