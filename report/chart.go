package report

import (
	"io"
	"sync"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

// TrendPoint is one transient sample.
type TrendPoint struct {
	Cycle       uint64
	PeakTemp    float64
	MinVoltage  float64
	HasVoltage  bool
	SampleWatts float64
}

// A Trend collects the transient samples of a run. It is safe for concurrent
// use.
type Trend struct {
	mu     sync.Mutex
	points []TrendPoint
	index  map[uint64]int
}

// NewTrend creates an empty trend.
func NewTrend() *Trend {
	return &Trend{index: make(map[uint64]int)}
}

func (t *Trend) point(cycle uint64) *TrendPoint {
	i, ok := t.index[cycle]
	if !ok {
		i = len(t.points)
		t.index[cycle] = i
		t.points = append(t.points, TrendPoint{Cycle: cycle})
	}

	return &t.points[i]
}

// AddTemperature records the peak temperature of the sample ending at cycle.
func (t *Trend) AddTemperature(cycle uint64, peak float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.point(cycle).PeakTemp = peak
}

// AddVoltage records the lowest voltage of the sample ending at cycle.
func (t *Trend) AddVoltage(cycle uint64, minV float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := t.point(cycle)
	p.MinVoltage = minV
	p.HasVoltage = true
}

// AddPower records the total power of the sample ending at cycle.
func (t *Trend) AddPower(cycle uint64, watts float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.point(cycle).SampleWatts = watts
}

// Points returns a copy of the samples in the order they were first seen.
func (t *Trend) Points() []TrendPoint {
	t.mu.Lock()
	defer t.mu.Unlock()

	return append([]TrendPoint(nil), t.points...)
}

// TransientChart renders the samples as an HTML page with one line chart for
// the peak temperature, one for the power, and one for the lowest voltage
// when any was recorded.
func TransientChart(w io.Writer, points []TrendPoint) error {
	cycles := make([]uint64, len(points))
	temps := make([]opts.LineData, len(points))
	watts := make([]opts.LineData, len(points))
	volts := make([]opts.LineData, 0, len(points))

	for i, p := range points {
		cycles[i] = p.Cycle
		temps[i] = opts.LineData{Value: p.PeakTemp}
		watts[i] = opts.LineData{Value: p.SampleWatts}

		if p.HasVoltage {
			volts = append(volts, opts.LineData{Value: p.MinVoltage})
		} else {
			volts = append(volts, opts.LineData{Value: "-"})
		}
	}

	page := components.NewPage()
	page.PageTitle = "stacktherm"
	page.AddCharts(
		newLine("Peak temperature", "K", cycles).
			AddSeries("peak", temps),
		newLine("Power", "W", cycles).
			AddSeries("total", watts),
	)

	for _, p := range points {
		if p.HasVoltage {
			page.AddCharts(newLine("Lowest voltage", "V", cycles).
				AddSeries("min", volts))

			break
		}
	}

	return page.Render(w)
}

func newLine(title, unit string, cycles []uint64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme: types.ThemeWesteros,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: unit,
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name:        "cycle",
			SplitNumber: 20,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Scale: true,
		}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:       "inside",
			Start:      0,
			End:        100,
			XAxisIndex: []int{0},
		}),
	)
	line.SetXAxis(cycles)

	return line
}
