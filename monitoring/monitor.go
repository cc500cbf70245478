// Package monitoring serves the state of a running calculator over HTTP.
package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/stacktherm/calculator"
	"github.com/sarchlab/stacktherm/grid"
	"github.com/sarchlab/stacktherm/monitoring/web"
	"github.com/sarchlab/stacktherm/power"
	"github.com/sarchlab/stacktherm/report"
	"github.com/sarchlab/stacktherm/sim"
)

// Monitor turns a calculator into a server that can be watched from a
// browser.
type Monitor struct {
	calc        *calculator.Calculator
	metrics     *Metrics
	trend       *report.Trend
	portNumber  int
	openBrowser bool

	profileDuration time.Duration

	server *http.Server
	addr   string

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{
		trend:           report.NewTrend(),
		profileDuration: time.Second,
	}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithBrowser makes StartServer open the monitor page in a browser.
func (m *Monitor) WithBrowser() *Monitor {
	m.openBrowser = true
	return m
}

// RegisterCalculator sets the calculator to monitor and starts recording its
// transient trend.
func (m *Monitor) RegisterCalculator(c *calculator.Calculator) {
	m.calc = c
	c.AcceptHook(NewTrendHook(m.trend))
}

// RegisterMetrics exposes the metrics at /metrics.
func (m *Monitor) RegisterMetrics(metrics *Metrics) {
	m.metrics = metrics
}

// Trend returns the transient samples seen so far.
func (m *Monitor) Trend() *report.Trend {
	return m.trend
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		id:    sim.GetIDGenerator().Generate(),
		name:  name,
		start: time.Now(),
		total: total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// Router returns the routes of the monitor.
func (m *Monitor) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/energy", m.energy)
	r.HandleFunc("/api/usage", m.usage)
	r.HandleFunc("/api/field/{kind}/{layer:[0-9]+}", m.field)
	r.HandleFunc("/api/heatmap/{kind}/{layer:[0-9]+}", m.heatMap)
	r.HandleFunc("/api/trend", m.trendChart)
	r.HandleFunc("/api/component", m.component)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)

	if m.metrics != nil {
		r.Handle("/metrics",
			promhttp.HandlerFor(m.metrics.Registry, promhttp.HandlerOpts{}))
	}

	r.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)
	r.PathPrefix("/").Handler(http.FileServer(web.GetAssets()))

	return r
}

// StartServer starts the monitor as a web server with a custom port if wanted.
func (m *Monitor) StartServer() {
	if m.calc == nil {
		panic("no calculator registered")
	}

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	m.addr = fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	m.server = &http.Server{
		Handler:           m.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", m.addr)

	go func() {
		err := m.server.Serve(listener)
		if err != nil && err != http.ErrServerClosed {
			dieOnErr(err)
		}
	}()

	if m.openBrowser {
		err = browser.OpenURL(m.addr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Cannot open browser: %v\n", err)
		}
	}
}

// Addr returns the URL of the server, or "" if it is not running.
func (m *Monitor) Addr() string {
	return m.addr
}

// StopServer shuts the server down.
func (m *Monitor) StopServer(ctx context.Context) error {
	if m.server == nil {
		return nil
	}

	err := m.server.Shutdown(ctx)
	m.server = nil
	m.addr = ""

	return err
}

func (m *Monitor) writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")

	_, err = w.Write(bytes)
	dieOnErr(err)
}

type nowRsp struct {
	Now      uint64 `json:"now"`
	SampleID uint64 `json:"sample_id"`
	Mode     string `json:"mode"`
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	m.writeJSON(w, nowRsp{
		Now:      m.calc.Now(),
		SampleID: m.calc.SampleID(),
		Mode:     m.calc.Mode().String(),
	})
}

type energyRsp struct {
	Total  float64 `json:"total"`
	IO     float64 `json:"io"`
	Sample float64 `json:"sample"`
}

func (m *Monitor) energy(w http.ResponseWriter, _ *http.Request) {
	total, io, sample := m.calc.Energy()
	m.writeJSON(w, energyRsp{Total: total, IO: io, Sample: sample})
}

func (m *Monitor) usage(w http.ResponseWriter, _ *http.Request) {
	m.writeJSON(w, m.calc.VaultUsage())
}

// fieldOf returns the field named by kind, or nil if it has not been
// computed.
func (m *Monitor) fieldOf(kind string) (*grid.Grid3D, bool) {
	switch kind {
	case "power":
		return m.calc.AccumulatedMap(true), true
	case "temperature":
		return m.calc.Temperature(), true
	case "voltage":
		return m.calc.Voltage(), true
	default:
		return nil, false
	}
}

func (m *Monitor) layerOr404(
	w http.ResponseWriter,
	r *http.Request,
) (*grid.Grid3D, string, int) {
	vars := mux.Vars(r)
	kind := vars["kind"]

	g, known := m.fieldOf(kind)
	if !known {
		http.Error(w, "unknown field "+kind, http.StatusNotFound)
		return nil, "", 0
	}

	if g == nil {
		http.Error(w, kind+" has not been solved", http.StatusNotFound)
		return nil, "", 0
	}

	layer, err := strconv.Atoi(vars["layer"])
	if err != nil || layer >= g.Z() {
		http.Error(w, "layer out of range", http.StatusNotFound)
		return nil, "", 0
	}

	return g, kind, layer
}

type fieldRsp struct {
	Kind   string      `json:"kind"`
	Layer  int         `json:"layer"`
	X      int         `json:"x"`
	Y      int         `json:"y"`
	Values [][]float64 `json:"values"`
}

func (m *Monitor) field(w http.ResponseWriter, r *http.Request) {
	g, kind, layer := m.layerOr404(w, r)
	if g == nil {
		return
	}

	m.writeJSON(w, fieldRsp{
		Kind:   kind,
		Layer:  layer,
		X:      g.X(),
		Y:      g.Y(),
		Values: g.Layer(layer).Rows(),
	})
}

func (m *Monitor) heatMap(w http.ResponseWriter, r *http.Request) {
	g, kind, layer := m.layerOr404(w, r)
	if g == nil {
		return
	}

	buf := bytes.NewBuffer(nil)

	err := report.HeatMapPNG(buf, kind, g, layer)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")

	_, err = w.Write(buf.Bytes())
	dieOnErr(err)
}

func (m *Monitor) trendChart(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")

	err := report.TransientChart(w, m.trend.Points())
	dieOnErr(err)
}

// componentStatus is the view of the calculator served at /api/component.
type componentStatus struct {
	Mode         string
	Now          uint64
	SampleID     uint64
	TotalEnergy  float64
	IOEnergy     float64
	SampleEnergy float64
	Usage        []power.VaultUsage
	PeakTemp     float64
	MinVoltage   float64
}

func (m *Monitor) status() *componentStatus {
	total, io, sample := m.calc.Energy()

	s := &componentStatus{
		Mode:         m.calc.Mode().String(),
		Now:          m.calc.Now(),
		SampleID:     m.calc.SampleID(),
		TotalEnergy:  total,
		IOEnergy:     io,
		SampleEnergy: sample,
		Usage:        m.calc.VaultUsage(),
	}

	if t := m.calc.Temperature(); t != nil {
		s.PeakTemp = t.Max()
	}

	if v := m.calc.Voltage(); v != nil {
		s.MinVoltage = v.Min()
	}

	return s
}

// component serializes the calculator status. The optional field query
// selects a sub-field, as in "Usage.3".
func (m *Monitor) component(w http.ResponseWriter, r *http.Request) {
	serializer := goseth.NewSerializer()
	serializer.SetRoot(m.status())
	serializer.SetMaxDepth(2)

	if field := r.URL.Query().Get("field"); field != "" {
		err := serializer.SetEntryPoint(strings.Split(field, "."))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	err := serializer.Serialize(w)
	dieOnErr(err)
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	bars := make([]ProgressStatus, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		bars = append(bars, b.Status())
	}
	m.progressBarsLock.Unlock()

	m.writeJSON(w, bars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	m.writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	time.Sleep(m.profileDuration)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	m.writeJSON(w, prof)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
