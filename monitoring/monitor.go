// Package monitoring turns a running simulation into a web server, so that
// users can follow and control the simulation from a browser.
package monitoring

import (
	"bytes"
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

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/epicell/monitoring/web"
	"github.com/sarchlab/epicell/pandemic"
	"github.com/sarchlab/epicell/sim"
	"github.com/sarchlab/epicell/sir"
)

// Monitor can turn a simulation into a server and allows external monitoring
// controlling of the simulation.
type Monitor struct {
	engine      sim.Engine
	cells       []*pandemic.Cell
	cellIndex   map[string]*pandemic.Cell
	portNumber  int
	openBrowser bool
	listener    net.Listener
	stream      *stateStream

	// engineLock serializes the requests that pause the engine.
	engineLock sync.Mutex

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{
		cellIndex: make(map[string]*pandemic.Cell),
		stream:    newStateStream(),
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

// WithBrowser opens the monitoring page in a browser once the server starts.
func (m *Monitor) WithBrowser() *Monitor {
	m.openBrowser = true
	return m
}

// RegisterEngine registers the engine that is used in the simulation.
func (m *Monitor) RegisterEngine(e sim.Engine) {
	m.engine = e
}

// RegisterSpace registers all the cells of a space to be monitored. The
// states the cells take are streamed on /api/stream.
func (m *Monitor) RegisterSpace(space *pandemic.Space) {
	for _, c := range space.Cells() {
		m.RegisterCell(c)
	}

	space.AcceptHook(m.stream)
}

// NumStreamClients returns the number of clients following the state stream.
func (m *Monitor) NumStreamClients() int {
	return m.stream.numClients()
}

// RegisterCell registers a cell to be monitored.
func (m *Monitor) RegisterCell(c *pandemic.Cell) {
	if _, found := m.cellIndex[c.Name()]; found {
		log.Panicf("cell %s already registered", c.Name())
	}

	m.cells = append(m.cells, c)
	m.cellIndex[c.Name()] = c
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        sim.GetIDGenerator().Generate(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
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

// Handler returns the HTTP handler that serves the API and the web page.
func (m *Monitor) Handler() http.Handler {
	r := mux.NewRouter()

	fServer := http.FileServer(web.GetAssets())
	r.HandleFunc("/api/pause", m.pauseEngine)
	r.HandleFunc("/api/continue", m.continueEngine)
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/run", m.run)
	r.HandleFunc("/api/list_cells", m.listCells)
	r.HandleFunc("/api/cell/{name}", m.listCellDetails)
	r.HandleFunc("/api/field/{json}", m.listFieldValue)
	r.HandleFunc("/api/state/{name}", m.cellState)
	r.HandleFunc("/api/summary", m.summary)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.HandleFunc("/api/stream", m.stream.serve)
	r.PathPrefix("/").Handler(fServer)

	return r
}

// StartServer starts the monitor as a web server with a custom port if wanted.
func (m *Monitor) StartServer() {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	m.listener = listener

	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", m.URL())

	handler := m.Handler()
	go func() {
		err := http.Serve(listener, handler)
		if err != nil && !isClosedErr(err) {
			dieOnErr(err)
		}
	}()

	if m.openBrowser {
		err = browser.OpenURL(m.URL())
		if err != nil {
			log.Printf("cannot open the browser: %v", err)
		}
	}
}

// URL returns the address of the web page, or an empty string if the server
// is not started.
func (m *Monitor) URL() string {
	if m.listener == nil {
		return ""
	}

	return fmt.Sprintf("http://localhost:%d",
		m.listener.Addr().(*net.TCPAddr).Port)
}

// StopServer stops accepting requests.
func (m *Monitor) StopServer() error {
	if m.listener == nil {
		return nil
	}

	err := m.listener.Close()
	m.listener = nil

	return err
}

func isClosedErr(err error) bool {
	return strings.Contains(err.Error(), "use of closed network connection")
}

func (m *Monitor) pauseEngine(w http.ResponseWriter, _ *http.Request) {
	m.engineLock.Lock()
	m.engine.Pause()
	m.engineLock.Unlock()

	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) continueEngine(w http.ResponseWriter, _ *http.Request) {
	m.engineLock.Lock()
	m.engine.Continue()
	m.engineLock.Unlock()

	_, err := w.Write(nil)
	dieOnErr(err)
}

// whilePaused runs f while the engine is between two events, so that f can
// read the cells. An engine paused by the user stays paused.
func (m *Monitor) whilePaused(f func()) {
	m.engineLock.Lock()
	defer m.engineLock.Unlock()

	if !m.engine.IsPaused() {
		m.engine.Pause()
		defer m.engine.Continue()
	}

	f()
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	now := m.engine.CurrentTime()
	fmt.Fprintf(w, "{\"now\":%.10f}", now)
}

func (m *Monitor) run(_ http.ResponseWriter, _ *http.Request) {
	go func() {
		err := m.engine.Run()
		if err != nil {
			log.Printf("simulation stopped: %v", err)
		}
	}()
}

func (m *Monitor) listCells(w http.ResponseWriter, _ *http.Request) {
	names := make([]string, 0, len(m.cells))
	for _, c := range m.cells {
		names = append(names, c.Name())
	}

	writeJSON(w, names)
}

func (m *Monitor) listCellDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	cell := m.findCellOr404(w, name)
	if cell == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(cell)
	serializer.SetMaxDepth(1)

	var err error
	m.whilePaused(func() {
		err = serializer.Serialize(w)
	})
	dieOnErr(err)
}

type fieldReq struct {
	CellName  string `json:"cell_name,omitempty"`
	FieldName string `json:"field_name,omitempty"`
}

func (m *Monitor) listFieldValue(w http.ResponseWriter, r *http.Request) {
	jsonString := mux.Vars(r)["json"]
	req := fieldReq{}

	err := json.Unmarshal([]byte(jsonString), &req)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	cell := m.findCellOr404(w, req.CellName)
	if cell == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(cell)
	serializer.SetMaxDepth(1)

	err = serializer.SetEntryPoint(strings.Split(req.FieldName, "."))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	m.whilePaused(func() {
		err = serializer.Serialize(w)
	})
	dieOnErr(err)
}

type stateRsp struct {
	Cell  string         `json:"cell"`
	Now   float64        `json:"now"`
	Text  string         `json:"text"`
	State map[string]any `json:"state"`
}

func (m *Monitor) cellState(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	cell := m.findCellOr404(w, name)
	if cell == nil {
		return
	}

	var rsp stateRsp
	m.whilePaused(func() {
		state := cell.State().Clone()
		rsp = stateRsp{
			Cell:  name,
			Now:   float64(m.engine.CurrentTime()),
			Text:  sir.FormatState(state),
			State: sir.EncodeState(state),
		}
	})

	writeJSON(w, rsp)
}

func (m *Monitor) summary(w http.ResponseWriter, _ *http.Request) {
	var s pandemic.Summary
	m.whilePaused(func() {
		s = pandemic.Summarize(m.cells)
	})

	writeJSON(w, s)
}

func (m *Monitor) findCellOr404(
	w http.ResponseWriter,
	name string,
) *pandemic.Cell {
	cell, found := m.cellIndex[name]
	if !found {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Cell not found"))
		dieOnErr(err)

		return nil
	}

	return cell
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	writeJSON(w, m.progressBars)
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

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	dieOnErr(err)

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
