// Package monitoring turns a running simulation into an HTTP server that
// can be inspected and controlled from outside the process, grounded on
// the teacher's monitoring.Monitor: the same pause/continue/now/resource
// surface, trimmed to the handful of endpoints SPEC_FULL.md's external
// interfaces section calls for (distributed-interface device models,
// trace analysis, and the hang detector are out of this repository's
// scope).
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"

	"github.com/sarchlab/distfluid/internal/engine"
)

// Named is anything a Monitor can look up by name, the minimal
// introspection surface a distributed-interface Link or NetworkSide
// exposes.
type Named interface {
	Name() string
}

// Snapshotter is a Named component that can also report its distributed
// interface's current state, matching distif.Link.Snapshot's return
// shape. A component registered without this is still served at
// GET /api/component/{name}, just with only its name.
type Snapshotter interface {
	Named
	Snapshot() (frameCount uint64, demandMode bool, capacitance, source, energy, pressure float64)
}

// Monitor is an HTTP front end onto a running simulation. It holds no
// simulation logic of its own; it only reaches into the engine.Engine and
// the registered Named components it is handed.
type Monitor struct {
	eng engine.Engine

	componentsLock sync.Mutex
	components     map[string]Named

	portNumber int
}

// New creates a Monitor with no port bound yet.
func New(eng engine.Engine) *Monitor {
	return &Monitor{eng: eng, components: make(map[string]Named)}
}

// WithPortNumber sets the port the HTTP server listens on. A value below
// 1024 is rejected in favor of an OS-assigned port, matching the
// teacher's guard against accidentally binding a privileged port.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1024 {
		fmt.Fprintf(os.Stderr,
			"monitoring: port %d is not allowed, using a random port instead\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterComponent makes c reachable at GET /api/component/{name}.
func (m *Monitor) RegisterComponent(c Named) {
	m.componentsLock.Lock()
	defer m.componentsLock.Unlock()

	m.components[c.Name()] = c
}

// StartServer binds the HTTP listener and serves in the background,
// returning the address actually bound (so a port of 0 reports the port
// the OS picked). If openBrowser is true, it also opens the dashboard in
// the default browser, mirroring the teacher's StartServer.
func (m *Monitor) StartServer(openBrowser bool) (string, error) {
	r := mux.NewRouter()
	r.HandleFunc("/api/now", m.now).Methods("GET")
	r.HandleFunc("/api/pause", m.pause).Methods("POST")
	r.HandleFunc("/api/continue", m.continueRun).Methods("POST")
	r.HandleFunc("/api/component/{name}", m.component).Methods("GET")
	r.HandleFunc("/api/resource", m.resource).Methods("GET")
	r.HandleFunc("/api/profile", m.profileCPU).Methods("GET")

	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", m.portNumber))
	if err != nil {
		return "", fmt.Errorf("monitoring: listen: %w", err)
	}

	addr := ln.Addr().String()

	server := &http.Server{Handler: r, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		_ = server.Serve(ln)
	}()

	url := "http://" + addr + "/api/now"
	if openBrowser {
		_ = browser.OpenURL(url)
	}

	return addr, nil
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]float64{"time": float64(m.eng.CurrentTime())})
}

func (m *Monitor) pause(w http.ResponseWriter, _ *http.Request) {
	m.eng.Pause()
	w.WriteHeader(http.StatusNoContent)
}

func (m *Monitor) continueRun(w http.ResponseWriter, _ *http.Request) {
	go func() {
		_ = m.eng.Run()
	}()

	w.WriteHeader(http.StatusNoContent)
}

func (m *Monitor) component(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	m.componentsLock.Lock()
	c, found := m.components[name]
	m.componentsLock.Unlock()

	if !found {
		http.NotFound(w, r)
		return
	}

	snap, ok := c.(Snapshotter)
	if !ok {
		writeJSON(w, map[string]string{"name": c.Name()})
		return
	}

	frameCount, demandMode, capacitance, source, energy, pressure := snap.Snapshot()
	writeJSON(w, map[string]any{
		"name":        c.Name(),
		"frameCount":  frameCount,
		"demandMode":  demandMode,
		"capacitance": capacitance,
		"source":      source,
		"energy":      energy,
		"pressure":    pressure,
	})
}

func (m *Monitor) resource(w http.ResponseWriter, _ *http.Request) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	cpuPercent, _ := proc.CPUPercent()
	memInfo, _ := proc.MemoryInfo()

	resp := map[string]any{"cpuPercent": cpuPercent}
	if memInfo != nil {
		resp["rssBytes"] = memInfo.RSS
	}

	writeJSON(w, resp)
}

// profileCPU captures a short CPU profile and reports its total sample
// duration, using google/pprof/profile to parse what runtime/pprof wrote
// rather than shipping the raw profile bytes.
func (m *Monitor) profileCPU(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer

	if err := pprof.StartCPUProfile(&buf); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	time.Sleep(200 * time.Millisecond)
	pprof.StopCPUProfile()

	prof, err := profile.Parse(&buf)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"durationNanos": prof.DurationNanos,
		"sampleCount":   len(prof.Sample),
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
