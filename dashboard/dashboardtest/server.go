// Package dashboardtest provides a simulated Dashboard Server for tests.
package dashboardtest

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/mdzio/go-logging"

	"github.com/mdzio/go-ur/port"
)

var svrLog = logging.Get("dashboard-server")

// Greeting is sent on connect.
const Greeting = "Connected: Universal Robots Dashboard Server"

// ProgramDir is the directory of loaded programs.
const ProgramDir = "/ursim/programs/"

// Server simulates the Dashboard Server of a controller. Power on and
// program loading complete after Steps queries of the robot mode and the
// loaded program.
type Server struct {
	Addr string

	// Handler may answer a command instead of the simulation.
	Handler func(cmd string) (resp string, ok bool)

	Steps int

	// PlayRefusals is the number of play commands refused before a program
	// starts.
	PlayRefusals int

	mtx      sync.Mutex
	commands []string
	mode     string
	loaded   string
	pending  string
	steps    int
	state    string
	opMode   string
	safety   string

	listener net.Listener
	stop     chan struct{}
	done     chan struct{}
}

// NewServer creates a server with a powered off robot and without loaded
// program.
func NewServer() *Server {
	return &Server{mode: "POWER_OFF", state: "STOPPED", opMode: "NONE", safety: "NORMAL"}
}

// Commands returns the received commands.
func (s *Server) Commands() []string {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return append([]string(nil), s.commands...)
}

// SetMode sets the robot mode.
func (s *Server) SetMode(mode string) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.mode = mode
}

// SetSafety sets the safety status.
func (s *Server) SetSafety(status string) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.safety = status
}

// Pipe serves one end of an in-memory connection and returns a port on the
// other end.
func (s *Server) Pipe(timeout time.Duration) *port.Port {
	cln, svr := net.Pipe()
	go s.Serve(svr)
	return port.New(cln, timeout)
}

// Start listens on Addr (default 127.0.0.1:0) and serves connections until
// Stop is called.
func (s *Server) Start() error {
	addr := s.Addr
	if addr == "" {
		addr = "127.0.0.1:0"
	}
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("Listen on address %s failed: %w", addr, err)
	}
	s.listener = l
	s.Addr = l.Addr().String()
	s.stop = make(chan struct{}, 1)
	s.done = make(chan struct{}, 1)
	svrLog.Debugf("Starting dashboard server on address %s", s.Addr)

	go func() {
		defer l.Close()
		for {
			conn, err := l.Accept()
			if err != nil {
				select {
				case <-s.stop:
				default:
					svrLog.Errorf("Accept failed: %v", err)
				}
				s.done <- struct{}{}
				return
			}
			go s.Serve(conn)
		}
	}()
	return nil
}

// Stop stops accepting connections.
func (s *Server) Stop() {
	svrLog.Debug("Shutting down dashboard server")
	s.stop <- struct{}{}
	s.listener.Close()
	<-s.done
}

// Serve handles one connection until quit or until the peer closes it.
func (s *Server) Serve(conn net.Conn) {
	defer conn.Close()
	w := bufio.NewWriter(conn)
	send := func(line string) bool {
		w.WriteString(line + "\n")
		if err := w.Flush(); err != nil {
			svrLog.Debugf("Sending to %s failed: %v", conn.RemoteAddr(), err)
			return false
		}
		return true
	}
	if !send(Greeting) {
		return
	}
	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		cmd := strings.TrimSpace(sc.Text())
		resp := s.respond(cmd)
		if !send(resp) || strings.EqualFold(cmd, "quit") {
			return
		}
	}
}

func (s *Server) respond(cmd string) string {
	s.mtx.Lock()
	s.commands = append(s.commands, cmd)
	s.mtx.Unlock()
	if s.Handler != nil {
		if resp, ok := s.Handler(cmd); ok {
			return resp
		}
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()
	lc := strings.ToLower(cmd)
	arg := func(prefix string) string { return strings.TrimSpace(cmd[len(prefix):]) }
	switch {
	case lc == "quit":
		return "Disconnected"
	case strings.HasPrefix(lc, "addtolog "):
		return "Added log message"
	case strings.HasPrefix(lc, "load installation "):
		return "Loading installation: " + arg("load installation ")
	case strings.HasPrefix(lc, "load "):
		path := ProgramDir + arg("load ")
		s.pending = path
		s.steps = s.Steps
		s.complete()
		return "Loading program: " + path
	case lc == "get loaded program":
		s.complete()
		if s.loaded == "" {
			return "No program loaded"
		}
		return "Loaded program: " + s.loaded
	case lc == "play":
		if s.PlayRefusals > 0 || s.loaded == "" {
			if s.PlayRefusals > 0 {
				s.PlayRefusals--
			}
			return "Failed to execute: play"
		}
		s.state = "PLAYING"
		return "Starting program"
	case lc == "stop":
		s.state = "STOPPED"
		return "Stopped"
	case lc == "pause":
		s.state = "PAUSED"
		return "Pausing program"
	case lc == "shutdown":
		return "Shutting down"
	case lc == "close popup":
		return "closing popup"
	case strings.HasPrefix(lc, "popup "):
		return "showing popup"
	case strings.HasPrefix(lc, "set operational mode "):
		m := arg("set operational mode ")
		s.opMode = strings.ToUpper(m)
		return fmt.Sprintf("Operational mode '%s' is set", m)
	case lc == "clear operational mode":
		s.opMode = "NONE"
		return "No longer controlling the operational mode. Current operational mode: '" +
			strings.ToLower(s.opMode) + "'."
	case lc == "get operational mode":
		return s.opMode
	case lc == "power on":
		s.mode = "BOOTING"
		s.steps = s.Steps
		s.complete()
		return "Powering on"
	case lc == "power off":
		s.mode = "POWER_OFF"
		return "Powering off"
	case lc == "brake release":
		s.mode = "RUNNING"
		return "Brake releasing"
	case lc == "robotmode":
		s.complete()
		return "Robotmode: " + s.mode
	case lc == "running":
		return fmt.Sprintf("Program running: %t", s.state == "PLAYING")
	case lc == "isprogramsaved":
		if s.loaded == "" {
			return "false <unnamed>"
		}
		return "true " + strings.TrimPrefix(s.loaded, ProgramDir)
	case lc == "is in remote control":
		return "true"
	case lc == "programstate":
		if s.loaded == "" {
			return s.state + " <unnamed>"
		}
		return s.state + " " + strings.TrimPrefix(s.loaded, ProgramDir)
	case lc == "polyscopeversion":
		return "URSoftware 5.11.1.108318 (Mar 03 2021)"
	case lc == "get serial number":
		return "20185500001"
	case lc == "get robot model":
		return "UR5"
	case lc == "safetystatus":
		return "Safetystatus: " + s.safety
	case lc == "close safety popup":
		return "closing safety popup"
	case lc == "unlock protective stop":
		s.safety = "NORMAL"
		return "Protective stop releasing"
	case lc == "restart safety":
		s.safety = "NORMAL"
		s.mode = "POWER_OFF"
		return "Restarting safety"
	}
	return "could not understand: '" + cmd + "'"
}

// complete advances a pending power on or program load.
func (s *Server) complete() {
	if s.steps > 0 {
		s.steps--
		return
	}
	if s.mode == "BOOTING" {
		s.mode = "IDLE"
	}
	if s.pending != "" {
		s.loaded = s.pending
		s.pending = ""
	}
}
