// Package robot combines the interfaces of a Universal Robots controller into
// one session.
package robot

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/mdzio/go-lib/conc"
	"github.com/mdzio/go-logging"

	ur "github.com/mdzio/go-ur"
	"github.com/mdzio/go-ur/dashboard"
	"github.com/mdzio/go-ur/port"
	"github.com/mdzio/go-ur/rtde"
)

// TCP ports of the primary and secondary client interfaces.
const (
	PrimaryPort   = 30001
	SecondaryPort = 30002
)

// DefaultPollInterval is the delay between state queries while waiting.
const DefaultPollInterval = time.Millisecond

var log = logging.Get("robot")

// Addrs are the addresses (host:port) of the controller interfaces. Empty
// addresses of the primary and secondary interface are not connected.
type Addrs struct {
	Dashboard string
	Primary   string
	Secondary string
	RTDE      string
}

// HostAddrs returns the standard addresses of host.
func HostAddrs(host string) Addrs {
	addr := func(p int) string { return net.JoinHostPort(host, strconv.Itoa(p)) }
	return Addrs{
		Dashboard: addr(dashboard.Port),
		Primary:   addr(PrimaryPort),
		Secondary: addr(SecondaryPort),
		RTDE:      addr(rtde.Port),
	}
}

// Robot is a session with a controller. It is not safe for concurrent use.
type Robot struct {
	Dashboard *dashboard.Client
	RTDE      *rtde.Client

	// Delay between state queries while waiting. 0 selects
	// DefaultPollInterval.
	PollInterval time.Duration

	// Waiting can be cancelled with this context (optional).
	Context conc.Context

	primary   *port.Port
	secondary *port.Port
}

// Connect connects to all interfaces of host.
func Connect(host string, timeout time.Duration) (*Robot, error) {
	return ConnectAddrs(HostAddrs(host), timeout)
}

// ConnectAddrs connects to the interfaces at the specified addresses. If one
// connection fails, the already established ones are closed.
func ConnectAddrs(a Addrs, timeout time.Duration) (*Robot, error) {
	r := &Robot{}
	var err error
	if r.Dashboard, err = dashboard.DialAddr(a.Dashboard, timeout); err != nil {
		return nil, err
	}
	if a.Primary != "" {
		if r.primary, err = port.Dial(a.Primary, timeout); err != nil {
			r.Close()
			return nil, err
		}
	}
	if a.Secondary != "" {
		if r.secondary, err = port.Dial(a.Secondary, timeout); err != nil {
			r.Close()
			return nil, err
		}
	}
	if r.RTDE, err = rtde.DialAddr(a.RTDE, timeout); err != nil {
		r.Close()
		return nil, err
	}
	log.Infof("Connected to robot %s", a.Dashboard)
	return r, nil
}

// New creates a session from established clients. primary and secondary may
// be nil.
func New(d *dashboard.Client, r *rtde.Client, primary, secondary *port.Port) *Robot {
	return &Robot{Dashboard: d, RTDE: r, primary: primary, secondary: secondary}
}

// Close closes all connections. The first error is returned.
func (r *Robot) Close() error {
	var first error
	keep := func(err error) {
		if err != nil {
			log.Warningf("Closing of robot session: %v", err)
			if first == nil {
				first = err
			}
		}
	}
	if r.Dashboard != nil {
		keep(r.Dashboard.Close())
	}
	if r.primary != nil {
		keep(r.primary.Close())
	}
	if r.secondary != nil {
		keep(r.secondary.Close())
	}
	if r.RTDE != nil {
		msgs, err := r.RTDE.Close()
		for _, m := range msgs {
			log.Debugf("Controller message: %s", m)
		}
		keep(err)
	}
	return first
}

func (r *Robot) sleep(d time.Duration) error {
	if r.Context != nil {
		return r.Context.Sleep(d)
	}
	time.Sleep(d)
	return nil
}

// await polls cond until it returns true or timeout expires.
func (r *Robot) await(timeout time.Duration, cond func() (done bool, state string, err error)) error {
	interval := r.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	start := time.Now()
	for {
		done, state, err := cond()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if elapsed := time.Since(start); elapsed > timeout {
			return &ur.TimeoutError{Operation: state, Elapsed: elapsed}
		}
		if err := r.sleep(interval); err != nil {
			return fmt.Errorf("Waiting for %s cancelled: %w", state, err)
		}
	}
}

// Load loads program and waits until the controller reports it as loaded.
func (r *Robot) Load(program string, timeout time.Duration) error {
	if !strings.HasSuffix(program, ".urp") {
		program += ".urp"
	}
	loaded, err := r.Dashboard.LoadedProgram()
	if err != nil {
		return err
	}
	if loaded == program {
		log.Debugf("Program %s already loaded", program)
		return nil
	}
	if err := r.Dashboard.LoadProgram(program); err != nil {
		return err
	}
	return r.await(timeout, func() (bool, string, error) {
		loaded, err := r.Dashboard.LoadedProgram()
		return loaded == program, "program " + program, err
	})
}

// PowerOn powers the arm on and waits until it is powered.
func (r *Robot) PowerOn(timeout time.Duration) error {
	mode, err := r.Dashboard.RobotMode()
	if err != nil {
		return err
	}
	if mode.IsPowered() {
		return nil
	}
	if err := r.Dashboard.Power(true); err != nil {
		return err
	}
	return r.await(timeout, func() (bool, string, error) {
		mode, err := r.Dashboard.RobotMode()
		return mode.IsPowered(), "power on, robot mode " + mode.String(), err
	})
}

// MetaData queries the slowly changing state of the robot.
func (r *Robot) MetaData() (dashboard.RobotState, error) {
	var s dashboard.RobotState
	var err error
	d := r.Dashboard
	if s.IsSaved, s.Program, err = d.IsProgramSaved(); err != nil {
		return s, err
	}
	if s.Version, err = d.PolyScopeVersion(); err != nil {
		return s, err
	}
	if s.Mode, err = d.RobotMode(); err != nil {
		return s, err
	}
	if s.IsRemote, err = d.IsRemoteControl(); err != nil {
		return s, err
	}
	if s.Serial, err = d.SerialNumber(); err != nil {
		return s, err
	}
	if s.Model, err = d.RobotModel(); err != nil {
		return s, err
	}
	if s.OperationalMode, err = d.OperationalMode(); err != nil {
		return s, err
	}
	if s.SafetyStatus, err = d.SafetyStatus(); err != nil {
		return s, err
	}
	return s, nil
}

// State queries robot mode and program state.
func (r *Robot) State() (dashboard.OperationalState, error) {
	var s dashboard.OperationalState
	var err error
	if s.Mode, err = r.Dashboard.RobotMode(); err != nil {
		return s, err
	}
	if s.State, err = r.Dashboard.ProgramState(); err != nil {
		return s, err
	}
	return s, nil
}

// ControlVersion retrieves the controller version over RTDE.
func (r *Robot) ControlVersion() (rtde.Version, error) {
	return r.RTDE.ControlVersion()
}

// Info sends an info message to the controller log.
func (r *Robot) Info(text, source string) error { return r.RTDE.Info(text, source) }

// Warn sends a warning message to the controller log.
func (r *Robot) Warn(text, source string) error { return r.RTDE.Warn(text, source) }

// Error sends an error message to the controller log.
func (r *Robot) Error(text, source string) error { return r.RTDE.Error(text, source) }

// Exception sends an exception message to the controller log.
func (r *Robot) Exception(text, source string) error { return r.RTDE.Exception(text, source) }
