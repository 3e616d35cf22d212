package robot

import (
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/mdzio/go-lib/conc"
	"github.com/mdzio/go-lib/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ur "github.com/mdzio/go-ur"
	"github.com/mdzio/go-ur/dashboard"
	"github.com/mdzio/go-ur/dashboard/dashboardtest"
	"github.com/mdzio/go-ur/rtde"
	"github.com/mdzio/go-ur/rtde/rtdetest"
)

// Test configuration (environment variables)
const (
	// LOG_LEVEL: OFF, ERROR, WARNING, INFO, DEBUG, TRACE

	// hostname or IP address of a controller or URSim, e.g. 127.0.0.1
	robotAddress = "UR_ADDRESS"
	// The robot must be in remote control mode.
)

const timeout = 2 * time.Second

func newTestRobot(t *testing.T, ds *dashboardtest.Server, ctrl *rtdetest.Controller) *Robot {
	d, err := dashboard.New(ds.Pipe(timeout))
	require.NoError(t, err)
	c, err := rtde.New(ctrl.Pipe(timeout))
	require.NoError(t, err)
	return New(d, c, nil, nil)
}

func count(cmds []string, cmd string) int {
	n := 0
	for _, c := range cmds {
		if c == cmd {
			n++
		}
	}
	return n
}

func TestPowerOn(t *testing.T) {
	ds := dashboardtest.NewServer()
	ds.Steps = 3
	r := newTestRobot(t, ds, rtdetest.NewController())
	defer r.Close()

	require.NoError(t, r.PowerOn(timeout))
	mode, err := r.Dashboard.RobotMode()
	require.NoError(t, err)
	assert.Equal(t, dashboard.Idle, mode)

	require.NoError(t, r.PowerOn(timeout))
	assert.Equal(t, 1, count(ds.Commands(), "power on"))
}

func TestPowerOnTimeout(t *testing.T) {
	ds := dashboardtest.NewServer()
	ds.Handler = func(cmd string) (string, bool) {
		if cmd == "robotmode" {
			return "Robotmode: BOOTING", true
		}
		return "", false
	}
	r := newTestRobot(t, ds, rtdetest.NewController())
	defer r.Close()

	err := r.PowerOn(20 * time.Millisecond)
	var te *ur.TimeoutError
	require.True(t, errors.As(err, &te), "%v", err)
	assert.Contains(t, te.Operation, "BOOTING")
	assert.GreaterOrEqual(t, te.Elapsed, 20*time.Millisecond)
}

func TestLoad(t *testing.T) {
	ds := dashboardtest.NewServer()
	ds.Steps = 2
	r := newTestRobot(t, ds, rtdetest.NewController())
	defer r.Close()

	require.NoError(t, r.Load("demo", timeout))
	require.NoError(t, r.Load("demo.urp", timeout))
	assert.Equal(t, 1, count(ds.Commands(), "load demo.urp"))
}

func TestLoadTimeout(t *testing.T) {
	ds := dashboardtest.NewServer()
	ds.Handler = func(cmd string) (string, bool) {
		if cmd == "get loaded program" {
			return "No program loaded", true
		}
		return "", false
	}
	r := newTestRobot(t, ds, rtdetest.NewController())
	defer r.Close()
	r.PollInterval = 5 * time.Millisecond

	err := r.Load("demo", 30*time.Millisecond)
	var te *ur.TimeoutError
	require.True(t, errors.As(err, &te), "%v", err)
	assert.Equal(t, "program demo.urp", te.Operation)
}

func TestWaitCancelled(t *testing.T) {
	ds := dashboardtest.NewServer()
	ds.Handler = func(cmd string) (string, bool) {
		if cmd == "robotmode" {
			return "Robotmode: POWER_OFF", true
		}
		return "", false
	}
	r := newTestRobot(t, ds, rtdetest.NewController())
	defer r.Close()
	r.PollInterval = 10 * time.Millisecond

	res := make(chan error, 1)
	cancel := conc.DaemonFunc(func(ctx conc.Context) {
		r.Context = ctx
		res <- r.PowerOn(time.Hour)
	})
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-res:
		assert.Error(t, err)
		var te *ur.TimeoutError
		assert.False(t, errors.As(err, &te))
	case <-time.After(timeout):
		t.Fatal("waiting not cancelled")
	}
}

func TestMetaData(t *testing.T) {
	r := newTestRobot(t, dashboardtest.NewServer(), rtdetest.NewController())
	defer r.Close()

	md, err := r.MetaData()
	require.NoError(t, err)
	assert.Equal(t, dashboard.RobotState{
		Program:         "<unnamed>",
		Version:         "URSoftware 5.11.1.108318 (Mar 03 2021)",
		Mode:            dashboard.PowerOff,
		OperationalMode: dashboard.OpModeNone,
		SafetyStatus:    dashboard.SafetyNormal,
		IsRemote:        true,
		Serial:          "20185500001",
		Model:           "UR5",
	}, md)

	st, err := r.State()
	require.NoError(t, err)
	assert.Equal(t, dashboard.OperationalState{Mode: dashboard.PowerOff}, st)
}

func TestRTDE(t *testing.T) {
	ctrl := rtdetest.NewController()
	r := newTestRobot(t, dashboardtest.NewServer(), ctrl)

	v, err := r.ControlVersion()
	require.NoError(t, err)
	assert.Equal(t, uint32(5), v.Major)

	require.NoError(t, r.Info("info", "robot_test"))
	require.NoError(t, r.Warn("warn", "robot_test"))
	require.NoError(t, r.Error("error", "robot_test"))
	require.NoError(t, r.Exception("exception", "robot_test"))

	var reqs []rtde.Frame
	require.Eventually(t, func() bool {
		reqs = ctrl.Requests()
		return len(reqs) == 6
	}, timeout, time.Millisecond)
	var levels []rtde.Level
	for _, f := range reqs[2:] {
		var m rtde.Message
		require.NoError(t, f.Parse(&m))
		levels = append(levels, m.Level)
	}
	assert.Equal(t, []rtde.Level{rtde.LevelInfo, rtde.LevelWarning, rtde.LevelError, rtde.LevelException}, levels)
	assert.NoError(t, r.Close())
}

// listen accepts connections and discards everything received.
func listen(t *testing.T) string {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	go func() {
		for {
			conn, err := l.Accept()
			if err != nil {
				return
			}
			go func() {
				defer conn.Close()
				buf := make([]byte, 256)
				for {
					if _, err := conn.Read(buf); err != nil {
						return
					}
				}
			}()
		}
	}()
	return l.Addr().String()
}

func TestConnectAddrs(t *testing.T) {
	ds := dashboardtest.NewServer()
	require.NoError(t, ds.Start())
	defer ds.Stop()
	ctrl := rtdetest.NewController()
	require.NoError(t, ctrl.Start())
	defer ctrl.Stop()

	r, err := ConnectAddrs(Addrs{
		Dashboard: ds.Addr,
		Primary:   listen(t),
		Secondary: listen(t),
		RTDE:      ctrl.Addr,
	}, timeout)
	require.NoError(t, err)
	assert.Equal(t, rtde.V2, r.RTDE.Protocol())
	assert.NoError(t, r.Close())
	assert.Equal(t, "quit", ds.Commands()[len(ds.Commands())-1])
}

func TestConnectFailure(t *testing.T) {
	ds := dashboardtest.NewServer()
	require.NoError(t, ds.Start())
	defer ds.Stop()

	_, err := ConnectAddrs(Addrs{Dashboard: ds.Addr, RTDE: "127.0.0.1:1"}, 200*time.Millisecond)
	require.Error(t, err)
	// dashboard session was closed
	require.Eventually(t, func() bool {
		cmds := ds.Commands()
		return len(cmds) > 0 && cmds[len(cmds)-1] == "quit"
	}, timeout, time.Millisecond)
}

func TestHostAddrs(t *testing.T) {
	a := HostAddrs("10.0.0.5")
	assert.Equal(t, Addrs{
		Dashboard: "10.0.0.5:29999",
		Primary:   "10.0.0.5:30001",
		Secondary: "10.0.0.5:30002",
		RTDE:      "10.0.0.5:30004",
	}, a)
	assert.Equal(t, "[::1]:30004", HostAddrs("::1").RTDE)
}

func TestRobot(t *testing.T) {
	host := testutil.Config(t, robotAddress)
	r, err := Connect(host, 10*time.Second)
	require.NoError(t, err)
	defer r.Close()

	md, err := r.MetaData()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(md.Version, "URSoftware"), md.Version)

	_, err = r.State()
	require.NoError(t, err)
	_, err = r.ControlVersion()
	require.NoError(t, err)
	require.NoError(t, r.Info("Connected from go-ur test", "robot_test"))
}
