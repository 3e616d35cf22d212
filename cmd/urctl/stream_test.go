package main

import (
	"bytes"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ur "github.com/mdzio/go-ur"
	"github.com/mdzio/go-ur/rtde"
	"github.com/mdzio/go-ur/rtde/rtdetest"
)

func newStreamClient(t *testing.T, samples ...[]byte) *rtde.Client {
	r := rtdetest.NewResponder()
	r.Samples = samples
	c, err := rtde.New((&rtdetest.Controller{Handler: r}).Pipe(2 * time.Second))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestRunStream(t *testing.T) {
	pose, err := rtde.Marshal(rtde.Vec6{X: 0.1, RX: math.Pi})
	require.NoError(t, err)
	var samples [][]byte
	for _, ts := range []float64{1.5, 1.52} {
		samples = append(samples, append(rtdetest.Double(ts), pose...))
	}
	c := newStreamClient(t, samples...)

	var buf bytes.Buffer
	require.NoError(t, runStream(c, []string{"timestamp", "actual_TCP_pose"}, 50, 2, &buf))
	assert.Equal(t,
		"timestamp=1.5\tactual_TCP_pose=[100.0 0.0 0.0 180.0 0.0 0.0]\n"+
			"timestamp=1.52\tactual_TCP_pose=[100.0 0.0 0.0 180.0 0.0 0.0]\n",
		buf.String())
}

func TestRunStreamInvalid(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, runStream(newStreamClient(t), []string{"timestamp"}, 0, 1, &buf))

	err := runStream(newStreamClient(t), []string{"timestamp", "nope"}, 10, 1, &buf)
	assert.EqualError(t, err, "Output variable nope is not available")
}

func TestRunStreamTypeMismatch(t *testing.T) {
	ctrl := &rtdetest.Controller{Handler: rtdetest.HandlerFunc(func(req rtde.Frame) []rtde.Frame {
		switch req.Type() {
		case rtde.TypeProtocolVersion:
			return []rtde.Frame{rtdetest.Bool(req.Type(), true)}
		case rtde.TypeSetupOutputs:
			return []rtde.Frame{rtdetest.NewFrame(req.Type(), []byte("\x01DOUBLE,DOUBLE"))}
		}
		return nil
	})}
	c, err := rtde.New(ctrl.Pipe(2 * time.Second))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	var buf bytes.Buffer
	err = runStream(c, []string{"timestamp"}, 10, 1, &buf)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ur.ErrUnexpectedResponse))
	assert.Empty(t, buf.String())
}
