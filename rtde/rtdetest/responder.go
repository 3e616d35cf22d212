package rtdetest

import (
	"bytes"
	"encoding/binary"
	"math"
	"strings"
	"sync"

	"github.com/mdzio/go-ur/rtde"
)

// Variables known by a Responder, if not configured otherwise.
var Variables = map[string]rtde.DataType{
	"timestamp":                  rtde.Double,
	"actual_digital_output_bits": rtde.Uint64,
	"actual_TCP_pose":            rtde.Vector6D,
	"actual_TCP_speed":           rtde.Vector6D,
	"actual_TCP_force":           rtde.Vector6D,
	"actual_q":                   rtde.Vector6D,
	"target_q":                   rtde.Vector6D,
	"safety_mode":                rtde.Int32,
	"robot_mode":                 rtde.Int32,
	"runtime_state":              rtde.Uint32,
	"joint_mode":                 rtde.Vector6Int32,
	"elbow_position":             rtde.Vector3D,
	"output_int_register_0":      rtde.Int32,
	"input_int_register_0":       rtde.Int32,
	"input_double_register_0":    rtde.Double,
	"speed_slider_mask":          rtde.Uint32,
	"speed_slider_fraction":      rtde.Double,
	"standard_digital_output":    rtde.Uint8,
}

// Responder behaves like a controller for the control requests.
type Responder struct {
	Variables map[string]rtde.DataType
	Version   rtde.Version

	// RejectProtocol answers protocol requests negatively.
	RejectProtocol bool

	// Samples are sent as data packages of the output recipe after a start
	// request was accepted.
	Samples [][]byte

	mtx       sync.Mutex
	output    bool
	nextInput uint8
	rate      float64
}

// NewResponder creates a responder with the default variables.
func NewResponder() *Responder {
	return &Responder{
		Variables: Variables,
		Version:   rtde.Version{Major: 5, Minor: 11, Bugfix: 1, Build: 108318},
	}
}

// Rate returns the frequency of the output recipe.
func (r *Responder) Rate() float64 {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return r.rate
}

// Handle implements Handler.
func (r *Responder) Handle(req rtde.Frame) []rtde.Frame {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	switch req.Type() {
	case rtde.TypeProtocolVersion:
		return []rtde.Frame{Bool(req.Type(), !r.RejectProtocol)}
	case rtde.TypeURControlVersion:
		b, _ := rtde.Marshal(r.Version)
		return []rtde.Frame{NewFrame(req.Type(), b)}
	case rtde.TypeSetupOutputs:
		if len(req.Payload) < 8 {
			return nil
		}
		r.rate = math.Float64frombits(binary.BigEndian.Uint64(req.Payload))
		types, _ := r.lookup(req.Payload[8:])
		r.output = true
		return []rtde.Frame{NewFrame(req.Type(), append([]byte{1}, types...))}
	case rtde.TypeSetupInputs:
		types, ok := r.lookup(req.Payload)
		var id uint8
		if ok {
			r.nextInput++
			id = r.nextInput
		}
		return []rtde.Frame{NewFrame(req.Type(), append([]byte{id}, types...))}
	case rtde.TypeStart:
		if !r.output {
			return []rtde.Frame{Bool(req.Type(), false)}
		}
		resp := []rtde.Frame{Bool(req.Type(), true)}
		for _, s := range r.Samples {
			resp = append(resp, Data(1, s))
		}
		return resp
	case rtde.TypePause:
		return []rtde.Frame{Bool(req.Type(), true)}
	}
	return nil
}

// lookup resolves a variable list. ok is false, if a variable is unknown.
func (r *Responder) lookup(list []byte) (types []byte, ok bool) {
	names := strings.Split(strings.TrimSuffix(string(list), "\r\n"), ",")
	var buf bytes.Buffer
	ok = true
	for i, n := range names {
		if i > 0 {
			buf.WriteByte(',')
		}
		if t, found := r.Variables[n]; found {
			buf.WriteString(t.String())
		} else {
			buf.WriteString("NOT_FOUND")
			ok = false
		}
	}
	return buf.Bytes(), ok
}
