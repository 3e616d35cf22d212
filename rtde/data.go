package rtde

import (
	"math"
	"strings"
)

// DataType is a variable type announced by the controller in a recipe.
type DataType int

// Supported data types. Unresolved covers all names the controller may
// return instead of a type (NOT_FOUND, IN_USE, ...).
const (
	Unresolved DataType = iota
	Vector6D
	Vector3D
	Vector6Int32
	Vector6Uint32
	Double
	Uint64
	Uint32
	Int32
	Bool
	Uint8
)

var dataTypes = []struct {
	name string
	size int
}{
	Unresolved:    {"UNRESOLVED", 0},
	Vector6D:      {"VECTOR6D", 48},
	Vector3D:      {"VECTOR3D", 24},
	Vector6Int32:  {"VECTOR6INT32", 24},
	Vector6Uint32: {"VECTOR6UINT32", 24},
	Double:        {"DOUBLE", 8},
	Uint64:        {"UINT64", 8},
	Uint32:        {"UINT32", 4},
	Int32:         {"INT32", 4},
	Bool:          {"BOOL", 1},
	Uint8:         {"UINT8", 1},
}

var dataTypeByName = func() map[string]DataType {
	m := make(map[string]DataType, len(dataTypes))
	for t, d := range dataTypes {
		m[d.name] = DataType(t)
	}
	return m
}()

// ParseDataType maps a type name to a DataType. The name is compared case
// insensitively. Unknown names yield Unresolved.
func ParseDataType(name string) DataType {
	if t, ok := dataTypeByName[strings.ToUpper(name)]; ok {
		return t
	}
	return Unresolved
}

// Size returns the encoded size in bytes.
func (t DataType) Size() int {
	if t < 0 || int(t) >= len(dataTypes) {
		return 0
	}
	return dataTypes[t].size
}

func (t DataType) String() string {
	if t < 0 || int(t) >= len(dataTypes) {
		return dataTypes[Unresolved].name
	}
	return dataTypes[t].name
}

const radToDeg = 180 / math.Pi

// Vec3 is a VECTOR3D value.
type Vec3 struct {
	X, Y, Z float64
}

// Convert scales meters to millimeters.
func (v Vec3) Convert() Vec3 {
	return Vec3{X: v.X * 1000, Y: v.Y * 1000, Z: v.Z * 1000}
}

// Vec6 is a VECTOR6D value, usually a pose with position in meters and
// rotation vector in radians.
type Vec6 struct {
	X, Y, Z    float64
	RX, RY, RZ float64
}

// Convert scales the position to millimeters and the rotation to degrees.
func (v Vec6) Convert() Vec6 {
	return Vec6{
		X: v.X * 1000, Y: v.Y * 1000, Z: v.Z * 1000,
		RX: v.RX * radToDeg, RY: v.RY * radToDeg, RZ: v.RZ * radToDeg,
	}
}

// IVec6 is a VECTOR6INT32 value.
type IVec6 [6]int32

// UVec6 is a VECTOR6UINT32 value.
type UVec6 [6]uint32

// DefaultOutputs is a commonly used output recipe. The data can be decoded
// into DefaultOutputData.
var DefaultOutputs = []string{
	"actual_digital_output_bits",
	"timestamp",
	"actual_TCP_pose",
	"actual_TCP_speed",
	"actual_q",
	"safety_mode",
	"robot_mode",
}

// DefaultOutputData receives the values of DefaultOutputs.
type DefaultOutputData struct {
	DigitalOutputs uint64
	Timestamp      float64
	TCPPose        Vec6
	TCPSpeed       Vec6
	JointPositions Vec6
	SafetyMode     int32
	RobotMode      int32
}
