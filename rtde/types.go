package rtde

import (
	"encoding/binary"
	"fmt"

	ur "github.com/mdzio/go-ur"
)

// HeaderSize is the size of the package header on the wire.
const HeaderSize = 3

// PackageType identifies the contents of a package.
type PackageType uint8

// RTDE package types.
const (
	TypeProtocolVersion  PackageType = 86  // 'V'
	TypeURControlVersion PackageType = 118 // 'v'
	TypeMessage          PackageType = 77  // 'M'
	TypeData             PackageType = 85  // 'U'
	TypeSetupOutputs     PackageType = 79  // 'O', output from robot
	TypeSetupInputs      PackageType = 73  // 'I', input to robot
	TypeStart            PackageType = 83  // 'S'
	TypePause            PackageType = 80  // 'P'
)

var packageTypeNames = map[PackageType]string{
	TypeProtocolVersion:  "ProtocolVersion",
	TypeURControlVersion: "URControlVersion",
	TypeMessage:          "Message",
	TypeData:             "Data",
	TypeSetupOutputs:     "SetupOutputs",
	TypeSetupInputs:      "SetupInputs",
	TypeStart:            "Start",
	TypePause:            "Pause",
}

// ParsePackageType converts a type tag from the wire. Unknown tags are
// rejected.
func ParsePackageType(b byte) (PackageType, error) {
	t := PackageType(b)
	if _, ok := packageTypeNames[t]; !ok {
		return 0, fmt.Errorf("%w: unknown package type %d", ur.ErrDeserialization, b)
	}
	return t, nil
}

func (t PackageType) String() string {
	if n, ok := packageTypeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("PackageType(%d)", uint8(t))
}

// Header precedes every package. Size counts the whole package including the
// header itself.
type Header struct {
	Size uint16
	Type PackageType
}

// EncodeHeader encodes h into HeaderSize bytes.
func EncodeHeader(h Header) []byte {
	b := make([]byte, HeaderSize)
	binary.BigEndian.PutUint16(b[0:2], h.Size)
	b[2] = byte(h.Type)
	return b
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (h Header) MarshalBinary() ([]byte, error) {
	return EncodeHeader(h), nil
}

// DecodeHeader decodes exactly HeaderSize bytes.
func DecodeHeader(b []byte) (Header, error) {
	if len(b) != HeaderSize {
		return Header{}, fmt.Errorf("%w: invalid header length %d", ur.ErrDeserialization, len(b))
	}
	t, err := ParsePackageType(b[2])
	if err != nil {
		return Header{}, err
	}
	return Header{Size: binary.BigEndian.Uint16(b[0:2]), Type: t}, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (h *Header) UnmarshalBinary(b []byte) error {
	d, err := DecodeHeader(b)
	if err != nil {
		return err
	}
	*h = d
	return nil
}

// Protocol is the RTDE protocol version.
type Protocol uint16

// Protocol versions.
const (
	V1 Protocol = 1
	V2 Protocol = 2
)

func (p Protocol) String() string {
	return fmt.Sprintf("V%d", uint16(p))
}

// Version of the controller software.
type Version struct {
	Major  uint32
	Minor  uint32
	Bugfix uint32
	Build  uint32
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Bugfix, v.Build)
}
