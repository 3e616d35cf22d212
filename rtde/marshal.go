package rtde

import (
	"bytes"
	"encoding"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	ur "github.com/mdzio/go-ur"
)

// Marshal encodes v big-endian with fixed width integers. v must be a fixed
// size value (numbers, bools, arrays and structs of them, byte slices) or
// implement encoding.BinaryMarshaler.
func Marshal(v interface{}) ([]byte, error) {
	if m, ok := v.(encoding.BinaryMarshaler); ok {
		b, err := m.MarshalBinary()
		if err != nil {
			if errors.Is(err, ur.ErrSerialization) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %v", ur.ErrSerialization, err)
		}
		return b, nil
	}
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.BigEndian, v); err != nil {
		return nil, fmt.Errorf("%w: %v", ur.ErrSerialization, err)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes b into the value pointed to by v. All bytes of b must be
// consumed.
func Unmarshal(b []byte, v interface{}) error {
	if u, ok := v.(encoding.BinaryUnmarshaler); ok {
		err := u.UnmarshalBinary(b)
		if err != nil && !errors.Is(err, ur.ErrDeserialization) {
			return fmt.Errorf("%w: %v", ur.ErrDeserialization, err)
		}
		return err
	}
	r := bytes.NewReader(b)
	if err := binary.Read(r, binary.BigEndian, v); err != nil {
		return fmt.Errorf("%w: %v", ur.ErrDeserialization, err)
	}
	if r.Len() != 0 {
		return fmt.Errorf("%w: %d trailing bytes", ur.ErrDeserialization, r.Len())
	}
	return nil
}

// Payload is a package to be sent. If Header.Size is zero, the size is
// calculated from the encoded body.
type Payload struct {
	Header Header
	Body   interface{}
}

// NewPayload creates a payload of type t. body may be nil for packages
// without content.
func NewPayload(t PackageType, body interface{}) *Payload {
	return &Payload{Header: Header{Type: t}, Body: body}
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (p *Payload) MarshalBinary() ([]byte, error) {
	var body []byte
	if p.Body != nil {
		var err error
		body, err = Marshal(p.Body)
		if err != nil {
			return nil, err
		}
	}
	h := p.Header
	if h.Size == 0 {
		n := HeaderSize + len(body)
		if n > math.MaxUint16 {
			return nil, fmt.Errorf("%w: package size %d exceeds %d", ur.ErrSerialization, n, math.MaxUint16)
		}
		h.Size = uint16(n)
	}
	return append(EncodeHeader(h), body...), nil
}

// Level is the severity of a log message.
type Level uint8

// Message levels.
const (
	LevelException Level = iota
	LevelError
	LevelWarning
	LevelInfo
)

var levelNames = [...]string{"Exception", "Error", "Warning", "Info"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return fmt.Sprintf("Level(%d)", uint8(l))
}

// Message is a log entry for the controller. The strings are encoded with a
// 64 bit length prefix, followed by the level byte.
type Message struct {
	Message string
	Source  string
	Level   Level
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (m Message) MarshalBinary() ([]byte, error) {
	b := make([]byte, 0, 8+len(m.Message)+8+len(m.Source)+1)
	b = binary.BigEndian.AppendUint64(b, uint64(len(m.Message)))
	b = append(b, m.Message...)
	b = binary.BigEndian.AppendUint64(b, uint64(len(m.Source)))
	b = append(b, m.Source...)
	return append(b, byte(m.Level)), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (m *Message) UnmarshalBinary(b []byte) error {
	msg, rest, err := cutString(b)
	if err != nil {
		return fmt.Errorf("%w: message text: %v", ur.ErrDeserialization, err)
	}
	src, rest, err := cutString(rest)
	if err != nil {
		return fmt.Errorf("%w: message source: %v", ur.ErrDeserialization, err)
	}
	if len(rest) != 1 {
		return fmt.Errorf("%w: message level: %d bytes left", ur.ErrDeserialization, len(rest))
	}
	lvl := Level(rest[0])
	if lvl > LevelInfo {
		return fmt.Errorf("%w: invalid message level %d", ur.ErrDeserialization, rest[0])
	}
	*m = Message{Message: msg, Source: src, Level: lvl}
	return nil
}

func cutString(b []byte) (string, []byte, error) {
	if len(b) < 8 {
		return "", nil, errors.New("truncated length")
	}
	n := binary.BigEndian.Uint64(b)
	b = b[8:]
	if n > uint64(len(b)) {
		return "", nil, fmt.Errorf("length %d exceeds %d available bytes", n, len(b))
	}
	return string(b[:n]), b[n:], nil
}
