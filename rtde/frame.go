package rtde

import (
	"errors"
	"fmt"
	"io"
	"math"
	"syscall"

	ur "github.com/mdzio/go-ur"
)

// Frame is a package read from the controller: the header plus the raw bytes
// following it.
type Frame struct {
	Header  Header
	Payload []byte
}

// Type returns the package type.
func (f Frame) Type() PackageType {
	return f.Header.Type
}

// IsData reports whether the frame carries recipe data.
func (f Frame) IsData() bool {
	return f.Header.Type == TypeData
}

// RecipeID returns the recipe id of a data frame.
func (f Frame) RecipeID() (uint8, error) {
	if !f.IsData() {
		return 0, fmt.Errorf("%w: %v package has no recipe id", ur.ErrDeserialization, f.Header.Type)
	}
	if len(f.Payload) == 0 {
		return 0, fmt.Errorf("%w: empty data package", ur.ErrDeserialization)
	}
	return f.Payload[0], nil
}

// Parse decodes the payload into v (see Unmarshal). The recipe id of a data
// frame is skipped.
func (f Frame) Parse(v interface{}) error {
	b := f.Payload
	if f.IsData() {
		if len(b) == 0 {
			return fmt.Errorf("%w: empty data package", ur.ErrDeserialization)
		}
		b = b[1:]
	}
	return Unmarshal(b, v)
}

// Values decodes a data frame with the types of recipe r.
func (f Frame) Values(r Recipe) ([]interface{}, error) {
	id, err := f.RecipeID()
	if err != nil {
		return nil, err
	}
	if id != r.ID {
		return nil, fmt.Errorf("%w: recipe id %d, expected %d", ur.ErrDeserialization, id, r.ID)
	}
	return r.Decode(f.Payload[1:])
}

// MarshalBinary implements encoding.BinaryMarshaler. The header size is
// recalculated from the payload.
func (f Frame) MarshalBinary() ([]byte, error) {
	n := HeaderSize + len(f.Payload)
	if n > math.MaxUint16 {
		return nil, fmt.Errorf("%w: package size %d exceeds %d", ur.ErrSerialization, n, math.MaxUint16)
	}
	return append(EncodeHeader(Header{Size: uint16(n), Type: f.Header.Type}), f.Payload...), nil
}

// ReadFrame reads one complete package. Partial reads of the underlying
// reader are continued until the package is complete. A closed connection
// is reported as ur.ErrConnectionLost.
func ReadFrame(r io.Reader) (Frame, error) {
	var hb [HeaderSize]byte
	if err := readFull(r, hb[:]); err != nil {
		return Frame{}, fmt.Errorf("Reading of package header failed: %w", err)
	}
	h, err := DecodeHeader(hb[:])
	if err != nil {
		return Frame{}, err
	}
	if h.Size < HeaderSize {
		return Frame{}, fmt.Errorf("%w: invalid package size %d", ur.ErrDeserialization, h.Size)
	}
	payload := make([]byte, int(h.Size)-HeaderSize)
	if err := readFull(r, payload); err != nil {
		return Frame{}, fmt.Errorf("Reading of %v package failed: %w", h.Type, err)
	}
	return Frame{Header: h, Payload: payload}, nil
}

func readFull(r io.Reader, b []byte) error {
	n := 0
	for n < len(b) {
		m, err := r.Read(b[n:])
		n += m
		switch {
		case err == nil:
			if m == 0 {
				return ur.ErrConnectionLost
			}
		case errors.Is(err, syscall.EINTR):
			// interrupted, try again
		case errors.Is(err, io.EOF):
			if n < len(b) {
				return ur.ErrConnectionLost
			}
		default:
			return err
		}
	}
	return nil
}
