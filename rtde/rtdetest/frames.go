package rtdetest

import (
	"encoding/binary"
	"math"

	"github.com/mdzio/go-ur/rtde"
)

// NewFrame creates a package of type t.
func NewFrame(t rtde.PackageType, payload []byte) rtde.Frame {
	return rtde.Frame{
		Header:  rtde.Header{Size: uint16(rtde.HeaderSize + len(payload)), Type: t},
		Payload: payload,
	}
}

// Bool creates a response package with a boolean result.
func Bool(t rtde.PackageType, ok bool) rtde.Frame {
	var b byte
	if ok {
		b = 1
	}
	return NewFrame(t, []byte{b})
}

// Text creates a message package as sent by the controller.
func Text(text string) rtde.Frame {
	return NewFrame(rtde.TypeMessage, []byte(text))
}

// Data creates a data package for a recipe.
func Data(recipeID uint8, values []byte) rtde.Frame {
	return NewFrame(rtde.TypeData, append([]byte{recipeID}, values...))
}

// Double encodes a DOUBLE value.
func Double(v float64) []byte {
	return binary.BigEndian.AppendUint64(nil, math.Float64bits(v))
}
