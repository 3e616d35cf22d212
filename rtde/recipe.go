package rtde

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
	"unicode/utf8"

	ur "github.com/mdzio/go-ur"
)

// Recipe is a negotiated variable set.
type Recipe struct {
	ID    uint8
	Types []DataType
}

// Size returns the size of the encoded values without recipe id. ok is false,
// if the recipe contains unresolved types.
func (r Recipe) Size() (size int, ok bool) {
	ok = true
	for _, t := range r.Types {
		if t == Unresolved {
			ok = false
		}
		size += t.Size()
	}
	return
}

// Decode decodes the values of a data package (without recipe id) according
// to the recipe types.
func (r Recipe) Decode(b []byte) ([]interface{}, error) {
	size, ok := r.Size()
	if !ok {
		return nil, fmt.Errorf("%w: recipe %d contains unresolved types", ur.ErrDeserialization, r.ID)
	}
	if len(b) != size {
		return nil, fmt.Errorf("%w: recipe %d needs %d bytes, got %d", ur.ErrDeserialization, r.ID, size, len(b))
	}
	rd := bytes.NewReader(b)
	vals := make([]interface{}, len(r.Types))
	for i, t := range r.Types {
		var v interface{}
		switch t {
		case Vector6D:
			v = new(Vec6)
		case Vector3D:
			v = new(Vec3)
		case Vector6Int32:
			v = new(IVec6)
		case Vector6Uint32:
			v = new(UVec6)
		case Double:
			v = new(float64)
		case Uint64:
			v = new(uint64)
		case Uint32:
			v = new(uint32)
		case Int32:
			v = new(int32)
		case Bool:
			v = new(bool)
		case Uint8:
			v = new(uint8)
		}
		if err := binary.Read(rd, binary.BigEndian, v); err != nil {
			return nil, fmt.Errorf("%w: value %d (%v): %v", ur.ErrDeserialization, i, t, err)
		}
		vals[i] = deref(v)
	}
	return vals, nil
}

func deref(v interface{}) interface{} {
	switch p := v.(type) {
	case *Vec6:
		return *p
	case *Vec3:
		return *p
	case *IVec6:
		return *p
	case *UVec6:
		return *p
	case *float64:
		return *p
	case *uint64:
		return *p
	case *uint32:
		return *p
	case *int32:
		return *p
	case *bool:
		return *p
	case *uint8:
		return *p
	}
	return v
}

func (r Recipe) String() string {
	names := make([]string, len(r.Types))
	for i, t := range r.Types {
		names[i] = t.String()
	}
	return fmt.Sprintf("%d:%s", r.ID, strings.Join(names, ","))
}

// encodeNames builds the variable list of a setup request.
func encodeNames(names []string) []byte {
	return []byte(strings.Join(names, ",") + "\r\n")
}

// parseRecipe decodes the payload of a setup response: recipe id followed by
// the comma separated type names.
func parseRecipe(b []byte) (Recipe, error) {
	if len(b) == 0 {
		return Recipe{}, fmt.Errorf("%w: empty setup response", ur.ErrDeserialization)
	}
	list := b[1:]
	if !utf8.Valid(list) {
		return Recipe{}, fmt.Errorf("%w: setup response is not valid UTF-8", ur.ErrDeserialization)
	}
	names := strings.Split(string(list), ",")
	types := make([]DataType, len(names))
	for i, n := range names {
		types[i] = ParseDataType(n)
	}
	return Recipe{ID: b[0], Types: types}, nil
}
