package rtde

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ur "github.com/mdzio/go-ur"
)

func TestParseDataType(t *testing.T) {
	cases := map[string]DataType{
		"VECTOR6D":      Vector6D,
		"VECTOR3D":      Vector3D,
		"VECTOR6INT32":  Vector6Int32,
		"VECTOR6UINT32": Vector6Uint32,
		"DOUBLE":        Double,
		"UINT64":        Uint64,
		"UINT32":        Uint32,
		"INT32":         Int32,
		"BOOL":          Bool,
		"UINT8":         Uint8,
		"double":        Double,
		"Vector6d":      Vector6D,
		"NOT_FOUND":     Unresolved,
		"IN_USE":        Unresolved,
		"":              Unresolved,
		" DOUBLE":       Unresolved,
		"DOUBLE\r\n":    Unresolved,
	}
	for name, want := range cases {
		assert.Equal(t, want, ParseDataType(name), "%q", name)
	}
}

func TestDataTypeSize(t *testing.T) {
	assert.Equal(t, 48, Vector6D.Size())
	assert.Equal(t, 24, Vector3D.Size())
	assert.Equal(t, 8, Uint64.Size())
	assert.Equal(t, 1, Bool.Size())
	assert.Equal(t, 0, Unresolved.Size())
	assert.Equal(t, 0, DataType(99).Size())
	assert.Equal(t, "UNRESOLVED", DataType(-1).String())
	assert.Equal(t, "VECTOR6INT32", Vector6Int32.String())
}

func TestConvert(t *testing.T) {
	v := Vec6{X: 0.1, Y: -0.2, Z: 1, RX: math.Pi, RY: -math.Pi / 2, RZ: 0}
	c := v.Convert()
	assert.InDelta(t, 100, c.X, 1e-9)
	assert.InDelta(t, -200, c.Y, 1e-9)
	assert.InDelta(t, 1000, c.Z, 1e-9)
	assert.InDelta(t, 180, c.RX, 1e-9)
	assert.InDelta(t, -90, c.RY, 1e-9)
	assert.Equal(t, 0.0, c.RZ)
	// v is unchanged
	assert.Equal(t, 0.1, v.X)

	p := Vec3{X: 0.001, Y: 2, Z: -3}.Convert()
	assert.InDelta(t, 1, p.X, 1e-9)
	assert.InDelta(t, 2000, p.Y, 1e-9)
	assert.InDelta(t, -3000, p.Z, 1e-9)
}

func TestRecipeDecode(t *testing.T) {
	r := Recipe{ID: 1, Types: []DataType{
		Vector6D, Vector3D, Vector6Int32, Vector6Uint32, Double,
		Uint64, Uint32, Int32, Bool, Uint8,
	}}
	size, ok := r.Size()
	require.True(t, ok)
	assert.Equal(t, 48+24+24+24+8+8+4+4+1+1, size)

	var buf bytes.Buffer
	for _, v := range []interface{}{
		Vec6{X: 1, RZ: 2},
		Vec3{Z: 3},
		IVec6{-1, 2, -3, 4, -5, 6},
		UVec6{1, 2, 3, 4, 5, 6},
		12.5,
		uint64(1 << 40),
		uint32(7),
		int32(-7),
		true,
		uint8(200),
	} {
		b, err := Marshal(v)
		require.NoError(t, err)
		buf.Write(b)
	}
	vals, err := r.Decode(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []interface{}{
		Vec6{X: 1, RZ: 2},
		Vec3{Z: 3},
		IVec6{-1, 2, -3, 4, -5, 6},
		UVec6{1, 2, 3, 4, 5, 6},
		12.5,
		uint64(1 << 40),
		uint32(7),
		int32(-7),
		true,
		uint8(200),
	}, vals)

	_, err = r.Decode(buf.Bytes()[1:])
	assert.ErrorIs(t, err, ur.ErrDeserialization)

	_, err = Recipe{ID: 2, Types: []DataType{Double, Unresolved}}.Decode(make([]byte, 8))
	assert.ErrorIs(t, err, ur.ErrDeserialization)
}

func TestFrameValues(t *testing.T) {
	r := Recipe{ID: 3, Types: []DataType{Double, Int32}}
	f := Frame{Header: Header{Type: TypeData}, Payload: []byte{3,
		0x40, 0x04, 0, 0, 0, 0, 0, 0,
		0xff, 0xff, 0xff, 0xfe,
	}}
	vals, err := f.Values(r)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{2.5, int32(-2)}, vals)

	r.ID = 4
	_, err = f.Values(r)
	assert.ErrorIs(t, err, ur.ErrDeserialization)
}

func TestDefaultOutputData(t *testing.T) {
	b := make([]byte, 8+8+3*48+4+4)
	b[len(b)-1] = 7
	f := Frame{Header: Header{Type: TypeData}, Payload: append([]byte{1}, b...)}
	var d DefaultOutputData
	require.NoError(t, f.Parse(&d))
	assert.Equal(t, int32(7), d.RobotMode)
	assert.Len(t, DefaultOutputs, 7)
}

func TestParseRecipe(t *testing.T) {
	r, err := parseRecipe([]byte("\x05DOUBLE,NOT_FOUND,vector6d"))
	require.NoError(t, err)
	assert.Equal(t, Recipe{ID: 5, Types: []DataType{Double, Unresolved, Vector6D}}, r)
	assert.Equal(t, "5:DOUBLE,UNRESOLVED,VECTOR6D", r.String())

	_, err = parseRecipe(nil)
	assert.ErrorIs(t, err, ur.ErrDeserialization)
	_, err = parseRecipe([]byte{1, 0xff, 0xfe})
	assert.ErrorIs(t, err, ur.ErrDeserialization)

	assert.Equal(t, "a,b\r\n", string(encodeNames([]string{"a", "b"})))
}
