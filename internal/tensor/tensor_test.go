package tensor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapeNumElements(t *testing.T) {
	assert.Equal(t, 1, Shape{}.NumElements())
	assert.Equal(t, 6, Shape{2, 3}.NumElements())
	assert.Equal(t, 24, Shape{2, 3, 4}.NumElements())
}

func TestShapeOffset(t *testing.T) {
	s := Shape{2, 3}
	off, err := s.Offset(1, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, off)

	_, err = s.Offset(2, 0)
	assert.Error(t, err)
	_, err = s.Offset(1)
	assert.Error(t, err)
}

func TestFromSliceValidatesLength(t *testing.T) {
	_, err := FromSlice([]float64{1, 2, 3}, Shape{2, 2})
	require.Error(t, err)

	x, err := FromSlice([]float64{1, 2, 3, 4}, Shape{2, 2})
	require.NoError(t, err)
	assert.Equal(t, 3.0, x.At(1, 0))
}

func TestCloneIsDeep(t *testing.T) {
	x := Full(Shape{3}, 2)
	c := x.Clone()
	c.Data()[0] = 7
	assert.Equal(t, 2.0, x.Data()[0])
	assert.False(t, x.Equal(c))
}

func TestBytesRoundTrip(t *testing.T) {
	x, err := FromSlice([]float64{1.5, -2, math.Pi, 0}, Shape{2, 2})
	require.NoError(t, err)
	y, err := FromBytes(x.Bytes(), x.Shape())
	require.NoError(t, err)
	assert.True(t, x.Equal(y))

	_, err = FromBytes(x.Bytes()[:8], x.Shape())
	assert.Error(t, err)
}

func TestAtan2RecoversAngles(t *testing.T) {
	angles, err := FromSlice([]float64{-3, -1, 0, 1, 3}, Shape{5})
	require.NoError(t, err)
	got, err := Atan2(Sin(angles), Cos(angles))
	require.NoError(t, err)
	assert.InDeltaSlice(t, angles.Data(), got.Data(), 1e-12)

	_, err = Atan2(angles, Zeros(Shape{4}))
	assert.Error(t, err)
}

func TestIsFinite(t *testing.T) {
	x := Zeros(Shape{2})
	assert.True(t, x.IsFinite())
	x.Data()[1] = math.NaN()
	assert.False(t, x.IsFinite())
}
