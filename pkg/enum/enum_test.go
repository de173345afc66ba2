package enum

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type color string

var (
	red  = New(color("red"))
	blue = New(color("blue"))
)

func Test_ToEnum(t *testing.T) {
	v, err := ToEnum[color]("red")
	require.NoError(t, err)
	require.Equal(t, red, v)

	v, err = ToEnum[color]("blue")
	require.NoError(t, err)
	require.Equal(t, blue, v)

	_, err = ToEnum[color]("green")
	require.Error(t, err)
}
