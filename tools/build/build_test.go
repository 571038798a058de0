package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectTargets(t *testing.T) {
	all, err := selectTargets(nil)
	require.NoError(t, err)
	assert.Len(t, all, len(targets))

	linux, err := selectTargets([]string{"linux"})
	require.NoError(t, err)
	assert.Len(t, linux, 3)

	one, err := selectTargets([]string{"windows/amd64"})
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "windows_plcgw.exe", one[0].outputName())

	_, err = selectTargets([]string{"plan9/386"})
	assert.Error(t, err)
}
