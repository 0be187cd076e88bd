package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/storekb/pkg/version"
)

func TestVersionCmd_Default(t *testing.T) {
	out, err := runCmd(t, "version")

	require.NoError(t, err)
	assert.Equal(t, version.String()+"\n", out)
}

func TestVersionCmd_Short(t *testing.T) {
	out, err := runCmd(t, "version", "--short")

	require.NoError(t, err)
	assert.Equal(t, version.Version+"\n", out)
}

func TestVersionCmd_JSON(t *testing.T) {
	out, err := runCmd(t, "version", "--json")
	require.NoError(t, err)

	var info version.BuildInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, version.Version, info.Version)
}

func TestRootCmd_VersionFlag(t *testing.T) {
	out, err := runCmd(t, "--version")

	require.NoError(t, err)
	assert.Equal(t, "storekb version "+version.Version+"\n", out)
}
