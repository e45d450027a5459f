package snmp

import (
	"context"
	"testing"

	"github.com/gosnmp/gosnmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frans1705/genieacs-mikrotik/internal/apperr"
	"github.com/frans1705/genieacs-mikrotik/internal/cfg"
)

func TestVersionOf(t *testing.T) {
	for _, in := range []string{"", "2c", "v2c", "2", " V2C "} {
		v, err := versionOf(in)
		require.NoError(t, err, in)
		assert.Equal(t, gosnmp.Version2c, v, in)
	}

	v, err := versionOf("1")
	require.NoError(t, err)
	assert.Equal(t, gosnmp.Version1, v)

	_, err = versionOf("3")
	assert.Error(t, err)
}

func TestDialRejectsUnsupportedVersion(t *testing.T) {
	_, err := Dial(context.Background(), cfg.SNMPConfig{Version: "3", Host: "10.10.10.2"})
	assert.True(t, apperr.IsType(err, apperr.ConfigError))
}
