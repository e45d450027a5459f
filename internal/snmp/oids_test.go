package snmp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinBaseRel(t *testing.T) {
	assert.Equal(t, ".1.3.6.1.4.1.3902.1082.500.10", JoinBaseRel(".1.3.6.1.4.1.3902.1082.", ".500.10"))
	assert.Equal(t, "1.3.6.500", JoinBaseRel("1.3.6", "500"))
}

func TestJoinIndexes(t *testing.T) {
	assert.Equal(t, ".1.3.285278721.3.1", JoinIndexes(".1.3.", 285278721, 3, 1))
	assert.Equal(t, ".1.3.0", JoinIndexes(".1.3", 0))
	assert.Equal(t, ".1.3", JoinIndexes(".1.3"))
}

func TestNormOID(t *testing.T) {
	assert.Equal(t, ".1.3.6.1", NormOID("1.3.6.1"))
	assert.Equal(t, ".1.3.6.1", NormOID(" .1.3.6.1 "))
	assert.Equal(t, ".1.3.6.1", NormOID("SNMPv2-SMI::1.3.6.1"))
	assert.Equal(t, "", NormOID(""))
}
