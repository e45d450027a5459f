package snmp

import (
	"strconv"
	"strings"
)

// JoinBaseRel(".1.3.6.1.4.1.3902.1082", ".500.10...") => ".1.3.6.1.4.1.3902.1082.500.10..."
func JoinBaseRel(base, rel string) string {
	base = strings.TrimSuffix(base, ".")
	rel = strings.TrimPrefix(rel, ".")
	return base + "." + rel
}

// JoinIndexes(oid, 285278721, 3) => "<oid>.285278721.3"
func JoinIndexes(oid string, idx ...uint32) string {
	oid = strings.TrimSuffix(oid, ".")
	for _, v := range idx {
		oid += "." + strconv.FormatUint(uint64(v), 10)
	}
	return oid
}

// NormOID makes "1.3.6..." and ".1.3.6..." compare equal.
func NormOID(oid string) string {
	s := strings.TrimSpace(oid)
	s = strings.TrimPrefix(s, "SNMPv2-SMI::")
	s = strings.TrimPrefix(s, "SNMPv2-MIB::")
	if s == "" {
		return s
	}
	if s[0] != '.' && s[0] >= '0' && s[0] <= '9' {
		s = "." + s
	}
	return s
}
