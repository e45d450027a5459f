package optical

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"
)

// rxNoSignal is what the C320 reports for an ONU with no optical reading.
const rxNoSignal = 65535

// OnuState is the ZTE ONU phase state (zxAnGponOnuPhaseState).
type OnuState int

const (
	OnuLogging OnuState = iota + 1
	OnuLOS
	OnuSynchronization
	OnuOnline
	OnuDyingGasp
	OnuAuthFailed
	OnuOffline
)

var onuStateNames = map[OnuState]string{
	OnuLogging:         "Logging",
	OnuLOS:             "LOS",
	OnuSynchronization: "Synchronization",
	OnuOnline:          "Online",
	OnuDyingGasp:       "Dying Gasp",
	OnuAuthFailed:      "Auth Failed",
	OnuOffline:         "Offline",
}

func (s OnuState) String() string {
	if name, ok := onuStateNames[s]; ok {
		return name
	}
	return "Unknown"
}

// pduInt reads integer-typed PDUs only. Strings and octets are rejected so
// a mis-pointed OID does not read as zero.
func pduInt(pdu gosnmp.SnmpPDU) (int64, bool) {
	switch pdu.Type {
	case gosnmp.Integer, gosnmp.Gauge32, gosnmp.Counter32, gosnmp.Uinteger32, gosnmp.TimeTicks:
		return gosnmp.ToBigInt(pdu.Value).Int64(), true
	}
	return 0, false
}

func pduText(pdu gosnmp.SnmpPDU) string {
	switch v := pdu.Value.(type) {
	case string:
		return strings.TrimSpace(v)
	case []byte:
		return strings.TrimSpace(string(v))
	}
	return ""
}

func onuState(pdu gosnmp.SnmpPDU) OnuState {
	n, ok := pduInt(pdu)
	if !ok {
		return 0
	}
	return OnuState(n)
}

// onuSerial strips the "<onu>," prefix the OLT puts in front of the SN.
func onuSerial(pdu gosnmp.SnmpPDU) string {
	s := pduText(pdu)
	if i := strings.LastIndexByte(s, ','); i >= 0 && i < len(s)-1 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}

// rxDbm converts the raw ONU RX reading: raw * 0.002 - 30.
// hasSignal is false for the no-signal marker.
func rxDbm(pdu gosnmp.SnmpPDU) (dbm float64, hasSignal, ok bool) {
	n, ok := pduInt(pdu)
	if !ok {
		return 0, false, false
	}
	if n < 0 || n >= rxNoSignal {
		return 0, false, true
	}
	return float64(n)*0.002 - 30.0, true, true
}

// snmpDateTime decodes an RFC 2579 DateAndTime (8 or 11 octets).
func snmpDateTime(b []byte) (time.Time, bool) {
	if len(b) != 8 && len(b) != 11 {
		return time.Time{}, false
	}
	loc := time.Local
	if len(b) == 11 {
		offset := (int(b[9])*60 + int(b[10])) * 60
		if b[8] == '-' {
			offset = -offset
		}
		loc = time.FixedZone("OLT", offset)
	}
	year := int(binary.BigEndian.Uint16(b[:2]))
	return time.Date(year, time.Month(b[2]), int(b[3]), int(b[4]), int(b[5]), int(b[6]), int(b[7])*int(100*time.Millisecond), loc), true
}
