package optical

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/gosnmp/gosnmp"

	"github.com/frans1705/genieacs-mikrotik/internal/apperr"
	"github.com/frans1705/genieacs-mikrotik/internal/cfg"
	"github.com/frans1705/genieacs-mikrotik/internal/snmp"
)

type SNMPGetter interface {
	Get(oids ...string) (map[string]gosnmp.SnmpPDU, error)
	Close() error
}

type OnuPower struct {
	Olt        string  `json:"olt"`
	Board      int     `json:"board"`
	Pon        int     `json:"pon"`
	OnuID      uint32  `json:"onu_id"`
	Name       string  `json:"name"`
	Serial     string  `json:"serial_number,omitempty"`
	Status     string  `json:"status"`
	RxPower    float64 `json:"rx_power"`
	Level      Level   `json:"level"`
	LastOnline string  `json:"last_online,omitempty"`
}

// Probe reads ONU optical levels from an OLT over SNMP.
type Probe struct {
	Loader   *cfg.OltLoader
	Warning  float64
	Critical float64
	Dial     func(context.Context, cfg.SNMPConfig) (SNMPGetter, error)
}

func NewProbe(loader *cfg.OltLoader, warning, critical float64) *Probe {
	return &Probe{
		Loader:   loader,
		Warning:  warning,
		Critical: critical,
		Dial: func(ctx context.Context, c cfg.SNMPConfig) (SNMPGetter, error) {
			return snmp.Dial(ctx, c)
		},
	}
}

// OnuPower reads one ONU's RX level. An ONU without optical signal is
// reported as not found, with its state in the message.
func (p *Probe) OnuPower(ctx context.Context, name string, slot, ponID int, onuID uint32) (*OnuPower, error) {
	conf := p.Loader.Get()
	if conf == nil {
		return nil, apperr.NewNotFoundError("OLT config not loaded")
	}
	olt, ok := conf.ResolveOlt(name)
	if !ok {
		return nil, apperr.NewNotFoundError("OLT not found: " + name)
	}
	pon, ok := olt.FindPon(slot, ponID)
	if !ok || !pon.Enabled {
		return nil, apperr.NewNotFoundError("PON not found or disabled")
	}

	cl, err := p.Dial(ctx, olt.SNMP)
	if err != nil {
		return nil, err
	}
	defer cl.Close()

	base := olt.BaseOIDs.OID1082
	ifIndex := uint32(pon.IfIndex1082)
	oid := func(rel string, extra ...uint32) string {
		return snmp.NormOID(snmp.JoinIndexes(snmp.JoinBaseRel(base, rel), append([]uint32{ifIndex, onuID}, extra...)...))
	}

	oidName := oid(olt.OnuOIDs.OnuIDName)
	oidSerial := oid(olt.OnuOIDs.OnuSerialNumber)
	oidStatus := oid(olt.OnuOIDs.OnuStatusID)
	oidRx := oid(olt.OnuOIDs.OnuRxPower, 1)
	oids := []string{oidName, oidRx}
	if olt.OnuOIDs.OnuSerialNumber != "" {
		oids = append(oids, oidSerial)
	}
	if olt.OnuOIDs.OnuStatusID != "" {
		oids = append(oids, oidStatus)
	}
	oidLastOn := ""
	if olt.OnuOIDs.OnuLastOnlineTime != "" {
		oidLastOn = oid(olt.OnuOIDs.OnuLastOnlineTime)
		oids = append(oids, oidLastOn)
	}

	got, err := cl.Get(oids...)
	if err != nil {
		return nil, apperr.NewGatewayError("snmp get "+olt.SNMP.Host, err)
	}

	rxPDU, ok := got[oidRx]
	if !ok {
		return nil, apperr.NewNotFoundError(fmt.Sprintf("ONU %d:%d not found", ponID, onuID))
	}
	state := onuState(got[oidStatus])
	dbm, hasSignal, ok := rxDbm(rxPDU)
	if !ok {
		return nil, apperr.NewGatewayError("unexpected rx value", fmt.Errorf("pdu type %v", rxPDU.Type))
	}
	if !hasSignal {
		return nil, apperr.NewNotFoundError(fmt.Sprintf("ONU %d:%d has no optical signal (%s)", ponID, onuID, state))
	}
	dbm = math.Round(dbm*100) / 100

	out := &OnuPower{
		Olt:     olt.Name,
		Board:   slot,
		Pon:     ponID,
		OnuID:   onuID,
		Name:    fmt.Sprintf("ONU-%d:%d", ponID, onuID),
		Serial:  onuSerial(got[oidSerial]),
		Status:  state.String(),
		RxPower: dbm,
		Level:   Classify(dbm, p.Warning, p.Critical),
	}
	if s := pduText(got[oidName]); s != "" {
		out.Name = s
	}
	if b, isBytes := got[oidLastOn].Value.([]byte); isBytes {
		if t, ok := snmpDateTime(b); ok {
			out.LastOnline = t.Format(time.DateTime)
		}
	}
	return out, nil
}
