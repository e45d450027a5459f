package cfg

import (
	"context"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/frans1705/genieacs-mikrotik/internal/logger"
)

/*
====================================================
OLT PROFILE (olt.yaml)
====================================================
*/

type OltConfig struct {
	Defaults OltDefaults `yaml:"defaults"`
	Olts     []OltItem   `yaml:"olts"`
}

type OltDefaults struct {
	Vendor   string   `yaml:"vendor"`
	Model    string   `yaml:"model"`
	BaseOIDs BaseOIDs `yaml:"base_oids"`
	OnuOIDs  OnuOIDs  `yaml:"onu_oids"`
	Boards   []Board  `yaml:"boards"`
}

type OltItem struct {
	Name string     `yaml:"name"`
	SNMP SNMPConfig `yaml:"snmp"`
}

// Olt is defaults merged with one list item.
type Olt struct {
	Name     string
	Vendor   string
	Model    string
	SNMP     SNMPConfig
	BaseOIDs BaseOIDs
	OnuOIDs  OnuOIDs
	Boards   []Board
}

type SNMPConfig struct {
	Version   string `yaml:"version"`
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Community string `yaml:"community"`
	TimeoutMS int    `yaml:"timeout_ms"`
	Retries   int    `yaml:"retries"`
}

type BaseOIDs struct {
	OID1082 string `yaml:"oid_1082"`
}

type OnuOIDs struct {
	OnuIDName         string `yaml:"onu_id_name"`
	OnuSerialNumber   string `yaml:"onu_serial_number"`
	OnuRxPower        string `yaml:"onu_rx_power"`
	OnuStatusID       string `yaml:"onu_status_id"`
	OnuLastOnlineTime string `yaml:"onu_last_online_time"`
}

type Board struct {
	Slot int    `yaml:"slot"`
	Type string `yaml:"type"`
	Pons []PON  `yaml:"pons"`
}

type PON struct {
	PonID       int  `yaml:"pon_id"`
	Enabled     bool `yaml:"enabled"`
	IfIndex1082 int  `yaml:"ifindex_1082"`
}

func (c *OltConfig) FindOltByName(name string) (*OltItem, bool) {
	if c == nil {
		return nil, false
	}
	for i := range c.Olts {
		if strings.EqualFold(c.Olts[i].Name, name) {
			return &c.Olts[i], true
		}
	}
	return nil, false
}

func (c *OltConfig) ResolveOlt(name string) (*Olt, bool) {
	item, ok := c.FindOltByName(name)
	if !ok {
		return nil, false
	}

	return &Olt{
		Name:     item.Name,
		Vendor:   c.Defaults.Vendor,
		Model:    c.Defaults.Model,
		SNMP:     item.SNMP,
		BaseOIDs: c.Defaults.BaseOIDs,
		OnuOIDs:  c.Defaults.OnuOIDs,
		Boards:   c.Defaults.Boards,
	}, true
}

func (o *Olt) FindPon(slot, ponID int) (PON, bool) {
	for _, b := range o.Boards {
		if b.Slot != slot {
			continue
		}
		for _, p := range b.Pons {
			if p.PonID == ponID {
				return p, true
			}
		}
	}
	return PON{}, false
}

/*
====================================================
OLT LOADER (hot reload)
====================================================
*/

type OltLoader struct {
	path string
	log  zerolog.Logger

	mu     sync.RWMutex
	config *OltConfig
}

func NewOltLoader(path string) (*OltLoader, error) {
	l := &OltLoader{path: path, log: logger.ComponentLogger("olt-config")}
	if err := l.load(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *OltLoader) load() error {
	b, err := os.ReadFile(l.path)
	if err != nil {
		return err
	}
	var c OltConfig
	if err := yaml.Unmarshal(b, &c); err != nil {
		return err
	}

	l.mu.Lock()
	l.config = &c
	l.mu.Unlock()
	return nil
}

func (l *OltLoader) Watch(ctx context.Context) error {
	return watchFile(ctx, l.path, l.log, func() {
		if err := l.load(); err != nil {
			l.log.Error().Err(err).Msg("reload failed")
		}
	})
}

func (l *OltLoader) Get() *OltConfig {
	if l == nil {
		return nil
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.config
}
