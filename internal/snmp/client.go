package snmp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"

	"github.com/frans1705/genieacs-mikrotik/internal/apperr"
	"github.com/frans1705/genieacs-mikrotik/internal/cfg"
)

const (
	defaultPort    = 161
	defaultTimeout = 3 * time.Second
)

// Client is one SNMP session to an OLT, opened per probe.
type Client struct {
	g    *gosnmp.GoSNMP
	host string
}

// versionOf maps the profile's version string. Empty means v2c.
func versionOf(v string) (gosnmp.SnmpVersion, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(v)), "v") {
	case "", "2", "2c":
		return gosnmp.Version2c, nil
	case "1":
		return gosnmp.Version1, nil
	}
	return 0, fmt.Errorf("unsupported snmp version %q", v)
}

// Dial opens a session bound to ctx; cancelling ctx aborts in-flight requests.
func Dial(ctx context.Context, c cfg.SNMPConfig) (*Client, error) {
	version, err := versionOf(c.Version)
	if err != nil {
		return nil, apperr.NewConfigError("olt "+c.Host, err)
	}
	port := c.Port
	if port == 0 {
		port = defaultPort
	}
	timeout := defaultTimeout
	if c.TimeoutMS > 0 {
		timeout = time.Duration(c.TimeoutMS) * time.Millisecond
	}

	g := &gosnmp.GoSNMP{
		Context:   ctx,
		Target:    c.Host,
		Port:      uint16(port),
		Community: c.Community,
		Version:   version,
		Timeout:   timeout,
		Retries:   c.Retries,
	}
	if err := g.Connect(); err != nil {
		return nil, apperr.NewGatewayError("snmp connect "+c.Host, err)
	}
	return &Client{g: g, host: c.Host}, nil
}

func (c *Client) Close() error {
	return c.g.Conn.Close()
}

// Get returns PDUs keyed by normalized OID. Missing objects are left out.
func (c *Client) Get(oids ...string) (map[string]gosnmp.SnmpPDU, error) {
	pkt, err := c.g.Get(oids)
	if err != nil {
		return nil, err
	}
	out := make(map[string]gosnmp.SnmpPDU, len(pkt.Variables))
	for _, v := range pkt.Variables {
		switch v.Type {
		case gosnmp.NoSuchObject, gosnmp.NoSuchInstance, gosnmp.Null:
			continue
		}
		out[NormOID(v.Name)] = v
	}
	return out, nil
}
