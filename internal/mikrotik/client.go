package mikrotik

import (
	"context"
	"net"
	"sort"
	"strconv"

	"github.com/go-routeros/routeros/v3"
	"github.com/rs/zerolog"

	"github.com/frans1705/genieacs-mikrotik/internal/apperr"
	"github.com/frans1705/genieacs-mikrotik/internal/logger"
)

const DefaultPort = 8728

type Config struct {
	Host     string
	Port     string
	User     string
	Password string
}

// Address is host:port with the API default port filled in.
func (c Config) Address() string {
	port := c.Port
	if _, err := strconv.Atoi(port); err != nil {
		port = strconv.Itoa(DefaultPort)
	}
	return net.JoinHostPort(c.Host, port)
}

type Session struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	CallerID string `json:"caller_id"`
	Uptime   string `json:"uptime"`
	Service  string `json:"service"`
}

type runner interface {
	Run(sentence ...string) (*routeros.Reply, error)
	Close() error
}

// Client opens one API connection per call; the router drops idle ones.
type Client struct {
	cfg  Config
	log  zerolog.Logger
	dial func(ctx context.Context, cfg Config) (runner, error)
}

func NewClient(c Config) *Client {
	return &Client{
		cfg: c,
		log: logger.ComponentLogger("mikrotik"),
		dial: func(ctx context.Context, c Config) (runner, error) {
			return routeros.DialContext(ctx, c.Address(), c.User, c.Password)
		},
	}
}

func (c *Client) Config() Config { return c.cfg }

func (c *Client) run(ctx context.Context, sentence ...string) ([]map[string]string, error) {
	conn, err := c.dial(ctx, c.cfg)
	if err != nil {
		return nil, apperr.NewGatewayError("mikrotik dial "+c.cfg.Address(), err)
	}
	defer conn.Close()

	reply, err := conn.Run(sentence...)
	if err != nil {
		c.log.Error().Err(err).Strs("cmd", sentence).Msg("command failed")
		return nil, apperr.NewGatewayError("mikrotik "+sentence[0], err)
	}
	out := make([]map[string]string, 0, len(reply.Re))
	for _, re := range reply.Re {
		out = append(out, re.Map)
	}
	return out, nil
}

// ActiveSessions lists /ppp/active, sorted by name.
func (c *Client) ActiveSessions(ctx context.Context) ([]Session, error) {
	rows, err := c.run(ctx, "/ppp/active/print")
	if err != nil {
		return nil, err
	}
	out := make([]Session, 0, len(rows))
	for _, m := range rows {
		out = append(out, Session{
			Name:     m["name"],
			Address:  m["address"],
			CallerID: m["caller-id"],
			Uptime:   m["uptime"],
			Service:  m["service"],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (c *Client) Identity(ctx context.Context) (string, error) {
	rows, err := c.run(ctx, "/system/identity/print")
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", nil
	}
	return rows[0]["name"], nil
}

// SecretsCount returns the number of configured PPP secrets.
func (c *Client) SecretsCount(ctx context.Context) (int, error) {
	rows, err := c.run(ctx, "/ppp/secret/print", "=.proplist=name")
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}
