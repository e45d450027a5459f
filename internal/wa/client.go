package wa

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	"google.golang.org/protobuf/proto"

	"github.com/frans1705/genieacs-mikrotik/internal/apperr"
	"github.com/frans1705/genieacs-mikrotik/internal/logger"
)

// Handler answers one inbound text; an empty reply sends nothing.
type Handler func(ctx context.Context, from, text string) string

type Options struct {
	SessionPath    string
	QRPath         string
	RestartOnError bool
	ReconnectDelay time.Duration
	MaxRetries     int
}

// Client owns the WhatsApp session. Only it mutates the StatusHolder.
type Client struct {
	opts   Options
	status *StatusHolder
	log    zerolog.Logger

	mu          sync.Mutex
	ctx         context.Context
	container   *sqlstore.Container
	cli         *whatsmeow.Client
	handler     Handler
	onConnected []func()
}

func NewClient(opts Options, status *StatusHolder) *Client {
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = 5 * time.Second
	}
	return &Client{
		opts:   opts,
		status: status,
		log:    logger.ComponentLogger("whatsapp"),
	}
}

func (c *Client) Status() *StatusHolder { return c.status }

func (c *Client) QRPath() string { return c.opts.QRPath }

func (c *Client) SetHandler(h Handler) {
	c.mu.Lock()
	c.handler = h
	c.mu.Unlock()
}

// OnConnected registers fn to run after every successful login.
func (c *Client) OnConnected(fn func()) {
	c.mu.Lock()
	c.onConnected = append(c.onConnected, fn)
	c.mu.Unlock()
}

/*
====================================================
LIFECYCLE
====================================================
*/

func (c *Client) Start(ctx context.Context) error {
	c.mu.Lock()
	c.ctx = ctx
	c.mu.Unlock()

	if err := c.open(ctx); err != nil {
		c.status.setState(StateError)
		return apperr.NewCollaboratorError("whatsapp session store", err)
	}
	go func() {
		<-ctx.Done()
		if cli := c.client(); cli != nil {
			cli.Disconnect()
		}
	}()
	return c.connect(ctx)
}

func (c *Client) open(ctx context.Context) error {
	if err := os.MkdirAll(c.opts.SessionPath, 0o755); err != nil {
		return err
	}
	dsn := "file:" + strings.TrimSuffix(c.opts.SessionPath, "/") + "/session.db?_foreign_keys=on"
	container, err := sqlstore.New(ctx, "sqlite3", dsn, newWALogger(c.log.With().Str("module", "store").Logger()))
	if err != nil {
		return err
	}
	device, err := container.GetFirstDevice(ctx)
	if err != nil {
		return err
	}

	cli := whatsmeow.NewClient(device, newWALogger(c.log))
	cli.EnableAutoReconnect = false
	cli.AddEventHandler(c.handleEvent)

	c.mu.Lock()
	c.container = container
	c.cli = cli
	c.mu.Unlock()
	return nil
}

func (c *Client) client() *whatsmeow.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cli
}

func (c *Client) connect(ctx context.Context) error {
	cli := c.client()
	c.status.setState(StateConnecting)

	if cli.Store.ID == nil {
		qrChan, err := cli.GetQRChannel(ctx)
		if err != nil {
			c.status.setState(StateError)
			return apperr.NewCollaboratorError("whatsapp qr channel", err)
		}
		go c.consumeQR(qrChan)
	}

	attempts := 1
	if c.opts.RestartOnError {
		attempts += c.opts.MaxRetries
	}
	var err error
	for i := 0; i < attempts; i++ {
		if err = cli.Connect(); err == nil {
			return nil
		}
		c.log.Warn().Err(err).Int("attempt", i+1).Int("max", attempts).Msg("connect failed")
		if i == attempts-1 {
			break
		}
		select {
		case <-time.After(c.opts.ReconnectDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	c.status.setState(StateError)
	return apperr.NewCollaboratorError("whatsapp connect", err)
}

func (c *Client) consumeQR(ch <-chan whatsmeow.QRChannelItem) {
	for evt := range ch {
		switch evt.Event {
		case "code":
			if err := RenderQR(evt.Code, c.opts.QRPath, os.Stdout); err != nil {
				c.log.Error().Err(err).Msg("render qr failed")
			}
			c.status.setState(StateQRPending)
			c.log.Info().Str("file", c.opts.QRPath).Msg("scan QR code to pair")
		case "success":
			c.removeQR()
			return
		case "timeout":
			c.log.Warn().Msg("qr pairing timed out")
			c.status.setState(StateDisconnected)
		default:
			if evt.Error != nil {
				c.log.Error().Err(evt.Error).Str("event", evt.Event).Msg("qr pairing failed")
				c.status.setState(StateError)
			}
		}
	}
}

func (c *Client) removeQR() {
	if err := os.Remove(c.opts.QRPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		c.log.Warn().Err(err).Msg("remove qr file")
	}
}

func (c *Client) rootContext() context.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ctx == nil {
		return context.Background()
	}
	return c.ctx
}

/*
====================================================
EVENTS
====================================================
*/

func (c *Client) handleEvent(evt interface{}) {
	switch v := evt.(type) {
	case *events.Connected:
		phone := ""
		if cli := c.client(); cli != nil && cli.Store.ID != nil {
			phone = cli.Store.ID.User
		}
		c.status.setConnected(phone, time.Now())
		c.removeQR()
		c.log.Info().Str("phone", phone).Msg("connected")

		c.mu.Lock()
		hooks := append([]func(){}, c.onConnected...)
		c.mu.Unlock()
		for _, fn := range hooks {
			fn()
		}

	case *events.Disconnected:
		c.status.setState(StateDisconnected)
		c.log.Warn().Msg("disconnected")
		if c.opts.RestartOnError {
			go c.reconnect()
		}

	case *events.LoggedOut:
		c.log.Warn().Str("reason", v.Reason.String()).Msg("logged out")
		c.status.setState(StateDisconnected)
		if err := c.clearSession(c.rootContext()); err != nil {
			c.log.Error().Err(err).Msg("clear session failed")
		}

	case *events.Message:
		if v.Info.IsFromMe || v.Info.IsGroup {
			return
		}
		text := v.Message.GetConversation()
		if text == "" {
			text = v.Message.GetExtendedTextMessage().GetText()
		}
		if strings.TrimSpace(text) == "" {
			return
		}
		var resolve lidResolver
		if cli := c.client(); cli != nil && cli.Store.LIDs != nil {
			resolve = cli.Store.LIDs.GetPNForLID
		}
		from := senderPhone(c.rootContext(), v.Info.MessageSource, resolve)
		if from == "" {
			c.log.Debug().Str("sender", v.Info.Sender.String()).Msg("no phone number for sender, ignored")
			return
		}
		go c.dispatch(v.Info.Chat, from, text)
	}
}

func (c *Client) reconnect() {
	ctx := c.rootContext()
	if ctx.Err() != nil {
		return
	}
	if err := c.connect(ctx); err != nil {
		c.log.Error().Err(err).Msg("reconnect gave up")
	}
}

func (c *Client) dispatch(chat types.JID, from, text string) {
	c.mu.Lock()
	h := c.handler
	c.mu.Unlock()
	if h == nil {
		return
	}

	ctx, cancel := context.WithTimeout(c.rootContext(), 30*time.Second)
	defer cancel()

	reply := h(ctx, from, text)
	if reply == "" {
		return
	}
	if err := c.send(ctx, chat, reply); err != nil {
		c.log.Error().Err(err).Str("to", chat.String()).Msg("reply failed")
	}
}

/*
====================================================
MESSENGER
====================================================
*/

// SendText sends a plain text message to a phone number.
func (c *Client) SendText(ctx context.Context, number, text string) error {
	return c.send(ctx, JID(number), text)
}

func (c *Client) send(ctx context.Context, to types.JID, text string) error {
	cli := c.client()
	if cli == nil || !cli.IsConnected() {
		return apperr.NewCollaboratorError("whatsapp not connected", nil)
	}
	msg := &waE2E.Message{Conversation: proto.String(text)}
	if _, err := cli.SendMessage(ctx, to, msg); err != nil {
		return apperr.NewCollaboratorError("whatsapp send", err)
	}
	return nil
}

/*
====================================================
ADMIN ACTIONS
====================================================
*/

// RefreshQR drops the current connection attempt and starts a new pairing.
func (c *Client) RefreshQR(ctx context.Context) error {
	cli := c.client()
	if cli == nil {
		return apperr.NewCollaboratorError("whatsapp client not started", nil)
	}
	if cli.IsLoggedIn() {
		return apperr.NewValidationError("whatsapp already connected", nil)
	}
	cli.Disconnect()
	c.removeQR()
	go func() {
		if err := c.connect(c.rootContext()); err != nil {
			c.log.Error().Err(err).Msg("refresh qr failed")
		}
	}()
	return nil
}

// DeleteSession logs out, removes the stored device and starts pairing again.
func (c *Client) DeleteSession(ctx context.Context) error {
	if c.client() == nil {
		return apperr.NewCollaboratorError("whatsapp client not started", nil)
	}
	if err := c.clearSession(ctx); err != nil {
		return apperr.NewCollaboratorError("whatsapp delete session", err)
	}
	go func() {
		if err := c.connect(c.rootContext()); err != nil {
			c.log.Error().Err(err).Msg("re-pair after delete failed")
		}
	}()
	return nil
}

func (c *Client) clearSession(ctx context.Context) error {
	c.mu.Lock()
	cli := c.cli
	container := c.container
	c.mu.Unlock()

	cli.Disconnect()
	if cli.Store.ID != nil {
		if err := cli.Store.Delete(ctx); err != nil {
			return err
		}
	}
	c.removeQR()

	device := container.NewDevice()
	fresh := whatsmeow.NewClient(device, newWALogger(c.log))
	fresh.EnableAutoReconnect = false
	fresh.AddEventHandler(c.handleEvent)

	c.mu.Lock()
	c.cli = fresh
	c.mu.Unlock()

	c.status.setState(StateDisconnected)
	c.log.Info().Msg("session deleted")
	return nil
}
