package genieacs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/frans1705/genieacs-mikrotik/internal/apperr"
	"github.com/frans1705/genieacs-mikrotik/internal/logger"
)

const DefaultTimeout = 10 * time.Second

type Config struct {
	URL      string
	Username string
	Password string
	Timeout  time.Duration
}

type Client struct {
	baseURL  string
	username string
	password string
	http     *http.Client
	log      zerolog.Logger

	// OnRequest, when set, observes every backend call (metrics hook).
	OnRequest func(op string, err error)
}

type TaskResult struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type task struct {
	Name            string           `json:"name"`
	ParameterValues []ParameterValue `json:"parameterValues,omitempty"`
}

func NewClient(c Config) *Client {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return &Client{
		baseURL:  strings.TrimSuffix(c.URL, "/"),
		username: c.Username,
		password: c.Password,
		http:     &http.Client{Timeout: c.Timeout},
		log:      logger.ComponentLogger("genieacs"),
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) observe(op string, err error) {
	if c.OnRequest != nil {
		c.OnRequest(op, err)
	}
}

func (c *Client) do(ctx context.Context, method, rawURL string, body any, out any) ([]byte, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, rd)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("genieacs returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
	}
	return data, nil
}

func (c *Client) GetAllDevices(ctx context.Context) ([]Device, error) {
	var devices []Device
	_, err := c.do(ctx, http.MethodGet, c.baseURL+"/devices", nil, &devices)
	c.observe("get_all_devices", err)
	if err != nil {
		c.log.Error().Err(err).Msg("error getting all devices")
		return nil, apperr.NewGatewayError("get all devices", err)
	}
	return devices, nil
}

func (c *Client) GetDeviceByID(ctx context.Context, id string) (Device, error) {
	query, _ := json.Marshal(map[string]string{"_id": id})
	u := c.baseURL + "/devices/?" + url.Values{"query": {string(query)}}.Encode()

	var devices []Device
	_, err := c.do(ctx, http.MethodGet, u, nil, &devices)
	if err == nil && len(devices) == 0 {
		err = apperr.NewNotFoundError("device not found: " + id)
	}
	c.observe("get_device", err)
	if err != nil {
		c.log.Error().Err(err).Str("device_id", id).Msg("error getting device")
		return nil, apperr.NewGatewayError("get device "+id, err)
	}
	return devices[0], nil
}

// FindDeviceByPhoneNumber returns the first device whose tag matches the
// number, or nil. Backend failures are logged and reported as nil.
func (c *Client) FindDeviceByPhoneNumber(ctx context.Context, number string) Device {
	devices, err := c.GetAllDevices(ctx)
	if err != nil {
		c.log.Error().Err(err).Str("phone", number).Msg("error finding device by phone number")
		return nil
	}
	for _, d := range devices {
		for _, tag := range d.Tags() {
			if PhoneMatches(number, tag) {
				return d
			}
		}
	}
	return nil
}

func (c *Client) SetParameterValues(ctx context.Context, id string, params map[string]string) (*TaskResult, error) {
	return c.postTask(ctx, id, task{Name: "setParameterValues", ParameterValues: ExpandParameters(params)}, "")
}

func (c *Client) SetWiFi(ctx context.Context, id string, change WiFiChange) (*TaskResult, error) {
	if change.Empty() {
		return nil, apperr.NewValidationError("wifi change has no fields", nil)
	}
	return c.postTask(ctx, id, task{Name: "setParameterValues", ParameterValues: change.parameterValues()}, "")
}

func (c *Client) RestartDevice(ctx context.Context, id string) (*TaskResult, error) {
	return c.postTask(ctx, id, task{Name: "reboot"}, "Device restart initiated")
}

func (c *Client) FactoryResetDevice(ctx context.Context, id string) (*TaskResult, error) {
	return c.postTask(ctx, id, task{Name: "factoryReset"}, "Device factory reset initiated")
}

func (c *Client) postTask(ctx context.Context, id string, t task, msg string) (*TaskResult, error) {
	u := c.baseURL + "/devices/" + url.PathEscape(id) + "/tasks?connection_request"

	data, err := c.do(ctx, http.MethodPost, u, t, nil)
	c.observe(t.Name, err)
	if err != nil {
		c.log.Error().Err(err).Str("device_id", id).Str("task", t.Name).Msg("task failed")
		return nil, apperr.NewGatewayError(t.Name+" "+id, err)
	}

	res := &TaskResult{Success: true, Message: msg}
	if json.Valid(data) {
		res.Data = data
	}
	return res, nil
}
