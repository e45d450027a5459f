package genieacs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frans1705/genieacs-mikrotik/internal/apperr"
)

type fakeACS struct {
	mu      sync.Mutex
	devices []Device
	tasks   map[string][]map[string]any
	status  int
	lastURL string
}

func newFakeACS(t *testing.T, devices ...Device) (*fakeACS, *Client) {
	t.Helper()
	f := &fakeACS{devices: devices, tasks: map[string][]map[string]any{}}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.lastURL = r.URL.String()

		user, pass, ok := r.BasicAuth()
		if !ok || user != "acs" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if f.status != 0 {
			w.WriteHeader(f.status)
			return
		}

		switch {
		case r.Method == http.MethodGet && (r.URL.Path == "/devices" || r.URL.Path == "/devices/"):
			out := f.devices
			if q := r.URL.Query().Get("query"); q != "" {
				var filter map[string]string
				assert.NoError(t, json.Unmarshal([]byte(q), &filter))
				out = nil
				for _, d := range f.devices {
					if d.ID() == filter["_id"] {
						out = append(out, d)
					}
				}
			}
			if out == nil {
				out = []Device{}
			}
			_ = json.NewEncoder(w).Encode(out)
		case r.Method == http.MethodPost:
			_, hasCR := r.URL.Query()["connection_request"]
			assert.True(t, hasCR, "task must request a connection")
			var body map[string]any
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			f.tasks[r.URL.Path] = append(f.tasks[r.URL.Path], body)
			_, _ = w.Write([]byte(`{"_id":"task-1"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	return f, NewClient(Config{URL: srv.URL + "/", Username: "acs", Password: "secret"})
}

func TestGetAllDevices(t *testing.T) {
	_, c := newFakeACS(t, Device{"_id": "A"}, Device{"_id": "B"})

	devices, err := c.GetAllDevices(context.Background())
	require.NoError(t, err)
	assert.Len(t, devices, 2)
}

func TestGetAllDevicesBackendError(t *testing.T) {
	f, c := newFakeACS(t)
	f.status = http.StatusInternalServerError

	var ops []string
	c.OnRequest = func(op string, err error) {
		ops = append(ops, op)
		assert.Error(t, err)
	}

	_, err := c.GetAllDevices(context.Background())
	assert.True(t, apperr.IsType(err, apperr.GatewayError))
	assert.Equal(t, []string{"get_all_devices"}, ops)
}

func TestGetAllDevicesTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(Config{URL: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := c.GetAllDevices(context.Background())
	assert.True(t, apperr.IsType(err, apperr.GatewayError))
}

func TestGetDeviceByID(t *testing.T) {
	f, c := newFakeACS(t, Device{"_id": "202BC1-BM632w-000001"}, Device{"_id": "other"})

	d, err := c.GetDeviceByID(context.Background(), "202BC1-BM632w-000001")
	require.NoError(t, err)
	assert.Equal(t, "202BC1-BM632w-000001", d.ID())
	assert.Contains(t, f.lastURL, "query=")

	_, err = c.GetDeviceByID(context.Background(), "missing")
	assert.True(t, apperr.IsType(err, apperr.NotFoundError))
}

func TestFindDeviceByPhoneNumber(t *testing.T) {
	_, c := newFakeACS(t,
		Device{"_id": "no-tags"},
		Device{"_id": "intl", "_tags": []any{"pelanggan", "62812345678"}},
	)
	ctx := context.Background()

	d := c.FindDeviceByPhoneNumber(ctx, "0812345678")
	require.NotNil(t, d)
	assert.Equal(t, "intl", d.ID())

	assert.Nil(t, c.FindDeviceByPhoneNumber(ctx, "0899999999"))
}

func TestFindDeviceByPhoneNumberShortTag(t *testing.T) {
	_, c := newFakeACS(t, Device{"_id": "short", "_tags": []any{"812345678"}})

	d := c.FindDeviceByPhoneNumber(context.Background(), "0812345678")
	require.NotNil(t, d)
	assert.Equal(t, "short", d.ID())
}

func TestFindDeviceByPhoneNumberSwallowsErrors(t *testing.T) {
	f, c := newFakeACS(t, Device{"_id": "x", "_tags": []any{"0812345678"}})
	f.status = http.StatusBadGateway

	assert.Nil(t, c.FindDeviceByPhoneNumber(context.Background(), "0812345678"))
}

func taskParams(t *testing.T, body map[string]any) map[string]string {
	t.Helper()
	out := map[string]string{}
	for _, raw := range body["parameterValues"].([]any) {
		triple := raw.([]any)
		require.Len(t, triple, 3)
		assert.Equal(t, "xsd:string", triple[2])
		out[triple[0].(string)] = triple[1].(string)
	}
	return out
}

func TestSetParameterValuesSSID(t *testing.T) {
	f, c := newFakeACS(t)
	ctx := context.Background()

	_, err := c.SetParameterValues(ctx, "dev 1", map[string]string{"InternetGatewayDevice.LANDevice.1.WLANConfiguration.1.SSID": "Home-5G"})
	require.NoError(t, err)
	_, err = c.SetParameterValues(ctx, "dev 1", map[string]string{"Device.WiFi.SSID.1.SSID": "Home"})
	require.NoError(t, err)

	tasks := f.tasks["/devices/dev 1/tasks"]
	require.Len(t, tasks, 2)
	assert.Equal(t, "setParameterValues", tasks[0]["name"])

	assert.Equal(t, map[string]string{
		"InternetGatewayDevice.LANDevice.1.WLANConfiguration.5.SSID": "Home-5G",
		"Device.WiFi.SSID.5.SSID": "Home-5G",
	}, taskParams(t, tasks[0]))
	assert.Equal(t, map[string]string{
		"InternetGatewayDevice.LANDevice.1.WLANConfiguration.1.SSID": "Home",
		"Device.WiFi.SSID.1.SSID": "Home",
	}, taskParams(t, tasks[1]))
}

func TestSetParameterValuesPasswordAndPlain(t *testing.T) {
	f, c := newFakeACS(t)

	res, err := c.SetParameterValues(context.Background(), "D1", map[string]string{
		"WiFi.Password": "rahasia123",
		"InternetGatewayDevice.ManagementServer.PeriodicInformInterval": "300",
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.JSONEq(t, `{"_id":"task-1"}`, string(res.Data))

	params := taskParams(t, f.tasks["/devices/D1/tasks"][0])
	assert.Len(t, params, 7)
	assert.Equal(t, "300", params["InternetGatewayDevice.ManagementServer.PeriodicInformInterval"])
}

func TestSetWiFi(t *testing.T) {
	f, c := newFakeACS(t)

	_, err := c.SetWiFi(context.Background(), "D1", WiFiChange{SSID5: "Rumah", Passphrase: "rahasia123"})
	require.NoError(t, err)

	params := taskParams(t, f.tasks["/devices/D1/tasks"][0])
	assert.Len(t, params, 8)
	assert.Equal(t, "Rumah", params["Device.WiFi.SSID.5.SSID"])

	_, err = c.SetWiFi(context.Background(), "D1", WiFiChange{})
	assert.True(t, apperr.IsType(err, apperr.ValidationError))
}

func TestRestartAndFactoryReset(t *testing.T) {
	f, c := newFakeACS(t)
	ctx := context.Background()

	res, err := c.RestartDevice(ctx, "D1")
	require.NoError(t, err)
	assert.Equal(t, "Device restart initiated", res.Message)

	res, err = c.FactoryResetDevice(ctx, "D1")
	require.NoError(t, err)
	assert.Equal(t, "Device factory reset initiated", res.Message)

	tasks := f.tasks["/devices/D1/tasks"]
	require.Len(t, tasks, 2)
	assert.Equal(t, map[string]any{"name": "reboot"}, tasks[0])
	assert.Equal(t, map[string]any{"name": "factoryReset"}, tasks[1])
}

func TestTaskBackendError(t *testing.T) {
	f, c := newFakeACS(t)
	f.status = http.StatusServiceUnavailable

	_, err := c.RestartDevice(context.Background(), "D1")
	assert.True(t, apperr.IsType(err, apperr.GatewayError))
	assert.Contains(t, err.Error(), "503")
}
