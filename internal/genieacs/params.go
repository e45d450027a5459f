package genieacs

import (
	"encoding/json"
	"sort"
	"strings"
)

const xsdString = "xsd:string"

// ParameterValue is one [path, value, type] triple of a setParameterValues task.
type ParameterValue struct {
	Path  string
	Value string
	Type  string
}

func (p ParameterValue) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]string{p.Path, p.Value, p.Type})
}

func (p *ParameterValue) UnmarshalJSON(b []byte) error {
	var raw [3]string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	p.Path, p.Value, p.Type = raw[0], raw[1], raw[2]
	return nil
}

// ParamKind is the logical setting a requested path stands for.
type ParamKind int

const (
	ParamPlain ParamKind = iota
	ParamSSID24
	ParamSSID5
	ParamPassphrase
)

func (k ParamKind) String() string {
	switch k {
	case ParamSSID24:
		return "ssid_2g"
	case ParamSSID5:
		return "ssid_5g"
	case ParamPassphrase:
		return "passphrase"
	default:
		return "plain"
	}
}

const ssid5GSuffix = "-5G"

var kindPaths = map[ParamKind][]string{
	ParamSSID24: {
		"InternetGatewayDevice.LANDevice.1.WLANConfiguration.1.SSID",
		"Device.WiFi.SSID.1.SSID",
	},
	ParamSSID5: {
		"InternetGatewayDevice.LANDevice.1.WLANConfiguration.5.SSID",
		"Device.WiFi.SSID.5.SSID",
	},
	ParamPassphrase: {
		"InternetGatewayDevice.LANDevice.1.WLANConfiguration.1.PreSharedKey.1.KeyPassphrase",
		"InternetGatewayDevice.LANDevice.1.WLANConfiguration.1.KeyPassphrase",
		"InternetGatewayDevice.LANDevice.1.WLANConfiguration.1.PreSharedKey.1.PreSharedKey",
		"InternetGatewayDevice.LANDevice.1.WLANConfiguration.5.PreSharedKey.1.KeyPassphrase",
		"InternetGatewayDevice.LANDevice.1.WLANConfiguration.5.KeyPassphrase",
		"InternetGatewayDevice.LANDevice.1.WLANConfiguration.5.PreSharedKey.1.PreSharedKey",
	},
}

// Classify maps a raw data-model path (and its value) to a ParamKind.
// Used for path-keyed requests; callers that know their intent use WiFiChange.
func Classify(path, value string) ParamKind {
	switch {
	case strings.Contains(path, "SSID"):
		if strings.HasSuffix(value, ssid5GSuffix) {
			return ParamSSID5
		}
		return ParamSSID24
	case strings.Contains(path, "Password"), strings.Contains(path, "KeyPassphrase"):
		return ParamPassphrase
	default:
		return ParamPlain
	}
}

// Expand returns the concrete triples for one logical setting.
func Expand(kind ParamKind, path, value string) []ParameterValue {
	paths, ok := kindPaths[kind]
	if !ok {
		return []ParameterValue{{Path: path, Value: value, Type: xsdString}}
	}
	out := make([]ParameterValue, 0, len(paths))
	for _, p := range paths {
		out = append(out, ParameterValue{Path: p, Value: value, Type: xsdString})
	}
	return out
}

// ExpandParameters expands a path -> value request in sorted path order.
func ExpandParameters(params map[string]string) []ParameterValue {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []ParameterValue
	for _, path := range keys {
		value := params[path]
		out = append(out, Expand(Classify(path, value), path, value)...)
	}
	return out
}

// WiFiChange is an explicit Wi-Fi update. Empty fields are left untouched.
type WiFiChange struct {
	SSID24     string `json:"ssid"`
	SSID5      string `json:"ssid_5g"`
	Passphrase string `json:"password"`
}

func (w WiFiChange) Empty() bool {
	return w.SSID24 == "" && w.SSID5 == "" && w.Passphrase == ""
}

func (w WiFiChange) parameterValues() []ParameterValue {
	var out []ParameterValue
	if w.SSID24 != "" {
		out = append(out, Expand(ParamSSID24, "", w.SSID24)...)
	}
	if w.SSID5 != "" {
		out = append(out, Expand(ParamSSID5, "", w.SSID5)...)
	}
	if w.Passphrase != "" {
		out = append(out, Expand(ParamPassphrase, "", w.Passphrase)...)
	}
	return out
}
