package bitflyer

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Method is the HTTP verb of an API call.
type Method string

const (
	MethodGet  Method = "GET"
	MethodPost Method = "POST"
)

// Params carries endpoint parameters. Keys are unordered.
type Params map[string]any

// Credentials is an API key pair.
type Credentials struct {
	Key    string
	Secret string
}

// Complete reports whether both halves of the pair are set.
func (c Credentials) Complete() bool {
	return c.Key != "" && c.Secret != ""
}

// Request describes one API call.
type Request struct {
	Path    string
	Method  Method
	Params  Params
	Private bool
}

func (r Request) validate() error {
	if !strings.HasPrefix(r.Path, "/") {
		return fmt.Errorf("%w: path %q must start with /", ErrInvalidRequest, r.Path)
	}
	switch r.Method {
	case MethodGet, MethodPost:
		return nil
	default:
		return fmt.Errorf("%w: unsupported method %q", ErrInvalidRequest, r.Method)
	}
}

// encodeBody returns the string that is both signed and sent. For POST it is
// the JSON body; for GET it is the query suffix ("?k=v") or empty.
func encodeBody(method Method, params Params) (string, error) {
	if method == MethodPost {
		if params == nil {
			params = Params{}
		}
		raw, err := json.Marshal(params)
		if err != nil {
			return "", fmt.Errorf("%w: encode params: %v", ErrInvalidRequest, err)
		}
		return string(raw), nil
	}
	if q := encodeQuery(params); q != "" {
		return "?" + q, nil
	}
	return "", nil
}

// encodeQuery url-encodes params with keys in sorted order.
func encodeQuery(params Params) string {
	if len(params) == 0 {
		return ""
	}
	values := make(url.Values, len(params))
	for k, v := range params {
		values.Set(k, queryValue(v))
	}
	return values.Encode()
}

// queryValue stringifies a parameter. Floats never use exponent notation so
// ids and sizes decoded from JSON keep their digits.
func queryValue(v any) string {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	default:
		return fmt.Sprint(v)
	}
}
