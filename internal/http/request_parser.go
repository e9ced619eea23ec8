package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// bodyParser reads a request body once and serves values from either JSON
// or form-encoded content, so handlers don't care which the client sent.
type bodyParser struct {
	body     []byte
	jsonData map[string]interface{}
	formData url.Values
	err      error
}

func parseBody(r *http.Request) *bodyParser {
	p := &bodyParser{}
	p.body, p.err = io.ReadAll(r.Body)
	if p.err != nil {
		return p
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return p
	}

	if p.body[0] == '{' {
		p.jsonData = make(map[string]interface{})
		p.err = json.Unmarshal(p.body, &p.jsonData)
		return p
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p
}

// Get returns a trimmed string value from the parsed body.
func (p *bodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return strings.TrimSpace(stringValue(val))
		}
	}
	if p.formData != nil {
		return strings.TrimSpace(p.formData.Get(key))
	}
	return ""
}

func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}
