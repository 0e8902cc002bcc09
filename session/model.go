package session

import (
	"fmt"
	"strings"
)

type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display-name"`
	Email       string `json:"email"`
}

// Capabilities is the capability tree reported by the server, keyed by app.
type Capabilities map[string]interface{}

func (c Capabilities) Lookup(keys ...string) (interface{}, bool) {
	var cur interface{} = map[string]interface{}(c)
	for _, k := range keys {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = m[k]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func (c Capabilities) String(keys ...string) string {
	v, ok := c.Lookup(keys...)
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// Bool reads a flag. XML servers send flags as text, so "true"/"1" count as
// set and "false"/"0"/"" as unset.
func (c Capabilities) Bool(keys ...string) bool {
	v, ok := c.Lookup(keys...)
	if !ok {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "1":
			return true
		}
	}
	return false
}
