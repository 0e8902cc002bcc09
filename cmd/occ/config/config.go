package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// levels accepted by logger.Init
var supportedLogLevels = map[string]struct{}{
	"panic": {},
	"fatal": {},
	"warn":  {},
	"info":  {},
	"debug": {},
}

type Config struct {
	Server     string `json:"server"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	Token      string `json:"token"`
	Thread     int    `json:"thread"`
	LogLevel   string `json:"log_level"`
	Timeout    int64  `json:"timeout"`
	MaxRetries int    `json:"max_retries"`
}

func Parse(f string) (*Config, error) {
	raw, err := os.ReadFile(f)
	if err != nil {
		return nil, fmt.Errorf("read file:%w", err)
	}
	c := &Config{
		Thread:     1,
		LogLevel:   "debug",
		Timeout:    600,
		MaxRetries: 3,
	}
	if err := json.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("unmarshal file:%w", err)
	}
	if len(c.Server) == 0 {
		return nil, fmt.Errorf("no server found in config")
	}
	if _, ok := supportedLogLevels[c.LogLevel]; !ok {
		return nil, fmt.Errorf("unsupported log_level:%s", c.LogLevel)
	}
	return c, nil
}
