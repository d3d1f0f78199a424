package router

import (
	"net"
	"strconv"
)

type Config struct {
	Bind      string  `yaml:"bind"`
	Port      uint16  `yaml:"port"`
	RateLimit float64 `yaml:"rate_limit"`
}

// Address returns the host:port the server listens on.
func (c Config) Address() string {
	return net.JoinHostPort(c.Bind, strconv.Itoa(int(c.Port)))
}
