package aimcache

import (
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment variables consulted when a Config field is left empty.
const (
	EnvHost     = "cacheHost"
	EnvPort     = "cachePort"
	EnvPassword = "cachePassword"
	EnvCluster  = "cacheCluster"
)

// Config describes how Run connects to the backend. It is a plain value:
// each cache keeps its own resolved copy and nothing is shared between
// instances.
type Config struct {
	// Host is a hostname, or a comma-separated list of host[:port] seeds
	// when Cluster is set.
	Host     string
	Port     int
	Password string
	Cluster  bool

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Resolve fills every empty field from the environment, then from built-in
// defaults. lookup is usually os.LookupEnv; nil means os.LookupEnv.
// Unparsable environment values are ignored.
func (c Config) Resolve(lookup func(string) (string, bool)) Config {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	env := func(name string) string {
		v, ok := lookup(name)
		if !ok {
			return ""
		}
		return strings.TrimSpace(v)
	}

	if c.Host == "" {
		c.Host = env(EnvHost)
	}
	if c.Port == 0 {
		if p, err := strconv.Atoi(env(EnvPort)); err == nil && p > 0 && p <= 65535 {
			c.Port = p
		}
	}
	if c.Password == "" {
		c.Password = env(EnvPassword)
	}
	if !c.Cluster {
		c.Cluster = truthy(env(EnvCluster))
	}

	c.Host = coalesce(c.Host, DefaultHost)
	c.Port = coalesce(c.Port, DefaultPort)
	c.DialTimeout = coalesce(c.DialTimeout, defaultDialTimeout)
	c.ReadTimeout = coalesce(c.ReadTimeout, defaultReadTimeout)
	c.WriteTimeout = coalesce(c.WriteTimeout, defaultWriteTimeout)
	return c
}

// Addrs returns host:port pairs for the configured host(s). Entries without
// an explicit port use c.Port.
func (c Config) Addrs() []string {
	port := strconv.Itoa(coalesce(c.Port, DefaultPort))
	var out []string
	for _, h := range strings.Split(c.Host, ",") {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if _, _, err := net.SplitHostPort(h); err == nil {
			out = append(out, h)
			continue
		}
		out = append(out, net.JoinHostPort(h, port))
	}
	if len(out) == 0 {
		out = append(out, net.JoinHostPort(DefaultHost, port))
	}
	return out
}

func truthy(s string) bool {
	if s == "" {
		return false
	}
	b, err := strconv.ParseBool(s)
	return err == nil && b
}
