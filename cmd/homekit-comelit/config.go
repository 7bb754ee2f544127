package main

import (
	"fmt"
	"strings"
	"time"
)

type entryType string

const (
	typeBridge entryType = "bridge"
	typeVedo   entryType = "vedo"
)

type Config struct {
	Type      entryType     `env:"TYPE"      envDefault:"bridge"`
	Host      string        `env:"HOST,notEmpty"`
	Port      string        `env:"PORT"      envDefault:"80"`
	VedoPort  string        `env:"VEDO_PORT" envDefault:"8080"`
	VedoPIN   string        `env:"VEDO_PIN"`
	EntryID   string        `env:"ENTRY_ID"`
	Interval  time.Duration `env:"INTERVAL"  envDefault:"5s"`
	Address   string        `env:"LISTEN"    envDefault:":9009"`
	DB        string        `env:"DB"        envDefault:"./db"`
	ZoneNames []string      `env:"ZONE_NAMES"`
}

func (c Config) validate() error {
	switch c.Type {
	case typeBridge, "":
	case typeVedo:
		if c.VedoPIN == "" {
			return fmt.Errorf("VEDO_PIN is required for type %q", typeVedo)
		}
	default:
		return fmt.Errorf("invalid TYPE %q, must be %q or %q", c.Type, typeBridge, typeVedo)
	}
	return nil
}

// kind defaults to a serial bridge when TYPE is empty.
func (c Config) kind() entryType {
	if c.Type == "" {
		return typeBridge
	}
	return c.Type
}

// vedoPort is the port serving the alarm API: the bridge proxies it on its
// own port, standalone systems have a dedicated one.
func (c Config) vedoPort() string {
	if c.kind() == typeBridge {
		return c.Port
	}
	return c.VedoPort
}

// entryID is the base of every unique id. Comelit devices expose no serial
// or mac through the API, so it falls back to the panel address.
func (c Config) entryID() string {
	if c.EntryID != "" {
		return c.EntryID
	}
	return strings.NewReplacer(".", "_", ":", "_").Replace(c.Host + ":" + c.vedoPort())
}

// zoneName overrides the name a panel reports for zone index n.
func (c Config) zoneName(n int, fallback string) string {
	names := c.ZoneNames
	if len(names) > n {
		if name := strings.TrimSpace(names[n]); name != "" {
			return name
		}
	}
	return fallback
}
