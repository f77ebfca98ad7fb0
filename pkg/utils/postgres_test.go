package utils

import (
	"testing"
	"time"
)

func TestPostgresPoolConfig_Defaults(t *testing.T) {
	c := PostgresPoolConfig{}.withDefaults()
	if c.MaxOpenConns <= 0 || c.MaxIdleConns <= 0 {
		t.Fatalf("expected positive pool sizes: %+v", c)
	}
	if c.PingTimeout <= 0 {
		t.Fatalf("expected ping timeout default: %+v", c)
	}
}

func TestPostgresPoolConfig_KeepsExplicitValues(t *testing.T) {
	c := PostgresPoolConfig{MaxOpenConns: 3, PingTimeout: time.Second}.withDefaults()
	if c.MaxOpenConns != 3 {
		t.Fatalf("explicit MaxOpenConns overridden: %+v", c)
	}
	if c.PingTimeout != time.Second {
		t.Fatalf("explicit PingTimeout overridden: %+v", c)
	}
}
