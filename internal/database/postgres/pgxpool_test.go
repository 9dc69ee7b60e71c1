package postgres

import (
	"testing"
	"time"

	"skill-swap/internal/config"
)

func TestPoolConfig(t *testing.T) {
	cfg := config.DatabaseConfig{
		DBHost:              "db.local",
		DBPort:              "5433",
		DBName:              "skillswap",
		DBUser:              "app",
		DBPassword:          "p@ss word",
		DBSSLMode:           "disable",
		ConnectTimeout:      3 * time.Second,
		PoolMaxConns:        12,
		PoolMaxConnIdleTime: time.Minute,
	}

	pcfg, err := PoolConfig(cfg, "skill-swap")
	if err != nil {
		t.Fatalf("pool config: %v", err)
	}
	cc := pcfg.ConnConfig
	if cc.Host != "db.local" || cc.Port != 5433 || cc.Database != "skillswap" || cc.User != "app" {
		t.Fatalf("unexpected connection target: %s:%d/%s as %s", cc.Host, cc.Port, cc.Database, cc.User)
	}
	if cc.Password != "p@ss word" {
		t.Fatalf("password not carried verbatim: %q", cc.Password)
	}
	if cc.ConnectTimeout != 3*time.Second || pcfg.MaxConns != 12 || pcfg.MaxConnIdleTime != time.Minute {
		t.Fatalf("pool overrides not applied: %+v", pcfg)
	}
	if cc.RuntimeParams["application_name"] != "skill-swap" {
		t.Fatalf("application_name = %q", cc.RuntimeParams["application_name"])
	}
}
