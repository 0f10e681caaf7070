package redis

import (
	"testing"

	"planetwars-server/internal/shared/config"
)

func TestOptionsFromHostAndPort(t *testing.T) {
	opts, err := options(config.RedisConfig{Host: "cache", Port: "6380", Password: "secret", DB: 2})
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if opts.Addr != "cache:6380" || opts.Password != "secret" || opts.DB != 2 {
		t.Errorf("options = %+v", opts)
	}
}

func TestOptionsFromURL(t *testing.T) {
	opts, err := options(config.RedisConfig{URL: "redis://:pw@broker:6379/3", Host: "ignored"})
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if opts.Addr != "broker:6379" || opts.Password != "pw" || opts.DB != 3 {
		t.Errorf("options = %+v", opts)
	}

	if _, err := options(config.RedisConfig{URL: "http://nope"}); err == nil {
		t.Error("expected an error for a non redis URL")
	}
}

func TestNilClientClose(t *testing.T) {
	var c *Client
	if err := c.Close(); err != nil {
		t.Errorf("Close on nil client = %v", err)
	}
}
