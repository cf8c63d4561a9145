package main

import (
	"testing"

	"github.com/mypihq/webtools/internal/config"
)

func TestHTTPListenAddrFromConfig(t *testing.T) {
	cfg := config.Config{}
	cfg.Server.Addr = "127.0.0.1:9999"
	if got := httpListenAddr(cfg); got != "127.0.0.1:9999" {
		t.Fatalf("configured addr should win: %q", got)
	}

	cfg.Server.Addr = "  "
	if got := httpListenAddr(cfg); got != config.DefaultHTTPAddr {
		t.Fatalf("blank addr should fall back to default: %q", got)
	}
}

func TestServeCommandHTTPFlag(t *testing.T) {
	cmd := newServeCommand()
	flag := cmd.Flags().Lookup("http")
	if flag == nil {
		t.Fatalf("serve command should have an --http flag")
	}
	if flag.Value.Type() != "bool" {
		t.Fatalf("--http is a presence flag, got type %q", flag.Value.Type())
	}
	if flag.DefValue != "false" {
		t.Fatalf("stdio must stay the default transport, got %q", flag.DefValue)
	}
}
