package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"writegeist/internal/config"
	"writegeist/internal/daemon"
	"writegeist/internal/ingest"
	"writegeist/internal/testsupport"
)

// scriptedCompleter stands in for the llm client in CLI tests.
type scriptedCompleter struct {
	available bool
	respond   func(prompt string) (string, error)
}

func (s *scriptedCompleter) Available() bool { return s.available }

func (s *scriptedCompleter) CompleteJSON(_ context.Context, _, user string) (string, error) {
	if s.respond == nil {
		return "", errors.New("no response scripted")
	}
	return s.respond(user)
}

type cliTestEnv struct {
	cfg        *config.Config
	daemon     *daemon.Daemon
	addr       string
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	return setupCLITestEnvWith(t, &scriptedCompleter{})
}

func setupCLITestEnvWith(t *testing.T, completer ingest.Completer) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	configPath := filepath.Join(homeDir, ".config", "writegeist", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	content := fmt.Sprintf(
		"[paths]\ndata_dir = %q\nlog_dir = %q\napi_bind = %q\n",
		filepath.Join(base, "data"),
		filepath.Join(base, "logs"),
		"127.0.0.1:0",
	)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	svc := testsupport.MustOpenService(t, cfg)
	pipeline := ingest.NewPipeline(completer, nil)

	d, err := daemon.New(cfg, svc, pipeline, nil, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("daemon.Start: %v", err)
	}
	t.Cleanup(d.Stop)

	return &cliTestEnv{
		cfg:        cfg,
		daemon:     d,
		addr:       "http://" + d.Addr(),
		configPath: configPath,
	}
}

func runCLI(t *testing.T, args []string, addr, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--addr", addr}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
