package commands

import (
	"ModPlanner/internal/cli/repo"
	"ModPlanner/internal/config"
	"bytes"
	"errors"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// withTempConfig переопределяет пользовательские каталоги на время теста,
// чтобы артефакты (токен) создавались в temp.
func withTempConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if runtime.GOOS == "windows" {
		t.Setenv("APPDATA", dir)
	} else {
		t.Setenv("XDG_CONFIG_HOME", dir)
	}
	return dir
}

// memTokenStore — хранилище токена в памяти.
type memTokenStore struct {
	token string
}

func (m *memTokenStore) Save(token string) error { m.token = token; return nil }

func (m *memTokenStore) Load() (string, error) {
	if m.token == "" {
		return "", errors.New("no token")
	}
	return m.token, nil
}

func (m *memTokenStore) Clear() error { m.token = ""; return nil }

// withMemTokens подменяет файловое хранилище токена на память.
func withMemTokens(t *testing.T) *memTokenStore {
	t.Helper()
	st := &memTokenStore{}
	prev := newTokenStore
	newTokenStore = func(*config.Config) repo.TokenStore { return st }
	t.Cleanup(func() { newTokenStore = prev })
	return st
}

// withStdoutCapture перенаправляет Out в буфер.
func withStdoutCapture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := Out
	Out = &buf
	t.Cleanup(func() { Out = prev })
	return &buf
}

func testConfig(t *testing.T, serverURL string) *config.Config {
	t.Helper()
	dir := withTempConfig(t)
	return &config.Config{
		ServerURL:  serverURL,
		AuthSecret: "test-secret",
		TokenFile:  filepath.Join(dir, "token"),
	}
}

func run(t *testing.T, cfg *config.Config, args ...string) error {
	t.Helper()
	c, ok := Get(args[0])
	if !ok {
		t.Fatalf("command %q is not registered", args[0])
	}
	return c.Run(t.Context(), cfg, args[1:])
}

func lines(s string) []string {
	return strings.Split(strings.TrimSpace(s), "\n")
}
