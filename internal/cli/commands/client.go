package commands

import (
	"ModPlanner/internal/cli/api"
	"ModPlanner/internal/cli/repo"
	fsrepo "ModPlanner/internal/cli/repo/fs"
	"ModPlanner/internal/config"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// newTokenStore возвращает хранилище токена. В тестах может подменяться.
var newTokenStore = func(cfg *config.Config) repo.TokenStore {
	return fsrepo.AuthFSStore{Path: cfg.TokenFile}
}

// call выполняет запрос к серверу от имени сохранённого пользователя.
// Без сохранённого токена запрос уходит анонимно.
func call(ctx context.Context, cfg *config.Config, method, path string, payload, out any) error {
	token, _ := newTokenStore(cfg).Load()
	return api.Call(ctx, method, strings.TrimRight(cfg.ServerURL, "/")+path, payload, token, out)
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(Out, string(b))
	return err
}

// parseID разбирает положительный идентификатор; иначе ErrUsage.
func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", ErrUsage, s)
	}
	return id, nil
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
