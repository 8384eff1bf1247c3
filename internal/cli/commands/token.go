package commands

import (
	"ModPlanner/internal/config"
	"ModPlanner/internal/middleware"
	"context"
	"flag"
	"fmt"
	"io"
	"time"
)

const devTokenTTL = 24 * time.Hour

// tokenCmd выпускает токен разработчика, подписанный AUTH_SECRET, и сохраняет его.
// Реальные токены выдаёт внешний auth-сервис.
type tokenCmd struct{}

func (tokenCmd) Name() string        { return "token" }
func (tokenCmd) Group() string       { return GroupSession }
func (tokenCmd) Description() string { return "Issue and store a dev token for the given user" }
func (tokenCmd) Usage() string       { return "token [--admin] <user_id>" }

func (tokenCmd) Run(_ context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	admin := fs.Bool("admin", false, "issue a moderator token")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return ErrUsage
	}
	userID, err := parseID(fs.Arg(0))
	if err != nil {
		return err
	}
	tok, err := middleware.BuildToken(userID, *admin, cfg.AuthSecret, devTokenTTL)
	if err != nil {
		return err
	}
	if err := newTokenStore(cfg).Save(tok); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	role := "user"
	if *admin {
		role = "admin"
	}
	fmt.Fprintf(Out, "Token saved for %s %d\n", role, userID)
	return nil
}

type logoutCmd struct{}

func (logoutCmd) Name() string        { return "logout" }
func (logoutCmd) Group() string       { return GroupSession }
func (logoutCmd) Description() string { return "Remove the stored token" }
func (logoutCmd) Usage() string       { return "logout" }

func (logoutCmd) Run(_ context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	if err := newTokenStore(cfg).Clear(); err != nil {
		return err
	}
	fmt.Fprintln(Out, "Logged out")
	return nil
}

func init() {
	RegisterCmd(tokenCmd{})
	RegisterCmd(logoutCmd{})
}
