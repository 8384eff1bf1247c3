package commands

import (
	"ModPlanner/internal/config"
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

type reportCmd struct{}

func (reportCmd) Name() string        { return "report" }
func (reportCmd) Group() string       { return GroupReports }
func (reportCmd) Description() string { return "Report a problem with a part" }
func (reportCmd) Usage() string {
	return "report [--description D] <part_id> <reason>"
}

func (reportCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	desc := fs.String("description", "", "")
	if err := fs.Parse(args); err != nil || fs.NArg() < 2 {
		return ErrUsage
	}
	id, err := parseID(fs.Arg(0))
	if err != nil {
		return err
	}
	payload := map[string]any{"reason": strings.Join(fs.Args()[1:], " ")}
	if *desc != "" {
		payload["description"] = *desc
	}
	var out map[string]any
	if err := call(ctx, cfg, http.MethodPost, fmt.Sprintf("/api/parts/%d/reports", id), payload, &out); err != nil {
		return err
	}
	return printJSON(out)
}

type reportsCmd struct{}

func (reportsCmd) Name() string        { return "reports" }
func (reportsCmd) Group() string       { return GroupReports }
func (reportsCmd) Description() string { return "List reports (moderators)" }
func (reportsCmd) Usage() string {
	return "reports [--status S] [--part ID] [--skip N] [--limit N]"
}

func (reportsCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("reports", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	status := fs.String("status", "", "")
	part := fs.Int64("part", 0, "")
	skip := fs.Int("skip", 0, "")
	limit := fs.Int("limit", 0, "")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
		return ErrUsage
	}
	q := url.Values{}
	if *status != "" {
		q.Set("status", *status)
	}
	if *part > 0 {
		q.Set("part_id", strconv.FormatInt(*part, 10))
	}
	if *skip > 0 {
		q.Set("skip", strconv.Itoa(*skip))
	}
	if *limit > 0 {
		q.Set("limit", strconv.Itoa(*limit))
	}
	var out map[string]any
	if err := call(ctx, cfg, http.MethodGet, withQuery("/api/reports", q), nil, &out); err != nil {
		return err
	}
	return printJSON(out)
}

type reviewCmd struct{}

func (reviewCmd) Name() string        { return "review" }
func (reviewCmd) Group() string       { return GroupReports }
func (reviewCmd) Description() string { return "Resolve or dismiss a pending report (moderators)" }
func (reviewCmd) Usage() string {
	return "review [--notes N] <report_id> <resolved|dismissed>"
}

func (reviewCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("review", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	notes := fs.String("notes", "", "")
	if err := fs.Parse(args); err != nil || fs.NArg() != 2 {
		return ErrUsage
	}
	id, err := parseID(fs.Arg(0))
	if err != nil {
		return err
	}
	payload := map[string]any{"status": strings.ToLower(fs.Arg(1))}
	if *notes != "" {
		payload["admin_notes"] = *notes
	}
	var out map[string]any
	if err := call(ctx, cfg, http.MethodPut, fmt.Sprintf("/api/reports/%d", id), payload, &out); err != nil {
		return err
	}
	return printJSON(out)
}

func init() {
	RegisterCmd(reportCmd{})
	RegisterCmd(reportsCmd{})
	RegisterCmd(reviewCmd{})
}
