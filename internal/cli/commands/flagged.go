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
)

type flagRecord struct {
	PartID          int64   `json:"part_id"`
	PartName        string  `json:"part_name"`
	Upvotes         int64   `json:"upvotes"`
	Downvotes       int64   `json:"downvotes"`
	DownvoteRatio   float64 `json:"downvote_ratio"`
	RecentDownvotes int64   `json:"recent_downvotes"`
	PendingReports  int64   `json:"pending_reports"`
}

type flaggedPage struct {
	Items []flagRecord `json:"items"`
	Total int          `json:"total"`
}

type flaggedCmd struct{}

func (flaggedCmd) Name() string        { return "flagged" }
func (flaggedCmd) Group() string       { return GroupReports }
func (flaggedCmd) Description() string { return "List parts that need moderation (moderators)" }
func (flaggedCmd) Usage() string {
	return "flagged [--min-votes N] [--ratio R] [--days N] [--skip N] [--limit N]"
}

func (flaggedCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("flagged", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Int("min-votes", 0, "")
	fs.Float64("ratio", 0, "")
	fs.Int("days", 0, "")
	fs.Int("skip", 0, "")
	fs.Int("limit", 0, "")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
		return ErrUsage
	}
	// незаданные параметры берутся из серверных значений по умолчанию
	names := map[string]string{
		"min-votes": "min_votes",
		"ratio":     "min_downvote_ratio",
		"days":      "days_back",
		"skip":      "skip",
		"limit":     "limit",
	}
	q := url.Values{}
	fs.Visit(func(f *flag.Flag) {
		q.Set(names[f.Name], f.Value.String())
	})

	var page flaggedPage
	if err := call(ctx, cfg, http.MethodGet, withQuery("/api/parts/flagged", q), nil, &page); err != nil {
		return err
	}
	fmt.Fprintf(Out, "Flagged parts: %d\n", page.Total)
	for _, r := range page.Items {
		fmt.Fprintf(Out, "  #%d %s: +%d/-%d ratio=%s recent=%d reports=%d\n",
			r.PartID, r.PartName, r.Upvotes, r.Downvotes,
			strconv.FormatFloat(r.DownvoteRatio, 'f', 2, 64), r.RecentDownvotes, r.PendingReports)
	}
	return nil
}

func init() {
	RegisterCmd(flaggedCmd{})
}
