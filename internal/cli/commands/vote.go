package commands

import (
	"ModPlanner/internal/config"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

type voteSummary struct {
	PartID    int64   `json:"part_id"`
	Upvotes   int64   `json:"upvotes"`
	Downvotes int64   `json:"downvotes"`
	Total     int64   `json:"total"`
	Score     int64   `json:"score"`
	UserVote  *string `json:"user_vote"`
}

func printSummary(s voteSummary) {
	mine := "none"
	if s.UserVote != nil {
		mine = *s.UserVote
	}
	fmt.Fprintf(Out, "Part %d: +%d/-%d (score %d), your vote: %s\n", s.PartID, s.Upvotes, s.Downvotes, s.Score, mine)
}

type voteCmd struct{}

func (voteCmd) Name() string  { return "vote" }
func (voteCmd) Group() string { return GroupVotes }
func (voteCmd) Description() string {
	return "Vote on a part; repeating the same vote removes it"
}
func (voteCmd) Usage() string { return "vote <part_id> <up|down>" }

func (voteCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	dir := strings.ToLower(args[1])
	if dir != "up" && dir != "down" {
		return ErrUsage
	}
	var s voteSummary
	if err := call(ctx, cfg, http.MethodPost, fmt.Sprintf("/api/parts/%d/vote", id), map[string]string{"direction": dir}, &s); err != nil {
		return err
	}
	printSummary(s)
	return nil
}

type unvoteCmd struct{}

func (unvoteCmd) Name() string        { return "unvote" }
func (unvoteCmd) Group() string       { return GroupVotes }
func (unvoteCmd) Description() string { return "Remove your vote on a part" }
func (unvoteCmd) Usage() string       { return "unvote <part_id>" }

func (unvoteCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	var s voteSummary
	if err := call(ctx, cfg, http.MethodDelete, fmt.Sprintf("/api/parts/%d/vote", id), nil, &s); err != nil {
		return err
	}
	printSummary(s)
	return nil
}

type votesCmd struct{}

func (votesCmd) Name() string        { return "votes" }
func (votesCmd) Group() string       { return GroupVotes }
func (votesCmd) Description() string { return "Show vote summaries for one or more parts" }
func (votesCmd) Usage() string       { return "votes <part_id> [part_id...]" }

func (votesCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}
	ids := make([]string, 0, len(args))
	for _, a := range args {
		id, err := parseID(a)
		if err != nil {
			return err
		}
		ids = append(ids, strconv.FormatInt(id, 10))
	}
	if len(ids) == 1 {
		var s voteSummary
		if err := call(ctx, cfg, http.MethodGet, "/api/parts/"+ids[0]+"/votes", nil, &s); err != nil {
			return err
		}
		printSummary(s)
		return nil
	}
	var list []voteSummary
	path := withQuery("/api/parts/votes", url.Values{"part_ids": {strings.Join(ids, ",")}})
	if err := call(ctx, cfg, http.MethodGet, path, nil, &list); err != nil {
		return err
	}
	for _, s := range list {
		printSummary(s)
	}
	return nil
}

func init() {
	RegisterCmd(voteCmd{})
	RegisterCmd(unvoteCmd{})
	RegisterCmd(votesCmd{})
}
