package commands

import (
	"ModPlanner/internal/config"
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type listCreateCmd struct{}

func (listCreateCmd) Name() string        { return "list-create" }
func (listCreateCmd) Group() string       { return GroupLists }
func (listCreateCmd) Description() string { return "Create a build list" }
func (listCreateCmd) Usage() string       { return "list-create <name>" }

func (listCreateCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}
	var out map[string]any
	payload := map[string]string{"name": strings.Join(args, " ")}
	if err := call(ctx, cfg, http.MethodPost, "/api/build-lists", payload, &out); err != nil {
		return err
	}
	return printJSON(out)
}

type listGetCmd struct{}

func (listGetCmd) Name() string        { return "list" }
func (listGetCmd) Group() string       { return GroupLists }
func (listGetCmd) Description() string { return "Show a build list with its parts" }
func (listGetCmd) Usage() string       { return "list <list_id>" }

func (listGetCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	var out map[string]any
	if err := call(ctx, cfg, http.MethodGet, fmt.Sprintf("/api/build-lists/%d", id), nil, &out); err != nil {
		return err
	}
	return printJSON(out)
}

// pairArgs разбирает <list_id> <part_id>.
func pairArgs(args []string) (listID, partID int64, err error) {
	if len(args) != 2 {
		return 0, 0, ErrUsage
	}
	if listID, err = parseID(args[0]); err != nil {
		return 0, 0, err
	}
	if partID, err = parseID(args[1]); err != nil {
		return 0, 0, err
	}
	return listID, partID, nil
}

func pairPath(listID, partID int64) string {
	return fmt.Sprintf("/api/build-lists/%d/parts/%d", listID, partID)
}

type attachCmd struct{}

func (attachCmd) Name() string        { return "attach" }
func (attachCmd) Group() string       { return GroupLists }
func (attachCmd) Description() string { return "Add a global part to a build list" }
func (attachCmd) Usage() string       { return "attach [--notes N] <list_id> <part_id>" }

func (attachCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("attach", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	notes := fs.String("notes", "", "")
	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}
	listID, partID, err := pairArgs(fs.Args())
	if err != nil {
		return err
	}
	payload := map[string]any{}
	if *notes != "" {
		payload["notes"] = *notes
	}
	var out map[string]any
	if err := call(ctx, cfg, http.MethodPost, pairPath(listID, partID), payload, &out); err != nil {
		return err
	}
	return printJSON(out)
}

type notesCmd struct{}

func (notesCmd) Name() string        { return "notes" }
func (notesCmd) Group() string       { return GroupLists }
func (notesCmd) Description() string { return "Set or clear notes on a build list part" }
func (notesCmd) Usage() string       { return "notes <list_id> <part_id> [text]" }

func (notesCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 2 {
		return ErrUsage
	}
	listID, partID, err := pairArgs(args[:2])
	if err != nil {
		return err
	}
	// без текста заметка очищается
	var notes *string
	if text := strings.Join(args[2:], " "); text != "" {
		notes = &text
	}
	var out map[string]any
	if err := call(ctx, cfg, http.MethodPut, pairPath(listID, partID), map[string]*string{"notes": notes}, &out); err != nil {
		return err
	}
	return printJSON(out)
}

type detachCmd struct{}

func (detachCmd) Name() string        { return "detach" }
func (detachCmd) Group() string       { return GroupLists }
func (detachCmd) Description() string { return "Remove a part from a build list" }
func (detachCmd) Usage() string       { return "detach <list_id> <part_id>" }

func (detachCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	listID, partID, err := pairArgs(args)
	if err != nil {
		return err
	}
	if err := call(ctx, cfg, http.MethodDelete, pairPath(listID, partID), nil, nil); err != nil {
		return err
	}
	fmt.Fprintf(Out, "Part %d detached from build list %d\n", partID, listID)
	return nil
}

func init() {
	RegisterCmd(listCreateCmd{})
	RegisterCmd(listGetCmd{})
	RegisterCmd(attachCmd{})
	RegisterCmd(notesCmd{})
	RegisterCmd(detachCmd{})
}
