package commands

import (
	"ModPlanner/internal/config"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// specFlag собирает повторяющиеся --spec key=value в карту характеристик.
// Значение, похожее на JSON (число, bool), сохраняется типизированным.
type specFlag map[string]any

func (s specFlag) String() string { return "" }

func (s specFlag) Set(v string) error {
	k, val, ok := strings.Cut(v, "=")
	if !ok || strings.TrimSpace(k) == "" {
		return fmt.Errorf("spec must be key=value, got %q", v)
	}
	var typed any
	if err := json.Unmarshal([]byte(val), &typed); err != nil {
		typed = val
	}
	s[strings.TrimSpace(k)] = typed
	return nil
}

type partAddCmd struct{}

func (partAddCmd) Name() string        { return "part-add" }
func (partAddCmd) Group() string       { return GroupParts }
func (partAddCmd) Description() string { return "Create a global part" }
func (partAddCmd) Usage() string {
	return "part-add [--brand B] [--number N] [--source S] [--spec k=v]... <name> <category_id>"
}

func (partAddCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("part-add", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	brand := fs.String("brand", "", "")
	number := fs.String("number", "", "")
	source := fs.String("source", "", "")
	spec := specFlag{}
	fs.Var(spec, "spec", "")
	if err := fs.Parse(args); err != nil || fs.NArg() != 2 {
		return ErrUsage
	}
	categoryID, err := parseID(fs.Arg(1))
	if err != nil {
		return err
	}
	payload := map[string]any{"name": fs.Arg(0), "category_id": categoryID}
	if *brand != "" {
		payload["brand"] = *brand
	}
	if *number != "" {
		payload["part_number"] = *number
	}
	if *source != "" {
		payload["source"] = *source
	}
	if len(spec) > 0 {
		payload["specifications"] = map[string]any(spec)
	}
	var out map[string]any
	if err := call(ctx, cfg, http.MethodPost, "/api/parts", payload, &out); err != nil {
		return err
	}
	return printJSON(out)
}

type partGetCmd struct{}

func (partGetCmd) Name() string        { return "part" }
func (partGetCmd) Group() string       { return GroupParts }
func (partGetCmd) Description() string { return "Show a part with its vote summary" }
func (partGetCmd) Usage() string       { return "part <part_id>" }

func (partGetCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	var out map[string]any
	if err := call(ctx, cfg, http.MethodGet, fmt.Sprintf("/api/parts/%d", id), nil, &out); err != nil {
		return err
	}
	return printJSON(out)
}

type partEditCmd struct{}

func (partEditCmd) Name() string        { return "part-edit" }
func (partEditCmd) Group() string       { return GroupParts }
func (partEditCmd) Description() string { return "Edit a part you created" }
func (partEditCmd) Usage() string {
	return "part-edit [--name N] [--category C] [--brand B] [--number N] [--spec k=v]... <part_id>"
}

func (partEditCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("part-edit", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.String("name", "", "")
	category := fs.Int64("category", 0, "")
	fs.String("brand", "", "")
	fs.String("number", "", "")
	spec := specFlag{}
	fs.Var(spec, "spec", "")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return ErrUsage
	}
	id, err := parseID(fs.Arg(0))
	if err != nil {
		return err
	}
	// в патч попадают только явно заданные флаги
	payload := map[string]any{}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			payload["name"] = f.Value.String()
		case "category":
			payload["category_id"] = *category
		case "brand":
			payload["brand"] = f.Value.String()
		case "number":
			payload["part_number"] = f.Value.String()
		case "spec":
			payload["specifications"] = map[string]any(spec)
		}
	})
	if len(payload) == 0 {
		return ErrUsage
	}
	var out map[string]any
	if err := call(ctx, cfg, http.MethodPut, fmt.Sprintf("/api/parts/%d", id), payload, &out); err != nil {
		return err
	}
	return printJSON(out)
}

type partVerifyCmd struct{}

func (partVerifyCmd) Name() string        { return "part-verify" }
func (partVerifyCmd) Group() string       { return GroupParts }
func (partVerifyCmd) Description() string { return "Mark a part verified (moderators)" }
func (partVerifyCmd) Usage() string       { return "part-verify [--unset] <part_id>" }

func (partVerifyCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("part-verify", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	unset := fs.Bool("unset", false, "")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return ErrUsage
	}
	id, err := parseID(fs.Arg(0))
	if err != nil {
		return err
	}
	payload := map[string]bool{"is_verified": !*unset}
	var out map[string]any
	if err := call(ctx, cfg, http.MethodPut, fmt.Sprintf("/api/parts/%d/verify", id), payload, &out); err != nil {
		return err
	}
	return printJSON(out)
}

type partDeleteCmd struct{}

func (partDeleteCmd) Name() string  { return "part-delete" }
func (partDeleteCmd) Group() string { return GroupParts }
func (partDeleteCmd) Description() string {
	return "Delete a part and detach it from every build list"
}
func (partDeleteCmd) Usage() string { return "part-delete <part_id>" }

func (partDeleteCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := call(ctx, cfg, http.MethodDelete, fmt.Sprintf("/api/parts/%d", id), nil, nil); err != nil {
		return err
	}
	fmt.Fprintf(Out, "Part %d deleted\n", id)
	return nil
}

func init() {
	RegisterCmd(partAddCmd{})
	RegisterCmd(partGetCmd{})
	RegisterCmd(partEditCmd{})
	RegisterCmd(partVerifyCmd{})
	RegisterCmd(partDeleteCmd{})
}
