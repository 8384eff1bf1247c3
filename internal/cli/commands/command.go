package commands

import (
	"ModPlanner/internal/config"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// ErrUsage is returned by a command when arguments are invalid and usage should be shown.
var ErrUsage = errors.New("usage")

// Command represents a CLI subcommand.
type Command interface {
	// Name returns the command name as typed by the user, e.g. "vote".
	Name() string
	// Description is a short human-readable description shown in help.
	Description() string
	// Usage returns the exact usage string, e.g. "vote <part_id> <up|down>".
	Usage() string
	// Run executes the command with provided args (without the command name).
	Run(ctx context.Context, cfg *config.Config, args []string) error
}

// registry holds available commands by name.
var registry = map[string]Command{}

// Out — общий writer для вывода CLI. По умолчанию os.Stdout, но в тестах может переназначаться.
var Out io.Writer = os.Stdout

// RegisterCmd adds a command to the registry. Should be called from init() of each command.
func RegisterCmd(cmd Command) {
	registry[cmd.Name()] = cmd
}

// Get returns a command by name.
func Get(name string) (Command, bool) {
	c, ok := registry[name]
	return c, ok
}

// List returns all registered commands sorted by name.
func List() []Command {
	list := make([]Command, 0, len(registry))
	for _, c := range registry {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })
	return list
}

// Группы команд в порядке вывода справки.
const (
	GroupSession = "Session"
	GroupParts   = "Parts"
	GroupVotes   = "Votes"
	GroupReports = "Reports & moderation"
	GroupLists   = "Build lists"
	GroupOther   = "Other"
)

var groupOrder = []string{GroupSession, GroupParts, GroupVotes, GroupReports, GroupLists, GroupOther}

// grouped — необязательный интерфейс команды: раздел справки.
type grouped interface {
	Group() string
}

// GroupOf возвращает раздел справки команды; без раздела — GroupOther.
func GroupOf(c Command) string {
	if g, ok := c.(grouped); ok && g.Group() != "" {
		return g.Group()
	}
	return GroupOther
}

// FormatGlobalUsage builds a help text for all commands, grouped by area.
func FormatGlobalUsage() string {
	lines := []string{
		"ModPlanner CLI",
		"",
		"Usage:",
		"  mpcli [--base-url <host:port>] [--token-file <path>] <command> [args]",
		"  mpcli help [command|area]",
	}
	for _, g := range groupOrder {
		if section := FormatGroupUsage(g); section != "" {
			lines = append(lines, "", section)
		}
	}
	return strings.Join(lines, "\n") + "\n"
}

// FormatGroupUsage builds the help section for one area, or "" if it has no commands.
func FormatGroupUsage(group string) string {
	var lines []string
	for _, c := range List() {
		if !strings.EqualFold(GroupOf(c), group) {
			continue
		}
		lines = append(lines, fmt.Sprintf("  %-44s %s", c.Usage(), c.Description()))
	}
	if len(lines) == 0 {
		return ""
	}
	return canonicalGroup(group) + ":\n" + strings.Join(lines, "\n")
}

func canonicalGroup(group string) string {
	for _, g := range groupOrder {
		if strings.EqualFold(g, group) {
			return g
		}
	}
	return group
}
