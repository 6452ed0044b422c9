package cli

import (
	"context"
	"fmt"
	"sort"
)

// HandlerFunc handles one subcommand with its remaining arguments
type HandlerFunc func(ctx context.Context, args []string) error

// Dispatcher routes subcommands to their handlers
type Dispatcher interface {
	// RegisterHandler registers a handler for a subcommand
	RegisterHandler(command, summary string, handler HandlerFunc)
	// Dispatch runs the handler for args[0]
	Dispatch(ctx context.Context, args []string) error
	// Commands lists registered subcommands with their summaries
	Commands() []CommandInfo
}

// CommandInfo describes a registered subcommand
type CommandInfo struct {
	Name    string
	Summary string
}

// NewDispatcher creates a new dispatcher instance
func NewDispatcher() Dispatcher {
	return &defaultDispatcher{
		handlers:  make(map[string]HandlerFunc),
		summaries: make(map[string]string),
	}
}

type defaultDispatcher struct {
	handlers  map[string]HandlerFunc
	summaries map[string]string
}

func (d *defaultDispatcher) RegisterHandler(command, summary string, handler HandlerFunc) {
	d.handlers[command] = handler
	d.summaries[command] = summary
}

func (d *defaultDispatcher) Dispatch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no command given")
	}
	handler, exists := d.handlers[args[0]]
	if !exists {
		return fmt.Errorf("unknown command %q", args[0])
	}
	return handler(ctx, args[1:])
}

func (d *defaultDispatcher) Commands() []CommandInfo {
	infos := make([]CommandInfo, 0, len(d.handlers))
	for name, summary := range d.summaries {
		infos = append(infos, CommandInfo{Name: name, Summary: summary})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}
