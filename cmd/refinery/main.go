// cmd/refinery/main.go
//
// Entry point for the refinery CLI.
//
// Subcommands:
//   init     create the .refinery/ project directory
//   run      execute refinement cycles and persist the run snapshot
//   watch    live view of the current run
//   catalog  list the available collaborators

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/yourusername/refinery/internal/catalog"
	"github.com/yourusername/refinery/internal/config"
	"github.com/yourusername/refinery/internal/engine"
	"github.com/yourusername/refinery/internal/events"
	"github.com/yourusername/refinery/internal/journal"
	"github.com/yourusername/refinery/internal/logging"
	"github.com/yourusername/refinery/internal/solver"
	"github.com/yourusername/refinery/internal/tui"
	"github.com/yourusername/refinery/plugins"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "init":
		runInit(os.Args[2:])
	case "run":
		runRun(os.Args[2:])
	case "watch":
		runWatch(os.Args[2:])
	case "catalog":
		runCatalog(os.Args[2:])
	case "-h", "--help", "help":
		usage()
	default:
		die("unknown command %q (expected init, run, watch, or catalog)", os.Args[1])
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: refinery <init|run|watch|catalog> [flags]")
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func runInit(args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	projectDir := fs.String("project", "", "path to the project directory (defaults to cwd)")
	fs.Parse(args)

	project := resolveProject(*projectDir)
	if err := config.InitRefineryDir(project); err != nil {
		die("init .refinery: %v", err)
	}
	fmt.Printf("Initialized %s\n", filepath.Join(project, config.RefineryDir))
}

func runRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	projectDir := fs.String("project", "", "path to the project directory (defaults to cwd)")
	cycles := fs.Int("cycles", 1, "number of refinement cycles to execute")
	inputList := fs.String("inputs", "", "comma-separated inputs, one per cycle (overrides -cycles and the configured input)")
	resume := fs.Bool("resume", false, "continue the persisted run instead of starting fresh")
	verbose := fs.Bool("verbose", false, "print the event stream after the run")
	sets := keyValueFlag{}
	fs.Var(&sets, "set", "collaborator override (role=name, repeatable)")
	fs.Parse(args)

	cfg := loadConfig(*projectDir)
	collab := assembleCollaborators(cfg, sets)
	inputs, err := buildInputs(*inputList, *cycles, cfg.Project.Run.Input)
	if err != nil {
		die("build inputs: %v", err)
	}

	book, err := journal.New(cfg.JournalPath())
	if err != nil {
		die("open journal: %v", err)
	}
	logger, err := logging.New(cfg.LogPath())
	if err != nil {
		die("open log: %v", err)
	}
	defer logger.Close()
	router := events.NewRouter(events.RouterWithLogger(logger))
	store := engine.NewRepository(cfg.StateDir())
	opts := []engine.Option{engine.WithJournal(book), engine.WithEvents(router)}

	var eng *engine.Engine
	if *resume {
		eng, err = engine.Resume(collab, store, opts...)
	} else {
		eng, err = engine.Start(cfg.Project.Run.InitialState, collab, store, opts...)
	}
	if err != nil {
		die("prepare run: %v", err)
	}

	results, runErr := eng.Run(inputs)
	for _, result := range results {
		line := fmt.Sprintf("cycle %d: state=%v fitness=%g", result.Cycle, result.State, result.Fitness)
		if result.OperatorRegistered {
			line += fmt.Sprintf(" operator=%s", result.OperatorID)
		}
		fmt.Println(line)
	}
	if *verbose {
		printEvents(router, eng.RunID())
	}
	if runErr != nil {
		die("run %s: %v", eng.RunID(), runErr)
	}
	fmt.Printf("Run %s: %d cycles committed.\n", eng.RunID(), len(results))
}

func runWatch(args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	projectDir := fs.String("project", "", "path to the project directory (defaults to cwd)")
	fs.Parse(args)

	cfg := loadConfig(*projectDir)
	app, err := tui.NewApp(cfg)
	if err != nil {
		die("start watch view: %v", err)
	}
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		die("watch view: %v", err)
	}
}

func runCatalog(args []string) {
	fs := flag.NewFlagSet("catalog", flag.ExitOnError)
	projectDir := fs.String("project", "", "path to the project directory (defaults to cwd)")
	fs.Parse(args)

	cfg := loadConfig(*projectDir)
	cat := catalog.New()
	catalog.RegisterBuiltins(cat)
	if err := plugins.RegisterCollaboratorPlugins(cat, cfg); err != nil {
		die("load plugins: %v", err)
	}
	for _, id := range cat.IDs() {
		fmt.Println(id)
	}
}

func resolveProject(projectDir string) string {
	project := projectDir
	if project == "" {
		var err error
		project, err = os.Getwd()
		if err != nil {
			die("determine working directory: %v", err)
		}
	}
	absolute, err := filepath.Abs(project)
	if err != nil {
		die("resolve project dir: %v", err)
	}
	return absolute
}

func loadConfig(projectDir string) *config.Config {
	project := resolveProject(projectDir)
	if err := config.InitRefineryDir(project); err != nil {
		die("init .refinery: %v", err)
	}
	cfg, err := config.NewConfig(project)
	if err != nil {
		die("load config: %v", err)
	}
	return cfg
}

func assembleCollaborators(cfg *config.Config, overrides keyValueFlag) solver.Collaborators {
	cat := catalog.New()
	catalog.RegisterBuiltins(cat)
	if err := plugins.RegisterCollaboratorPlugins(cat, cfg); err != nil {
		die("load plugins: %v", err)
	}
	spec := catalog.Spec{
		Seeds:      selection(cfg.Project.Collaborators.Seeds),
		Tension:    selection(cfg.Project.Collaborators.Tension),
		Transition: selection(cfg.Project.Collaborators.Transition),
		Patterns:   selection(cfg.Project.Collaborators.Patterns),
		Operators:  selection(cfg.Project.Collaborators.Operators),
	}
	if err := applyOverrides(&spec, overrides); err != nil {
		die("apply overrides: %v", err)
	}
	collab, err := cat.Assemble(spec)
	if err != nil {
		die("assemble collaborators: %v", err)
	}
	return collab
}

func selection(sel config.RoleSelection) catalog.Selection {
	params := catalog.Params{}
	for key, value := range sel.Params {
		params[key] = value
	}
	return catalog.Selection{Name: sel.Name, Params: params}
}

func applyOverrides(spec *catalog.Spec, overrides keyValueFlag) error {
	for role, name := range overrides {
		switch catalog.Role(role) {
		case catalog.RoleSeeds:
			spec.Seeds = catalog.Selection{Name: name}
		case catalog.RoleTension:
			spec.Tension = catalog.Selection{Name: name}
		case catalog.RoleTransition:
			spec.Transition = catalog.Selection{Name: name}
		case catalog.RolePatterns:
			spec.Patterns = catalog.Selection{Name: name}
		case catalog.RoleOperators:
			spec.Operators = catalog.Selection{Name: name}
		default:
			return fmt.Errorf("unknown role %q in -set (expected one of %s)", role, roleList())
		}
	}
	return nil
}

func roleList() string {
	names := make([]string, 0, len(catalog.Roles))
	for _, role := range catalog.Roles {
		names = append(names, string(role))
	}
	return strings.Join(names, ", ")
}

func buildInputs(inputList string, cycles int, configured float64) ([]any, error) {
	if trimmed := strings.TrimSpace(inputList); trimmed != "" {
		parts := strings.Split(trimmed, ",")
		inputs := make([]any, 0, len(parts))
		for _, part := range parts {
			value, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
			if err != nil {
				return nil, fmt.Errorf("parse input %q: %w", part, err)
			}
			inputs = append(inputs, value)
		}
		return inputs, nil
	}
	if cycles < 0 {
		return nil, fmt.Errorf("cycles must be non-negative, got %d", cycles)
	}
	inputs := make([]any, cycles)
	for i := range inputs {
		inputs[i] = configured
	}
	return inputs, nil
}

// printEvents drains the backlog the router replays for a finished run.
func printEvents(router *events.Router, runID string) {
	sub := router.Subscribe(runID)
	defer sub.Close()
	for {
		select {
		case event, ok := <-sub.Events:
			if !ok {
				return
			}
			line := fmt.Sprintf("event %s cycle=%d", event.Type, event.Cycle)
			if event.OperatorID != "" {
				line += " operator=" + event.OperatorID
			}
			if event.Reason != "" {
				line += " reason=" + event.Reason
			}
			fmt.Println(line)
		default:
			return
		}
	}
}

type keyValueFlag map[string]string

func (kv *keyValueFlag) String() string {
	if kv == nil || len(*kv) == 0 {
		return ""
	}
	var pairs []string
	for key, value := range *kv {
		pairs = append(pairs, fmt.Sprintf("%s=%s", key, value))
	}
	return strings.Join(pairs, ", ")
}

func (kv *keyValueFlag) Set(value string) error {
	parts := strings.SplitN(value, "=", 2)
	if len(parts) != 2 {
		return fmt.Errorf("expected role=name, got %q", value)
	}
	key := strings.TrimSpace(parts[0])
	if key == "" {
		return fmt.Errorf("override role is empty in %q", value)
	}
	if *kv == nil {
		*kv = keyValueFlag{}
	}
	(*kv)[key] = strings.TrimSpace(parts[1])
	return nil
}
