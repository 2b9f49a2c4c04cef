// Package cmd implements the CLI command structure for retrotodo.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/retrotodo/internal/api"
	"github.com/nibzard/retrotodo/internal/config"
	"github.com/nibzard/retrotodo/internal/devserver"
	"github.com/nibzard/retrotodo/internal/logging"
	"github.com/nibzard/retrotodo/internal/output"
	"github.com/nibzard/retrotodo/internal/todo"
	"github.com/nibzard/retrotodo/internal/todoclient"
	"github.com/nibzard/retrotodo/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Run executes the retrotodo CLI.
func Run(ctx context.Context, args []string) error {
	return run(ctx, args, os.Stdout, os.Stderr)
}

// app carries what every command needs.
type app struct {
	cws    *config.ConfigWithSources
	cfg    *config.Config
	stdout io.Writer
	stderr io.Writer
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("retrotodo", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	a := &app{cws: cws, cfg: cws.Config, stdout: stdout, stderr: stderr}

	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return a.versionCommand()
	}

	// Determine the subcommand
	// If no args or first arg is a flag, use "tui" as default
	subcommand := "tui"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 {
		if !strings.HasPrefix(remainingArgs[0], "-") {
			subcommand = remainingArgs[0]
			remainingArgs = remainingArgs[1:]
		}
	}

	switch subcommand {
	case "tui":
		return a.tuiCommand(ctx, remainingArgs)
	case "list", "ls":
		return a.listCommand(ctx, remainingArgs)
	case "add":
		return a.addCommand(ctx, remainingArgs)
	case "rm", "delete":
		return a.rmCommand(ctx, remainingArgs)
	case "doctor":
		return a.doctorCommand(ctx, remainingArgs)
	case "config":
		return a.configCommand(remainingArgs)
	case "logs":
		return a.logsCommand(ctx, remainingArgs)
	case "serve":
		return a.serveCommand(ctx, remainingArgs)
	case "version":
		return a.versionCommand()
	case "help":
		printUsage(fs, stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// newFlagSet returns a subcommand flag set that reports errors to stderr.
func (a *app) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("retrotodo "+name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

// newLogger builds a logger from the logging config.
func (a *app) newLogger(w io.Writer) (*log.Logger, error) {
	logger, err := logging.New(w, logging.Options{
		Level:           a.cfg.LogLevel,
		Format:          a.cfg.LogFormat,
		ReportTimestamp: a.cfg.LogTimestamps,
		ReportCaller:    a.cfg.LogCaller,
	})
	if err != nil {
		return nil, fmt.Errorf("configuring logger: %w", err)
	}
	return logger, nil
}

func (a *app) newBackend(logger *log.Logger) (*api.Client, error) {
	return api.New(a.cfg.BaseURL,
		api.WithTimeout(a.cfg.Timeout),
		api.WithLogger(logger),
	)
}

// newTodoClient wires a headless TodoClient for the one-shot commands.
func (a *app) newTodoClient(ctx context.Context) (*todoclient.Client, error) {
	logger, err := a.newLogger(a.stderr)
	if err != nil {
		return nil, err
	}
	backend, err := a.newBackend(logger)
	if err != nil {
		return nil, err
	}
	return todoclient.New(ctx, backend,
		todoclient.WithTheme(a.cfg.SelectedTheme),
		todoclient.WithLogger(logger),
	), nil
}

// clientError prefers the banner text the client recorded for a failure.
func clientError(c *todoclient.Client, err error) error {
	if err == nil {
		return nil
	}
	if msg := c.State().Err; msg != "" {
		return errors.New(msg)
	}
	return err
}

// tuiCommand launches the interactive UI. Logs go to a per-run file since the
// UI owns the terminal.
func (a *app) tuiCommand(ctx context.Context, args []string) error {
	fs := a.newFlagSet("tui")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	runLog, err := logging.NewRunLogger(a.cfg.LogDir, a.cfg.BaseURL)
	if err != nil {
		return fmt.Errorf("creating run log: %w", err)
	}
	defer runLog.Close()

	logger, err := a.newLogger(runLog.Writer())
	if err != nil {
		return err
	}
	logger.Info("starting tui", "base_url", a.cfg.BaseURL, "theme", a.cfg.SelectedTheme, "run", runLog.RunID)

	backend, err := a.newBackend(logger)
	if err != nil {
		return err
	}
	return ui.RunTUI(ctx, backend, ui.Options{
		Theme:  a.cfg.SelectedTheme,
		Logger: logger,
	})
}

// listCommand fetches and prints the task list.
func (a *app) listCommand(ctx context.Context, args []string) error {
	fs := a.newFlagSet("list")
	asJSON := fs.Bool("json", false, "Print tasks as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	client, err := a.newTodoClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.FetchTodos(ctx); err != nil {
		return clientError(client, err)
	}
	tasks := client.State().Tasks
	if *asJSON {
		return output.WriteJSON(a.stdout, tasks)
	}
	return output.WriteList(a.stdout, tasks)
}

// addCommand creates a task from the joined arguments.
func (a *app) addCommand(ctx context.Context, args []string) error {
	fs := a.newFlagSet("add")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := a.newTodoClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	client.SetDraft(strings.Join(fs.Args(), " "))
	if err := client.AddTodo(ctx); err != nil {
		return clientError(client, err)
	}
	tasks := client.State().Tasks
	if len(tasks) == 0 {
		return nil
	}
	return output.WriteTask(a.stdout, tasks[0])
}

// rmCommand deletes a task by id.
func (a *app) rmCommand(ctx context.Context, args []string) error {
	fs := a.newFlagSet("rm")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: retrotodo rm <id>")
	}
	id := fs.Arg(0)

	client, err := a.newTodoClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.DeleteTodo(ctx, id); err != nil {
		return clientError(client, err)
	}
	fmt.Fprintf(a.stdout, "Deleted %s\n", id)
	return nil
}

// doctorCommand checks config, backend reachability, and the list contract.
func (a *app) doctorCommand(ctx context.Context, args []string) error {
	fs := a.newFlagSet("doctor")
	verbose := fs.Bool("v", false, "Verbose output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	w := a.stdout

	fmt.Fprintln(w, "Retrotodo Doctor")
	fmt.Fprintln(w, "================")
	fmt.Fprintln(w)

	allOK := true

	// Check config
	fmt.Fprintln(w, "Config:")
	if file := a.cws.GetConfigFile(); file != "" {
		fmt.Fprintf(w, "  ✅ File: %s\n", file)
	} else {
		fmt.Fprintln(w, "  ✅ File: (none, using defaults)")
	}
	fmt.Fprintf(w, "  ✅ Base URL: %s\n", a.cfg.BaseURL)
	fmt.Fprintf(w, "  ✅ Theme: %s\n", a.cfg.SelectedTheme)
	if _, err := logging.ParseLevel(a.cfg.LogLevel); err != nil {
		fmt.Fprintf(w, "  ❌ Log level: %v\n", err)
		allOK = false
	}
	if _, err := logging.ParseFormatter(a.cfg.LogFormat); err != nil {
		fmt.Fprintf(w, "  ❌ Log format: %v\n", err)
		allOK = false
	}
	if *verbose {
		for _, line := range a.cws.Describe() {
			fmt.Fprintf(w, "     %s\n", line)
		}
	}
	fmt.Fprintln(w)

	// Check backend
	fmt.Fprintf(w, "Backend: %s\n", a.cfg.BaseURL)
	backend, err := a.newBackend(log.New(io.Discard))
	if err != nil {
		fmt.Fprintf(w, "  ❌ Error: %v\n", err)
		allOK = false
	} else {
		body, err := backend.FetchRaw(ctx)
		if err != nil {
			fmt.Fprintf(w, "  ❌ GET /todos: %v\n", err)
			allOK = false
		} else {
			fmt.Fprintln(w, "  ✅ GET /todos reachable")
			if !a.checkContract(body, *verbose) {
				allOK = false
			}
		}
	}
	fmt.Fprintln(w)

	// Check log directory
	fmt.Fprintf(w, "Log directory: %s\n", a.cfg.LogDir)
	if info, err := os.Stat(a.cfg.LogDir); err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(w, "  ⚠️  Not found (will be created by the TUI)")
		} else {
			fmt.Fprintf(w, "  ❌ Error: %v\n", err)
			allOK = false
		}
	} else if !info.IsDir() {
		fmt.Fprintln(w, "  ❌ Error: path is not a directory")
		allOK = false
	} else {
		fmt.Fprintln(w, "  ✅ OK")
	}
	fmt.Fprintln(w)

	if allOK {
		fmt.Fprintln(w, "✅ All checks passed!")
		return nil
	}
	fmt.Fprintln(w, "⚠️  Some checks failed. Retrotodo may not function correctly.")
	return fmt.Errorf("doctor checks failed")
}

// checkContract reports how a list payload matches the expected shape.
// Contract violations are warnings: the client degrades instead of failing.
func (a *app) checkContract(body []byte, verbose bool) bool {
	w := a.stdout
	report, err := todo.CheckListContract(body)
	if err != nil {
		fmt.Fprintf(w, "  ❌ Contract check: %v\n", err)
		return false
	}
	if report.Valid {
		fmt.Fprintln(w, "  ✅ List payload matches the contract")
	} else {
		fmt.Fprintln(w, "  ⚠️  List payload does not match the contract (tasks may show as empty or untitled):")
		for _, issue := range report.Issues {
			fmt.Fprintf(w, "     - %s\n", issue)
		}
	}
	if verbose {
		if items, err := todo.DecodeArray(body); err == nil {
			tasks, dropped := todo.NormalizeAll(items)
			fmt.Fprintf(w, "  Tasks: %d\n", len(tasks))
			if len(dropped) > 0 {
				fmt.Fprintf(w, "  ⚠️  Duplicate ids dropped: %s\n", strings.Join(dropped, ", "))
			}
		}
	}
	return true
}

// configCommand prints the effective config with sources, or an example file.
func (a *app) configCommand(args []string) error {
	fs := a.newFlagSet("config")
	example := fs.Bool("example", false, "Print an example config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *example {
		fmt.Fprint(a.stdout, config.ExampleConfig())
		return nil
	}

	if file := a.cws.GetConfigFile(); file != "" {
		fmt.Fprintf(a.stdout, "# config file: %s\n", file)
	} else {
		fmt.Fprintln(a.stdout, "# no config file found")
	}
	for _, line := range a.cws.Describe() {
		fmt.Fprintln(a.stdout, line)
	}
	return nil
}

// logsCommand lists runs or prints the latest run log.
func (a *app) logsCommand(ctx context.Context, args []string) error {
	fs := a.newFlagSet("logs")
	follow := fs.Bool("f", false, "Follow the log (like tail -f)")
	fs.BoolVar(follow, "follow", false, "Follow the log (like tail -f)")
	n := fs.Int("n", 0, "Number of lines to show (0 = all)")
	list := fs.Bool("list", false, "List runs instead of printing a log")
	if err := fs.Parse(args); err != nil {
		return err
	}

	logDir, err := logging.FindLogDir(a.cfg.LogDir, a.cfg.BaseURL)
	if err != nil {
		return fmt.Errorf("finding log directory: %w", err)
	}

	if *list {
		runs, err := logging.FindLogRuns(logDir)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("listing runs: %w", err)
		}
		if len(runs) == 0 {
			fmt.Fprintln(a.stdout, "No log files found.")
			return nil
		}
		for _, r := range runs {
			fmt.Fprintf(a.stdout, "%s  %s  %d bytes\n", r.RunID, r.ModTime.Format("2006-01-02 15:04:05"), r.Size)
		}
		return nil
	}

	logPath, err := logging.FindLatestLog(logDir)
	if err != nil {
		return fmt.Errorf("finding latest log: %w", err)
	}
	if logPath == "" {
		fmt.Fprintln(a.stdout, "No log files found.")
		return nil
	}

	fmt.Fprintf(a.stderr, "Showing: %s\n", logPath)
	if *follow {
		fmt.Fprintln(a.stderr, "(Ctrl+C to stop)")
	}
	return logging.TailLog(a.stdout, logPath, *n, *follow, ctx.Done())
}

// serveCommand runs the reference backend until interrupted.
func (a *app) serveCommand(ctx context.Context, args []string) error {
	fs := a.newFlagSet("serve")
	addr := fs.String("addr", a.cfg.Serve.Addr, "Listen address")
	dbPath := fs.String("db", a.cfg.Serve.DB, "SQLite database file (empty keeps tasks in memory)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	logger, err := a.newLogger(a.stderr)
	if err != nil {
		return err
	}

	var store devserver.Store
	if *dbPath == "" {
		store = devserver.NewMemoryStore()
	} else {
		sqlite, err := devserver.OpenSQLite(*dbPath)
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		logger.Info("using sqlite store", "path", *dbPath)
		store = sqlite
	}
	defer store.Close()

	return devserver.New(store, logger).ListenAndServe(ctx, *addr)
}

// versionCommand prints version information.
func (a *app) versionCommand() error {
	fmt.Fprintf(a.stdout, "retrotodo version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "Retrotodo - A retro todo list for the terminal")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  retrotodo [options] [command]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  tui           Launch the terminal UI (default command)")
	fmt.Fprintln(w, "  list          List tasks")
	fmt.Fprintln(w, "  add <text>    Add a task")
	fmt.Fprintln(w, "  rm <id>       Delete a task")
	fmt.Fprintln(w, "  doctor        Check config, backend reachability, and the list contract")
	fmt.Fprintln(w, "  config        Show effective config and where each value came from")
	fmt.Fprintln(w, "  logs          Show the latest TUI run log")
	fmt.Fprintln(w, "  serve         Run the reference backend")
	fmt.Fprintln(w, "  version       Show version information")
	fmt.Fprintln(w, "  help          Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "List Options:")
	fmt.Fprintln(w, "  -json")
	fmt.Fprintln(w, "        Print tasks as JSON")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Config Options:")
	fmt.Fprintln(w, "  -example")
	fmt.Fprintln(w, "        Print an example config file")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Logs Options:")
	fmt.Fprintln(w, "  -f, --follow")
	fmt.Fprintln(w, "        Follow the log (like tail -f)")
	fmt.Fprintln(w, "  -n int")
	fmt.Fprintln(w, "        Number of lines to show (0 = all)")
	fmt.Fprintln(w, "  -list")
	fmt.Fprintln(w, "        List runs")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Serve Options:")
	fmt.Fprintln(w, "  -addr string")
	fmt.Fprintln(w, "        Listen address (default \":5001\")")
	fmt.Fprintln(w, "  -db string")
	fmt.Fprintln(w, "        SQLite database file (empty keeps tasks in memory)")
}
