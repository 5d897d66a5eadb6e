package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lotas/tabclue/internal/applog"
	"github.com/lotas/tabclue/internal/bookmarks"
	"github.com/lotas/tabclue/internal/bridge"
	"github.com/lotas/tabclue/internal/collection"
	"github.com/lotas/tabclue/internal/export"
	"github.com/lotas/tabclue/internal/firefox"
	"github.com/lotas/tabclue/internal/mutate"
	"github.com/lotas/tabclue/internal/storage"
	"github.com/lotas/tabclue/internal/titles"
	"github.com/lotas/tabclue/internal/tui"
	"github.com/lotas/tabclue/internal/types"
)

const defaultPort = 19292

func main() {
	initLog()
	defer applog.Close()

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "save":
			runSave(os.Args[2:])
			return
		case "export":
			runExport(os.Args[2:])
			return
		case "import":
			runImport(os.Args[2:])
			return
		case "list":
			runList(os.Args[2:])
			return
		case "fill-titles":
			runFillTitles(os.Args[2:])
			return
		case "open-dashboard":
			runOpenDashboard(os.Args[2:])
			return
		case "profiles":
			runProfiles()
			return
		case "help", "--help", "-h":
			printHelp()
			return
		}
	}

	fs := flag.NewFlagSet("tabclue", flag.ExitOnError)
	port := fs.Int("port", resolvePort(), "WebSocket port for the browser bridge")
	fs.Parse(os.Args[1:])

	app, err := openApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer app.db.Close()

	srv := bridge.New(*port)
	cache := bookmarks.NewCache(bridge.BookmarkChecker{Server: srv})

	model := tui.NewModel(tui.Deps{
		Tags:     app.tags,
		Settings: app.settings,
		Engine:   app.engine,
		Server:   srv,
		Cache:    cache,
	})
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Print(`tabclue — saved browser tab manager

Usage:
  tabclue                                     Start the dashboard TUI (default)
    --port <n>            WebSocket port for the browser bridge (default: 19292)

  tabclue save                                Save a snapshot of open tabs
    --tag <id>            Target collection (default: settings defaultTagId)
    --live                Take the snapshot from the browser bridge
    --port <n>            WebSocket port for live mode (default: 19292)
    --profile <name>      Firefox profile for offline snapshots

  tabclue export                              Export saved tabs
    --json                Export as JSON instead of markdown
    --out <file>          Output file path (default: stdout)

  tabclue import <file>                       Replace saved tabs from a JSON export

  tabclue list                                Print saved collections and sessions

  tabclue fill-titles                         Fetch titles for tabs saved without one

  tabclue open-dashboard                      Focus the browser dashboard page
    --path <p>            Dashboard sub-path to show
    --port <n>            WebSocket port (default: 19292)

  tabclue profiles                            List Firefox profiles

Environment:
  TABCLUE_DB         Database path (default: ~/.local/share/tabclue/tabclue.db)
  TABCLUE_PORT       Bridge port (overridden by --port)
  TABCLUE_PROFILE    Default Firefox profile (overridden by --profile)
`)
}

// app bundles the storage-backed collaborators shared by all commands.
type app struct {
	db       *sql.DB
	tags     *collection.CollectionStore
	settings *collection.SettingsStore
	engine   *mutate.Engine
}

func openApp() (*app, error) {
	dbPath := os.Getenv("TABCLUE_DB")
	if dbPath == "" {
		var err error
		dbPath, err = storage.DefaultDBPath()
		if err != nil {
			return nil, err
		}
	}
	db, err := storage.OpenDB(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	store := storage.NewStore(db)
	tags := collection.NewCollectionStore(store)
	settings := collection.NewSettingsStore(store)
	return &app{
		db:       db,
		tags:     tags,
		settings: settings,
		engine:   mutate.NewEngine(tags, settings),
	}, nil
}

func initLog() {
	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	applog.Init(filepath.Join(home, ".local", "share", "tabclue"))
}

func resolvePort() int {
	if v := os.Getenv("TABCLUE_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultPort
}

// resolveProfileName returns the profile name from the flag if set,
// otherwise falls back to the TABCLUE_PROFILE environment variable.
func resolveProfileName(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv("TABCLUE_PROFILE")
}

func runSave(args []string) {
	fs := flag.NewFlagSet("save", flag.ExitOnError)
	tagID := fs.String("tag", "", "Target collection ID (default: settings defaultTagId)")
	liveMode := fs.Bool("live", false, "Take the snapshot from the browser bridge")
	port := fs.Int("port", resolvePort(), "WebSocket port for live mode")
	profileName := fs.String("profile", "", "Firefox profile for offline snapshots")
	fs.Parse(args)

	a, err := openApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer a.db.Close()

	settings, err := a.settings.Get()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading settings: %v\n", err)
		os.Exit(1)
	}
	target := *tagID
	if target == "" {
		target = settings.DefaultTagID
	}

	var open []types.OpenTab
	var srv *bridge.Server
	if *liveMode {
		srv = bridge.New(*port)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go srv.ListenAndServe(ctx)

		fmt.Fprintf(os.Stderr, "Waiting for browser extension on port %d...\n", *port)
		open, err = srv.WaitSnapshot(ctx, 10*time.Second)
	} else {
		open, err = sessionTabs(resolveProfileName(*profileName))
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	result, err := a.engine.SaveSnapshot(open, target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if !result.Success {
		fmt.Println("Nothing to save: no eligible tabs.")
		return
	}
	fmt.Printf("Saved %d tabs.\n", result.SavedCount)

	if *liveMode && settings.CloseTabsAfterSave && len(result.Handles) > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.CloseTabs(ctx, result.Handles); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: closing saved tabs failed: %v\n", err)
		}
	}
}

// sessionTabs reads open tabs from a Firefox session backup. An empty
// profileName selects the default profile.
func sessionTabs(profileName string) ([]types.OpenTab, error) {
	if profileName == "" {
		return firefox.DefaultProfileTabs()
	}
	profiles, err := firefox.DiscoverProfiles()
	if err != nil {
		return nil, fmt.Errorf("discover profiles: %w", err)
	}
	for _, p := range profiles {
		if p.Name == profileName {
			return firefox.ReadSessionTabs(p.Path)
		}
	}
	return nil, fmt.Errorf("profile %q not found", profileName)
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	jsonFlag := fs.Bool("json", false, "Export as JSON instead of markdown")
	outFile := fs.String("out", "", "Output file path (default: stdout)")
	fs.Parse(args)

	a, err := openApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer a.db.Close()

	var output string
	if *jsonFlag {
		data, err := a.engine.Export()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		output, err = export.JSON(data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating JSON: %v\n", err)
			os.Exit(1)
		}
	} else {
		tags, err := a.tags.Get()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		output = export.Markdown(tags)
	}

	if *outFile != "" {
		if err := os.WriteFile(*outFile, []byte(output), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
			os.Exit(1)
		}
	} else {
		fmt.Print(output)
	}
}

func runImport(args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: tabclue import <file.json>")
		os.Exit(1)
	}

	payload, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	a, err := openApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer a.db.Close()

	if err := a.engine.Import(payload); err != nil {
		fmt.Fprintf(os.Stderr, "Import failed: %v\n", err)
		os.Exit(1)
	}

	tags, err := a.tags.Get()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	total := 0
	for _, t := range tags {
		for _, g := range t.Groups {
			total += len(g.Tabs)
		}
	}
	fmt.Printf("Imported %d collections (%d tabs).\n", len(tags), total)
}

func runList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	fs.Parse(args)

	a, err := openApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer a.db.Close()

	tags, err := a.tags.Get()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	for _, tag := range tags {
		total := 0
		for _, g := range tag.Groups {
			total += len(g.Tabs)
		}
		marker := ""
		if tag.IsSystem {
			marker = " [system]"
		}
		fmt.Printf("%s%s — %d sessions, %d tabs\n", tag.Name, marker, len(tag.Groups), total)
		for _, g := range tag.Groups {
			fmt.Printf("  %s (%d tabs)\n", g.Name, len(g.Tabs))
		}
	}
}

func runFillTitles(args []string) {
	fs := flag.NewFlagSet("fill-titles", flag.ExitOnError)
	fs.Parse(args)

	a, err := openApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer a.db.Close()

	tags, err := a.tags.Get()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	filled := titles.Fill(tags, nil)
	if filled == 0 {
		fmt.Println("No tabs need titles.")
		return
	}
	if err := a.tags.Set(tags); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Filled %d titles.\n", filled)
}

func runOpenDashboard(args []string) {
	fs := flag.NewFlagSet("open-dashboard", flag.ExitOnError)
	path := fs.String("path", "", "Dashboard sub-path to show")
	port := fs.Int("port", resolvePort(), "WebSocket port")
	fs.Parse(args)

	srv := bridge.New(*port)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	go srv.ListenAndServe(ctx)

	fmt.Fprintf(os.Stderr, "Waiting for browser extension on port %d...\n", *port)
	for !srv.Connected() {
		select {
		case <-ctx.Done():
			fmt.Fprintln(os.Stderr, "Error: no extension connected.")
			os.Exit(1)
		case <-time.After(100 * time.Millisecond):
		}
	}

	if err := srv.OpenDashboard(ctx, *path); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Dashboard opened.")
}

func runProfiles() {
	profiles, err := firefox.DiscoverProfiles()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error discovering Firefox profiles: %v\n", err)
		os.Exit(1)
	}
	if len(profiles) == 0 {
		fmt.Fprintln(os.Stderr, "No Firefox profiles found.")
		os.Exit(1)
	}

	for _, p := range profiles {
		suffix := ""
		if p.IsDefault {
			suffix = " [default]"
		}
		fmt.Printf("%s (%s)%s\n", p.Name, p.Path, suffix)
	}
}
