/* Copyright © 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	_ "embed"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/mikeb26/bracketmaker/bracket"
	"github.com/mikeb26/bracketmaker/internal"
	"github.com/mikeb26/bracketmaker/report"
	"github.com/mikeb26/bracketmaker/roster"
	"github.com/mikeb26/bracketmaker/statestore"
)

//go:embed help.txt
var helpText string

// cmdHandler defines the signature for command handler functions.
type cmdHandler func(ctx context.Context, app *app, args []string)

// commands maps command names to their respective handler functions.
var commands = map[string]cmdHandler{
	"help":      handleHelp,
	"new":       handleNew,
	"pair":      handlePair,
	"pairings":  handlePairings,
	"result":    handleResult,
	"resolve":   handleResolve,
	"unresolve": handleUnresolve,
	"remove":    handleRemove,
	"sub":       handleSub,
	"standings": handleStandings,
	"check":     handleCheck,
	"list":      handleList,
	"delete":    handleDelete,
	"reindex":   handleReindex,
}

type app struct {
	cfg   *internal.Config
	store *statestore.Store
}

func main() {
	ctx := context.Background()
	log.SetFlags(0)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	cmd := os.Args[1]
	handler, ok := commands[cmd]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}
	if cmd == "help" {
		handler(ctx, nil, os.Args[2:])
		return
	}

	cfg, err := internal.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	store, err := statestore.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Error opening %v store: %v", cfg.Backend, err)
	}
	handler(ctx, &app{cfg: cfg, store: store}, os.Args[2:])
}

func usage() {
	fmt.Printf("%v", helpText)
}

func handleHelp(ctx context.Context, _ *app, args []string) {
	usage()
}

// requireName exits with usage if the --name flag was not provided.
func requireName(fs *flag.FlagSet, name string) {
	if name == "" {
		fmt.Fprintln(os.Stderr, "Please provide a tournament --name.")
		fs.Usage()
		os.Exit(1)
	}
}

func (a *app) load(ctx context.Context, name string) *bracket.State {
	st, err := a.store.Load(ctx, name)
	if err != nil {
		if errors.Is(err, statestore.ErrNotFound) {
			log.Fatalf("No tournament named %v; run 'bracketmaker list'", name)
		}
		log.Fatalf("Error loading %v: %v", name, err)
	}
	return st
}

func (a *app) save(ctx context.Context, name string, st *bracket.State) {
	if err := a.store.Save(ctx, name, st); err != nil {
		log.Fatalf("Error saving %v: %v", name, err)
	}
}

// stringList is a repeatable flag.
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, " ")
}

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// splitNames parses a comma separated list of names. An empty flag value is
// an empty list.
func splitNames(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	names, err := roster.ParseList(strings.NewReader(s))
	if err != nil {
		return nil, fmt.Errorf("%q: %w", s, err)
	}
	return names, nil
}

func parsePair(s string) (bracket.Pairing, error) {
	names, err := splitNames(s)
	if err != nil {
		return bracket.Pairing{}, err
	}
	if len(names) != 2 {
		return bracket.Pairing{}, fmt.Errorf("%q is not of the form A,B", s)
	}
	return bracket.Pairing{names[0], names[1]}, nil
}

func handleNew(ctx context.Context, a *app, args []string) {
	fs := flag.NewFlagSet("new", flag.ExitOnError)
	name := fs.String("name", "", "Tournament name")
	rounds := fs.Int("rounds", 0, "Number of rounds (1 to half the roster)")
	file := fs.String("file", "", "Read the roster from a file")
	var urls stringList
	fs.Var(&urls, "url", "Fetch the roster from a web page (repeatable)")
	selector := fs.String("selector", roster.DefaultTableSpec.Selector,
		"CSS selector of the roster table for --url")
	column := fs.Int("column", roster.DefaultTableSpec.Column,
		"Zero based table column holding names for --url")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	requireName(fs, *name)

	var names []string
	for _, arg := range fs.Args() {
		argNames, err := splitNames(arg)
		if err != nil {
			log.Fatalf("Error parsing participants: %v", err)
		}
		names = append(names, argNames...)
	}
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			log.Fatalf("Error opening roster: %v", err)
		}
		fromFile, err := roster.ParseList(f)
		f.Close()
		if err != nil {
			log.Fatalf("Error reading roster %v: %v", *file, err)
		}
		names = append(names, fromFile...)
	}
	if len(urls) > 0 {
		client := internal.NewCachedHttpClient(ctx, a.cfg, a.cfg.RosterCacheTTL)
		fetcher := roster.NewFetcher(client, roster.TableSpec{
			Selector: *selector,
			Column:   *column,
		})
		fetched, err := fetcher.FetchAll(ctx, urls)
		if err != nil {
			log.Fatalf("Error fetching roster: %v", err)
		}
		names = append(names, fetched...)
	}

	st, err := bracket.CreateTournament(names, *rounds,
		bracket.WithMaxRetries(a.cfg.MaxRetries))
	if err != nil {
		log.Fatalf("Error creating %v: %v", *name, err)
	}
	if err := a.store.Create(ctx, *name, st); err != nil {
		log.Fatalf("Error saving %v: %v", *name, err)
	}

	fmt.Printf("Created %v with %d participants and %d rounds.\n", *name,
		len(st.Participants), st.RoundsRemaining)
	fmt.Printf("\nRun '%s pair --name %v' to pair round 1\n", os.Args[0], *name)
}

func handleList(ctx context.Context, a *app, args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	since := fs.String("since", "", "Only show tournaments created on or after this date")
	withStandings := fs.Bool("standings", false, "Also print each tournament's standings")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	cutoff, err := internal.ParseDateOrZero(*since)
	if err != nil {
		log.Fatalf("Error parsing --since %q: %v", *since, err)
	}

	entries, err := a.store.List(ctx)
	if err != nil {
		log.Fatalf("Error listing tournaments: %v", err)
	}

	var shown []string
	for _, e := range entries {
		if e.Created.Before(cutoff) {
			continue
		}
		shown = append(shown, e.Name)
		fmt.Printf("%-20s  created %s  round %d  %v\n", e.Name,
			e.Created.Local().Format("2006-01-02"), e.Round, e.Phase)
	}
	if len(shown) == 0 {
		fmt.Println("No tournaments found.")
		return
	}
	if !*withStandings {
		return
	}

	states, err := a.store.LoadAll(ctx, shown)
	if err != nil {
		log.Fatalf("Error loading tournaments: %v", err)
	}
	for _, name := range shown {
		fmt.Printf("\n== %v ==\n", name)
		fmt.Print(report.BuildTournamentStandings(states[name]))
	}
}

func handleReindex(ctx context.Context, a *app, args []string) {
	fs := flag.NewFlagSet("reindex", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	index, err := a.store.Reindex(ctx)
	if errors.Is(err, statestore.ErrNotListable) {
		log.Fatalf("The %v backend cannot be reindexed; only s3 can list its tournaments",
			a.cfg.Backend)
	}
	if err != nil {
		log.Fatalf("Error reindexing: %v", err)
	}
	fmt.Printf("Indexed %d tournament(s).\n", len(index))
}

func handleDelete(ctx context.Context, a *app, args []string) {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	name := fs.String("name", "", "Tournament name")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	requireName(fs, *name)

	if err := a.store.Delete(ctx, *name); err != nil {
		log.Fatalf("Error deleting %v: %v", *name, err)
	}
	fmt.Printf("Deleted %v.\n", *name)
}

func handleStandings(ctx context.Context, a *app, args []string) {
	fs := flag.NewFlagSet("standings", flag.ExitOnError)
	name := fs.String("name", "", "Tournament name")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	requireName(fs, *name)

	st := a.load(ctx, *name)
	fmt.Print(report.BuildTournamentStandings(st))
}

func handleCheck(ctx context.Context, a *app, args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	name := fs.String("name", "", "Tournament name")
	file := fs.String("file", "", "File of \"@A vs @B\" matchups")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	requireName(fs, *name)
	if *file == "" {
		fmt.Fprintln(os.Stderr, "Please provide a matchup --file.")
		fs.Usage()
		os.Exit(1)
	}

	st := a.load(ctx, *name)
	f, err := os.Open(*file)
	if err != nil {
		log.Fatalf("Error opening matchups: %v", err)
	}
	defer f.Close()
	matchups, err := roster.ParseMatchups(f)
	if err != nil {
		log.Fatalf("Error reading matchups %v: %v", *file, err)
	}

	fmt.Print(report.BuildRematchOutput(
		bracket.CompareMatchups(bracket.ResolvedHistory(st), matchups)))
}
