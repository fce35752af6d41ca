/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/mikeb26/bracketmaker/bracket"
	"github.com/mikeb26/bracketmaker/report"
	"github.com/mikeb26/bracketmaker/roster"
)

func handlePair(ctx context.Context, a *app, args []string) {
	fs := flag.NewFlagSet("pair", flag.ExitOnError)
	name := fs.String("name", "", "Tournament name")
	taggable := fs.Bool("taggable", false, "Print @A VS @B lines for chat")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	requireName(fs, *name)

	st := a.load(ctx, *name)
	next, round, err := bracket.GenerateRoundPairings(st,
		bracket.NewPairer(st.MaxRetries, nil))
	if err != nil {
		var exErr *bracket.ExhaustedError
		switch {
		case errors.As(err, &exErr):
			fmt.Fprintf(os.Stderr, "Could not pair %v without rematches after %d tries.\n",
				exErr.Group, exErr.Tries)
			fmt.Fprintln(os.Stderr, "Previous matchups:")
			for _, p := range exErr.History {
				fmt.Fprintf(os.Stderr, "  %v\n", p)
			}
			fmt.Fprintf(os.Stderr, "Pair this round by hand and verify it with '%s check'.\n",
				os.Args[0])
			os.Exit(1)
		case errors.Is(err, bracket.ErrNoPairingsPossible):
			fmt.Fprint(os.Stderr, report.BuildTournamentStandings(st))
			log.Fatalf("No possible pairings left! %v", err)
		}
		log.Fatalf("Error pairing %v: %v", *name, err)
	}
	a.save(ctx, *name, next)

	printRound(round, *taggable)
}

func printRound(round *bracket.Round, taggable bool) {
	if taggable {
		fmt.Print(report.BuildTaggableOutput(round))
		return
	}
	fmt.Print(report.BuildPairingsOutput(round))
}

func handlePairings(ctx context.Context, a *app, args []string) {
	fs := flag.NewFlagSet("pairings", flag.ExitOnError)
	name := fs.String("name", "", "Tournament name")
	taggable := fs.Bool("taggable", false, "Print @A VS @B lines for chat")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	requireName(fs, *name)

	st := a.load(ctx, *name)
	printRound(bracket.CurrentRound(st), *taggable)
}

func handleResult(ctx context.Context, a *app, args []string) {
	fs := flag.NewFlagSet("result", flag.ExitOnError)
	name := fs.String("name", "", "Tournament name")
	winnersArg := fs.String("winners", "", "Comma separated winners")
	losersArg := fs.String("losers", "", "Comma separated losers")
	winnersFile := fs.String("winners-file", "",
		"File of winners; everyone they played is recorded as a loser")
	var exts stringList
	fs.Var(&exts, "ext", "Extension result as WINNER,LOSER (repeatable)")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	requireName(fs, *name)

	st := a.load(ctx, *name)
	winners, err := splitNames(*winnersArg)
	if err != nil {
		log.Fatalf("Error parsing --winners: %v", err)
	}
	losers, err := splitNames(*losersArg)
	if err != nil {
		log.Fatalf("Error parsing --losers: %v", err)
	}
	if *winnersFile != "" {
		f, err := os.Open(*winnersFile)
		if err != nil {
			log.Fatalf("Error opening winners: %v", err)
		}
		fromFile, err := roster.ParseList(f)
		f.Close()
		if err != nil {
			log.Fatalf("Error reading winners %v: %v", *winnersFile, err)
		}
		implied, err := roster.LosersFromMatchups(bracket.CurrentPairings(st),
			fromFile)
		if err != nil {
			log.Fatalf("Error matching winners to pairings: %v", err)
		}
		winners = append(winners, fromFile...)
		losers = append(losers, implied...)
	}

	var outcomes []bracket.Outcome
	for _, e := range exts {
		p, err := parsePair(e)
		if err != nil {
			log.Fatalf("Error parsing --ext: %v", err)
		}
		outcomes = append(outcomes, bracket.Outcome{Winner: p[0], Loser: p[1]})
	}

	if st.Phase == bracket.PhaseFinal {
		next, _, err := bracket.CalcFinalScore(st, winners, losers, outcomes)
		if err != nil {
			log.Fatalf("Error scoring final round of %v: %v", *name, err)
		}
		a.save(ctx, *name, next)
		fmt.Print(report.BuildTournamentStandings(next))
		return
	}

	next, err := bracket.ApplyRoundResult(st, winners, losers, outcomes)
	if err != nil {
		log.Fatalf("Error recording round %d of %v: %v", st.Round, *name, err)
	}
	a.save(ctx, *name, next)

	fmt.Print(report.BuildTournamentStandings(next))
	if len(next.Extensions) > 0 {
		fmt.Println("\nExtension matches to be replayed next round:")
		for _, ext := range next.Extensions {
			fmt.Printf("  %v\n", ext)
		}
	}
	fmt.Printf("\nRun '%s pair --name %v' to pair round %d\n", os.Args[0],
		*name, next.Round+1)
}

func handleResolve(ctx context.Context, a *app, args []string) {
	fs := flag.NewFlagSet("resolve", flag.ExitOnError)
	name := fs.String("name", "", "Tournament name")
	winner := fs.String("winner", "", "Winner of the extension match")
	loser := fs.String("loser", "", "Loser of the extension match")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	requireName(fs, *name)
	if *winner == "" || *loser == "" {
		fmt.Fprintln(os.Stderr, "Please provide both --winner and --loser.")
		fs.Usage()
		os.Exit(1)
	}

	st := a.load(ctx, *name)
	next, err := bracket.ResolveExtension(st,
		bracket.Outcome{Winner: *winner, Loser: *loser})
	if err != nil {
		log.Fatalf("Error resolving extension: %v", err)
	}
	a.save(ctx, *name, next)
	printRound(bracket.CurrentRound(next), false)
}

func handleUnresolve(ctx context.Context, a *app, args []string) {
	fs := flag.NewFlagSet("unresolve", flag.ExitOnError)
	name := fs.String("name", "", "Tournament name")
	extArg := fs.String("ext", "", "Extension match as A,B")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	requireName(fs, *name)
	ext, err := parsePair(*extArg)
	if err != nil {
		log.Fatalf("Error parsing --ext: %v", err)
	}

	st := a.load(ctx, *name)
	next, err := bracket.UnresolveExtension(st, ext)
	if err != nil {
		log.Fatalf("Error unresolving extension: %v", err)
	}
	a.save(ctx, *name, next)
	printRound(bracket.CurrentRound(next), false)
}

func handleRemove(ctx context.Context, a *app, args []string) {
	fs := flag.NewFlagSet("remove", flag.ExitOnError)
	name := fs.String("name", "", "Tournament name")
	player := fs.String("player", "", "Participant withdrawing")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	requireName(fs, *name)

	st := a.load(ctx, *name)
	next, err := bracket.RemoveParticipant(st, *player)
	if err != nil {
		log.Fatalf("Error removing %v: %v", *player, err)
	}
	a.save(ctx, *name, next)
	fmt.Printf("%v has withdrawn from %v.\n", *player, *name)
}

func handleSub(ctx context.Context, a *app, args []string) {
	fs := flag.NewFlagSet("sub", flag.ExitOnError)
	name := fs.String("name", "", "Tournament name")
	oldName := fs.String("old", "", "Participant being replaced")
	newName := fs.String("new", "", "Substitute")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	requireName(fs, *name)

	st := a.load(ctx, *name)
	next, err := bracket.SubstituteParticipant(st, *oldName, *newName)
	if err != nil {
		log.Fatalf("Error substituting %v for %v: %v", *newName, *oldName, err)
	}
	a.save(ctx, *name, next)
	fmt.Printf("%v replaces %v in %v.\n", *newName, *oldName, *name)
}
