/* Copyright © 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/mikeb26/bracketmaker/bracket"
	"github.com/mikeb26/bracketmaker/report"
	"github.com/mikeb26/bracketmaker/statestore"
)

type BracketSubCommand string

const (
	BracketHelpCmd      BracketSubCommand = "help"
	BracketListCmd      BracketSubCommand = "list"
	BracketPairingsCmd  BracketSubCommand = "pairings"
	BracketStandingsCmd BracketSubCommand = "standings"
)

var bracketSubCmdHdlrs = map[BracketSubCommand]CmdHandler{
	BracketHelpCmd:      bracketHelpCmdHandler,
	BracketListCmd:      bracketListCmdHandler,
	BracketPairingsCmd:  bracketPairingsCmdHandler,
	BracketStandingsCmd: bracketStandingsCmdHandler,
}

func bracketCmdHandler(ctx context.Context, b *bot,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	data := inter.ApplicationCommandData()
	hdlr := bracketHelpCmdHandler
	if len(data.Options) > 0 {
		if subName := data.Options[0].Name; subName != "" {
			h, ok := bracketSubCmdHdlrs[BracketSubCommand(subName)]
			if ok {
				hdlr = h
			}
		}
	}
	return hdlr(ctx, b, inter)
}

func newResponse() *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	}
}

// subOptions collects the options given to the subcommand.
type subOptions struct {
	name      string
	broadcast bool
	taggable  bool
}

func parseSubOptions(inter *discordgo.Interaction) subOptions {
	var opts subOptions
	data := inter.ApplicationCommandData()
	if len(data.Options) == 0 {
		return opts
	}
	for _, opt := range data.Options[0].Options {
		switch opt.Name {
		case "name":
			opts.name = strings.TrimSpace(opt.StringValue())
		case "broadcast":
			opts.broadcast = opt.BoolValue()
		case "taggable":
			opts.taggable = opt.BoolValue()
		}
	}
	return opts
}

//go:embed help.md
var helpText string

func bracketHelpCmdHandler(ctx context.Context, b *bot,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := newResponse()
	resp.Data.Content = truncateContent(helpText)
	return resp
}

func bracketListCmdHandler(ctx context.Context, b *bot,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := newResponse()
	opts := parseSubOptions(inter)

	entries, err := b.store.List(ctx)
	if err != nil {
		resp.Data.Content = fmt.Sprintf("Error listing tournaments: %v", err)
		log.Printf("discordbot.list: %v", resp.Data.Content)
		return resp
	}
	if len(entries) == 0 {
		resp.Data.Content = "No tournaments found."
		return resp
	}

	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("- **%v** (round %d, %v, created %v)\n",
			e.Name, e.Round, e.Phase, e.Created.Format("2006-01-02")))
	}
	sb.WriteString("\nRun /bracket pairings <name> to see a tournament's current round\n")
	resp.Data.Content = truncateContent(sb.String())

	if opts.broadcast {
		resp.Data.Flags = 0
	}
	return resp
}

// loadTournament loads the tournament named in the interaction or fills in
// resp with an explanation and returns nil.
func loadTournament(ctx context.Context, b *bot, opts subOptions,
	resp *discordgo.InteractionResponse, op string) *bracket.State {

	if opts.name == "" {
		resp.Data.Content = "Please provide a tournament name."
		log.Printf("discordbot.%v: %v", op, resp.Data.Content)
		return nil
	}
	st, err := b.store.Load(ctx, opts.name)
	if err != nil {
		if errors.Is(err, statestore.ErrNotFound) ||
			errors.Is(err, statestore.ErrInvalidName) {
			resp.Data.Content = fmt.Sprintf("No tournament named %v; try /bracket list",
				opts.name)
		} else {
			resp.Data.Content = fmt.Sprintf("Error loading %v: %v", opts.name,
				err)
		}
		log.Printf("discordbot.%v: %v", op, resp.Data.Content)
		return nil
	}

	return st
}

func bracketPairingsCmdHandler(ctx context.Context, b *bot,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := newResponse()
	opts := parseSubOptions(inter)
	st := loadTournament(ctx, b, opts, resp, "pairings")
	if st == nil {
		return resp
	}

	round := bracket.CurrentRound(st)
	if round == nil {
		resp.Data.Content = fmt.Sprintf("%v has no round in progress.",
			opts.name)
		return resp
	}
	if opts.taggable {
		// plain text so that the @ mentions notify
		resp.Data.Content = truncateContent(report.BuildTaggableOutput(round))
	} else {
		// Wrap output in code block for monospace formatting in Discord
		resp.Data.Content = fmt.Sprintf("```\n%s```",
			truncateContent(report.BuildPairingsOutput(round)))
	}

	if opts.broadcast {
		resp.Data.Flags = 0
	}
	return resp
}

func bracketStandingsCmdHandler(ctx context.Context, b *bot,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := newResponse()
	opts := parseSubOptions(inter)
	st := loadTournament(ctx, b, opts, resp, "standings")
	if st == nil {
		return resp
	}

	// Wrap output in code block for monospace formatting in Discord
	resp.Data.Content = fmt.Sprintf("```\n%s```",
		truncateContent(report.BuildTournamentStandings(st)))

	if opts.broadcast {
		resp.Data.Flags = 0
	}
	return resp
}

// https://discord.com/developers/docs/resources/channel#start-thread-in-forum-or-media-channel-forum-and-media-thread-message-params-object
// limits messages to 2k characters
func truncateContent(s string) string {
	const MsgLimit = 1988 // keep space for newlines and markdown
	runes := []rune(s)
	if len(runes) > MsgLimit {
		s = fmt.Sprintf("%v...", string(runes[:MsgLimit]))
	}
	return s
}
