/* Copyright © 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/bwmarrin/discordgo"

	"github.com/mikeb26/bracketmaker/internal"
	"github.com/mikeb26/bracketmaker/statestore"
)

type TopLevelCommand string

const (
	BracketCmd TopLevelCommand = "bracket"
)

type CmdHandler func(ctx context.Context, b *bot,
	i *discordgo.Interaction) *discordgo.InteractionResponse

var topLevelCmdHdlrs = map[TopLevelCommand]CmdHandler{
	BracketCmd: bracketCmdHandler,
}

// bot answers Discord interactions. It only ever reads tournament state.
type bot struct {
	store  *statestore.Store
	pubKey ed25519.PublicKey
}

func (b *bot) interactionHandler(w http.ResponseWriter, r *http.Request) {
	if !discordgo.VerifyInteraction(r, b.pubKey) {
		log.Printf("discordbot.int: failed to verify")
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("discordbot.int: failed to read request body: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var inter discordgo.Interaction
	if err := inter.UnmarshalJSON(body); err != nil {
		log.Printf("discordbot.int: failed to unmarshal interaction: err:%v body:%v",
			err, body)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	resp := &discordgo.InteractionResponse{}
	if inter.Type == discordgo.InteractionPing {
		resp.Type = discordgo.InteractionResponsePong
	} else if inter.Type == discordgo.InteractionApplicationCommand {
		hdlr, ok :=
			topLevelCmdHdlrs[TopLevelCommand(inter.ApplicationCommandData().Name)]
		if !ok {
			resp.Type = discordgo.InteractionResponseChannelMessageWithSource
			resp.Data = &discordgo.InteractionResponseData{
				Content: fmt.Sprintf("unknown command '%v'",
					inter.ApplicationCommandData().Name),
				Flags: discordgo.MessageFlagsEphemeral,
			}
		} else {
			resp = hdlr(r.Context(), b, &inter)
		}
	} else {
		log.Printf("discordbot.int: unimplemented interation type %v: inter:%v",
			inter.Type, inter)
		w.WriteHeader(http.StatusNotImplemented)
		return
	}

	rawResp, err := json.Marshal(resp)
	if err != nil {
		log.Printf("discordbot.int: failed to marshal resp: err:%v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if _, err = w.Write(rawResp); err != nil {
		log.Printf("discordbot.int: failed to write resp: err:%v", err)
	}
}

func bracketCommand() *discordgo.ApplicationCommand {
	nameOpt := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "name",
		Description: "Tournament name (as shown by /bracket list)",
		Required:    true,
	}
	broadcastOpt := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionBoolean,
		Name:        "broadcast",
		Description: "Share with the rest of the channel instead of only to you (default is false)",
		Required:    false,
	}

	return &discordgo.ApplicationCommand{
		Name:        string(BracketCmd),
		Description: "Tournament pairings and standings; try /bracket help to start",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(BracketHelpCmd),
				Description: "Show usage for bracket",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(BracketListCmd),
				Description: "List tournaments",
				Options: []*discordgo.ApplicationCommandOption{
					broadcastOpt,
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(BracketPairingsCmd),
				Description: "Show the pairings of the round in progress",
				Options: []*discordgo.ApplicationCommandOption{
					nameOpt,
					{
						Type:        discordgo.ApplicationCommandOptionBoolean,
						Name:        "taggable",
						Description: "List matchups as @A VS @B (default is false)",
						Required:    false,
					},
					broadcastOpt,
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(BracketStandingsCmd),
				Description: "Show the current standings",
				Options: []*discordgo.ApplicationCommandOption{
					nameOpt,
					broadcastOpt,
				},
			},
		},
	}
}

// registerSlashCommands creates or overwrites the global /bracket command.
func registerSlashCommands(cfg *internal.Config) {
	if cfg.DiscordBotToken == "" || cfg.DiscordAppID == "" {
		log.Printf("discordbot.reg: DISCORD_BOT_TOKEN or DISCORD_APP_ID unset; skipping registration")
		return
	}
	client, err := discordgo.New("Bot " + cfg.DiscordBotToken)
	if err != nil {
		log.Printf("discordbot.reg: failed to initialize discord client: %v", err)
		return
	}

	cmd, err := client.ApplicationCommandCreate(cfg.DiscordAppID, "",
		bracketCommand())
	if err != nil {
		log.Printf("discordbot.reg: failed to register %v: %v", BracketCmd, err)
		return
	}
	log.Printf("discordbot.reg: registered %v(cmdID:%v)", cmd.Name, cmd.ID)
}

func main() {
	log.SetFlags(log.Flags() &^ (log.Ldate | log.Ltime))
	ctx := context.Background()

	cfg, err := internal.LoadConfig()
	if err != nil {
		log.Fatalf("discordbot.init: %v", err)
	}
	pubKeyBytes, err := hex.DecodeString(cfg.DiscordPublicKey)
	if err != nil || len(pubKeyBytes) != ed25519.PublicKeySize {
		log.Fatalf("discordbot.init: DISCORD_PUBLIC_KEY is not a valid key: %v", err)
	}
	store, err := statestore.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("discordbot.init: %v", err)
	}
	b := &bot{store: store, pubKey: ed25519.PublicKey(pubKeyBytes)}

	go registerSlashCommands(cfg)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}
	log.Printf("discordbot.main: starting server on %v%v", hostname,
		cfg.DiscordListenAddr)

	http.HandleFunc("/DiscordBot/Interaction", b.interactionHandler)
	if err := http.ListenAndServe(cfg.DiscordListenAddr, nil); err != nil {
		log.Fatalf("discordbot.main: Serve failed: %v", err)
	}

	log.Printf("discordbot.main: exiting")
}
