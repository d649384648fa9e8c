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

	"github.com/mikeb26/meetday/internal"
	"github.com/mikeb26/meetday/meet"
	"github.com/mikeb26/meetday/store"
)

const (
	tokenEnv  = "MEETDAY_DISCORD_TOKEN"
	pubKeyEnv = "MEETDAY_DISCORD_PUBKEY"
	appIdEnv  = "MEETDAY_DISCORD_APPID"
	cmdIdEnv  = "MEETDAY_DISCORD_CMDID"
	bucketEnv = "MEETDAY_BUCKET"
	storeEnv  = "MEETDAY_STORE"
	listenEnv = "MEETDAY_LISTEN"

	defaultListen = ":8080"
)

type TopLevelCommand string

const (
	MeetCmd TopLevelCommand = "meet"
)

type CmdHandler func(ctx context.Context,
	i *discordgo.Interaction) *discordgo.InteractionResponse

var topLevelCmdHdlrs = map[TopLevelCommand]CmdHandler{
	MeetCmd: meetCmdHandler,
}

type interactionServer struct {
	pubKey ed25519.PublicKey
}

func (s *interactionServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !discordgo.VerifyInteraction(r, s.pubKey) {
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
			err, string(body))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	resp, status := dispatchInteraction(r.Context(), &inter)
	if resp == nil {
		w.WriteHeader(status)
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

// dispatchInteraction answers pings and routes application commands. A nil
// response carries the HTTP status to reply with instead.
func dispatchInteraction(ctx context.Context,
	inter *discordgo.Interaction) (*discordgo.InteractionResponse, int) {

	switch inter.Type {
	case discordgo.InteractionPing:
		return &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponsePong,
		}, http.StatusOK
	case discordgo.InteractionApplicationCommand:
		name := inter.ApplicationCommandData().Name
		hdlr, ok := topLevelCmdHdlrs[TopLevelCommand(name)]
		if !ok {
			return &discordgo.InteractionResponse{
				Type: discordgo.InteractionResponseChannelMessageWithSource,
				Data: &discordgo.InteractionResponseData{
					Content: fmt.Sprintf("unknown command '%v'", name),
					Flags:   discordgo.MessageFlagsEphemeral,
				},
			}, http.StatusOK
		}
		return hdlr(ctx, inter), http.StatusOK
	}

	log.Printf("discordbot.int: unimplemented interation type %v", inter.Type)
	return nil, http.StatusNotImplemented
}

func groupOption(required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "group",
		Description: "Time group, e.g. 'Gruppe 1'",
		Required:    required,
	}
}

func broadcastOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionBoolean,
		Name:        "broadcast",
		Description: "Share with the rest of the channel instead of only to you (default is false)",
		Required:    false,
	}
}

func meetCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        string(MeetCmd),
		Description: "Meet schedule and starting orders; try /meet help to start",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(MeetHelpCmd),
				Description: "Show usage for meet",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(MeetScheduleCmd),
				Description: "Show a group's schedule",
				Options: []*discordgo.ApplicationCommandOption{
					groupOption(true), broadcastOption(),
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(MeetCurrentCmd),
				Description: "Show a group's current discipline",
				Options: []*discordgo.ApplicationCommandOption{
					groupOption(true), broadcastOption(),
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(MeetNextCmd),
				Description: "Show the discipline after a group's current one",
				Options: []*discordgo.ApplicationCommandOption{
					groupOption(true), broadcastOption(),
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(MeetOrderCmd),
				Description: "Show the starting order of a discipline",
				Options: []*discordgo.ApplicationCommandOption{
					groupOption(true),
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "discipline",
						Description: "Discipline (default is the current one)",
						Required:    false,
					},
					broadcastOption(),
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(MeetStateCmd),
				Description: "Move a discipline to a new state",
				Options: []*discordgo.ApplicationCommandOption{
					groupOption(true),
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "discipline",
						Description: "Discipline to change",
						Required:    true,
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "state",
						Description: "New state",
						Required:    true,
						Choices: []*discordgo.ApplicationCommandOptionChoice{
							{Name: "BeforeStart", Value: "BeforeStart"},
							{Name: "Active", Value: "Active"},
							{Name: "Finished", Value: "Finished"},
						},
					},
					broadcastOption(),
				},
			},
		},
	}
}

func registerSlashCommands(client *discordgo.Session, appId string,
	cmdId string) {

	cmd := meetCommand()
	if cmdId == "" {
		reg, err := client.ApplicationCommandCreate(appId, "", cmd)
		if err != nil {
			log.Printf("discordbot.reg: failed to register %v: %v", cmd.Name,
				err)
			return
		}

		log.Printf("discordbot.reg: registered %v(cmdID:%v); set %v to skip registration",
			reg.Name, reg.ID, cmdIdEnv)
		return
	}

	reg, err := client.ApplicationCommandEdit(appId, "", cmdId, cmd)
	if err != nil {
		log.Printf("discordbot.reg: failed to update %v: %v", cmd.Name, err)
		return
	}
	log.Printf("discordbot.reg: updated %v(cmdID:%v)", reg.Name, reg.ID)
}

func mustEnv(name string) string {
	val := os.Getenv(name)
	if val == "" {
		log.Fatalf("discordbot.main: %v is not set", name)
	}
	return val
}

func openStore(ctx context.Context) *store.Store {
	if bucket := os.Getenv(bucketEnv); bucket != "" {
		st, err := store.NewS3(ctx, bucket, true)
		if err != nil {
			log.Fatalf("discordbot.main: failed to open bucket %v: %v", bucket,
				err)
		}
		return st
	}

	dir := os.Getenv(storeEnv)
	if dir == "" {
		dir = internal.DefaultStoreDir
	}
	return store.NewDisk(dir)
}

func main() {
	log.SetFlags(log.Flags() &^ (log.Ldate | log.Ltime))
	ctx := context.Background()

	pubKeyBytes, err := hex.DecodeString(mustEnv(pubKeyEnv))
	if err != nil {
		log.Fatalf("discordbot.main: Failed to parse public key: %v", err)
	}
	client, err := discordgo.New("Bot " + mustEnv(tokenEnv))
	if err != nil {
		log.Fatalf("discordbot.main: Failed to initialize discord client: %v", err)
	}
	client.UserAgent = internal.UserAgent

	meetSvc = meet.NewService(openStore(ctx))
	go registerSlashCommands(client, mustEnv(appIdEnv), os.Getenv(cmdIdEnv))

	listen := os.Getenv(listenEnv)
	if listen == "" {
		listen = defaultListen
	}
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}
	log.Printf("discordbot.main: starting server on %v (%v); groups:%v",
		listen, hostname, meetSvc.Groups())

	http.Handle("/DiscordBot/Interaction",
		&interactionServer{pubKey: ed25519.PublicKey(pubKeyBytes)})
	if err := http.ListenAndServe(listen, nil); err != nil {
		log.Fatalf("discordbot.main: Serve failed: %v", err)
	}

	log.Printf("discordbot.main: exiting")
}
