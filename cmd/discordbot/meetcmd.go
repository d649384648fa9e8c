/* Copyright © 2026 Mike Brown. All Rights Reserved.
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

	"github.com/mikeb26/meetday/meet"
	"github.com/mikeb26/meetday/schedule"
	"github.com/mikeb26/meetday/store"
)

type MeetSubCommand string

const (
	MeetHelpCmd     MeetSubCommand = "help"
	MeetScheduleCmd MeetSubCommand = "schedule"
	MeetCurrentCmd  MeetSubCommand = "current"
	MeetNextCmd     MeetSubCommand = "next"
	MeetOrderCmd    MeetSubCommand = "order"
	MeetStateCmd    MeetSubCommand = "state"
)

var meetSubCmdHdlrs = map[MeetSubCommand]CmdHandler{
	MeetHelpCmd:     meetHelpCmdHandler,
	MeetScheduleCmd: meetScheduleCmdHandler,
	MeetCurrentCmd:  meetCurrentCmdHandler,
	MeetNextCmd:     meetNextCmdHandler,
	MeetOrderCmd:    meetOrderCmdHandler,
	MeetStateCmd:    meetStateCmdHandler,
}

// meetSvc serves every /meet subcommand; main wires it to the configured
// store.
var meetSvc *meet.Service

func meetCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	data := inter.ApplicationCommandData()
	hdlr := meetHelpCmdHandler
	if len(data.Options) > 0 {
		if subName := data.Options[0].Name; subName != "" {
			h, ok := meetSubCmdHdlrs[MeetSubCommand(subName)]
			if ok {
				hdlr = h
			}
		}
	}
	return hdlr(ctx, inter)
}

func newResponse() *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	}
}

// subCmdOptions collects the string options of the invoked subcommand and
// its broadcast flag.
func subCmdOptions(inter *discordgo.Interaction) (map[string]string, bool) {
	opts := make(map[string]string)
	broadcast := false

	data := inter.ApplicationCommandData()
	if len(data.Options) == 0 {
		return opts, broadcast
	}
	for _, opt := range data.Options[0].Options {
		switch opt.Type {
		case discordgo.ApplicationCommandOptionBoolean:
			if opt.Name == "broadcast" {
				broadcast = opt.BoolValue()
			}
		case discordgo.ApplicationCommandOptionString:
			opts[opt.Name] = strings.TrimSpace(opt.StringValue())
		}
	}
	return opts, broadcast
}

// errorContent turns a service error into a message for the official who
// ran the command.
func errorContent(group string, err error) string {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fmt.Sprintf("Unknown group '%v'. Known groups: %v", group,
			strings.Join(meetSvc.Groups(), ", "))
	case errors.Is(err, schedule.ErrNotFound):
		return fmt.Sprintf("Unknown discipline in %v: %v", group, err)
	case errors.Is(err, schedule.ErrNoNextDiscipline):
		return fmt.Sprintf("%v has no further discipline.", group)
	case errors.Is(err, schedule.ErrAlreadyFinished):
		return fmt.Sprintf("Discipline already finished: %v", err)
	case errors.Is(err, schedule.ErrInvalidTransition):
		return fmt.Sprintf("States only move forward: %v", err)
	case errors.Is(err, schedule.ErrUnknownState):
		return fmt.Sprintf("%v; use BeforeStart, Active or Finished", err)
	}
	return fmt.Sprintf("Error: %v", err)
}

//go:embed help.md
var helpText string

func meetHelpCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := newResponse()
	resp.Data.Content = truncateContent(helpText)
	return resp
}

func meetScheduleCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := newResponse()
	opts, broadcast := subCmdOptions(inter)
	group := opts["group"]

	out, err := meetSvc.Schedule(group)
	if err != nil {
		resp.Data.Content = errorContent(group, err)
		log.Printf("discordbot.schedule: %v", resp.Data.Content)
		return resp
	}
	resp.Data.Content = truncateContent(codeBlock(out))
	if broadcast {
		resp.Data.Flags = 0
	}

	return resp
}

func disciplineEmbed(title string, group string,
	d schedule.Discipline) *discordgo.MessageEmbed {

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**Group**: %v\n", group))
	sb.WriteString(fmt.Sprintf("**Start**: %v\n", d.StartTime.Format("Mon 15:04")))
	if d.Location != "" {
		sb.WriteString(fmt.Sprintf("**Location**: %v\n", d.Location))
	}
	sb.WriteString(fmt.Sprintf("**State**: %v\n", d.State))
	sb.WriteString(fmt.Sprintf("**Order**: %v\n", d.OrderKind))

	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%v: %v", title, d.Name),
		Type:        discordgo.EmbedTypeRich,
		Description: sb.String(),
	}
}

func meetCurrentCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := newResponse()
	opts, broadcast := subCmdOptions(inter)
	group := opts["group"]

	d, err := meetSvc.CurrentDiscipline(group)
	if err != nil {
		resp.Data.Content = errorContent(group, err)
		log.Printf("discordbot.current: %v", resp.Data.Content)
		return resp
	}
	resp.Data.Embeds = []*discordgo.MessageEmbed{
		disciplineEmbed("Current", group, d),
	}
	if broadcast {
		resp.Data.Flags = 0
	}

	return resp
}

func meetNextCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := newResponse()
	opts, broadcast := subCmdOptions(inter)
	group := opts["group"]

	d, err := meetSvc.NextDiscipline(group)
	if err != nil {
		resp.Data.Content = errorContent(group, err)
		log.Printf("discordbot.next: %v", resp.Data.Content)
		return resp
	}
	resp.Data.Embeds = []*discordgo.MessageEmbed{
		disciplineEmbed("Next", group, d),
	}
	if broadcast {
		resp.Data.Flags = 0
	}

	return resp
}

func meetOrderCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := newResponse()
	opts, broadcast := subCmdOptions(inter)
	group := opts["group"]

	discipline := opts["discipline"]
	if discipline == "" {
		cur, err := meetSvc.CurrentDiscipline(group)
		if err != nil {
			resp.Data.Content = errorContent(group, err)
			log.Printf("discordbot.order: %v", resp.Data.Content)
			return resp
		}
		discipline = cur.Name
	}

	order, err := meetSvc.StartingOrder(group, discipline)
	if err != nil {
		resp.Data.Content = errorContent(group, err)
		log.Printf("discordbot.order: %v", resp.Data.Content)
		return resp
	}
	resp.Data.Content = truncateContent(fmt.Sprintf("**%v** (%v)\n%v",
		discipline, group, codeBlock(schedule.BuildOrderOutput(order))))
	if broadcast {
		resp.Data.Flags = 0
	}

	return resp
}

func meetStateCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := newResponse()
	opts, broadcast := subCmdOptions(inter)
	group := opts["group"]

	if opts["discipline"] == "" || opts["state"] == "" {
		resp.Data.Content = "Please provide a discipline and a state."
		log.Printf("discordbot.state: %v", resp.Data.Content)
		return resp
	}

	msg, err := meetSvc.ChangeDisciplineState(group, opts["discipline"],
		opts["state"])
	if err != nil {
		resp.Data.Content = errorContent(group, err)
		log.Printf("discordbot.state: %v", resp.Data.Content)
		return resp
	}
	resp.Data.Content = msg
	if broadcast {
		resp.Data.Flags = 0
	}

	return resp
}

func codeBlock(s string) string {
	return fmt.Sprintf("```\n%v```", s)
}

func truncateContent(s string) string {
	const MsgLimit = 1988 // keep space for newlines and markdown
	runes := []rune(s)
	if len(runes) > MsgLimit {
		s = fmt.Sprintf("%v...", string(runes[:MsgLimit]))
	}
	return s
}
