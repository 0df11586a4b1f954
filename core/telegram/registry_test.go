package telegram

import (
	"testing"

	"github.com/m3rciful/hrbot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

func TestRegistryCommandMenus(t *testing.T) {
	h := func(tele.Context) error { return nil }
	reg := NewRegistry()
	reg.RegisterCommand("/start", commands.Command{Handler: h, Description: "start"})
	reg.RegisterCommand("/export", commands.Command{Handler: h, Description: "export", AdminOnly: true})
	reg.RegisterCommand("/debug", commands.Command{Handler: h, Description: "debug", Hidden: true})
	reg.RegisterCommand("nostart", commands.Command{Handler: h, Description: "skipped"})
	reg.RegisterCommand("/start", commands.Command{Handler: h, Description: "duplicate"})

	public := reg.ListCommands(false)
	if len(public) != 1 || public[0].Text != "/start" || public[0].Description != "start" {
		t.Fatalf("public menu = %+v", public)
	}
	admin := reg.ListCommands(true)
	if len(admin) != 2 || admin[0].Text != "/export" || admin[1].Text != "/start" {
		t.Fatalf("admin menu = %+v", admin)
	}
	if _, _, ok := reg.LookupCommand("debug"); !ok {
		t.Fatal("hidden command should still be routable")
	}
}

func TestRegistryLookupAlias(t *testing.T) {
	h := func(tele.Context) error { return nil }
	reg := NewRegistry()
	reg.RegisterCommand("/myrequests", commands.Command{Handler: h, Description: "track", Aliases: []string{"track"}})

	key, _, ok := reg.LookupCommand("/track")
	if !ok || key != "/myrequests" {
		t.Fatalf("lookup alias = %q, %v", key, ok)
	}
	if _, _, ok := reg.LookupCommand("/missing"); ok {
		t.Fatal("unexpected command match")
	}
}

func TestRegistryCallbacks(t *testing.T) {
	h := func(tele.Context) error { return nil }
	reg := NewRegistry()
	if err := reg.RegisterCallback("confirm", h); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.RegisterCallback("confirm", h); err == nil {
		t.Fatal("expected duplicate error")
	}
	if err := reg.RegisterCallback("", h); err == nil {
		t.Fatal("expected error for empty key")
	}
	if _, ok := reg.GetCallback("confirm"); !ok {
		t.Fatal("callback not found")
	}
	if keys := reg.ListCallbacks(); len(keys) != 1 || keys[0] != "confirm" {
		t.Fatalf("keys = %v", keys)
	}
	if reg.CallbackNotFound() == nil {
		t.Fatal("default not-found handler missing")
	}
}
