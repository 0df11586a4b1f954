package commands

import (
	tele "gopkg.in/telebot.v4"
)

// Command describes a slash command: its handler, menu text and who may see it.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	// AdminOnly commands are rejected for non-admins and only published in admin chats.
	AdminOnly bool
	// Hidden commands are routed but never published in the command menu.
	Hidden  bool
	Aliases []string
}

// Listed reports whether the command belongs in the menu shown to an admin or a regular user.
func (c Command) Listed(admin bool) bool {
	if c.Hidden || c.Handler == nil {
		return false
	}
	return admin || !c.AdminOnly
}

// Matches reports whether name is one of the command aliases, with or without the slash.
func (c Command) Matches(name string) bool {
	for _, alias := range c.Aliases {
		if alias == name || "/"+alias == name {
			return true
		}
	}
	return false
}
