package bot

import "strings"

// CommandKind tags a decoded text message.
type CommandKind int

const (
	// CmdAnswer is free text for the open form.
	CmdAnswer CommandKind = iota
	CmdStartExcuse
	CmdStartLeave
	CmdTrack
	CmdReferences
	CmdPhrase
	CmdDhikr
	CmdInquiries
	CmdCancel
)

func (k CommandKind) String() string {
	switch k {
	case CmdAnswer:
		return "answer"
	case CmdStartExcuse:
		return "start_excuse"
	case CmdStartLeave:
		return "start_leave"
	case CmdTrack:
		return "track"
	case CmdReferences:
		return "references"
	case CmdPhrase:
		return "phrase"
	case CmdDhikr:
		return "dhikr"
	case CmdInquiries:
		return "inquiries"
	case CmdCancel:
		return "cancel"
	}
	return "unknown"
}

// Command is one text message after decoding.
type Command struct {
	Kind CommandKind
	// Text is the verbatim message, kept for answers.
	Text string
}

var menu = map[string]CommandKind{
	btnExcuse:      CmdStartExcuse,
	btnLeave:       CmdStartLeave,
	btnTrack:       CmdTrack,
	btnReferences:  CmdReferences,
	btnPhrase:      CmdPhrase,
	btnDhikr:       CmdDhikr,
	btnDhikrLegacy: CmdDhikr,
	btnInquiries:   CmdInquiries,
	btnBack:        CmdCancel,
}

// Decode maps a message onto a command. Menu labels win over the open form;
// anything else is an answer.
func Decode(text string) Command {
	if kind, ok := menu[strings.TrimSpace(text)]; ok {
		return Command{Kind: kind, Text: text}
	}
	return Command{Kind: CmdAnswer, Text: text}
}
