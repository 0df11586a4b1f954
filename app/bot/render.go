package bot

import (
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/hrbot/app/flow"
	"github.com/m3rciful/hrbot/app/gateway"
	"github.com/m3rciful/hrbot/app/schedule"
	"github.com/m3rciful/hrbot/core/telegram/keyboard"
)

// Callback keys; payloads are noted where a handler reads one.
const (
	UniqueConfirm        = "confirm" // flow name
	UniqueBack           = "back_to_main"
	UniqueCodeOfConduct  = "code_of_conduct"
	UniqueRules          = "rules"
	UniqueInquireMeeting = "inquire_meeting"
	UniqueMeeting        = "meeting"       // meeting key
	UniqueAdminMeeting   = "admin_meeting" // meeting key
	UniqueAdminBroadcast = "admin_broadcast"
)

func mainMenu() *gateway.Markup {
	return &gateway.Markup{Reply: [][]string{
		{btnExcuse, btnLeave},
		{btnTrack, btnReferences},
		{btnPhrase, btnDhikr},
		{btnInquiries},
	}}
}

func backButton() []gateway.Button {
	return []gateway.Button{{Text: btnBack, Unique: UniqueBack}}
}

func backInline() *gateway.Markup {
	return &gateway.Markup{Inline: [][]gateway.Button{backButton()}}
}

func referencesMenu() *gateway.Markup {
	return &gateway.Markup{Inline: [][]gateway.Button{
		{{Text: btnCodeOfConduct, Unique: UniqueCodeOfConduct}},
		{{Text: btnRules, Unique: UniqueRules}},
		backButton(),
	}}
}

func inquiriesMenu() *gateway.Markup {
	return &gateway.Markup{Inline: [][]gateway.Button{
		{{Text: btnInquireMeeting, Unique: UniqueInquireMeeting}},
		backButton(),
	}}
}

func meetingsMenu() *gateway.Markup {
	rows := make([][]gateway.Button, 0, len(schedule.Meetings())+1)
	for _, m := range schedule.Meetings() {
		rows = append(rows, []gateway.Button{{Text: meetingViews[m].button, Unique: UniqueMeeting, Data: string(m)}})
	}
	return &gateway.Markup{Inline: append(rows, backButton())}
}

func adminMenu() *gateway.Markup {
	rows := make([][]gateway.Button, 0, len(schedule.Meetings())+1)
	for _, m := range schedule.Meetings() {
		rows = append(rows, []gateway.Button{{Text: meetingViews[m].admin, Unique: UniqueAdminMeeting, Data: string(m)}})
	}
	return &gateway.Markup{Inline: append(rows, []gateway.Button{{Text: btnBroadcast, Unique: UniqueAdminBroadcast}})}
}

// markupFor turns the keyboard tag of a flow reply into a concrete keyboard.
func markupFor(r flow.Reply) *gateway.Markup {
	switch r.Keyboard {
	case flow.KeyboardMain:
		return mainMenu()
	case flow.KeyboardBack:
		return &gateway.Markup{Reply: [][]string{{btnBack}}}
	case flow.KeyboardActivity:
		return &gateway.Markup{Reply: [][]string{
			{flow.ActivityInitiative, flow.ActivityMeeting},
			{flow.ActivityOther, btnBack},
		}}
	case flow.KeyboardConfirm:
		return &gateway.Markup{Inline: [][]gateway.Button{
			{{Text: btnConfirm, Unique: UniqueConfirm, Data: string(r.Flow)}},
			backButton(),
		}}
	case flow.KeyboardBackInline:
		return backInline()
	}
	return nil
}

// teleMarkup renders a transport-neutral keyboard for telebot.
func teleMarkup(m *gateway.Markup) *tele.ReplyMarkup {
	switch {
	case m == nil:
		return nil
	case m.Remove:
		return keyboard.RemoveKeyboard()
	case len(m.Inline) > 0:
		rows := make([][]keyboard.InlineBtn, len(m.Inline))
		for i, row := range m.Inline {
			rows[i] = make([]keyboard.InlineBtn, len(row))
			for j, b := range row {
				rows[i][j] = keyboard.InlineBtn{Text: b.Text, Unique: b.Unique, Data: b.Data}
			}
		}
		return keyboard.InlineButtonsRows(rows...)
	case len(m.Reply) > 0:
		return keyboard.ReplyButtons(m.Reply...)
	}
	return nil
}
