package bot

import (
	"strings"
	"testing"

	"github.com/m3rciful/hrbot/app/flow"
	"github.com/m3rciful/hrbot/app/gateway"
	"github.com/m3rciful/hrbot/app/schedule"
)

func TestMarkupFor(t *testing.T) {
	if m := markupFor(flow.Reply{Keyboard: flow.KeyboardNone}); m != nil {
		t.Fatalf("none keyboard = %+v", m)
	}
	if m := markupFor(flow.Reply{Keyboard: flow.KeyboardMain}); len(m.Reply) != 4 || m.Reply[0][0] != btnExcuse {
		t.Fatalf("main keyboard = %+v", m)
	}
	if m := markupFor(flow.Reply{Keyboard: flow.KeyboardBack}); len(m.Reply) != 1 || m.Reply[0][0] != btnBack {
		t.Fatalf("back keyboard = %+v", m)
	}
	act := markupFor(flow.Reply{Keyboard: flow.KeyboardActivity})
	if act.Reply[0][0] != flow.ActivityInitiative || act.Reply[1][0] != flow.ActivityOther || act.Reply[1][1] != btnBack {
		t.Fatalf("activity keyboard = %+v", act)
	}
	conf := markupFor(flow.Reply{Keyboard: flow.KeyboardConfirm, Flow: flow.FlowLeave})
	if conf.Inline[0][0].Unique != UniqueConfirm || conf.Inline[0][0].Data != string(flow.FlowLeave) {
		t.Fatalf("confirm keyboard = %+v", conf)
	}
	if conf.Inline[1][0].Unique != UniqueBack {
		t.Fatalf("confirm keyboard lacks back: %+v", conf)
	}
	if m := markupFor(flow.Reply{Keyboard: flow.KeyboardBackInline}); m.Inline[0][0].Unique != UniqueBack {
		t.Fatalf("inline back = %+v", m)
	}
}

func TestMeetingMenus(t *testing.T) {
	view := meetingsMenu()
	admin := adminMenu()
	n := len(schedule.Meetings())
	if len(view.Inline) != n+1 || len(admin.Inline) != n+1 {
		t.Fatalf("rows: view=%d admin=%d", len(view.Inline), len(admin.Inline))
	}
	for i, m := range schedule.Meetings() {
		if view.Inline[i][0].Unique != UniqueMeeting || view.Inline[i][0].Data != string(m) {
			t.Fatalf("view row %d = %+v", i, view.Inline[i])
		}
		if admin.Inline[i][0].Unique != UniqueAdminMeeting || admin.Inline[i][0].Data != string(m) {
			t.Fatalf("admin row %d = %+v", i, admin.Inline[i])
		}
	}
	if admin.Inline[n][0].Unique != UniqueAdminBroadcast {
		t.Fatalf("last admin row = %+v", admin.Inline[n])
	}
}

func TestTeleMarkup(t *testing.T) {
	if teleMarkup(nil) != nil {
		t.Fatal("nil markup must render to nil")
	}
	if rm := teleMarkup(&gateway.Markup{Remove: true}); rm == nil || !rm.RemoveKeyboard {
		t.Fatalf("remove = %+v", rm)
	}

	inline := teleMarkup(&gateway.Markup{Inline: [][]gateway.Button{
		{{Text: "قبول", Unique: "approve", Data: "7"}, {Text: "رفض", Unique: "reject", Data: "7"}},
	}})
	if len(inline.InlineKeyboard) != 1 || len(inline.InlineKeyboard[0]) != 2 {
		t.Fatalf("inline = %+v", inline.InlineKeyboard)
	}
	if got := inline.InlineKeyboard[0][0]; got.Text != "قبول" || got.Unique != "approve" || !strings.HasSuffix(got.Data, "7") {
		t.Fatalf("approve button = %+v", got)
	}

	reply := teleMarkup(mainMenu())
	if len(reply.ReplyKeyboard) != 4 || reply.ReplyKeyboard[3][0].Text != btnInquiries || !reply.ResizeKeyboard {
		t.Fatalf("reply = %+v", reply.ReplyKeyboard)
	}
}
