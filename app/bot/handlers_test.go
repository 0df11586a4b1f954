package bot

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/m3rciful/hrbot/app/broadcast"
	"github.com/m3rciful/hrbot/app/flow"
	"github.com/m3rciful/hrbot/app/gateway"
	"github.com/m3rciful/hrbot/app/gateway/gatewaytest"
	"github.com/m3rciful/hrbot/app/moderation"
	"github.com/m3rciful/hrbot/app/requests"
	"github.com/m3rciful/hrbot/app/schedule"
	"github.com/m3rciful/hrbot/app/users"
	"github.com/m3rciful/hrbot/core/telegram/state"
)

const (
	adminID = int64(100)
	userID  = int64(42)
)

type adminSet map[int64]bool

func (a adminSet) IsAdmin(id int64) bool { return a[id] }

type harness struct {
	h      *handlers
	gw     *gatewaytest.Recorder
	ledger *requests.MemoryLedger
	users  *users.MemoryRegistry
	sched  *schedule.MemoryStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gw := gatewaytest.New()
	ledger := requests.NewMemoryLedger()
	reg := users.NewMemoryRegistry()
	sched := schedule.NewMemoryStore()
	admins := adminSet{adminID: true}
	mod := moderation.NewDispatcher(moderation.Options{
		Gateway: gw, Ledger: ledger, AdminIDs: []int64{adminID}, Admins: admins,
	})
	engine := flow.New(flow.Deps{
		Sessions:    state.NewMemoryStore(state.MemoryOptions{}),
		Ledger:      ledger,
		Users:       reg,
		Schedule:    sched,
		Notifier:    mod,
		Broadcaster: broadcast.New(gw, reg, time.Millisecond),
		Admins:      admins,
	})
	return &harness{
		h: &handlers{
			engine: engine, mod: mod, ledger: ledger, schedule: sched, users: reg,
			gw: gw, admins: admins,
			pick: func(int) int { return 2 },
			now:  func() time.Time { return time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC) },
		},
		gw: gw, ledger: ledger, users: reg, sched: sched,
	}
}

func (hs *harness) say(t *testing.T, from int64, text string) output {
	t.Helper()
	out, handled, err := hs.h.onText(context.Background(), from, Decode(text))
	if err != nil {
		t.Fatalf("onText(%q): %v", text, err)
	}
	if !handled {
		t.Fatalf("onText(%q) not handled", text)
	}
	return out
}

func TestExcuseThroughMenu(t *testing.T) {
	hs := newHarness(t)

	out := hs.say(t, userID, btnExcuse)
	if out.Markup == nil || out.Markup.Reply[0][0] != btnBack {
		t.Fatalf("name step markup = %+v", out.Markup)
	}
	out = hs.say(t, userID, "سارة")
	if !strings.Contains(out.Text, "سارة") || out.Markup.Reply[0][0] != flow.ActivityInitiative {
		t.Fatalf("activity step = %+v", out)
	}
	out = hs.say(t, userID, flow.ActivityInitiative)
	if len(out.Markup.Inline) == 0 || out.Markup.Inline[0][0].Data != string(flow.FlowExcuse) {
		t.Fatalf("confirm step markup = %+v", out.Markup)
	}

	done, _, err := hs.h.runFlow(context.Background(), flow.Input{Kind: flow.InputConfirm, UserID: userID, Flow: flow.FlowExcuse})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if !strings.Contains(done.Text, "#1") {
		t.Fatalf("confirmation = %q", done.Text)
	}
	if sent := hs.gw.SentTo(adminID); len(sent) != 1 || !strings.Contains(sent[0].Text, "طلب اعتذار جديد #1") {
		t.Fatalf("admin messages = %+v", sent)
	}

	track := hs.say(t, userID, btnTrack)
	for _, want := range []string{"#1", requests.KindExcuse.Label(), requests.StatusPending.Label()} {
		if !strings.Contains(track.Text, want) {
			t.Fatalf("track text %q lacks %q", track.Text, want)
		}
	}
}

func TestMenuButtonsDuringForm(t *testing.T) {
	hs := newHarness(t)
	hs.say(t, userID, btnLeave)

	out := hs.say(t, userID, btnPhrase)
	if !strings.Contains(out.Text, motivationalPhrases[2]) {
		t.Fatalf("phrase = %q", out.Text)
	}
	out = hs.say(t, userID, btnDhikrLegacy)
	if !strings.Contains(out.Text, "سبحان الله") {
		t.Fatalf("dhikr = %q", out.Text)
	}

	out = hs.say(t, userID, btnBack)
	if out.Text != flow.TextBackToMain || len(out.Markup.Reply) != 4 {
		t.Fatalf("cancel = %+v", out)
	}
	if _, handled, err := hs.h.onText(context.Background(), userID, Decode("كلام حر")); handled || err != nil {
		t.Fatalf("free text after cancel: handled=%v err=%v", handled, err)
	}
}

func TestStaticMenusRegisterUser(t *testing.T) {
	hs := newHarness(t)
	if out := hs.say(t, 7, btnReferences); out.Markup.Inline[0][0].Unique != UniqueCodeOfConduct {
		t.Fatalf("references = %+v", out.Markup)
	}
	if out := hs.say(t, 8, btnInquiries); out.Markup.Inline[0][0].Unique != UniqueInquireMeeting {
		t.Fatalf("inquiries = %+v", out.Markup)
	}
	if n, _ := hs.users.Count(context.Background()); n != 2 {
		t.Fatalf("registered users = %d, want 2", n)
	}
}

func TestTrackEmpty(t *testing.T) {
	hs := newHarness(t)
	out, err := hs.h.track(context.Background(), userID)
	if err != nil {
		t.Fatalf("track: %v", err)
	}
	if out.Text != textTrackEmpty {
		t.Fatalf("track = %q", out.Text)
	}
}

func TestTrackListsNewest(t *testing.T) {
	hs := newHarness(t)
	ctx := context.Background()
	for i := 0; i < trackLimit+3; i++ {
		if _, err := hs.ledger.Create(ctx, requests.Draft{
			SubmitterID: userID, SubmitterName: "<b>x</b>", Kind: requests.KindLeave, Reason: "r", Details: "d",
		}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	out, err := hs.h.track(ctx, userID)
	if err != nil {
		t.Fatalf("track: %v", err)
	}
	if lines := strings.Count(out.Text, "\n"); lines != trackLimit {
		t.Fatalf("track lines = %d, want %d", lines, trackLimit)
	}
	if !strings.Contains(out.Text, "#13") || strings.Contains(out.Text, "#3 ") {
		t.Fatalf("track should list the newest requests: %q", out.Text)
	}
}

func TestMeetingView(t *testing.T) {
	hs := newHarness(t)
	ctx := context.Background()

	out, err := hs.h.meetingView(ctx, schedule.MeetingCentral)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if !strings.Contains(out.Text, schedule.Unset) || out.Markup.Inline[0][0].Unique != UniqueBack {
		t.Fatalf("unset view = %+v", out)
	}

	if err := hs.sched.Set(ctx, schedule.MeetingCentral, "2024-06-01 <18:00>"); err != nil {
		t.Fatalf("set: %v", err)
	}
	out, _ = hs.h.meetingView(ctx, schedule.MeetingCentral)
	if !strings.Contains(out.Text, "موعد الفريق المركزي: 2024-06-01 &lt;18:00&gt;") {
		t.Fatalf("view = %q", out.Text)
	}
}

func TestAdminMeetingThroughEngine(t *testing.T) {
	hs := newHarness(t)
	ctx := context.Background()
	start := flow.Input{Kind: flow.InputStart, UserID: adminID, Flow: flow.FlowMeetingDate, Meeting: schedule.MeetingGeneral}
	if _, _, err := hs.h.runFlow(ctx, start); err != nil {
		t.Fatalf("start: %v", err)
	}
	out := hs.say(t, adminID, "2024-07-01 18:00")
	if len(out.Markup.Reply) != 4 {
		t.Fatalf("saved reply = %+v", out)
	}
	if got, _ := hs.sched.Get(ctx, schedule.MeetingGeneral); got != "2024-07-01 18:00" {
		t.Fatalf("meeting = %q", got)
	}
}

func TestSendWithoutRuntime(t *testing.T) {
	g := &teleGateway{}
	_, err := g.Send(context.Background(), 1, "x", nil)
	var de *gateway.DeliveryError
	if !errors.As(err, &de) || de.Recipient != 1 || !errors.Is(err, errNotStarted) {
		t.Fatalf("err = %v", err)
	}
	if err := g.SendDocument(context.Background(), 1, "a.xlsx", "", strings.NewReader("")); !errors.Is(err, errNotStarted) {
		t.Fatalf("document err = %v", err)
	}
}

func TestAdminPanelShowsAudienceAndSchedule(t *testing.T) {
	hs := newHarness(t)
	ctx := context.Background()
	for _, id := range []int64{userID, adminID, 7} {
		if err := hs.users.Add(ctx, id); err != nil {
			t.Fatalf("add user: %v", err)
		}
	}
	if err := hs.sched.Set(ctx, schedule.MeetingCentral, "2024-06-01 <18:00>"); err != nil {
		t.Fatalf("set meeting: %v", err)
	}

	out, err := hs.h.adminPanel(ctx)
	if err != nil {
		t.Fatalf("admin panel: %v", err)
	}
	if !strings.Contains(out.Text, "عدد المستخدمين: 3") {
		t.Fatalf("panel missing user count: %q", out.Text)
	}
	if !strings.Contains(out.Text, schedule.MeetingCentral.Label()+": 2024-06-01 &lt;18:00&gt;") {
		t.Fatalf("panel missing escaped meeting date: %q", out.Text)
	}
	if strings.Count(out.Text, "•") != 4 {
		t.Fatalf("expected every meeting listed: %q", out.Text)
	}
	if out.Markup == nil || len(out.Markup.Inline) == 0 {
		t.Fatal("admin actions missing")
	}
}
