package flow

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/m3rciful/hrbot/app/broadcast"
	"github.com/m3rciful/hrbot/app/requests"
	"github.com/m3rciful/hrbot/app/schedule"
	"github.com/m3rciful/hrbot/app/users"
	"github.com/m3rciful/hrbot/core/telegram/state"
)

const (
	admin = int64(900)
	ahmad = int64(101)
	sara  = int64(102)
)

type adminSet map[int64]bool

func (a adminSet) IsAdmin(id int64) bool { return a[id] }

type notifier struct {
	mu   sync.Mutex
	reqs []requests.Request
	err  error
}

func (n *notifier) NotifyAdmins(_ context.Context, r requests.Request) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reqs = append(n.reqs, r)
	return n.err
}

type broadcaster struct {
	texts  []string
	result broadcast.Result
	err    error
}

func (b *broadcaster) Send(_ context.Context, text string) (broadcast.Result, error) {
	b.texts = append(b.texts, text)
	if b.result == (broadcast.Result{}) && b.err == nil {
		return broadcast.Result{Sent: 4}, nil
	}
	return b.result, b.err
}

type harness struct {
	eng      *Engine
	sessions *state.MemoryStore
	ledger   *requests.MemoryLedger
	users    *users.MemoryRegistry
	schedule *schedule.MemoryStore
	notes    *notifier
	bcast    *broadcaster
}

func newHarness() *harness {
	h := &harness{
		sessions: state.NewMemoryStore(state.MemoryOptions{}),
		ledger:   requests.NewMemoryLedger(),
		users:    users.NewMemoryRegistry(),
		schedule: schedule.NewMemoryStore(),
		notes:    &notifier{},
		bcast:    &broadcaster{},
	}
	h.eng = New(Deps{
		Sessions:    h.sessions,
		Ledger:      h.ledger,
		Users:       h.users,
		Schedule:    h.schedule,
		Notifier:    h.notes,
		Broadcaster: h.bcast,
		Admins:      adminSet{admin: true},
	})
	return h
}

func (h *harness) do(t *testing.T, in Input) Reply {
	t.Helper()
	r, err := h.eng.Handle(context.Background(), in)
	if err != nil {
		t.Fatalf("handle %s: %v", in.Kind, err)
	}
	return r
}

func (h *harness) step(t *testing.T, user int64) state.State {
	t.Helper()
	s, ok, _ := h.sessions.Get(context.Background(), user)
	if !ok {
		return StateIdle
	}
	return s.State
}

func start(user int64, f Flow) Input    { return Input{Kind: InputStart, UserID: user, Flow: f} }
func answer(user int64, s string) Input { return Input{Kind: InputAnswer, UserID: user, Text: s} }
func confirm(user int64) Input          { return Input{Kind: InputConfirm, UserID: user} }
func cancel(user int64) Input           { return Input{Kind: InputCancel, UserID: user} }

func TestExcuseWithListedActivity(t *testing.T) {
	h := newHarness()
	if r := h.do(t, start(ahmad, FlowExcuse)); r.Keyboard != KeyboardBack {
		t.Fatalf("first prompt keyboard = %v", r.Keyboard)
	}
	r := h.do(t, answer(ahmad, "Ahmad Ali"))
	if r.Keyboard != KeyboardActivity || !strings.Contains(r.Text, "Ahmad Ali") {
		t.Fatalf("activity prompt = %+v", r)
	}
	r = h.do(t, answer(ahmad, ActivityMeeting))
	if r.Keyboard != KeyboardConfirm || r.Flow != FlowExcuse || h.step(t, ahmad) != ExcuseConfirm {
		t.Fatalf("confirm prompt = %+v at %s", r, h.step(t, ahmad))
	}

	r = h.do(t, confirm(ahmad))
	if !strings.Contains(r.Text, "#1") {
		t.Fatalf("submitted reply = %q", r.Text)
	}
	req, err := h.ledger.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if req.Kind != requests.KindExcuse || !req.Pending() || req.SubmitterID != ahmad || !strings.Contains(req.Details, ActivityMeeting) {
		t.Fatalf("request = %+v", req)
	}
	if len(h.notes.reqs) != 1 || h.notes.reqs[0].ID != req.ID {
		t.Fatalf("notifications = %+v", h.notes.reqs)
	}
	if h.step(t, ahmad) != StateIdle {
		t.Fatal("session survived confirmation")
	}
}

func TestExcuseOtherAsksForReason(t *testing.T) {
	h := newHarness()
	h.do(t, start(ahmad, FlowExcuse))
	h.do(t, answer(ahmad, "أحمد"))
	h.do(t, answer(ahmad, ActivityOther))
	if h.step(t, ahmad) != ExcuseReason {
		t.Fatalf("step = %s, want reason", h.step(t, ahmad))
	}
	r := h.do(t, answer(ahmad, "<سفر>"))
	if !strings.Contains(r.Text, "&lt;سفر&gt;") {
		t.Fatalf("summary must escape answers: %q", r.Text)
	}
	h.do(t, confirm(ahmad))
	req, _ := h.ledger.Get(context.Background(), 1)
	if req.Reason != "<سفر>" || req.Details != ActivityOther {
		t.Fatalf("request = %+v", req)
	}
}

func TestLeaveFlow(t *testing.T) {
	h := newHarness()
	h.do(t, start(sara, FlowLeave))
	for _, a := range []string{"Sara", "family matters", "3", "2024-01-01", "2024-01-04"} {
		h.do(t, answer(sara, a))
	}
	if h.step(t, sara) != LeaveConfirm {
		t.Fatalf("step = %s", h.step(t, sara))
	}
	h.do(t, Input{Kind: InputConfirm, UserID: sara, Flow: FlowLeave})

	req, err := h.ledger.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	d := requests.ParseLeaveDetails(req.Details)
	if req.Kind != requests.KindLeave || req.Reason != "family matters" || d.Duration != "3" ||
		d.Start != "2024-01-01" || d.End != "2024-01-04" || req.Status != requests.StatusPending {
		t.Fatalf("request = %+v details = %+v", req, d)
	}
}

func TestCancelClearsSessionAtEveryStep(t *testing.T) {
	flows := map[Flow][]string{
		FlowExcuse: {"أحمد", ActivityOther, "سبب"},
		FlowLeave:  {"سارة", "سفر", "2", "2024-01-01", "2024-01-02"},
	}
	for f, answers := range flows {
		for stop := 0; stop <= len(answers); stop++ {
			h := newHarness()
			h.do(t, start(ahmad, f))
			for _, a := range answers[:stop] {
				h.do(t, answer(ahmad, a))
			}
			r := h.do(t, cancel(ahmad))
			if r.Text != TextBackToMain || r.Keyboard != KeyboardMain {
				t.Fatalf("%s/%d: cancel reply = %+v", f, stop, r)
			}
			if h.step(t, ahmad) != StateIdle {
				t.Fatalf("%s/%d: session not cleared", f, stop)
			}
			if all, _ := h.ledger.List(context.Background()); len(all) != 0 {
				t.Fatalf("%s/%d: cancel saved a request", f, stop)
			}
		}
	}
}

func TestAnswerAfterCancelIsNotPartOfOldFlow(t *testing.T) {
	h := newHarness()
	h.do(t, start(sara, FlowLeave))
	h.do(t, answer(sara, "Sara"))
	h.do(t, cancel(sara))

	_, err := h.eng.Handle(context.Background(), answer(sara, "family matters"))
	if !errors.Is(err, ErrNoSession) {
		t.Fatalf("err = %v, want ErrNoSession", err)
	}
}

func TestStartingAFlowDiscardsTheOpenOne(t *testing.T) {
	h := newHarness()
	h.do(t, start(ahmad, FlowLeave))
	h.do(t, answer(ahmad, "أحمد"))
	h.do(t, start(ahmad, FlowExcuse))
	if h.step(t, ahmad) != ExcuseName {
		t.Fatalf("step = %s, want fresh excuse", h.step(t, ahmad))
	}
	s, _, _ := h.sessions.Get(context.Background(), ahmad)
	if len(s.Fields) != 0 {
		t.Fatalf("old answers leaked: %v", s.Fields)
	}
}

func TestConfirmWithoutValidSessionRestarts(t *testing.T) {
	h := newHarness()
	if r := h.do(t, confirm(ahmad)); r.Text != TextRestart {
		t.Fatalf("confirm without session = %+v", r)
	}

	// a session at the confirm step whose name went missing
	_ = h.sessions.Put(context.Background(), state.Session{
		UserID: ahmad, State: ExcuseConfirm, Fields: map[string]string{fieldActivity: ActivityMeeting},
	})
	if r := h.do(t, confirm(ahmad)); r.Text != TextRestart {
		t.Fatalf("confirm without name = %+v", r)
	}
	if h.step(t, ahmad) != StateIdle {
		t.Fatal("broken session kept")
	}

	// confirm pressed before the form is complete
	h.do(t, start(ahmad, FlowLeave))
	h.do(t, answer(ahmad, "أحمد"))
	if r := h.do(t, confirm(ahmad)); r.Text != TextRestart {
		t.Fatalf("early confirm = %+v", r)
	}
	if all, _ := h.ledger.List(context.Background()); len(all) != 0 {
		t.Fatalf("fallback created requests: %v", all)
	}
}

func TestConfirmForAnotherFlowRestarts(t *testing.T) {
	h := newHarness()
	h.do(t, start(ahmad, FlowExcuse))
	h.do(t, answer(ahmad, "أحمد"))
	h.do(t, answer(ahmad, ActivityInitiative))
	if r := h.do(t, Input{Kind: InputConfirm, UserID: ahmad, Flow: FlowLeave}); r.Text != TextRestart {
		t.Fatalf("stale confirm = %+v", r)
	}
}

func TestTextAtConfirmStepKeepsSession(t *testing.T) {
	h := newHarness()
	h.do(t, start(ahmad, FlowExcuse))
	h.do(t, answer(ahmad, "أحمد"))
	h.do(t, answer(ahmad, ActivityInitiative))
	r := h.do(t, answer(ahmad, "نعم"))
	if r.Text != TextUseButtons || r.Keyboard != KeyboardConfirm || h.step(t, ahmad) != ExcuseConfirm {
		t.Fatalf("reply = %+v step = %s", r, h.step(t, ahmad))
	}
}

func TestNotifierFailureDoesNotReachSubmitter(t *testing.T) {
	h := newHarness()
	h.notes.err = errors.New("admin unreachable")
	h.do(t, start(ahmad, FlowExcuse))
	h.do(t, answer(ahmad, "أحمد"))
	h.do(t, answer(ahmad, ActivityInitiative))
	if r := h.do(t, confirm(ahmad)); !strings.Contains(r.Text, "#1") {
		t.Fatalf("reply = %q", r.Text)
	}
}

func TestAdminMeetingDate(t *testing.T) {
	h := newHarness()
	r := h.do(t, Input{Kind: InputStart, UserID: ahmad, Flow: FlowMeetingDate, Meeting: schedule.MeetingSupport1})
	if r.Text != TextNotAdmin || h.step(t, ahmad) != StateIdle {
		t.Fatalf("non-admin start = %+v", r)
	}

	r = h.do(t, Input{Kind: InputStart, UserID: admin, Flow: FlowMeetingDate, Meeting: schedule.MeetingSupport1})
	if r.Keyboard != KeyboardBackInline || !strings.Contains(r.Text, schedule.MeetingSupport1.Label()) {
		t.Fatalf("prompt = %+v", r)
	}
	r = h.do(t, answer(admin, "2024-05-01 18:00"))
	if r.Keyboard != KeyboardMain || h.step(t, admin) != StateIdle {
		t.Fatalf("saved reply = %+v", r)
	}
	if v, _ := h.schedule.Get(context.Background(), schedule.MeetingSupport1); v != "2024-05-01 18:00" {
		t.Fatalf("meeting = %q", v)
	}
}

func TestAdminBroadcast(t *testing.T) {
	h := newHarness()
	h.do(t, start(admin, FlowBroadcast))
	r := h.do(t, answer(admin, "اجتماع طارئ"))
	if len(h.bcast.texts) != 1 || h.bcast.texts[0] != "اجتماع طارئ" || !strings.Contains(r.Text, "4") {
		t.Fatalf("broadcast = %v reply = %q", h.bcast.texts, r.Text)
	}
}

func TestAdminBroadcastReportsFailures(t *testing.T) {
	h := newHarness()
	h.bcast.result = broadcast.Result{Sent: 3, Failed: 2}
	h.do(t, start(admin, FlowBroadcast))
	r := h.do(t, answer(admin, "تذكير"))
	if !strings.Contains(r.Text, "3") || !strings.Contains(r.Text, "2") {
		t.Fatalf("reply = %q, want sent and failed counts", r.Text)
	}
}

func TestAdminBroadcastInterrupted(t *testing.T) {
	h := newHarness()
	h.bcast.result = broadcast.Result{Sent: 1}
	h.bcast.err = context.Canceled
	h.do(t, start(admin, FlowBroadcast))
	r := h.do(t, answer(admin, "تذكير"))
	if !strings.Contains(r.Text, "توقف") || r.Keyboard != KeyboardMain {
		t.Fatalf("reply = %+v, want interrupted notice", r)
	}
	if h.step(t, admin) != StateIdle {
		t.Fatal("session should be cleared after an interrupted broadcast")
	}
}

func TestEveryInteractionRecordsTheUser(t *testing.T) {
	h := newHarness()
	h.do(t, cancel(ahmad))
	h.do(t, start(sara, FlowExcuse))
	if n, _ := h.users.Count(context.Background()); n != 2 {
		t.Fatalf("registered users = %d", n)
	}
}

func TestConcurrentConfirmationsGetDistinctIDs(t *testing.T) {
	h := newHarness()
	const n = 20
	for i := int64(1); i <= n; i++ {
		h.do(t, start(i, FlowExcuse))
		h.do(t, answer(i, "user"))
		h.do(t, answer(i, ActivityMeeting))
	}
	var wg sync.WaitGroup
	for i := int64(1); i <= n; i++ {
		wg.Add(1)
		go func(u int64) {
			defer wg.Done()
			if _, err := h.eng.Handle(context.Background(), confirm(u)); err != nil {
				t.Errorf("confirm: %v", err)
			}
		}(i)
	}
	wg.Wait()
	all, _ := h.ledger.List(context.Background())
	if len(all) != n {
		t.Fatalf("requests = %d, want %d", len(all), n)
	}
	for i, r := range all {
		if r.ID != int64(i+1) {
			t.Fatalf("ids not dense and increasing: %+v", all)
		}
	}
	if h.eng.locks.size() != 0 {
		t.Fatalf("locks leaked: %d", h.eng.locks.size())
	}
}

func TestTransitionTableRejectsUnknownEvents(t *testing.T) {
	if _, err := advance(context.Background(), LeaveName, eventConfirm); err == nil {
		t.Fatal("confirm from name step must fail")
	}
	next, err := advance(context.Background(), ExcuseActivity, eventPickOther)
	if err != nil || next != ExcuseReason {
		t.Fatalf("pick_other -> %s, %v", next, err)
	}
	for _, s := range steps {
		if next, err := advance(context.Background(), s, eventCancel); err != nil || next != StateIdle {
			t.Fatalf("cancel from %s -> %s, %v", s, next, err)
		}
	}
}
