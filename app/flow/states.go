// Package flow drives users through the excuse, leave and admin forms.
//
// Each user has at most one session in the state store. Steps advance through
// a looplab/fsm transition table; answers are stored verbatim.
package flow

import (
	"context"
	"log/slog"

	"github.com/looplab/fsm"

	"github.com/m3rciful/hrbot/app/metrics"
	"github.com/m3rciful/hrbot/core/logger"
	"github.com/m3rciful/hrbot/core/telegram/state"
)

// Flow names a form.
type Flow string

const (
	FlowExcuse      Flow = "excuse"
	FlowLeave       Flow = "leave"
	FlowMeetingDate Flow = "meeting_date"
	FlowBroadcast   Flow = "broadcast"
)

// Admin reports whether only administrators may start the flow.
func (f Flow) Admin() bool {
	return f == FlowMeetingDate || f == FlowBroadcast
}

const (
	StateIdle = state.StateIdle

	ExcuseName     state.State = "excuse.name"
	ExcuseActivity state.State = "excuse.activity"
	ExcuseReason   state.State = "excuse.reason"
	ExcuseConfirm  state.State = "excuse.confirm"

	LeaveName     state.State = "leave.name"
	LeaveReason   state.State = "leave.reason"
	LeaveDuration state.State = "leave.duration"
	LeaveStart    state.State = "leave.start_date"
	LeaveEnd      state.State = "leave.end_date"
	LeaveConfirm  state.State = "leave.confirm"

	MeetingDate      state.State = "admin.meeting_date"
	BroadcastMessage state.State = "admin.broadcast"
)

// Activities offered by the excuse form. Any other text is accepted as-is.
const (
	ActivityInitiative = "مبادرة"
	ActivityMeeting    = "اجتماع"
	ActivityOther      = "آخر"
)

const (
	fieldName     = "name"
	fieldActivity = "activity"
	fieldReason   = "reason"
	fieldDuration = "duration"
	fieldStart    = "start_date"
	fieldEnd      = "end_date"
	fieldMeeting  = "meeting"
	fieldDate     = "date"
	fieldMessage  = "message"
)

const (
	eventAnswer       = "answer"
	eventPickActivity = "pick_activity"
	eventPickOther    = "pick_other"
	eventConfirm      = "confirm"
	eventCancel       = "cancel"
)

var steps = []state.State{
	ExcuseName, ExcuseActivity, ExcuseReason, ExcuseConfirm,
	LeaveName, LeaveReason, LeaveDuration, LeaveStart, LeaveEnd, LeaveConfirm,
	MeetingDate, BroadcastMessage,
}

var transitions = fsm.Events{
	{Name: eventAnswer, Src: []string{string(ExcuseName)}, Dst: string(ExcuseActivity)},
	{Name: eventPickActivity, Src: []string{string(ExcuseActivity)}, Dst: string(ExcuseConfirm)},
	{Name: eventPickOther, Src: []string{string(ExcuseActivity)}, Dst: string(ExcuseReason)},
	{Name: eventAnswer, Src: []string{string(ExcuseReason)}, Dst: string(ExcuseConfirm)},

	{Name: eventAnswer, Src: []string{string(LeaveName)}, Dst: string(LeaveReason)},
	{Name: eventAnswer, Src: []string{string(LeaveReason)}, Dst: string(LeaveDuration)},
	{Name: eventAnswer, Src: []string{string(LeaveDuration)}, Dst: string(LeaveStart)},
	{Name: eventAnswer, Src: []string{string(LeaveStart)}, Dst: string(LeaveEnd)},
	{Name: eventAnswer, Src: []string{string(LeaveEnd)}, Dst: string(LeaveConfirm)},

	{Name: eventAnswer, Src: []string{string(MeetingDate), string(BroadcastMessage)}, Dst: string(StateIdle)},
	{Name: eventConfirm, Src: []string{string(ExcuseConfirm), string(LeaveConfirm)}, Dst: string(StateIdle)},
	{Name: eventCancel, Src: stepNames(), Dst: string(StateIdle)},
}

var firstStep = map[Flow]state.State{
	FlowExcuse:      ExcuseName,
	FlowLeave:       LeaveName,
	FlowMeetingDate: MeetingDate,
	FlowBroadcast:   BroadcastMessage,
}

var stepFlow = map[state.State]Flow{
	ExcuseName: FlowExcuse, ExcuseActivity: FlowExcuse, ExcuseReason: FlowExcuse, ExcuseConfirm: FlowExcuse,
	LeaveName: FlowLeave, LeaveReason: FlowLeave, LeaveDuration: FlowLeave,
	LeaveStart: FlowLeave, LeaveEnd: FlowLeave, LeaveConfirm: FlowLeave,
	MeetingDate:      FlowMeetingDate,
	BroadcastMessage: FlowBroadcast,
}

// stepField is the session field an answer at the step is stored under.
var stepField = map[state.State]string{
	ExcuseName:       fieldName,
	ExcuseActivity:   fieldActivity,
	ExcuseReason:     fieldReason,
	LeaveName:        fieldName,
	LeaveReason:      fieldReason,
	LeaveDuration:    fieldDuration,
	LeaveStart:       fieldStart,
	LeaveEnd:         fieldEnd,
	MeetingDate:      fieldDate,
	BroadcastMessage: fieldMessage,
}

func stepNames() []string {
	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = string(s)
	}
	return out
}

// FlowOf returns the flow a step belongs to.
func FlowOf(st state.State) (Flow, bool) {
	f, ok := stepFlow[st]
	return f, ok
}

func isConfirmStep(st state.State) bool {
	return st == ExcuseConfirm || st == LeaveConfirm
}

// advance fires event on a machine positioned at from and returns the new step.
func advance(ctx context.Context, from state.State, event string) (state.State, error) {
	m := fsm.NewFSM(string(from), transitions, fsm.Callbacks{
		"enter_state": func(ctx context.Context, e *fsm.Event) {
			f, _ := FlowOf(state.State(e.Src))
			metrics.RecordFlowTransition(string(f), e.Event)
			logger.SVCFlow.LogAttrs(ctx, slog.LevelDebug, "flow.transition",
				slog.String("flow", string(f)),
				slog.String("event", e.Event),
				slog.String("step", e.Src),
				slog.String("next_step", e.Dst),
			)
		},
	})
	if err := m.Event(ctx, event); err != nil {
		return from, err
	}
	return state.State(m.Current()), nil
}
