package flow

import (
	"github.com/m3rciful/hrbot/app/requests"
	"github.com/m3rciful/hrbot/app/schedule"
	"github.com/m3rciful/hrbot/core/telegram/format"
	"github.com/m3rciful/hrbot/core/telegram/state"
)

// Fixed replies. User answers are escaped before interpolation because messages
// are sent in HTML parse mode.
const (
	TextBackToMain   = "تم العودة إلى القائمة الرئيسية. نحن هنا لمساعدتك دائماً! 💕"
	TextRestart      = "انتهت صلاحية هذا الطلب أو أن بياناته غير مكتملة. يرجى البدء من جديد من القائمة الرئيسية. 🌹"
	TextUseButtons   = "يرجى استخدام زر «تأكيد الطلب» أو «رجوع» للمتابعة. 😊"
	TextNotAdmin     = "مين قلك أنك آدمن ؟!"
	TextStoreFailure = "حدث خطأ أثناء حفظ طلبك، يرجى المحاولة مرة أخرى بعد قليل. 🙏"

	textExcuseName    = "ما اسمك الكامل؟ نحن نقدر جهودك دائماً! 😊"
	textLeaveName     = "ما اسمك الكامل كمتطوع؟ نحن نقدر جهودك دائماً! 😊"
	textExcuseOther   = "نحن نفهم أن الحياة مليئة بالمفاجآت، يرجى توضيح العمل الذي تريد الاعتذار عنه: 💕"
	textLeaveDuration = "ما مدة الإجازة (بالأيام)؟ نتمنى لك وقتاً جميلاً! 💕"
	textLeaveStart    = "ما تاريخ بدء الإجازة (YYYY-MM-DD)؟"
	textLeaveEnd      = "ما تاريخ انتهاء الإجازة (YYYY-MM-DD)؟"
	textBroadcast     = "أدخل الرسالة التي تريد إرسالها لجميع المستخدمين:"
)

func meetingPrompt(m schedule.Meeting) string {
	if m == schedule.MeetingGeneral {
		return "أدخل موعد الاجتماع العام (YYYY-MM-DD HH:MM): شكراً لجهودك في تنظيمنا! 😊"
	}
	return format.Sprintf("أدخل موعد %s (YYYY-MM-DD HH:MM):", m.Label())
}

func meetingSaved(m schedule.Meeting, date string) string {
	return format.Sprintf("تم حفظ موعد %s: %s\nشكراً لك، أنت تجعل فريقنا أقوى! 🌹", m.Label(), date)
}

func broadcastDone(sent, failed int) string {
	if failed > 0 {
		return format.Sprintf("تم إرسال الرسالة إلى %d مستخدم، وتعذر الإرسال إلى %d. شكراً لك! 💖", sent, failed)
	}
	return format.Sprintf("تم إرسال الرسالة إلى %d مستخدم. شكراً لك! 💖", sent)
}

func broadcastInterrupted(sent, failed int) string {
	return format.Sprintf("توقف الإرسال قبل اكتماله: وصلت الرسالة إلى %d مستخدم وتعذر الإرسال إلى %d.", sent, failed)
}

func submitted(name string, id int64) string {
	return format.Sprintf("شكراً لك يا %s، طلبك #%d وصلنا بسلام! سنعالجه بكل حب قريباً. 💕", name, id)
}

// prompt renders the question asked when a session arrives at its step.
func prompt(s state.Session) Reply {
	name := s.Fields[fieldName]
	switch s.State {
	case ExcuseName:
		return Reply{Text: textExcuseName, Keyboard: KeyboardBack}
	case ExcuseActivity:
		return Reply{Text: format.Sprintf("مرحباً %s، سعيدون بك معنا! 🌹\nعن شو الاعتذار؟", name), Keyboard: KeyboardActivity}
	case ExcuseReason:
		return Reply{Text: textExcuseOther, Keyboard: KeyboardBack}
	case ExcuseConfirm:
		return Reply{Text: excuseSummary(s), Keyboard: KeyboardConfirm}
	case LeaveName:
		return Reply{Text: textLeaveName, Keyboard: KeyboardBack}
	case LeaveReason:
		return Reply{Text: format.Sprintf("اهلييين %s، سعيدون بك معنا! 🌹\nما سبب الإجازة؟", name), Keyboard: KeyboardBack}
	case LeaveDuration:
		return Reply{Text: textLeaveDuration, Keyboard: KeyboardBack}
	case LeaveStart:
		return Reply{Text: textLeaveStart, Keyboard: KeyboardBack}
	case LeaveEnd:
		return Reply{Text: textLeaveEnd, Keyboard: KeyboardBack}
	case LeaveConfirm:
		return Reply{Text: leaveSummary(s), Keyboard: KeyboardConfirm}
	case MeetingDate:
		return Reply{Text: meetingPrompt(schedule.Meeting(s.Fields[fieldMeeting])), Keyboard: KeyboardBackInline}
	case BroadcastMessage:
		return Reply{Text: textBroadcast, Keyboard: KeyboardBackInline}
	}
	return Reply{Text: TextBackToMain, Keyboard: KeyboardMain}
}

func excuseSummary(s state.Session) string {
	name := s.Fields[fieldName]
	if reason, ok := s.Fields[fieldReason]; ok {
		return format.Sprintf("نحن نقدر صراحتك وشجاعتك في التعبير، %s! 💖\nتأكيد الطلب:\nالاسم: %s\nنوع النشاط: %s\nالسبب: %s\n\nهل تريد تأكيد الطلب؟",
			name, name, ActivityOther, reason)
	}
	return format.Sprintf("شكراً لثقتك بنا، %s! 😊\nتأكيد الطلب:\nالاسم: %s\nنوع النشاط: %s\n\nهل تريد تأكيد الطلب؟",
		name, name, s.Fields[fieldActivity])
}

func leaveSummary(s state.Session) string {
	name := s.Fields[fieldName]
	return format.Sprintf("شكراً لثقتك بنا، %s! 😊\nتأكيد الطلب:\nالاسم: %s\nالسبب: %s\nالتفاصيل: %s\n\nهل تريد تأكيد الطلب؟",
		name, name, s.Fields[fieldReason], leaveDetails(s).Format())
}

func leaveDetails(s state.Session) requests.LeaveDetails {
	return requests.LeaveDetails{
		Duration: s.Fields[fieldDuration],
		Start:    s.Fields[fieldStart],
		End:      s.Fields[fieldEnd],
	}
}
