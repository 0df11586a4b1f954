package moderation

import (
	"github.com/m3rciful/hrbot/app/requests"
	"github.com/m3rciful/hrbot/core/telegram/format"
)

const (
	// TextUnauthorized answers a decision button pressed by a non-admin.
	TextUnauthorized   = "غير مصرح لك!"
	TextNotFound       = "هذا الطلب غير موجود."
	TextAlreadyDecided = "تم اتخاذ قرار بشأن هذا الطلب مسبقاً."

	labelApprove = "قبول"
	labelReject  = "رفض"

	annotationApproved = "تم القبول."
	annotationRejected = "تم الرفض."
)

// Summary is the admin-facing text of a request.
func Summary(r requests.Request) string {
	switch r.Kind {
	case requests.KindLeave:
		return format.Sprintf("طلب إجازة جديد #%d\nمقدم الطلب: %s\nرقم الطلب: %d\nسبب الإجازة: %s\nالتفاصيل: %s",
			r.ID, r.SubmitterName, r.ID, r.Reason, r.Details)
	default:
		return format.Sprintf("طلب اعتذار جديد #%d\nمقدم الطلب: %s\nرقم الطلب: %d\nنوع النشاط: %s\nالسبب: %s",
			r.ID, r.SubmitterName, r.ID, r.Details, r.Reason)
	}
}

func submitterNotice(r requests.Request) string {
	if r.Status == requests.StatusApproved {
		return format.Sprintf("ابشر! 🎉 تم قبول طلبك #%d بكل فرحة. نحن فخورون بك! 💖", r.ID)
	}
	return format.Sprintf("نأسف لإخبارك بذلك، 😔 تم رفض طلبك #%d. يرجى التواصل مع الإدارة للمزيد من التفاصيل. نحن هنا لدعمك!", r.ID)
}

func annotate(text string, status requests.Status) string {
	line := annotationRejected
	if status == requests.StatusApproved {
		line = annotationApproved
	}
	return text + "\n\n" + line
}
