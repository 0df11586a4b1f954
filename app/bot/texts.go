package bot

import (
	"github.com/m3rciful/hrbot/app/schedule"
	"github.com/m3rciful/hrbot/core/telegram/keyboard"
)

// Main menu labels. Decode matches incoming text against them.
const (
	btnExcuse     = "اعتذار"
	btnLeave      = "إجازة"
	btnTrack      = "تتبع طلباتي"
	btnReferences = "مراجع الفريق"
	btnPhrase     = "أهدني عبارة"
	btnDhikr      = "لا تنس ذكر الله"
	btnInquiries  = "استعلامات"
	btnBack       = keyboard.CancelText

	// older clients still send the label the dhikr handler used to expect
	btnDhikrLegacy = "🤍لا تنسَ ذكر الله"

	btnConfirm        = "تأكيد الطلب"
	btnCodeOfConduct  = "مدونة السلوك"
	btnRules          = "بنود وقوانين الفريق"
	btnInquireMeeting = "استعلام عن اجتماع"
	btnBroadcast      = "إرسال بث للجميع"
)

const (
	textWelcome = "مرحباً بك في بوت شؤون الموارد البشرية لفريق أبناء الأرض! 🌟\n" +
		"نحن مبسوطين بوجودك معنا، و رح نكون دائماً جنبك  برحلتك التطوعية. 💖\n" +
		"اختر الخيار الذي تريده:"
	textChooseOption = "اختر الخيار الذي تريده:"
	textUnknown      = "لم أفهم رسالتك 🤔 اختر الخيار الذي تريده من القائمة:"
	textUnknownDoc   = "لا يمكنني استقبال الملفات هنا. اختر الخيار الذي تريده من القائمة:"
	textNotAdmin     = "مين قلك أنك آدمن ؟!"
	textRateLimited  = "على مهلك 🌹 انتظر لحظة قبل إرسال رسالة جديدة."
	textFailure      = "حدث خطأ غير متوقع، يرجى المحاولة مرة أخرى بعد قليل. 🙏"

	textReferences    = "نحن فخورون بقيمنا في فريق أبناء الأرض! 🌟\nاختر المرجع:"
	textCodeOfConduct = "مدونة السلوك لفريق أبناء الأرض:\n\n" +
		"1. الاحترام المتبادل: احترم زملاءك وكل الأطراف.\n" +
		"2. الالتزام بالمواعيد: كن دقيقاً في الاجتماعات والأنشطة.\n" +
		"3. السرية: احفظ معلومات الفريق سراً.\n" +
		"4. الإيجابية: شجع الآخرين وكن مصدر إلهام.\n\n" +
		"للمزيد، تواصل مع الإدارة. نحن معاً في هذه الرحلة! 💖"
	textRules = "بنود وقوانين فريق أبناء الأرض:\n\n" +
		"1. الالتزام بالأهداف الخيرية.\n" +
		"2. عدم مشاركة المعلومات الخاصة.\n" +
		"3. المشاركة الفعالة في الأنشطة.\n" +
		"4. الإبلاغ عن أي مشكلات فوراً.\n" +
		"5. عقوبات: تحذير، إيقاف، إنهاء العضوية حسب الخطأ.\n\n" +
		"للنسخة الكاملة، اطلب من الإدارة. نحن نبني عائلة قوية معاً! 🌹"

	textInquiries     = "نحن هنا لنجيب على استفساراتك بكل حب! 💕\nاختر نوع الاستعلام:"
	textChooseMeeting = "اختر الاجتماع الذي تهتم به: 😊"

	textAdminPanel = "لوحة التحكم للأدمن: نحن فخورون بإدارتك الرائعة! 🌟"

	textTrackEmpty  = "لم تقدم أي طلب بعد. نحن هنا متى احتجتنا! 💕"
	textTrackHeader = "آخر طلباتك:"
)

var motivationalPhrases = []string{
	"العمل الخيري هو بذرة الأمل في قلوب الناس، ازرعها وستحصد الابتسامات!",
	"في كل يد تمتد للمساعدة، ينبت أمل جديد. استمر في إشراقك مع فريق أبناء الأرض!",
	"الأمل يبدأ بخطوة صغيرة، وأنت جزء من هذه الخطوات العظيمة. شكراً لتطوعك!",
	"كل جهد يبذل في سبيل الخير يعود بالبركة. كن مصدر إلهام دائماً!",
	"مع فريق أبناء الأرض، نبني جسور الأمل. أنت بطل هذه القصة!",
}

const dhikr = "سبحان الله\nالحمدلله\nلا إله إلا الله\nالله اكبر\nسبحان الله وبحمده\nسبحان الله العظيم"

func phraseText(p string) string {
	return "إليك عبارة تحفيزية من القلب: " + p + " 💖"
}

func dhikrText() string {
	return "اللهم اجعل هذا الذكر نوراً لقلبك: " + dhikr + " 🌟"
}

// meetingView holds the title and closing line of a meeting inquiry answer.
type meetingView struct {
	button  string
	title   string
	closing string
	admin   string
}

var meetingViews = map[schedule.Meeting]meetingView{
	schedule.MeetingGeneral: {
		button:  "الاجتماع العام",
		title:   "موعد الاجتماع العام",
		closing: "نحن نتطلع للقائك هناك! 🌹",
		admin:   "وضع موعد الاجتماع العام",
	},
	schedule.MeetingSupport1: {
		button:  "اجتماع فريق الدعم الاول",
		title:   "موعد اجتماع فريق الدعم الاول",
		closing: "معاً نبني الدعم الأقوى! 💪",
		admin:   "وضع موعد دعم أول",
	},
	schedule.MeetingSupport2: {
		button:  "اجتماع فريق الدعم الثاني",
		title:   "موعد فريق الدعم الثاني",
		closing: "دعمكم يلهمنا دائماً! 😊",
		admin:   "وضع موعد دعم ثاني",
	},
	schedule.MeetingCentral: {
		button:  "اجتماع الفريق المركزي",
		title:   "موعد الفريق المركزي",
		closing: "مركزنا هو قلب الفريق! ❤️",
		admin:   "وضع موعد مركزي",
	},
}
