package requests

import (
	"fmt"
	"strings"
)

// Fallback text for answers that were never collected.
const Unspecified = "غير محدد"

const (
	detailDuration = "مدة: "
	detailStart    = "تاريخ البدء: "
	detailEnd      = "تاريخ الانتهاء: "
)

// LeaveDetails are the kind-specific answers of a leave request. They are
// stored verbatim, so dates may be malformed.
type LeaveDetails struct {
	Duration string
	Start    string
	End      string
}

// Format renders the details blob stored on the request.
func (d LeaveDetails) Format() string {
	return fmt.Sprintf("%s%s أيام\n%s%s\n%s%s", detailDuration, d.Duration, detailStart, d.Start, detailEnd, d.End)
}

// ParseLeaveDetails reverses Format. Missing lines leave the fields empty.
func ParseLeaveDetails(s string) LeaveDetails {
	var d LeaveDetails
	for _, line := range strings.Split(s, "\n") {
		switch {
		case strings.HasPrefix(line, detailDuration):
			d.Duration = strings.TrimSuffix(strings.TrimPrefix(line, detailDuration), " أيام")
		case strings.HasPrefix(line, detailStart):
			d.Start = strings.TrimPrefix(line, detailStart)
		case strings.HasPrefix(line, detailEnd):
			d.End = strings.TrimPrefix(line, detailEnd)
		}
	}
	return d
}
