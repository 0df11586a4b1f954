// Package report exports the request ledger as an xlsx workbook.
package report

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/m3rciful/hrbot/app/gateway"
	"github.com/m3rciful/hrbot/app/requests"
	"github.com/m3rciful/hrbot/core/logger"
	"github.com/m3rciful/hrbot/core/telegram/format"
	"github.com/m3rciful/hrbot/core/telegram/helpers"
)

const (
	sheet   = "الطلبات"
	caption = "📊 تقرير الطلبات"
)

var headers = []string{
	"رقم الطلب", "النوع", "معرف المستخدم", "الاسم", "السبب", "التفاصيل",
	"تاريخ البدء", "تاريخ الانتهاء", "الحالة", "تاريخ التقديم", "قرار من", "تاريخ القرار",
}

var statusFills = map[requests.Status]string{
	requests.StatusApproved: "#D8F6CE",
	requests.StatusRejected: "#FFD6D6",
}

// Lister is the part of the ledger the export reads.
type Lister interface {
	List(ctx context.Context) ([]requests.Request, error)
}

// Build renders every request into a workbook. Leave dates that parse as dates
// become date cells; anything else is written as the original text.
func Build(ctx context.Context, ledger Lister) (*bytes.Buffer, int, error) {
	rows, err := ledger.List(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("report: list requests: %w", err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, 0, err
	}
	if err := f.SetSheetView(sheet, 0, &excelize.ViewOptions{RightToLeft: boolPtr(true)}); err != nil {
		return nil, 0, err
	}

	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	if err != nil {
		return nil, 0, err
	}
	stampStyle, err := f.NewStyle(&excelize.Style{NumFmt: 22})
	if err != nil {
		return nil, 0, err
	}
	fills := make(map[requests.Status]int, len(statusFills))
	for st, color := range statusFills {
		id, err := f.NewStyle(&excelize.Style{Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1}})
		if err != nil {
			return nil, 0, err
		}
		fills[st] = id
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, 0, err
		}
	}

	for idx, r := range rows {
		row := idx + 2
		var start, end any
		if r.Kind == requests.KindLeave {
			d := requests.ParseLeaveDetails(r.Details)
			start, end = dateOrText(d.Start), dateOrText(d.End)
		}
		var decidedAt any
		if r.DecidedAt != nil {
			decidedAt = *r.DecidedAt
		}
		values := []any{
			r.ID, r.Kind.Label(), r.SubmitterID, r.SubmitterName, r.Reason, r.Details,
			start, end, r.Status.Label(), r.CreatedAt, format.Deref(r.DecidedBy, 0), decidedAt,
		}
		for j, v := range values {
			if v == nil || v == int64(0) {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(j+1, row)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, 0, err
			}
			switch v.(type) {
			case time.Time:
				style := stampStyle
				if j == 6 || j == 7 {
					style = dateStyle
				}
				if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
					return nil, 0, err
				}
			}
		}
		if style, ok := fills[r.Status]; ok {
			cell, _ := excelize.CoordinatesToCellName(9, row)
			if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
				return nil, 0, err
			}
		}
	}
	if err := f.SetColWidth(sheet, "A", "L", 18); err != nil {
		return nil, 0, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("report: write workbook: %w", err)
	}
	return buf, len(rows), nil
}

// Send builds the workbook and uploads it to chat to.
func Send(ctx context.Context, ledger Lister, gw gateway.Gateway, to int64, now time.Time) error {
	start := time.Now()
	buf, n, err := Build(ctx, ledger)
	if err != nil {
		return err
	}
	name := fmt.Sprintf("requests_%s.xlsx", now.Format("20060102_1504"))
	if err := gw.SendDocument(ctx, to, name, caption, buf); err != nil {
		return gateway.Deliver("document", to, err)
	}
	logger.SVCRequests.LogAttrs(ctx, slog.LevelInfo, "report.sent",
		slog.Int64("chat_id", to),
		slog.Int("count", n),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return nil
}

func dateOrText(s string) any {
	if s == "" {
		return nil
	}
	if t, ok := helpers.ParseFlexibleDate(s); ok {
		return t
	}
	return s
}

func boolPtr(b bool) *bool { return &b }
