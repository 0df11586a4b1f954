package report

import (
	"context"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/m3rciful/hrbot/app/gateway/gatewaytest"
	"github.com/m3rciful/hrbot/app/requests"
)

func seeded(t *testing.T) *requests.MemoryLedger {
	t.Helper()
	l := requests.NewMemoryLedger()
	ctx := context.Background()
	_, _ = l.Create(ctx, requests.Draft{SubmitterID: 1, SubmitterName: "أحمد", Kind: requests.KindExcuse, Reason: requests.Unspecified, Details: "اجتماع"})
	leave := requests.LeaveDetails{Duration: "3", Start: "2024-01-01", End: "بعد العيد"}
	r, _ := l.Create(ctx, requests.Draft{SubmitterID: 2, SubmitterName: "سارة", Kind: requests.KindLeave, Reason: "سفر", Details: leave.Format()})
	_, _ = l.Decide(ctx, r.ID, requests.OutcomeApprove, 9)
	return l
}

func TestBuildWritesOneRowPerRequest(t *testing.T) {
	buf, n, err := Build(context.Background(), seeded(t))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if n != 2 {
		t.Fatalf("rows = %d", n)
	}
	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("sheet rows = %d, want header + 2", len(rows))
	}
	if rows[1][1] != "اعتذار" || rows[2][3] != "سارة" || rows[2][8] != "مقبول" {
		t.Fatalf("unexpected rows: %v", rows)
	}
	if rows[2][7] != "بعد العيد" {
		t.Fatalf("malformed end date must stay text, got %q", rows[2][7])
	}
	raw, err := f.GetCellValue(sheet, "G3", excelize.Options{RawCellValue: true})
	if err != nil || raw == "2024-01-01" || raw == "" {
		t.Fatalf("start date should be a serial date cell, got %q (%v)", raw, err)
	}
}

func TestSendUploadsDocument(t *testing.T) {
	gw := gatewaytest.New()
	now := time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC)
	if err := Send(context.Background(), seeded(t), gw, 9, now); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(gw.Docs) != 1 || gw.Docs[0].Name != "requests_20240305_1030.xlsx" || len(gw.Docs[0].Body) == 0 {
		t.Fatalf("docs = %+v", gw.Docs)
	}
}
