package service

import (
	"errors"
	"strings"
	"sync"
	"testing"

	auditdomain "github.com/sewtrack/sewtrack/internal/audit/domain"
	"github.com/sewtrack/sewtrack/internal/workrecord/domain"
)

func TestApproveStampsApprover(t *testing.T) {
	f := newFixture(t)
	record := f.submit(t, 4)

	approved, err := f.svc.Approve(f.ctx(f.masterActor), record.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != domain.StatusApproved {
		t.Fatalf("expected APPROVED, got %s", approved.Status)
	}
	if approved.ApprovedBy != f.master.ID.String() {
		t.Fatalf("expected approver %s, got %s", f.master.ID, approved.ApprovedBy)
	}
	if approved.ApprovedAt == nil {
		t.Fatal("expected approved_at to be set")
	}
}

func TestApproveTwiceFails(t *testing.T) {
	f := newFixture(t)
	record := f.submit(t, 4)

	if _, err := f.svc.Approve(f.ctx(f.masterActor), record.ID); err != nil {
		t.Fatalf("first approve: %v", err)
	}
	if _, err := f.svc.Approve(f.ctx(f.masterActor), record.ID); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState on second approve, got %v", err)
	}
}

func TestRejectAppendsReasonNote(t *testing.T) {
	f := newFixture(t)
	record := f.submit(t, 4)

	rejected, err := f.svc.Reject(f.ctx(f.masterActor), record.ID, "seam crooked")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != domain.StatusRejected {
		t.Fatalf("expected REJECTED, got %s", rejected.Status)
	}
	if !strings.Contains(rejected.Notes, "seam crooked") {
		t.Fatalf("expected reason in notes, got %q", rejected.Notes)
	}
	if !strings.Contains(rejected.Notes, "[rejected ") {
		t.Fatalf("expected timestamped rejection line, got %q", rejected.Notes)
	}
}

func TestConcurrentApproveRejectExactlyOneWins(t *testing.T) {
	f := newFixture(t)
	record := f.submit(t, 4)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = f.svc.Approve(f.ctx(f.masterActor), record.ID)
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = f.svc.Reject(f.ctx(f.masterActor), record.ID, "late")
	}()
	wg.Wait()

	var wins, losses int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, domain.ErrInvalidState):
			losses++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || losses != 1 {
		t.Fatalf("expected exactly one winner, got %d wins and %d losses", wins, losses)
	}

	final, err := f.svc.Get(f.ctx(f.workerActor), record.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if final.Status != domain.StatusApproved && final.Status != domain.StatusRejected {
		t.Fatalf("expected a terminal review status, got %s", final.Status)
	}
}

func TestResetRequiresReason(t *testing.T) {
	f := newFixture(t)
	record := f.submit(t, 4)
	if _, err := f.svc.Approve(f.ctx(f.masterActor), record.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	if _, err := f.svc.ResetToPending(f.ctx(f.masterActor), record.ID, "  "); !errors.Is(err, domain.ErrMissingReason) {
		t.Fatalf("expected ErrMissingReason, got %v", err)
	}
}

func TestResetPreservesApproverAndWritesNote(t *testing.T) {
	f := newFixture(t)
	record := f.submit(t, 4)
	if _, err := f.svc.Approve(f.ctx(f.masterActor), record.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	reset, err := f.svc.ResetToPending(f.ctx(f.masterActor), record.ID, "recount requested")
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if reset.Status != domain.StatusPending {
		t.Fatalf("expected PENDING after reset, got %s", reset.Status)
	}
	if !strings.Contains(reset.Notes, "from=APPROVED") {
		t.Fatalf("expected prior status in note, got %q", reset.Notes)
	}
	if !strings.Contains(reset.Notes, "approved_by="+f.master.ID.String()) {
		t.Fatalf("expected prior approver in note, got %q", reset.Notes)
	}
	if !strings.Contains(reset.Notes, "reason=recount requested") {
		t.Fatalf("expected reason in note, got %q", reset.Notes)
	}

	stored, err := f.svc.Get(f.ctx(f.workerActor), record.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.ApprovedBy != f.master.ID.String() {
		t.Fatalf("expected approver preserved through reset, got %q", stored.ApprovedBy)
	}
}

func TestResetPendingRecordFails(t *testing.T) {
	f := newFixture(t)
	record := f.submit(t, 4)

	if _, err := f.svc.ResetToPending(f.ctx(f.masterActor), record.ID, "oops"); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState resetting a pending record, got %v", err)
	}
}

func TestMarkPaidLifecycle(t *testing.T) {
	f := newFixture(t)
	record := f.submit(t, 4)

	// Pending records cannot be paid.
	if _, err := f.svc.MarkPaid(f.ctx(f.masterActor), record.ID); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState paying a pending record, got %v", err)
	}

	if _, err := f.svc.Approve(f.ctx(f.masterActor), record.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	paid, err := f.svc.MarkPaid(f.ctx(f.masterActor), record.ID)
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if !paid.IsPaid || paid.PaidBy != f.master.ID.String() || paid.PaidAt == nil {
		t.Fatalf("expected paid record with payer, got %+v", paid)
	}

	// Paid records are frozen: no double pay, no reset.
	if _, err := f.svc.MarkPaid(f.ctx(f.masterActor), record.ID); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState on double pay, got %v", err)
	}
	if _, err := f.svc.ResetToPending(f.ctx(f.masterActor), record.ID, "undo"); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState resetting a paid record, got %v", err)
	}

	unpaid, err := f.svc.UnmarkPaid(f.ctx(f.masterActor), record.ID)
	if err != nil {
		t.Fatalf("unmark paid: %v", err)
	}
	if unpaid.IsPaid || unpaid.PaidBy != "" || unpaid.PaidAt != nil {
		t.Fatalf("expected payment cleared, got %+v", unpaid)
	}
	if _, err := f.svc.UnmarkPaid(f.ctx(f.masterActor), record.ID); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState unmarking an unpaid record, got %v", err)
	}
}

func TestBulkApproveSkipsNonPending(t *testing.T) {
	f := newFixture(t)
	first := f.submit(t, 1)
	second := f.submit(t, 2)
	third := f.submit(t, 3)

	if _, err := f.svc.Reject(f.ctx(f.masterActor), second.ID, "flawed"); err != nil {
		t.Fatalf("reject: %v", err)
	}

	result, err := f.svc.BulkApprove(f.ctx(f.masterActor), []string{first.ID, second.ID, third.ID, "not-a-number"})
	if err != nil {
		t.Fatalf("bulk approve: %v", err)
	}
	if result.Count != 2 {
		t.Fatalf("expected 2 approved, got %d", result.Count)
	}
	if len(result.SkippedIDs) != 2 {
		t.Fatalf("expected 2 skipped, got %v", result.SkippedIDs)
	}
	if result.BatchRef == "" {
		t.Fatal("expected a batch ref")
	}

	var skipEntries int64
	if err := f.db.Model(&auditdomain.AuditLog{}).
		Where("action = ? AND batch_ref = ?", auditdomain.ActionBulkSkip, result.BatchRef).
		Count(&skipEntries).Error; err != nil {
		t.Fatalf("count skip entries: %v", err)
	}
	if skipEntries != 1 {
		t.Fatalf("expected one bulk skip trail entry, got %d", skipEntries)
	}
}

func TestBulkApproveLimitExceeded(t *testing.T) {
	f := newFixture(t)

	ids := make([]string, 501)
	for i := range ids {
		ids[i] = f.node.Generate().String()
	}
	if _, err := f.svc.BulkApprove(f.ctx(f.masterActor), ids); !errors.Is(err, domain.ErrBulkLimitExceeded) {
		t.Fatalf("expected ErrBulkLimitExceeded, got %v", err)
	}
}

func TestBulkRejectRecordsReason(t *testing.T) {
	f := newFixture(t)
	first := f.submit(t, 1)
	second := f.submit(t, 2)

	result, err := f.svc.BulkReject(f.ctx(f.masterActor), []string{first.ID, second.ID}, "batch fabric defect")
	if err != nil {
		t.Fatalf("bulk reject: %v", err)
	}
	if result.Count != 2 || len(result.SkippedIDs) != 0 {
		t.Fatalf("expected clean bulk reject, got %+v", result)
	}

	stored, err := f.svc.Get(f.ctx(f.workerActor), first.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Status != domain.StatusRejected {
		t.Fatalf("expected REJECTED, got %s", stored.Status)
	}
	if !strings.Contains(stored.Notes, "batch fabric defect") {
		t.Fatalf("expected reason in notes, got %q", stored.Notes)
	}
}

func TestTransitionsWriteAuditTrail(t *testing.T) {
	f := newFixture(t)
	record := f.submit(t, 4)

	if _, err := f.svc.Approve(f.ctx(f.masterActor), record.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := f.svc.ResetToPending(f.ctx(f.masterActor), record.ID, "recount"); err != nil {
		t.Fatalf("reset: %v", err)
	}

	var actions []string
	if err := f.db.Model(&auditdomain.AuditLog{}).
		Where("tenant_id = ? AND entity_id = ?", f.tenantID, record.ID).
		Order("id ASC").
		Pluck("action", &actions).Error; err != nil {
		t.Fatalf("load trail: %v", err)
	}
	if len(actions) != 2 || actions[0] != auditdomain.ActionApprove || actions[1] != auditdomain.ActionReset {
		t.Fatalf("expected approve then reset in trail, got %v", actions)
	}
}
