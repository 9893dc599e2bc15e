package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	auditdomain "github.com/sewtrack/sewtrack/internal/audit/domain"
	employeedomain "github.com/sewtrack/sewtrack/internal/employee/domain"
	"github.com/sewtrack/sewtrack/internal/workrecord/domain"
	"go.uber.org/zap"
)

func (s *Service) Approve(ctx context.Context, id string) (*domain.Response, error) {
	tenantID, actorID, err := s.scope(ctx)
	if err != nil {
		return nil, err
	}
	approver, err := s.actorEmployee(ctx, tenantID, actorID)
	if err != nil {
		return nil, err
	}

	record, err := s.tenantRecord(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	affected, err := s.repo.Approve(ctx, s.db, tenantID, record.ID, approver.ID, now)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, domain.ErrInvalidState
	}

	s.record(ctx, auditdomain.Entry{
		TenantID:   tenantID,
		ActorID:    actorID,
		Action:     auditdomain.ActionApprove,
		EntityType: "work_record",
		EntityID:   record.ID,
		Detail:     map[string]interface{}{"approved_by": approver.ID.String()},
	})

	record.Status = domain.StatusApproved
	record.ApprovedBy = &approver.ID
	record.ApprovedAt = &now
	record.UpdatedAt = now
	resp := s.toResponse(record)
	return &resp, nil
}

func (s *Service) Reject(ctx context.Context, id string, reason string) (*domain.Response, error) {
	tenantID, actorID, err := s.scope(ctx)
	if err != nil {
		return nil, err
	}

	record, err := s.tenantRecord(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	notes := record.Notes
	if reason = strings.TrimSpace(reason); reason != "" {
		notes = appendNote(notes, fmt.Sprintf("[rejected %s] %s", now.Format(time.RFC3339), reason))
	}

	affected, err := s.repo.Reject(ctx, s.db, tenantID, record.ID, notes, now)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, domain.ErrInvalidState
	}

	s.record(ctx, auditdomain.Entry{
		TenantID:   tenantID,
		ActorID:    actorID,
		Action:     auditdomain.ActionReject,
		EntityType: "work_record",
		EntityID:   record.ID,
		Detail:     map[string]interface{}{"reason": reason},
	})

	record.Status = domain.StatusRejected
	record.Notes = notes
	record.UpdatedAt = now
	resp := s.toResponse(record)
	return &resp, nil
}

// ResetToPending reopens an approved or rejected record. The prior
// approver fields stay untouched; the audit line in notes records who
// had signed off and why the reset happened.
func (s *Service) ResetToPending(ctx context.Context, id string, reason string) (*domain.Response, error) {
	tenantID, actorID, err := s.scope(ctx)
	if err != nil {
		return nil, err
	}
	if reason = strings.TrimSpace(reason); reason == "" {
		return nil, domain.ErrMissingReason
	}

	record, err := s.tenantRecord(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if !domain.Resettable(record.Status) || record.IsPaid {
		return nil, domain.ErrInvalidState
	}

	now := s.clock.Now()
	line := fmt.Sprintf("[reset %s] from=%s", now.Format(time.RFC3339), record.Status)
	if record.ApprovedBy != nil {
		line += " approved_by=" + record.ApprovedBy.String()
	}
	line += " reason=" + reason
	notes := appendNote(record.Notes, line)

	affected, err := s.repo.ResetToPending(ctx, s.db, tenantID, record.ID, record.Status, notes, now)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, domain.ErrInvalidState
	}

	s.record(ctx, auditdomain.Entry{
		TenantID:   tenantID,
		ActorID:    actorID,
		Action:     auditdomain.ActionReset,
		EntityType: "work_record",
		EntityID:   record.ID,
		Detail: map[string]interface{}{
			"from_status": record.Status,
			"reason":      reason,
		},
	})

	record.Status = domain.StatusPending
	record.Notes = notes
	record.UpdatedAt = now
	resp := s.toResponse(record)
	return &resp, nil
}

func (s *Service) MarkPaid(ctx context.Context, id string) (*domain.Response, error) {
	tenantID, actorID, err := s.scope(ctx)
	if err != nil {
		return nil, err
	}
	payer, err := s.actorEmployee(ctx, tenantID, actorID)
	if err != nil {
		return nil, err
	}

	record, err := s.tenantRecord(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	affected, err := s.repo.MarkPaid(ctx, s.db, tenantID, record.ID, payer.ID, now)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, domain.ErrInvalidState
	}

	s.record(ctx, auditdomain.Entry{
		TenantID:   tenantID,
		ActorID:    actorID,
		Action:     auditdomain.ActionMarkPaid,
		EntityType: "work_record",
		EntityID:   record.ID,
		Detail:     map[string]interface{}{"paid_by": payer.ID.String()},
	})

	record.IsPaid = true
	record.PaidBy = &payer.ID
	record.PaidAt = &now
	record.UpdatedAt = now
	resp := s.toResponse(record)
	return &resp, nil
}

func (s *Service) UnmarkPaid(ctx context.Context, id string) (*domain.Response, error) {
	tenantID, actorID, err := s.scope(ctx)
	if err != nil {
		return nil, err
	}

	record, err := s.tenantRecord(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	affected, err := s.repo.UnmarkPaid(ctx, s.db, tenantID, record.ID, now)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, domain.ErrInvalidState
	}

	s.record(ctx, auditdomain.Entry{
		TenantID:   tenantID,
		ActorID:    actorID,
		Action:     auditdomain.ActionUnmarkPaid,
		EntityType: "work_record",
		EntityID:   record.ID,
	})

	record.IsPaid = false
	record.PaidBy = nil
	record.PaidAt = nil
	record.UpdatedAt = now
	resp := s.toResponse(record)
	return &resp, nil
}

// BulkApprove applies approve per record. Records that are no longer
// pending when their update lands are skipped, never failed; the call
// always completes and reports what happened.
func (s *Service) BulkApprove(ctx context.Context, ids []string) (*domain.BulkResult, error) {
	tenantID, actorID, err := s.scope(ctx)
	if err != nil {
		return nil, err
	}
	approver, err := s.actorEmployee(ctx, tenantID, actorID)
	if err != nil {
		return nil, err
	}
	if len(ids) > s.workflow.Get().BulkMaxRecords {
		return nil, domain.ErrBulkLimitExceeded
	}

	batchRef := ulid.Make().String()
	result := &domain.BulkResult{BatchRef: batchRef, SkippedIDs: []string{}}

	for _, raw := range ids {
		recordID, err := snowflake.ParseString(strings.TrimSpace(raw))
		if err != nil {
			result.SkippedIDs = append(result.SkippedIDs, raw)
			continue
		}

		now := s.clock.Now()
		affected, err := s.repo.Approve(ctx, s.db, tenantID, recordID, approver.ID, now)
		if err != nil {
			s.log.Warn("bulk approve item failed",
				zap.String("record_id", raw),
				zap.String("batch_ref", batchRef),
				zap.Error(err),
			)
			result.SkippedIDs = append(result.SkippedIDs, raw)
			continue
		}
		if affected == 0 {
			result.SkippedIDs = append(result.SkippedIDs, raw)
			continue
		}

		result.Count++
		s.record(ctx, auditdomain.Entry{
			TenantID:   tenantID,
			ActorID:    actorID,
			Action:     auditdomain.ActionApprove,
			EntityType: "work_record",
			EntityID:   recordID,
			BatchRef:   batchRef,
			Detail:     map[string]interface{}{"approved_by": approver.ID.String()},
		})
	}

	s.recordBulkSkips(ctx, tenantID, actorID, batchRef, result.SkippedIDs)
	return result, nil
}

// BulkReject mirrors BulkApprove with the same skip semantics.
func (s *Service) BulkReject(ctx context.Context, ids []string, reason string) (*domain.BulkResult, error) {
	tenantID, actorID, err := s.scope(ctx)
	if err != nil {
		return nil, err
	}
	if len(ids) > s.workflow.Get().BulkMaxRecords {
		return nil, domain.ErrBulkLimitExceeded
	}
	reason = strings.TrimSpace(reason)

	batchRef := ulid.Make().String()
	result := &domain.BulkResult{BatchRef: batchRef, SkippedIDs: []string{}}

	for _, raw := range ids {
		recordID, err := snowflake.ParseString(strings.TrimSpace(raw))
		if err != nil {
			result.SkippedIDs = append(result.SkippedIDs, raw)
			continue
		}

		record, err := s.repo.FindByID(ctx, s.db, tenantID, recordID)
		if err != nil || record == nil || record.Status != domain.StatusPending {
			result.SkippedIDs = append(result.SkippedIDs, raw)
			continue
		}

		now := s.clock.Now()
		notes := record.Notes
		if reason != "" {
			notes = appendNote(notes, fmt.Sprintf("[rejected %s] %s", now.Format(time.RFC3339), reason))
		}

		affected, err := s.repo.Reject(ctx, s.db, tenantID, recordID, notes, now)
		if err != nil || affected == 0 {
			result.SkippedIDs = append(result.SkippedIDs, raw)
			continue
		}

		result.Count++
		s.record(ctx, auditdomain.Entry{
			TenantID:   tenantID,
			ActorID:    actorID,
			Action:     auditdomain.ActionReject,
			EntityType: "work_record",
			EntityID:   recordID,
			BatchRef:   batchRef,
			Detail:     map[string]interface{}{"reason": reason},
		})
	}

	s.recordBulkSkips(ctx, tenantID, actorID, batchRef, result.SkippedIDs)
	return result, nil
}

func (s *Service) actorEmployee(ctx context.Context, tenantID, actorID snowflake.ID) (*employeedomain.Employee, error) {
	employee, err := s.employees.FindByActor(ctx, s.db, tenantID, actorID)
	if err != nil {
		return nil, err
	}
	if employee == nil || !employee.Active {
		return nil, domain.ErrNoEmployee
	}
	return employee, nil
}

// record appends to the audit trail best-effort. The conditional
// update already committed; a trail failure is logged inside the audit
// service and must not unwind the transition.
func (s *Service) record(ctx context.Context, entry auditdomain.Entry) {
	_ = s.audit.Record(ctx, entry)
}

func (s *Service) recordBulkSkips(ctx context.Context, tenantID, actorID snowflake.ID, batchRef string, skipped []string) {
	if len(skipped) == 0 {
		return
	}
	s.record(ctx, auditdomain.Entry{
		TenantID:   tenantID,
		ActorID:    actorID,
		Action:     auditdomain.ActionBulkSkip,
		EntityType: "work_record",
		BatchRef:   batchRef,
		Detail:     map[string]interface{}{"skipped_ids": skipped},
	})
}

func appendNote(notes, line string) string {
	if notes == "" {
		return line
	}
	return notes + "\n" + line
}
