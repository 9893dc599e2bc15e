package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sewtrack/sewtrack/internal/workrecord/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, record *domain.WorkRecord) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO work_records (id, tenant_id, employee_id, product_id, task_id, product_task_id, quantity, tier, price_per_unit, total_payment, status, work_date, notes, submitted_by, approved_by, approved_at, is_paid, paid_by, paid_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.TenantID,
		record.EmployeeID,
		record.ProductID,
		record.TaskID,
		record.ProductTaskID,
		record.Quantity,
		record.Tier,
		record.PricePerUnit,
		record.TotalPayment,
		record.Status,
		record.WorkDate,
		record.Notes,
		record.SubmittedBy,
		record.ApprovedBy,
		record.ApprovedAt,
		record.IsPaid,
		record.PaidBy,
		record.PaidAt,
		record.CreatedAt,
		record.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*domain.WorkRecord, error) {
	var record domain.WorkRecord
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM work_records WHERE tenant_id = ? AND id = ?`,
		tenantID, id,
	).Scan(&record).Error
	if err != nil {
		return nil, err
	}
	if record.ID == 0 {
		return nil, nil
	}
	return &record, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, filter domain.ListFilter) ([]domain.WorkRecord, error) {
	var items []domain.WorkRecord
	stmt := db.WithContext(ctx).
		Model(&domain.WorkRecord{}).
		Where("tenant_id = ?", tenantID)

	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.EmployeeID != 0 {
		stmt = stmt.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.ProductID != 0 {
		stmt = stmt.Where("product_id = ?", filter.ProductID)
	}
	if filter.From != nil {
		stmt = stmt.Where("work_date >= ?", *filter.From)
	}
	if filter.To != nil {
		stmt = stmt.Where("work_date <= ?", *filter.To)
	}
	if filter.IsPaid != nil {
		stmt = stmt.Where("is_paid = ?", *filter.IsPaid)
	}
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		stmt = stmt.Offset(filter.Offset)
	}

	if err := stmt.Order("work_date DESC, id DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Transition writes below return RowsAffected. Zero rows means the
// record was not in the expected state when the update executed.

func (r *repo) UpdatePending(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID, quantity int, total decimal.Decimal, notes string, at time.Time) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE work_records
		 SET quantity = ?, total_payment = ?, notes = ?, updated_at = ?
		 WHERE id = ? AND tenant_id = ? AND status = ?`,
		quantity, total, notes, at,
		id, tenantID, domain.StatusPending,
	)
	return res.RowsAffected, res.Error
}

func (r *repo) DeletePending(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`DELETE FROM work_records WHERE id = ? AND tenant_id = ? AND status = ?`,
		id, tenantID, domain.StatusPending,
	)
	return res.RowsAffected, res.Error
}

func (r *repo) Approve(ctx context.Context, db *gorm.DB, tenantID, id, approverID snowflake.ID, at time.Time) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE work_records
		 SET status = ?, approved_by = ?, approved_at = ?, updated_at = ?
		 WHERE id = ? AND tenant_id = ? AND status = ?`,
		domain.StatusApproved, approverID, at, at,
		id, tenantID, domain.StatusPending,
	)
	return res.RowsAffected, res.Error
}

func (r *repo) Reject(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID, notes string, at time.Time) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE work_records
		 SET status = ?, notes = ?, updated_at = ?
		 WHERE id = ? AND tenant_id = ? AND status = ?`,
		domain.StatusRejected, notes, at,
		id, tenantID, domain.StatusPending,
	)
	return res.RowsAffected, res.Error
}

// ResetToPending deliberately leaves approved_by/approved_at in place:
// they document who had signed off before the reset.
func (r *repo) ResetToPending(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID, fromStatus, notes string, at time.Time) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE work_records
		 SET status = ?, notes = ?, updated_at = ?
		 WHERE id = ? AND tenant_id = ? AND status = ? AND is_paid = ?`,
		domain.StatusPending, notes, at,
		id, tenantID, fromStatus, false,
	)
	return res.RowsAffected, res.Error
}

func (r *repo) MarkPaid(ctx context.Context, db *gorm.DB, tenantID, id, payerID snowflake.ID, at time.Time) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE work_records
		 SET is_paid = ?, paid_by = ?, paid_at = ?, updated_at = ?
		 WHERE id = ? AND tenant_id = ? AND status = ? AND is_paid = ?`,
		true, payerID, at, at,
		id, tenantID, domain.StatusApproved, false,
	)
	return res.RowsAffected, res.Error
}

func (r *repo) UnmarkPaid(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID, at time.Time) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE work_records
		 SET is_paid = ?, paid_by = NULL, paid_at = NULL, updated_at = ?
		 WHERE id = ? AND tenant_id = ? AND is_paid = ?`,
		false, at,
		id, tenantID, true,
	)
	return res.RowsAffected, res.Error
}
