package authorization

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	auditdomain "github.com/sewtrack/sewtrack/internal/audit/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectTenant     = "tenant"
	ObjectEmployee   = "employee"
	ObjectProduct    = "product"
	ObjectTask       = "task"
	ObjectRateCard   = "rate_card"
	ObjectWorkRecord = "work_record"
	ObjectReport     = "report"
	ObjectAuditLog   = "audit_log"
)

const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"

	ActionWorkRecordSubmit     = "work_record.submit"
	ActionWorkRecordUpdate     = "work_record.update"
	ActionWorkRecordDelete     = "work_record.delete"
	ActionWorkRecordApprove    = "work_record.approve"
	ActionWorkRecordReject     = "work_record.reject"
	ActionWorkRecordReset      = "work_record.reset"
	ActionWorkRecordMarkPaid   = "work_record.mark_paid"
	ActionWorkRecordUnmarkPaid = "work_record.unmark_paid"

	ActionTenantManage = "tenant.manage"
	ActionReportView   = "report.view"
	ActionAuditLogView = "audit_log.view"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
	AuditSvc auditdomain.Service `optional:"true"`
}

type ServiceImpl struct {
	db       *gorm.DB
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
	auditSvc auditdomain.Service
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		db:       p.DB,
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
		auditSvc: p.AuditSvc,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, actor string, tenantID string, object string, action string) error {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return ErrInvalidActor
	}
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return ErrInvalidTenant
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	subject, roleName, err := s.resolveActor(ctx, actor, tenantID)
	if err != nil {
		s.auditDenied(ctx, actor, tenantID, object, action)
		return err
	}

	domain := fmt.Sprintf("tenant:%s", tenantID)
	if err := s.ensureGrouping(subject, roleName, domain); err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(subject, domain, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.auditDenied(ctx, actor, tenantID, object, action)
		return ErrForbidden
	}
	return nil
}

func (s *ServiceImpl) resolveActor(ctx context.Context, actor string, tenantID string) (string, string, error) {
	if actor == "system" {
		return actor, "role:system", nil
	}

	actorID, err := snowflake.ParseString(strings.TrimPrefix(actor, "user:"))
	if err != nil || actorID == 0 {
		return "", "", ErrInvalidActor
	}
	parsedTenantID, err := snowflake.ParseString(tenantID)
	if err != nil || parsedTenantID == 0 {
		return "", "", ErrInvalidTenant
	}

	role, err := s.roleForActor(ctx, parsedTenantID, actorID)
	if err != nil {
		return "", "", err
	}
	subject := fmt.Sprintf("user:%s", actorID.String())
	return subject, fmt.Sprintf("role:%s", strings.ToLower(role)), nil
}

// roleForActor resolves the actor's strongest standing in the tenant:
// ownership beats membership role beats employee position.
func (s *ServiceImpl) roleForActor(ctx context.Context, tenantID snowflake.ID, actorID snowflake.ID) (string, error) {
	var owner struct {
		ID snowflake.ID `gorm:"column:id"`
	}
	if err := s.db.WithContext(ctx).Raw(
		`SELECT id FROM tenants WHERE id = ? AND owner_id = ? LIMIT 1`,
		tenantID, actorID,
	).Scan(&owner).Error; err != nil {
		return "", err
	}
	if owner.ID != 0 {
		return "owner", nil
	}

	var membership struct {
		Role string `gorm:"column:role"`
	}
	if err := s.db.WithContext(ctx).Raw(
		`SELECT role
		 FROM tenant_memberships
		 WHERE tenant_id = ? AND actor_id = ? AND active = ?
		 LIMIT 1`,
		tenantID, actorID, true,
	).Scan(&membership).Error; err != nil {
		return "", err
	}
	if role := strings.TrimSpace(membership.Role); role != "" {
		return role, nil
	}

	var employee struct {
		Position string `gorm:"column:position"`
	}
	if err := s.db.WithContext(ctx).Raw(
		`SELECT position
		 FROM employees
		 WHERE tenant_id = ? AND actor_id = ? AND active = ?
		 LIMIT 1`,
		tenantID, actorID, true,
	).Scan(&employee).Error; err != nil {
		return "", err
	}
	switch strings.TrimSpace(employee.Position) {
	case "":
		return "", ErrForbidden
	case "master", "supervisor":
		return "master", nil
	default:
		return "worker", nil
	}
}

func (s *ServiceImpl) ensureGrouping(subject string, roleName string, domain string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject, "", domain)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) < 2 {
			continue
		}
		if rule[1] != roleName {
			params := make([]interface{}, 0, len(rule))
			for _, value := range rule {
				params = append(params, value)
			}
			_, _ = s.enforcer.RemoveGroupingPolicy(params...)
		}
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, roleName, domain)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, roleName, domain)
	return err
}

func (s *ServiceImpl) auditDenied(ctx context.Context, actor string, tenantID string, object string, action string) {
	if s.auditSvc == nil {
		return
	}
	parsedTenantID, err := snowflake.ParseString(tenantID)
	if err != nil || parsedTenantID == 0 {
		return
	}
	actorID, _ := snowflake.ParseString(strings.TrimPrefix(actor, "user:"))
	_ = s.auditSvc.Record(ctx, auditdomain.Entry{
		TenantID:   parsedTenantID,
		ActorID:    actorID,
		Action:     "authorization.denied",
		EntityType: "authorization",
		Detail: map[string]interface{}{
			"object": object,
			"action": action,
		},
	})
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	manage := func(role string, objects ...string) [][]string {
		var rules [][]string
		for _, object := range objects {
			for _, action := range []string{ActionView, ActionCreate, ActionUpdate, ActionDelete} {
				rules = append(rules, []string{role, object, action})
			}
		}
		return rules
	}

	policies := [][]string{
		// Viewer: read-only everywhere.
		{"role:viewer", ObjectProduct, ActionView},
		{"role:viewer", ObjectTask, ActionView},
		{"role:viewer", ObjectRateCard, ActionView},
		{"role:viewer", ObjectEmployee, ActionView},
		{"role:viewer", ObjectWorkRecord, ActionView},
		{"role:viewer", ObjectReport, ActionReportView},

		// Worker: submit and maintain their own pending records.
		{"role:worker", ObjectProduct, ActionView},
		{"role:worker", ObjectTask, ActionView},
		{"role:worker", ObjectRateCard, ActionView},
		{"role:worker", ObjectWorkRecord, ActionView},
		{"role:worker", ObjectWorkRecord, ActionWorkRecordSubmit},
		{"role:worker", ObjectWorkRecord, ActionWorkRecordUpdate},
		{"role:worker", ObjectWorkRecord, ActionWorkRecordDelete},

		// Master: the approval workflow plus everything a worker has.
		{"role:master", ObjectProduct, ActionView},
		{"role:master", ObjectTask, ActionView},
		{"role:master", ObjectRateCard, ActionView},
		{"role:master", ObjectEmployee, ActionView},
		{"role:master", ObjectWorkRecord, ActionView},
		{"role:master", ObjectWorkRecord, ActionWorkRecordSubmit},
		{"role:master", ObjectWorkRecord, ActionWorkRecordApprove},
		{"role:master", ObjectWorkRecord, ActionWorkRecordReject},
		{"role:master", ObjectWorkRecord, ActionWorkRecordReset},
		{"role:master", ObjectReport, ActionReportView},

		// Accountant: payment marking and reporting.
		{"role:accountant", ObjectWorkRecord, ActionView},
		{"role:accountant", ObjectWorkRecord, ActionWorkRecordMarkPaid},
		{"role:accountant", ObjectWorkRecord, ActionWorkRecordUnmarkPaid},
		{"role:accountant", ObjectEmployee, ActionView},
		{"role:accountant", ObjectReport, ActionReportView},
		{"role:accountant", ObjectAuditLog, ActionAuditLogView},
	}

	// Admin and owner hold full CRUD on every object plus all workflow
	// actions.
	for _, role := range []string{"role:admin", "role:owner"} {
		policies = append(policies, manage(role,
			ObjectTenant, ObjectEmployee, ObjectProduct, ObjectTask,
			ObjectRateCard, ObjectWorkRecord,
		)...)
		policies = append(policies,
			[]string{role, ObjectTenant, ActionTenantManage},
			[]string{role, ObjectWorkRecord, ActionWorkRecordSubmit},
			[]string{role, ObjectWorkRecord, ActionWorkRecordUpdate},
			[]string{role, ObjectWorkRecord, ActionWorkRecordDelete},
			[]string{role, ObjectWorkRecord, ActionWorkRecordApprove},
			[]string{role, ObjectWorkRecord, ActionWorkRecordReject},
			[]string{role, ObjectWorkRecord, ActionWorkRecordReset},
			[]string{role, ObjectWorkRecord, ActionWorkRecordMarkPaid},
			[]string{role, ObjectWorkRecord, ActionWorkRecordUnmarkPaid},
			[]string{role, ObjectReport, ActionReportView},
			[]string{role, ObjectAuditLog, ActionAuditLogView},
		)
	}

	for _, policy := range policies {
		if len(policy) < 3 {
			continue
		}
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}
