package authorize

import (
	"context"
	"log/slog"
)

// DefaultGroupings: the administrator is a patient record and keeps patient rights.
var DefaultGroupings = []GroupingPolicy{
	{Member: RoleAdmin, Role: RolePatient},
}

// DefaultPolicies is the baseline permission set.
var DefaultPolicies = []PermissionPolicy{
	// Admin: provisioning and the overview
	{RoleAdmin, ResourceDashboard, ActionRead, EffectAllow},
	{RoleAdmin, ResourceDoctor, ActionManage, EffectAllow},
	{RoleAdmin, ResourceDepartment, ActionManage, EffectAllow},

	// Patient: book and see own appointments, pick a doctor
	{RolePatient, ResourceAppointment, ActionCreate, EffectAllow},
	{RolePatient, ResourceAppointment, ActionList, EffectAllow},
	{RolePatient, ResourceDoctor, ActionList, EffectAllow},

	// Doctor: own appointments and their treatments
	{RoleDoctor, ResourceAppointment, ActionList, EffectAllow},
	{RoleDoctor, ResourceAppointment, ActionRead, EffectAllow},
	{RoleDoctor, ResourceTreatment, ActionUpdate, EffectAllow},
}

// SeedDefaultPolicies sets up the baseline RBAC policies. Existing rows are left alone.
func SeedDefaultPolicies(ctx context.Context, auth IAuthorization) error {
	logger := slog.Default()

	for _, g := range DefaultGroupings {
		if _, err := auth.AddRoleInheritance(ctx, g.Member, g.Role); err != nil {
			logger.Error("failed to add grouping", "member", g.Member, "role", g.Role, "error", err)
			return err
		}
	}

	for _, p := range DefaultPolicies {
		added, err := auth.AddPermission(ctx, p.Subject, p.Object, p.Action, p.Effect)
		if err != nil {
			logger.Error("failed to add policy", "policy", p, "error", err)
			return err
		}
		if added {
			logger.Debug("added policy", "role", p.Subject, "resource", p.Object, "action", p.Action)
		}
	}

	logger.Info("seeded default RBAC policies", "count", len(DefaultPolicies))
	return nil
}
