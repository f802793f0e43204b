package service

import "onboarder/internal/domain"

// RoleTable maps registrations to platform roles. It is built once at startup.
type RoleTable struct {
	GraduateCohort    domain.RoleID
	ProgrammingCourse domain.RoleID
	Products          map[domain.Product]domain.RoleID
	Programs          map[domain.Program]domain.RoleID
}

// RoleResolver turns registration selections into role grants
type RoleResolver struct {
	table RoleTable
}

// NewRoleResolver creates a resolver over a private copy of table
func NewRoleResolver(table RoleTable) *RoleResolver {
	products := make(map[domain.Product]domain.RoleID, len(table.Products))
	for k, v := range table.Products {
		products[k] = v
	}
	programs := make(map[domain.Program]domain.RoleID, len(table.Programs))
	for k, v := range table.Programs {
		programs[k] = v
	}
	table.Products = products
	table.Programs = programs
	return &RoleResolver{table: table}
}

// Resolve returns the roles for a registration, without duplicates, in a stable order:
// product role first, then program roles in the given order, then the course role.
//
// programmingCourse is never set by the onboarding workflow; the parameter is kept
// for registrations that carry the course add-on.
func (r *RoleResolver) Resolve(product domain.Product, programs []domain.Program, programmingCourse bool) []domain.RoleID {
	roles := make([]domain.RoleID, 0, len(programs)+2)
	seen := make(map[domain.RoleID]struct{}, len(programs)+2)
	add := func(role domain.RoleID) {
		if role == "" {
			return
		}
		if _, ok := seen[role]; ok {
			return
		}
		seen[role] = struct{}{}
		roles = append(roles, role)
	}

	if product == domain.ProductMaster {
		add(r.table.GraduateCohort)
	} else {
		add(r.table.Products[product])
	}
	for _, p := range programs {
		add(r.table.Programs[p])
	}
	if programmingCourse {
		add(r.table.ProgrammingCourse)
	}

	return roles
}

// ProgramRole returns the role mapped to a single program
func (r *RoleResolver) ProgramRole(program domain.Program) (domain.RoleID, bool) {
	role, ok := r.table.Programs[program]
	return role, ok && role != ""
}
