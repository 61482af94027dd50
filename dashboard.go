package swclient

import "context"

// Stats is a dashboard payload. Its keys differ per role and backend
// version, so it is kept as a loose map.
type Stats map[string]any

// DashboardService reads role dashboards.
type DashboardService struct {
	client *Client
}

// Stats reads the generic dashboard.
func (s *DashboardService) Stats(ctx context.Context) (Stats, error) {
	return getJSON[Stats](ctx, s.client, apiPrefix+"/dashboard/stats")
}

// AdminStats reads the organisation-wide dashboard. Admins only.
func (s *DashboardService) AdminStats(ctx context.Context) (Stats, error) {
	return getJSON[Stats](ctx, s.client, apiPrefix+"/dashboard/admin")
}

// ManagerStats reads the team dashboard.
func (s *DashboardService) ManagerStats(ctx context.Context) (Stats, error) {
	return getJSON[Stats](ctx, s.client, apiPrefix+"/dashboard/manager")
}

// EmployeeStats reads the personal dashboard.
func (s *DashboardService) EmployeeStats(ctx context.Context) (Stats, error) {
	return getJSON[Stats](ctx, s.client, apiPrefix+"/dashboard/employee")
}

// ForRole picks the dashboard matching role. Unknown roles get the generic
// stats endpoint.
func (s *DashboardService) ForRole(ctx context.Context, role Role) (Stats, error) {
	switch role {
	case RoleAdmin:
		return s.AdminStats(ctx)
	case RoleManager:
		return s.ManagerStats(ctx)
	case RoleEmployee:
		return s.EmployeeStats(ctx)
	default:
		return s.Stats(ctx)
	}
}
