package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes
	RouteLogin       = "/login"
	RouteCallback    = "/callback"
	RouteAuthSession = "/api/auth/session"
	RouteAuthRole    = "/api/auth/role"
	RouteAuthLogout  = "/api/auth/logout"

	// Notification Routes
	RouteNotifications        = "/api/notifications"
	RouteNotificationRead     = "/api/notifications/{id}/read"
	RouteNotificationsReadAll = "/api/notifications/read-all"
	RouteNotificationDelete   = "/api/notifications/{id}"

	// Operational Routes
	RouteHealth  = "/healthz"
	RouteMetrics = "/metrics"
)
