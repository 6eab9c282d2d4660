package server

func (s *Server) initRoutes() {
	// LOGIN
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginRedirectHandler(), s.HTMLMiddleware(s.RateLimitMiddleware)...))
	s.RegisterRouteHandler("GET "+RouteCallback, ChainMiddleware(s.OAuthCallbackHandler(), s.HTMLMiddleware(s.RateLimitMiddleware)...))

	// Session / role API
	s.RegisterRouteHandler("POST "+RouteAuthSession, ChainMiddleware(s.SessionLoginHandler(), s.APIMiddleware(s.RateLimitMiddleware)...))
	s.RegisterRouteHandler("GET "+RouteAuthSession, ChainMiddleware(s.SessionStatusHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthRole, ChainMiddleware(s.RoleHandler(), s.APIMiddleware(s.RateLimitMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware()...))

	// Notification API (edge hygiene first, then bearer auth)
	s.RegisterRouteHandler("GET "+RouteNotifications, ChainMiddleware(s.NotificationListHandler(), s.APIMiddleware(s.SessionHygieneMiddleware, s.RequireAuth())...))
	s.RegisterRouteHandler("POST "+RouteNotifications, ChainMiddleware(s.NotificationAppendHandler(), s.APIMiddleware(s.SessionHygieneMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteNotificationRead, ChainMiddleware(s.NotificationMarkReadHandler(), s.APIMiddleware(s.SessionHygieneMiddleware, s.RequireAuth())...))
	s.RegisterRouteHandler("POST "+RouteNotificationsReadAll, ChainMiddleware(s.NotificationMarkAllReadHandler(), s.APIMiddleware(s.SessionHygieneMiddleware, s.RequireAuth())...))
	s.RegisterRouteHandler("DELETE "+RouteNotificationDelete, ChainMiddleware(s.NotificationDeleteHandler(), s.APIMiddleware(s.SessionHygieneMiddleware, s.RequireAuth())...))

	// Operational
	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())
	s.RegisterRouteHandler("GET "+RouteMetrics, s.metrics.Handler())
}
