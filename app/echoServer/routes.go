package echoServer

import (
	"bagrental/app/echoServer/controller/admin"
	"bagrental/app/echoServer/controller/auth"
	"bagrental/app/echoServer/controller/bag"
	"bagrental/app/echoServer/controller/membership"
	"bagrental/app/echoServer/controller/newsletter"
	"bagrental/app/echoServer/controller/reservation"
	"bagrental/app/echoServer/controller/waitlist"
	"bagrental/app/echoServer/controller/webhook"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type C struct {
	Auth        *auth.Controller
	Bag         *bag.Controller
	Reservation *reservation.Controller
	Waitlist    *waitlist.Controller
	Admin       *admin.Controller
	Membership  *membership.Controller
	Newsletter  *newsletter.Controller
	Webhook     *webhook.Controller

	JWTSecret    string
	AdminEmails  []string
	AdminChecker AdminChecker
	// PublicWritesPerMinute limits anonymous POSTs per client IP; 0 disables it.
	PublicWritesPerMinute int
	Log                   *zap.Logger
}

func Register(e *echo.Echo, c C) {
	limit := func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	if c.PublicWritesPerMinute > 0 {
		limit = RateLimit(c.PublicWritesPerMinute)
	}

	// Public
	pub := e.Group("/api")
	pub.POST("/auth/register", c.Auth.Register, limit)
	pub.POST("/auth/login", c.Auth.Login, limit)

	pub.GET("/bags", c.Bag.List)
	pub.GET("/bags/:id", c.Bag.Detail)

	pub.POST("/waitlist", c.Waitlist.Join, limit, OptionalAuth(c.JWTSecret))

	pub.POST("/newsletter", c.Newsletter.Subscribe, limit)
	pub.DELETE("/newsletter", c.Newsletter.Unsubscribe, limit)

	// Provider callbacks authenticate with the shared token header.
	pub.POST("/webhooks/payment", c.Webhook.Payment)
	pub.POST("/webhooks/identity", c.Webhook.Identity)

	// Member
	user := e.Group("/api", JWTAuth(c.JWTSecret))
	user.POST("/reservations", c.Reservation.Create)
	user.GET("/reservations/my", c.Reservation.My)
	user.POST("/reservations/:id/cancel", c.Reservation.Cancel)

	user.GET("/user/profile", c.Membership.Profile)
	user.PUT("/user/profile", c.Membership.UpdateProfile)
	user.POST("/user/store-pending-plan", c.Membership.StorePendingPlan)

	// Admin
	requireAdmin := RequireAdmin(c.AdminChecker, c.AdminEmails, c.Log)
	user.POST("/user/update-membership", c.Membership.UpdateMembership, requireAdmin)

	adm := e.Group("/api/admin", JWTAuth(c.JWTSecret), requireAdmin)
	adm.GET("/inventory", c.Admin.Inventory)
	adm.POST("/inventory", c.Admin.CreateBag)
	adm.PATCH("/inventory", c.Admin.UpdateBag)
	adm.PATCH("/inventory/:id", c.Admin.UpdateBag)
	adm.DELETE("/inventory/:id", c.Admin.DeleteBag)

	adm.POST("/bags/nfc", c.Admin.AssignNFC)
	adm.POST("/bags/nfc/scan", c.Admin.ScanNFC)
	adm.POST("/bags/:id/nfc/unblock", c.Admin.UnblockNFC)

	adm.GET("/reservations", c.Reservation.All)
	adm.PATCH("/reservations/:id", c.Reservation.UpdateStatus)

	adm.GET("/bags/:id/waitlist", c.Waitlist.List)
	adm.POST("/waitlist/:id/notify", c.Waitlist.Notify)
	adm.DELETE("/waitlist/:id", c.Waitlist.Remove)

	adm.GET("/shipping", c.Admin.Shipping)
	adm.GET("/shipping.csv", c.Admin.ShippingCSV)
}
