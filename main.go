// Package main bag rental API.
//
// @title           Bag Rental API
// @version         1.0
// @description     Designer bag subscription rental: catalog, reservations, waitlists and back office.
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bagrental/app/echoServer"
	adminctrl "bagrental/app/echoServer/controller/admin"
	authctrl "bagrental/app/echoServer/controller/auth"
	bagctrl "bagrental/app/echoServer/controller/bag"
	membershipctrl "bagrental/app/echoServer/controller/membership"
	newsletterctrl "bagrental/app/echoServer/controller/newsletter"
	reservationctrl "bagrental/app/echoServer/controller/reservation"
	waitlistctrl "bagrental/app/echoServer/controller/waitlist"
	webhookctrl "bagrental/app/echoServer/controller/webhook"
	"bagrental/app/echoServer/validation"
	"bagrental/config"
	_ "bagrental/docs"
	"bagrental/migrations"
	authrepo "bagrental/repository/auth"
	bagrepo "bagrental/repository/bag"
	"bagrental/repository/cache"
	newsletterrepo "bagrental/repository/newsletter"
	"bagrental/repository/notifier"
	profilerepo "bagrental/repository/profile"
	reservationrepo "bagrental/repository/reservation"
	waitlistrepo "bagrental/repository/waitlist"
	adminsvc "bagrental/service/admin"
	authsvc "bagrental/service/auth"
	bagsvc "bagrental/service/bag"
	membershipsvc "bagrental/service/membership"
	newslettersvc "bagrental/service/newsletter"
	reservationsvc "bagrental/service/reservation"
	waitlistsvc "bagrental/service/waitlist"
	webhooksvc "bagrental/service/webhook"
	"bagrental/util/clock"
	"bagrental/util/database"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := newLogger(cfg)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MigrateOnStart {
		if err := migrations.Up(cfg.DatabaseURL); err != nil {
			log.Fatal("migrate failed", zap.Error(err))
		}
	}

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("db connect failed", zap.Error(err))
	}
	defer db.Close()

	catalog := cache.NewNoop()
	if cfg.RedisURL != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn("redis unavailable, catalog cache disabled", zap.Error(err))
		} else {
			defer rdb.Close()
			catalog = cache.NewRedis(rdb, cache.DefaultTTL)
		}
	}

	sender := notifier.NewLog(log)
	if cfg.MailAPIURL != "" {
		sender = notifier.NewHTTP(cfg.MailAPIURL, cfg.MailAPIKey, cfg.MailFrom)
	}
	clk := clock.NewSystem()

	// repos
	ar := authrepo.New(db)
	br := bagrepo.New(db)
	rr := reservationrepo.New(db)
	wr := waitlistrepo.New(db)
	pr := profilerepo.New(db)
	nr := newsletterrepo.New(db)

	// services
	as := authsvc.New(ar, cfg.JWTSecret, authsvc.WithAdminEmails(cfg.AdminEmails))
	ws := waitlistsvc.New(db, br, wr, sender, catalog, clk, log)
	bs := bagsvc.New(br, wr, catalog, log)
	rs := reservationsvc.New(db, rr, br, pr, ws, clk, log)
	ads := adminsvc.New(db, br, wr, rr, ws, catalog, clk, log)
	ms := membershipsvc.New(pr)
	whs := webhooksvc.New(cfg.WebhookToken, ms, log)
	ns := newslettersvc.New(nr)

	// controllers
	v := validation.NewValidate()
	routes := echoServer.C{
		Auth:        &authctrl.Controller{Svc: as, V: v, Log: log},
		Bag:         &bagctrl.Controller{Svc: bs, Log: log},
		Reservation: &reservationctrl.Controller{Svc: rs, V: v, Log: log},
		Waitlist:    &waitlistctrl.Controller{Svc: ws, V: v, Log: log},
		Admin:       &adminctrl.Controller{Svc: ads, V: v, Log: log},
		Membership:  &membershipctrl.Controller{Svc: ms, V: v, Log: log},
		Newsletter:  &newsletterctrl.Controller{Svc: ns, Log: log},
		Webhook:     &webhookctrl.Controller{Svc: whs, Log: log},

		JWTSecret:             cfg.JWTSecret,
		AdminEmails:           cfg.AdminEmails,
		AdminChecker:          ms,
		PublicWritesPerMinute: cfg.RateLimit,
		Log:                   log,
	}

	// echo
	e := echo.New()
	e.HideBanner = true
	echoServer.RegisterMiddlewares(e, log, cfg.CORSOrigins)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		if err := db.Pool.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "degraded", "message": "database unreachable"})
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ok", "message": "Service is healthy and connected"})
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, routes)

	go releaseExpired(ctx, rs, cfg.ReservationTTL, cfg.CleanupInterval, log)

	go func() {
		log.Info("starting server", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
}

func newLogger(cfg config.App) *zap.Logger {
	var (
		log *zap.Logger
		err error
	)
	if cfg.Dev() {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	return log
}

// releaseExpired frees bags held by pending reservations nobody confirmed in time.
func releaseExpired(ctx context.Context, rs reservationsvc.Service, ttl, every time.Duration, log *zap.Logger) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := rs.ReleaseExpired(ctx, ttl)
			if err != nil {
				log.Error("release expired reservations", zap.Error(err))
				continue
			}
			if n > 0 {
				log.Info("released expired reservations", zap.Int("count", n))
			}
		}
	}
}
