package router

import (
	"context"
	"net/http"
	"time"

	"attendance/console/foundation/web"
	"attendance/console/internal/auth"
	"attendance/console/internal/middleware"
	"attendance/console/internal/pkg/config"
	"attendance/console/internal/pkg/repository/postgresql"
	"attendance/console/internal/repository/postgres/attendance"
	"attendance/console/internal/repository/postgres/holiday"
	"attendance/console/internal/repository/postgres/payroll"
	"attendance/console/internal/repository/postgres/staff"
	"attendance/console/internal/repository/postgres/store"
	holiday_cache "attendance/console/internal/repository/redis/holiday"
	"attendance/console/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	attendance_controller "attendance/console/internal/controller/http/v1/attendance"
	auth_controller "attendance/console/internal/controller/http/v1/auth"
	holiday_controller "attendance/console/internal/controller/http/v1/holiday"
	payroll_controller "attendance/console/internal/controller/http/v1/payroll"
	staff_controller "attendance/console/internal/controller/http/v1/staff"
	store_controller "attendance/console/internal/controller/http/v1/store"
)

type Router struct {
	*web.App
	postgresDB *postgresql.Database
	redisDB    *redis.Client
	auth       *auth.Auth
	cfg        *config.Config
}

func NewRouter(
	app *web.App,
	postgresDB *postgresql.Database,
	redisDB *redis.Client,
	auth *auth.Auth,
	cfg *config.Config,
) *Router {
	return &Router{
		app,
		postgresDB,
		redisDB,
		auth,
		cfg,
	}
}

// Init registers every route. ctx bounds the background work of the
// middleware.
func (r Router) Init(ctx context.Context) error {
	loc, err := r.cfg.Location()
	if err != nil {
		return err
	}
	withholding, err := r.cfg.Withholding()
	if err != nil {
		return err
	}

	r.HandleMethodNotAllowed = true
	r.Use(middleware.Cors(r.cfg.CORSOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "success"})
	})

	// - postgresql
	staffPostgres := staff.NewRepository(r.postgresDB)
	storePostgres := store.NewRepository(r.postgresDB)
	attendancePostgres := attendance.NewRepository(r.postgresDB)
	holidayPostgres := holiday.NewRepository(r.postgresDB)
	payrollPostgres := payroll.NewRepository(r.postgresDB)

	// - redis
	holidayRedis := holiday_cache.NewCache(r.redisDB, time.Hour)

	// controller
	authController := auth_controller.NewController(staffPostgres, r.auth)
	staffController := staff_controller.NewController(staffPostgres)
	storeController := store_controller.NewController(storePostgres)
	holidayController := holiday_controller.NewController(holidayPostgres, holidayRedis, r.Log())
	attendanceController := attendance_controller.NewController(attendancePostgres, storePostgres, holidayPostgres, staffPostgres, attendance_controller.Settings{
		Location:        loc,
		AllowOutOfRange: r.cfg.AllowOutOfRange,
		HourlyWage:      r.cfg.HourlyWage,
		Log:             r.Log(),
	})
	payrollController := payroll_controller.NewController(payrollPostgres, attendancePostgres, holidayPostgres, staffPostgres,
		service.NewStatement(r.cfg.StatementFont), r.cfg.HourlyWage, withholding)

	clockLimiter := middleware.NewRateLimiter(ctx, r.cfg.ClockPerMinute, r.cfg.ClockBurst)

	// #auth
	r.Post("/api/v1/sign-in", authController.SignIn)

	// #staff
	r.Get("/api/v1/staff/:id", staffController.GetDetailById, middleware.Authenticate(r.auth))
	r.Post("/api/v1/staff", staffController.Create, middleware.Authenticate(r.auth, auth.RoleAdmin))
	r.Delete("/api/v1/staff/:id", staffController.Delete, middleware.Authenticate(r.auth, auth.RoleAdmin))

	// #store
	r.Get("/api/v1/store-info", storeController.GetInfo, middleware.Authenticate(r.auth))
	r.Put("/api/v1/store-info", storeController.UpdateAll, middleware.Authenticate(r.auth, auth.RoleAdmin))

	// #attendance
	r.Get("/api/v1/attendance", attendanceController.GetList, middleware.Authenticate(r.auth))
	r.Post("/api/v1/attendance", attendanceController.Post, middleware.Authenticate(r.auth), clockLimiter.Limit())
	r.Get("/api/v1/attendance/status", attendanceController.GetStatus, middleware.Authenticate(r.auth))
	r.Get("/api/v1/attendance/monthly-summary", attendanceController.GetMonthlySummary, middleware.Authenticate(r.auth))
	r.Get("/api/v1/attendance/export", attendanceController.Export, middleware.Authenticate(r.auth))

	// #holiday
	r.Get("/api/v1/holidays", holidayController.GetList, middleware.Authenticate(r.auth))
	r.Post("/api/v1/holidays", holidayController.Create, middleware.Authenticate(r.auth, auth.RoleAdmin))
	r.Delete("/api/v1/holidays/:date", holidayController.Delete, middleware.Authenticate(r.auth, auth.RoleAdmin))

	// #payroll
	r.Post("/api/v1/payroll/calculate", payrollController.Calculate, middleware.Authenticate(r.auth))
	r.Get("/api/v1/payroll/statement", payrollController.GetStatement, middleware.Authenticate(r.auth))

	return nil
}
