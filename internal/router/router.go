// Package router wires every HTTP route to its handler and guards.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/gympoint/class-scheduler/internal/config"
	"github.com/gympoint/class-scheduler/internal/handler"
	"github.com/gympoint/class-scheduler/internal/middleware"
	"github.com/gympoint/class-scheduler/internal/model"
)

// Handlers groups everything RegisterRoutes needs so main stays short.
type Handlers struct {
	Templates    *handler.TemplateHandler
	Instances    *handler.InstanceHandler
	Reservations *handler.ReservationHandler
	Schedule     *handler.ScheduleHandler
}

// RegisterRoutes mounts the API. All /v1 routes require a valid JWT;
// role guards narrow writes down to admins, instructors or members.
// Calendar reads sit behind the Redis response cache and member
// booking writes behind the token-bucket rate limiter. Both middlewares
// pass requests straight through when Redis is unavailable.
func RegisterRoutes(e *echo.Echo, h Handlers, jwtSecret string, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	v1 := e.Group("/v1", middleware.JWTAuth(jwtSecret))

	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	admin := v1.Group("", middleware.RequireRole(model.RoleAdmin))
	admin.POST("/templates", h.Templates.Create)
	admin.PATCH("/templates/:id", h.Templates.Update)
	admin.PUT("/templates/:id/instructor", h.Templates.AssignInstructor)
	admin.PUT("/templates/:id/active", h.Templates.ChangeActiveState)

	staff := v1.Group("", middleware.RequireRole(model.RoleAdmin, model.RoleInstructor))
	staff.GET("/templates", h.Templates.List)
	staff.POST("/instances", h.Instances.Create)
	staff.DELETE("/instances/:id", h.Instances.Cancel)
	staff.GET("/instances/:id/reservations", h.Reservations.ListRoster)

	instructor := v1.Group("", middleware.RequireRole(model.RoleInstructor))
	instructor.POST("/instances/generate", h.Instances.Generate)
	instructor.POST("/instances/:id/attendance", h.Reservations.MarkAttendance)

	member := v1.Group("", middleware.RequireRole(model.RoleMember))
	member.POST("/instances/:id/reservations", h.Reservations.Reserve, limiter)
	member.DELETE("/instances/:id/reservations", h.Reservations.Cancel, limiter)
	member.GET("/my-reservations", h.Reservations.ListMine)

	v1.GET("/instances/upcoming", h.Instances.ListUpcoming, cache)
	v1.GET("/schedule/day/:date", h.Schedule.Day, cache)
	v1.GET("/schedule/instructor/:id", h.Schedule.Instructor, cache)
}
