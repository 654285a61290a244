package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/libvisit-api/internal/middleware"
)

// Routes groups every handler and guard the HTTP surface needs.
type Routes struct {
	Student   *StudentHandler
	Auth      *AuthHandler
	Visitors  *VisitorHandler
	Analytics *AnalyticsHandler
	Transfer  *TransferHandler
	Metrics   *MetricsHandler

	Session   gin.HandlerFunc
	RateLimit gin.HandlerFunc
	Logger    *zap.Logger
}

// Register mounts the probes at the root and the API under prefix.
func (rt Routes) Register(r *gin.Engine, prefix string) {
	r.GET("/health", rt.Metrics.Health)
	r.GET("/ready", rt.Metrics.Ready)
	r.GET("/metrics", rt.Metrics.Prometheus)

	api := r.Group(prefix)

	student := api.Group("/student")
	if rt.RateLimit != nil {
		student.Use(rt.RateLimit)
	}
	student.POST("/visit", rt.Student.RecordVisit)
	student.GET("/check/:roll_no", rt.Student.CheckStatus)
	student.PUT("/exit/:id", rt.Student.RecordExit)
	student.PUT("/exit/roll/:roll_no", rt.Student.ExitByRollNo)

	admin := api.Group("/admin")
	login := []gin.HandlerFunc{rt.Auth.Login}
	if rt.RateLimit != nil {
		login = append([]gin.HandlerFunc{rt.RateLimit}, login...)
	}
	admin.POST("/login", login...)
	admin.POST("/logout", rt.Auth.Logout)
	admin.GET("/check-session", rt.Auth.CheckSession)

	secured := admin.Group("")
	secured.Use(rt.Session)
	secured.GET("/visitors", rt.Visitors.List)
	secured.GET("/visitors/today", rt.Visitors.Today)
	secured.POST("/visitors", middleware.Audit(rt.Logger, "visitor.create"), rt.Visitors.Create)
	secured.POST("/visitors/bulk", middleware.Audit(rt.Logger, "visitor.bulk"), rt.Visitors.Bulk)
	secured.GET("/analytics", rt.Analytics.Visitors)
	secured.POST("/import", middleware.Audit(rt.Logger, "visitor.import"), rt.Transfer.Import)
	secured.GET("/export", middleware.Audit(rt.Logger, "visitor.export"), rt.Transfer.Export)
}
