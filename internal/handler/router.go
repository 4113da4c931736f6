package handler

import (
	"github.com/gin-gonic/gin"
)

// Handlers bundles every route group the API serves.
type Handlers struct {
	Teachers    *TeacherHandler
	Courses     *CourseHandler
	Sections    *SectionHandler
	Rooms       *RoomHandler
	Offerings   *OfferingHandler
	Constraints *ConstraintHandler
	TimeSlots   *TimeSlotHandler
	Generations *GenerationHandler
	Timetables  *TimetableHandler
	Imports     *ImportHandler
	Exports     *ExportHandler
	Metrics     *MetricsHandler
}

// RegisterRoutes mounts all endpoints under /api/v1 plus the
// observability endpoints at the root.
func RegisterRoutes(r *gin.Engine, h Handlers) {
	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Health)
	r.GET("/metrics", h.Metrics.Prometheus)
	r.GET("/metrics/summary", h.Metrics.Summary)

	api := r.Group("/api/v1")

	teachers := api.Group("/teachers")
	teachers.GET("", h.Teachers.List)
	teachers.POST("", h.Teachers.Create)
	teachers.GET("/:id", h.Teachers.Get)
	teachers.PUT("/:id", h.Teachers.Update)
	teachers.DELETE("/:id", h.Teachers.Deactivate)

	courses := api.Group("/courses")
	courses.GET("", h.Courses.List)
	courses.POST("", h.Courses.Create)
	courses.GET("/:id", h.Courses.Get)
	courses.PUT("/:id", h.Courses.Update)
	courses.DELETE("/:id", h.Courses.Deactivate)

	sections := api.Group("/sections")
	sections.GET("", h.Sections.List)
	sections.POST("", h.Sections.Create)
	sections.GET("/:id", h.Sections.Get)
	sections.PUT("/:id", h.Sections.Update)
	sections.DELETE("/:id", h.Sections.Deactivate)

	rooms := api.Group("/rooms")
	rooms.GET("", h.Rooms.List)
	rooms.POST("", h.Rooms.Create)
	rooms.GET("/:id", h.Rooms.Get)
	rooms.PUT("/:id", h.Rooms.Update)
	rooms.DELETE("/:id", h.Rooms.Deactivate)

	offerings := api.Group("/offerings")
	offerings.GET("", h.Offerings.List)
	offerings.POST("", h.Offerings.Create)
	offerings.GET("/:id", h.Offerings.Get)
	offerings.PUT("/:id", h.Offerings.Update)
	offerings.DELETE("/:id", h.Offerings.Delete)

	constraints := api.Group("/constraints")
	constraints.GET("", h.Constraints.List)
	constraints.POST("", h.Constraints.Create)
	constraints.DELETE("/:id", h.Constraints.Delete)

	slots := api.Group("/time-slots")
	slots.GET("", h.TimeSlots.List)
	slots.PUT("", h.TimeSlots.ReplaceGrid)

	generations := api.Group("/generations")
	generations.POST("", h.Generations.Start)
	generations.GET("", h.Generations.List)
	generations.GET("/latest", h.Generations.Latest)
	generations.GET("/:id", h.Generations.Get)
	generations.GET("/:id/timetable", h.Timetables.ByGeneration)

	timetable := api.Group("/timetable")
	timetable.GET("", h.Timetables.Current)
	timetable.POST("/slots/:id/move", h.Timetables.Move)
	timetable.POST("/slots/:id/lock", h.Timetables.Lock)
	timetable.DELETE("/slots/:id/lock", h.Timetables.Unlock)

	imports := api.Group("/imports")
	imports.POST("/teachers", h.Imports.Teachers)
	imports.POST("/courses", h.Imports.Courses)
	imports.POST("/sections", h.Imports.Sections)
	imports.POST("/rooms", h.Imports.Rooms)
	imports.POST("/time-slots", h.Imports.TimeSlots)
	imports.POST("/offerings", h.Imports.Offerings)

	exports := api.Group("/exports")
	exports.GET("", h.Exports.Export)
	exports.GET("/download", h.Exports.Download)
}
