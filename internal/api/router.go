package api

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/in-nis/lessonboard/docs"
)

// @title           Lessonboard API
// @version         1.0
// @description     Publishes the daily lesson schedule built from booking exports and instructor rosters.
// @host            localhost:8000
// @BasePath        /api/v1
func SetupRouter(h *Handler) *gin.Engine {
	r := gin.Default()

	r.GET("/health", h.Health)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		v1.GET("/schedule", h.GetSchedule)
		v1.GET("/lessons", h.GetLessons)
		v1.POST("/process", h.Process)
		v1.GET("/runs/last", h.LastRun)
	}

	return r
}
