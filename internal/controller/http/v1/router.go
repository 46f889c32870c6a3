package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/motionlab/dance-analysis-service/pkg/middleware"
	"go.uber.org/zap"
)

func NewRouter(handler *AnalysisHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(requestLogger(logger))

	router.GET("/", handler.Index)
	router.GET("/health", handler.Health)

	api := router.Group("/api/v1")
	{
		api.POST("/analyze", handler.Analyze)
		api.GET("/status/:job_id", handler.Status)
		api.GET("/download/:job_id", handler.Download)
		api.GET("/download/:job_id/skeleton", handler.DownloadSkeleton)
		api.GET("/results/:job_id", handler.Results)
		api.GET("/jobs", handler.ListJobs)
		api.DELETE("/jobs/:job_id", handler.DeleteJob)
	}

	return router
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
		)
	}
}
