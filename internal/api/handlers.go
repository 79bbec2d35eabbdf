package api

import (
	"context"
	"errors"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/in-nis/lessonboard/internal/models"
	"github.com/in-nis/lessonboard/internal/pipeline"
	"github.com/in-nis/lessonboard/internal/processor"
	"github.com/in-nis/lessonboard/internal/storage"
)

var datePattern = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}$`)

// LessonStore is the read side of the audit store.
type LessonStore interface {
	LatestLessons(ctx context.Context, date string) ([]models.ScheduleItem, error)
	Ping(ctx context.Context) error
}

// Runner processes batches of triggers.
type Runner interface {
	Handle(ctx context.Context, triggers []pipeline.Trigger) processor.Response
	Last() (processor.Response, bool)
}

// metaReader is implemented by stores that keep object metadata.
type metaReader interface {
	Meta(bucket, key string) (storage.PutOptions, error)
}

type Handler struct {
	Reader storage.Reader
	// Store is nil when no database is configured.
	Store  LessonStore
	Runner Runner
	Logger *zap.Logger

	InputBucket   string
	WebsiteBucket string
	ScheduleKey   string
}

// ErrorResponse is returned by every failing endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ProcessRequest lists the input objects to process. An empty list
// reprocesses the latest orders export.
type ProcessRequest struct {
	Triggers []pipeline.Trigger `json:"triggers"`
}

// Health godoc
// @Summary      Health check
// @Description  Reports whether the service and its database are reachable
// @Tags         system
// @Produce      json
// @Success      200 {object} map[string]string
// @Failure      500 {object} map[string]string
// @Router       /health [get]
func (h *Handler) Health(c *gin.Context) {
	if h.Store != nil {
		if err := h.Store.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"status": "db_ping_error"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetSchedule godoc
// @Summary      Published schedule
// @Description  Returns the last published schedule document
// @Tags         schedule
// @Produce      json
// @Success      200 {object} models.ScheduleDocument
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /schedule [get]
func (h *Handler) GetSchedule(c *gin.Context) {
	body, err := h.Reader.Get(c.Request.Context(), h.WebsiteBucket, h.ScheduleKey)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Schedule not published yet"})
		return
	}
	if err != nil {
		h.Logger.Error("❌ Failed to read schedule", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to read schedule"})
		return
	}

	opts := storage.JSONOptions
	if mr, ok := h.Reader.(metaReader); ok {
		if m, err := mr.Meta(h.WebsiteBucket, h.ScheduleKey); err == nil && m.ContentType != "" {
			opts = m
		}
	}
	if opts.CacheControl != "" {
		c.Header("Cache-Control", opts.CacheControl)
	}
	c.Data(http.StatusOK, opts.ContentType, body)
}

// GetLessons godoc
// @Summary      Stored lessons for a date
// @Description  Returns the lessons of the newest run covering the date
// @Tags         lessons
// @Produce      json
// @Param        date  query  string  true  "Lesson date (DD.MM.YYYY)"
// @Success      200 {array}  models.ScheduleItem
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Router       /lessons [get]
func (h *Handler) GetLessons(c *gin.Context) {
	if h.Store == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Lesson store not configured"})
		return
	}

	date := c.Query("date")
	if !datePattern.MatchString(date) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Missing or invalid date, expected DD.MM.YYYY"})
		return
	}

	lessons, err := h.Store.LatestLessons(c.Request.Context(), date)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "No schedule stored for date"})
		return
	}
	if err != nil {
		h.Logger.Error("❌ Failed to fetch lessons", zap.String("date", date), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch lessons"})
		return
	}
	c.JSON(http.StatusOK, lessons)
}

// Process godoc
// @Summary      Process input files
// @Description  Runs the pipeline for each listed input object; an empty body reprocesses the latest export
// @Tags         schedule
// @Accept       json
// @Produce      json
// @Param        body  body  ProcessRequest  false  "Objects to process"
// @Success      200 {object} processor.Response
// @Failure      400 {object} ErrorResponse
// @Router       /process [post]
func (h *Handler) Process(c *gin.Context) {
	var req ProcessRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request"})
			return
		}
	}

	triggers := req.Triggers
	if len(triggers) == 0 {
		triggers = []pipeline.Trigger{{Bucket: h.InputBucket}}
	}
	for i := range triggers {
		if triggers[i].Bucket == "" {
			triggers[i].Bucket = h.InputBucket
		}
	}

	c.JSON(http.StatusOK, h.Runner.Handle(c.Request.Context(), triggers))
}

// LastRun godoc
// @Summary      Last processing result
// @Description  Returns the per-file results of the most recent batch
// @Tags         schedule
// @Produce      json
// @Success      200 {object} processor.Response
// @Failure      404 {object} ErrorResponse
// @Router       /runs/last [get]
func (h *Handler) LastRun(c *gin.Context) {
	resp, ok := h.Runner.Last()
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Nothing processed yet"})
		return
	}
	c.JSON(http.StatusOK, resp)
}
