package v1

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/avolkov/tasktick/internal/repository"
	"github.com/avolkov/tasktick/internal/timer"
)

type Handler interface {
	HandleCreateTask(c *gin.Context)
	HandleGetTasks(c *gin.Context)
	HandleGetTask(c *gin.Context)
	HandleDeleteTask(c *gin.Context)
	HandleToggleTask(c *gin.Context)
	HandleSaveDetails(c *gin.Context)
	HandleStartTimer(c *gin.Context)
	HandleStopTimer(c *gin.Context)
	HandleEvents(c *gin.Context)
}

type handlerImpl struct {
	logger zerolog.Logger
	repo   *repository.Repository
	engine *timer.Engine
	events *EventHub
	now    func() time.Time
}

func New(
	logger zerolog.Logger,
	repo *repository.Repository,
	engine *timer.Engine,
	events *EventHub,
) Handler {
	return &handlerImpl{
		logger: logger,
		repo:   repo,
		engine: engine,
		events: events,
		now:    time.Now,
	}
}
