package v1

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/avolkov/tasktick/internal/models"
	"github.com/avolkov/tasktick/internal/repository"
	"github.com/avolkov/tasktick/internal/timer"
	"github.com/avolkov/tasktick/internal/view"
)

const (
	timerLabelStart = "Start timer"
	timerLabelStop  = "Stop timer"
)

type getTaskResponse struct {
	ID           string `json:"id"`
	Text         string `json:"text"`
	Completed    bool   `json:"completed"`
	Priority     string `json:"priority"`
	Note         string `json:"note"`
	Deadline     *int64 `json:"deadline"`
	DeadlineText string `json:"deadline_text,omitempty"`
}

func newGetTaskResponse(task models.Task, now time.Time) getTaskResponse {
	resp := getTaskResponse{
		ID:        task.ID,
		Text:      task.Text,
		Completed: task.Completed,
		Priority:  task.Priority,
		Note:      task.Note,
		Deadline:  task.Deadline,
	}
	if task.Deadline != nil {
		resp.DeadlineText = timer.FuzzyDeadline(*task.Deadline, now)
	}
	return resp
}

type getTaskDetailResponse struct {
	getTaskResponse
	TimerText  string `json:"timer_text"`
	TimerLabel string `json:"timer_label"`
}

func newGetTaskDetailResponse(task models.Task, now time.Time) getTaskDetailResponse {
	resp := getTaskDetailResponse{
		getTaskResponse: newGetTaskResponse(task, now),
		TimerText:       timer.FormatCountdown(timer.TimeLeft(task, now)),
		TimerLabel:      timerLabelStart,
	}
	if task.TimerArmed() {
		resp.TimerLabel = timerLabelStop
	}
	return resp
}

type createTaskRequest struct {
	Text     string `json:"text"`
	Priority string `json:"priority"`
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	var req createTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError("invalid request body"))
		return
	}

	task, err := h.repo.Add(c, req.Text, req.Priority)
	if err != nil {
		if errors.Is(err, repository.ErrEmptyText) {
			h.logger.Warn().Msg("rejected empty task text")
			abort(c, newBadRequestError("please enter a task"))
			return
		}

		h.logger.Error().
			Err(err).
			Msg("failed to add task")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusCreated, newGetTaskResponse(task, h.now()))
}

func (h *handlerImpl) HandleGetTasks(c *gin.Context) {
	filter := c.DefaultQuery("filter", view.FilterAll)
	now := h.now()

	visible := view.Visible(h.repo.Snapshot(), filter)
	response := make([]getTaskResponse, len(visible))
	for i, task := range visible {
		response[i] = newGetTaskResponse(task, now)
	}

	h.logger.Debug().
		Int("count", len(response)).
		Str("filter", filter).
		Msg("projected visible tasks")
	c.JSON(http.StatusOK, response)
}

func (h *handlerImpl) HandleGetTask(c *gin.Context) {
	task, ok := h.repo.Find(c.Param("id"))
	if !ok {
		abort(c, newNotFoundError("task not found"))
		return
	}

	c.JSON(http.StatusOK, newGetTaskDetailResponse(task, h.now()))
}

func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	// Deleting an unknown ID is a no-op, not an error.
	h.repo.Remove(c, c.Param("id"))
	c.Status(http.StatusNoContent)
}

func (h *handlerImpl) HandleToggleTask(c *gin.Context) {
	id := c.Param("id")
	if !h.repo.ToggleCompleted(c, id) {
		abort(c, newNotFoundError("task not found"))
		return
	}

	task, _ := h.repo.Find(id)
	c.JSON(http.StatusOK, newGetTaskResponse(task, h.now()))
}

type saveDetailsRequest struct {
	Note     string `json:"note"`
	Deadline *int64 `json:"deadline"`
}

// HandleSaveDetails stores the detail view's fields: the note and an
// optional absolute deadline. A null deadline disarms the timer.
func (h *handlerImpl) HandleSaveDetails(c *gin.Context) {
	var req saveDetailsRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError("invalid request body"))
		return
	}

	id := c.Param("id")
	if !h.repo.SetNote(c, id, req.Note) {
		abort(c, newNotFoundError("task not found"))
		return
	}
	h.repo.SetDeadline(c, id, req.Deadline)

	task, _ := h.repo.Find(id)
	c.JSON(http.StatusOK, newGetTaskDetailResponse(task, h.now()))
}

type startTimerRequest struct {
	Minutes int `json:"minutes"`
}

func (h *handlerImpl) HandleStartTimer(c *gin.Context) {
	var req startTimerRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError("invalid request body"))
		return
	}

	id := c.Param("id")
	if _, ok := h.repo.Find(id); !ok {
		abort(c, newNotFoundError("task not found"))
		return
	}

	err = h.engine.StartTimer(c, id, req.Minutes)
	if err != nil {
		if errors.Is(err, timer.ErrInvalidDuration) {
			h.logger.Warn().
				Int("minutes", req.Minutes).
				Msg("rejected timer duration")
			abort(c, newBadRequestError("please enter a positive number of minutes"))
			return
		}

		h.logger.Error().
			Err(err).
			Msg("failed to start timer")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	task, _ := h.repo.Find(id)
	c.JSON(http.StatusOK, newGetTaskDetailResponse(task, h.now()))
}

func (h *handlerImpl) HandleStopTimer(c *gin.Context) {
	id := c.Param("id")
	h.engine.StopTimer(c, id)

	task, ok := h.repo.Find(id)
	if !ok {
		// Stopping an unknown task's timer is still a no-op.
		c.Status(http.StatusOK)
		return
	}
	c.JSON(http.StatusOK, newGetTaskDetailResponse(task, h.now()))
}
