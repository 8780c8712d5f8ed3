package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/avolkov/tasktick/internal/models"
	"github.com/avolkov/tasktick/internal/notify"
	"github.com/avolkov/tasktick/internal/repository"
	"github.com/avolkov/tasktick/internal/storage"
	"github.com/avolkov/tasktick/internal/timer"
)

func newTestRouter(t *testing.T) (*gin.Engine, *repository.Repository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := storage.NewMemoryStore("test")
	adapter := storage.NewAdapter(zerolog.Nop(), store, "todoTasks")
	repo := repository.New(zerolog.Nop(), adapter)
	engine := timer.NewEngine(zerolog.Nop(), repo, notify.NewLogNotifier(zerolog.Nop()), time.Second)
	handler := New(zerolog.Nop(), repo, engine, NewEventHub())

	router := gin.New()
	router.POST("/tasks", handler.HandleCreateTask)
	router.GET("/tasks", handler.HandleGetTasks)
	router.GET("/tasks/:id", handler.HandleGetTask)
	router.DELETE("/tasks/:id", handler.HandleDeleteTask)
	router.POST("/tasks/:id/toggle", handler.HandleToggleTask)
	router.PUT("/tasks/:id/details", handler.HandleSaveDetails)
	router.POST("/tasks/:id/timer", handler.HandleStartTimer)
	router.DELETE("/tasks/:id/timer", handler.HandleStopTimer)
	return router, repo
}

func doJSON(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleCreateTask(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/tasks", gin.H{"text": "ship it", "priority": "high"})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}

	var resp getTaskResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.ID == "" || resp.Text != "ship it" || resp.Priority != models.PriorityHigh {
		t.Errorf("response = %+v", resp)
	}
	if resp.Completed || resp.Deadline != nil {
		t.Errorf("new task should be open with idle timer: %+v", resp)
	}
}

func TestHandleCreateTaskEmptyText(t *testing.T) {
	router, repo := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/tasks", gin.H{"text": "   "})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if len(repo.Snapshot()) != 0 {
		t.Error("rejected add changed the collection")
	}
}

func TestHandleGetTasksFilter(t *testing.T) {
	router, repo := newTestRouter(t)
	ctx := context.Background()

	open, _ := repo.Add(ctx, "open", models.PriorityMedium)
	done, _ := repo.Add(ctx, "done", models.PriorityMedium)
	repo.ToggleCompleted(ctx, done.ID)

	w := doJSON(router, http.MethodGet, "/tasks?filter=open", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp []getTaskResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp) != 1 || resp[0].ID != open.ID {
		t.Errorf("filtered response = %+v, want only %q", resp, open.ID)
	}
}

func TestHandleGetTaskDetail(t *testing.T) {
	router, repo := newTestRouter(t)

	task, _ := repo.Add(context.Background(), "detailed", models.PriorityMedium)

	w := doJSON(router, http.MethodGet, "/tasks/"+task.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp getTaskDetailResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.TimerText != timer.InactiveTimerText {
		t.Errorf("TimerText = %q, want %q", resp.TimerText, timer.InactiveTimerText)
	}
	if resp.TimerLabel != timerLabelStart {
		t.Errorf("TimerLabel = %q, want %q", resp.TimerLabel, timerLabelStart)
	}

	w = doJSON(router, http.MethodGet, "/tasks/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status for unknown id = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestHandleStartTimer(t *testing.T) {
	router, repo := newTestRouter(t)

	task, _ := repo.Add(context.Background(), "timed", models.PriorityMedium)

	w := doJSON(router, http.MethodPost, "/tasks/"+task.ID+"/timer", gin.H{"minutes": 5})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp getTaskDetailResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Deadline == nil {
		t.Fatal("timer not armed")
	}
	if resp.TimerLabel != timerLabelStop {
		t.Errorf("TimerLabel = %q, want %q", resp.TimerLabel, timerLabelStop)
	}
	if resp.DeadlineText != "in 5 min." {
		t.Errorf("DeadlineText = %q, want %q", resp.DeadlineText, "in 5 min.")
	}
}

func TestHandleStartTimerInvalidDuration(t *testing.T) {
	router, repo := newTestRouter(t)

	task, _ := repo.Add(context.Background(), "still idle", models.PriorityMedium)

	w := doJSON(router, http.MethodPost, "/tasks/"+task.ID+"/timer", gin.H{"minutes": 0})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	got, _ := repo.Find(task.ID)
	if got.Deadline != nil {
		t.Error("rejected start armed the timer")
	}
}

func TestHandleDeleteTaskIsIdempotent(t *testing.T) {
	router, repo := newTestRouter(t)

	task, _ := repo.Add(context.Background(), "delete me", models.PriorityMedium)

	for _, path := range []string{"/tasks/" + task.ID, "/tasks/" + task.ID, "/tasks/never-existed"} {
		w := doJSON(router, http.MethodDelete, path, nil)
		if w.Code != http.StatusNoContent {
			t.Errorf("DELETE %s status = %d, want %d", path, w.Code, http.StatusNoContent)
		}
	}
	if len(repo.Snapshot()) != 0 {
		t.Error("task not deleted")
	}
}

func TestHandleSaveDetails(t *testing.T) {
	router, repo := newTestRouter(t)

	task, _ := repo.Add(context.Background(), "annotate", models.PriorityMedium)
	deadline := time.Now().Add(2 * time.Hour).UnixMilli()

	w := doJSON(router, http.MethodPut, "/tasks/"+task.ID+"/details", gin.H{
		"note":     "  remember the context  ",
		"deadline": deadline,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	got, _ := repo.Find(task.ID)
	if got.Note != "remember the context" {
		t.Errorf("Note = %q, want trimmed note", got.Note)
	}
	if got.Deadline == nil || *got.Deadline != deadline {
		t.Errorf("Deadline = %v, want %d", got.Deadline, deadline)
	}

	// A null deadline disarms the timer.
	w = doJSON(router, http.MethodPut, "/tasks/"+task.ID+"/details", gin.H{"note": "kept"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	got, _ = repo.Find(task.ID)
	if got.Deadline != nil {
		t.Error("empty deadline did not disarm the timer")
	}
}

func TestHandleToggleTask(t *testing.T) {
	router, repo := newTestRouter(t)

	task, _ := repo.Add(context.Background(), "flip", models.PriorityMedium)

	w := doJSON(router, http.MethodPost, "/tasks/"+task.ID+"/toggle", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	got, _ := repo.Find(task.ID)
	if !got.Completed {
		t.Error("task not completed after toggle")
	}

	w = doJSON(router, http.MethodPost, "/tasks/missing/toggle", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status for unknown id = %d, want %d", w.Code, http.StatusNotFound)
	}
}
