package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"
)

const taskStatusTimeout = 5 * time.Second

// TaskStatusReader reports queued task states. Implemented by tasks.Client.
type TaskStatusReader interface {
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// BatchStatus is the state of one queued import batch.
type BatchStatus struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	// Done is set once the batch will not run again.
	Done bool `json:"done"`
}

var batchStatusNames = map[backlite.TaskStatus]string{
	backlite.TaskStatusPending: "pending",
	backlite.TaskStatusRunning: "running",
	backlite.TaskStatusSuccess: "success",
	backlite.TaskStatusFailure: "failure",
}

type TasksController struct {
	client TaskStatusReader
}

func NewTasksController(client TaskStatusReader) *TasksController {
	return &TasksController{client: client}
}

// GetTaskStatus handles GET /api/tasks/:id. Batches purged after their
// retention period are reported as not found.
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	taskID := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), taskStatusTimeout)
	defer cancel()

	status, err := tc.client.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}

	name, ok := batchStatusNames[status]
	if !ok {
		respondError(c, http.StatusNotFound, "task not found")
		return
	}

	c.JSON(http.StatusOK, BatchStatus{
		ID:     taskID,
		Status: name,
		Done:   status == backlite.TaskStatusSuccess || status == backlite.TaskStatusFailure,
	})
}
