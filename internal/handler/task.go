package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"StaffHub/internal/model"
	"StaffHub/internal/model/dto"
	"StaffHub/internal/service"
	"StaffHub/pkg/response"
)

// CreateTask POST /v1/tasks
func CreateTask(ctx context.Context, c *app.RequestContext) {
	u, ok := actor(ctx, c)
	if !ok {
		return
	}
	var req dto.CreateTaskRequest
	if !bindJSON(ctx, c, &req) {
		return
	}
	task, err := service.Task().Create(ctx, u, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Created(ctx, c, task)
}

// ListTasks GET /v1/tasks?status=
func ListTasks(ctx context.Context, c *app.RequestContext) {
	u, ok := actor(ctx, c)
	if !ok {
		return
	}
	q, ok := pageQuery(ctx, c)
	if !ok {
		return
	}
	var filter dto.TaskListQuery
	if !bindQuery(ctx, c, &filter) {
		return
	}
	page, err := service.Task().List(ctx, u, q, filter)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	writePage(ctx, c, page)
}

// GetTask GET /v1/tasks/:id
func GetTask(ctx context.Context, c *app.RequestContext) {
	u, ok := actor(ctx, c)
	if !ok {
		return
	}
	id, ok := pathID(ctx, c, "id")
	if !ok {
		return
	}
	task, err := service.Task().Get(ctx, u, id)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, task)
}

// UpdateTask PUT /v1/tasks/:id
func UpdateTask(ctx context.Context, c *app.RequestContext) {
	u, ok := actor(ctx, c)
	if !ok {
		return
	}
	id, ok := pathID(ctx, c, "id")
	if !ok {
		return
	}
	var req dto.UpdateTaskRequest
	if !bindJSON(ctx, c, &req) {
		return
	}
	task, err := service.Task().Update(ctx, u, id, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, task)
}

// DeleteTask DELETE /v1/tasks/:id
func DeleteTask(ctx context.Context, c *app.RequestContext) {
	u, ok := actor(ctx, c)
	if !ok {
		return
	}
	id, ok := pathID(ctx, c, "id")
	if !ok {
		return
	}
	if err := service.Task().Delete(ctx, u, id); err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.NoContent(ctx, c)
}

// CloseTask moves an open task to a terminal status. One handler per route:
// POST /v1/tasks/:id/cancel, /mark-failed, /mark-success
func CloseTask(status model.TaskStatus) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		u, ok := actor(ctx, c)
		if !ok {
			return
		}
		id, ok := pathID(ctx, c, "id")
		if !ok {
			return
		}
		task, err := service.Task().Close(ctx, u, id, status)
		if err != nil {
			response.Error(ctx, c, err)
			return
		}
		response.Success(ctx, c, task)
	}
}

// CompleteNextPhase POST /v1/tasks/:id/complete-next-phase
func CompleteNextPhase(ctx context.Context, c *app.RequestContext) {
	u, ok := actor(ctx, c)
	if !ok {
		return
	}
	id, ok := pathID(ctx, c, "id")
	if !ok {
		return
	}
	var req dto.CompletePhaseRequest
	if !bindJSON(ctx, c, &req) {
		return
	}
	resp, err := service.Task().CompleteNextPhase(ctx, u, id, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, resp)
}

// ListTaskComments GET /v1/tasks/:id/comments
func ListTaskComments(ctx context.Context, c *app.RequestContext) {
	u, ok := actor(ctx, c)
	if !ok {
		return
	}
	id, ok := pathID(ctx, c, "id")
	if !ok {
		return
	}
	comments, err := service.Task().ListComments(ctx, u, id)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, comments)
}

// AddTaskComment POST /v1/tasks/:id/comments
func AddTaskComment(ctx context.Context, c *app.RequestContext) {
	u, ok := actor(ctx, c)
	if !ok {
		return
	}
	id, ok := pathID(ctx, c, "id")
	if !ok {
		return
	}
	var req dto.TaskCommentRequest
	if !bindJSON(ctx, c, &req) {
		return
	}
	comment, err := service.Task().AddComment(ctx, u, id, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Created(ctx, c, comment)
}
