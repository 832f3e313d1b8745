package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"StaffHub/internal/model/dto"
	"StaffHub/internal/service"
	"StaffHub/pkg/response"
)

// SendNotification fans a notification out to the named users, or everyone
// POST /v1/notifications
func SendNotification(ctx context.Context, c *app.RequestContext) {
	u, ok := actor(ctx, c)
	if !ok {
		return
	}
	var req dto.SendNotificationRequest
	if !bindJSON(ctx, c, &req) {
		return
	}
	resp, err := service.Notification().Send(ctx, u, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Created(ctx, c, resp)
}

// ListNotifications GET /v1/notifications
func ListNotifications(ctx context.Context, c *app.RequestContext) {
	u, ok := actor(ctx, c)
	if !ok {
		return
	}
	q, ok := pageQuery(ctx, c)
	if !ok {
		return
	}
	page, err := service.Notification().List(ctx, u, q)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	writePage(ctx, c, page)
}

// ListMyNotifications GET /v1/user-notifications
func ListMyNotifications(ctx context.Context, c *app.RequestContext) {
	u, ok := actor(ctx, c)
	if !ok {
		return
	}
	q, ok := pageQuery(ctx, c)
	if !ok {
		return
	}
	page, err := service.Notification().ListMine(ctx, u, q)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	writePage(ctx, c, page)
}

// MarkNotificationRead POST /v1/user-notifications/:id/read
func MarkNotificationRead(ctx context.Context, c *app.RequestContext) {
	u, ok := actor(ctx, c)
	if !ok {
		return
	}
	id, ok := pathID(ctx, c, "id")
	if !ok {
		return
	}
	un, err := service.Notification().MarkRead(ctx, u, id)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, un)
}

// UnreadNotificationCount GET /v1/user-notifications/unread-count
func UnreadNotificationCount(ctx context.Context, c *app.RequestContext) {
	u, ok := actor(ctx, c)
	if !ok {
		return
	}
	n, err := service.Notification().UnreadCount(ctx, u)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, n)
}
