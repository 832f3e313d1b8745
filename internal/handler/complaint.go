package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"StaffHub/internal/model/dto"
	"StaffHub/internal/service"
	"StaffHub/pkg/response"
)

// SubmitComplaint POST /v1/complaints
func SubmitComplaint(ctx context.Context, c *app.RequestContext) {
	u, ok := actor(ctx, c)
	if !ok {
		return
	}
	var req dto.SubmitComplaintRequest
	if !bindJSON(ctx, c, &req) {
		return
	}
	complaint, err := service.Complaint().Submit(ctx, u, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Created(ctx, c, complaint)
}

// MyComplaints GET /v1/complaints/mine
func MyComplaints(ctx context.Context, c *app.RequestContext) {
	u, ok := actor(ctx, c)
	if !ok {
		return
	}
	q, ok := pageQuery(ctx, c)
	if !ok {
		return
	}
	page, err := service.Complaint().Mine(ctx, u, q)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	writePage(ctx, c, page)
}

// ComplaintInbox lists complaints addressed to the caller's role
// GET /v1/complaints/inbox
func ComplaintInbox(ctx context.Context, c *app.RequestContext) {
	u, ok := actor(ctx, c)
	if !ok {
		return
	}
	q, ok := pageQuery(ctx, c)
	if !ok {
		return
	}
	page, err := service.Complaint().Inbox(ctx, u, q)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	writePage(ctx, c, page)
}

// GetComplaint GET /v1/complaints/:id
func GetComplaint(ctx context.Context, c *app.RequestContext) {
	u, ok := actor(ctx, c)
	if !ok {
		return
	}
	id, ok := pathID(ctx, c, "id")
	if !ok {
		return
	}
	complaint, err := service.Complaint().Get(ctx, u, id)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, complaint)
}

// ReplyComplaint POST /v1/complaints/:id/reply
func ReplyComplaint(ctx context.Context, c *app.RequestContext) {
	u, ok := actor(ctx, c)
	if !ok {
		return
	}
	id, ok := pathID(ctx, c, "id")
	if !ok {
		return
	}
	var req dto.ReplyComplaintRequest
	if !bindJSON(ctx, c, &req) {
		return
	}
	complaint, err := service.Complaint().Reply(ctx, u, id, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, complaint)
}

// MarkComplaintSeen POST /v1/complaints/:id/mark-seen
func MarkComplaintSeen(ctx context.Context, c *app.RequestContext) {
	u, ok := actor(ctx, c)
	if !ok {
		return
	}
	id, ok := pathID(ctx, c, "id")
	if !ok {
		return
	}
	complaint, err := service.Complaint().MarkSeen(ctx, u, id)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, complaint)
}

// MarkAllComplaintsSeen POST /v1/complaints/mark-all-seen
func MarkAllComplaintsSeen(ctx context.Context, c *app.RequestContext) {
	u, ok := actor(ctx, c)
	if !ok {
		return
	}
	resp, err := service.Complaint().MarkAllSeen(ctx, u)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, resp)
}

// ComplaintsHasUnread GET /v1/complaints/has-unread
func ComplaintsHasUnread(ctx context.Context, c *app.RequestContext) {
	u, ok := actor(ctx, c)
	if !ok {
		return
	}
	resp, err := service.Complaint().HasUnread(ctx, u)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, resp)
}
