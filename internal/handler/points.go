package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"StaffHub/internal/model/dto"
	"StaffHub/internal/service"
	"StaffHub/pkg/response"
)

// AdjustPoints POST /v1/points/adjust
func AdjustPoints(ctx context.Context, c *app.RequestContext) {
	u, ok := actor(ctx, c)
	if !ok {
		return
	}
	var req dto.AdjustPointsRequest
	if !bindJSON(ctx, c, &req) {
		return
	}
	log, err := service.Points().Adjust(ctx, u, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Created(ctx, c, log)
}

// PointLogs GET /v1/points/logs?user_id=
func PointLogs(ctx context.Context, c *app.RequestContext) {
	u, ok := actor(ctx, c)
	if !ok {
		return
	}
	q, ok := pageQuery(ctx, c)
	if !ok {
		return
	}
	var filter dto.PointLogQuery
	if !bindQuery(ctx, c, &filter) {
		return
	}
	page, err := service.Points().Logs(ctx, u, filter.UserID, q)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	writePage(ctx, c, page)
}

// ReconcilePoints rewrites a user's counter from the ledger
// POST /v1/points/reconcile/:user_id
func ReconcilePoints(ctx context.Context, c *app.RequestContext) {
	u, ok := actor(ctx, c)
	if !ok {
		return
	}
	id, ok := pathID(ctx, c, "user_id")
	if !ok {
		return
	}
	resp, err := service.Points().Reconcile(ctx, u, id)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, resp)
}

// HonorBoard GET /v1/honorboard
func HonorBoard(ctx context.Context, c *app.RequestContext) {
	if _, ok := actor(ctx, c); !ok {
		return
	}
	board, err := service.Points().HonorBoard(ctx)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, board)
}

// ToggleHonorBoard PATCH|POST /v1/honorboard/toggle
func ToggleHonorBoard(ctx context.Context, c *app.RequestContext) {
	u, ok := actor(ctx, c)
	if !ok {
		return
	}
	var req dto.ToggleHonorBoardRequest
	if len(c.Request.Body()) > 0 && !bindJSON(ctx, c, &req) {
		return
	}
	board, err := service.Points().Toggle(ctx, u, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, board)
}
