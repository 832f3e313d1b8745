package handler

import (
	"context"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"

	"StaffHub/internal/middleware"
	"StaffHub/internal/model"
	"StaffHub/internal/model/dto"
	"StaffHub/pkg/errors"
	"StaffHub/pkg/response"
	"StaffHub/utils"
)

// actor returns the authenticated user, writing a 401 when it is missing.
func actor(ctx context.Context, c *app.RequestContext) (*model.User, bool) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(ctx, c, errors.Unauthorized)
		return nil, false
	}
	return u, true
}

// bindJSON decodes and validates the request body into req.
func bindJSON(ctx context.Context, c *app.RequestContext, req interface{}) bool {
	if err := c.BindJSON(req); err != nil {
		response.BindError(ctx, c, err)
		return false
	}
	if err := utils.ValidateStruct(req); err != nil {
		response.BindError(ctx, c, err)
		return false
	}
	return true
}

func bindQuery(ctx context.Context, c *app.RequestContext, q interface{}) bool {
	if err := c.BindQuery(q); err != nil {
		response.BindError(ctx, c, err)
		return false
	}
	return true
}

func pathID(ctx context.Context, c *app.RequestContext, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Error(ctx, c, errors.InvalidRequest.WithMessage("Invalid "+name))
		return 0, false
	}
	return id, true
}

func pageQuery(ctx context.Context, c *app.RequestContext) (dto.PageQuery, bool) {
	var q dto.PageQuery
	if !bindQuery(ctx, c, &q) {
		return q, false
	}
	q.Normalize()
	return q, true
}

func writePage[T any](ctx context.Context, c *app.RequestContext, p *dto.Page[T]) {
	response.Paginated(ctx, c, p.Items, p.Page, p.PageSize, p.Total)
}
