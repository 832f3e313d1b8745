package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"StaffHub/internal/model/dto"
	"StaffHub/internal/service"
	"StaffHub/pkg/errors"
	"StaffHub/pkg/response"
)

// Login exchanges credentials for a token pair
// POST /v1/auth/token
func Login(ctx context.Context, c *app.RequestContext) {
	var req dto.LoginRequest
	if !bindJSON(ctx, c, &req) {
		return
	}

	resp, err := service.Auth().Login(ctx, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, resp)
}

// RefreshToken rotates a refresh token
// POST /v1/auth/refresh
func RefreshToken(ctx context.Context, c *app.RequestContext) {
	var req dto.RefreshRequest
	if !bindJSON(ctx, c, &req) {
		return
	}

	resp, err := service.Auth().Refresh(ctx, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, resp)
}

// GetMe GET /v1/me
func GetMe(ctx context.Context, c *app.RequestContext) {
	u, ok := actor(ctx, c)
	if !ok {
		return
	}
	response.Success(ctx, c, service.User().Me(ctx, u))
}

// UploadAvatar replaces the caller's avatar with the multipart "avatar" file
// POST /v1/me/avatar
func UploadAvatar(ctx context.Context, c *app.RequestContext) {
	u, ok := actor(ctx, c)
	if !ok {
		return
	}

	fh, err := c.FormFile("avatar")
	if err != nil {
		response.Error(ctx, c, errors.InvalidRequest.WithMessage("avatar file is required"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	defer f.Close()

	profile, err := service.User().UpdateAvatar(ctx, u, fh.Filename, fh.Size, f)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, profile)
}

// SearchEmployees GET /v1/employees?q=
func SearchEmployees(ctx context.Context, c *app.RequestContext) {
	u, ok := actor(ctx, c)
	if !ok {
		return
	}
	var q dto.EmployeeSearchQuery
	if !bindQuery(ctx, c, &q) {
		return
	}

	users, err := service.User().SearchEmployees(ctx, u, q.Q)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, users)
}
