package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"StaffHub/internal/model/dto"
	"StaffHub/internal/service"
	"StaffHub/pkg/response"
)

// ListSections GET /v1/sections
func ListSections(ctx context.Context, c *app.RequestContext) {
	u, ok := actor(ctx, c)
	if !ok {
		return
	}
	sections, err := service.Form().ListSections(ctx, u)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, sections)
}

// ListForms GET /v1/forms?section=
func ListForms(ctx context.Context, c *app.RequestContext) {
	u, ok := actor(ctx, c)
	if !ok {
		return
	}
	var q dto.FormListQuery
	if !bindQuery(ctx, c, &q) {
		return
	}
	forms, err := service.Form().ListForms(ctx, u, q)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, forms)
}

// GetForm GET /v1/forms/:id
func GetForm(ctx context.Context, c *app.RequestContext) {
	u, ok := actor(ctx, c)
	if !ok {
		return
	}
	id, ok := pathID(ctx, c, "id")
	if !ok {
		return
	}
	form, err := service.Form().GetForm(ctx, u, id)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, form)
}

// PreviewForm returns the form with a fresh preview stamp
// GET /v1/forms/:id/preview
func PreviewForm(ctx context.Context, c *app.RequestContext) {
	u, ok := actor(ctx, c)
	if !ok {
		return
	}
	id, ok := pathID(ctx, c, "id")
	if !ok {
		return
	}
	preview, err := service.Form().Preview(ctx, u, id)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, preview)
}
