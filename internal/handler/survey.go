package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"StaffHub/internal/model/dto"
	"StaffHub/internal/service"
	"StaffHub/pkg/response"
)

// CreateSurvey POST /v1/surveys
func CreateSurvey(ctx context.Context, c *app.RequestContext) {
	u, ok := actor(ctx, c)
	if !ok {
		return
	}
	var req dto.CreateSurveyRequest
	if !bindJSON(ctx, c, &req) {
		return
	}
	survey, err := service.Survey().Create(ctx, u, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Created(ctx, c, survey)
}

// ListSurveys GET /v1/surveys
func ListSurveys(ctx context.Context, c *app.RequestContext) {
	u, ok := actor(ctx, c)
	if !ok {
		return
	}
	q, ok := pageQuery(ctx, c)
	if !ok {
		return
	}
	page, err := service.Survey().List(ctx, u, q)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	writePage(ctx, c, page)
}

// GetSurvey GET /v1/surveys/:id
func GetSurvey(ctx context.Context, c *app.RequestContext) {
	u, ok := actor(ctx, c)
	if !ok {
		return
	}
	id, ok := pathID(ctx, c, "id")
	if !ok {
		return
	}
	survey, err := service.Survey().Get(ctx, u, id)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, survey)
}

// UpdateSurvey patches a survey, replacing its questions when they are supplied
// PUT /v1/surveys/:id
func UpdateSurvey(ctx context.Context, c *app.RequestContext) {
	u, ok := actor(ctx, c)
	if !ok {
		return
	}
	id, ok := pathID(ctx, c, "id")
	if !ok {
		return
	}
	var req dto.UpdateSurveyRequest
	if !bindJSON(ctx, c, &req) {
		return
	}
	survey, err := service.Survey().Update(ctx, u, id, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, survey)
}

// DeleteSurvey DELETE /v1/surveys/:id
func DeleteSurvey(ctx context.Context, c *app.RequestContext) {
	u, ok := actor(ctx, c)
	if !ok {
		return
	}
	id, ok := pathID(ctx, c, "id")
	if !ok {
		return
	}
	if err := service.Survey().Delete(ctx, u, id); err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.NoContent(ctx, c)
}

// ChangeSurveyStatus POST /v1/surveys/:id/change-status
func ChangeSurveyStatus(ctx context.Context, c *app.RequestContext) {
	u, ok := actor(ctx, c)
	if !ok {
		return
	}
	id, ok := pathID(ctx, c, "id")
	if !ok {
		return
	}
	var req dto.ChangeSurveyStatusRequest
	if !bindJSON(ctx, c, &req) {
		return
	}
	survey, err := service.Survey().ChangeStatus(ctx, u, id, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, survey)
}

// SubmitSurvey POST /v1/surveys/:id/submit
func SubmitSurvey(ctx context.Context, c *app.RequestContext) {
	u, ok := actor(ctx, c)
	if !ok {
		return
	}
	id, ok := pathID(ctx, c, "id")
	if !ok {
		return
	}
	var req dto.SubmitSurveyRequest
	if !bindJSON(ctx, c, &req) {
		return
	}
	resp, err := service.Survey().Submit(ctx, u, id, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Created(ctx, c, resp)
}

// SurveyResults GET /v1/surveys/:id/results
func SurveyResults(ctx context.Context, c *app.RequestContext) {
	u, ok := actor(ctx, c)
	if !ok {
		return
	}
	id, ok := pathID(ctx, c, "id")
	if !ok {
		return
	}
	results, err := service.Survey().Results(ctx, u, id)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, results)
}

// MySurveySubmission GET /v1/surveys/:id/my-submission
func MySurveySubmission(ctx context.Context, c *app.RequestContext) {
	u, ok := actor(ctx, c)
	if !ok {
		return
	}
	id, ok := pathID(ctx, c, "id")
	if !ok {
		return
	}
	resp, err := service.Survey().MySubmission(ctx, u, id)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, resp)
}
