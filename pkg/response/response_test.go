package response

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/cloudwego/hertz/pkg/app"

	"StaffHub/pkg/errors"
)

func TestErrorToHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: errors.InvalidRequest, want: http.StatusBadRequest},
		{err: errors.SurveyRequiredUnanswered, want: http.StatusBadRequest},
		{err: errors.TaskNoPendingPhase, want: http.StatusBadRequest},
		{err: errors.TaskClosed, want: http.StatusBadRequest},
		{err: errors.PointsDeltaInvalid, want: http.StatusBadRequest},
		{err: errors.Unauthorized, want: http.StatusUnauthorized},
		{err: errors.InvalidCredentials, want: http.StatusUnauthorized},
		{err: errors.UserInactive, want: http.StatusUnauthorized},
		{err: errors.Forbidden, want: http.StatusForbidden},
		{err: errors.ComplaintRecipientMismatch, want: http.StatusForbidden},
		{err: errors.TaskNotFound, want: http.StatusNotFound},
		{err: errors.UserNotFound, want: http.StatusNotFound},
		{err: errors.SurveyAlreadySubmitted, want: http.StatusConflict},
		{err: errors.TooManyRequests, want: http.StatusTooManyRequests},
		{err: errors.UploadTooLarge, want: http.StatusRequestEntityTooLarge},
		{err: fmt.Errorf("wrapped: %w", errors.SurveyNotFound), want: http.StatusNotFound},
		{err: stderrors.New("boom"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := errorToHTTPStatus(tt.err); got != tt.want {
			t.Errorf("errorToHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestErrorMasksUnknownErrors(t *testing.T) {
	c := app.NewContext(0)
	Error(context.Background(), c, stderrors.New("pq: relation does not exist"))

	if got := c.Response.StatusCode(); got != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", got)
	}
	var body ErrorResponse
	if err := json.Unmarshal(c.Response.Body(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Error.Code != errors.Internal.Code || body.Error.Message != errors.Internal.Message {
		t.Errorf("body = %+v, want masked internal error", body.Error)
	}
}

func TestPaginated(t *testing.T) {
	c := app.NewContext(0)
	Paginated(context.Background(), c, []int{1, 2}, 2, 10, 12)

	var body struct {
		Data []int          `json:"data"`
		Meta map[string]int `json:"meta"`
	}
	if err := json.Unmarshal(c.Response.Body(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Data) != 2 || body.Meta["page"] != 2 || body.Meta["page_size"] != 10 || body.Meta["total"] != 12 {
		t.Errorf("body = %+v", body)
	}
}
