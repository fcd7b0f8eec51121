package payroll_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"hr-payroll/internal/payroll"
	payrollerrors "hr-payroll/internal/payroll/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *apiError       `json:"error"`
}

func mustDecodeEnvelope(t *testing.T, body []byte) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	err := json.Unmarshal(body, &env)
	assert.NoError(t, err)
	return env
}

type fakePayrollService struct {
	previewFn      func(ctx context.Context, req payroll.CalculatePreviewRequest) ([]payroll.PreviewItemResponse, error)
	createFn       func(ctx context.Context, actorID string, req payroll.CreateRunRequest) (payroll.RunDetailResponse, error)
	getAllFn       func(ctx context.Context, filter payroll.GetRunsFilterRequest) ([]payroll.RunResponse, error)
	getByIDFn      func(ctx context.Context, id string) (payroll.RunDetailResponse, error)
	getBreakdownFn func(ctx context.Context, id string) (payroll.RunBreakdownResponse, error)
	updateFn       func(ctx context.Context, actorID, id string, req payroll.UpdateRunRequest) (payroll.RunDetailResponse, error)
	deleteFn       func(ctx context.Context, id string) error
}

func (f *fakePayrollService) CalculatePreview(ctx context.Context, req payroll.CalculatePreviewRequest) ([]payroll.PreviewItemResponse, error) {
	return f.previewFn(ctx, req)
}

func (f *fakePayrollService) Create(ctx context.Context, actorID string, req payroll.CreateRunRequest) (payroll.RunDetailResponse, error) {
	return f.createFn(ctx, actorID, req)
}

func (f *fakePayrollService) GetAll(ctx context.Context, filter payroll.GetRunsFilterRequest) ([]payroll.RunResponse, error) {
	return f.getAllFn(ctx, filter)
}

func (f *fakePayrollService) GetByID(ctx context.Context, id string) (payroll.RunDetailResponse, error) {
	return f.getByIDFn(ctx, id)
}

func (f *fakePayrollService) GetBreakdown(ctx context.Context, id string) (payroll.RunBreakdownResponse, error) {
	return f.getBreakdownFn(ctx, id)
}

func (f *fakePayrollService) Update(ctx context.Context, actorID, id string, req payroll.UpdateRunRequest) (payroll.RunDetailResponse, error) {
	return f.updateFn(ctx, actorID, id, req)
}

func (f *fakePayrollService) Delete(ctx context.Context, id string) error {
	return f.deleteFn(ctx, id)
}

func TestPayrollHandler_Create(t *testing.T) {
	actorID := "emp-42"

	svc := &fakePayrollService{
		createFn: func(ctx context.Context, aid string, req payroll.CreateRunRequest) (payroll.RunDetailResponse, error) {
			assert.Equal(t, actorID, aid)
			assert.Equal(t, "2026-03-01", req.PeriodStart)
			assert.Len(t, req.Items, 1)
			return payroll.RunDetailResponse{
				RunResponse: payroll.RunResponse{ID: 1, Status: payroll.StatusDraft, CreatedBy: aid},
			}, nil
		},
	}

	h := payroll.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body := `{"period_start":"2026-03-01","period_end":"2026-03-15","items":[{"employee_id":1,"net_pay":3744.78}]}`
	c.Request = httptest.NewRequest(http.MethodPost, "/payroll-runs", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("employee_id", actorID)

	h.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.True(t, env.Ok)
}

func TestPayrollHandler_Create_MissingItems(t *testing.T) {
	svc := &fakePayrollService{}

	h := payroll.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body := `{"period_start":"2026-03-01","period_end":"2026-03-15"}`
	c.Request = httptest.NewRequest(http.MethodPost, "/payroll-runs", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.False(t, env.Ok)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestPayrollHandler_Update_ReopenRejected(t *testing.T) {
	svc := &fakePayrollService{
		updateFn: func(ctx context.Context, actorID, id string, req payroll.UpdateRunRequest) (payroll.RunDetailResponse, error) {
			return payroll.RunDetailResponse{}, payrollerrors.ErrCannotReopenFinalized
		},
	}

	h := payroll.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body := `{"status":"DRAFT"}`
	c.Request = httptest.NewRequest(http.MethodPut, "/payroll-runs/5", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = []gin.Param{{Key: "id", Value: "5"}}

	h.Update(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.False(t, env.Ok)
	assert.Equal(t, "INVALID_STATE", env.Error.Code)
}

func TestPayrollHandler_GetById_NotFound(t *testing.T) {
	svc := &fakePayrollService{
		getByIDFn: func(ctx context.Context, id string) (payroll.RunDetailResponse, error) {
			return payroll.RunDetailResponse{}, payrollerrors.ErrRunNotFound
		},
	}

	h := payroll.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/payroll-runs/99", nil)
	c.Params = []gin.Param{{Key: "id", Value: "99"}}

	h.GetById(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestPayrollHandler_GetAll_Paginates(t *testing.T) {
	runs := make([]payroll.RunResponse, 25)
	for i := range runs {
		runs[i] = payroll.RunResponse{ID: uint(i + 1), Status: payroll.StatusDraft}
	}

	svc := &fakePayrollService{
		getAllFn: func(ctx context.Context, filter payroll.GetRunsFilterRequest) ([]payroll.RunResponse, error) {
			assert.Equal(t, payroll.StatusDraft, filter.Status)
			return runs, nil
		},
	}

	h := payroll.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/payroll-runs?status=DRAFT&page=2&page_size=10", nil)

	h.GetAll(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var env struct {
		Ok   bool                  `json:"ok"`
		Data []payroll.RunResponse `json:"data"`
		Meta struct {
			Total      int64 `json:"total"`
			Page       int   `json:"page"`
			TotalPages int   `json:"totalPages"`
		} `json:"meta"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Len(t, env.Data, 10)
	assert.Equal(t, uint(11), env.Data[0].ID)
	assert.Equal(t, int64(25), env.Meta.Total)
	assert.Equal(t, 3, env.Meta.TotalPages)
}

func TestPayrollHandler_Preview(t *testing.T) {
	svc := &fakePayrollService{
		previewFn: func(ctx context.Context, req payroll.CalculatePreviewRequest) ([]payroll.PreviewItemResponse, error) {
			assert.Equal(t, []uint{1, 2}, req.EmployeeIDs)
			return []payroll.PreviewItemResponse{{EmployeeID: 1, NetPay: 3744.78}}, nil
		},
	}

	h := payroll.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body := `{"employee_ids":[1,2],"period_start":"2026-03-01","period_end":"2026-03-15"}`
	c.Request = httptest.NewRequest(http.MethodPost, "/payroll-runs/preview", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Preview(c)

	assert.Equal(t, http.StatusOK, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.True(t, env.Ok)
}

func TestPayrollHandler_Delete(t *testing.T) {
	var deleted string
	svc := &fakePayrollService{
		deleteFn: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
	}

	h := payroll.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/payroll-runs/7", nil)
	c.Params = []gin.Param{{Key: "id", Value: "7"}}

	h.Delete(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "7", deleted)
}
