package employee_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"hr-payroll/internal/employee"
	employeeerrors "hr-payroll/internal/employee/errors"

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

type fakeEmployeeService struct {
	createFn     func(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error)
	getAllFn     func(ctx context.Context) ([]employee.EmployeeResponse, error)
	getOptionsFn func(ctx context.Context) ([]employee.EmployeeOptionResponse, error)
	getByIDFn    func(ctx context.Context, id uint) (employee.EmployeeResponse, error)
	updateFn     func(ctx context.Context, id uint, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error)
	deleteFn     func(ctx context.Context, id uint) error
}

func (f *fakeEmployeeService) Create(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	return f.createFn(ctx, req)
}

func (f *fakeEmployeeService) GetAll(ctx context.Context) ([]employee.EmployeeResponse, error) {
	return f.getAllFn(ctx)
}

func (f *fakeEmployeeService) GetOptions(ctx context.Context) ([]employee.EmployeeOptionResponse, error) {
	return f.getOptionsFn(ctx)
}

func (f *fakeEmployeeService) GetByID(ctx context.Context, id uint) (employee.EmployeeResponse, error) {
	return f.getByIDFn(ctx, id)
}

func (f *fakeEmployeeService) Update(ctx context.Context, id uint, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error) {
	return f.updateFn(ctx, id, req)
}

func (f *fakeEmployeeService) Delete(ctx context.Context, id uint) error {
	return f.deleteFn(ctx, id)
}

func TestEmployeeHandler_Create(t *testing.T) {
	svc := &fakeEmployeeService{
		createFn: func(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
			assert.Equal(t, "Maria Santos", req.FullName)
			assert.NotNil(t, req.SalaryProfile)
			assert.InDelta(t, 457, req.SalaryProfile.DailyRate.Float(), 0.001)
			return employee.EmployeeResponse{ID: 1, FullName: req.FullName}, nil
		},
	}

	h := employee.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body := `{
		"full_name": "Maria Santos",
		"email": "maria@example.com",
		"position": "Accountant",
		"salary_profile": {"basicSalary": 13710, "dailyRate": "457"}
	}`
	c.Request = httptest.NewRequest(http.MethodPost, "/employees", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.True(t, env.Ok)
}

func TestEmployeeHandler_Create_InvalidStatus(t *testing.T) {
	svc := &fakeEmployeeService{}

	h := employee.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body := `{"full_name":"Maria Santos","email":"maria@example.com","employment_status":"ON_LEAVE"}`
	c.Request = httptest.NewRequest(http.MethodPost, "/employees", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.False(t, env.Ok)
}

func TestEmployeeHandler_GetById(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		svc := &fakeEmployeeService{
			getByIDFn: func(ctx context.Context, id uint) (employee.EmployeeResponse, error) {
				assert.Equal(t, uint(5), id)
				return employee.EmployeeResponse{ID: 5, FullName: "Maria Santos"}, nil
			},
		}

		h := employee.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/employees/5", nil)
		c.Params = []gin.Param{{Key: "id", Value: "5"}}

		h.GetById(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		svc := &fakeEmployeeService{
			getByIDFn: func(ctx context.Context, id uint) (employee.EmployeeResponse, error) {
				return employee.EmployeeResponse{}, employeeerrors.ErrEmployeeNotFound
			},
		}

		h := employee.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/employees/99", nil)
		c.Params = []gin.Param{{Key: "id", Value: "99"}}

		h.GetById(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
		env := mustDecodeEnvelope(t, w.Body.Bytes())
		assert.Equal(t, "NOT_FOUND", env.Error.Code)
	})

	t.Run("bad id", func(t *testing.T) {
		svc := &fakeEmployeeService{}

		h := employee.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/employees/abc", nil)
		c.Params = []gin.Param{{Key: "id", Value: "abc"}}

		h.GetById(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestEmployeeHandler_GetOptions(t *testing.T) {
	svc := &fakeEmployeeService{
		getOptionsFn: func(ctx context.Context) ([]employee.EmployeeOptionResponse, error) {
			return []employee.EmployeeOptionResponse{{ID: 1, FullName: "Maria Santos"}}, nil
		},
	}

	h := employee.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/employees/options", nil)

	h.GetOptions(c)

	assert.Equal(t, http.StatusOK, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.True(t, env.Ok)
}

func TestEmployeeHandler_Delete(t *testing.T) {
	var deleted uint
	svc := &fakeEmployeeService{
		deleteFn: func(ctx context.Context, id uint) error {
			deleted = id
			return nil
		},
	}

	h := employee.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/employees/3", nil)
	c.Params = []gin.Param{{Key: "id", Value: "3"}}

	h.Delete(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint(3), deleted)
}
