package balance_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-leave/internal/balance"
	balanceerrors "go-leave/internal/balance/errors"

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

func decodeEnvelope(t *testing.T, body []byte) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	err := json.Unmarshal(body, &env)
	assert.NoError(t, err)
	return env
}

type fakeBalanceService struct {
	getByEmployeeFn func(ctx context.Context, employeeID string) (balance.BalanceResponse, error)
}

func (f *fakeBalanceService) GetByEmployee(ctx context.Context, employeeID string) (balance.BalanceResponse, error) {
	return f.getByEmployeeFn(ctx, employeeID)
}

func serveBalance(h *balance.Handler, path string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	balance.RegisterRoutes(r.Group("/api"), h)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestBalanceHandler_GetByEmployee(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &fakeBalanceService{
			getByEmployeeFn: func(ctx context.Context, employeeID string) (balance.BalanceResponse, error) {
				assert.Equal(t, "EMP1", employeeID)
				return balance.BalanceResponse{EmployeeID: employeeID, EmployeeName: "Jane", Annual: 7, Sick: 5, Casual: 8}, nil
			},
		}

		w := serveBalance(balance.NewHandler(svc), "/api/leave-balances/EMP1")

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
		var got balance.BalanceResponse
		assert.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, 7, got.Annual)
		assert.Equal(t, "Jane", got.EmployeeName)
	})

	t.Run("negative invalid id", func(t *testing.T) {
		svc := &fakeBalanceService{
			getByEmployeeFn: func(ctx context.Context, employeeID string) (balance.BalanceResponse, error) {
				return balance.BalanceResponse{}, balanceerrors.ErrInvalidEmployeeID
			},
		}

		w := serveBalance(balance.NewHandler(svc), "/api/leave-balances/bad-id")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	})

	t.Run("negative unexpected error hides cause", func(t *testing.T) {
		svc := &fakeBalanceService{
			getByEmployeeFn: func(ctx context.Context, employeeID string) (balance.BalanceResponse, error) {
				return balance.BalanceResponse{}, errors.New("pq: relation does not exist")
			},
		}

		w := serveBalance(balance.NewHandler(svc), "/api/leave-balances/EMP1")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.Equal(t, "INTERNAL_ERROR", env.Error.Code)
		assert.NotContains(t, env.Error.Message, "relation")
	})
}
