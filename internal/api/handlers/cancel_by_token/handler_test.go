package cancel_by_token

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvasko/SBP-AppointmentService/internal/domain"
	cancelAppointment "github.com/dvasko/SBP-AppointmentService/internal/usecase/cancel_appointment"
)

type fakeUseCase struct {
	result *domain.Appointment
	err    error
}

func (f *fakeUseCase) ExecuteByToken(_ context.Context, _ *cancelAppointment.TokenRequest) (*domain.Appointment, error) {
	return f.result, f.err
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func doRequest(h *Handler, secret string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc("/api/v1/public/cancellations/{token}", h.Handle).Methods(http.MethodPost)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/public/cancellations/"+secret, nil)
	r.ServeHTTP(rec, req)
	return rec
}

// Анонимный клиент получает только подтверждение, без деталей записи
func TestHandle_SuccessBodyIsBareConfirmation(t *testing.T) {
	uc := &fakeUseCase{result: &domain.Appointment{
		ID:      10,
		Code:    "2609-0001",
		Status:  domain.StatusCancelled,
		StartAt: time.Date(2026, 9, 7, 12, 0, 0, 0, time.UTC),
	}}
	h := NewHandler(uc, nopLogger{})

	rec := doRequest(h, "some-secret")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, map[string]interface{}{"cancelled": true}, body)
}

func TestHandle_InvalidTokenIsGenericNotFound(t *testing.T) {
	h := NewHandler(&fakeUseCase{err: cancelAppointment.ErrInvalidToken}, nopLogger{})

	rec := doRequest(h, "bad-secret")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, msgInvalidToken, body["error"])
}
