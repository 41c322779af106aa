package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"taskboard/internal/formstate"
	"taskboard/internal/handler"
	"taskboard/internal/model"
	"taskboard/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupDraftTest(t *testing.T, userID uuid.UUID) (http.Handler, *formstate.SQLiteStore, *MockTaskWorkflow) {
	t.Helper()
	store, err := formstate.OpenSQLiteStore(filepath.Join(t.TempDir(), "drafts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	tasks := new(MockTaskWorkflow)
	h := handler.NewDraftHandler(store, tasks)

	r := newTestRouter(userID)
	r.GET("/drafts/task", h.Get)
	r.PUT("/drafts/task", h.Update)
	r.DELETE("/drafts/task", h.Reset)
	r.POST("/drafts/task/submit", h.Submit)
	return r, store, tasks
}

func doDraft(router http.Handler, method, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req, _ = http.NewRequest(method, "/drafts/task", nil)
	} else {
		req, _ = http.NewRequest(method, "/drafts/task", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func decodeDraft(t *testing.T, resp *httptest.ResponseRecorder) formstate.TaskDraft {
	t.Helper()
	var body handler.DraftResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	return body.Draft
}

func TestDraft_DefaultsWhenEmpty(t *testing.T) {
	router, _, _ := setupDraftTest(t, uuid.New())

	resp := doDraft(router, http.MethodGet, "")

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, formstate.NewTaskDraft(), decodeDraft(t, resp))
}

func TestDraft_UpdatePersists(t *testing.T) {
	// Arrange
	router, _, _ := setupDraftTest(t, uuid.New())

	// Act
	resp := doDraft(router, http.MethodPut, `{"title":"Plan sprint","priority":"urgent"}`)
	require.Equal(t, http.StatusOK, resp.Code)

	// Assert: повторное чтение возвращает сохраненный черновик
	draft := decodeDraft(t, doDraft(router, http.MethodGet, ""))
	assert.Equal(t, "Plan sprint", draft.Title)
	assert.Equal(t, model.PriorityUrgent, draft.Priority)
	assert.True(t, draft.IsPrivate)
}

func TestDraft_UpdateRejectsUnknownField(t *testing.T) {
	// Arrange
	router, _, _ := setupDraftTest(t, uuid.New())

	// Act
	resp := doDraft(router, http.MethodPut, `{"colour":"red"}`)

	// Assert
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "Unknown draft field", body["error"])
	assert.Equal(t, "colour", body["field"])
}

func TestDraft_DraftsAreScopedPerUser(t *testing.T) {
	// Arrange
	userID := uuid.New()
	router, store, _ := setupDraftTest(t, userID)

	other := formstate.NewTaskDraft()
	other.Title = "someone else"
	require.NoError(t, formstate.Persist(context.Background(), store, formstate.TaskDraftKey(uuid.NewString()), other))

	// Act
	resp := doDraft(router, http.MethodGet, "")

	// Assert
	assert.Empty(t, decodeDraft(t, resp).Title)
}

func TestDraft_Reset(t *testing.T) {
	// Arrange
	router, _, _ := setupDraftTest(t, uuid.New())
	require.Equal(t, http.StatusOK, doDraft(router, http.MethodPut, `{"title":"x"}`).Code)

	// Act
	resp := doDraft(router, http.MethodDelete, "")

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, formstate.NewTaskDraft(), decodeDraft(t, doDraft(router, http.MethodGet, "")))
}

func TestDraft_SubmitClearsOnSuccess(t *testing.T) {
	// Arrange
	userID := uuid.New()
	router, _, tasks := setupDraftTest(t, userID)
	require.Equal(t, http.StatusOK, doDraft(router, http.MethodPut, `{"title":"Ship it","status":"DONE"}`).Code)

	taskID := uuid.New()
	tasks.On("Create", mock.Anything, userID, mock.MatchedBy(func(sub service.TaskSubmission) bool {
		return sub.Fields.Title == "Ship it" &&
			sub.Fields.Status == string(model.StatusCompleted) &&
			sub.Fields.IsPrivate == "true" &&
			sub.AssigneeIDs == "[]"
	})).Return(created("Task created successfully", &service.ActionData{TaskID: &taskID}))

	// Act
	req, _ := http.NewRequest(http.MethodPost, "/drafts/task/submit", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusCreated, resp.Code)
	assert.Equal(t, formstate.NewTaskDraft(), decodeDraft(t, doDraft(router, http.MethodGet, "")))
	tasks.AssertExpectations(t)
}

func TestDraft_SubmitKeepsDraftOnFailure(t *testing.T) {
	// Arrange
	userID := uuid.New()
	router, _, tasks := setupDraftTest(t, userID)
	require.Equal(t, http.StatusOK, doDraft(router, http.MethodPut, `{"is_private":"false"}`).Code)

	tasks.On("Create", mock.Anything, userID, mock.AnythingOfType("service.TaskSubmission")).
		Return(failedWith(service.KindValidation, "Invalid task data"))

	// Act
	req, _ := http.NewRequest(http.MethodPost, "/drafts/task/submit", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.False(t, decodeDraft(t, doDraft(router, http.MethodGet, "")).IsPrivate)
}
