package tasktransport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-kit/kit/log"
	"github.com/gorilla/mux"
	"github.com/ichigozero/todokit/backend/authsvc/pkg/authservice"
	"github.com/ichigozero/todokit/backend/authsvc/pkg/authtransport"
	"github.com/ichigozero/todokit/backend/tasksvc"
	taskfile "github.com/ichigozero/todokit/backend/tasksvc/db/file"
	"github.com/ichigozero/todokit/backend/tasksvc/pkg/taskendpoint"
	"github.com/ichigozero/todokit/backend/tasksvc/pkg/taskservice"
	userfile "github.com/ichigozero/todokit/backend/usersvc/db/file"
	"github.com/ichigozero/todokit/backend/usersvc/pkg/userservice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	dir := t.TempDir()
	logger := log.NewNopLogger()

	userRepository := userfile.NewUserRepository(filepath.Join(dir, "auth.json"))
	taskRepository := taskfile.NewTaskRepository(filepath.Join(dir, "db.json"))

	validator := authservice.NewBasicService(userRepository)
	users := userservice.NewBasicService(userRepository, validator, bcrypt.MinCost)
	for _, u := range []struct{ name, password string }{
		{"alice", "pw1"},
		{"carol", "pw3"},
	} {
		_, err := users.Register(context.Background(), u.name, u.password)
		require.NoError(t, err)
	}

	endpoints := taskendpoint.New(taskservice.NewBasicService(taskRepository), logger)
	authenticator := authtransport.NewAuthenticator(validator)

	r := mux.NewRouter()
	r.PathPrefix("/tasks").Handler(NewHTTPHandler(endpoints, authenticator, logger))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, username, password string, body interface{}) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	if username != "" {
		req.SetBasicAuth(username, password)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeTask(t *testing.T, resp *http.Response) tasksvc.Task {
	t.Helper()
	var task tasksvc.Task
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&task))
	return task
}

func TestTaskRoutesRequireAuth(t *testing.T) {
	srv := newServer(t)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{name: "no credentials", username: "", password: ""},
		{name: "unknown user", username: "bob", password: "pw2"},
		{name: "wrong password", username: "alice", password: "wrong"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, "GET", srv.URL+"/tasks", tt.username, tt.password, nil)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, "Basic", resp.Header.Get("WWW-Authenticate"))

			var body map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			// Rejections share one body regardless of the reason.
			assert.Equal(t, "unauthorized", body["error"])
		})
	}
}

func TestListTasksEmpty(t *testing.T) {
	srv := newServer(t)

	resp := doJSON(t, "GET", srv.URL+"/tasks", "alice", "pw1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var tasks []tasksvc.Task
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tasks))
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestCreateTask(t *testing.T) {
	srv := newServer(t)

	resp := doJSON(t, "POST", srv.URL+"/tasks", "alice", "pw1", map[string]interface{}{
		"title": "Buy milk",
		// userId in the body must be ignored; ownership is server-assigned.
		"userId": "bob",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	task := decodeTask(t, resp)
	assert.NotEmpty(t, task.ID)
	assert.Equal(t, "Buy milk", task.Title)
	assert.Equal(t, "alice", task.UserID)
	assert.False(t, task.Done)
	assert.False(t, task.CreatedAt.IsZero())
	assert.Equal(t, task.CreatedAt, task.UpdatedAt)
}

func TestCreateTaskDefaultsTitle(t *testing.T) {
	srv := newServer(t)

	resp := doJSON(t, "POST", srv.URL+"/tasks", "alice", "pw1", map[string]interface{}{})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Untitled Task", decodeTask(t, resp).Title)
}

func TestGetTaskRoundTrip(t *testing.T) {
	srv := newServer(t)

	resp := doJSON(t, "POST", srv.URL+"/tasks", "alice", "pw1", map[string]interface{}{
		"title":       "Buy milk",
		"description": "2 liters",
		"group":       "errands",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeTask(t, resp)

	resp = doJSON(t, "GET", srv.URL+"/tasks/"+created.ID, "alice", "pw1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, created, decodeTask(t, resp))
}

func TestGetTaskNotFound(t *testing.T) {
	srv := newServer(t)

	resp := doJSON(t, "GET", srv.URL+"/tasks/missing", "alice", "pw1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Task not found", body["message"])
}

func TestGetTaskCrossUser(t *testing.T) {
	srv := newServer(t)

	resp := doJSON(t, "POST", srv.URL+"/tasks", "alice", "pw1", map[string]interface{}{"title": "secret"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeTask(t, resp)

	// Another registered user sees not-found, never the contents.
	resp = doJSON(t, "GET", srv.URL+"/tasks/"+created.ID, "carol", "pw3", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateTaskPartialMerge(t *testing.T) {
	srv := newServer(t)

	resp := doJSON(t, "POST", srv.URL+"/tasks", "alice", "pw1", map[string]interface{}{
		"title":       "Buy milk",
		"description": "2 liters",
		"group":       "errands",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeTask(t, resp)

	resp = doJSON(t, "PUT", srv.URL+"/tasks/"+created.ID, "alice", "pw1", map[string]interface{}{"done": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	updated := decodeTask(t, resp)
	assert.True(t, updated.Done)
	assert.Equal(t, "Buy milk", updated.Title)
	assert.Equal(t, "2 liters", updated.Description)
	assert.Equal(t, "errands", updated.Group)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))
}

func TestUpdateTaskNotFound(t *testing.T) {
	srv := newServer(t)

	resp := doJSON(t, "PUT", srv.URL+"/tasks/missing", "alice", "pw1", map[string]interface{}{"done": true})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteTask(t *testing.T) {
	srv := newServer(t)

	resp := doJSON(t, "POST", srv.URL+"/tasks", "alice", "pw1", map[string]interface{}{"title": "Buy milk"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeTask(t, resp)

	resp = doJSON(t, "DELETE", srv.URL+"/tasks/"+created.ID, "alice", "pw1", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, "DELETE", srv.URL+"/tasks/"+created.ID, "alice", "pw1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHTTPClient(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()

	client, err := NewHTTPClient(srv.URL, "alice", "pw1", log.NewNopLogger())
	require.NoError(t, err)

	created, err := client.CreateTask(ctx, "", tasksvc.TaskDraft{Title: "Buy milk"})
	require.NoError(t, err)
	assert.Equal(t, "alice", created.UserID)

	tasks, err := client.Tasks(ctx, "")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, created.ID, tasks[0].ID)

	done := true
	updated, err := client.UpdateTask(ctx, "", created.ID, tasksvc.TaskUpdate{Done: &done})
	require.NoError(t, err)
	assert.True(t, updated.Done)

	deleted, err := client.DeleteTask(ctx, "", created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = client.Task(ctx, "", created.ID)
	assert.Equal(t, tasksvc.ErrTaskNotFound, err)
}

func TestHTTPClientBadCredentials(t *testing.T) {
	srv := newServer(t)

	client, err := NewHTTPClient(srv.URL, "alice", "wrong", log.NewNopLogger())
	require.NoError(t, err)

	_, err = client.Tasks(context.Background(), "")
	assert.Error(t, err)
}
