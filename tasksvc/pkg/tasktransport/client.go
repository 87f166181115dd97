package tasktransport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-kit/kit/circuitbreaker"
	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/ratelimit"
	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/ichigozero/todokit/backend/authsvc"
	"github.com/ichigozero/todokit/backend/tasksvc"
	"github.com/ichigozero/todokit/backend/tasksvc/pkg/taskendpoint"
	"github.com/ichigozero/todokit/backend/tasksvc/pkg/taskservice"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// NewHTTPClient returns a taskservice.Service talking to a remote
// instance over the REST surface, authenticating every request with
// the given Basic credentials.
func NewHTTPClient(instance, username, password string, logger log.Logger) (taskservice.Service, error) {
	// Quickly sanitize the instance string.
	if !strings.HasPrefix(instance, "http") {
		instance = "http://" + instance
	}
	u, err := url.Parse(instance)
	if err != nil {
		return nil, err
	}

	limiter := ratelimit.NewErroringLimiter(rate.NewLimiter(rate.Every(time.Second), 100))

	options := []httptransport.ClientOption{
		httptransport.ClientBefore(setBasicAuth(username, password)),
	}

	var createTaskEndpoint endpoint.Endpoint
	{
		createTaskEndpoint = httptransport.NewClient(
			"POST",
			copyURL(u, "/tasks"),
			encodeHTTPCreateTaskClientRequest,
			decodeHTTPCreateTaskClientResponse,
			options...,
		).Endpoint()
		createTaskEndpoint = limiter(createTaskEndpoint)
		createTaskEndpoint = circuitbreaker.Gobreaker(gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "CreateTask",
			Timeout: 30 * time.Second,
		}))(createTaskEndpoint)
	}

	var tasksEndpoint endpoint.Endpoint
	{
		tasksEndpoint = httptransport.NewClient(
			"GET",
			copyURL(u, "/tasks"),
			encodeHTTPTasksClientRequest,
			decodeHTTPTasksClientResponse,
			options...,
		).Endpoint()
		tasksEndpoint = limiter(tasksEndpoint)
		tasksEndpoint = circuitbreaker.Gobreaker(gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "Tasks",
			Timeout: 30 * time.Second,
		}))(tasksEndpoint)
	}

	var taskEndpoint endpoint.Endpoint
	{
		taskEndpoint = httptransport.NewClient(
			"GET",
			copyURL(u, "/tasks"),
			encodeHTTPTaskClientRequest,
			decodeHTTPTaskClientResponse,
			options...,
		).Endpoint()
		taskEndpoint = limiter(taskEndpoint)
		taskEndpoint = circuitbreaker.Gobreaker(gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "Task",
			Timeout: 30 * time.Second,
		}))(taskEndpoint)
	}

	var updateTaskEndpoint endpoint.Endpoint
	{
		updateTaskEndpoint = httptransport.NewClient(
			"PUT",
			copyURL(u, "/tasks"),
			encodeHTTPUpdateTaskClientRequest,
			decodeHTTPUpdateTaskClientResponse,
			options...,
		).Endpoint()
		updateTaskEndpoint = limiter(updateTaskEndpoint)
		updateTaskEndpoint = circuitbreaker.Gobreaker(gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "UpdateTask",
			Timeout: 30 * time.Second,
		}))(updateTaskEndpoint)
	}

	var deleteTaskEndpoint endpoint.Endpoint
	{
		deleteTaskEndpoint = httptransport.NewClient(
			"DELETE",
			copyURL(u, "/tasks"),
			encodeHTTPDeleteTaskClientRequest,
			decodeHTTPDeleteTaskClientResponse,
			options...,
		).Endpoint()
		deleteTaskEndpoint = limiter(deleteTaskEndpoint)
		deleteTaskEndpoint = circuitbreaker.Gobreaker(gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "DeleteTask",
			Timeout: 30 * time.Second,
		}))(deleteTaskEndpoint)
	}

	return taskendpoint.Set{
		CreateTaskEndpoint: createTaskEndpoint,
		TasksEndpoint:      tasksEndpoint,
		TaskEndpoint:       taskEndpoint,
		UpdateTaskEndpoint: updateTaskEndpoint,
		DeleteTaskEndpoint: deleteTaskEndpoint,
	}, nil
}

func copyURL(base *url.URL, path string) *url.URL {
	next := *base
	next.Path = path
	return &next
}

func setBasicAuth(username, password string) httptransport.RequestFunc {
	return func(ctx context.Context, r *http.Request) context.Context {
		r.SetBasicAuth(username, password)
		return ctx
	}
}

func encodeHTTPCreateTaskClientRequest(_ context.Context, r *http.Request, request interface{}) error {
	return encodeJSONBody(r, request)
}

func encodeHTTPTasksClientRequest(_ context.Context, r *http.Request, request interface{}) error {
	return nil
}

func encodeHTTPTaskClientRequest(_ context.Context, r *http.Request, request interface{}) error {
	req := request.(taskendpoint.TaskRequest)
	r.URL.Path = "/tasks/" + req.TaskID
	return nil
}

func encodeHTTPUpdateTaskClientRequest(_ context.Context, r *http.Request, request interface{}) error {
	req := request.(taskendpoint.UpdateTaskRequest)
	r.URL.Path = "/tasks/" + req.TaskID
	return encodeJSONBody(r, request)
}

func encodeHTTPDeleteTaskClientRequest(_ context.Context, r *http.Request, request interface{}) error {
	req := request.(taskendpoint.DeleteTaskRequest)
	r.URL.Path = "/tasks/" + req.TaskID
	return nil
}

func encodeJSONBody(r *http.Request, request interface{}) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(request); err != nil {
		return err
	}
	r.Header.Set("Content-Type", "application/json; charset=utf-8")
	r.Body = ioutil.NopCloser(&buf)
	return nil
}

func decodeHTTPCreateTaskClientResponse(_ context.Context, r *http.Response) (interface{}, error) {
	if r.StatusCode != http.StatusCreated {
		return nil, decodeClientError(r)
	}

	var task tasksvc.Task
	err := json.NewDecoder(r.Body).Decode(&task)
	return taskendpoint.CreateTaskResponse{Task: task}, err
}

func decodeHTTPTasksClientResponse(_ context.Context, r *http.Response) (interface{}, error) {
	if r.StatusCode != http.StatusOK {
		return nil, decodeClientError(r)
	}

	var tasks []tasksvc.Task
	err := json.NewDecoder(r.Body).Decode(&tasks)
	return taskendpoint.TasksResponse{Tasks: tasks}, err
}

func decodeHTTPTaskClientResponse(_ context.Context, r *http.Response) (interface{}, error) {
	if r.StatusCode == http.StatusNotFound {
		return taskendpoint.TaskResponse{Err: tasksvc.ErrTaskNotFound}, nil
	}
	if r.StatusCode != http.StatusOK {
		return nil, decodeClientError(r)
	}

	var task tasksvc.Task
	err := json.NewDecoder(r.Body).Decode(&task)
	return taskendpoint.TaskResponse{Task: task}, err
}

func decodeHTTPUpdateTaskClientResponse(_ context.Context, r *http.Response) (interface{}, error) {
	if r.StatusCode == http.StatusNotFound {
		return taskendpoint.UpdateTaskResponse{Err: tasksvc.ErrTaskNotFound}, nil
	}
	if r.StatusCode != http.StatusOK {
		return nil, decodeClientError(r)
	}

	var task tasksvc.Task
	err := json.NewDecoder(r.Body).Decode(&task)
	return taskendpoint.UpdateTaskResponse{Task: task}, err
}

func decodeHTTPDeleteTaskClientResponse(_ context.Context, r *http.Response) (interface{}, error) {
	switch r.StatusCode {
	case http.StatusNoContent:
		return taskendpoint.DeleteTaskResponse{Result: true}, nil
	case http.StatusNotFound:
		return taskendpoint.DeleteTaskResponse{Result: false}, nil
	}
	return nil, decodeClientError(r)
}

func decodeClientError(r *http.Response) error {
	if r.StatusCode == http.StatusUnauthorized {
		return authsvc.ErrInvalidCredentials
	}

	var w errorWrapper
	if err := json.NewDecoder(r.Body).Decode(&w); err == nil && w.Error != "" {
		return fmt.Errorf("%s", w.Error)
	}
	return fmt.Errorf("unexpected status %d", r.StatusCode)
}
