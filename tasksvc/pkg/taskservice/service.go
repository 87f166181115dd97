package taskservice

import (
	"context"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/ichigozero/todokit/backend/tasksvc"
	"github.com/twinj/uuid"
)

type Service interface {
	CreateTask(ctx context.Context, userID string, draft tasksvc.TaskDraft) (tasksvc.Task, error)
	Tasks(ctx context.Context, userID string) ([]tasksvc.Task, error)
	Task(ctx context.Context, userID, taskID string) (tasksvc.Task, error)
	UpdateTask(ctx context.Context, userID, taskID string, fields tasksvc.TaskUpdate) (tasksvc.Task, error)
	DeleteTask(ctx context.Context, userID, taskID string) (bool, error)
}

func New(t tasksvc.TaskRepository, logger log.Logger) Service {
	var svc Service
	{
		svc = NewBasicService(t)
		svc = LoggingMiddleware(logger)(svc)
	}
	return svc
}

type basicService struct {
	tasks tasksvc.TaskRepository
}

func NewBasicService(t tasksvc.TaskRepository) Service {
	return basicService{tasks: t}
}

const defaultTitle = "Untitled Task"

func (s basicService) CreateTask(_ context.Context, userID string, draft tasksvc.TaskDraft) (tasksvc.Task, error) {
	if userID == "" {
		return tasksvc.Task{}, tasksvc.ErrInvalidArgument
	}

	title := draft.Title
	if title == "" {
		title = defaultTitle
	}

	now := time.Now()
	task := tasksvc.Task{
		ID:          uuid.NewV4().String(),
		Title:       title,
		Description: draft.Description,
		Deadline:    draft.Deadline,
		Done:        false,
		Group:       draft.Group,
		UserID:      userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	return s.tasks.Create(task)
}

func (s basicService) Tasks(_ context.Context, userID string) ([]tasksvc.Task, error) {
	if userID == "" {
		return nil, tasksvc.ErrInvalidArgument
	}
	return s.tasks.FindAll(userID)
}

func (s basicService) Task(_ context.Context, userID, taskID string) (tasksvc.Task, error) {
	if userID == "" || taskID == "" {
		return tasksvc.Task{}, tasksvc.ErrInvalidArgument
	}
	return s.tasks.Find(userID, taskID)
}

func (s basicService) UpdateTask(_ context.Context, userID, taskID string, fields tasksvc.TaskUpdate) (tasksvc.Task, error) {
	if userID == "" || taskID == "" {
		return tasksvc.Task{}, tasksvc.ErrInvalidArgument
	}
	return s.tasks.Update(userID, taskID, fields)
}

func (s basicService) DeleteTask(_ context.Context, userID, taskID string) (bool, error) {
	if userID == "" || taskID == "" {
		return false, tasksvc.ErrInvalidArgument
	}
	return s.tasks.Delete(userID, taskID)
}
