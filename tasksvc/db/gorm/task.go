package gorm

import (
	"errors"
	"time"

	"github.com/ichigozero/todokit/backend/tasksvc"
	stdgorm "gorm.io/gorm"
)

type taskRepository struct {
	db *stdgorm.DB
}

func NewTaskRepository(db *stdgorm.DB) tasksvc.TaskRepository {
	return &taskRepository{db}
}

func (t *taskRepository) Create(task tasksvc.Task) (tasksvc.Task, error) {
	result := t.db.Create(&task)

	return task, result.Error
}

func (t *taskRepository) FindAll(userID string) ([]tasksvc.Task, error) {
	tasks := []tasksvc.Task{}
	result := t.db.Where("user_id = ?", userID).Order("created_at").Find(&tasks)

	return tasks, result.Error
}

func (t *taskRepository) Find(userID, taskID string) (tasksvc.Task, error) {
	var task tasksvc.Task
	result := t.db.Where("id = ? AND user_id = ?", taskID, userID).First(&task)

	if errors.Is(result.Error, stdgorm.ErrRecordNotFound) {
		return tasksvc.Task{}, tasksvc.ErrTaskNotFound
	}
	return task, result.Error
}

func (t *taskRepository) Update(userID, taskID string, fields tasksvc.TaskUpdate) (tasksvc.Task, error) {
	task, err := t.Find(userID, taskID)
	if err != nil {
		return tasksvc.Task{}, err
	}

	values := map[string]interface{}{"updated_at": time.Now()}
	if fields.Title != nil {
		values["title"] = *fields.Title
	}
	if fields.Description != nil {
		values["description"] = *fields.Description
	}
	if fields.Deadline != nil {
		values["deadline"] = *fields.Deadline
	}
	if fields.Done != nil {
		values["done"] = *fields.Done
	}
	if fields.Group != nil {
		values["group"] = *fields.Group
	}

	result := t.db.Model(&task).Updates(values)
	if result.Error != nil {
		return tasksvc.Task{}, result.Error
	}

	return t.Find(userID, taskID)
}

func (t *taskRepository) Delete(userID, taskID string) (bool, error) {
	result := t.db.Where("id = ? AND user_id = ?", taskID, userID).Delete(&tasksvc.Task{})

	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
