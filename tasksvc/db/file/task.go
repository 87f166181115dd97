package file

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/ichigozero/todokit/backend/tasksvc"
)

type taskDocument struct {
	Tasks []tasksvc.Task `json:"tasks"`
}

type taskRepository struct {
	mu   sync.Mutex
	path string
}

// NewTaskRepository returns a TaskRepository backed by a single JSON
// file. Every operation re-reads the file and mutating operations
// rewrite it whole. The mutex keeps the read-modify-write cycle atomic
// within the process; the file has a single writer by contract.
func NewTaskRepository(path string) tasksvc.TaskRepository {
	return &taskRepository{path: path}
}

func (t *taskRepository) load() (*taskDocument, error) {
	doc := &taskDocument{Tasks: []tasksvc.Task{}}

	data, err := os.ReadFile(t.path)
	if os.IsNotExist(err) {
		return doc, nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return doc, nil
	}

	if err := json.Unmarshal(data, doc); err != nil {
		return nil, err
	}
	if doc.Tasks == nil {
		doc.Tasks = []tasksvc.Task{}
	}
	return doc, nil
}

func (t *taskRepository) store(doc *taskDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(t.path, data, 0644)
}

func (t *taskRepository) Create(task tasksvc.Task) (tasksvc.Task, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	doc, err := t.load()
	if err != nil {
		return tasksvc.Task{}, err
	}

	doc.Tasks = append(doc.Tasks, task)
	if err := t.store(doc); err != nil {
		return tasksvc.Task{}, err
	}

	return task, nil
}

func (t *taskRepository) FindAll(userID string) ([]tasksvc.Task, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	doc, err := t.load()
	if err != nil {
		return nil, err
	}

	tasks := []tasksvc.Task{}
	for _, task := range doc.Tasks {
		if task.UserID == userID {
			tasks = append(tasks, task)
		}
	}
	return tasks, nil
}

func (t *taskRepository) Find(userID, taskID string) (tasksvc.Task, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	doc, err := t.load()
	if err != nil {
		return tasksvc.Task{}, err
	}

	for _, task := range doc.Tasks {
		if task.ID == taskID && task.UserID == userID {
			return task, nil
		}
	}
	return tasksvc.Task{}, tasksvc.ErrTaskNotFound
}

func (t *taskRepository) Update(userID, taskID string, fields tasksvc.TaskUpdate) (tasksvc.Task, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	doc, err := t.load()
	if err != nil {
		return tasksvc.Task{}, err
	}

	for i := range doc.Tasks {
		if doc.Tasks[i].ID != taskID || doc.Tasks[i].UserID != userID {
			continue
		}

		task := &doc.Tasks[i]
		if fields.Title != nil {
			task.Title = *fields.Title
		}
		if fields.Description != nil {
			task.Description = *fields.Description
		}
		if fields.Deadline != nil {
			task.Deadline = fields.Deadline
		}
		if fields.Done != nil {
			task.Done = *fields.Done
		}
		if fields.Group != nil {
			task.Group = *fields.Group
		}
		task.UpdatedAt = time.Now()

		if err := t.store(doc); err != nil {
			return tasksvc.Task{}, err
		}
		return *task, nil
	}

	return tasksvc.Task{}, tasksvc.ErrTaskNotFound
}

func (t *taskRepository) Delete(userID, taskID string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	doc, err := t.load()
	if err != nil {
		return false, err
	}

	kept := make([]tasksvc.Task, 0, len(doc.Tasks))
	for _, task := range doc.Tasks {
		if task.ID == taskID && task.UserID == userID {
			continue
		}
		kept = append(kept, task)
	}

	if len(kept) == len(doc.Tasks) {
		return false, nil
	}

	doc.Tasks = kept
	if err := t.store(doc); err != nil {
		return false, err
	}
	return true, nil
}
