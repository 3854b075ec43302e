package repositories

import (
	"context"
	"errors"
	"fmt"

	"todo-service/internal/models"

	"gorm.io/gorm"
)

// TodoRepository issues exactly one statement per call against the todo
// table. All request-derived values are bound as parameters.
type TodoRepository interface {
	List(ctx context.Context, filter models.TodoFilter) ([]models.Todo, error)
	GetByID(ctx context.Context, id int64) (*models.Todo, error)
	ListByDueDate(ctx context.Context, dueDate string) ([]models.Todo, error)
	Create(ctx context.Context, todo *models.Todo) error
	Update(ctx context.Context, todo *models.Todo) error
	Delete(ctx context.Context, id int64) error
}

type GormTodoRepository struct {
	db *gorm.DB
}

func NewTodoRepository(db *gorm.DB) *GormTodoRepository {
	return &GormTodoRepository{db: db}
}

// due_date is cast so that drivers mapping DATE-declared columns to time
// values still return the stored yyyy-MM-dd text.
const todoColumns = "id, todo, priority, status, category, CAST(due_date AS TEXT) AS due_date"

func contains(s string) string {
	return "%" + s + "%"
}

func (r *GormTodoRepository) List(ctx context.Context, filter models.TodoFilter) ([]models.Todo, error) {
	todos := make([]models.Todo, 0)
	result := r.db.WithContext(ctx).
		Select(todoColumns).
		Where("status LIKE ?", contains(filter.Status)).
		Where("priority LIKE ?", contains(filter.Priority)).
		Where("todo LIKE ?", contains(filter.Search)).
		Where("category LIKE ?", contains(filter.Category)).
		Order("id").
		Find(&todos)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list todos: %w", result.Error)
	}
	return todos, nil
}

func (r *GormTodoRepository) GetByID(ctx context.Context, id int64) (*models.Todo, error) {
	var todo models.Todo
	err := r.db.WithContext(ctx).Select(todoColumns).Where("id = ?", id).First(&todo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to get todo %d: %w", id, err)
	}
	return &todo, nil
}

func (r *GormTodoRepository) ListByDueDate(ctx context.Context, dueDate string) ([]models.Todo, error) {
	todos := make([]models.Todo, 0)
	result := r.db.WithContext(ctx).
		Select(todoColumns).
		Where("due_date = ?", dueDate).
		Order("id").
		Find(&todos)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list todos due %s: %w", dueDate, result.Error)
	}
	return todos, nil
}

func (r *GormTodoRepository) Create(ctx context.Context, todo *models.Todo) error {
	err := r.db.WithContext(ctx).Create(todo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.ErrTodoExists
		}
		return fmt.Errorf("failed to create todo %d: %w", todo.ID, err)
	}
	return nil
}

// Update overwrites every mutable column of the row with todo.ID, including
// columns whose new value is the zero value.
func (r *GormTodoRepository) Update(ctx context.Context, todo *models.Todo) error {
	err := r.db.WithContext(ctx).
		Model(&models.Todo{}).
		Where("id = ?", todo.ID).
		Updates(map[string]interface{}{
			"status":   todo.Status,
			"priority": todo.Priority,
			"todo":     todo.Todo,
			"category": todo.Category,
			"due_date": todo.DueDate,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update todo %d: %w", todo.ID, err)
	}
	return nil
}

// Delete succeeds whether or not a row with id exists.
func (r *GormTodoRepository) Delete(ctx context.Context, id int64) error {
	err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Todo{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete todo %d: %w", id, err)
	}
	return nil
}
