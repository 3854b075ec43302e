package services

import (
	"context"

	"todo-service/internal/models"
	"todo-service/internal/repositories"
	"todo-service/internal/validation"
)

// CreateTodoInput is a new todo. ID is supplied by the caller and must be
// present.
type CreateTodoInput struct {
	ID       *int64 `json:"id"`
	Todo     string `json:"todo"`
	Priority string `json:"priority"`
	Status   string `json:"status"`
	Category string `json:"category"`
	DueDate  string `json:"dueDate"`
}

// UpdateTodoInput carries a partial update. A nil field (omitted or JSON
// null) keeps the stored value.
type UpdateTodoInput struct {
	Status   *string `json:"status"`
	Priority *string `json:"priority"`
	Todo     *string `json:"todo"`
	Category *string `json:"category"`
	DueDate  *string `json:"dueDate"`
}

// ChangedField reports which field an update changed. When several changed,
// only the first in the order status, priority, todo, category, due date is
// reported.
type ChangedField int

const (
	NoChange ChangedField = iota
	ChangedStatus
	ChangedPriority
	ChangedTodo
	ChangedCategory
	ChangedDueDate
)

func (f ChangedField) Message() string {
	switch f {
	case ChangedStatus:
		return "Status Updated"
	case ChangedPriority:
		return "Priority Updated"
	case ChangedTodo:
		return "Todo Updated"
	case ChangedCategory:
		return "Category Updated"
	case ChangedDueDate:
		return "Due Date Updated"
	default:
		return "No Updates"
	}
}

type TodoService interface {
	ListTodos(ctx context.Context, filter models.TodoFilter) ([]models.Todo, error)
	GetTodo(ctx context.Context, id int64) (*models.Todo, error)
	GetAgenda(ctx context.Context, date string) ([]models.Todo, error)
	CreateTodo(ctx context.Context, input CreateTodoInput) error
	UpdateTodo(ctx context.Context, id int64, input UpdateTodoInput) (ChangedField, error)
	DeleteTodo(ctx context.Context, id int64) error
}

type TodoServiceImpl struct {
	repo repositories.TodoRepository
}

func NewTodoService(repo repositories.TodoRepository) *TodoServiceImpl {
	return &TodoServiceImpl{repo: repo}
}

func (s *TodoServiceImpl) ListTodos(ctx context.Context, filter models.TodoFilter) ([]models.Todo, error) {
	err := validation.First(
		func() error { return validation.Status.ValidateFilter(filter.Status) },
		func() error { return validation.Priority.ValidateFilter(filter.Priority) },
		func() error { return validation.Category.ValidateFilter(filter.Category) },
	)
	if err != nil {
		return nil, err
	}

	return s.repo.List(ctx, filter)
}

func (s *TodoServiceImpl) GetTodo(ctx context.Context, id int64) (*models.Todo, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *TodoServiceImpl) GetAgenda(ctx context.Context, date string) ([]models.Todo, error) {
	dueDate, err := validation.ParseDueDate(date)
	if err != nil {
		return nil, err
	}

	return s.repo.ListByDueDate(ctx, dueDate)
}

func (s *TodoServiceImpl) CreateTodo(ctx context.Context, input CreateTodoInput) error {
	if input.ID == nil {
		return models.ErrTodoIDRequired
	}

	todo := models.Todo{
		ID:       *input.ID,
		Todo:     input.Todo,
		Priority: input.Priority,
		Status:   input.Status,
		Category: input.Category,
	}

	if err := validateTodo(&todo, input.DueDate); err != nil {
		return err
	}

	return s.repo.Create(ctx, &todo)
}

func (s *TodoServiceImpl) UpdateTodo(ctx context.Context, id int64, input UpdateTodoInput) (ChangedField, error) {
	previous, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return NoChange, err
	}

	next := *previous
	dueDate := previous.DueDate
	if input.Status != nil {
		next.Status = *input.Status
	}
	if input.Priority != nil {
		next.Priority = *input.Priority
	}
	if input.Todo != nil {
		next.Todo = *input.Todo
	}
	if input.Category != nil {
		next.Category = *input.Category
	}
	if input.DueDate != nil {
		dueDate = *input.DueDate
	}

	if err := validateTodo(&next, dueDate); err != nil {
		return NoChange, err
	}

	if err := s.repo.Update(ctx, &next); err != nil {
		return NoChange, err
	}

	return firstChange(previous, &next), nil
}

func (s *TodoServiceImpl) DeleteTodo(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// validateTodo checks status, priority, category and then the due date,
// stopping at the first failure. On success todo.DueDate holds the
// normalized date.
func validateTodo(todo *models.Todo, dueDate string) error {
	return validation.First(
		func() error { return validation.Status.Validate(todo.Status) },
		func() error { return validation.Priority.Validate(todo.Priority) },
		func() error { return validation.Category.Validate(todo.Category) },
		func() error {
			normalized, err := validation.ParseDueDate(dueDate)
			if err != nil {
				return err
			}
			todo.DueDate = normalized
			return nil
		},
	)
}

func firstChange(previous, next *models.Todo) ChangedField {
	switch {
	case next.Status != previous.Status:
		return ChangedStatus
	case next.Priority != previous.Priority:
		return ChangedPriority
	case next.Todo != previous.Todo:
		return ChangedTodo
	case next.Category != previous.Category:
		return ChangedCategory
	case next.DueDate != previous.DueDate:
		return ChangedDueDate
	default:
		return NoChange
	}
}
