package models

import "errors"

const (
	StatusToDo       = "TO DO"
	StatusInProgress = "IN PROGRESS"
	StatusDone       = "DONE"
)

const (
	PriorityHigh   = "HIGH"
	PriorityMedium = "MEDIUM"
	PriorityLow    = "LOW"
)

const (
	CategoryWork     = "WORK"
	CategoryHome     = "HOME"
	CategoryLearning = "LEARNING"
)

// DueDateLayout is the canonical storage form of Todo.DueDate.
const DueDateLayout = "2006-01-02"

var (
	ErrTodoNotFound   = errors.New("todo not found")
	ErrTodoExists     = errors.New("todo already exists")
	ErrTodoIDRequired = errors.New("todo id is required")
)

// Statuses, Priorities and Categories list the closed value sets of the
// enumerated columns in their canonical order.
var (
	Statuses   = []string{StatusToDo, StatusInProgress, StatusDone}
	Priorities = []string{PriorityHigh, PriorityMedium, PriorityLow}
	Categories = []string{CategoryWork, CategoryHome, CategoryLearning}
)

type Todo struct {
	ID       int64  `json:"id" gorm:"column:id;primaryKey;autoIncrement:false"`
	Todo     string `json:"todo" gorm:"column:todo"`
	Priority string `json:"priority" gorm:"column:priority"`
	Status   string `json:"status" gorm:"column:status"`
	Category string `json:"category" gorm:"column:category"`
	DueDate  string `json:"dueDate" gorm:"column:due_date"`
}

func (Todo) TableName() string {
	return "todo"
}

// TodoFilter narrows a listing. Every non-empty field is matched as a
// substring of the corresponding column.
type TodoFilter struct {
	Status   string `form:"status"`
	Priority string `form:"priority"`
	Search   string `form:"search_q"`
	Category string `form:"category"`
}
