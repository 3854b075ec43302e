package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"todo-service/internal/models"
	"todo-service/internal/services"
	"todo-service/internal/validation"

	"github.com/gin-gonic/gin"
)

const (
	msgTodoAdded       = "Todo Successfully Added"
	msgTodoDeleted     = "Todo Deleted"
	msgTodoNotFound    = "Todo Not Found"
	msgTodoExists      = "Todo Already Exists"
	msgInvalidBody     = "Invalid Request Body"
	msgInternalFailure = "Internal Server Error"
)

type TodoHandler struct {
	todoService services.TodoService
}

func NewTodoHandler(todoService services.TodoService) *TodoHandler {
	return &TodoHandler{todoService: todoService}
}

func parseTodoID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("todoId"), 10, 64)
	return id, err == nil
}

func (h *TodoHandler) ListTodos(c *gin.Context) {
	var filter models.TodoFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.String(http.StatusBadRequest, msgInvalidBody)
		return
	}

	todos, err := h.todoService.ListTodos(c.Request.Context(), filter)
	if err != nil {
		handleTodoError(c, err)
		return
	}
	c.JSON(http.StatusOK, todos)
}

// GetTodo answers 200 with an empty body when no todo has the id.
func (h *TodoHandler) GetTodo(c *gin.Context) {
	id, ok := parseTodoID(c)
	if !ok {
		c.Status(http.StatusOK)
		return
	}

	todo, err := h.todoService.GetTodo(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrTodoNotFound) {
			c.Status(http.StatusOK)
			return
		}
		handleTodoError(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

func (h *TodoHandler) GetAgenda(c *gin.Context) {
	todos, err := h.todoService.GetAgenda(c.Request.Context(), c.Query("date"))
	if err != nil {
		handleTodoError(c, err)
		return
	}
	c.JSON(http.StatusOK, todos)
}

func (h *TodoHandler) CreateTodo(c *gin.Context) {
	var input services.CreateTodoInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.String(http.StatusBadRequest, msgInvalidBody)
		return
	}

	if err := h.todoService.CreateTodo(c.Request.Context(), input); err != nil {
		handleTodoError(c, err)
		return
	}
	c.String(http.StatusOK, msgTodoAdded)
}

func (h *TodoHandler) UpdateTodo(c *gin.Context) {
	id, ok := parseTodoID(c)
	if !ok {
		c.String(http.StatusNotFound, msgTodoNotFound)
		return
	}

	var input services.UpdateTodoInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.String(http.StatusBadRequest, msgInvalidBody)
		return
	}

	changed, err := h.todoService.UpdateTodo(c.Request.Context(), id, input)
	if err != nil {
		handleTodoError(c, err)
		return
	}
	c.String(http.StatusOK, changed.Message())
}

// DeleteTodo does not check that the todo existed.
func (h *TodoHandler) DeleteTodo(c *gin.Context) {
	id, ok := parseTodoID(c)
	if !ok {
		c.String(http.StatusOK, msgTodoDeleted)
		return
	}

	if err := h.todoService.DeleteTodo(c.Request.Context(), id); err != nil {
		handleTodoError(c, err)
		return
	}
	c.String(http.StatusOK, msgTodoDeleted)
}

func handleTodoError(c *gin.Context, err error) {
	var validationErr *validation.Error
	switch {
	case errors.As(err, &validationErr):
		c.String(http.StatusBadRequest, validationErr.Message)
	case errors.Is(err, models.ErrTodoIDRequired):
		c.String(http.StatusBadRequest, msgInvalidBody)
	case errors.Is(err, models.ErrTodoNotFound):
		c.String(http.StatusNotFound, msgTodoNotFound)
	case errors.Is(err, models.ErrTodoExists):
		c.String(http.StatusConflict, msgTodoExists)
	default:
		log.Printf("todo request %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		c.String(http.StatusInternalServerError, msgInternalFailure)
	}
}
