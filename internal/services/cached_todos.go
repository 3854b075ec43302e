package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"todo-service/internal/cache"
	"todo-service/internal/models"
	"todo-service/internal/validation"
)

const (
	todoKeyPrefix   = "todo:"
	listKeyPrefix   = "todos:"
	agendaKeyPrefix = "agenda:"
)

// CachedTodoService serves reads from a cache in front of another
// TodoService. Cache failures are logged and the call falls through to the
// wrapped service, so a request never fails because of the cache.
//
// Every invalidation bumps version. A read stores what it loaded only if no
// invalidation ran while it was loading. The check and the store happen
// under a read lock so a bump cannot fall between them.
type CachedTodoService struct {
	todoService TodoService
	cache       cache.Cache
	todoTTL     time.Duration
	listTTL     time.Duration

	mu      sync.RWMutex
	version uint64
}

func NewCachedTodoService(todoService TodoService, cacheInstance cache.Cache, todoTTL, listTTL time.Duration) *CachedTodoService {
	return &CachedTodoService{
		todoService: todoService,
		cache:       cacheInstance,
		todoTTL:     todoTTL,
		listTTL:     listTTL,
	}
}

func todoKey(id int64) string {
	return fmt.Sprintf("%s%d", todoKeyPrefix, id)
}

func listKey(filter models.TodoFilter) string {
	return listKeyPrefix + strings.Join([]string{filter.Status, filter.Priority, filter.Search, filter.Category}, "|")
}

func agendaKey(date string) string {
	return agendaKeyPrefix + date
}

func (s *CachedTodoService) lookup(ctx context.Context, key string, dest interface{}) bool {
	err := s.cache.Get(ctx, key, dest)
	if err == nil {
		return true
	}
	if !errors.Is(err, cache.ErrCacheMiss) && !errors.Is(err, cache.ErrCacheDown) {
		log.Printf("cache get %s failed: %v", key, err)
	}
	return false
}

func (s *CachedTodoService) store(ctx context.Context, version uint64, key string, value interface{}, ttl time.Duration) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.version != version {
		return
	}
	if err := s.cache.Set(ctx, key, value, ttl); err != nil && !errors.Is(err, cache.ErrCacheDown) {
		log.Printf("cache set %s failed: %v", key, err)
	}
}

func (s *CachedTodoService) currentVersion() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// invalidate drops every entry a write to id could have made stale.
func (s *CachedTodoService) invalidate(ctx context.Context, id int64) {
	s.mu.Lock()
	s.version++
	s.mu.Unlock()

	if err := s.cache.Delete(ctx, todoKey(id)); err != nil && !errors.Is(err, cache.ErrCacheDown) {
		log.Printf("cache delete %s failed: %v", todoKey(id), err)
	}
	for _, pattern := range []string{listKeyPrefix + "*", agendaKeyPrefix + "*"} {
		if err := s.cache.DeletePattern(ctx, pattern); err != nil && !errors.Is(err, cache.ErrCacheDown) {
			log.Printf("cache delete pattern %s failed: %v", pattern, err)
		}
	}
}

func (s *CachedTodoService) ListTodos(ctx context.Context, filter models.TodoFilter) ([]models.Todo, error) {
	key := listKey(filter)

	var cached []models.Todo
	if s.lookup(ctx, key, &cached) && cached != nil {
		return cached, nil
	}

	version := s.currentVersion()
	todos, err := s.todoService.ListTodos(ctx, filter)
	if err != nil {
		return nil, err
	}

	s.store(ctx, version, key, todos, s.listTTL)
	return todos, nil
}

func (s *CachedTodoService) GetTodo(ctx context.Context, id int64) (*models.Todo, error) {
	var cached models.Todo
	if s.lookup(ctx, todoKey(id), &cached) {
		return &cached, nil
	}

	version := s.currentVersion()
	todo, err := s.todoService.GetTodo(ctx, id)
	if err != nil {
		return nil, err
	}

	s.store(ctx, version, todoKey(id), todo, s.todoTTL)
	return todo, nil
}

func (s *CachedTodoService) GetAgenda(ctx context.Context, date string) ([]models.Todo, error) {
	dueDate, err := validation.ParseDueDate(date)
	if err != nil {
		return nil, err
	}
	key := agendaKey(dueDate)

	var cached []models.Todo
	if s.lookup(ctx, key, &cached) && cached != nil {
		return cached, nil
	}

	version := s.currentVersion()
	todos, err := s.todoService.GetAgenda(ctx, dueDate)
	if err != nil {
		return nil, err
	}

	s.store(ctx, version, key, todos, s.listTTL)
	return todos, nil
}

func (s *CachedTodoService) CreateTodo(ctx context.Context, input CreateTodoInput) error {
	if err := s.todoService.CreateTodo(ctx, input); err != nil {
		return err
	}

	s.invalidate(ctx, *input.ID)
	return nil
}

func (s *CachedTodoService) UpdateTodo(ctx context.Context, id int64, input UpdateTodoInput) (ChangedField, error) {
	changed, err := s.todoService.UpdateTodo(ctx, id, input)
	if err != nil {
		return changed, err
	}

	s.invalidate(ctx, id)
	return changed, nil
}

func (s *CachedTodoService) DeleteTodo(ctx context.Context, id int64) error {
	if err := s.todoService.DeleteTodo(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx, id)
	return nil
}

func (s *CachedTodoService) GetCacheStats() map[string]interface{} {
	return s.cache.Stats()
}
