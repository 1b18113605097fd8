package memory

import (
	"context"

	"todo-core/internal/apperr"
	"todo-core/internal/model"
)

// CategoryRepository is the in-memory category store.
type CategoryRepository struct {
	s *Store
}

var errDuplicateName = apperr.Duplicate("category name already exists")

func (r *CategoryRepository) Create(_ context.Context, category *model.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.nameTaken(category.UserID, category.Name, "") {
		return errDuplicateName
	}
	r.s.categories[category.ID] = entry[model.Category]{seq: r.s.next(), value: cloneCategory(*category)}
	return nil
}

func (r *CategoryRepository) SeedIfEmpty(_ context.Context, userID string, seeds []model.Category) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, e := range r.s.categories {
		if e.value.UserID == userID {
			return false, nil
		}
	}
	if len(seeds) == 0 {
		return false, nil
	}
	for _, c := range seeds {
		r.s.categories[c.ID] = entry[model.Category]{seq: r.s.next(), value: cloneCategory(c)}
	}
	return true, nil
}

func (r *CategoryRepository) ListByUser(_ context.Context, userID string) ([]model.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var entries []entry[model.Category]
	for _, e := range r.s.categories {
		if e.value.UserID == userID {
			e.value = cloneCategory(e.value)
			e.value.TodoCount = r.countTodos(userID, e.value.ID)
			entries = append(entries, e)
		}
	}
	return ordered(entries), nil
}

func (r *CategoryRepository) FindByID(_ context.Context, userID, id string) (*model.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, ok := r.s.categories[id]
	if !ok || e.value.UserID != userID {
		return nil, apperr.ErrNotFound
	}
	out := cloneCategory(e.value)
	out.TodoCount = r.countTodos(userID, id)
	return &out, nil
}

func (r *CategoryRepository) Update(_ context.Context, category *model.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.categories[category.ID]
	if !ok || e.value.UserID != category.UserID {
		return apperr.ErrNotFound
	}
	if r.nameTaken(category.UserID, category.Name, category.ID) {
		return errDuplicateName
	}
	updated := cloneCategory(*category)
	updated.CreatedAt = e.value.CreatedAt
	updated.TodoCount = 0
	e.value = updated
	r.s.categories[category.ID] = e
	return nil
}

func (r *CategoryRepository) Delete(_ context.Context, userID, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.categories[id]
	if !ok || e.value.UserID != userID {
		return false, nil
	}
	for tid, te := range r.s.todos {
		if te.value.UserID == userID && te.value.CategoryID != nil && *te.value.CategoryID == id {
			te.value.CategoryID = nil
			r.s.todos[tid] = te
		}
	}
	delete(r.s.categories, id)
	return true, nil
}

// nameTaken must be called with mu held.
func (r *CategoryRepository) nameTaken(userID, name, exceptID string) bool {
	for id, e := range r.s.categories {
		if id != exceptID && e.value.UserID == userID && e.value.Name == name {
			return true
		}
	}
	return false
}

// countTodos must be called with mu held.
func (r *CategoryRepository) countTodos(userID, categoryID string) int {
	n := 0
	for _, e := range r.s.todos {
		if e.value.UserID == userID && e.value.CategoryID != nil && *e.value.CategoryID == categoryID {
			n++
		}
	}
	return n
}
