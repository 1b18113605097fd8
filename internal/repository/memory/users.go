package memory

import (
	"context"
	"sort"

	"todo-core/internal/apperr"
	"todo-core/internal/model"
)

// UserRepository is the in-memory user store.
type UserRepository struct {
	s *Store
}

func (r *UserRepository) Create(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.users[user.ID]; exists {
		return apperr.Duplicate("user id already exists")
	}
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return apperr.Duplicate("email already registered")
		}
		if user.ExternalID != nil && u.ExternalID != nil && *u.ExternalID == *user.ExternalID {
			return apperr.Duplicate("external identity already linked")
		}
	}
	r.s.users[user.ID] = cloneUser(*user)
	return nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	out := cloneUser(u)
	return &out, nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*model.User, error) {
	return r.find(func(u model.User) bool { return u.Email == email })
}

func (r *UserRepository) FindByExternalID(_ context.Context, externalID string) (*model.User, error) {
	return r.find(func(u model.User) bool { return u.ExternalID != nil && *u.ExternalID == externalID })
}

func (r *UserRepository) find(match func(model.User) bool) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if match(u) {
			out := cloneUser(u)
			return &out, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (r *UserRepository) Update(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.users[user.ID]
	if !ok {
		return apperr.ErrNotFound
	}
	if user.ExternalID != nil {
		for id, u := range r.s.users {
			if id != user.ID && u.ExternalID != nil && *u.ExternalID == *user.ExternalID {
				return apperr.Duplicate("external identity already linked")
			}
		}
	}
	updated := cloneUser(*user)
	updated.Email = current.Email
	updated.CreatedAt = current.CreatedAt
	r.s.users[user.ID] = updated
	return nil
}

func (r *UserRepository) ListAll(_ context.Context) ([]model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	users := make([]model.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		users = append(users, cloneUser(u))
	}
	sort.Slice(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.Before(users[j].CreatedAt)
		}
		return users[i].ID < users[j].ID
	})
	return users, nil
}

func (r *UserRepository) Delete(_ context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return false, nil
	}
	for tid, e := range r.s.todos {
		if e.value.UserID == id {
			delete(r.s.todos, tid)
		}
	}
	for cid, e := range r.s.categories {
		if e.value.UserID == id {
			delete(r.s.categories, cid)
		}
	}
	delete(r.s.users, id)
	return true, nil
}

func (r *UserRepository) DeleteAll(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	removed := int64(len(r.s.users))
	r.s.users = make(map[string]model.User)
	r.s.categories = make(map[string]entry[model.Category])
	r.s.todos = make(map[string]entry[model.Todo])
	return removed, nil
}
