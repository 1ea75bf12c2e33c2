package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/golekaab-server/internal/model"
)

var (
	_ model.UserStore         = (*Store)(nil)
	_ model.RefreshTokenStore = (*Store)(nil)
)

// Store keeps users and their refresh tokens in process memory.
// Records are copied in and out so callers never share state with the store.
type Store struct {
	mu      sync.RWMutex
	users   map[uuid.UUID]model.User
	byEmail map[string]uuid.UUID
	now     func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:   make(map[uuid.UUID]model.User),
		byEmail: make(map[string]uuid.UUID),
		now:     time.Now,
	}
}

func (s *Store) GetByEmail(ctx context.Context, email string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[model.NormalizeEmail(email)]
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	return clone(s.users[id]), nil
}

func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	return clone(u), nil
}

func (s *Store) Create(ctx context.Context, user model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := model.NormalizeEmail(user.Email)
	if _, ok := s.byEmail[email]; ok {
		return model.User{}, model.ErrEmailTaken
	}

	user.Email = email
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = s.now()
		user.UpdatedAt = user.CreatedAt
	}

	s.users[user.ID] = clone(user)
	s.byEmail[email] = user.ID

	return clone(user), nil
}

func (s *Store) ListPendingTwoFactor(ctx context.Context) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.User
	for _, u := range s.users {
		if u.TwoFactor.Pending {
			out = append(out, clone(u))
		}
	}
	return out, nil
}

func (s *Store) GetPendingByLinkID(ctx context.Context, linkID string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.TwoFactor.Pending && u.TwoFactor.LinkID == linkID {
			return clone(u), nil
		}
	}
	return model.User{}, model.ErrNotFound
}

func (s *Store) SetTwoFactor(ctx context.Context, id uuid.UUID, twoFactor model.TwoFactor) error {
	return s.update(id, func(u *model.User) bool {
		u.TwoFactor = cloneTwoFactor(twoFactor)
		return true
	})
}

func (s *Store) ClearTwoFactor(ctx context.Context, id uuid.UUID, tokenHash string) (bool, error) {
	cleared := false
	err := s.update(id, func(u *model.User) bool {
		if !u.TwoFactor.Pending || u.TwoFactor.TokenHash != tokenHash {
			return false
		}
		u.TwoFactor = model.TwoFactor{}
		cleared = true
		return true
	})
	return cleared, err
}

func (s *Store) SetRole(ctx context.Context, id uuid.UUID, role model.Role) error {
	return s.update(id, func(u *model.User) bool {
		u.Role = role
		return true
	})
}

func (s *Store) SetDisabled(ctx context.Context, id uuid.UUID, disabled bool) error {
	return s.update(id, func(u *model.User) bool {
		u.Disabled = disabled
		return true
	})
}

func (s *Store) UpdateProfile(ctx context.Context, id uuid.UUID, update model.ProfileUpdate) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	if update.Name != nil {
		u.Name = *update.Name
	}
	if update.Locale != nil {
		u.Locale = *update.Locale
	}
	u.UpdatedAt = s.now()
	s.users[id] = u

	return clone(u), nil
}

func (s *Store) Append(ctx context.Context, userID uuid.UUID, token model.RefreshToken) error {
	return s.update(userID, func(u *model.User) bool {
		u.RefreshTokens = append(u.RefreshTokens, cloneRefreshToken(token))
		return true
	})
}

func (s *Store) GetByJTI(ctx context.Context, userID uuid.UUID, jti string) (model.RefreshToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return model.RefreshToken{}, model.ErrNotFound
	}
	for _, rt := range u.RefreshTokens {
		if rt.JTI == jti {
			return cloneRefreshToken(rt), nil
		}
	}
	return model.RefreshToken{}, model.ErrNotFound
}

func (s *Store) Revoke(ctx context.Context, userID uuid.UUID, jti string) (bool, error) {
	revoked := false
	err := s.update(userID, func(u *model.User) bool {
		for i := range u.RefreshTokens {
			if u.RefreshTokens[i].JTI == jti && u.RefreshTokens[i].RevokedAt == nil {
				now := s.now()
				u.RefreshTokens[i].RevokedAt = &now
				revoked = true
				return true
			}
		}
		return false
	})
	return revoked, err
}

func (s *Store) RevokeAllByUser(ctx context.Context, userID uuid.UUID) error {
	return s.update(userID, func(u *model.User) bool {
		now := s.now()
		changed := false
		for i := range u.RefreshTokens {
			if u.RefreshTokens[i].RevokedAt == nil {
				u.RefreshTokens[i].RevokedAt = &now
				changed = true
			}
		}
		return changed
	})
}

// update applies fn to the stored user under the write lock. The record is
// only stamped as updated when fn reports a change.
func (s *Store) update(id uuid.UUID, fn func(u *model.User) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return model.ErrNotFound
	}
	if fn(&u) {
		u.UpdatedAt = s.now()
		s.users[id] = u
	}
	return nil
}

func clone(u model.User) model.User {
	u.TwoFactor = cloneTwoFactor(u.TwoFactor)
	if u.RefreshTokens != nil {
		tokens := make([]model.RefreshToken, len(u.RefreshTokens))
		for i, rt := range u.RefreshTokens {
			tokens[i] = cloneRefreshToken(rt)
		}
		u.RefreshTokens = tokens
	}
	return u
}

func cloneTwoFactor(t model.TwoFactor) model.TwoFactor {
	if t.ExpiresAt != nil {
		at := *t.ExpiresAt
		t.ExpiresAt = &at
	}
	return t
}

func cloneRefreshToken(rt model.RefreshToken) model.RefreshToken {
	rt.TokenHash = append([]byte(nil), rt.TokenHash...)
	if rt.RevokedAt != nil {
		at := *rt.RevokedAt
		rt.RevokedAt = &at
	}
	return rt
}
