package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/wpmigrate/internal/model"
	appErr "github.com/xxxsen/wpmigrate/internal/pkg/errors"
)

// AuthorService resolves the author used when content has no mapped author
// of its own: the earliest created user, else a placeholder created once.
type AuthorService struct {
	users UserStore
	email string
	name  string
	now   func() time.Time

	mu     sync.Mutex
	author *model.User
}

func NewAuthorService(users UserStore, email, name string) *AuthorService {
	return &AuthorService{users: users, email: email, name: name, now: time.Now}
}

func (s *AuthorService) DefaultAuthor(ctx context.Context) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.author != nil {
		return s.author, nil
	}
	user, err := s.users.GetEarliest(ctx)
	if err == nil {
		logutil.GetLogger(ctx).Info("using existing author", zap.String("email", user.Email), zap.String("name", user.Name))
		s.author = user
		return user, nil
	}
	if !errors.Is(err, appErr.ErrNotFound) {
		return nil, err
	}
	now := s.now()
	user = &model.User{
		ID:        newID(),
		Email:     s.email,
		Name:      s.name,
		Role:      model.UserRoleAuthor,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if !errors.Is(err, appErr.ErrConflict) {
			return nil, err
		}
		if user, err = s.users.GetByEmail(ctx, s.email); err != nil {
			return nil, err
		}
	} else {
		logutil.GetLogger(ctx).Info("created placeholder author", zap.String("email", user.Email))
	}
	s.author = user
	return user, nil
}
