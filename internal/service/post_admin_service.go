package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/wpmigrate/internal/model"
	appErr "github.com/xxxsen/wpmigrate/internal/pkg/errors"
	"github.com/xxxsen/wpmigrate/internal/pkg/password"
)

type PostCheck struct {
	Stats  model.PostStats `json:"stats"`
	Latest []model.Post    `json:"latest"`
}

type PublishResult struct {
	Before        model.PostStats `json:"before"`
	StatusUpdated int64           `json:"status_updated"`
	DateBackfills int64           `json:"date_backfills"`
}

// PostAdminService holds the operator tools run after an import.
type PostAdminService struct {
	posts PostAdminStore
	now   func() time.Time
}

func NewPostAdminService(posts PostAdminStore) *PostAdminService {
	return &PostAdminService{posts: posts, now: time.Now}
}

// Check counts posts by status and lists the ten most recent.
func (s *PostAdminService) Check(ctx context.Context) (*PostCheck, error) {
	stats, err := s.posts.Stats(ctx)
	if err != nil {
		return nil, err
	}
	check := &PostCheck{Stats: *stats}
	logger := logutil.GetLogger(ctx)
	logger.Info("posts in database",
		zap.Int64("total", stats.Total), zap.Int64("published", stats.Published),
		zap.Int64("draft", stats.Draft), zap.Int64("scheduled", stats.Scheduled))
	if stats.Total == 0 {
		logger.Info("no posts found, run the wordpress import first")
		return check, nil
	}
	if check.Latest, err = s.posts.ListLatest(ctx, 10); err != nil {
		return nil, err
	}
	for i, p := range check.Latest {
		logger.Info(fmt.Sprintf("%d. [%s] %s", i+1, p.Status, p.Title), zap.String("slug", p.Slug))
	}
	return check, nil
}

// PublishAll marks every post published, backfilling the publish date from
// the creation date where it is missing.
func (s *PostAdminService) PublishAll(ctx context.Context) (*PublishResult, error) {
	stats, err := s.posts.Stats(ctx)
	if err != nil {
		return nil, err
	}
	result := &PublishResult{Before: *stats}
	logger := logutil.GetLogger(ctx)
	if stats.Total == 0 {
		logger.Info("no posts in the database, run the wordpress import first")
		return result, nil
	}
	result.StatusUpdated, result.DateBackfills, err = s.posts.PublishAll(ctx, s.now())
	if err != nil {
		return nil, err
	}
	logger.Info("posts published",
		zap.Int64("status_updated", result.StatusUpdated), zap.Int64("date_backfills", result.DateBackfills))
	return result, nil
}

type AdminSeed struct {
	Email    string
	Name     string
	Password string
}

type AdminService struct {
	users UserStore
	now   func() time.Time
}

func NewAdminService(users UserStore) *AdminService {
	return &AdminService{users: users, now: time.Now}
}

// Seed creates the admin account unless a user with that email exists. An
// existing account is left untouched.
func (s *AdminService) Seed(ctx context.Context, seed AdminSeed) (*model.User, bool, error) {
	email := strings.ToLower(strings.TrimSpace(seed.Email))
	if email == "" || seed.Password == "" {
		return nil, false, fmt.Errorf("admin email and password are required: %w", appErr.ErrInvalid)
	}
	existing, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		logutil.GetLogger(ctx).Info("admin user exists", zap.String("email", email))
		return existing, false, nil
	}
	if !errors.Is(err, appErr.ErrNotFound) {
		return nil, false, err
	}
	hashed, err := password.Hash(seed.Password)
	if err != nil {
		return nil, false, err
	}
	name := seed.Name
	if name == "" {
		name = "Admin User"
	}
	now := s.now()
	user := &model.User{
		ID:             newID(),
		Email:          email,
		Name:           name,
		Bio:            "System Administrator",
		Role:           model.UserRoleAdmin,
		HashedPassword: hashed,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, false, err
	}
	logutil.GetLogger(ctx).Info("admin user created", zap.String("email", email))
	return user, true, nil
}
