package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/wpmigrate/internal/model"
	appErr "github.com/xxxsen/wpmigrate/internal/pkg/errors"
	"github.com/xxxsen/wpmigrate/internal/pkg/jsonfile"
	"github.com/xxxsen/wpmigrate/internal/sanitize"
	"github.com/xxxsen/wpmigrate/internal/wordpress"
)

type MigrateOptions struct {
	ExportDir      string
	IDMappingsPath string
	// EmailDomain completes placeholder addresses for users without email.
	EmailDomain string
	// FallbackAuthor assigns the default author to content whose author was
	// not mapped, instead of skipping it.
	FallbackAuthor bool
	// Strict fails the run when any reference had to be omitted.
	Strict bool
}

// MigrateService imports the JSON export into the database in seven phases.
// Each phase records its id mappings on the session for the later ones.
type MigrateService struct {
	users     UserStore
	media     MediaStore
	posts     PostStore
	pages     PageStore
	comments  CommentStore
	taxonomy  *TaxonomyService
	sanitizer sanitize.Sanitizer
	opts      MigrateOptions
	now       func() time.Time
}

func NewMigrateService(users UserStore, media MediaStore, posts PostStore, pages PageStore, comments CommentStore,
	taxonomy *TaxonomyService, sanitizer sanitize.Sanitizer, opts MigrateOptions) *MigrateService {
	if sanitizer == nil {
		sanitizer = sanitize.Regex{}
	}
	if opts.EmailDomain == "" {
		opts.EmailDomain = "localhost"
	}
	return &MigrateService{
		users:     users,
		media:     media,
		posts:     posts,
		pages:     pages,
		comments:  comments,
		taxonomy:  taxonomy,
		sanitizer: sanitizer,
		opts:      opts,
		now:       time.Now,
	}
}

// SourceData is the decoded export, one slice per entity kind.
type SourceData struct {
	Users      []wordpress.User
	Categories []wordpress.Category
	Tags       []wordpress.Tag
	Media      []wordpress.Media
	Posts      []wordpress.Post
	Pages      []wordpress.Page
	Comments   []wordpress.Comment
}

func loadExport[T any](ctx context.Context, dir, name string) ([]T, error) {
	var items []T
	ok, err := jsonfile.Read(filepath.Join(dir, name), &items)
	if err != nil {
		return nil, err
	}
	if !ok {
		logutil.GetLogger(ctx).Warn("export file not found, skipping", zap.String("file", name))
	}
	return items, nil
}

func LoadSourceData(ctx context.Context, dir string) (*SourceData, error) {
	var (
		data = &SourceData{}
		err  error
	)
	if data.Users, err = loadExport[wordpress.User](ctx, dir, "users.json"); err != nil {
		return nil, err
	}
	if data.Categories, err = loadExport[wordpress.Category](ctx, dir, "categories.json"); err != nil {
		return nil, err
	}
	if data.Tags, err = loadExport[wordpress.Tag](ctx, dir, "tags.json"); err != nil {
		return nil, err
	}
	if data.Media, err = loadExport[wordpress.Media](ctx, dir, "media.json"); err != nil {
		return nil, err
	}
	if data.Posts, err = loadExport[wordpress.Post](ctx, dir, "posts.json"); err != nil {
		return nil, err
	}
	if data.Pages, err = loadExport[wordpress.Page](ctx, dir, "pages.json"); err != nil {
		return nil, err
	}
	if data.Comments, err = loadExport[wordpress.Comment](ctx, dir, "comments.json"); err != nil {
		return nil, err
	}
	return data, nil
}

// Run loads the export directory and imports it.
func (s *MigrateService) Run(ctx context.Context) (*Report, error) {
	data, err := LoadSourceData(ctx, s.opts.ExportDir)
	if err != nil {
		return nil, err
	}
	return s.Import(ctx, data)
}

// Import runs all phases in dependency order. The id mapping file is only
// written once every phase has completed.
func (s *MigrateService) Import(ctx context.Context, data *SourceData) (*Report, error) {
	start := s.now()
	sess := NewSession()
	phases := []func() error{
		func() error { return s.ImportUsers(ctx, sess, data.Users) },
		func() error { return s.ImportCategories(ctx, sess, data.Categories) },
		func() error { return s.ImportTags(ctx, sess, data.Tags) },
		func() error { return s.ImportMedia(ctx, sess, data.Media) },
		func() error { return s.ImportPosts(ctx, sess, data.Posts) },
		func() error { return s.ImportPages(ctx, sess, data.Pages) },
		func() error { return s.ImportComments(ctx, sess, data.Comments) },
	}
	for _, phase := range phases {
		if err := phase(); err != nil {
			return sess.Report, err
		}
	}
	if s.opts.IDMappingsPath != "" {
		if err := jsonfile.Write(s.opts.IDMappingsPath, sess.IDs.Export()); err != nil {
			return sess.Report, fmt.Errorf("save id mappings: %w", err)
		}
		logutil.GetLogger(ctx).Info("saved id mappings", zap.String("path", s.opts.IDMappingsPath))
	}
	sess.Report.Duration = s.now().Sub(start)
	s.logSummary(ctx, sess.Report)
	if s.opts.Strict && sess.Report.TotalOmitted() > 0 {
		return sess.Report, fmt.Errorf("%d references omitted: %w", sess.Report.TotalOmitted(), appErr.ErrIncomplete)
	}
	return sess.Report, nil
}

func (s *MigrateService) logSummary(ctx context.Context, report *Report) {
	logger := logutil.GetLogger(ctx)
	for _, kind := range AllKinds {
		st := report.Phase(kind)
		logger.Info("import summary",
			zap.String("kind", string(kind)), zap.Int("total", st.Total), zap.Int("created", st.Created),
			zap.Int("existing", st.Existing), zap.Int("skipped", st.Skipped), zap.Int("failed", st.Failed))
	}
	for _, key := range report.OmittedKeys() {
		logger.Warn("references omitted", zap.String("link", key), zap.Int("count", report.Omitted[key]))
	}
	logger.Info("import complete", zap.Duration("duration", report.Duration))
}

func phaseHeader(ctx context.Context, kind EntityKind, total int) {
	index := 0
	for i, k := range AllKinds {
		if k == kind {
			index = i + 1
		}
	}
	logutil.GetLogger(ctx).Info(fmt.Sprintf("[%d/%d] importing %s", index, len(AllKinds), kind), zap.Int("count", total))
}

func (s *MigrateService) ImportUsers(ctx context.Context, sess *Session, users []wordpress.User) error {
	phaseHeader(ctx, KindUsers, len(users))
	stats := sess.Report.Phase(KindUsers)
	logger := logutil.GetLogger(ctx)
	for _, wu := range users {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Total++
		id, created, err := s.importUser(ctx, wu)
		if err != nil {
			stats.Failed++
			logger.Error("user import failed", zap.Int64("wp_id", wu.ID), zap.String("name", wu.Name), zap.Error(err))
			continue
		}
		sess.IDs.Set(KindUsers, wu.ID, id)
		if sess.DefaultAuthorID == "" {
			sess.DefaultAuthorID = id
		}
		if created {
			stats.Created++
			logger.Info("user imported", zap.Int64("wp_id", wu.ID), zap.String("id", id))
		} else {
			stats.Existing++
			logger.Info("user exists", zap.Int64("wp_id", wu.ID), zap.String("id", id))
		}
	}
	return nil
}

func (s *MigrateService) importUser(ctx context.Context, wu wordpress.User) (string, bool, error) {
	email := strings.ToLower(strings.TrimSpace(wu.Email))
	if email == "" {
		email = fmt.Sprintf("user%d@%s", wu.ID, s.opts.EmailDomain)
	}
	existing, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return existing.ID, false, nil
	}
	if !errors.Is(err, appErr.ErrNotFound) {
		return "", false, err
	}
	role := model.UserRoleAuthor
	if wu.ID == 1 {
		role = model.UserRoleAdmin
	}
	name := strings.TrimSpace(wu.Name)
	if name == "" {
		name = wu.Slug
	}
	now := s.now()
	user := &model.User{
		ID:        newID(),
		Email:     email,
		Name:      name,
		Bio:       strings.TrimSpace(wu.Description),
		Role:      role,
		Image:     wu.AvatarURLs["96"],
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return "", false, err
	}
	return user.ID, true, nil
}

func (s *MigrateService) ImportCategories(ctx context.Context, sess *Session, categories []wordpress.Category) error {
	phaseHeader(ctx, KindCategories, len(categories))
	stats := sess.Report.Phase(KindCategories)
	logger := logutil.GetLogger(ctx)
	for _, wc := range categories {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Total++
		id, created, err := s.taxonomy.EnsureCategory(ctx, wc.Name, wc.Slug, sanitize.StripTags(wc.Description))
		if errors.Is(err, appErr.ErrSkipped) {
			stats.Skipped++
			sess.Exclude(KindCategories, wc.ID)
			logger.Info("category skipped", zap.Int64("wp_id", wc.ID), zap.String("slug", wc.Slug))
			continue
		}
		if err != nil {
			stats.Failed++
			logger.Error("category import failed", zap.Int64("wp_id", wc.ID), zap.String("slug", wc.Slug), zap.Error(err))
			continue
		}
		sess.IDs.Set(KindCategories, wc.ID, id)
		countOutcome(stats, created)
		logger.Info("category imported", zap.Int64("wp_id", wc.ID), zap.String("slug", wc.Slug), zap.Bool("created", created))
	}
	return nil
}

func (s *MigrateService) ImportTags(ctx context.Context, sess *Session, tags []wordpress.Tag) error {
	phaseHeader(ctx, KindTags, len(tags))
	stats := sess.Report.Phase(KindTags)
	logger := logutil.GetLogger(ctx)
	for _, wt := range tags {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Total++
		id, created, err := s.taxonomy.EnsureTag(ctx, wt.Name, wt.Slug)
		if err != nil {
			stats.Failed++
			logger.Error("tag import failed", zap.Int64("wp_id", wt.ID), zap.String("slug", wt.Slug), zap.Error(err))
			continue
		}
		sess.IDs.Set(KindTags, wt.ID, id)
		countOutcome(stats, created)
		logger.Info("tag imported", zap.Int64("wp_id", wt.ID), zap.String("slug", wt.Slug), zap.Bool("created", created))
	}
	return nil
}

func countOutcome(stats *PhaseStats, created bool) {
	if created {
		stats.Created++
		return
	}
	stats.Existing++
}

func (s *MigrateService) ImportMedia(ctx context.Context, sess *Session, media []wordpress.Media) error {
	phaseHeader(ctx, KindMedia, len(media))
	stats := sess.Report.Phase(KindMedia)
	logger := logutil.GetLogger(ctx)
	for _, wm := range media {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Total++
		id, created, err := s.importMedia(ctx, wm)
		if err != nil {
			stats.Failed++
			logger.Error("media import failed", zap.Int64("wp_id", wm.ID), zap.String("source_url", wm.SourceURL), zap.Error(err))
			continue
		}
		sess.IDs.Set(KindMedia, wm.ID, id)
		countOutcome(stats, created)
		logger.Info("media imported", zap.Int64("wp_id", wm.ID), zap.String("id", id), zap.Bool("created", created))
	}
	return nil
}

func (s *MigrateService) importMedia(ctx context.Context, wm wordpress.Media) (string, bool, error) {
	if wm.ID > 0 {
		existing, err := s.media.GetByWordpressID(ctx, wm.ID)
		if err == nil {
			return existing.ID, false, nil
		}
		if !errors.Is(err, appErr.ErrNotFound) {
			return "", false, err
		}
	}
	date, err := ParseSourceDate(wm.Date)
	if err != nil {
		return "", false, err
	}
	mediaURL, err := MediaURL(wm.SourceURL, date)
	if err != nil {
		return "", false, err
	}
	filename := FileNameFromURL(wm.SourceURL)
	original := sanitize.StripTags(wm.Title.Rendered)
	if original == "" {
		original = filename
	}
	media := &model.Media{
		ID:           newID(),
		Filename:     filename,
		OriginalName: original,
		URL:          mediaURL,
		ThumbnailURL: mediaURL,
		MimeType:     wm.MimeType,
		Type:         model.MediaTypeFromMIME(wm.MimeType),
		AltText:      strings.TrimSpace(wm.AltText),
		Caption:      s.sanitizer.Clean(wm.Caption.Rendered),
		Description:  s.sanitizer.Clean(wm.Description.Rendered),
		WordpressID:  wm.ID,
		CreatedAt:    date,
	}
	if d := wm.MediaDetails; d != nil {
		media.FileSize = d.FileSize
		media.Width = positive(d.Width)
		media.Height = positive(d.Height)
	}
	if err := s.media.Create(ctx, media); err != nil {
		return "", false, err
	}
	return media.ID, true, nil
}

func positive(v int) *int {
	if v <= 0 {
		return nil
	}
	return &v
}

// resolveAuthor maps a source author. ok is false when the item must be
// skipped; every unmapped author is reported as an omitted link.
func (s *MigrateService) resolveAuthor(ctx context.Context, sess *Session, link string, itemID, wpAuthor int64) (string, bool) {
	if id, ok := sess.IDs.Get(KindUsers, wpAuthor); ok {
		return id, true
	}
	sess.Report.Omit(link)
	logger := logutil.GetLogger(ctx).With(zap.Int64("wp_id", itemID), zap.Int64("wp_author", wpAuthor))
	if s.opts.FallbackAuthor && sess.DefaultAuthorID != "" {
		logger.Warn("author not found, using default author", zap.String("link", link))
		return sess.DefaultAuthorID, true
	}
	logger.Warn("author not found, skipping", zap.String("link", link))
	return "", false
}

func seoFrom(head *wordpress.SEOHead) model.SEO {
	if head == nil {
		return model.SEO{}
	}
	return model.SEO{
		MetaTitle:       strings.TrimSpace(head.Title),
		MetaDescription: strings.TrimSpace(head.Description),
		MetaKeywords:    strings.TrimSpace(head.Keywords),
	}
}

func (s *MigrateService) ImportPosts(ctx context.Context, sess *Session, posts []wordpress.Post) error {
	phaseHeader(ctx, KindPosts, len(posts))
	stats := sess.Report.Phase(KindPosts)
	logger := logutil.GetLogger(ctx)
	for _, wp := range posts {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Total++
		existing, err := s.posts.GetBySlug(ctx, wp.Slug)
		if err == nil {
			sess.IDs.Set(KindPosts, wp.ID, existing.ID)
			stats.Existing++
			logger.Info("post exists", zap.Int64("wp_id", wp.ID), zap.String("slug", wp.Slug))
			continue
		}
		if !errors.Is(err, appErr.ErrNotFound) {
			stats.Failed++
			logger.Error("post import failed", zap.Int64("wp_id", wp.ID), zap.String("slug", wp.Slug), zap.Error(err))
			continue
		}
		authorID, ok := s.resolveAuthor(ctx, sess, "post.author", wp.ID, wp.Author)
		if !ok {
			stats.Skipped++
			continue
		}
		post, categoryIDs, tagIDs, err := s.buildPost(ctx, sess, wp, authorID)
		if err == nil {
			err = s.posts.Create(ctx, post, categoryIDs, tagIDs)
		}
		if err != nil {
			stats.Failed++
			logger.Error("post import failed", zap.Int64("wp_id", wp.ID), zap.String("slug", wp.Slug), zap.Error(err))
			continue
		}
		sess.IDs.Set(KindPosts, wp.ID, post.ID)
		stats.Created++
		logger.Info("post imported", zap.Int64("wp_id", wp.ID), zap.String("slug", wp.Slug), zap.String("status", string(post.Status)))
	}
	return nil
}

func (s *MigrateService) buildPost(ctx context.Context, sess *Session, wp wordpress.Post, authorID string) (*model.Post, []string, []string, error) {
	date, err := ParseSourceDate(wp.Date)
	if err != nil {
		return nil, nil, nil, err
	}
	status := MapStatus(wp.Status)
	post := &model.Post{
		ID:          newID(),
		Title:       sanitize.StripTags(wp.Title.Rendered),
		Slug:        wp.Slug,
		Excerpt:     s.sanitizer.Clean(wp.Excerpt.Rendered),
		Content:     s.sanitizer.Clean(wp.Content.Rendered),
		Status:      status,
		AuthorID:    authorID,
		SEO:         seoFrom(wp.SEO),
		PublishedAt: publishedAt(status, date),
		CreatedAt:   date,
		UpdatedAt:   s.now(),
	}
	if wp.FeaturedMedia > 0 {
		if id, ok := sess.IDs.Get(KindMedia, wp.FeaturedMedia); ok {
			post.FeaturedImageID = id
		} else {
			sess.Report.Omit("post.featured_media")
			logutil.GetLogger(ctx).Warn("featured media not found", zap.Int64("wp_id", wp.ID), zap.Int64("wp_media", wp.FeaturedMedia))
		}
	}
	categoryIDs := s.mapTerms(ctx, sess, KindCategories, "post.category", wp.ID, wp.Categories)
	tagIDs := s.mapTerms(ctx, sess, KindTags, "post.tag", wp.ID, wp.Tags)
	return post, categoryIDs, tagIDs, nil
}

func (s *MigrateService) mapTerms(ctx context.Context, sess *Session, kind EntityKind, link string, itemID int64, wpIDs []int64) []string {
	out := make([]string, 0, len(wpIDs))
	for _, wpID := range wpIDs {
		if id, ok := sess.IDs.Get(kind, wpID); ok {
			out = append(out, id)
			continue
		}
		if sess.IsExcluded(kind, wpID) {
			continue
		}
		sess.Report.Omit(link)
		logutil.GetLogger(ctx).Warn("term not found", zap.String("link", link), zap.Int64("wp_id", itemID), zap.Int64("wp_term", wpID))
	}
	return out
}

// ImportPages creates every page without a parent, then links parents once
// all page ids are known.
func (s *MigrateService) ImportPages(ctx context.Context, sess *Session, pages []wordpress.Page) error {
	phaseHeader(ctx, KindPages, len(pages))
	stats := sess.Report.Phase(KindPages)
	logger := logutil.GetLogger(ctx)
	currentParent := map[int64]string{}
	for _, wp := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Total++
		existing, err := s.pages.GetBySlug(ctx, wp.Slug)
		if err == nil {
			sess.IDs.Set(KindPages, wp.ID, existing.ID)
			currentParent[wp.ID] = existing.ParentID
			stats.Existing++
			logger.Info("page exists", zap.Int64("wp_id", wp.ID), zap.String("slug", wp.Slug))
			continue
		}
		if !errors.Is(err, appErr.ErrNotFound) {
			stats.Failed++
			logger.Error("page import failed", zap.Int64("wp_id", wp.ID), zap.String("slug", wp.Slug), zap.Error(err))
			continue
		}
		authorID, ok := s.resolveAuthor(ctx, sess, "page.author", wp.ID, wp.Author)
		if !ok {
			stats.Skipped++
			continue
		}
		page, err := s.buildPage(wp, authorID)
		if err == nil {
			err = s.pages.Create(ctx, page)
		}
		if err != nil {
			stats.Failed++
			logger.Error("page import failed", zap.Int64("wp_id", wp.ID), zap.String("slug", wp.Slug), zap.Error(err))
			continue
		}
		sess.IDs.Set(KindPages, wp.ID, page.ID)
		stats.Created++
		logger.Info("page imported", zap.Int64("wp_id", wp.ID), zap.String("slug", wp.Slug))
	}

	for _, wp := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		if wp.Parent == 0 {
			continue
		}
		pageID, ok := sess.IDs.Get(KindPages, wp.ID)
		if !ok {
			continue
		}
		parentID, ok := sess.IDs.Get(KindPages, wp.Parent)
		if !ok {
			sess.Report.Omit("page.parent")
			logger.Warn("parent page not found, link omitted", zap.Int64("wp_id", wp.ID), zap.Int64("wp_parent", wp.Parent))
			continue
		}
		if currentParent[wp.ID] == parentID {
			continue
		}
		if err := s.pages.UpdateParent(ctx, pageID, parentID); err != nil {
			logger.Error("page hierarchy update failed", zap.Int64("wp_id", wp.ID), zap.Int64("wp_parent", wp.Parent), zap.Error(err))
			continue
		}
		stats.Linked++
		logger.Info("page hierarchy updated", zap.Int64("wp_id", wp.ID), zap.Int64("wp_parent", wp.Parent))
	}
	return nil
}

func (s *MigrateService) buildPage(wp wordpress.Page, authorID string) (*model.Page, error) {
	date, err := ParseSourceDate(wp.Date)
	if err != nil {
		return nil, err
	}
	status := MapStatus(wp.Status)
	return &model.Page{
		ID:          newID(),
		Title:       sanitize.StripTags(wp.Title.Rendered),
		Slug:        wp.Slug,
		Content:     s.sanitizer.Clean(wp.Content.Rendered),
		Status:      status,
		AuthorID:    authorID,
		Order:       wp.MenuOrder,
		SEO:         seoFrom(wp.SEO),
		PublishedAt: publishedAt(status, date),
		CreatedAt:   date,
		UpdatedAt:   s.now(),
	}, nil
}

// ImportComments uses the same two passes as pages, since a reply can be
// exported before the comment it answers.
func (s *MigrateService) ImportComments(ctx context.Context, sess *Session, comments []wordpress.Comment) error {
	phaseHeader(ctx, KindComments, len(comments))
	stats := sess.Report.Phase(KindComments)
	logger := logutil.GetLogger(ctx)
	currentParent := map[int64]string{}
	for _, wc := range comments {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Total++
		existing, err := s.comments.GetByWordpressID(ctx, wc.ID)
		if err == nil {
			sess.IDs.Set(KindComments, wc.ID, existing.ID)
			currentParent[wc.ID] = existing.ParentID
			stats.Existing++
			continue
		}
		if !errors.Is(err, appErr.ErrNotFound) {
			stats.Failed++
			logger.Error("comment import failed", zap.Int64("wp_id", wc.ID), zap.Error(err))
			continue
		}
		postID, ok := sess.IDs.Get(KindPosts, wc.Post)
		if !ok {
			stats.Skipped++
			sess.Report.Omit("comment.post")
			logger.Warn("post not found, skipping comment", zap.Int64("wp_id", wc.ID), zap.Int64("wp_post", wc.Post))
			continue
		}
		comment, err := s.buildComment(ctx, sess, wc, postID)
		if err == nil {
			err = s.comments.Create(ctx, comment)
		}
		if err != nil {
			stats.Failed++
			logger.Error("comment import failed", zap.Int64("wp_id", wc.ID), zap.Int64("wp_post", wc.Post), zap.Error(err))
			continue
		}
		sess.IDs.Set(KindComments, wc.ID, comment.ID)
		stats.Created++
		logger.Info("comment imported", zap.Int64("wp_id", wc.ID), zap.Int64("wp_post", wc.Post))
	}

	for _, wc := range comments {
		if err := ctx.Err(); err != nil {
			return err
		}
		if wc.Parent == 0 {
			continue
		}
		commentID, ok := sess.IDs.Get(KindComments, wc.ID)
		if !ok {
			continue
		}
		parentID, ok := sess.IDs.Get(KindComments, wc.Parent)
		if !ok {
			sess.Report.Omit("comment.parent")
			logger.Warn("parent comment not found, link omitted", zap.Int64("wp_id", wc.ID), zap.Int64("wp_parent", wc.Parent))
			continue
		}
		if currentParent[wc.ID] == parentID {
			continue
		}
		if err := s.comments.UpdateParent(ctx, commentID, parentID); err != nil {
			logger.Error("comment hierarchy update failed", zap.Int64("wp_id", wc.ID), zap.Int64("wp_parent", wc.Parent), zap.Error(err))
			continue
		}
		stats.Linked++
	}
	return nil
}

const anonymousAuthor = "Anonymous"

// buildComment fills exactly one identification mode: a mapped user, or a
// free-text name and email.
func (s *MigrateService) buildComment(ctx context.Context, sess *Session, wc wordpress.Comment, postID string) (*model.Comment, error) {
	date, err := ParseSourceDate(wc.Date)
	if err != nil {
		return nil, err
	}
	comment := &model.Comment{
		ID:          newID(),
		Content:     s.sanitizer.Clean(wc.Content.Rendered),
		PostID:      postID,
		IsApproved:  wc.Status == "approved",
		WordpressID: wc.ID,
		CreatedAt:   date,
	}
	if wc.Author != 0 {
		if id, ok := sess.IDs.Get(KindUsers, wc.Author); ok {
			comment.AuthorID = id
			return comment, nil
		}
		sess.Report.Omit("comment.author")
		logutil.GetLogger(ctx).Warn("comment author not found, keeping name only",
			zap.Int64("wp_id", wc.ID), zap.Int64("wp_author", wc.Author))
	}
	comment.AuthorName = strings.TrimSpace(wc.AuthorName)
	if comment.AuthorName == "" {
		comment.AuthorName = anonymousAuthor
	}
	comment.AuthorEmail = strings.TrimSpace(wc.AuthorEmail)
	return comment, nil
}
