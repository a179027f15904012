package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/civdef/volunteer-portal/internal/model"
)

// ContentRepo stores editable site text and banners.  Block bodies are
// HTML authored in the CMS and are sanitised with the UGC policy before
// they are written; banner text is stripped of all markup.
type ContentRepo struct {
	DB     *sql.DB
	html   *bluemonday.Policy
	strict *bluemonday.Policy
}

func NewContentRepo(db *sql.DB) *ContentRepo {
	return &ContentRepo{DB: db, html: bluemonday.UGCPolicy(), strict: bluemonday.StrictPolicy()}
}

// SanitizeHTML applies the block body policy.
func (r *ContentRepo) SanitizeHTML(s string) string { return r.html.Sanitize(s) }

// SanitizeText strips all markup.
func (r *ContentRepo) SanitizeText(s string) string {
	return strings.TrimSpace(r.strict.Sanitize(s))
}

func (r *ContentRepo) ListBlocks(ctx context.Context) ([]model.ContentBlock, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT content_key,title,body,updated_by,updated_at FROM content_blocks ORDER BY content_key")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.ContentBlock{}
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanBlock(s rowScanner) (model.ContentBlock, error) {
	var (
		b  model.ContentBlock
		by sql.NullString
	)
	if err := s.Scan(&b.Key, &b.Title, &b.Body, &by, &b.UpdatedAt); err != nil {
		return model.ContentBlock{}, err
	}
	b.UpdatedBy = strPtr(by)
	return b, nil
}

func (r *ContentRepo) GetBlock(ctx context.Context, key string) (model.ContentBlock, error) {
	b, err := scanBlock(r.DB.QueryRowContext(ctx,
		"SELECT content_key,title,body,updated_by,updated_at FROM content_blocks WHERE content_key=? LIMIT 1", key))
	return b, notFound(err)
}

// PutBlock creates or replaces the block with b.Key after sanitising it.
func (r *ContentRepo) PutBlock(ctx context.Context, b *model.ContentBlock) error {
	b.Title = r.SanitizeText(b.Title)
	b.Body = r.SanitizeHTML(b.Body)
	b.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO content_blocks (content_key,title,body,updated_by,updated_at) VALUES (?,?,?,?,?)
		 ON DUPLICATE KEY UPDATE title=VALUES(title), body=VALUES(body), updated_by=VALUES(updated_by), updated_at=VALUES(updated_at)`,
		b.Key, b.Title, b.Body, nullString(b.UpdatedBy), b.UpdatedAt)
	return err
}

const bannerColumns = "id,title,subtitle,image_url,link_url,position,active,created_at,updated_at"

// ListBanners returns banners ordered by position; activeOnly hides
// inactive ones.
func (r *ContentRepo) ListBanners(ctx context.Context, activeOnly bool) ([]model.Banner, error) {
	q := "SELECT " + bannerColumns + " FROM banners"
	if activeOnly {
		q += " WHERE active=1"
	}
	rows, err := r.DB.QueryContext(ctx, q+" ORDER BY position, created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Banner{}
	for rows.Next() {
		b, err := scanBanner(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanBanner(s rowScanner) (model.Banner, error) {
	var b model.Banner
	err := s.Scan(&b.ID, &b.Title, &b.Subtitle, &b.ImageURL, &b.LinkURL, &b.Position, &b.Active, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func (r *ContentRepo) GetBanner(ctx context.Context, id string) (model.Banner, error) {
	b, err := scanBanner(r.DB.QueryRowContext(ctx,
		"SELECT "+bannerColumns+" FROM banners WHERE id=? LIMIT 1", id))
	return b, notFound(err)
}

func (r *ContentRepo) CreateBanner(ctx context.Context, b *model.Banner) error {
	r.cleanBanner(b)
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	now := time.Now().UTC().Truncate(time.Second)
	b.CreatedAt, b.UpdatedAt = now, now
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO banners ("+bannerColumns+") VALUES (?,?,?,?,?,?,?,?,?)",
		b.ID, b.Title, b.Subtitle, b.ImageURL, b.LinkURL, b.Position, b.Active, b.CreatedAt, b.UpdatedAt)
	return err
}

func (r *ContentRepo) UpdateBanner(ctx context.Context, b *model.Banner) error {
	r.cleanBanner(b)
	b.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	res, err := r.DB.ExecContext(ctx,
		"UPDATE banners SET title=?, subtitle=?, image_url=?, link_url=?, position=?, active=?, updated_at=? WHERE id=?",
		b.Title, b.Subtitle, b.ImageURL, b.LinkURL, b.Position, b.Active, b.UpdatedAt, b.ID)
	if err != nil {
		return err
	}
	if expectOne(res) != nil {
		return ErrNotFound
	}
	return nil
}

func (r *ContentRepo) cleanBanner(b *model.Banner) {
	b.Title = r.SanitizeText(b.Title)
	b.Subtitle = r.SanitizeText(b.Subtitle)
}
