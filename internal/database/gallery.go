package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// --- gallery categories ---

const galleryCategoryColumns = `id, name, created_at`

func scanGalleryCategory(row interface{ Scan(dest ...any) error }) (GalleryCategory, error) {
	var c GalleryCategory
	err := row.Scan(&c.ID, &c.Name, &c.CreatedAt)
	return c, err
}

const listGalleryCategories = `
SELECT ` + galleryCategoryColumns + ` FROM gallery_categories ORDER BY name`

func (q *Queries) ListGalleryCategories(ctx context.Context) ([]GalleryCategory, error) {
	rows, err := q.db.Query(ctx, listGalleryCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GalleryCategory
	for rows.Next() {
		c, err := scanGalleryCategory(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

const createGalleryCategory = `
INSERT INTO gallery_categories (name) VALUES ($1)
RETURNING ` + galleryCategoryColumns

func (q *Queries) CreateGalleryCategory(ctx context.Context, name string) (GalleryCategory, error) {
	return scanGalleryCategory(q.db.QueryRow(ctx, createGalleryCategory, name))
}

const countImagesByCategory = `
SELECT COUNT(*) FROM gallery_images WHERE category_id = $1`

func (q *Queries) CountImagesByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, countImagesByCategory, categoryID).Scan(&n)
	return n, err
}

const deleteGalleryCategory = `
DELETE FROM gallery_categories WHERE id = $1`

func (q *Queries) DeleteGalleryCategory(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteGalleryCategory, id)
	return err
}

// --- gallery images ---

const galleryImageColumns = `id, category_id, title, image_url, created_at`

func scanGalleryImage(row interface{ Scan(dest ...any) error }) (GalleryImage, error) {
	var g GalleryImage
	err := row.Scan(&g.ID, &g.CategoryID, &g.Title, &g.ImageURL, &g.CreatedAt)
	return g, err
}

const listGalleryImages = `
SELECT ` + galleryImageColumns + ` FROM gallery_images ORDER BY created_at DESC`

func (q *Queries) ListGalleryImages(ctx context.Context) ([]GalleryImage, error) {
	rows, err := q.db.Query(ctx, listGalleryImages)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GalleryImage
	for rows.Next() {
		g, err := scanGalleryImage(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, g)
	}
	return items, rows.Err()
}

const createGalleryImage = `
INSERT INTO gallery_images (category_id, title, image_url)
VALUES ($1, $2, $3)
RETURNING ` + galleryImageColumns

type CreateGalleryImageParams struct {
	CategoryID pgtype.UUID
	Title      pgtype.Text
	ImageURL   string
}

func (q *Queries) CreateGalleryImage(ctx context.Context, arg CreateGalleryImageParams) (GalleryImage, error) {
	return scanGalleryImage(q.db.QueryRow(ctx, createGalleryImage, arg.CategoryID, arg.Title, arg.ImageURL))
}

const deleteGalleryImage = `
DELETE FROM gallery_images WHERE id = $1`

func (q *Queries) DeleteGalleryImage(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteGalleryImage, id)
	return err
}
