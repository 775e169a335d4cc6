package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"artforge/internal/models"
)

var ErrImageNotFound = errors.New("image not found")

type ImageRepository struct {
	db DBTX
}

func NewImageRepository(db DBTX) *ImageRepository {
	return &ImageRepository{db: db}
}

// Create inserts the row and returns it with the database-assigned created_at.
func (r *ImageRepository) Create(ctx context.Context, image models.GeneratedImage) (models.GeneratedImage, error) {
	const query = `
		INSERT INTO generated_images (
			id, owner_id, prompt_text, stored_filename, config_json
		) VALUES (
			$1, $2, $3, $4, $5
		)
		RETURNING created_at
	`

	row := r.db.QueryRow(ctx, query,
		image.ID,
		image.OwnerID,
		image.PromptText,
		image.StoredFilename,
		image.ConfigJSON,
	)
	if err := row.Scan(&image.CreatedAt); err != nil {
		return models.GeneratedImage{}, err
	}
	return image, nil
}

// FindByIDAndOwner returns ErrImageNotFound for rows that are missing or owned by someone else.
func (r *ImageRepository) FindByIDAndOwner(ctx context.Context, id, ownerID string) (models.GeneratedImage, error) {
	const query = `
		SELECT id, owner_id, prompt_text, stored_filename, config_json, created_at
		FROM generated_images
		WHERE id = $1 AND owner_id = $2
	`

	var image models.GeneratedImage
	if err := scanImage(r.db.QueryRow(ctx, query, id, ownerID), &image); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.GeneratedImage{}, ErrImageNotFound
		}
		return models.GeneratedImage{}, err
	}
	return image, nil
}

func (r *ImageRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.GeneratedImage, error) {
	const query = `
		SELECT id, owner_id, prompt_text, stored_filename, config_json, created_at
		FROM generated_images
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	images := make([]models.GeneratedImage, 0)
	for rows.Next() {
		var image models.GeneratedImage
		if err := scanImage(rows, &image); err != nil {
			return nil, err
		}
		images = append(images, image)
	}
	return images, rows.Err()
}

func (r *ImageRepository) DeleteByID(ctx context.Context, id string) error {
	const query = `DELETE FROM generated_images WHERE id = $1`
	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrImageNotFound
	}
	return nil
}

func (r *ImageRepository) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	const query = `SELECT COUNT(*) FROM generated_images WHERE owner_id = $1`
	var count int
	if err := r.db.QueryRow(ctx, query, ownerID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// ListStoredFilenames returns every filename referenced by a row, across all owners.
func (r *ImageRepository) ListStoredFilenames(ctx context.Context) ([]string, error) {
	const query = `SELECT stored_filename FROM generated_images`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func scanImage(row pgx.Row, image *models.GeneratedImage) error {
	return row.Scan(
		&image.ID,
		&image.OwnerID,
		&image.PromptText,
		&image.StoredFilename,
		&image.ConfigJSON,
		&image.CreatedAt,
	)
}
