package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/biyonik/ticketbox-core/internal/models"
	"github.com/biyonik/ticketbox-core/pkg/database"
)

type RelationshipRepository struct {
	db *sql.DB
}

func (r *RelationshipRepository) Create(ctx context.Context, rel *models.Relationship) error {
	result, err := database.Executor(ctx, r.db).ExecContext(ctx,
		"INSERT INTO relationships (name) VALUES (?)", rel.Name)
	if err != nil {
		return fmt.Errorf("failed to create relationship: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	rel.ID = id
	return nil
}

func (r *RelationshipRepository) FindByID(ctx context.Context, id int64) (*models.Relationship, error) {
	rel := &models.Relationship{}
	err := database.Executor(ctx, r.db).
		QueryRowContext(ctx, "SELECT id, name FROM relationships WHERE id = ?", id).
		Scan(&rel.ID, &rel.Name)
	if err != nil {
		return nil, notFound(err, models.ErrRelationshipNotFound, "find relationship")
	}
	return rel, nil
}

func (r *RelationshipRepository) List(ctx context.Context) ([]*models.Relationship, error) {
	rows, err := database.Executor(ctx, r.db).QueryContext(ctx, "SELECT id, name FROM relationships ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query relationships: %w", err)
	}
	defer rows.Close()

	rels := make([]*models.Relationship, 0)
	for rows.Next() {
		rel := &models.Relationship{}
		if err := rows.Scan(&rel.ID, &rel.Name); err != nil {
			return nil, fmt.Errorf("failed to scan relationship: %w", err)
		}
		rels = append(rels, rel)
	}
	return rels, rows.Err()
}

type CategoryRepository struct {
	db *sql.DB
}

func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	result, err := database.Executor(ctx, r.db).ExecContext(ctx,
		"INSERT INTO categories (name, created_at, updated_at) VALUES (?, ?, ?)",
		category.Name, category.CreatedAt, category.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	category.ID = id
	return nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id int64) (*models.Category, error) {
	c := &models.Category{}
	err := database.Executor(ctx, r.db).
		QueryRowContext(ctx, "SELECT id, name, created_at, updated_at FROM categories WHERE id = ?", id).
		Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, notFound(err, models.ErrCategoryNotFound, "find category")
	}
	return c, nil
}

func (r *CategoryRepository) List(ctx context.Context) ([]*models.Category, error) {
	rows, err := database.Executor(ctx, r.db).QueryContext(ctx,
		"SELECT id, name, created_at, updated_at FROM categories ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := make([]*models.Category, 0)
	for rows.Next() {
		c := &models.Category{}
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *CategoryRepository) Update(ctx context.Context, category *models.Category) error {
	result, err := database.Executor(ctx, r.db).ExecContext(ctx,
		"UPDATE categories SET name = ?, updated_at = ? WHERE id = ?",
		category.Name, category.UpdatedAt, category.ID)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	if err := expectOneRow(result, "update category"); err != nil {
		return models.ErrCategoryNotFound
	}
	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	result, err := database.Executor(ctx, r.db).ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if err := expectOneRow(result, "delete category"); err != nil {
		return models.ErrCategoryNotFound
	}
	return nil
}
