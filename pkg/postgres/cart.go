package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cuong200111/baitap-sub001/pkg/models"
)

// CartRepository stores cart lines in the cart_lines table.
type CartRepository struct {
	db *pgxpool.Pool
}

func NewCartRepository(db *pgxpool.Pool) *CartRepository {
	return &CartRepository{db: db}
}

func (r *CartRepository) Lines(ctx context.Context, owner string) ([]models.CartLine, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, owner, product_id, quantity, added_at
		FROM cart_lines
		WHERE owner = $1
		ORDER BY id
	`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := []models.CartLine{}
	for rows.Next() {
		var line models.CartLine
		if err := rows.Scan(&line.ID, &line.Owner, &line.ProductID, &line.Quantity, &line.AddedAt); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (r *CartRepository) Line(ctx context.Context, id int64) (models.CartLine, error) {
	var line models.CartLine
	err := r.db.QueryRow(ctx, `
		SELECT id, owner, product_id, quantity, added_at
		FROM cart_lines
		WHERE id = $1
	`, id).Scan(&line.ID, &line.Owner, &line.ProductID, &line.Quantity, &line.AddedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.CartLine{}, models.ErrCartItemNotFound
	}
	return line, err
}

func (r *CartRepository) Insert(ctx context.Context, owner string, productID int64, quantity int) (models.CartLine, error) {
	line := models.CartLine{Owner: owner, ProductID: productID, Quantity: quantity}
	err := r.db.QueryRow(ctx, `
		INSERT INTO cart_lines (owner, product_id, quantity)
		VALUES ($1,$2,$3)
		RETURNING id, added_at
	`, owner, productID, quantity).Scan(&line.ID, &line.AddedAt)
	if err != nil {
		return models.CartLine{}, fmt.Errorf("failed to insert cart line: %w", err)
	}
	return line, nil
}

func (r *CartRepository) SetQuantity(ctx context.Context, id int64, quantity int) error {
	tag, err := r.db.Exec(ctx, `UPDATE cart_lines SET quantity = $2 WHERE id = $1`, id, quantity)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrCartItemNotFound
	}
	return nil
}

func (r *CartRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM cart_lines WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrCartItemNotFound
	}
	return nil
}

func (r *CartRepository) DeleteOwner(ctx context.Context, owner string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM cart_lines WHERE owner = $1`, owner)
	return err
}
