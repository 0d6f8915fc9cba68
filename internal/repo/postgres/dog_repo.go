package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scrollinondubs/DogTinder/internal/domain/enums"
	"github.com/scrollinondubs/DogTinder/internal/domain/model"
)

const dogCardColumns = `
	d.id,
	d.shelter_id,
	d.name,
	d.breed,
	d.age,
	d.gender,
	d.size,
	COALESCE(d.description, ''),
	d.status,
	d.created_at,
	COALESCE(img.url, ''),
	s.name,
	s.address,
	s.city,
	s.state,
	COALESCE(s.image_url, '')`

const primaryImageJoin = `
LEFT JOIN LATERAL (
	SELECT di.url
	FROM dog_images di
	WHERE di.dog_id = d.id AND di.is_primary = TRUE
	ORDER BY di.created_at ASC
	LIMIT 1
) img ON TRUE`

type DogRepo struct {
	pool *pgxpool.Pool
}

func NewDogRepo(pool *pgxpool.Pool) *DogRepo {
	return &DogRepo{pool: pool}
}

// ExistingIDs returns the subset of ids that reference a dog row.
func (r *DogRepo) ExistingIDs(ctx context.Context, tx pgx.Tx, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return []string{}, nil
	}
	q, err := pick(r.pool, tx)
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, `
SELECT id
FROM dogs
WHERE id = ANY($1)
`, ids)
	if err != nil {
		return nil, fmt.Errorf("lookup dog ids: %w", err)
	}
	defer rows.Close()

	found := make([]string, 0, len(ids))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan dog id: %w", err)
		}
		found = append(found, id)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate dog ids: %w", rows.Err())
	}

	return found, nil
}

func (r *DogRepo) Exists(ctx context.Context, tx pgx.Tx, id string) (bool, error) {
	if strings.TrimSpace(id) == "" {
		return false, nil
	}
	q, err := pick(r.pool, tx)
	if err != nil {
		return false, err
	}

	var one int
	if err := q.QueryRow(ctx, `SELECT 1 FROM dogs WHERE id = $1`, id).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lookup dog: %w", err)
	}
	return true, nil
}

// ListAvailable returns available dogs, skipping excluded ids.
func (r *DogRepo) ListAvailable(ctx context.Context, excludeIDs []string, limit int) ([]model.DogCard, error) {
	if limit <= 0 {
		limit = 100
	}
	if r.pool == nil {
		return []model.DogCard{}, nil
	}
	if excludeIDs == nil {
		excludeIDs = []string{}
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+dogCardColumns+`
FROM dogs d
JOIN shelters s ON s.id = d.shelter_id
`+primaryImageJoin+`
WHERE d.status = $1
	AND NOT (d.id = ANY($2))
ORDER BY d.created_at DESC, d.id
LIMIT $3
`, string(enums.DogStatusAvailable), excludeIDs, limit)
	if err != nil {
		return nil, fmt.Errorf("list available dogs: %w", err)
	}
	defer rows.Close()

	return scanDogCards(rows)
}

func scanDogCards(rows pgx.Rows) ([]model.DogCard, error) {
	items := make([]model.DogCard, 0, 16)
	for rows.Next() {
		var (
			card   model.DogCard
			status string
		)
		if err := rows.Scan(
			&card.ID,
			&card.ShelterID,
			&card.Name,
			&card.Breed,
			&card.Age,
			&card.Gender,
			&card.Size,
			&card.Description,
			&status,
			&card.CreatedAt,
			&card.PrimaryImage,
			&card.Shelter.Name,
			&card.Shelter.Address,
			&card.Shelter.City,
			&card.Shelter.State,
			&card.Shelter.ImageURL,
		); err != nil {
			return nil, fmt.Errorf("scan dog card: %w", err)
		}
		card.Status = enums.DogStatus(status)
		card.Shelter.ID = card.ShelterID
		items = append(items, card)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate dog cards: %w", rows.Err())
	}
	return items, nil
}
