package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scrollinondubs/DogTinder/internal/domain/model"
)

var ErrLikeConflict = errors.New("like already exists")

type LikeRepo struct {
	pool *pgxpool.Pool
}

func NewLikeRepo(pool *pgxpool.Pool) *LikeRepo {
	return &LikeRepo{pool: pool}
}

type LikeWriteRecord struct {
	DogID string
	Liked bool
}

// SwipedDogIDs lists every dog the user has a Like row for, liked or passed.
// tx may be nil to read outside a transaction.
func (r *LikeRepo) SwipedDogIDs(ctx context.Context, tx pgx.Tx, userID string) ([]string, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("invalid user id")
	}
	q, err := pick(r.pool, tx)
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, `
SELECT dog_id
FROM likes
WHERE user_id = $1
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list swiped dogs: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0, 32)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan swiped dog: %w", err)
		}
		ids = append(ids, id)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate swiped dogs: %w", rows.Err())
	}

	return ids, nil
}

func (r *LikeRepo) Exists(ctx context.Context, tx pgx.Tx, userID, dogID string) (bool, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(dogID) == "" {
		return false, fmt.Errorf("invalid like lookup payload")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	var one int
	err := tx.QueryRow(ctx, `
SELECT 1
FROM likes
WHERE user_id = $1 AND dog_id = $2
LIMIT 1
`, userID, dogID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lookup like: %w", err)
	}

	return true, nil
}

// Insert writes one Like. A concurrent writer holding the same (user, dog)
// pair makes it fail with ErrLikeConflict.
func (r *LikeRepo) Insert(ctx context.Context, tx pgx.Tx, userID string, rec LikeWriteRecord, now time.Time) error {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(rec.DogID) == "" {
		return fmt.Errorf("invalid like payload")
	}
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO likes (
	id,
	user_id,
	dog_id,
	liked,
	created_at
) VALUES ($1, $2, $3, $4, $5)
`, uuid.NewString(), userID, rec.DogID, rec.Liked, now.UTC()); err != nil {
		if isUniqueViolation(err) {
			return ErrLikeConflict
		}
		return fmt.Errorf("insert like: %w", err)
	}

	return nil
}

// InsertBatch writes the records in one round trip and returns how many rows
// were actually created. Rows that collide with an existing (user, dog) pair
// are dropped by the unique index instead of failing the batch.
func (r *LikeRepo) InsertBatch(ctx context.Context, tx pgx.Tx, userID string, records []LikeWriteRecord, now time.Time) (int, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, fmt.Errorf("invalid user id")
	}
	if len(records) == 0 {
		return 0, nil
	}
	if tx == nil {
		return 0, fmt.Errorf("transaction is required")
	}

	const query = `
INSERT INTO likes (
	id,
	user_id,
	dog_id,
	liked,
	created_at
) VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (user_id, dog_id) DO NOTHING
`

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(query, uuid.NewString(), userID, rec.DogID, rec.Liked, now.UTC())
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for i := 0; i < len(records); i++ {
		tag, err := results.Exec()
		if err != nil {
			return 0, fmt.Errorf("insert like batch item #%d: %w", i, err)
		}
		inserted += int(tag.RowsAffected())
	}

	return inserted, nil
}

// ListLikedDogs returns the dogs the user swiped right on, newest first.
func (r *LikeRepo) ListLikedDogs(ctx context.Context, userID string) ([]model.DogCard, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return []model.DogCard{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+dogCardColumns+`
FROM likes l
JOIN dogs d ON d.id = l.dog_id
JOIN shelters s ON s.id = d.shelter_id
`+primaryImageJoin+`
WHERE l.user_id = $1 AND l.liked = TRUE
ORDER BY l.created_at DESC, l.id DESC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list liked dogs: %w", err)
	}
	defer rows.Close()

	return scanDogCards(rows)
}
