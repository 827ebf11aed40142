package store

import (
	"context"
	"fmt"
	"time"

	"github.com/lamnochka-debug/vocab-services/internal/vocabsvc/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CardStore struct {
	db *pgxpool.Pool
}

func NewCardStore(db *pgxpool.Pool) *CardStore {
	return &CardStore{db: db}
}

const cardColumns = `id, user_id, term, translation, ease, interval, reps, next_review, created_at, updated_at`

func scanCard(row pgx.Row) (*models.Card, error) {
	c := &models.Card{}
	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.Term,
		&c.Translation,
		&c.Ease,
		&c.Interval,
		&c.Reps,
		&c.NextReview,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CardStore) collect(rows pgx.Rows) ([]models.Card, error) {
	defer rows.Close()

	var cards []models.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card row: %w", err)
		}
		cards = append(cards, *c)
	}
	return cards, rows.Err()
}

func (s *CardStore) Insert(ctx context.Context, userID int64, term, translation string, nextReview time.Time) (int64, error) {
	var cardID int64

	query := `
        INSERT INTO cards (user_id, term, translation, next_review)
        VALUES ($1, $2, $3, $4)
        RETURNING id;
    `

	err := s.db.QueryRow(ctx, query, userID, term, translation, nextReview).Scan(&cardID)
	if err != nil {
		return 0, fmt.Errorf("could not insert card: %w", err)
	}

	return cardID, nil
}

func (s *CardStore) GetByID(ctx context.Context, cardID int64) (*models.Card, error) {
	row := s.db.QueryRow(ctx, `
        SELECT `+cardColumns+`
        FROM cards
        WHERE id = $1
    `, cardID)

	card, err := scanCard(row)
	if err != nil {
		if err.Error() == "no rows in result set" { // fallback for pgxpool
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get card by id: %w", err)
	}

	return card, nil
}

// ListByUser returns the user's newest cards first, for the /list command.
func (s *CardStore) ListByUser(ctx context.Context, userID int64, limit int) ([]models.Card, error) {
	rows, err := s.db.Query(ctx, `
        SELECT `+cardColumns+`
        FROM cards
        WHERE user_id = $1
        ORDER BY id DESC
        LIMIT $2
    `, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards for user %d: %w", userID, err)
	}

	return s.collect(rows)
}

// ListDue returns cards whose next_review has passed, most overdue first.
func (s *CardStore) ListDue(ctx context.Context, userID int64, now time.Time, limit int) ([]models.Card, error) {
	rows, err := s.db.Query(ctx, `
        SELECT `+cardColumns+`
        FROM cards
        WHERE user_id = $1 AND next_review <= $2
        ORDER BY next_review ASC
        LIMIT $3
    `, userID, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list due cards for user %d: %w", userID, err)
	}

	return s.collect(rows)
}

// ListRandomSample returns up to limit cards of the user in random order.
func (s *CardStore) ListRandomSample(ctx context.Context, userID int64, limit int) ([]models.Card, error) {
	rows, err := s.db.Query(ctx, `
        SELECT `+cardColumns+`
        FROM cards
        WHERE user_id = $1
        ORDER BY RANDOM()
        LIMIT $2
    `, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to sample cards for user %d: %w", userID, err)
	}

	return s.collect(rows)
}

// ListAll returns every card of the user ordered by id, for CSV export.
func (s *CardStore) ListAll(ctx context.Context, userID int64) ([]models.Card, error) {
	rows, err := s.db.Query(ctx, `
        SELECT `+cardColumns+`
        FROM cards
        WHERE user_id = $1
        ORDER BY id ASC
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list all cards for user %d: %w", userID, err)
	}

	return s.collect(rows)
}

// UpdateScheduling writes the scheduling fields computed by the srs package.
func (s *CardStore) UpdateScheduling(ctx context.Context, cardID int64, ease float64, interval, reps int, nextReview time.Time) error {
	tag, err := s.db.Exec(ctx, `
        UPDATE cards
        SET ease = $2, interval = $3, reps = $4, next_review = $5, updated_at = now()
        WHERE id = $1
    `, cardID, ease, interval, reps, nextReview)
	if err != nil {
		return fmt.Errorf("failed to update scheduling for card %d: %w", cardID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to update scheduling for card %d: no such card", cardID)
	}

	return nil
}

// CountDue returns how many cards are currently due for the user.
func (s *CardStore) CountDue(ctx context.Context, userID int64, now time.Time) (int, error) {
	var count int
	err := s.db.QueryRow(ctx, `
        SELECT COUNT(*)
        FROM cards
        WHERE user_id = $1 AND next_review <= $2
    `, userID, now).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count due cards for user %d: %w", userID, err)
	}

	return count, nil
}
