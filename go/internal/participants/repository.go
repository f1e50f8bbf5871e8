package participants

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mcdev12/gully/go/internal/auction"
	"github.com/mcdev12/gully/go/internal/models"
)

// Repository implements participant data access operations
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new participants repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateParticipant adds a participant to a game with the game's starting budget
func (r *Repository) CreateParticipant(ctx context.Context, req CreateParticipantRequest) (*models.Participant, error) {
	// Starting budget comes from the game's settings so everyone begins equal.
	row := r.pool.QueryRow(ctx, `
		INSERT INTO participants (id, game_id, user_id, team_name, budget_remaining)
		SELECT $1, g.id, $3, $4, (g.settings->>'budget_per_participant')::numeric
		FROM games g
		WHERE g.id = $2
		RETURNING id, game_id, user_id, team_name, budget_remaining, created_at
	`, uuid.New(), req.GameID, req.UserID, req.TeamName)

	p, err := scanParticipant(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("game %s: %w", req.GameID, auction.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to create participant: %w", err)
	}
	p.Roster = []models.RosterPick{}
	return p, nil
}

// GetParticipant retrieves a participant by ID, including their roster
func (r *Repository) GetParticipant(ctx context.Context, id uuid.UUID) (*models.Participant, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, game_id, user_id, team_name, budget_remaining, created_at
		FROM participants
		WHERE id = $1
	`, id)

	p, err := scanParticipant(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("participant %s: %w", id, auction.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}

	if err := r.attachRosters(ctx, []*models.Participant{p}); err != nil {
		return nil, err
	}
	return p, nil
}

// GetParticipantsByGame retrieves all participants in a game with their rosters
func (r *Repository) GetParticipantsByGame(ctx context.Context, gameID uuid.UUID) ([]*models.Participant, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, game_id, user_id, team_name, budget_remaining, created_at
		FROM participants
		WHERE game_id = $1
		ORDER BY created_at
	`, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	var participants []*models.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachRosters(ctx, participants); err != nil {
		return nil, err
	}
	return participants, nil
}

// UpdateParticipant updates a participant's team name
func (r *Repository) UpdateParticipant(ctx context.Context, id uuid.UUID, req UpdateParticipantRequest) (*models.Participant, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE participants
		SET team_name = $2
		WHERE id = $1
	`, id, req.TeamName)
	if err != nil {
		return nil, fmt.Errorf("failed to update participant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("participant %s: %w", id, auction.ErrNotFound)
	}
	return r.GetParticipant(ctx, id)
}

// DeleteParticipant removes a participant from a game
func (r *Repository) DeleteParticipant(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM participants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete participant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("participant %s: %w", id, auction.ErrNotFound)
	}
	return nil
}

// attachRosters loads roster picks for the given participants in one query
func (r *Repository) attachRosters(ctx context.Context, participants []*models.Participant) error {
	if len(participants) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*models.Participant, len(participants))
	ids := make([]uuid.UUID, 0, len(participants))
	for _, p := range participants {
		p.Roster = []models.RosterPick{}
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT participant_id, cricketer_id, price_paid, pick_order, acquired_at
		FROM roster_picks
		WHERE participant_id = ANY($1)
		ORDER BY pick_order
	`, ids)
	if err != nil {
		return fmt.Errorf("failed to get roster picks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			participantID uuid.UUID
			pick          models.RosterPick
		)
		if err := rows.Scan(&participantID, &pick.CricketerID, &pick.PricePaid, &pick.PickOrder, &pick.AcquiredAt); err != nil {
			return fmt.Errorf("failed to scan roster pick: %w", err)
		}
		if p, ok := byID[participantID]; ok {
			p.Roster = append(p.Roster, pick)
		}
	}
	return rows.Err()
}

func scanParticipant(row pgx.Row) (*models.Participant, error) {
	var p models.Participant
	if err := row.Scan(&p.ID, &p.GameID, &p.UserID, &p.TeamName, &p.BudgetRemaining, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
