package participants

import (
	"github.com/google/uuid"
)

// CreateParticipantRequest represents the data needed to join a game
type CreateParticipantRequest struct {
	GameID   uuid.UUID `json:"game_id" validate:"required"`
	UserID   uuid.UUID `json:"user_id" validate:"required"`
	TeamName string    `json:"team_name" validate:"required"`
}

// UpdateParticipantRequest represents the data that can be updated for a participant
type UpdateParticipantRequest struct {
	TeamName string `json:"team_name" validate:"required"`
}
