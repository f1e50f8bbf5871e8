package games

import (
	"github.com/google/uuid"
	"github.com/mcdev12/gully/go/internal/models"
)

// CreateGameRequest represents the data needed to create a new game
type CreateGameRequest struct {
	Name      string              `json:"name" validate:"required"`
	CreatorID uuid.UUID           `json:"creator_id" validate:"required"`
	Settings  models.GameSettings `json:"settings"`
}

// UpdateGameRequest represents the data that can be updated for a game
type UpdateGameRequest struct {
	Name     string              `json:"name" validate:"required"`
	Settings models.GameSettings `json:"settings"`
}
