package storage

import (
	"time"

	"github.com/atinyakov/HydroPal/internal/models"
)

// Session is the login state persisted between client runs.
type Session struct {
	BaseURL string            `json:"baseUrl"`
	Token   string            `json:"token"`
	User    models.PublicUser `json:"user"`
	SavedAt time.Time         `json:"savedAt"`
}

// authResponse is the body of register and login responses.
type authResponse struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

// errorResponse is the failure envelope returned by the server.
type errorResponse struct {
	Message string `json:"message"`
}
