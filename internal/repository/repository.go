package repository

import (
	"fmt"

	"github.com/yourusername/matchcast/internal/database"
)

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Match:   NewPostgresMatchRepository(db),
		Feature: NewPostgresFeatureRepository(db),
	}, nil
}
