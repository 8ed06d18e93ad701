package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	Sessions  SessionStore
	Decisions DecisionLog
}

// NewRepositories initializes the PostgreSQL repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		Sessions:  NewSessionRepository(db),
		Decisions: NewReviewDecisionRepository(db),
	}
}

// NewMemoryRepositories initializes in-memory repositories for development and tests
func NewMemoryRepositories() *Repositories {
	return &Repositories{
		Sessions:  NewMemorySessionStore(),
		Decisions: NewMemoryDecisionLog(),
	}
}
