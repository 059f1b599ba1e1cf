package repository

import (
	"github.com/talaria-app/talaria/pkg/database"
)

// Repositories holds all repository interfaces
type Repositories struct {
	Athlete  AthleteRepository
	Activity ActivityRepository
	Settings SettingsRepository
}

// NewRepositories creates all repositories
func NewRepositories(db *database.Postgres) *Repositories {
	return &Repositories{
		Athlete:  NewAthleteRepository(db),
		Activity: NewActivityRepository(db),
		Settings: NewSettingsRepository(db),
	}
}
