package repositories

import (
	"chartintel/internal/database"
)

type Repository struct {
	Artist UnifiedArtistRepository
	Track  UnifiedTrackRepository
}

func New(db database.DB) Repository {
	return Repository{
		Artist: NewUnifiedArtistRepository(db),
		Track:  NewUnifiedTrackRepository(db),
	}
}
