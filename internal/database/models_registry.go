package database

import "hackarena/internal/models"

// PersistentModels lists every model that AutoMigrate manages.
// Order matters for foreign key creation: parents before children.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.ScoreHistory{},
		&models.Season{},
		&models.SeasonParticipant{},
		&models.SeasonResetRun{},
		&models.Sanction{},
		&models.Post{},
		&models.Comment{},
		&models.PostLike{},
		&models.PostReport{},
		&models.Contest{},
		&models.Challenge{},
		&models.ContestParticipant{},
		&models.Solve{},
		&models.Curriculum{},
		&models.CurriculumProgress{},
		&models.Banner{},
	}
}
