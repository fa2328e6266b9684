package database

import "strive/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Friendship{},
		&models.Goal{},
		&models.AllowedViewer{},
		&models.Milestone{},
		&models.Proof{},
		&models.ProofVote{},
		&models.IntervalChangeRequest{},
		&models.IntervalChangeVote{},
		&models.Notification{},
	}
}
