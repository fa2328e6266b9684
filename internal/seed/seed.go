// Package seed provides helpers to create demo data for development and
// testing. Not for production use.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"strive/internal/models"
	"strive/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configures the seeder.
type Options struct {
	NumUsers     int
	GoalsPerUser int
	ShouldClean  bool
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	rand *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:   db,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateUser persists a user with the shared demo password "Password123!".
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte("Password123!"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username:     fmt.Sprintf("%s%d", gofakeit.Username(), f.rand.Intn(10000)),
		Email:        gofakeit.Email(),
		PasswordHash: string(hash),
	}
	for _, o := range overrides {
		o(user)
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateFriendship persists an accepted friendship between two users.
func (f *Factory) CreateFriendship(requesterID, addresseeID uint) (*models.Friendship, error) {
	edge := &models.Friendship{
		RequesterID: requesterID,
		AddresseeID: addresseeID,
		Status:      models.FriendshipStatusAccepted,
	}
	if err := f.db.Create(edge).Error; err != nil {
		return nil, err
	}
	return edge, nil
}

// CreateGoal persists a goal with a generated milestone schedule.
func (f *Factory) CreateGoal(ownerID uint, overrides ...func(*models.Goal)) (*models.Goal, error) {
	start := time.Now().Add(-time.Duration(f.rand.Intn(14)) * 24 * time.Hour)
	goal := &models.Goal{
		OwnerID:               ownerID,
		Title:                 gofakeit.Sentence(4),
		Description:           gofakeit.Paragraph(1, 2, 8, " "),
		Privacy:               models.GoalPrivacyFriends,
		MilestoneIntervalDays: 7,
		StartDate:             start,
		Deadline:              start.Add(time.Duration(28+f.rand.Intn(56)) * 24 * time.Hour),
		Status:                models.GoalStatusActive,
	}
	for _, o := range overrides {
		o(goal)
	}
	if err := f.db.Create(goal).Error; err != nil {
		return nil, err
	}
	milestones := service.GenerateSchedule(goal)
	if len(milestones) > 0 {
		if err := f.db.Create(&milestones).Error; err != nil {
			return nil, err
		}
	}
	return goal, nil
}

// Run seeds the database with users, a friendship mesh, and goals.
func Run(db *gorm.DB, opts Options) error {
	if opts.NumUsers <= 0 {
		opts.NumUsers = 10
	}
	if opts.GoalsPerUser <= 0 {
		opts.GoalsPerUser = 2
	}

	if opts.ShouldClean {
		tables := []string{
			"notifications", "interval_change_votes", "interval_change_requests",
			"proof_votes", "proofs", "milestones", "goal_allowed_viewers",
			"goals", "friendships", "users",
		}
		for _, t := range tables {
			if err := db.Exec("DELETE FROM " + t).Error; err != nil {
				return fmt.Errorf("clean %s: %w", t, err)
			}
		}
	}

	f := NewFactory(db)

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return err
		}
		users = append(users, user)
	}

	// Friendship mesh: each user befriends roughly a third of the others.
	for i, u := range users {
		for j := i + 1; j < len(users); j++ {
			if f.rand.Intn(3) == 0 {
				if _, err := f.CreateFriendship(u.ID, users[j].ID); err != nil {
					return err
				}
			}
		}
	}

	for _, u := range users {
		for i := 0; i < opts.GoalsPerUser; i++ {
			if _, err := f.CreateGoal(u.ID); err != nil {
				return err
			}
		}
	}

	log.Printf("Seeded %d users with %d goals each", opts.NumUsers, opts.GoalsPerUser)
	return nil
}
