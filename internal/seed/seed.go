package seed

import (
	"log"

	"amplify/internal/models"

	"gorm.io/gorm"
)

// Options configures a seeding run.
type Options struct {
	NumUsers    int
	NumDrafts   int
	NumArchived int
	Domain      string
}

// Seeder populates the database with demo data.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a new Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db)}
}

// ClearAll removes all seedable rows. Order matters for foreign keys.
func (s *Seeder) ClearAll() error {
	tables := []interface{}{
		&models.PostEditHistory{},
		&models.PostDraft{},
		&models.Post{},
		&models.Notification{},
		&models.FollowerSnapshot{},
		&models.SocialPost{},
		&models.Campaign{},
		&models.User{},
	}
	for _, table := range tables {
		if err := s.db.Unscoped().Where("1 = 1").Delete(table).Error; err != nil {
			return err
		}
	}
	log.Println("Cleared existing data")
	return nil
}

// SeedAll fills the database with a working demo set: staff, campaigns, an
// inspiration archive, drafts across the pipeline, follower history, and
// notifications.
func (s *Seeder) SeedAll(opts Options) error {
	if opts.NumUsers <= 0 {
		opts.NumUsers = 8
	}
	if opts.NumDrafts <= 0 {
		opts.NumDrafts = 40
	}
	if opts.NumArchived <= 0 {
		opts.NumArchived = 60
	}
	if opts.Domain == "" {
		opts.Domain = "example.com"
	}

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := s.factory.CreateUser(opts.Domain)
		if err != nil {
			return err
		}
		users = append(users, user)
	}
	log.Printf("Created %d users", len(users))

	if _, err := s.factory.CreateCampaign(models.CampaignTypeCurated); err != nil {
		return err
	}
	if _, err := s.factory.CreateCampaign(models.CampaignTypeRandom); err != nil {
		return err
	}
	log.Println("Created campaigns")

	for i := 0; i < opts.NumArchived; i++ {
		channel := models.ChannelLinkedIn
		if i%3 == 0 {
			channel = models.ChannelX
		}
		if _, err := s.factory.CreateArchivedPost(channel); err != nil {
			return err
		}
	}
	log.Printf("Created %d archived posts", opts.NumArchived)

	statuses := []string{
		models.DraftStatusPendingReview,
		models.DraftStatusPendingReview,
		models.DraftStatusApproved,
		models.DraftStatusScheduled,
		models.DraftStatusPublished,
		models.DraftStatusRejected,
	}
	for i := 0; i < opts.NumDrafts; i++ {
		author := users[i%len(users)]
		status := statuses[i%len(statuses)]
		if _, err := s.factory.CreateDraft(author, status); err != nil {
			return err
		}
	}
	log.Printf("Created %d drafts", opts.NumDrafts)

	if err := s.factory.CreateFollowerHistory(30); err != nil {
		return err
	}
	log.Println("Created 30 days of follower history")

	for _, user := range users {
		for i := 0; i < 5; i++ {
			if _, err := s.factory.CreateNotification(user.Email); err != nil {
				return err
			}
		}
	}
	log.Println("Created notifications")

	return nil
}
