// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"amplify/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db  *gorm.DB
	rng *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{db: db, rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// pastTime returns a timestamp spread over the trailing maxDays days.
func (f *Factory) pastTime(maxDays int) time.Time {
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.rng.Intn(maxDays))*24*time.Hour +
		time.Duration(f.rng.Intn(24))*time.Hour +
		time.Duration(f.rng.Intn(60))*time.Minute
	return time.Now().Add(-back)
}

// CreateUser constructs and persists a staff user. Optional override
// functions may modify the generated user before saving.
func (f *Factory) CreateUser(domain string, overrides ...func(*models.User)) (*models.User, error) {
	first := gofakeit.FirstName()
	last := gofakeit.LastName()
	user := &models.User{
		AuthID:    gofakeit.UUID(),
		Email:     fmt.Sprintf("%s.%s%d@%s", first, last, gofakeit.Number(1, 99), domain),
		Name:      first + " " + last,
		Role:      models.RoleContributor,
		AvatarURL: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
	}
	for _, override := range overrides {
		override(user)
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateCampaign persists a campaign. Random campaigns get a source config
// for the generation pipeline.
func (f *Factory) CreateCampaign(campaignType string, overrides ...func(*models.Campaign)) (*models.Campaign, error) {
	campaign := &models.Campaign{
		Name:        gofakeit.ProductName(),
		Description: gofakeit.Sentence(12),
		Status:      "active",
		Type:        campaignType,
		IsActive:    true,
	}
	if campaignType == models.CampaignTypeRandom {
		cfg, err := json.Marshal(models.CampaignSourceConfig{
			SourcePlatform: models.ChannelLinkedIn,
			PostsLimit:     50,
			PostsPerRun:    2,
		})
		if err != nil {
			return nil, err
		}
		campaign.SourceConfig = cfg
	}
	for _, override := range overrides {
		override(campaign)
	}
	if err := f.db.Create(campaign).Error; err != nil {
		return nil, err
	}
	return campaign, nil
}

// postHooks open each piece of generated marketing copy.
var postHooks = []string{
	"We just shipped something we're proud of.",
	"A quick look behind the scenes at how our team works.",
	"Three lessons from our latest customer conversations.",
	"Why we rebuilt our onboarding from scratch.",
	"The metric we stopped tracking, and what we watch instead.",
}

// CreateArchivedPost persists a published archive entry on the channel.
func (f *Factory) CreateArchivedPost(channel string, overrides ...func(*models.SocialPost)) (*models.SocialPost, error) {
	hook := postHooks[f.rng.Intn(len(postHooks))]
	post := &models.SocialPost{
		Channel:     channel,
		Content:     hook + "\n\n" + gofakeit.Paragraph(1, 3, 12, " "),
		ExternalID:  gofakeit.UUID(),
		ExternalURL: gofakeit.URL(),
		CreatedAt:   f.pastTime(120),
	}
	for _, override := range overrides {
		override(post)
	}
	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateDraft persists a pipeline draft authored by user in the given state.
func (f *Factory) CreateDraft(author *models.User, status string, overrides ...func(*models.PostDraft)) (*models.PostDraft, error) {
	channel := models.ChannelLinkedIn
	if f.rng.Intn(2) == 0 {
		channel = models.ChannelX
	}
	draft := &models.PostDraft{
		Content:     postHooks[f.rng.Intn(len(postHooks))] + " " + gofakeit.Sentence(15),
		Channel:     channel,
		AuthorID:    &author.ID,
		AuthorEmail: author.Email,
		AuthorName:  author.Name,
		Route:       models.DraftRouteProofreading,
		Status:      status,
		ActionType:  models.ActionTypePost,
		CreatedAt:   f.pastTime(30),
	}
	switch status {
	case models.DraftStatusScheduled:
		when := time.Now().Add(time.Duration(f.rng.Intn(72)+1) * time.Hour)
		draft.ScheduledFor = &when
		draft.ScheduledTimezone = models.DefaultTimezone
	case models.DraftStatusPublished:
		when := f.pastTime(14)
		draft.PublishedAt = &when
		draft.ExternalID = gofakeit.UUID()
		draft.ExternalURL = gofakeit.URL()
	case models.DraftStatusRejected:
		when := f.pastTime(14)
		draft.RejectedAt = &when
		draft.RejectionReason = gofakeit.Sentence(8)
	}
	for _, override := range overrides {
		override(draft)
	}
	if err := f.db.Create(draft).Error; err != nil {
		return nil, err
	}
	return draft, nil
}

// CreateFollowerHistory persists days of daily snapshots per platform with a
// gentle upward trend.
func (f *Factory) CreateFollowerHistory(days int) error {
	base := map[string]int{
		models.ChannelLinkedIn: gofakeit.Number(800, 2000),
		models.ChannelX:        gofakeit.Number(300, 1200),
	}
	for i := days - 1; i >= 0; i-- {
		date := time.Now().AddDate(0, 0, -i).Format("2006-01-02")
		for platform, count := range base {
			base[platform] = count + f.rng.Intn(12)
			snapshot := &models.FollowerSnapshot{
				Platform:      platform,
				SnapshotDate:  date,
				FollowerCount: base[platform],
			}
			if err := f.db.Create(snapshot).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// CreateNotification persists a feed entry for the user.
func (f *Factory) CreateNotification(email string, overrides ...func(*models.Notification)) (*models.Notification, error) {
	kinds := []string{
		models.NotificationDraftApproved,
		models.NotificationDraftRejected,
		models.NotificationDraftPublished,
		models.NotificationPostGenerated,
	}
	n := &models.Notification{
		UserEmail: email,
		Type:      kinds[f.rng.Intn(len(kinds))],
		Title:     gofakeit.Sentence(4),
		Message:   gofakeit.Sentence(10),
		IsRead:    f.rng.Intn(3) > 0,
		CreatedAt: f.pastTime(14),
	}
	for _, override := range overrides {
		override(n)
	}
	if err := f.db.Create(n).Error; err != nil {
		return nil, err
	}
	return n, nil
}
