package seed

import (
	"fmt"
	"strings"

	"pulse/internal/service"

	"github.com/brianvoe/gofakeit/v6"
)

// Factory builds engine inputs populated with fake but plausible content.
type Factory struct {
	faker *gofakeit.Faker
}

// NewFactory returns a Factory whose output is fully determined by seed.
func NewFactory(seed int64) *Factory {
	return &Factory{faker: gofakeit.New(seed)}
}

// User builds the sign-in payload for the n-th demo user. The index keeps
// usernames unique within one run.
func (f *Factory) User(n int) service.UpsertUserInput {
	first := f.faker.FirstName()
	last := f.faker.LastName()
	username := strings.ToLower(strings.ReplaceAll(fmt.Sprintf("%s_%s%d", first, last, n), " ", ""))
	return service.UpsertUserInput{
		ExternalID: "seed|" + f.faker.UUID(),
		Email:      fmt.Sprintf("%s@example.com", username),
		Name:       first + " " + last,
		Username:   username,
		Image:      fmt.Sprintf("https://i.pravatar.cc/150?u=%s", f.faker.UUID()),
	}
}

// Profile builds a profile update for userID.
func (f *Factory) Profile(userID uint) service.UpdateProfileInput {
	return service.UpdateProfileInput{
		UserID:   userID,
		Name:     f.faker.Name(),
		Bio:      f.faker.Sentence(10),
		Location: f.faker.City(),
		Website:  f.faker.URL(),
	}
}

// Post builds a post by authorID. Roughly a third carry an image.
func (f *Factory) Post(authorID uint) service.CreatePostInput {
	in := service.CreatePostInput{
		AuthorID: authorID,
		Content:  f.faker.Paragraph(1, 3, 8, "\n"),
	}
	if f.faker.Number(0, 2) == 0 {
		in.Image = fmt.Sprintf("https://picsum.photos/seed/%s/800/800", f.faker.UUID())
	}
	return in
}

// Comment builds a comment by userID on postID.
func (f *Factory) Comment(userID, postID uint) service.CreateCommentInput {
	return service.CreateCommentInput{
		PostID:  postID,
		UserID:  userID,
		Content: f.faker.Sentence(8),
	}
}

// Chance reports true with probability p. The draw is uniform in [0, 1).
func (f *Factory) Chance(p float64) bool {
	return f.faker.Float64Range(0, 1) < p
}

// Intn returns a number in [0, n).
func (f *Factory) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return f.faker.Number(0, n-1)
}
