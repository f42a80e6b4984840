package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rpupo63/portfolio-backend/database"
	"github.com/rpupo63/portfolio-backend/models"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type recordingMailer struct {
	sent []Email
	err  error
}

func (m *recordingMailer) Send(ctx context.Context, email Email) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, email)
	return nil
}

func addUser(t *testing.T, db database.Database, name, email string, admin bool) *models.User {
	t.Helper()
	user := &models.User{Name: name, Email: email, PasswordHash: "unused", IsAdmin: admin}
	require.NoError(t, db.UserRepo().Add(context.Background(), user))
	return user
}

func addProject(t *testing.T, db database.Database, owner *models.User, title string, status models.ProjectStatus) *models.Project {
	t.Helper()
	project := &models.Project{Title: title, Description: "About " + title, Status: status, UserID: owner.ID}
	require.NoError(t, db.ProjectRepo().Add(context.Background(), project))
	return project
}

func principalOf(u *models.User) *Principal {
	return &Principal{UserID: u.ID, Name: u.Name, IsAdmin: u.IsAdmin}
}
