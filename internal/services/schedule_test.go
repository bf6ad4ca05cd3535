package services

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/ezcal-dev/ezcal/db"
	"github.com/ezcal-dev/ezcal/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	database, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(database))

	return database
}

func newTestUser(t *testing.T, users *UserService, email string) *models.User {
	t.Helper()

	user, err := users.Create(email, "Test User", "password123")
	require.NoError(t, err)

	return user
}

func strPtr(s string) *string { return &s }

func timePtr(ts time.Time) *time.Time { return &ts }

func TestGetByIDScopedToOwner(t *testing.T) {
	database := newTestDB(t)
	users := NewUserService(database)
	schedules := NewScheduleService(database)

	owner := newTestUser(t, users, "owner@x.com")
	other := newTestUser(t, users, "other@x.com")

	created, err := schedules.Create(owner.ID, &models.Schedule{
		Title:     "Standup",
		StartDate: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		Priority:  models.PriorityDefault,
		Repeat:    models.RepeatNone,
	})
	require.NoError(t, err)

	found, err := schedules.GetByID(owner.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Standup", found.Title)

	// Another user's lookup must be indistinguishable from not-found.
	_, err = schedules.GetByID(other.ID, created.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListFilters(t *testing.T) {
	database := newTestDB(t)
	users := NewUserService(database)
	schedules := NewScheduleService(database)

	owner := newTestUser(t, users, "owner@x.com")
	other := newTestUser(t, users, "other@x.com")

	seed := []models.Schedule{
		{Title: "Team Sync", StartDate: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC), Priority: models.PriorityHigh},
		{Title: "Lunch", Description: strPtr("sync up over food"), StartDate: time.Date(2024, 6, 2, 12, 0, 0, 0, time.UTC), Priority: models.PriorityLow},
		{Title: "Review", StartDate: time.Date(2024, 6, 3, 15, 0, 0, 0, time.UTC), Priority: models.PriorityMedium},
		{Title: "Planning", StartDate: time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC), Priority: models.PriorityHigh},
	}

	for i := range seed {
		seed[i].Repeat = models.RepeatNone
		_, err := schedules.Create(owner.ID, &seed[i])
		require.NoError(t, err)
	}

	_, err := schedules.Create(other.ID, &models.Schedule{
		Title:     "Not yours",
		StartDate: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		Priority:  models.PriorityDefault,
		Repeat:    models.RepeatNone,
	})
	require.NoError(t, err)

	t.Run("owner scope", func(t *testing.T) {
		items, total, err := schedules.List(owner.ID, 1, 20, ScheduleFilter{})
		require.NoError(t, err)
		assert.EqualValues(t, 4, total)
		assert.Len(t, items, 4)
	})

	t.Run("search is case-insensitive over title and description", func(t *testing.T) {
		items, total, err := schedules.List(owner.ID, 1, 20, ScheduleFilter{Search: "sync"})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		require.Len(t, items, 2)
		assert.Equal(t, "Team Sync", items[0].Title)
		assert.Equal(t, "Lunch", items[1].Title)
	})

	t.Run("priority set", func(t *testing.T) {
		_, total, err := schedules.List(owner.ID, 1, 20, ScheduleFilter{
			Priorities: []models.SchedulePriority{models.PriorityHigh, models.PriorityMedium},
		})
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
	})

	t.Run("date window", func(t *testing.T) {
		start := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
		end := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

		items, total, err := schedules.List(owner.ID, 1, 20, ScheduleFilter{StartDate: &start, EndDate: &end})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		require.Len(t, items, 2)
		assert.True(t, items[0].StartDate.Before(items[1].StartDate))
	})

	t.Run("no matches yields empty list", func(t *testing.T) {
		items, total, err := schedules.List(owner.ID, 1, 20, ScheduleFilter{Search: "nonexistent"})
		require.NoError(t, err)
		assert.EqualValues(t, 0, total)
		assert.Empty(t, items)
	})
}

func TestListPagination(t *testing.T) {
	database := newTestDB(t)
	users := NewUserService(database)
	schedules := NewScheduleService(database)

	owner := newTestUser(t, users, "owner@x.com")

	for day := 1; day <= 5; day++ {
		_, err := schedules.Create(owner.ID, &models.Schedule{
			Title:     "Event",
			StartDate: time.Date(2024, 6, day, 9, 0, 0, 0, time.UTC),
			Priority:  models.PriorityDefault,
			Repeat:    models.RepeatNone,
		})
		require.NoError(t, err)
	}

	items, total, err := schedules.List(owner.ID, 1, 2, ScheduleFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Len(t, items, 2)

	items, total, err = schedules.List(owner.ID, 3, 2, ScheduleFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Len(t, items, 1)

	items, total, err = schedules.List(owner.ID, 4, 2, ScheduleFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Empty(t, items)
}

func TestGetByDateRange(t *testing.T) {
	database := newTestDB(t)
	users := NewUserService(database)
	schedules := NewScheduleService(database)

	owner := newTestUser(t, users, "owner@x.com")

	dates := []time.Time{
		time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC),
	}

	for _, date := range dates {
		_, err := schedules.Create(owner.ID, &models.Schedule{
			Title:     "Event",
			StartDate: date,
			Priority:  models.PriorityDefault,
			Repeat:    models.RepeatNone,
		})
		require.NoError(t, err)
	}

	// Window edges are inclusive.
	items, err := schedules.GetByDateRange(owner.ID,
		time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.True(t, items[0].StartDate.Before(items[1].StartDate))
}

func TestCreateWithReminders(t *testing.T) {
	database := newTestDB(t)
	users := NewUserService(database)
	schedules := NewScheduleService(database)

	owner := newTestUser(t, users, "owner@x.com")

	created, err := schedules.Create(owner.ID, &models.Schedule{
		Title:     "Standup",
		StartDate: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		Priority:  models.PriorityDefault,
		Repeat:    models.RepeatNone,
		Reminders: []models.ScheduleReminder{
			{Type: models.ReminderNotification, MinutesBefore: 10},
			{Type: models.ReminderEmail, MinutesBefore: 60},
		},
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)

	fetched, err := schedules.GetByID(owner.ID, created.ID)
	require.NoError(t, err)
	require.Len(t, fetched.Reminders, 2)

	minutes := []int{fetched.Reminders[0].MinutesBefore, fetched.Reminders[1].MinutesBefore}
	assert.ElementsMatch(t, []int{10, 60}, minutes)
}

func TestUpdateIsPartial(t *testing.T) {
	database := newTestDB(t)
	users := NewUserService(database)
	schedules := NewScheduleService(database)

	owner := newTestUser(t, users, "owner@x.com")

	created, err := schedules.Create(owner.ID, &models.Schedule{
		Title:       "Standup",
		Description: strPtr("daily"),
		StartDate:   time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		EndDate:     timePtr(time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)),
		Priority:    models.PriorityHigh,
		Repeat:      models.RepeatDaily,
		Reminders: []models.ScheduleReminder{
			{Type: models.ReminderNotification, MinutesBefore: 10},
			{Type: models.ReminderEmail, MinutesBefore: 60},
		},
	})
	require.NoError(t, err)

	updated, err := schedules.Update(created.ID, map[string]interface{}{"title": "Renamed"}, nil)
	require.NoError(t, err)

	assert.Equal(t, "Renamed", updated.Title)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "daily", *updated.Description)
	assert.Equal(t, models.PriorityHigh, updated.Priority)
	assert.Equal(t, models.RepeatDaily, updated.Repeat)
	assert.Len(t, updated.Reminders, 2)
}

func TestUpdateRemindersReplace(t *testing.T) {
	database := newTestDB(t)
	users := NewUserService(database)
	schedules := NewScheduleService(database)

	owner := newTestUser(t, users, "owner@x.com")

	created, err := schedules.Create(owner.ID, &models.Schedule{
		Title:     "Standup",
		StartDate: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		Priority:  models.PriorityDefault,
		Repeat:    models.RepeatNone,
		Reminders: []models.ScheduleReminder{
			{Type: models.ReminderNotification, MinutesBefore: 10},
			{Type: models.ReminderEmail, MinutesBefore: 60},
		},
	})
	require.NoError(t, err)

	replacement := []models.ScheduleReminder{{Type: models.ReminderNotification, MinutesBefore: 5}}

	updated, err := schedules.Update(created.ID, nil, &replacement)
	require.NoError(t, err)
	require.Len(t, updated.Reminders, 1)
	assert.Equal(t, 5, updated.Reminders[0].MinutesBefore)

	// Explicit empty list removes everything.
	empty := []models.ScheduleReminder{}

	updated, err = schedules.Update(created.ID, nil, &empty)
	require.NoError(t, err)
	assert.Empty(t, updated.Reminders)

	var count int64
	require.NoError(t, database.Model(&models.ScheduleReminder{}).Where("schedule_id = ?", created.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestDeleteRemovesReminders(t *testing.T) {
	database := newTestDB(t)
	users := NewUserService(database)
	schedules := NewScheduleService(database)

	owner := newTestUser(t, users, "owner@x.com")

	created, err := schedules.Create(owner.ID, &models.Schedule{
		Title:     "Standup",
		StartDate: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		Priority:  models.PriorityDefault,
		Repeat:    models.RepeatNone,
		Reminders: []models.ScheduleReminder{{Type: models.ReminderNotification, MinutesBefore: 10}},
	})
	require.NoError(t, err)

	require.NoError(t, schedules.Delete(created.ID))

	_, err = schedules.GetByID(owner.ID, created.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var count int64
	require.NoError(t, database.Model(&models.ScheduleReminder{}).Where("schedule_id = ?", created.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)

	assert.ErrorIs(t, schedules.Delete(created.ID), gorm.ErrRecordNotFound)
}
