package services

import (
	"strings"
	"time"

	"github.com/ezcal-dev/ezcal/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ScheduleFilter struct {
	StartDate  *time.Time
	EndDate    *time.Time
	Priorities []models.SchedulePriority
	Search     string
}

type ScheduleService struct {
	db *gorm.DB
}

func NewScheduleService(db *gorm.DB) *ScheduleService {
	return &ScheduleService{db: db}
}

// GetByID returns gorm.ErrRecordNotFound both for an absent schedule and for
// one owned by a different user, so existence never leaks across owners.
func (s *ScheduleService) GetByID(ownerID, scheduleID uuid.UUID) (*models.Schedule, error) {
	var schedule models.Schedule

	err := s.db.Preload("Reminders").
		Where("id = ? AND user_id = ?", scheduleID, ownerID).
		First(&schedule).Error

	if err != nil {
		return nil, err
	}

	ensureReminders(&schedule)

	return &schedule, nil
}

// List returns one page of the owner's schedules plus the total count of rows
// matching the filter before pagination. Ordering is always by start date
// ascending. Page is 1-indexed.
func (s *ScheduleService) List(ownerID uuid.UUID, page, pageSize int, filter ScheduleFilter) ([]models.Schedule, int64, error) {
	var total int64

	if err := s.filtered(ownerID, filter).Model(&models.Schedule{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var schedules []models.Schedule

	err := s.filtered(ownerID, filter).Preload("Reminders").
		Order("start_date ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&schedules).Error

	if err != nil {
		return nil, 0, err
	}

	if schedules == nil {
		schedules = []models.Schedule{}
	}

	for i := range schedules {
		ensureReminders(&schedules[i])
	}

	return schedules, total, nil
}

// GetByDateRange returns all of the owner's schedules whose start date falls
// inside the inclusive window, ordered by start date, unpaginated.
func (s *ScheduleService) GetByDateRange(ownerID uuid.UUID, start, end time.Time) ([]models.Schedule, error) {
	var schedules []models.Schedule

	err := s.db.Preload("Reminders").
		Where("user_id = ? AND start_date >= ? AND start_date <= ?", ownerID, start, end).
		Order("start_date ASC").
		Find(&schedules).Error

	if err != nil {
		return nil, err
	}

	if schedules == nil {
		schedules = []models.Schedule{}
	}

	for i := range schedules {
		ensureReminders(&schedules[i])
	}

	return schedules, nil
}

func (s *ScheduleService) Create(ownerID uuid.UUID, schedule *models.Schedule) (*models.Schedule, error) {
	schedule.UserID = ownerID

	if err := s.db.Create(schedule).Error; err != nil {
		return nil, err
	}

	var created models.Schedule

	if err := s.db.Preload("Reminders").First(&created, "id = ?", schedule.ID).Error; err != nil {
		return nil, err
	}

	ensureReminders(&created)

	return &created, nil
}

// Update applies only the keys present in updates. A non-nil reminders slice,
// including an empty one, fully replaces the schedule's existing reminders.
func (s *ScheduleService) Update(scheduleID uuid.UUID, updates map[string]interface{}, reminders *[]models.ScheduleReminder) (*models.Schedule, error) {
	var schedule models.Schedule

	if err := s.db.First(&schedule, "id = ?", scheduleID).Error; err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&schedule).Updates(updates).Error; err != nil {
				return err
			}
		}

		if reminders != nil {
			if err := tx.Where("schedule_id = ?", scheduleID).Delete(&models.ScheduleReminder{}).Error; err != nil {
				return err
			}

			for i := range *reminders {
				(*reminders)[i].ID = uuid.Nil
				(*reminders)[i].ScheduleID = scheduleID
			}

			if len(*reminders) > 0 {
				if err := tx.Create(reminders).Error; err != nil {
					return err
				}
			}
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	var updated models.Schedule

	if err := s.db.Preload("Reminders").First(&updated, "id = ?", scheduleID).Error; err != nil {
		return nil, err
	}

	ensureReminders(&updated)

	return &updated, nil
}

// Delete removes the schedule and its reminders. Any attached blob is the
// caller's responsibility; the two deletions are not transactional with each
// other.
func (s *ScheduleService) Delete(scheduleID uuid.UUID) error {
	var schedule models.Schedule

	if err := s.db.First(&schedule, "id = ?", scheduleID).Error; err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("schedule_id = ?", scheduleID).Delete(&models.ScheduleReminder{}).Error; err != nil {
			return err
		}

		return tx.Delete(&schedule).Error
	})
}

// GORM leaves a preloaded has-many nil when no rows match; responses promise
// an empty array instead.
func ensureReminders(schedules ...*models.Schedule) {
	for _, schedule := range schedules {
		if schedule.Reminders == nil {
			schedule.Reminders = []models.ScheduleReminder{}
		}
	}
}

func (s *ScheduleService) filtered(ownerID uuid.UUID, filter ScheduleFilter) *gorm.DB {
	query := s.db.Where("user_id = ?", ownerID)

	if filter.StartDate != nil {
		query = query.Where("start_date >= ?", *filter.StartDate)
	}

	if filter.EndDate != nil {
		query = query.Where("start_date <= ?", *filter.EndDate)
	}

	if len(filter.Priorities) > 0 {
		query = query.Where("priority IN ?", filter.Priorities)
	}

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	return query
}
