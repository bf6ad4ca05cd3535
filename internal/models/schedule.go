package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SchedulePriority string

const (
	PriorityHigh    SchedulePriority = "high"
	PriorityMedium  SchedulePriority = "medium"
	PriorityLow     SchedulePriority = "low"
	PriorityDefault SchedulePriority = "default"
)

type ScheduleRepeat string

const (
	RepeatNone    ScheduleRepeat = "none"
	RepeatDaily   ScheduleRepeat = "daily"
	RepeatWeekly  ScheduleRepeat = "weekly"
	RepeatMonthly ScheduleRepeat = "monthly"
	RepeatYearly  ScheduleRepeat = "yearly"
)

type ReminderType string

const (
	ReminderNotification ReminderType = "notification"
	ReminderEmail        ReminderType = "email"
)

func (p SchedulePriority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow, PriorityDefault:
		return true
	}
	return false
}

func (r ScheduleRepeat) Valid() bool {
	switch r {
	case RepeatNone, RepeatDaily, RepeatWeekly, RepeatMonthly, RepeatYearly:
		return true
	}
	return false
}

func (t ReminderType) Valid() bool {
	switch t {
	case ReminderNotification, ReminderEmail:
		return true
	}
	return false
}

type Schedule struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID        `gorm:"type:uuid;not null;index" json:"userId"`
	Title         string           `gorm:"size:200;not null" json:"title"`
	Description   *string          `gorm:"type:text" json:"description"`
	StartDate     time.Time        `gorm:"not null;index" json:"startDate"`
	EndDate       *time.Time       `json:"endDate"`
	AllDay        bool             `gorm:"default:false" json:"allDay"`
	Priority      SchedulePriority `gorm:"size:20;default:default" json:"priority"`
	Color         *string          `gorm:"size:20" json:"color"`
	Location      *string          `gorm:"size:500" json:"location"`
	ImageURL      *string          `gorm:"size:500" json:"imageUrl"`
	Repeat        ScheduleRepeat   `gorm:"size:20;default:none" json:"repeat"`
	RepeatEndDate *time.Time       `json:"repeatEndDate"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`

	// Relationships
	User      User               `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	Reminders []ScheduleReminder `gorm:"foreignKey:ScheduleID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"reminders"`
}

func (s *Schedule) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type ScheduleReminder struct {
	ID            uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	ScheduleID    uuid.UUID    `gorm:"type:uuid;not null;index" json:"-"`
	Type          ReminderType `gorm:"size:20;default:notification" json:"type"`
	MinutesBefore int          `gorm:"not null" json:"minutesBefore"`
	CreatedAt     time.Time    `json:"-"`
}

func (r *ScheduleReminder) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
