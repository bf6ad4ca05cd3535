package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ezcal-dev/ezcal/internal/config"
	"github.com/ezcal-dev/ezcal/internal/models"
	"github.com/ezcal-dev/ezcal/internal/services"
	"github.com/ezcal-dev/ezcal/internal/storage"
	"github.com/ezcal-dev/ezcal/internal/types"
	"github.com/ezcal-dev/ezcal/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReminderInput struct {
	Type          models.ReminderType `json:"type" binding:"omitempty,oneof=notification email"`
	MinutesBefore *int                `json:"minutesBefore" binding:"omitempty,min=0,max=10080"`
}

func (r ReminderInput) toModel() models.ScheduleReminder {
	reminder := models.ScheduleReminder{
		Type:          models.ReminderNotification,
		MinutesBefore: 30,
	}

	if r.Type != "" {
		reminder.Type = r.Type
	}

	if r.MinutesBefore != nil {
		reminder.MinutesBefore = *r.MinutesBefore
	}

	return reminder
}

type CreateScheduleRequest struct {
	Title         string                  `json:"title" binding:"required,min=1,max=200"`
	Description   *string                 `json:"description" binding:"omitempty,max=2000"`
	StartDate     string                  `json:"startDate" binding:"required"`
	EndDate       *string                 `json:"endDate"`
	AllDay        bool                    `json:"allDay"`
	Priority      models.SchedulePriority `json:"priority" binding:"omitempty,oneof=high medium low default"`
	Color         *string                 `json:"color" binding:"omitempty,max=20"`
	Location      *string                 `json:"location" binding:"omitempty,max=500"`
	Repeat        models.ScheduleRepeat   `json:"repeat" binding:"omitempty,oneof=none daily weekly monthly yearly"`
	RepeatEndDate *string                 `json:"repeatEndDate"`
	Reminders     []ReminderInput         `json:"reminders" binding:"omitempty,dive"`
}

type UpdateScheduleRequest struct {
	Title         *string                  `json:"title" binding:"omitempty,min=1,max=200"`
	Description   *string                  `json:"description" binding:"omitempty,max=2000"`
	StartDate     *string                  `json:"startDate"`
	EndDate       *string                  `json:"endDate"`
	AllDay        *bool                    `json:"allDay"`
	Priority      *models.SchedulePriority `json:"priority" binding:"omitempty,oneof=high medium low default"`
	Color         *string                  `json:"color" binding:"omitempty,max=20"`
	Location      *string                  `json:"location" binding:"omitempty,max=500"`
	Repeat        *models.ScheduleRepeat   `json:"repeat" binding:"omitempty,oneof=none daily weekly monthly yearly"`
	RepeatEndDate *string                  `json:"repeatEndDate"`
	Reminders     *[]ReminderInput         `json:"reminders" binding:"omitempty,dive"`
}

type ScheduleHandler struct {
	cfg       *config.Config
	schedules *services.ScheduleService
	store     storage.BlobStore
}

func NewScheduleHandler(cfg *config.Config, schedules *services.ScheduleService, store storage.BlobStore) *ScheduleHandler {
	return &ScheduleHandler{cfg: cfg, schedules: schedules, store: store}
}

func (h *ScheduleHandler) List(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	page, err := strconv.Atoi(ctx.DefaultQuery("page", "1"))

	if err != nil || page < 1 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid page"})
		return
	}

	pageSize, err := strconv.Atoi(ctx.DefaultQuery("pageSize", "20"))

	if err != nil || pageSize < 1 || pageSize > 100 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "pageSize must be between 1 and 100"})
		return
	}

	var filter services.ScheduleFilter

	if startDate := ctx.Query("startDate"); startDate != "" {
		parsed, err := utils.ParseDateTime(startDate)

		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid startDate"})
			return
		}

		filter.StartDate = &parsed
	}

	if endDate := ctx.Query("endDate"); endDate != "" {
		parsed, err := utils.ParseDateTime(endDate)

		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid endDate"})
			return
		}

		filter.EndDate = &parsed
	}

	priorities := append(ctx.QueryArray("priority"), ctx.QueryArray("priority[]")...)

	for _, value := range priorities {
		priority := models.SchedulePriority(value)

		if !priority.Valid() {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority: " + value})
			return
		}

		filter.Priorities = append(filter.Priorities, priority)
	}

	filter.Search = ctx.Query("search")

	schedules, total, err := h.schedules.List(userID, page, pageSize, filter)

	if err != nil {
		log.Printf("Failed to list schedules: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	totalPages := (total + int64(pageSize) - 1) / int64(pageSize)

	ctx.JSON(http.StatusOK, types.ScheduleListResponse{
		Items:      schedules,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	})
}

func (h *ScheduleHandler) Range(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	startDate, err := utils.ParseDateTime(ctx.Query("startDate"))

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid startDate"})
		return
	}

	endDate, err := utils.ParseDateTime(ctx.Query("endDate"))

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid endDate"})
		return
	}

	schedules, err := h.schedules.GetByDateRange(userID, startDate, endDate)

	if err != nil {
		log.Printf("Failed to fetch schedules by range: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": schedules})
}

func (h *ScheduleHandler) Get(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	scheduleID, err := uuid.Parse(ctx.Param("schedule_id"))

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid schedule ID"})
		return
	}

	schedule, err := h.schedules.GetByID(userID, scheduleID)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Schedule not found"})
		} else {
			log.Printf("Failed to fetch schedule: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": schedule})
}

func (h *ScheduleHandler) Create(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateScheduleRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	startDate, err := utils.ParseDateTime(req.StartDate)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid startDate"})
		return
	}

	endDate, err := parseOptionalDate(req.EndDate)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid endDate"})
		return
	}

	repeatEndDate, err := parseOptionalDate(req.RepeatEndDate)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid repeatEndDate"})
		return
	}

	schedule := models.Schedule{
		Title:         req.Title,
		Description:   req.Description,
		StartDate:     startDate,
		EndDate:       endDate,
		AllDay:        req.AllDay,
		Priority:      req.Priority,
		Color:         req.Color,
		Location:      req.Location,
		Repeat:        req.Repeat,
		RepeatEndDate: repeatEndDate,
	}

	if schedule.Priority == "" {
		schedule.Priority = models.PriorityDefault
	}

	if schedule.Repeat == "" {
		schedule.Repeat = models.RepeatNone
	}

	for _, reminder := range req.Reminders {
		schedule.Reminders = append(schedule.Reminders, reminder.toModel())
	}

	created, err := h.schedules.Create(userID, &schedule)

	if err != nil {
		log.Printf("Failed to create schedule: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"data": created})
}

// CreateWithImage handles the multipart variant: the image is uploaded to the
// blob store first and the schedule is created referencing the resulting URL.
func (h *ScheduleHandler) CreateWithImage(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	title := strings.TrimSpace(ctx.PostForm("title"))

	if title == "" || len(title) > 200 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "title must be between 1 and 200 characters"})
		return
	}

	startDate, err := utils.ParseDateTime(ctx.PostForm("startDate"))

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid startDate"})
		return
	}

	endDate, err := parseOptionalDate(formValue(ctx, "endDate"))

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid endDate"})
		return
	}

	description := formValue(ctx, "description")

	if description != nil && len(*description) > 2000 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "description must be at most 2000 characters"})
		return
	}

	priority := models.PriorityDefault

	if value := strings.TrimSpace(ctx.PostForm("priority")); value != "" {
		priority = models.SchedulePriority(value)

		if !priority.Valid() {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority: " + value})
			return
		}
	}

	allDay := parseFormBool(ctx.PostForm("allDay"))

	fileHeader, err := ctx.FormFile("image")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}

	if fileHeader.Size > h.cfg.MaxUploadSize {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "File size exceeds the allowed limit"})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")

	if !contentTypeAllowed(contentType, h.cfg.AllowedImageTypes) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "File type not allowed: " + contentType})
		return
	}

	file, err := fileHeader.Open()

	if err != nil {
		log.Printf("Failed to open uploaded file: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)

	if err != nil {
		log.Printf("Failed to read uploaded file: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	imageURL, err := h.store.Upload(ctx.Request.Context(), data, contentType, userID, fileHeader.Filename)

	if err != nil {
		log.Printf("Failed to upload image: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload image"})
		return
	}

	schedule := models.Schedule{
		Title:       title,
		Description: description,
		StartDate:   startDate,
		EndDate:     endDate,
		AllDay:      allDay,
		Priority:    priority,
		Color:       formValue(ctx, "color"),
		Location:    formValue(ctx, "location"),
		ImageURL:    &imageURL,
		Repeat:      models.RepeatNone,
	}

	created, err := h.schedules.Create(userID, &schedule)

	if err != nil {
		log.Printf("Failed to create schedule: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"data": created})
}

func (h *ScheduleHandler) Update(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	scheduleID, err := uuid.Parse(ctx.Param("schedule_id"))

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid schedule ID"})
		return
	}

	var req UpdateScheduleRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	schedule, err := h.schedules.GetByID(userID, scheduleID)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Schedule not found"})
		} else {
			log.Printf("Failed to fetch schedule: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	updates := make(map[string]interface{})

	if req.Title != nil {
		updates["title"] = *req.Title
	}

	if req.Description != nil {
		updates["description"] = *req.Description
	}

	if req.StartDate != nil {
		parsed, err := utils.ParseDateTime(*req.StartDate)

		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid startDate"})
			return
		}

		updates["start_date"] = parsed
	}

	if req.EndDate != nil {
		parsed, err := utils.ParseDateTime(*req.EndDate)

		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid endDate"})
			return
		}

		updates["end_date"] = parsed
	}

	if req.AllDay != nil {
		updates["all_day"] = *req.AllDay
	}

	if req.Priority != nil {
		updates["priority"] = *req.Priority
	}

	if req.Color != nil {
		updates["color"] = *req.Color
	}

	if req.Location != nil {
		updates["location"] = *req.Location
	}

	if req.Repeat != nil {
		updates["repeat"] = *req.Repeat
	}

	if req.RepeatEndDate != nil {
		parsed, err := utils.ParseDateTime(*req.RepeatEndDate)

		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid repeatEndDate"})
			return
		}

		updates["repeat_end_date"] = parsed
	}

	var reminders *[]models.ScheduleReminder

	if req.Reminders != nil {
		converted := make([]models.ScheduleReminder, 0, len(*req.Reminders))

		for _, reminder := range *req.Reminders {
			converted = append(converted, reminder.toModel())
		}

		reminders = &converted
	}

	updated, err := h.schedules.Update(schedule.ID, updates, reminders)

	if err != nil {
		log.Printf("Failed to update schedule: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": updated})
}

func (h *ScheduleHandler) Delete(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	scheduleID, err := uuid.Parse(ctx.Param("schedule_id"))

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid schedule ID"})
		return
	}

	schedule, err := h.schedules.GetByID(userID, scheduleID)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Schedule not found"})
		} else {
			log.Printf("Failed to fetch schedule: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	// Blob cleanup is best effort; an orphaned blob is accepted over a
	// schedule that cannot be deleted.
	if schedule.ImageURL != nil {
		if err := h.store.Delete(ctx.Request.Context(), *schedule.ImageURL); err != nil {
			log.Printf("Failed to delete image %s: %v", *schedule.ImageURL, err)
		}
	}

	if err := h.schedules.Delete(schedule.ID); err != nil {
		log.Printf("Failed to delete schedule: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Schedule deleted successfully", "success": true})
}

func parseOptionalDate(value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}

	parsed, err := utils.ParseDateTime(*value)

	if err != nil {
		return nil, err
	}

	return &parsed, nil
}

// formValue normalizes blank form fields to absent.
func formValue(ctx *gin.Context, key string) *string {
	value := strings.TrimSpace(ctx.PostForm(key))

	if value == "" {
		return nil
	}

	return &value
}

func parseFormBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes":
		return true
	}
	return false
}

func contentTypeAllowed(contentType string, allowed []string) bool {
	for _, candidate := range allowed {
		if contentType == candidate {
			return true
		}
	}
	return false
}
