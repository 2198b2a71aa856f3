package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/planner/internal/common"
	"github.com/dmitrijs2005/planner/internal/models"
	"github.com/dmitrijs2005/planner/internal/repositories/tasks"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// TaskEdit carries the editable fields of a task. Nil date/start/end clear
// the corresponding value.
type TaskEdit struct {
	Content   string
	Priority  models.Priority
	Date      *string
	StartTime *string
	EndTime   *string
}

// TaskService manages the tasks of one user.
type TaskService interface {
	Create(ctx context.Context, userID int64, content string, priority models.Priority, date string, start, end *string) (*models.Task, error)
	Get(ctx context.Context, userID, id int64) (*models.Task, error)
	List(ctx context.Context, userID int64) ([]models.Task, error)
	ListByDate(ctx context.Context, userID int64, date string) ([]models.Task, error)
	Today(ctx context.Context, userID int64) ([]models.Task, error)
	ListByMonth(ctx context.Context, userID int64, yearMonth string) ([]models.Task, error)
	Overdue(ctx context.Context, userID int64) ([]models.Task, error)
	Update(ctx context.Context, userID, id int64, edit TaskEdit) error
	SetCompleted(ctx context.Context, userID, id int64, completed bool) error
	Delete(ctx context.Context, userID, id int64) error
}

type taskService struct {
	db  *sql.DB
	now func() time.Time
}

// NewTaskService constructs a TaskService over the given store.
func NewTaskService(db *sql.DB) TaskService {
	return &taskService{db: db, now: time.Now}
}

func (s *taskService) repo() tasks.Repository {
	return tasks.NewSQLiteRepository(s.db)
}

// Create requires a date; a task enters the system bound to a calendar day.
func (s *taskService) Create(ctx context.Context, userID int64, content string, priority models.Priority, date string, start, end *string) (*models.Task, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: task content must not be empty", common.ErrorValidation)
	}
	if date == "" {
		return nil, common.ErrorMissingTaskDate
	}
	if err := validateSchedule(&date, start, end); err != nil {
		return nil, err
	}
	if priority == "" {
		priority = models.PriorityLow
	}

	repo := s.repo()
	id, err := repo.Create(ctx, userID, uuid.NewString(), content, priority, &date, start, end)
	if err != nil {
		return nil, fmt.Errorf("error creating task: %w", err)
	}
	return repo.GetByID(ctx, userID, id)
}

func (s *taskService) Get(ctx context.Context, userID, id int64) (*models.Task, error) {
	return s.repo().GetByID(ctx, userID, id)
}

func (s *taskService) List(ctx context.Context, userID int64) ([]models.Task, error) {
	return s.repo().ListByUser(ctx, userID)
}

func (s *taskService) ListByDate(ctx context.Context, userID int64, date string) ([]models.Task, error) {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, fmt.Errorf("%w: bad date %q", common.ErrorValidation, date)
	}
	return s.repo().ListByDate(ctx, userID, date)
}

func (s *taskService) Today(ctx context.Context, userID int64) ([]models.Task, error) {
	return s.repo().ListByDate(ctx, userID, s.now().Format(dateLayout))
}

func (s *taskService) ListByMonth(ctx context.Context, userID int64, yearMonth string) ([]models.Task, error) {
	if _, err := time.Parse("2006-01", yearMonth); err != nil {
		return nil, fmt.Errorf("%w: bad month %q", common.ErrorValidation, yearMonth)
	}
	return s.repo().ListByMonth(ctx, userID, yearMonth)
}

func (s *taskService) Overdue(ctx context.Context, userID int64) ([]models.Task, error) {
	return s.repo().ListOverdue(ctx, userID, s.now().Format(dateLayout))
}

func (s *taskService) Update(ctx context.Context, userID, id int64, edit TaskEdit) error {
	content := strings.TrimSpace(edit.Content)
	if content == "" {
		return fmt.Errorf("%w: task content must not be empty", common.ErrorValidation)
	}
	if err := validateSchedule(edit.Date, edit.StartTime, edit.EndTime); err != nil {
		return err
	}
	priority := edit.Priority
	if priority == "" {
		priority = models.PriorityLow
	}
	return s.repo().Update(ctx, userID, id, content, priority, edit.Date, edit.StartTime, edit.EndTime)
}

func (s *taskService) SetCompleted(ctx context.Context, userID, id int64, completed bool) error {
	return s.repo().SetCompleted(ctx, userID, id, completed)
}

func (s *taskService) Delete(ctx context.Context, userID, id int64) error {
	return s.repo().Delete(ctx, userID, id)
}

// validateSchedule checks the calendar fields of a task: the date (when
// present) must be a real day, times must be HH:MM, an end time requires a
// start time, and start must come strictly before end.
func validateSchedule(date, start, end *string) error {
	if date != nil {
		if _, err := time.Parse(dateLayout, *date); err != nil {
			return fmt.Errorf("%w: bad date %q", common.ErrorValidation, *date)
		}
	}
	for _, v := range []*string{start, end} {
		if v == nil {
			continue
		}
		if _, err := time.Parse(timeLayout, *v); err != nil {
			return fmt.Errorf("%w: bad time %q", common.ErrorValidation, *v)
		}
	}
	if end != nil {
		if start == nil {
			return common.ErrorInvalidTimeRange
		}
		if *start >= *end {
			return common.ErrorInvalidTimeRange
		}
	}
	return nil
}
