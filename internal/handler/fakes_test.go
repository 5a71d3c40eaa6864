package handler

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/shift-board/internal/calendar"
	"github.com/sysu-ecnc-dev/shift-board/internal/domain"
	"github.com/sysu-ecnc-dev/shift-board/internal/repository"
)

// fakeRepository 在内存中模拟 repository 的语义，包括已发布周的写保护
type fakeRepository struct {
	mu     sync.Mutex
	users  map[int64]*domain.User
	weeks  map[string]*domain.Week
	shifts map[string]*domain.Shift

	deleteErr error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		users:  make(map[int64]*domain.User),
		weeks:  make(map[string]*domain.Week),
		shifts: make(map[string]*domain.Shift),
	}
}

func (f *fakeRepository) addWeek(id string, weekNumber, year int, status domain.WeekStatus) *domain.Week {
	week := &domain.Week{ID: id, WeekNumber: weekNumber, Year: year, Status: status, Version: 1}
	f.weeks[id] = week
	return week
}

func (f *fakeRepository) addShift(id, weekID, date string) {
	f.shifts[id] = &domain.Shift{
		ID:        id,
		Name:      "Front Desk",
		Date:      date,
		StartTime: "09:00",
		EndTime:   "12:00",
		Week:      domain.Week{ID: weekID},
		Version:   1,
	}
}

func (f *fakeRepository) GetUserByID(id int64) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (f *fakeRepository) GetUserByUsername(username string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, user := range f.users {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeRepository) GetActiveStaff() ([]*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	staff := []*domain.User{}
	for _, user := range f.users {
		if user.Role == domain.RoleStaff && user.IsActive {
			clone := *user
			staff = append(staff, &clone)
		}
	}
	return staff, nil
}

func (f *fakeRepository) shiftWithWeek(shift *domain.Shift) *domain.Shift {
	clone := *shift
	clone.Week = *f.weeks[shift.Week.ID]
	return &clone
}

func (f *fakeRepository) GetShiftsByWeek(weekNumber, year int) ([]*domain.Shift, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	shifts := []*domain.Shift{}
	for _, shift := range f.shifts {
		week := f.weeks[shift.Week.ID]
		if week.WeekNumber == weekNumber && week.Year == year {
			shifts = append(shifts, f.shiftWithWeek(shift))
		}
	}
	return shifts, nil
}

func (f *fakeRepository) GetShiftByID(id string) (*domain.Shift, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	shift, ok := f.shifts[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return f.shiftWithWeek(shift), nil
}

// ensureWeek 必须在持有锁时调用
func (f *fakeRepository) ensureWeek(date string) (*domain.Week, error) {
	day, err := time.Parse(calendar.DateLayout, date)
	if err != nil {
		return nil, err
	}
	weekNumber, year := calendar.CalculateWeekAndYear(day)

	for _, week := range f.weeks {
		if week.WeekNumber == weekNumber && week.Year == year {
			return week, nil
		}
	}
	return f.addWeek(uuid.NewString(), weekNumber, year, domain.WeekStatusDraft), nil
}

func (f *fakeRepository) CreateShift(shift *domain.Shift) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	week, err := f.ensureWeek(shift.Date)
	if err != nil {
		return err
	}
	if !week.IsDraft() {
		return repository.ErrWeekPublished
	}

	shift.ID = uuid.NewString()
	shift.Week = *week
	shift.Version = 1
	stored := *shift
	f.shifts[shift.ID] = &stored
	return nil
}

func (f *fakeRepository) UpdateShift(shift *domain.Shift) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.shifts[shift.ID]
	if !ok || stored.Version != shift.Version {
		return sql.ErrNoRows
	}
	if !f.weeks[stored.Week.ID].IsDraft() {
		return repository.ErrWeekPublished
	}

	week, err := f.ensureWeek(shift.Date)
	if err != nil {
		return err
	}
	if !week.IsDraft() {
		return repository.ErrWeekPublished
	}

	shift.Week = *week
	shift.Version++
	updated := *shift
	f.shifts[shift.ID] = &updated
	return nil
}

func (f *fakeRepository) DeleteShift(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.deleteErr != nil {
		return f.deleteErr
	}

	shift, ok := f.shifts[id]
	if !ok {
		return sql.ErrNoRows
	}
	if !f.weeks[shift.Week.ID].IsDraft() {
		return repository.ErrWeekPublished
	}

	delete(f.shifts, id)
	return nil
}

func (f *fakeRepository) GetWeekByID(id string) (*domain.Week, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	week, ok := f.weeks[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *week
	return &clone, nil
}

func (f *fakeRepository) CountShiftsByWeekID(id string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := 0
	for _, shift := range f.shifts {
		if shift.Week.ID == id {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepository) PublishWeek(week *domain.Week) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.weeks[week.ID]
	if !ok || !stored.IsDraft() || stored.Version != week.Version {
		return sql.ErrNoRows
	}

	stored.Status = domain.WeekStatusPublished
	stored.UpdatedAt = time.Date(2024, time.January, 2, 10, 0, 0, 0, time.UTC)
	stored.Version++
	*week = *stored
	return nil
}

type fakePublisher struct {
	mu   sync.Mutex
	keys []string
	msgs []amqp.Publishing
	err  error
}

func (p *fakePublisher) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return p.err
	}
	p.keys = append(p.keys, key)
	p.msgs = append(p.msgs, msg)
	return nil
}
