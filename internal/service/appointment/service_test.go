package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queueflow/queueflow-api/internal/model"
	"github.com/queueflow/queueflow-api/internal/repository"
	"github.com/queueflow/queueflow-api/internal/service/event"
	"github.com/queueflow/queueflow-api/internal/service/schedule"
	apperrors "github.com/queueflow/queueflow-api/pkg/errors"
	"github.com/queueflow/queueflow-api/pkg/logger"
	"github.com/queueflow/queueflow-api/pkg/metrics"
)

var testMetrics = metrics.New("appointment_test")

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *fakeUserRepo) add(hours model.BusinessHours) *model.User {
	u := &model.User{Role: model.RoleUser, BusinessHours: hours, Email: "owner@example.com"}
	u.ID = uuid.New()
	r.users[u.ID] = u
	return u
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	user.ID = uuid.New()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(context.Context, string) (*model.User, error) {
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetBySlug(context.Context, string) (*model.User, error) {
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) List(context.Context) ([]*model.User, error) { return nil, nil }

func (r *fakeUserRepo) UpdateRole(context.Context, uuid.UUID, string) (*model.User, error) {
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) UpdateBusinessHours(context.Context, uuid.UUID, model.BusinessHours) (*model.User, error) {
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) ResetDailyCountIfNeeded(_ context.Context, id uuid.UUID, startOfDay time.Time) error {
	if u, ok := r.users[id]; ok && u.LastResetDate.Before(startOfDay) {
		u.DailyPatients = 0
		u.LastResetDate = startOfDay
	}
	return nil
}

func (r *fakeUserRepo) IncrementPatientCounts(_ context.Context, id uuid.UUID) error {
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.TotalPatients++
	u.DailyPatients++
	return nil
}

func (r *fakeUserRepo) IncrementCanceledCount(_ context.Context, id uuid.UUID) error {
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.CanceledPatients++
	return nil
}

type fakePatientRepo struct {
	patients map[uuid.UUID]*model.Patient
}

func newFakePatientRepo() *fakePatientRepo {
	return &fakePatientRepo{patients: make(map[uuid.UUID]*model.Patient)}
}

func (r *fakePatientRepo) Create(_ context.Context, patient *model.Patient) error {
	patient.ID = uuid.New()
	r.patients[patient.ID] = patient
	return nil
}

func (r *fakePatientRepo) Get(_ context.Context, id uuid.UUID, owner *uuid.UUID) (*model.Patient, error) {
	p, ok := r.patients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if owner != nil && p.UserID != *owner {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

func (r *fakePatientRepo) SetPostConsultation(_ context.Context, id uuid.UUID, at time.Time) error {
	if p, ok := r.patients[id]; ok {
		p.PostConsult = &at
	}
	return nil
}

func (r *fakePatientRepo) SetCompletionTime(_ context.Context, id uuid.UUID, at time.Time) error {
	if p, ok := r.patients[id]; ok {
		p.CompletionTime = &at
	}
	return nil
}

func (r *fakePatientRepo) MarkCanceled(_ context.Context, id uuid.UUID, selfCanceled bool) error {
	if p, ok := r.patients[id]; ok {
		p.Canceled = true
		p.SelfCanceled = p.SelfCanceled || selfCanceled
	}
	return nil
}

func (r *fakePatientRepo) ResetEntry(_ context.Context, id uuid.UUID, at time.Time) error {
	if p, ok := r.patients[id]; ok {
		p.EntryTime = at
		p.VisitDate = at
	}
	return nil
}

type fakeAppointmentRepo struct {
	appointments []*model.Appointment
}

func (r *fakeAppointmentRepo) Create(_ context.Context, appt *model.Appointment) error {
	for _, existing := range r.appointments {
		if existing.UserID == appt.UserID &&
			existing.Status == model.AppointmentStatusScheduled &&
			existing.StartTime.Equal(appt.StartTime) {
			return repository.ErrDuplicate
		}
	}
	appt.ID = uuid.New()
	r.appointments = append(r.appointments, appt)
	return nil
}

func (r *fakeAppointmentRepo) ExistsScheduledAt(_ context.Context, userID uuid.UUID, startTime time.Time) (bool, error) {
	for _, a := range r.appointments {
		if a.UserID == userID && a.Status == model.AppointmentStatusScheduled && a.StartTime.Equal(startTime) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAppointmentRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]*model.AppointmentDetail, error) {
	var out []*model.AppointmentDetail
	for _, a := range r.appointments {
		if a.UserID == userID {
			out = append(out, &model.AppointmentDetail{Appointment: *a})
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) ListScheduledBetween(_ context.Context, userID uuid.UUID, from, to time.Time) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, a := range r.appointments {
		if a.UserID == userID && a.Status == model.AppointmentStatusScheduled &&
			!a.StartTime.Before(from) && a.StartTime.Before(to) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) Transition(_ context.Context, id, userID uuid.UUID, from, to model.AppointmentStatus) (*model.Appointment, error) {
	for _, a := range r.appointments {
		if a.ID == id && a.UserID == userID && a.Status == from {
			a.Status = to
			return a, nil
		}
	}
	return nil, repository.ErrNotFound
}

type fakeQueueRepo struct {
	entries []*model.QueueEntry
}

func (r *fakeQueueRepo) Create(_ context.Context, entry *model.QueueEntry) error {
	entry.ID = uuid.New()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeQueueRepo) Transition(context.Context, uuid.UUID, model.QueueEntryStatus, model.QueueEntryStatus, *uuid.UUID) (*model.QueueEntry, error) {
	return nil, repository.ErrNotFound
}

func (r *fakeQueueRepo) ListByStatus(context.Context, *uuid.UUID, model.QueueEntryStatus) ([]*model.QueueEntryDetail, error) {
	return nil, nil
}

func (r *fakeQueueRepo) ListAll(context.Context, *uuid.UUID) ([]*model.QueueEntryDetail, error) {
	return nil, nil
}

func (r *fakeQueueRepo) CountByStatus(context.Context, uuid.UUID, model.QueueEntryStatus) (int, error) {
	return 0, nil
}

func (r *fakeQueueRepo) PublicWaitlist(context.Context, uuid.UUID) ([]*model.PublicQueueEntry, error) {
	return nil, nil
}

type fakeOutboxRepo struct {
	events []*model.OutboxEvent
}

func (r *fakeOutboxRepo) Create(_ context.Context, evt *model.OutboxEvent) error {
	evt.ID = uuid.New()
	r.events = append(r.events, evt)
	return nil
}

func (r *fakeOutboxRepo) GetPendingEvents(context.Context, int) ([]*model.OutboxEvent, error) {
	return nil, nil
}

func (r *fakeOutboxRepo) MarkProcessed(context.Context, uuid.UUID) error { return nil }

func (r *fakeOutboxRepo) MarkFailed(context.Context, uuid.UUID, string, int) error { return nil }

type fakeEmail struct {
	sent int
}

func (f *fakeEmail) SendBookingNotification(context.Context, *model.User, *model.Patient, *model.Appointment) error {
	f.sent++
	return nil
}

type fixture struct {
	svc      *Service
	users    *fakeUserRepo
	patients *fakePatientRepo
	appts    *fakeAppointmentRepo
	queue    *fakeQueueRepo
	email    *fakeEmail
	owner    *model.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	users := newFakeUserRepo()
	patients := newFakePatientRepo()
	appts := &fakeAppointmentRepo{}
	queue := &fakeQueueRepo{}
	outbox := &fakeOutboxRepo{}
	mail := &fakeEmail{}
	logg := logger.NewLogger(nil)

	owner := users.add(model.DefaultBusinessHours())

	svc := NewService(appts, patients, users, queue,
		event.NewService(outbox, logg), mail, testMetrics, logg)

	return &fixture{
		svc:      svc,
		users:    users,
		patients: patients,
		appts:    appts,
		queue:    queue,
		email:    mail,
		owner:    owner,
	}
}

// tomorrowSlot is a 10:00 IST start on the next calendar day, so the
// today-cutoff never interferes.
func tomorrowSlot() time.Time {
	y, m, d := time.Now().In(schedule.IST).AddDate(0, 0, 1).Date()
	return time.Date(y, m, d, 10, 0, 0, 0, schedule.IST).UTC()
}

func bookReq(start time.Time) *model.BookAppointmentRequest {
	return &model.BookAppointmentRequest{
		StartTime:   start,
		Name:        "Ravi",
		PhoneNumber: "9876500000",
	}
}

func TestBookCreatesPatientAndAppointment(t *testing.T) {
	f := newFixture(t)
	start := tomorrowSlot()

	result, err := f.svc.Book(context.Background(), f.owner.ID, bookReq(start), true)
	require.NoError(t, err)

	assert.Equal(t, model.AppointmentStatusScheduled, result.Appointment.Status)
	assert.True(t, result.Appointment.StartTime.Equal(start))
	assert.True(t, result.Appointment.EndTime.Equal(start.Add(model.SlotDuration)))
	assert.True(t, result.Patient.SelfRegistered)
	require.NotNil(t, result.Appointment.PatientID)
	assert.Equal(t, result.Patient.ID, *result.Appointment.PatientID)

	assert.Equal(t, 1, f.owner.TotalPatients)
	assert.Equal(t, 1, f.email.sent)
}

func TestBookDoubleBookingRejected(t *testing.T) {
	f := newFixture(t)
	start := tomorrowSlot()

	_, err := f.svc.Book(context.Background(), f.owner.ID, bookReq(start), true)
	require.NoError(t, err)

	_, err = f.svc.Book(context.Background(), f.owner.ID, bookReq(start), true)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)
	assert.Len(t, f.appts.appointments, 1)
}

func TestBookAfterCancelFreesSlot(t *testing.T) {
	f := newFixture(t)
	start := tomorrowSlot()

	first, err := f.svc.Book(context.Background(), f.owner.ID, bookReq(start), true)
	require.NoError(t, err)

	_, err = f.svc.Cancel(context.Background(), f.owner.ID, first.Appointment.ID)
	require.NoError(t, err)

	_, err = f.svc.Book(context.Background(), f.owner.ID, bookReq(start), true)
	assert.NoError(t, err)
}

func TestBookUnknownBusiness(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Book(context.Background(), uuid.New(), bookReq(tomorrowSlot()), true)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
}

func TestAvailableSlotsExcludesBookings(t *testing.T) {
	f := newFixture(t)
	start := tomorrowSlot()

	// 09:00-17:00 gives 16 candidates on a free day.
	slots, err := f.svc.AvailableSlots(context.Background(), f.owner.ID, start)
	require.NoError(t, err)
	require.Len(t, slots, 16)

	_, err = f.svc.Book(context.Background(), f.owner.ID, bookReq(start), true)
	require.NoError(t, err)

	slots, err = f.svc.AvailableSlots(context.Background(), f.owner.ID, start)
	require.NoError(t, err)
	assert.Len(t, slots, 15)
	for _, slot := range slots {
		assert.False(t, slot.StartTime.Equal(start))
	}
}

func TestCancelScheduledAppointment(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.Book(context.Background(), f.owner.ID, bookReq(tomorrowSlot()), true)
	require.NoError(t, err)

	appt, err := f.svc.Cancel(context.Background(), f.owner.ID, result.Appointment.ID)
	require.NoError(t, err)

	assert.Equal(t, model.AppointmentStatusCancelled, appt.Status)
	assert.True(t, f.patients.patients[result.Patient.ID].Canceled)
}

func TestCancelTwiceFails(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.Book(context.Background(), f.owner.ID, bookReq(tomorrowSlot()), true)
	require.NoError(t, err)

	_, err = f.svc.Cancel(context.Background(), f.owner.ID, result.Appointment.ID)
	require.NoError(t, err)

	_, err = f.svc.Cancel(context.Background(), f.owner.ID, result.Appointment.ID)
	assert.Error(t, err)
}

func TestCancelByNonOwnerFails(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.Book(context.Background(), f.owner.ID, bookReq(tomorrowSlot()), true)
	require.NoError(t, err)

	_, err = f.svc.Cancel(context.Background(), uuid.New(), result.Appointment.ID)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
}

func TestMoveToWaitlist(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.Book(context.Background(), f.owner.ID, bookReq(tomorrowSlot()), true)
	require.NoError(t, err)
	countsBefore := f.owner.TotalPatients

	patient, entry, err := f.svc.MoveToWaitlist(context.Background(), f.owner.ID, result.Appointment.ID)
	require.NoError(t, err)

	assert.Equal(t, model.QueueStatusWaiting, entry.Status)
	assert.Equal(t, result.Patient.ID, entry.PatientID)
	assert.Equal(t, result.Patient.ID, patient.ID)

	// The appointment leaves the scheduled state and the patient is not
	// counted a second time.
	assert.Equal(t, model.AppointmentStatusCompleted, f.appts.appointments[0].Status)
	assert.Equal(t, countsBefore, f.owner.TotalPatients)

	_, _, err = f.svc.MoveToWaitlist(context.Background(), f.owner.ID, result.Appointment.ID)
	assert.Error(t, err)
}

func TestTodayBookings(t *testing.T) {
	f := newFixture(t)

	// A booking tomorrow must not appear under today.
	_, err := f.svc.Book(context.Background(), f.owner.ID, bookReq(tomorrowSlot()), false)
	require.NoError(t, err)

	today, err := f.svc.TodayBookings(context.Background(), f.owner.ID)
	require.NoError(t, err)
	assert.Empty(t, today)
}

func TestListForUser(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Book(context.Background(), f.owner.ID, bookReq(tomorrowSlot()), false)
	require.NoError(t, err)

	list, err := f.svc.ListForUser(context.Background(), f.owner.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
