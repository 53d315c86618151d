package user

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queueflow/queueflow-api/internal/model"
	"github.com/queueflow/queueflow-api/internal/repository"
	"github.com/queueflow/queueflow-api/internal/service/user"
)

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *fakeUserRepo) add(businessName string) *model.User {
	u := &model.User{
		BusinessName:  businessName,
		Role:          model.RoleUser,
		BusinessHours: model.DefaultBusinessHours(),
		LastResetDate: time.Now(),
	}
	u.ID = uuid.New()
	r.users[u.ID] = u
	return u
}

func (r *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	u.ID = uuid.New()
	r.users[u.ID] = u
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

func (r *fakeUserRepo) ResetDailyCountIfNeeded(context.Context, uuid.UUID, time.Time) error {
	return nil
}

func (r *fakeUserRepo) IncrementPatientCounts(context.Context, uuid.UUID) error { return nil }

func (r *fakeUserRepo) IncrementCanceledCount(context.Context, uuid.UUID) error { return nil }

type fakeQueueRepo struct {
	waiting int
}

func (r *fakeQueueRepo) Create(context.Context, *model.QueueEntry) error { return nil }

func (r *fakeQueueRepo) Transition(context.Context, uuid.UUID, model.QueueEntryStatus, model.QueueEntryStatus, *uuid.UUID) (*model.QueueEntry, error) {
	return nil, repository.ErrNotFound
}

func (r *fakeQueueRepo) ListByStatus(context.Context, *uuid.UUID, model.QueueEntryStatus) ([]*model.QueueEntryDetail, error) {
	return nil, nil
}

func (r *fakeQueueRepo) ListAll(context.Context, *uuid.UUID) ([]*model.QueueEntryDetail, error) {
	return nil, nil
}

func (r *fakeQueueRepo) CountByStatus(_ context.Context, _ uuid.UUID, status model.QueueEntryStatus) (int, error) {
	if status == model.QueueStatusWaiting {
		return r.waiting, nil
	}
	return 0, nil
}

func (r *fakeQueueRepo) PublicWaitlist(context.Context, uuid.UUID) ([]*model.PublicQueueEntry, error) {
	return nil, nil
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

// Business lookups are memoized for a short window, but queue counts must
// reflect every transition on the next poll.
func TestPublicRouteCaching(t *testing.T) {
	gin.SetMode(gin.TestMode)
	users := newFakeUserRepo()
	queue := &fakeQueueRepo{waiting: 1}
	owner := users.add("Arora Dental Care")

	r := gin.New()
	NewHandler(user.NewService(users, queue)).RegisterPublicRoutes(r.Group(""))

	w := get(r, "/business-name/"+owner.ID.String())
	require.Equal(t, http.StatusOK, w.Code)
	first := w.Body.String()
	assert.Contains(t, first, "Arora Dental Care")

	owner.BusinessName = "Renamed Clinic"
	w = get(r, "/business-name/"+owner.ID.String())
	assert.Equal(t, first, w.Body.String())

	w = get(r, "/queue-status/"+owner.ID.String())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"waiting_count":1`)

	queue.waiting = 4
	w = get(r, "/queue-status/"+owner.ID.String())
	assert.Contains(t, w.Body.String(), `"waiting_count":4`)
}
