package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nurseryhub/nursery-api/config"
	"github.com/nurseryhub/nursery-api/internal/models"
	"github.com/nurseryhub/nursery-api/internal/services"
	apperrors "github.com/nurseryhub/nursery-api/pkg/errors"
	"github.com/nurseryhub/nursery-api/pkg/httpclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type adminFixture struct {
	enrollments *MockEnrollmentReviewRepository
	children    *MockChildReader
	documents   *MockDocumentRecordRepository
	storage     *MockDocumentStorage
	svc         *services.EnrollmentAdminService
}

func newAdminFixture() *adminFixture {
	f := &adminFixture{
		enrollments: new(MockEnrollmentReviewRepository),
		children:    new(MockChildReader),
		documents:   new(MockDocumentRecordRepository),
		storage:     new(MockDocumentStorage),
	}
	cfg := &config.Config{Storage: config.StorageConfig{PresignTTLMins: 15}}
	f.svc = services.NewEnrollmentAdminService(f.enrollments, f.children, f.documents, f.storage, cfg,
		httpclient.NewStandardClient(time.Second))
	return f
}

func TestEnrollmentAdminService_ListEnrollments(t *testing.T) {
	t.Run("rejects unknown status", func(t *testing.T) {
		f := newAdminFixture()
		_, err := f.svc.ListEnrollments(context.Background(), "archived")
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		f.enrollments.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
	})

	t.Run("returns total", func(t *testing.T) {
		f := newAdminFixture()
		f.enrollments.On("List", mock.Anything, models.EnrollmentPending).
			Return([]*models.Enrollment{{ID: "e1"}, {ID: "e2"}}, nil)

		resp, err := f.svc.ListEnrollments(context.Background(), models.EnrollmentPending)
		require.NoError(t, err)
		assert.Equal(t, 2, resp.Total)
		assert.Len(t, resp.Enrollments, 2)
	})

	t.Run("empty status lists all", func(t *testing.T) {
		f := newAdminFixture()
		f.enrollments.On("List", mock.Anything, models.EnrollmentStatus("")).Return([]*models.Enrollment{}, nil)

		resp, err := f.svc.ListEnrollments(context.Background(), "")
		require.NoError(t, err)
		assert.Equal(t, 0, resp.Total)
	})
}

func TestEnrollmentAdminService_GetEnrollment(t *testing.T) {
	f := newAdminFixture()
	f.enrollments.On("GetByID", mock.Anything, "e1").
		Return(&models.Enrollment{ID: "e1", ChildID: "c1", Status: models.EnrollmentPending}, nil)
	f.children.On("GetByID", mock.Anything, "c1").Return(&models.Child{ID: "c1", FirstName: "Yasmine"}, nil)
	f.documents.On("ListByOwner", mock.Anything, "c1").Return([]*models.StoredDocument{
		{DocumentID: "d1", StorageKey: "children/c1/carnet_medical.pdf", URL: "raw-1"},
		{DocumentID: "d2", StorageKey: "children/c1/acte_naissance.pdf", URL: "raw-2"},
	}, nil)
	f.storage.On("PresignDownload", mock.Anything, "children/c1/carnet_medical.pdf", 15*time.Minute).
		Return("signed-1", nil)
	f.storage.On("PresignDownload", mock.Anything, "children/c1/acte_naissance.pdf", 15*time.Minute).
		Return("", errors.New("signer offline"))

	detail, err := f.svc.GetEnrollment(context.Background(), "e1")

	require.NoError(t, err)
	assert.Equal(t, "e1", detail.Enrollment.ID)
	assert.Equal(t, "Yasmine", detail.Child.FirstName)
	require.Len(t, detail.Documents, 2)
	assert.Equal(t, "signed-1", detail.Documents[0].URL)
	assert.Equal(t, "raw-2", detail.Documents[1].URL, "unsigned link kept when presigning fails")
}

func TestEnrollmentAdminService_GetEnrollmentNotFound(t *testing.T) {
	f := newAdminFixture()
	f.enrollments.On("GetByID", mock.Anything, "missing").Return(nil, apperrors.NotFoundError("enrollment"))

	_, err := f.svc.GetEnrollment(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestEnrollmentAdminService_UpdateStatus(t *testing.T) {
	tests := []struct {
		name    string
		current models.EnrollmentStatus
		next    models.EnrollmentStatus
		wantErr error
	}{
		{name: "approve pending", current: models.EnrollmentPending, next: models.EnrollmentApproved},
		{name: "reject pending", current: models.EnrollmentPending, next: models.EnrollmentRejected},
		{name: "reopen approved", current: models.EnrollmentApproved, next: models.EnrollmentPending},
		{name: "approved to rejected", current: models.EnrollmentApproved, next: models.EnrollmentRejected, wantErr: apperrors.ErrConflict},
		{name: "pending to pending", current: models.EnrollmentPending, next: models.EnrollmentPending, wantErr: apperrors.ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAdminFixture()
			f.enrollments.On("GetByID", mock.Anything, "e1").
				Return(&models.Enrollment{ID: "e1", Status: tt.current}, nil).Once()

			if tt.wantErr != nil {
				_, err := f.svc.UpdateStatus(context.Background(), "e1", tt.next)
				assert.ErrorIs(t, err, tt.wantErr)
				f.enrollments.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
				return
			}

			f.enrollments.On("UpdateStatus", mock.Anything, "e1", tt.next).Return(nil)
			f.enrollments.On("GetByID", mock.Anything, "e1").
				Return(&models.Enrollment{ID: "e1", Status: tt.next}, nil).Once()

			updated, err := f.svc.UpdateStatus(context.Background(), "e1", tt.next)
			require.NoError(t, err)
			assert.Equal(t, tt.next, updated.Status)
			f.enrollments.AssertExpectations(t)
		})
	}
}
