package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/nurseryhub/nursery-api/internal/enrollment"
	"github.com/nurseryhub/nursery-api/internal/models"
	apperrors "github.com/nurseryhub/nursery-api/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func wizardRouter(svc *MockWizardService, regulation stubRegulation) *gin.Engine {
	h := NewEnrollmentHandler(svc, regulation)
	router := gin.New()
	g := router.Group("/api/v1/enrollments")
	g.GET("/regulation", h.RegulationDocument)
	g.POST("/wizard", h.StartSession)
	g.GET("/wizard/:id", h.GetView)
	g.PATCH("/wizard/:id/fields", h.UpdateFields)
	g.POST("/wizard/:id/next", h.Next)
	g.POST("/wizard/:id/previous", h.Previous)
	g.PUT("/wizard/:id/documents/:type", h.AttachDocument)
	g.DELETE("/wizard/:id/documents/:type", h.RemoveDocument)
	g.POST("/wizard/:id/regulation/scroll", h.RegulationScroll)
	g.POST("/wizard/:id/regulation/accept", h.AcceptRegulation)
	g.POST("/wizard/:id/submit", h.Submit)
	g.DELETE("/wizard/:id", h.Abandon)
	return router
}

func serve(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	router.ServeHTTP(w, req)
	return w
}

func multipartUpload(t *testing.T, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestEnrollmentHandler_StartSession(t *testing.T) {
	svc := new(MockWizardService)
	svc.On("StartSession", mock.Anything).Return(&models.WizardSessionResponse{
		SessionID: "s1",
		View:      models.WizardView{SessionID: "s1", Step: 1, StepKey: "child_info", TotalSteps: 5},
	}, nil)

	w := serve(wizardRouter(svc, stubRegulation{}), http.MethodPost, "/api/v1/enrollments/wizard", "")

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp models.WizardSessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "s1", resp.SessionID)
	assert.Equal(t, "child_info", resp.View.StepKey)
}

func TestEnrollmentHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{name: "unknown session", err: apperrors.NotFoundError("enrollment session"), wantCode: http.StatusNotFound},
		{name: "submit in flight", err: enrollment.ErrSubmissionInFlight, wantCode: http.StatusConflict},
		{name: "invalid step", err: enrollment.ErrInvalidStep, wantCode: http.StatusBadRequest},
		{name: "unexpected", err: assert.AnError, wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockWizardService)
			svc.On("Previous", mock.Anything, "s1").Return(nil, tt.err)

			w := serve(wizardRouter(svc, stubRegulation{}), http.MethodPost, "/api/v1/enrollments/wizard/s1/previous", "")

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode == http.StatusInternalServerError {
				assert.NotContains(t, w.Body.String(), assert.AnError.Error())
			}
		})
	}
}

func TestEnrollmentHandler_UpdateFields(t *testing.T) {
	t.Run("binds request", func(t *testing.T) {
		svc := new(MockWizardService)
		svc.On("UpdateFields", mock.Anything, "s1", mock.MatchedBy(func(r *models.UpdateWizardFieldsRequest) bool {
			return r.Step == 1 && r.Fields["firstName"] == "Yasmine"
		})).Return(&models.WizardView{Step: 1}, nil)

		w := serve(wizardRouter(svc, stubRegulation{}), http.MethodPatch, "/api/v1/enrollments/wizard/s1/fields",
			`{"step":1,"fields":{"firstName":"Yasmine"}}`)

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("rejects step out of range", func(t *testing.T) {
		svc := new(MockWizardService)
		w := serve(wizardRouter(svc, stubRegulation{}), http.MethodPatch, "/api/v1/enrollments/wizard/s1/fields",
			`{"step":9,"fields":{"firstName":"Yasmine"}}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Validation failed")
		svc.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestEnrollmentHandler_Next(t *testing.T) {
	svc := new(MockWizardService)
	svc.On("Next", mock.Anything, "blocked").Return(&models.StepTransitionResponse{
		StepResult: models.StepResult{OK: false, Errors: []string{"birthDate is required"}},
		View:       models.WizardView{Step: 1},
	}, nil)
	svc.On("Next", mock.Anything, "ok").Return(&models.StepTransitionResponse{
		StepResult: models.StepResult{OK: true, Errors: []string{}},
		View:       models.WizardView{Step: 2},
	}, nil)
	router := wizardRouter(svc, stubRegulation{})

	w := serve(router, http.MethodPost, "/api/v1/enrollments/wizard/blocked/next", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "birthDate is required")

	w = serve(router, http.MethodPost, "/api/v1/enrollments/wizard/ok/next", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestEnrollmentHandler_AttachDocument(t *testing.T) {
	t.Run("reads multipart file", func(t *testing.T) {
		svc := new(MockWizardService)
		svc.On("AttachDocument", mock.Anything, "s1", models.DocumentCarnetMedical, mock.MatchedBy(func(f *models.DocumentFile) bool {
			return f.FileName == "carnet.pdf" && f.Size == 7 && string(f.Content) == "%PDF-1."
		})).Return(&models.DocumentAttachResponse{
			Validation: models.ValidationResult{IsValid: true, Errors: []string{}},
		}, nil)

		body, contentType := multipartUpload(t, "carnet.pdf", []byte("%PDF-1."))
		req := httptest.NewRequest(http.MethodPut, "/api/v1/enrollments/wizard/s1/documents/CARNET_MEDICAL", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		wizardRouter(svc, stubRegulation{}).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("unknown document type", func(t *testing.T) {
		svc := new(MockWizardService)
		body, contentType := multipartUpload(t, "x.pdf", []byte("x"))
		req := httptest.NewRequest(http.MethodPut, "/api/v1/enrollments/wizard/s1/documents/passport", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		wizardRouter(svc, stubRegulation{}).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), enrollment.MsgUnknownType)
	})

	t.Run("missing file", func(t *testing.T) {
		svc := new(MockWizardService)
		w := serve(wizardRouter(svc, stubRegulation{}), http.MethodPut, "/api/v1/enrollments/wizard/s1/documents/acte_naissance", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), enrollment.MsgNoFileSelected)
	})
}

func TestEnrollmentHandler_RemoveDocument(t *testing.T) {
	svc := new(MockWizardService)
	svc.On("RemoveDocument", mock.Anything, "s1", models.DocumentActeNaissance).Return(&models.WizardView{Step: 3}, nil)

	w := serve(wizardRouter(svc, stubRegulation{}), http.MethodDelete, "/api/v1/enrollments/wizard/s1/documents/acte_naissance", "")

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestEnrollmentHandler_Regulation(t *testing.T) {
	svc := new(MockWizardService)
	svc.On("ReportRegulationScroll", mock.Anything, "s1", &models.RegulationScrollRequest{
		ScrollTop: 2600, ViewportHeight: 400, ContentHeight: 3000,
	}).Return(&models.WizardView{Step: 4}, nil)
	svc.On("AcceptRegulation", mock.Anything, "s1", true).Return(nil, enrollment.ErrRegulationNotRead).Once()
	router := wizardRouter(svc, stubRegulation{})

	w := serve(router, http.MethodPost, "/api/v1/enrollments/wizard/s1/regulation/scroll",
		`{"scrollTop":2600,"viewportHeight":400,"contentHeight":3000}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(router, http.MethodPost, "/api/v1/enrollments/wizard/s1/regulation/scroll",
		`{"scrollTop":0,"viewportHeight":0,"contentHeight":3000}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(router, http.MethodPost, "/api/v1/enrollments/wizard/s1/regulation/accept", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "accepted is required")

	w = serve(router, http.MethodPost, "/api/v1/enrollments/wizard/s1/regulation/accept", `{"accepted":true}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEnrollmentHandler_Submit(t *testing.T) {
	tests := []struct {
		name     string
		result   *models.SubmitResult
		err      error
		wantCode int
		wantBody string
	}{
		{
			name:     "success with warnings",
			result:   &models.SubmitResult{OK: true, Warnings: []string{"birth certificate could not be uploaded"}, ChildID: "c1", EnrollmentID: "e1"},
			wantCode: http.StatusOK,
			wantBody: "birth certificate could not be uploaded",
		},
		{
			name:     "record service failure",
			result:   &models.SubmitResult{OK: false, Error: enrollment.SubmissionFailedMessage, Warnings: []string{}},
			wantCode: http.StatusBadGateway,
			wantBody: enrollment.SubmissionFailedMessage,
		},
		{
			name:     "already submitting",
			err:      enrollment.ErrSubmissionInFlight,
			wantCode: http.StatusConflict,
		},
		{
			name:     "captcha rejected",
			err:      apperrors.AccessDeniedError("captcha verification failed"),
			wantCode: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockWizardService)
			if tt.err != nil {
				svc.On("Submit", mock.Anything, "s1", mock.Anything).Return(nil, tt.err)
			} else {
				svc.On("Submit", mock.Anything, "s1", mock.Anything).Return(tt.result, nil)
			}

			w := serve(wizardRouter(svc, stubRegulation{}), http.MethodPost, "/api/v1/enrollments/wizard/s1/submit",
				`{"recaptchaToken":"03AGdBq24PBCbwiDRaS_MJ7Z"}`)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantBody != "" {
				assert.Contains(t, w.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestEnrollmentHandler_SubmitWithoutBody(t *testing.T) {
	svc := new(MockWizardService)
	svc.On("Submit", mock.Anything, "s1", &models.SubmitEnrollmentRequest{}).
		Return(&models.SubmitResult{OK: true, Warnings: []string{}}, nil)

	w := serve(wizardRouter(svc, stubRegulation{}), http.MethodPost, "/api/v1/enrollments/wizard/s1/submit", "")

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestEnrollmentHandler_SubmitChunkedBody(t *testing.T) {
	const token = "03AGdBq24PBCbwiDRaS_MJ7Z"
	tests := []struct {
		name     string
		body     string
		want     *models.SubmitEnrollmentRequest
		wantCode int
	}{
		{"token is read", `{"recaptchaToken":"` + token + `"}`, &models.SubmitEnrollmentRequest{RecaptchaToken: token}, http.StatusOK},
		{"empty body", "", &models.SubmitEnrollmentRequest{}, http.StatusOK},
		{"malformed body", `{"recaptchaToken":`, nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockWizardService)
			if tt.want != nil {
				svc.On("Submit", mock.Anything, "s1", tt.want).
					Return(&models.SubmitResult{OK: true, Warnings: []string{}}, nil)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/enrollments/wizard/s1/submit", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			req.ContentLength = -1
			req.TransferEncoding = []string{"chunked"}
			w := httptest.NewRecorder()
			wizardRouter(svc, stubRegulation{}).ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.want == nil {
				svc.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything, mock.Anything)
			} else {
				svc.AssertExpectations(t)
			}
		})
	}
}

func TestEnrollmentHandler_Abandon(t *testing.T) {
	svc := new(MockWizardService)
	svc.On("Abandon", mock.Anything, "s1").Return(nil)

	w := serve(wizardRouter(svc, stubRegulation{}), http.MethodDelete, "/api/v1/enrollments/wizard/s1", "")

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestEnrollmentHandler_RegulationDocument(t *testing.T) {
	file := filepath.Join(t.TempDir(), "reglement.pdf")
	require.NoError(t, os.WriteFile(file, []byte("%PDF-1.4 regulation"), 0o600))

	w := serve(wizardRouter(new(MockWizardService), stubRegulation{path: file}), http.MethodGet, "/api/v1/enrollments/regulation", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "reglement-interieur.pdf")
	assert.Equal(t, "%PDF-1.4 regulation", w.Body.String())

	w = serve(wizardRouter(new(MockWizardService), stubRegulation{err: apperrors.NotFoundError("regulation document")}),
		http.MethodGet, "/api/v1/enrollments/regulation", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
