package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"unilab/internal/labs/service"
	apperrors "unilab/pkg/errors"
	"unilab/pkg/logger"
	"unilab/pkg/middleware"
	"unilab/pkg/model"

	"github.com/golang-jwt/jwt/v4"
	"github.com/julienschmidt/httprouter"
)

const testSecret = "handler-secret"

type mockLabService struct {
	service.LabService

	createBookingFunc func(ctx context.Context, labID string, req *model.BookingRequest, requesterID string) (*model.Lab, error)
	getAllFunc        func(ctx context.Context, limit int, offset int64) ([]*model.Lab, int64, error)
	cancelBookingFunc func(ctx context.Context, labID, bookingID string) (*model.Lab, error)
}

func (m *mockLabService) CreateBooking(ctx context.Context, labID string, req *model.BookingRequest, requesterID string) (*model.Lab, error) {
	return m.createBookingFunc(ctx, labID, req, requesterID)
}

func (m *mockLabService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Lab, int64, error) {
	return m.getAllFunc(ctx, limit, offset)
}

func (m *mockLabService) CancelBooking(ctx context.Context, labID, bookingID string) (*model.Lab, error) {
	return m.cancelBookingFunc(ctx, labID, bookingID)
}

func token(t *testing.T, userID string, role model.Role) string {
	t.Helper()
	claims := middleware.Claims{
		ID:   userID,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return s
}

func serve(t *testing.T, svc service.LabService, method, path, body, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	auth := middleware.NewAuthenticator(testSecret, logger.Discard())
	router := httprouter.New()
	NewLabHandler(svc, auth, logger.Discard()).RegisterRoutes(router)

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set(middleware.AuthorizationHeader, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	auth.Authenticate()(router).ServeHTTP(rec, req)
	return rec
}

const bookingBody = `{"bookForDept":"Physics","bookForBatch":"2023","bookForCourse":"PHY101","reason":"Practical","date":"2025-04-01","duration":{"from":"09:00","to":"10:00"}}`

func TestCreateBookingHandler(t *testing.T) {
	var gotRequester, gotLab string
	svc := &mockLabService{
		createBookingFunc: func(ctx context.Context, labID string, req *model.BookingRequest, requesterID string) (*model.Lab, error) {
			gotRequester, gotLab = requesterID, labID
			if req.Duration.From == "09:00" {
				return &model.Lab{ID: labID, Bookings: []model.Booking{{ID: "b1", Status: model.StatusPending}}}, nil
			}
			return nil, apperrors.Conflict("Time slot already booked")
		},
	}

	tests := []struct {
		name       string
		body       string
		bearer     string
		wantStatus int
		wantCode   string
	}{
		{name: "anonymous", body: bookingBody, wantStatus: http.StatusUnauthorized, wantCode: apperrors.CodeUnauthorized},
		{name: "student cannot book", body: bookingBody, bearer: token(t, "stu-1", model.RoleStudent), wantStatus: http.StatusForbidden, wantCode: apperrors.CodeForbidden},
		{name: "lecturer books", body: bookingBody, bearer: token(t, "lec-1", model.RoleLecturer), wantStatus: http.StatusCreated},
		{name: "slot taken", body: strings.Replace(bookingBody, "09:00", "09:30", 1), bearer: token(t, "lec-1", model.RoleLecturer), wantStatus: http.StatusConflict, wantCode: apperrors.CodeConflict},
		{name: "unknown field", body: `{"bogus":true}`, bearer: token(t, "lec-1", model.RoleLecturer), wantStatus: http.StatusBadRequest, wantCode: apperrors.CodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, svc, http.MethodPost, "/api/v1/labs/lab-1/bookings", tt.body, tt.bearer)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantCode != "" {
				var body struct {
					Code string `json:"code"`
				}
				if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
					t.Fatalf("invalid error body: %v", err)
				}
				if body.Code != tt.wantCode {
					t.Errorf("code = %s, want %s", body.Code, tt.wantCode)
				}
			}
		})
	}

	if gotRequester != "lec-1" || gotLab != "lab-1" {
		t.Errorf("service got requester %q lab %q", gotRequester, gotLab)
	}
}

func TestGetAllLabsHandler_Pagination(t *testing.T) {
	var gotLimit int
	var gotOffset int64
	svc := &mockLabService{
		getAllFunc: func(ctx context.Context, limit int, offset int64) ([]*model.Lab, int64, error) {
			gotLimit, gotOffset = limit, offset
			return []*model.Lab{{ID: "lab-1", Name: "Physics Lab"}}, 7, nil
		},
	}

	rec := serve(t, svc, http.MethodGet, "/api/v1/labs?limit=5&offset=2", "", token(t, "stu-1", model.RoleStudent))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", rec.Code, rec.Body.String())
	}
	if gotLimit != 5 || gotOffset != 2 {
		t.Errorf("service got limit=%d offset=%d", gotLimit, gotOffset)
	}

	rec = serve(t, svc, http.MethodGet, "/api/v1/labs?limit=abc", "", token(t, "stu-1", model.RoleStudent))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit: status = %d", rec.Code)
	}
}

func TestCancelBookingHandler_StudentAllowed(t *testing.T) {
	svc := &mockLabService{
		cancelBookingFunc: func(ctx context.Context, labID, bookingID string) (*model.Lab, error) {
			return &model.Lab{ID: labID, Bookings: []model.Booking{}}, nil
		},
	}

	rec := serve(t, svc, http.MethodDelete, "/api/v1/labs/lab-1/bookings/b1", "", token(t, "stu-1", model.RoleStudent))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", rec.Code, rec.Body.String())
	}
}
