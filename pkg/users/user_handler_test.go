package users

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/taskrhythm-app/taskrhythm-backend/pkg/auth"
	"github.com/taskrhythm-app/taskrhythm-backend/pkg/communication"
	"github.com/taskrhythm-app/taskrhythm-backend/pkg/email"
	"github.com/taskrhythm-app/taskrhythm-backend/pkg/logger"
)

const testSecret = "test-secret"

func newUserHandler(t *testing.T, repository *MockUserRepository) *Handler {
	t.Helper()

	cache, err := NewUserCacheMemory(16)
	if err != nil {
		t.Fatal(err)
	}

	log := logger.Logger{}
	return &Handler{
		UserRepository:  repository,
		UserCache:       cache,
		Logger:          log,
		ResponseManager: &communication.ResponseManager{Logger: log},
		Secret:          testSecret,
		EmailService:    &email.LogService{Logger: log},
	}
}

func TestHandler_UserRegister(t *testing.T) {
	repository := &MockUserRepository{}
	handler := newUserHandler(t, repository)

	body := `{"name":"Ada","email":"ada@example.com","password":"supersecret"}`
	request := httptest.NewRequest(http.MethodPost, "/v1/auth/register", strings.NewReader(body))
	recorder := httptest.NewRecorder()

	handler.UserRegister(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", recorder.Code, recorder.Body.String())
	}

	if len(repository.Users) != 1 {
		t.Fatalf("expected one stored user, got %d", len(repository.Users))
	}

	stored := repository.Users[0]
	if stored.Password == "supersecret" {
		t.Error("the password must be stored hashed")
	}

	if stored.EmailVerificationToken == "" {
		t.Error("a fresh registration needs a verification token")
	}

	var response map[string]interface{}
	err := json.Unmarshal(recorder.Body.Bytes(), &response)
	if err != nil {
		t.Fatal(err)
	}

	accessToken, _ := response["accessToken"].(string)
	refreshToken, _ := response["refreshToken"].(string)
	if accessToken == "" || refreshToken == "" {
		t.Error("registration should respond with a token pair")
	}
}

func TestHandler_UserRegister_RejectsShortPassword(t *testing.T) {
	handler := newUserHandler(t, &MockUserRepository{})

	body := `{"name":"Ada","email":"ada@example.com","password":"short"}`
	request := httptest.NewRequest(http.MethodPost, "/v1/auth/register", strings.NewReader(body))
	recorder := httptest.NewRecorder()

	handler.UserRegister(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", recorder.Code, http.StatusBadRequest)
	}
}

func TestHandler_UserRegister_DuplicateEmail(t *testing.T) {
	repository := &MockUserRepository{}
	handler := newUserHandler(t, repository)

	body := `{"name":"Ada","email":"ada@example.com","password":"supersecret"}`

	recorder := httptest.NewRecorder()
	handler.UserRegister(recorder, httptest.NewRequest(http.MethodPost, "/v1/auth/register", strings.NewReader(body)))
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", recorder.Code, recorder.Body.String())
	}

	recorder = httptest.NewRecorder()
	handler.UserRegister(recorder, httptest.NewRequest(http.MethodPost, "/v1/auth/register", strings.NewReader(body)))
	if recorder.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", recorder.Code, http.StatusConflict)
	}
}

func TestHandler_UserLogin(t *testing.T) {
	repository := &MockUserRepository{}
	handler := newUserHandler(t, repository)

	registerBody := `{"name":"Ada","email":"ada@example.com","password":"supersecret"}`
	recorder := httptest.NewRecorder()
	handler.UserRegister(recorder, httptest.NewRequest(http.MethodPost, "/v1/auth/register", strings.NewReader(registerBody)))
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", recorder.Code, recorder.Body.String())
	}

	recorder = httptest.NewRecorder()
	loginBody := `{"email":"ada@example.com","password":"supersecret"}`
	handler.UserLogin(recorder, httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(loginBody)))

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", recorder.Code, recorder.Body.String())
	}

	var response map[string]interface{}
	err := json.Unmarshal(recorder.Body.Bytes(), &response)
	if err != nil {
		t.Fatal(err)
	}

	refreshToken, _ := response["refreshToken"].(string)
	if refreshToken == "" {
		t.Fatal("login should respond with a refresh token")
	}

	recorder = httptest.NewRecorder()
	wrongBody := `{"email":"ada@example.com","password":"wrongpassword"}`
	handler.UserLogin(recorder, httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(wrongBody)))
	if recorder.Code != http.StatusBadRequest {
		t.Errorf("wrong password status = %d, want %d", recorder.Code, http.StatusBadRequest)
	}

	recorder = httptest.NewRecorder()
	refreshBody := `{"refreshToken":"` + refreshToken + `"}`
	handler.UserRefresh(recorder, httptest.NewRequest(http.MethodPost, "/v1/auth/refresh", strings.NewReader(refreshBody)))
	if recorder.Code != http.StatusOK {
		t.Fatalf("refresh status = %d, body %s", recorder.Code, recorder.Body.String())
	}
}

func TestHandler_UserGet(t *testing.T) {
	repository := &MockUserRepository{}
	handler := newUserHandler(t, repository)

	user := &User{Name: "Ada", Email: "ada@example.com", Password: "hash"}
	err := repository.Add(context.Background(), user)
	if err != nil {
		t.Fatal(err)
	}

	request := httptest.NewRequest(http.MethodGet, "/v1/user", nil)
	ctx := context.WithValue(request.Context(), auth.KeyUserID, user.ID.Hex())
	recorder := httptest.NewRecorder()

	handler.UserGet(recorder, request.WithContext(ctx))

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", recorder.Code, recorder.Body.String())
	}

	var fetched User
	err = json.Unmarshal(recorder.Body.Bytes(), &fetched)
	if err != nil {
		t.Fatal(err)
	}

	if fetched.ID != user.ID || fetched.Email != user.Email {
		t.Errorf("fetched user = %+v", fetched)
	}

	// Second read has to come out of the cache
	cached, err := handler.UserCache.Get(context.Background(), user.ID.Hex())
	if err != nil {
		t.Fatal("the fetched user should be cached")
	}
	if cached.ID != user.ID {
		t.Errorf("cached user = %+v", cached)
	}
}

func TestHandler_VerifyRegistrationGet(t *testing.T) {
	repository := &MockUserRepository{}
	handler := newUserHandler(t, repository)

	user := &User{Name: "Ada", Email: "ada@example.com", Password: "hash", EmailVerificationToken: "token-123"}
	err := repository.Add(context.Background(), user)
	if err != nil {
		t.Fatal(err)
	}

	request := httptest.NewRequest(http.MethodGet, "/v1/auth/register/verify?token=token-123", nil)
	recorder := httptest.NewRecorder()

	handler.VerifyRegistrationGet(recorder, request)

	if recorder.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusFound)
	}

	if !user.EmailVerified {
		t.Error("hitting the verification link should mark the user verified")
	}

	if !strings.Contains(recorder.Header().Get("Location"), "success=true") {
		t.Errorf("redirect location = %q", recorder.Header().Get("Location"))
	}
}
