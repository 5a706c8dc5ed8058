package users

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/taskrhythm-app/taskrhythm-backend/pkg/auth"
	"github.com/taskrhythm-app/taskrhythm-backend/pkg/auth/jwt"
	"github.com/taskrhythm-app/taskrhythm-backend/pkg/communication"
	"github.com/taskrhythm-app/taskrhythm-backend/pkg/email"
	"github.com/taskrhythm-app/taskrhythm-backend/pkg/environment"
	"github.com/taskrhythm-app/taskrhythm-backend/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

// Handler is the handler for user API calls
type Handler struct {
	UserRepository  UserRepositoryInterface
	UserCache       UserCacheInterface
	Logger          logger.Interface
	ResponseManager *communication.ResponseManager
	Secret          string
	EmailService    email.Mailer
}

// UserRegister is the route for registering a user
func (handler *Handler) UserRegister(writer http.ResponseWriter, request *http.Request) {
	user := User{}
	body := struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}{}

	err := json.NewDecoder(request.Body).Decode(&body)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusBadRequest,
			"Wrong format", err)
		return
	}

	user.Name = body.Name
	user.Email = body.Email

	presentUser, _ := handler.UserRepository.FindByEmail(request.Context(), user.Email)
	if presentUser != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusConflict,
			"User with email "+presentUser.Email+" already exists", nil)
		return
	}

	if len(body.Password) < 8 {
		handler.ResponseManager.RespondWithError(writer, http.StatusBadRequest,
			"Password needs at least 8 characters", nil)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusInternalServerError,
			"Problem hashing password", err)
		return
	}
	user.Password = string(hashedPassword)

	v := validator.New()
	err = v.Struct(user)
	if err != nil {
		for _, e := range err.(validator.ValidationErrors) {
			handler.ResponseManager.RespondWithError(writer, http.StatusBadRequest, e.Error(), e)
			return
		}
	}

	user.EmailVerificationToken = uuid.New().String()

	err = handler.UserRepository.Add(request.Context(), &user)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusInternalServerError,
			"User couldn't be persisted in the database", err)
		return
	}

	err = handler.EmailService.SendEmail(request.Context(), &email.Email{
		ReceiverName:    user.Name,
		ReceiverAddress: user.Email,
		Template:        email.TemplateVerifyRegistration,
		Parameters: map[string]interface{}{
			"verifyLink": fmt.Sprintf("%s/v1/auth/register/verify?token=%s", environment.Global.BaseUrl, user.EmailVerificationToken),
		},
	})
	if err != nil {
		handler.Logger.Error("Could not send registration confirmation mail", err)
	}

	handler.generateAndRespondWithTokens(&user, writer)
}

// UserLogin is the route for user authentication
func (handler *Handler) UserLogin(writer http.ResponseWriter, request *http.Request) {
	userLogin := UserLogin{}
	err := json.NewDecoder(request.Body).Decode(&userLogin)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusBadRequest,
			"Wrong format", err)
		return
	}

	v := validator.New()
	err = v.Struct(userLogin)
	if err != nil {
		for _, e := range err.(validator.ValidationErrors) {
			handler.ResponseManager.RespondWithError(writer, http.StatusBadRequest, e.Error(), e)
			return
		}
	}

	user, err := handler.UserRepository.FindByEmail(request.Context(), userLogin.Email)
	if err != nil || user == nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusBadRequest,
			"Wrong credentials", err)
		return
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(userLogin.Password))
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusBadRequest,
			"Wrong credentials", err)
		return
	}

	handler.generateAndRespondWithTokens(user, writer)
}

// UserRefresh refreshes a users access token with a new one by providing a refresh token
func (handler *Handler) UserRefresh(writer http.ResponseWriter, request *http.Request) {
	body := struct {
		RefreshToken string `json:"refreshToken"`
	}{}

	err := json.NewDecoder(request.Body).Decode(&body)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusBadRequest,
			"Wrong format", err)
		return
	}

	if body.RefreshToken == "" {
		handler.ResponseManager.RespondWithError(writer, http.StatusBadRequest,
			"No refresh token specified", nil)
		return
	}

	refreshToken, err := jwt.Verify(body.RefreshToken, jwt.TokenTypeRefresh, handler.Secret, jwt.AlgHS256, jwt.Claims{})
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusBadRequest, "Token invalid", err)
		return
	}

	u, err := handler.UserRepository.FindByID(request.Context(), refreshToken.Payload.Subject)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusBadRequest, "User not found", err)
		return
	}

	accessClaims := jwt.Claims{
		Subject:        u.ID.Hex(),
		Issuer:         "taskrhythm",
		IssuedAt:       time.Now().Unix(),
		ExpirationTime: time.Now().AddDate(0, 0, 1).Unix(),
		TokenType:      jwt.TokenTypeAccess,
	}
	accessToken := jwt.New(jwt.AlgHS256, accessClaims)

	accessTokenString, err := accessToken.Sign(handler.Secret)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusInternalServerError,
			"Problem signing access token", err)
		return
	}

	var response = map[string]interface{}{
		"accessToken": accessTokenString,
	}

	handler.ResponseManager.Respond(writer, response)
}

// UserGet retrieves the authenticated user
func (handler *Handler) UserGet(writer http.ResponseWriter, request *http.Request) {
	userID := request.Context().Value(auth.KeyUserID).(string)

	u, err := FindCachedByID(request.Context(), handler.UserCache, handler.UserRepository, userID)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusNotFound,
			"User wasn't found", err)
		return
	}

	handler.ResponseManager.Respond(writer, u)
}

// VerifyRegistrationGet is the endpoint that gets called when the email verification link gets hit
func (handler *Handler) VerifyRegistrationGet(writer http.ResponseWriter, request *http.Request) {
	success := true
	token := strings.TrimSpace(request.URL.Query().Get("token"))

	if token == "" {
		handler.Logger.Warning("Invalid verification request", nil)
		success = false
	}

	var usr *User
	if success {
		var err error
		usr, err = handler.UserRepository.FindByVerificationToken(request.Context(), token)
		if err != nil {
			handler.Logger.Warning("Invalid verification request", err)
			success = false
		}
	}

	if success && !usr.EmailVerified {
		usr.EmailVerified = true

		err := handler.UserRepository.Update(request.Context(), usr)
		if err != nil {
			handler.Logger.Error("Problem updating user", err)
			success = false
		}

		if handler.UserCache != nil {
			_ = handler.UserCache.Remove(request.Context(), usr.ID.Hex())
		}
	}

	http.Redirect(writer, request, fmt.Sprintf("%s/auth/verify?success=%t", environment.Global.FrontendBaseUrl, success), http.StatusFound)
}

func (handler *Handler) generateAndRespondWithTokens(user *User, writer http.ResponseWriter) {
	accessClaims := jwt.Claims{
		Subject:        user.ID.Hex(),
		Issuer:         "taskrhythm",
		IssuedAt:       time.Now().Unix(),
		ExpirationTime: time.Now().AddDate(0, 0, 1).Unix(),
		TokenType:      jwt.TokenTypeAccess,
	}
	accessToken := jwt.New(jwt.AlgHS256, accessClaims)

	refreshTokenClaims := jwt.Claims{
		Subject:   user.ID.Hex(),
		Issuer:    "taskrhythm",
		IssuedAt:  time.Now().Unix(),
		TokenType: jwt.TokenTypeRefresh,
	}
	refreshToken := jwt.New(jwt.AlgHS256, refreshTokenClaims)

	accessTokenString, err := accessToken.Sign(handler.Secret)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusInternalServerError,
			"Problem signing access token", err)
		return
	}

	refreshTokenString, err := refreshToken.Sign(handler.Secret)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusInternalServerError,
			"Problem signing refresh token", err)
		return
	}

	var response = map[string]interface{}{
		"result":       user,
		"accessToken":  accessTokenString,
		"refreshToken": refreshTokenString,
	}

	handler.ResponseManager.Respond(writer, response)
}
