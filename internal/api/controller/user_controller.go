package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"ctchen222/Task-Tracker/internal/api/middleware"
	"ctchen222/Task-Tracker/internal/api/models"
	"ctchen222/Task-Tracker/internal/api/response"
	"ctchen222/Task-Tracker/internal/api/service"

	"github.com/gin-gonic/gin"
)

// UserController handles user-related HTTP requests.
type UserController struct {
	userService  service.UserService
	tokenService service.TokenService
}

// NewUserController creates a new UserController.
func NewUserController(userService service.UserService, tokenService service.TokenService) *UserController {
	return &UserController{
		userService:  userService,
		tokenService: tokenService,
	}
}

// Register handles the user registration endpoint.
func (uc *UserController) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := uc.userService.Register(c.Request.Context(), &req)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	response.CreatedResponse(c, user)
}

// Token handles the token issuance endpoint. BasicAuth has already
// resolved the user.
func (uc *UserController) Token(c *gin.Context) {
	user := middleware.CurrentUser(c)

	token, expiration, err := uc.tokenService.IssueOrRefresh(c.Request.Context(), user)
	if err != nil {
		response.ErrorResponse(c, http.StatusInternalServerError, "failed to issue token")
		return
	}

	response.SuccessResponse(c, models.TokenResponse{
		Token:           token,
		TokenExpiration: expiration,
	})
}

// List handles listing users with an optional full-name search filter.
func (uc *UserController) List(c *gin.Context) {
	users, err := uc.userService.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}
	response.SuccessResponse(c, users)
}

// Get handles fetching a single user by id.
func (uc *UserController) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	user, err := uc.userService.GetByID(c.Request.Context(), id)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}
	response.SuccessResponse(c, user)
}

// Update handles self-service profile updates. Unknown fields in the body
// are rejected rather than silently ignored.
func (uc *UserController) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req models.UpdateUserRequest
	if err := bindStrictJSON(c, &req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := uc.userService.Update(c.Request.Context(), middleware.CurrentUser(c), id, &req)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}
	response.SuccessResponse(c, user)
}

// Delete handles self-service account deletion.
func (uc *UserController) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	user, err := uc.userService.Delete(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}
	response.SuccessResponse(c, gin.H{"success": fmt.Sprintf("%s has been deleted", user.Username)})
}

// pathID parses the :id path parameter, writing a 400 on failure.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, "id must be an integer")
		return 0, false
	}
	return id, true
}

// bindStrictJSON decodes the request body rejecting unknown fields.
func bindStrictJSON(c *gin.Context, target any) error {
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(target)
}

// statusFromError maps service sentinel errors onto HTTP status codes.
func statusFromError(err error) int {
	switch err {
	case response.ErrValidation:
		return http.StatusBadRequest
	case response.ErrInvalidCredentials, response.ErrInvalidToken:
		return http.StatusUnauthorized
	case response.ErrForbidden:
		return http.StatusForbidden
	case response.ErrNotFound:
		return http.StatusNotFound
	case response.ErrConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// serviceErrorResponse renders a service error. Sentinel rejections keep
// their message; anything else is an internal failure whose detail stays
// out of the response.
func serviceErrorResponse(c *gin.Context, err error) {
	status := statusFromError(err)
	if status == http.StatusInternalServerError {
		response.ErrorResponse(c, status, "internal server error")
		return
	}
	response.ErrorResponse(c, status, err.Error())
}
