package handlers

import (
	"net/http"
	"strings"

	"github.com/Safa-Alshukaili/mini-pro/internal/models"
	"github.com/Safa-Alshukaili/mini-pro/internal/repositories"
	"github.com/Safa-Alshukaili/mini-pro/internal/services"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength applies to registration and password changes
const MinPasswordLength = 4

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	userRepository   repositories.UserRepository
	followRepository repositories.FollowRepository
	postService      *services.PostService
	feedService      *services.FeedService
	uploadDir        string
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, followRepo repositories.FollowRepository, postService *services.PostService, feedService *services.FeedService, uploadDir string) *UserHandler {
	return &UserHandler{
		userRepository:   userRepo,
		followRepository: followRepo,
		postService:      postService,
		feedService:      feedService,
		uploadDir:        uploadDir,
	}
}

// RegisterUserRoutes registers user profile-related routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/users/:id", h.GetUser)
	g.GET("/profile/:id", h.GetProfile)
	g.PUT("/users/:id", h.UpdateProfile)
	g.PATCH("/users/:id/preferences", h.UpdatePreferences)
	g.PATCH("/users/:id/password", h.ChangePassword)
	g.DELETE("/users/:id", h.DeleteUser)
	g.GET("/search", h.SearchUsers)
}

func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := parseUserID(c, "id")
	if err != nil {
		return err
	}
	user, err := h.userRepository.GetUserByID(c.Request().Context(), id)
	if err != nil {
		return httpError(c, err, "user fetch failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"user": user})
}

// GetProfile returns a user together with their posts, followers and following
func (h *UserHandler) GetProfile(c echo.Context) error {
	id, err := parseUserID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	user, err := h.userRepository.GetUserByID(ctx, id)
	if err != nil {
		return httpError(c, err, "profile failed")
	}
	posts, err := h.feedService.ProfilePosts(ctx, id)
	if err != nil {
		return httpError(c, err, "profile failed")
	}
	followers, err := h.followRepository.GetFollowers(ctx, id)
	if err != nil {
		return httpError(c, err, "profile failed")
	}
	following, err := h.followRepository.GetFollowing(ctx, id)
	if err != nil {
		return httpError(c, err, "profile failed")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user":      user,
		"posts":     posts,
		"followers": followers,
		"following": following,
	})
}

// UpdateProfile edits name, bio, location and avatar. Accepts JSON or a
// multipart form with an optional "avatar" file.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	id, err := parseUserID(c, "id")
	if err != nil {
		return err
	}
	if err := requireSelf(c, id); err != nil {
		return err
	}
	req, err := bindProfileUpdate(c)
	if err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	fields := map[string]interface{}{}
	if req.FirstName != nil && strings.TrimSpace(*req.FirstName) != "" {
		fields["first_name"] = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil && strings.TrimSpace(*req.LastName) != "" {
		fields["last_name"] = strings.TrimSpace(*req.LastName)
	}
	if req.Bio != nil {
		fields["bio"] = *req.Bio
	}
	if req.Country != nil {
		fields["country"] = strings.TrimSpace(*req.Country)
	}
	if req.City != nil {
		fields["city"] = strings.TrimSpace(*req.City)
	}
	if req.AvatarURL != nil {
		fields["avatar_url"] = *req.AvatarURL
	}
	avatarURL, err := saveUpload(c, "avatar", h.uploadDir, "avatar-")
	if err != nil {
		return httpError(c, err, "update failed")
	}
	if avatarURL != "" {
		fields["avatar_url"] = avatarURL
	}

	ctx := c.Request().Context()
	var user *models.User
	if len(fields) == 0 {
		user, err = h.userRepository.GetUserByID(ctx, id)
	} else {
		user, err = h.userRepository.UpdateUserFields(ctx, id, fields)
	}
	if err != nil {
		return httpError(c, err, "update failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"user": user})
}

// UpdatePreferences changes only the settings present in the body
func (h *UserHandler) UpdatePreferences(c echo.Context) error {
	id, err := parseUserID(c, "id")
	if err != nil {
		return err
	}
	if err := requireSelf(c, id); err != nil {
		return err
	}
	var req models.UpdatePreferencesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	fields := map[string]interface{}{}
	if req.PrivateAccount != nil {
		fields["pref_private_account"] = *req.PrivateAccount
	}
	if req.ShowProfileLocation != nil {
		fields["pref_show_profile_location"] = *req.ShowProfileLocation
	}
	if req.EmailNotifications != nil {
		fields["pref_email_notifications"] = *req.EmailNotifications
	}
	if req.PushNotifications != nil {
		fields["pref_push_notifications"] = *req.PushNotifications
	}
	if len(fields) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "No settings provided to update")
	}

	user, err := h.userRepository.UpdateUserFields(c.Request().Context(), id, fields)
	if err != nil {
		return httpError(c, err, "update preferences failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"user": user})
}

// ChangePassword replaces the password after checking the current one
func (h *UserHandler) ChangePassword(c echo.Context) error {
	id, err := parseUserID(c, "id")
	if err != nil {
		return err
	}
	if err := requireSelf(c, id); err != nil {
		return err
	}
	var req models.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing passwords")
	}
	if len(req.NewPassword) < MinPasswordLength {
		return echo.NewHTTPError(http.StatusBadRequest, "New password too short")
	}

	ctx := c.Request().Context()
	user, err := h.userRepository.GetUserByID(ctx, id)
	if err != nil {
		return httpError(c, err, "change password failed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Current password is wrong")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return httpError(c, err, "change password failed")
	}
	if _, err := h.userRepository.UpdateUserFields(ctx, id, map[string]interface{}{"password": string(hashed)}); err != nil {
		return httpError(c, err, "change password failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// DeleteUser deletes an account with its posts and follow edges
func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := parseUserID(c, "id")
	if err != nil {
		return err
	}
	if err := requireSelf(c, id); err != nil {
		return err
	}
	ctx := c.Request().Context()

	if _, err := h.userRepository.GetUserByID(ctx, id); err != nil {
		return httpError(c, err, "delete account failed")
	}
	if _, err := h.postService.DeleteAllByAuthor(ctx, id); err != nil {
		return httpError(c, err, "delete account failed")
	}
	if err := h.followRepository.DeleteFollowsOfUser(ctx, id); err != nil {
		return httpError(c, err, "delete account failed")
	}
	if err := h.userRepository.DeleteUser(ctx, id); err != nil {
		return httpError(c, err, "delete account failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// SearchUsers searches for users by name or email
func (h *UserHandler) SearchUsers(c echo.Context) error {
	users, err := h.userRepository.SearchUsers(c.Request().Context(), strings.TrimSpace(c.QueryParam("q")))
	if err != nil {
		return httpError(c, err, "search failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"users": users})
}

// bindProfileUpdate reads a profile update from JSON or form fields. For
// forms a field that is present but empty still counts as sent.
func bindProfileUpdate(c echo.Context) (models.UpdateUserRequest, error) {
	var req models.UpdateUserRequest
	ct := c.Request().Header.Get(echo.HeaderContentType)
	if !strings.HasPrefix(ct, echo.MIMEMultipartForm) && !strings.HasPrefix(ct, echo.MIMEApplicationForm) {
		if err := c.Bind(&req); err != nil {
			return req, echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
		}
		return req, nil
	}

	form, err := c.FormParams()
	if err != nil {
		return req, echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	pick := func(key string) *string {
		if vs, ok := form[key]; ok && len(vs) > 0 {
			v := vs[0]
			return &v
		}
		return nil
	}
	req.FirstName = pick("firstname")
	req.LastName = pick("lastname")
	req.Bio = pick("bio")
	req.AvatarURL = pick("avatarUrl")
	req.Country = pick("country")
	req.City = pick("city")
	return req, nil
}
