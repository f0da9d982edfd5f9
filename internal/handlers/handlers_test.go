package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/Safa-Alshukaili/mini-pro/internal/middleware"
	"github.com/Safa-Alshukaili/mini-pro/internal/models"
	"github.com/Safa-Alshukaili/mini-pro/internal/repositories/repotest"
	"github.com/Safa-Alshukaili/mini-pro/internal/services"
	"github.com/Safa-Alshukaili/mini-pro/validators"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "handler-secret"

type fakeVerifier struct {
	tokens map[string]*auth.Token
}

func (f *fakeVerifier) VerifyIDToken(_ context.Context, idToken string) (*auth.Token, error) {
	if tok, ok := f.tokens[idToken]; ok {
		return tok, nil
	}
	return nil, errors.New("invalid token")
}

type testServer struct {
	e     *echo.Echo
	store *repotest.Store
}

func newTestServer(t *testing.T, verifier TokenVerifier) *testServer {
	t.Helper()
	store := repotest.NewStore()
	notifier := services.NewNotifier(store.Notifications())
	assembler := services.NewAssembler(store.Posts(), store.Users(), store.Comments())
	postService := services.NewPostService(store.Posts(), store.Users(), store.Comments(), assembler)
	feedService := services.NewFeedService(store.Posts(), store.Follows(), assembler)
	uploadDir := t.TempDir()

	e := echo.New()
	e.Validator = validators.NewValidator()
	NewAuthHandler(store.Users(), verifier, testSecret).RegisterAuthRoutes(e.Group("/auth"))

	api := e.Group("/api", middleware.JWTAuthMiddleware(testSecret, false))
	NewPostHandler(postService, services.NewRepostService(store.Posts(), store.Users(), assembler, notifier), feedService, uploadDir).RegisterPostRoutes(api)
	NewFeedHandler(feedService).RegisterFeedRoutes(api)
	NewLikeHandler(services.NewLikeService(store.Posts(), store.Users(), assembler, notifier)).RegisterLikeRoutes(api)
	NewCommentHandler(services.NewCommentService(store.Posts(), store.Users(), store.Comments(), notifier)).RegisterCommentRoutes(api)
	NewUserHandler(store.Users(), store.Follows(), postService, feedService, uploadDir).RegisterUserRoutes(api)
	NewFollowHandler(store.Follows(), store.Users(), notifier).RegisterFollowRoutes(api)
	NewNotificationHandler(store.Notifications(), store.Users()).RegisterNotificationRoutes(api)
	return &testServer{e: e, store: store}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, token string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	out := map[string]interface{}{}
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func (s *testServer) addUser(t *testing.T, first, email, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &models.User{FirstName: first, LastName: "Test", Email: email, Password: string(hash), Preferences: models.DefaultPreferences()}
	require.NoError(t, s.store.Users().CreateUser(context.Background(), u))
	return u
}

func (s *testServer) createPost(t *testing.T, authorID uint, text string) string {
	t.Helper()
	rec, body := s.do(t, http.MethodPost, "/api/posts", echo.Map{"authorId": authorID, "text": text}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return body["post"].(map[string]interface{})["id"].(string)
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t, nil)

	rec, body := s.do(t, http.MethodPost, "/auth/register", echo.Map{
		"firstname": "Amal", "lastname": "Said", "email": "Amal@Example.com", "password": "secret",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotEmpty(t, body["token"])
	user := body["user"].(map[string]interface{})
	require.Equal(t, "amal@example.com", user["email"])
	require.NotContains(t, user, "password")

	rec, body = s.do(t, http.MethodPost, "/auth/register", echo.Map{
		"firstname": "Amal", "lastname": "Said", "email": "amal@example.com", "password": "secret",
	}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Email already exists", body["message"])

	rec, body = s.do(t, http.MethodPost, "/auth/register", echo.Map{"email": "x@example.com"}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Missing required fields", body["message"])

	rec, body = s.do(t, http.MethodPost, "/auth/login", echo.Map{"email": "amal@example.com", "password": "secret"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	claims, err := middleware.ParseToken(body["token"].(string), testSecret)
	require.NoError(t, err)
	require.Equal(t, uint(user["id"].(float64)), claims.UserID)

	rec, body = s.do(t, http.MethodPost, "/auth/login", echo.Map{"email": "amal@example.com", "password": "wrong"}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Invalid credentials", body["message"])

	rec, body = s.do(t, http.MethodPost, "/auth/login", echo.Map{"email": "nobody@example.com", "password": "secret"}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Invalid credentials", body["message"])
}

func TestFirebaseLogin(t *testing.T) {
	rec, _ := newTestServer(t, nil).do(t, http.MethodPost, "/auth/firebase-login", echo.Map{"idToken": "x"}, "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	verifier := &fakeVerifier{tokens: map[string]*auth.Token{
		"good": {UID: "fb-1", Claims: map[string]interface{}{"email": "amal@example.com", "name": "Amal Al Said"}},
	}}
	s := newTestServer(t, verifier)
	existing := s.addUser(t, "Amal", "amal@example.com", "secret")

	rec, body := s.do(t, http.MethodPost, "/auth/firebase-login", echo.Map{"idToken": "good"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, float64(existing.ID), body["user"].(map[string]interface{})["id"])

	linked, err := s.store.Users().GetUserByFirebaseUID(context.Background(), "fb-1")
	require.NoError(t, err)
	require.Equal(t, existing.ID, linked.ID)

	rec, _ = s.do(t, http.MethodPost, "/auth/firebase-login", echo.Map{"idToken": "bad"}, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestFirebaseLoginCreatesAccount(t *testing.T) {
	verifier := &fakeVerifier{tokens: map[string]*auth.Token{
		"new": {UID: "fb-2", Claims: map[string]interface{}{"email": "new@example.com", "name": "Noor Al Hinai"}},
	}}
	s := newTestServer(t, verifier)

	rec, body := s.do(t, http.MethodPost, "/auth/firebase-login", echo.Map{"idToken": "new"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	user := body["user"].(map[string]interface{})
	require.Equal(t, "Noor", user["firstname"])
	require.Equal(t, "Al Hinai", user["lastname"])
}

func TestPostLifecycle(t *testing.T) {
	s := newTestServer(t, nil)
	a := s.addUser(t, "Amal", "amal@example.com", "secret")
	b := s.addUser(t, "Badr", "badr@example.com", "secret")

	id := s.createPost(t, a.ID, "hello")

	rec, body := s.do(t, http.MethodGet, "/api/posts/"+id, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	post := body["post"].(map[string]interface{})
	require.Equal(t, "hello", post["text"])
	require.Equal(t, []interface{}{}, post["likes"])
	require.Equal(t, []interface{}{}, post["comments"])
	require.Nil(t, post["original"])

	rec, body = s.do(t, http.MethodPatch, "/api/posts/"+id, echo.Map{"userId": b.ID, "text": "hijack"}, "")
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec, body = s.do(t, http.MethodPatch, "/api/posts/"+id, echo.Map{"userId": a.ID, "text": "edited"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "edited", body["post"].(map[string]interface{})["text"])

	rec, body = s.do(t, http.MethodPost, "/api/posts/"+id+"/repost", echo.Map{"userId": b.ID}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, false, body["alreadyReposted"])
	require.Equal(t, float64(1), body["original"].(map[string]interface{})["repostsCount"])
	repost := body["repost"].(map[string]interface{})
	require.Equal(t, id, repost["repostOf"])
	require.Equal(t, "edited", repost["original"].(map[string]interface{})["text"])

	rec, body = s.do(t, http.MethodPost, "/api/posts/"+id+"/repost", echo.Map{"userId": b.ID}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, body["alreadyReposted"])
	require.Nil(t, body["repost"])
	require.Equal(t, float64(1), body["original"].(map[string]interface{})["repostsCount"])

	rec, body = s.do(t, http.MethodPost, "/api/posts/"+id+"/like", echo.Map{"userId": b.ID}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []interface{}{float64(b.ID)}, body["post"].(map[string]interface{})["likes"])

	rec, body = s.do(t, http.MethodPost, "/api/posts/"+id+"/comments", echo.Map{"userId": b.ID, "text": "nice"}, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	comment := body["comment"].(map[string]interface{})
	require.Equal(t, "nice", comment["text"])
	require.Equal(t, "Badr", comment["author"].(map[string]interface{})["firstname"])

	rec, body = s.do(t, http.MethodGet, "/api/explore", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	posts := body["posts"].([]interface{})
	require.Len(t, posts, 2)
	shadow := posts[0].(map[string]interface{})
	require.Equal(t, []interface{}{}, shadow["comments"])
	original := shadow["original"].(map[string]interface{})
	require.Len(t, original["comments"], 1)
	require.Equal(t, float64(1), original["commentsCount"])

	rec, _ = s.do(t, http.MethodDelete, "/api/posts/"+id, echo.Map{"userId": b.ID}, "")
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec, body = s.do(t, http.MethodDelete, "/api/posts/"+id, echo.Map{"userId": a.ID}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, body["ok"])

	rec, body = s.do(t, http.MethodGet, "/api/posts/"+id, nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "Post not found", body["message"])
}

func TestActingUserFromToken(t *testing.T) {
	s := newTestServer(t, nil)
	a := s.addUser(t, "Amal", "amal@example.com", "secret")
	b := s.addUser(t, "Badr", "badr@example.com", "secret")
	id := s.createPost(t, a.ID, "hello")

	token, err := GenerateJWT(b, testSecret)
	require.NoError(t, err)

	rec, body := s.do(t, http.MethodPost, "/api/posts/"+id+"/like", echo.Map{}, token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []interface{}{float64(b.ID)}, body["post"].(map[string]interface{})["likes"])

	rec, _ = s.do(t, http.MethodPost, "/api/posts/"+id+"/like", echo.Map{"userId": a.ID}, token)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec, body = s.do(t, http.MethodPost, "/api/posts/"+id+"/repost", echo.Map{}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "userId required", body["message"])
}

func TestPostErrors(t *testing.T) {
	s := newTestServer(t, nil)
	a := s.addUser(t, "Amal", "amal@example.com", "secret")

	rec, body := s.do(t, http.MethodPost, "/api/posts/not-an-id/repost", echo.Map{"userId": a.ID}, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "Post not found", body["message"])

	rec, body = s.do(t, http.MethodPost, "/api/posts", echo.Map{"authorId": a.ID, "text": " "}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Post must have text or media", body["message"])

	id := s.createPost(t, a.ID, "hello")
	rec, body = s.do(t, http.MethodPost, "/api/posts/"+id+"/comments", echo.Map{"userId": a.ID, "text": ""}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Comment text required", body["message"])

	rec, body = s.do(t, http.MethodPost, "/api/posts/"+id+"/like", echo.Map{"userId": 999}, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "User not found", body["message"])
}

func TestNearbyQueryParams(t *testing.T) {
	s := newTestServer(t, nil)
	a := s.addUser(t, "Amal", "amal@example.com", "secret")

	rec, _ := s.do(t, http.MethodPost, "/api/posts", echo.Map{"authorId": a.ID, "text": "muscat", "lat": "23.5880", "lng": "58.3829"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = s.do(t, http.MethodPost, "/api/posts", echo.Map{"authorId": a.ID, "text": "nizwa", "lat": "22.9333", "lng": "57.5333"}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := s.do(t, http.MethodGet, "/api/posts/nearby?lat=23.59&lng=58.38", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	posts := body["posts"].([]interface{})
	require.Len(t, posts, 1)
	require.Equal(t, "muscat", posts[0].(map[string]interface{})["text"])
	require.Contains(t, posts[0], "distanceKm")

	rec, body = s.do(t, http.MethodGet, "/api/posts/nearby?lat=23.59&lng=58.38&radiusKm=150", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, body["posts"], 2)

	rec, body = s.do(t, http.MethodGet, "/api/posts/nearby?lat=abc&lng=58", nil, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Invalid lat/lng", body["message"])

	rec, body = s.do(t, http.MethodGet, "/api/posts/nearby?lat=23&lng=58&radiusKm=-1", nil, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Invalid radiusKm", body["message"])
}

func TestCreatePostWithMediaUpload(t *testing.T) {
	s := newTestServer(t, nil)
	a := s.addUser(t, "Amal", "amal@example.com", "secret")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("authorId", fmt.Sprint(a.ID)))
	require.NoError(t, mw.WriteField("lat", "23.5"))
	require.NoError(t, mw.WriteField("lng", "58.4"))
	require.NoError(t, mw.WriteField("locationName", "Muttrah"))
	fw, err := mw.CreateFormFile("media", "Cat.PNG")
	require.NoError(t, err)
	_, err = fw.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/posts", &buf)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Post models.PostView `json:"post"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, a.ID, body.Post.AuthorID)
	require.True(t, strings.HasPrefix(body.Post.MediaURL, UploadURLPrefix+"/"))
	require.True(t, strings.HasSuffix(body.Post.MediaURL, ".png"))
	require.Equal(t, "Muttrah", body.Post.LocationName)
	require.InDelta(t, 23.5, body.Post.Location.Lat(), 1e-9)
}

func TestFollowRoutes(t *testing.T) {
	s := newTestServer(t, nil)
	a := s.addUser(t, "Amal", "amal@example.com", "secret")
	b := s.addUser(t, "Badr", "badr@example.com", "secret")
	bPost := s.createPost(t, b.ID, "from badr")

	path := func(format string, args ...interface{}) string {
		return "/api" + fmt.Sprintf(format, args...)
	}

	rec, _ := s.do(t, http.MethodPost, path("/users/%d/follow", b.ID), echo.Map{"userId": a.ID}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := s.do(t, http.MethodPost, path("/users/%d/follow", b.ID), echo.Map{"userId": a.ID}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Already following this user", body["message"])

	rec, _ = s.do(t, http.MethodPost, path("/users/%d/follow", a.ID), echo.Map{"userId": a.ID}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	_, body = s.do(t, http.MethodGet, path("/users/%d/follow-status/%d", b.ID, a.ID), nil, "")
	require.Equal(t, true, body["isFollowing"])

	_, body = s.do(t, http.MethodGet, path("/users/%d/follow-stats", b.ID), nil, "")
	require.Equal(t, float64(1), body["followers"])
	require.Equal(t, float64(0), body["following"])

	_, body = s.do(t, http.MethodGet, path("/users/%d/followers", b.ID), nil, "")
	require.Len(t, body["followers"], 1)

	_, body = s.do(t, http.MethodGet, path("/feed/%d", a.ID), nil, "")
	posts := body["posts"].([]interface{})
	require.Len(t, posts, 1)
	require.Equal(t, bPost, posts[0].(map[string]interface{})["id"])

	_, body = s.do(t, http.MethodGet, path("/users/%d/notifications/unread-count", b.ID), nil, "")
	require.Equal(t, float64(1), body["count"])

	_, body = s.do(t, http.MethodGet, path("/users/%d/notifications", b.ID), nil, "")
	notes := body["notifications"].([]interface{})
	require.Len(t, notes, 1)
	note := notes[0].(map[string]interface{})
	require.Equal(t, models.NotificationFollow, note["type"])
	require.Equal(t, "Amal", note["actor"].(map[string]interface{})["firstname"])

	rec, _ = s.do(t, http.MethodPut, path("/users/%d/notifications/read-all", b.ID), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	_, body = s.do(t, http.MethodGet, path("/users/%d/notifications/unread-count", b.ID), nil, "")
	require.Equal(t, float64(0), body["count"])

	rec, _ = s.do(t, http.MethodPost, path("/users/%d/unfollow", b.ID), echo.Map{"userId": a.ID}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	_, body = s.do(t, http.MethodGet, path("/users/%d/follow-status/%d", b.ID, a.ID), nil, "")
	require.Equal(t, false, body["isFollowing"])
}

func TestUserRoutes(t *testing.T) {
	s := newTestServer(t, nil)
	a := s.addUser(t, "Amal", "amal@example.com", "secret")
	b := s.addUser(t, "Badr", "badr@example.com", "secret")
	postID := s.createPost(t, a.ID, "hello")

	rec, body := s.do(t, http.MethodGet, "/api/users/abc", nil, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Invalid user id", body["message"])

	rec, _ = s.do(t, http.MethodGet, "/api/users/999", nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec, body = s.do(t, http.MethodPut, fmt.Sprintf("/api/users/%d", a.ID), echo.Map{"bio": "hi there", "city": "Muscat", "firstname": ""}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	user := body["user"].(map[string]interface{})
	require.Equal(t, "hi there", user["bio"])
	require.Equal(t, "Muscat", user["city"])
	require.Equal(t, "Amal", user["firstname"])

	rec, body = s.do(t, http.MethodPatch, fmt.Sprintf("/api/users/%d/preferences", a.ID), echo.Map{}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "No settings provided to update", body["message"])

	rec, body = s.do(t, http.MethodPatch, fmt.Sprintf("/api/users/%d/preferences", a.ID), echo.Map{"privateAccount": true}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	prefs := body["user"].(map[string]interface{})["preferences"].(map[string]interface{})
	require.Equal(t, true, prefs["privateAccount"])
	require.Equal(t, true, prefs["showProfileLocation"])

	rec, body = s.do(t, http.MethodPatch, fmt.Sprintf("/api/users/%d/password", a.ID), echo.Map{"currentPassword": "nope", "newPassword": "better"}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Current password is wrong", body["message"])

	rec, body = s.do(t, http.MethodPatch, fmt.Sprintf("/api/users/%d/password", a.ID), echo.Map{"currentPassword": "secret", "newPassword": "abc"}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "New password too short", body["message"])

	rec, _ = s.do(t, http.MethodPatch, fmt.Sprintf("/api/users/%d/password", a.ID), echo.Map{"currentPassword": "secret", "newPassword": "better"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = s.do(t, http.MethodPost, "/auth/login", echo.Map{"email": "amal@example.com", "password": "better"}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body = s.do(t, http.MethodGet, "/api/search?q=BAD", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	users := body["users"].([]interface{})
	require.Len(t, users, 1)
	require.Equal(t, "Badr", users[0].(map[string]interface{})["firstname"])

	rec, _ = s.do(t, http.MethodPost, fmt.Sprintf("/api/users/%d/follow", a.ID), echo.Map{"userId": b.ID}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body = s.do(t, http.MethodGet, fmt.Sprintf("/api/profile/%d", a.ID), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, body["posts"], 1)
	require.Len(t, body["followers"], 1)
	require.Len(t, body["following"], 0)

	token, err := GenerateJWT(b, testSecret)
	require.NoError(t, err)
	rec, _ = s.do(t, http.MethodDelete, fmt.Sprintf("/api/users/%d", a.ID), nil, token)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = s.do(t, http.MethodDelete, fmt.Sprintf("/api/users/%d", a.ID), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/api/posts/"+postID, nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	_, body = s.do(t, http.MethodGet, fmt.Sprintf("/api/users/%d/follow-stats", b.ID), nil, "")
	require.Equal(t, float64(0), body["following"])
}

func TestSaveUploadWritesFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("avatar", "me.jpg")
	require.NoError(t, err)
	_, err = fw.Write([]byte("jpeg"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPut, "/", &buf)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	c := echo.New().NewContext(req, httptest.NewRecorder())

	url, err := saveUpload(c, "avatar", dir, "avatar-")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, UploadURLPrefix+"/avatar-"))

	data, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(url, UploadURLPrefix+"/")))
	require.NoError(t, err)
	require.Equal(t, "jpeg", string(data))

	missing, err := saveUpload(c, "media", dir, "")
	require.NoError(t, err)
	require.Empty(t, missing)
}

func TestHttpErrorFallback(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	err := httpError(c, errors.New("connection reset"), "feed failed")
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusInternalServerError, httpErr.Code)
	require.Equal(t, "feed failed", httpErr.Message)
}

func TestCreatePostAcceptsJSONLocationValues(t *testing.T) {
	s := newTestServer(t, nil)
	a := s.addUser(t, "Amal", "amal@example.com", "secret")

	rec, body := s.do(t, http.MethodPost, "/api/posts", echo.Map{
		"authorId": a.ID, "text": "num", "lat": 23.5, "lng": 58.3, "locationName": "Muttrah",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	post := body["post"].(map[string]interface{})
	require.Equal(t, "Muttrah", post["locationName"])
	coords := post["location"].(map[string]interface{})["coordinates"].([]interface{})
	require.Equal(t, []interface{}{58.3, 23.5}, coords)

	rec, body = s.do(t, http.MethodPost, "/api/posts", echo.Map{
		"authorId": a.ID, "text": "obj", "lat": "23.5", "lng": "58.3",
		"locationDetails": echo.Map{"city": "Muscat"},
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	post = body["post"].(map[string]interface{})
	require.Equal(t, map[string]interface{}{"city": "Muscat"}, post["locationDetails"])

	rec, body = s.do(t, http.MethodPost, "/api/posts", echo.Map{
		"authorId": a.ID, "text": "far", "lat": 123.0, "lng": 58.3,
		"locationDetails": echo.Map{"city": "Muscat"},
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	post = body["post"].(map[string]interface{})
	require.NotContains(t, post, "location")
	require.NotContains(t, post, "locationDetails")
}
