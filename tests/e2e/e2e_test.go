package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"picshare/internal/database"
	"picshare/internal/middleware"
	"picshare/internal/modules/auth"
	"picshare/internal/modules/feed"
	jwtsvc "picshare/internal/pkg/jwt"
	"picshare/internal/repository"
	"picshare/internal/storage"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n" + "e2e-image-body")

type testSuite struct {
	router *gin.Engine
	media  *storage.MediaStore
}

type envelope struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   *errorDetail           `json:"error,omitempty"`
}

type errorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func setupSuite(t *testing.T) *testSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:e2e_%s?mode=memory&cache=shared", t.Name())
	db, err := database.Connect(dsn)
	require.NoError(t, err, "failed to connect to test database")
	require.NoError(t, database.Migrate(db))

	media, err := storage.NewMediaStore(t.TempDir())
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(db)
	imageRepo := repository.NewImageRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	j := jwtsvc.New("e2e-secret", time.Hour)

	authHandler := auth.NewHandler(auth.NewService(userRepo, j))
	feedHandler := feed.NewHandler(feed.NewService(imageRepo, commentRepo, media, zerolog.Nop()))

	r := gin.New()
	r.Use(middleware.CORS())
	r.Static("/uploads", media.Dir())

	api := r.Group("/")
	{
		authHandler.RegisterPublicRoutes(api)
		feedHandler.RegisterPublicRoutes(api)

		protected := api.Group("/")
		protected.Use(middleware.Auth(j))
		{
			authHandler.RegisterProtectedRoutes(protected)
			feedHandler.RegisterProtectedRoutes(protected)
		}
	}

	return &testSuite{router: r, media: media}
}

func (s *testSuite) doJSON(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testSuite) register(t *testing.T, username, password string) (string, int64) {
	t.Helper()
	w := s.doJSON(t, http.MethodPost, "/auth/register", "", gin.H{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, w.Code, "register failed: %s", w.Body.String())

	var resp envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	token := resp.Data["token"].(string)
	user := resp.Data["user"].(map[string]interface{})
	return token, int64(user["id"].(float64))
}

func (s *testSuite) uploadImage(t *testing.T, token, filename, description string) map[string]interface{} {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(pngBytes)
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("description", description))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/images/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, "upload failed: %s", w.Body.String())

	var resp envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data
}

func TestRegisterConflict(t *testing.T) {
	s := setupSuite(t)

	token, _ := s.register(t, "alice", "pw123456")
	assert.NotEmpty(t, token)

	w := s.doJSON(t, http.MethodPost, "/auth/register", "", gin.H{
		"username": "alice",
		"password": "pw654321",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	var resp envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "USERNAME_TAKEN", resp.Error.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	s := setupSuite(t)
	s.register(t, "bob", "correct-pw")

	w := s.doJSON(t, http.MethodPost, "/auth/login", "", gin.H{
		"username": "bob",
		"password": "wrong-pw",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var resp envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_CREDENTIALS", resp.Error.Code)
	assert.Nil(t, resp.Data["token"], "no token on failed login")

	// unknown username yields the identical error
	w = s.doJSON(t, http.MethodPost, "/auth/login", "", gin.H{
		"username": "nobody",
		"password": "whatever",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var resp2 envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp2))
	assert.Equal(t, resp.Error.Code, resp2.Error.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := setupSuite(t)

	w := s.doJSON(t, http.MethodPost, "/images/1/like", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// the public feed stays readable without a session
	w = s.doJSON(t, http.MethodGet, "/images", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUploadListAndFetchStatic(t *testing.T) {
	s := setupSuite(t)
	token, _ := s.register(t, "carol", "pw123456")

	uploaded := s.uploadImage(t, token, "holiday.PNG", "at the beach")
	filename := uploaded["filename"].(string)
	url := uploaded["url"].(string)
	assert.Equal(t, "/uploads/"+filename, url)

	// listing contains it, with the original name intact
	w := s.doJSON(t, http.MethodGet, "/images", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var listing struct {
		Data []map[string]interface{} `json:"data"`
		Pag  map[string]interface{}   `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	require.Len(t, listing.Data, 1)
	assert.Equal(t, "holiday.PNG", listing.Data[0]["original_name"])
	assert.Equal(t, float64(1), listing.Pag["total"])

	// the file is fetchable at the returned url
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, pngBytes, rec.Body.Bytes())
}

func TestLikeUnlikeFlow(t *testing.T) {
	s := setupSuite(t)
	token, _ := s.register(t, "dave", "pw123456")

	uploaded := s.uploadImage(t, token, "pic.png", "likeable")
	imageID := int64(uploaded["id"].(float64))

	likePath := fmt.Sprintf("/images/%d/like", imageID)
	for i := 0; i < 3; i++ {
		w := s.doJSON(t, http.MethodPost, likePath, token, nil)
		require.Equal(t, http.StatusOK, w.Code)
	}

	var resp envelope
	for i := 0; i < 5; i++ {
		w := s.doJSON(t, http.MethodDelete, likePath, token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}

	assert.Equal(t, float64(0), resp.Data["likes"], "likes must floor at zero")

	w := s.doJSON(t, http.MethodPost, "/images/99999/like", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCommentFlow(t *testing.T) {
	s := setupSuite(t)
	token, userID := s.register(t, "erin", "pw123456")

	uploaded := s.uploadImage(t, token, "pic.png", "discuss")
	imageID := int64(uploaded["id"].(float64))
	commentPath := fmt.Sprintf("/images/%d/comment", imageID)

	w := s.doJSON(t, http.MethodPost, commentPath, token, gin.H{"text": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.doJSON(t, http.MethodPost, commentPath, token, gin.H{"text": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.doJSON(t, http.MethodPost, commentPath, token, gin.H{"text": " hi "})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "hi", resp.Data["text"])
	author := resp.Data["user"].(map[string]interface{})
	assert.Equal(t, float64(userID), author["id"])
	assert.Equal(t, "erin", author["username"])
}

func TestDeleteFlow(t *testing.T) {
	s := setupSuite(t)
	token, _ := s.register(t, "frank", "pw123456")

	uploaded := s.uploadImage(t, token, "pic.png", "short-lived")
	imageID := int64(uploaded["id"].(float64))
	filename := uploaded["filename"].(string)

	// remove the backing file first: delete must still succeed
	require.NoError(t, s.media.Remove(filename))

	w := s.doJSON(t, http.MethodDelete, fmt.Sprintf("/images/%d", imageID), token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.doJSON(t, http.MethodGet, "/images", "", nil)
	var listing struct {
		Data []map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	assert.Empty(t, listing.Data)

	w = s.doJSON(t, http.MethodDelete, fmt.Sprintf("/images/%d", imageID), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateProfileFlow(t *testing.T) {
	s := setupSuite(t)
	token, _ := s.register(t, "grace", "pw123456")
	s.register(t, "heidi", "pw123456")

	w := s.doJSON(t, http.MethodPatch, "/auth/me", token, gin.H{"username": "heidi"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.doJSON(t, http.MethodPatch, "/auth/me", token, gin.H{"username": "grace2"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	user := resp.Data["user"].(map[string]interface{})
	assert.Equal(t, "grace2", user["username"])

	// the old token still works; callers just refresh their cached identity
	w = s.doJSON(t, http.MethodPatch, "/auth/me", token, gin.H{"username": "grace2"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSearchAcrossDescriptionAndComments(t *testing.T) {
	s := setupSuite(t)
	token, _ := s.register(t, "ivan", "pw123456")

	s.uploadImage(t, token, "a.png", "mountain lake at dawn")
	second := s.uploadImage(t, token, "b.png", "street food market")
	secondID := int64(second["id"].(float64))

	w := s.doJSON(t, http.MethodPost, fmt.Sprintf("/images/%d/comment", secondID), token, gin.H{"text": "reminds me of the lake"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.doJSON(t, http.MethodGet, "/images?search=LAKE", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var listing struct {
		Data []map[string]interface{} `json:"data"`
		Pag  map[string]interface{}   `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	assert.Equal(t, float64(2), listing.Pag["total"])
	assert.Len(t, listing.Data, 2)
}
