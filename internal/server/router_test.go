package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"filesmanager/internal/blob"
	"filesmanager/internal/cache"
	"filesmanager/internal/database"
	"filesmanager/internal/domain"
	"filesmanager/internal/queue"
	"filesmanager/internal/repository"
	"filesmanager/internal/worker"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
	jobs   *queue.Memory
	mr     *miniredis.Miniredis
	files  *repository.FileRepository
	users  *repository.UserRepository
	blobs  *blob.Local
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()

	db, err := database.Connect(filepath.Join(dir, "files.db"), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, repository.Models()...))
	t.Cleanup(func() { _ = database.Close(db) })

	mr := miniredis.RunT(t)
	rc := cache.NewRedis(cache.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rc.Close() })

	blobs, err := blob.NewLocal(filepath.Join(dir, "blobs"))
	require.NoError(t, err)

	jobs := queue.NewMemory(zap.NewNop(), 100, 1)

	router := NewRouter(Options{
		DB:             db,
		Cache:          rc,
		Jobs:           jobs,
		Blobs:          blobs,
		Log:            zap.NewNop(),
		SessionTTL:     time.Hour,
		EnqueueTimeout: time.Second,
		HashCost:       bcrypt.MinCost,
	})
	return &testServer{
		t:      t,
		router: router,
		jobs:   jobs,
		mr:     mr,
		files:  repository.NewFileRepository(db),
		users:  repository.NewUserRepository(db),
		blobs:  blobs,
	}
}

type request struct {
	method string
	path   string
	token  string
	body   any
	basic  [2]string
}

func (s *testServer) do(r request) *httptest.ResponseRecorder {
	s.t.Helper()
	var body io.Reader
	if r.body != nil {
		b, err := json.Marshal(r.body)
		require.NoError(s.t, err)
		body = bytes.NewReader(b)
	}
	req := httptest.NewRequest(r.method, r.path, body)
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.token != "" {
		req.Header.Set("X-Token", r.token)
	}
	if r.basic[0] != "" || r.basic[1] != "" {
		req.SetBasicAuth(r.basic[0], r.basic[1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

// signUp registers a user and returns a live session token.
func (s *testServer) signUp(email, password string) (int64, string) {
	s.t.Helper()
	w := s.do(request{method: http.MethodPost, path: "/users", body: map[string]string{"email": email, "password": password}})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	var user struct{ ID int64 }
	decode(s.t, w, &user)

	w = s.do(request{method: http.MethodGet, path: "/connect", basic: [2]string{email, password}})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var tok struct{ Token string }
	decode(s.t, w, &tok)
	return user.ID, tok.Token
}

func (s *testServer) upload(token string, body map[string]any) (*httptest.ResponseRecorder, domain.FileRecord) {
	s.t.Helper()
	w := s.do(request{method: http.MethodPost, path: "/files", token: token, body: body})
	var rec domain.FileRecord
	if w.Code == http.StatusCreated {
		decode(s.t, w, &rec)
	}
	return w, rec
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func (s *testServer) runWorkers() {
	s.t.Helper()
	worker.Register(s.jobs,
		worker.NewThumbnailProcessor(s.files, s.blobs, zap.NewNop()),
		worker.NewWelcomeProcessor(s.users, zap.NewNop()),
	)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = s.jobs.Run(ctx)
		close(done)
	}()
	s.t.Cleanup(func() {
		cancel()
		<-done
	})

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer waitCancel()
	require.NoError(s.t, s.jobs.WaitIdle(waitCtx))
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestServer(t)

	w := s.do(request{method: http.MethodPost, path: "/users", body: map[string]string{"email": "a@b.com", "password": "pw1"}})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotContains(t, w.Body.String(), "pw1")
	assert.NotContains(t, w.Body.String(), "password")
	var created struct {
		ID    int64  `json:"id"`
		Email string `json:"email"`
	}
	decode(t, w, &created)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "a@b.com", created.Email)

	w = s.do(request{method: http.MethodGet, path: "/connect", basic: [2]string{"a@b.com", "pw1"}})
	require.Equal(t, http.StatusOK, w.Code)
	var tok struct{ Token string }
	decode(t, w, &tok)
	require.NotEmpty(t, tok.Token)

	w = s.do(request{method: http.MethodGet, path: "/users/me", token: tok.Token})
	require.Equal(t, http.StatusOK, w.Code)
	var me struct {
		ID    int64  `json:"id"`
		Email string `json:"email"`
	}
	decode(t, w, &me)
	assert.Equal(t, created, me)

	w = s.do(request{method: http.MethodGet, path: "/disconnect", token: tok.Token})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = s.do(request{method: http.MethodGet, path: "/users/me", token: tok.Token})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(request{method: http.MethodGet, path: "/disconnect", token: tok.Token})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestConnect_Failures(t *testing.T) {
	s := newTestServer(t)
	s.signUp("a@b.com", "pw1")

	w := s.do(request{method: http.MethodGet, path: "/connect", basic: [2]string{"a@b.com", "nope"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(request{method: http.MethodGet, path: "/connect"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	env := decode(t, w, nil)
	assert.False(t, env.Success)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
}

func TestRegister_Errors(t *testing.T) {
	s := newTestServer(t)
	s.signUp("a@b.com", "pw1")

	cases := []struct {
		body    map[string]string
		message string
	}{
		{map[string]string{"password": "x"}, "Missing email"},
		{map[string]string{"email": "c@d.com"}, "Missing password"},
		{map[string]string{"email": "a@b.com", "password": "x"}, "User already exists"},
	}
	for _, tc := range cases {
		w := s.do(request{method: http.MethodPost, path: "/users", body: tc.body})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, tc.message, decode(t, w, nil).Error.Message)
	}
}

func TestRegister_QueuesWelcomeJob(t *testing.T) {
	s := newTestServer(t)
	s.signUp("a@b.com", "pw1")
	s.runWorkers()

	jobs := s.jobs.Jobs(domain.UserQueue)
	require.Len(t, jobs, 1)
	assert.Equal(t, queue.StateCompleted, jobs[0].State)
}

func TestSessionExpires(t *testing.T) {
	s := newTestServer(t)
	_, token := s.signUp("a@b.com", "pw1")

	s.mr.FastForward(time.Hour + time.Second)

	w := s.do(request{method: http.MethodGet, path: "/users/me", token: token})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestImageUploadAndThumbnails(t *testing.T) {
	s := newTestServer(t)
	_, token := s.signUp("a@b.com", "pw1")

	w, rec := s.upload(token, map[string]any{
		"name": "photo.png",
		"type": "image",
		"data": base64.StdEncoding.EncodeToString(pngBytes(t, 600, 400)),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotZero(t, rec.ID)
	assert.NotContains(t, w.Body.String(), "localPath")

	thumbPath := fmt.Sprintf("/files/%d/data?size=100", rec.ID)
	w = s.do(request{method: http.MethodGet, path: thumbPath, token: token})
	assert.Equal(t, http.StatusNotFound, w.Code, "derivative does not exist before the job runs")

	jobs := s.jobs.Jobs(domain.FileQueue)
	require.Len(t, jobs, 1)
	assert.JSONEq(t, fmt.Sprintf(`{"fileId":%d,"userId":%d}`, rec.ID, rec.UserID), string(jobs[0].Payload))

	s.runWorkers()
	job, _ := s.jobs.Job(jobs[0].ID)
	require.Equal(t, queue.StateCompleted, job.State, job.Reason)

	stored, err := s.files.GetByID(context.Background(), rec.UserID, rec.ID)
	require.NoError(t, err)
	for _, width := range domain.ThumbnailWidths {
		_, err := s.blobs.Read(context.Background(), blob.DerivativePath(stored.LocalPath, width))
		assert.NoError(t, err, "derivative %d", width)
	}

	w = s.do(request{method: http.MethodGet, path: thumbPath, token: token})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	cfg, _, err := image.DecodeConfig(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Width)

	w = s.do(request{method: http.MethodGet, path: fmt.Sprintf("/files/%d/data", rec.ID), token: token})
	require.Equal(t, http.StatusOK, w.Code)
	cfg, _, err = image.DecodeConfig(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 600, cfg.Width)

	w = s.do(request{method: http.MethodGet, path: fmt.Sprintf("/files/%d/data?size=42", rec.ID), token: token})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPublishControlsAnonymousDownload(t *testing.T) {
	s := newTestServer(t)
	_, token := s.signUp("a@b.com", "pw1")
	_, other := s.signUp("c@d.com", "pw2")

	w, rec := s.upload(token, map[string]any{
		"name": "notes.txt",
		"type": "file",
		"data": base64.StdEncoding.EncodeToString([]byte("Hello Webstack!\n")),
	})
	require.Equal(t, http.StatusCreated, w.Code)
	dataPath := fmt.Sprintf("/files/%d/data", rec.ID)

	w = s.do(request{method: http.MethodGet, path: dataPath})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotContains(t, w.Body.String(), "Hello Webstack")

	w = s.do(request{method: http.MethodGet, path: dataPath, token: other})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(request{method: http.MethodPut, path: fmt.Sprintf("/files/%d/publish", rec.ID), token: other})
	assert.Equal(t, http.StatusNotFound, w.Code, "only the owner can publish")

	w = s.do(request{method: http.MethodPut, path: fmt.Sprintf("/files/%d/publish", rec.ID), token: token})
	require.Equal(t, http.StatusOK, w.Code)
	var published domain.FileRecord
	decode(t, w, &published)
	assert.True(t, published.IsPublic)

	w = s.do(request{method: http.MethodGet, path: dataPath})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Hello Webstack!\n", w.Body.String())

	w = s.do(request{method: http.MethodPut, path: fmt.Sprintf("/files/%d/unpublish", rec.ID), token: token})
	require.Equal(t, http.StatusOK, w.Code)
	var unpublished domain.FileRecord
	decode(t, w, &unpublished)
	assert.False(t, unpublished.IsPublic)

	w = s.do(request{method: http.MethodGet, path: dataPath})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFolders(t *testing.T) {
	s := newTestServer(t)
	_, token := s.signUp("a@b.com", "pw1")

	w, folder := s.upload(token, map[string]any{"name": "images", "type": "folder", "isPublic": true})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"parentId":0`)

	w, child := s.upload(token, map[string]any{
		"name":     "a.txt",
		"type":     "file",
		"parentId": folder.ID,
		"data":     base64.StdEncoding.EncodeToString([]byte("a")),
	})
	require.Equal(t, http.StatusCreated, w.Code)
	id, ok := child.Parent.FolderID()
	require.True(t, ok)
	assert.Equal(t, folder.ID, id)

	w, _ = s.upload(token, map[string]any{
		"name":     "b.txt",
		"type":     "file",
		"parentId": child.ID,
		"data":     base64.StdEncoding.EncodeToString([]byte("b")),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_PARENT", decode(t, w, nil).Error.Code)

	w = s.do(request{method: http.MethodGet, path: fmt.Sprintf("/files/%d/data", folder.ID), token: token})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "A folder doesn't have content", decode(t, w, nil).Error.Message)
}

func TestListFiles(t *testing.T) {
	s := newTestServer(t)
	_, token := s.signUp("a@b.com", "pw1")

	w, folder := s.upload(token, map[string]any{"name": "dir", "type": "folder"})
	require.Equal(t, http.StatusCreated, w.Code)
	for i := 0; i < 25; i++ {
		w, _ := s.upload(token, map[string]any{
			"name":     fmt.Sprintf("f%d.txt", i),
			"type":     "file",
			"parentId": fmt.Sprint(folder.ID),
			"data":     base64.StdEncoding.EncodeToString([]byte("x")),
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	list := func(query string) (int, domain.Page) {
		w := s.do(request{method: http.MethodGet, path: "/files" + query, token: token})
		var page domain.Page
		if w.Code == http.StatusOK {
			decode(t, w, &page)
		}
		return w.Code, page
	}

	code, p0 := list(fmt.Sprintf("?parentId=%d", folder.ID))
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, p0.Items, 20)
	assert.Equal(t, int64(25), p0.Total)

	_, p1 := list(fmt.Sprintf("?parentId=%d&page=1", folder.ID))
	assert.Len(t, p1.Items, 5)
	assert.Equal(t, 1, p1.Page)
	assert.Greater(t, p0.Items[19].ID, p1.Items[0].ID)

	_, root := list("?parentId=0")
	require.Len(t, root.Items, 1)
	assert.Equal(t, folder.ID, root.Items[0].ID)

	_, all := list("?page=notanumber")
	assert.Equal(t, 0, all.Page)
	assert.Equal(t, int64(26), all.Total)

	_, huge := list(fmt.Sprintf("?page=%d", domain.MaxPage+1))
	assert.Equal(t, 0, huge.Page)

	code, _ = list("?parentId=abc")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestShowFile(t *testing.T) {
	s := newTestServer(t)
	_, token := s.signUp("a@b.com", "pw1")
	_, other := s.signUp("c@d.com", "pw2")

	_, folder := s.upload(token, map[string]any{"name": "dir", "type": "folder"})

	w := s.do(request{method: http.MethodGet, path: fmt.Sprintf("/files/%d", folder.ID), token: token})
	require.Equal(t, http.StatusOK, w.Code)
	var got domain.FileRecord
	decode(t, w, &got)
	assert.Equal(t, "dir", got.Name)

	w = s.do(request{method: http.MethodGet, path: fmt.Sprintf("/files/%d", folder.ID), token: other})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(request{method: http.MethodGet, path: "/files/not-an-id", token: token})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(request{method: http.MethodGet, path: fmt.Sprintf("/files/%d", folder.ID)})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUploadRequiresSession(t *testing.T) {
	s := newTestServer(t)
	w, _ := s.upload("bogus", map[string]any{"name": "dir", "type": "folder"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStatusAndStats(t *testing.T) {
	s := newTestServer(t)
	_, token := s.signUp("a@b.com", "pw1")
	s.upload(token, map[string]any{"name": "dir", "type": "folder"})

	w := s.do(request{method: http.MethodGet, path: "/status"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":{"redis":true,"db":true}}`, w.Body.String())

	w = s.do(request{method: http.MethodGet, path: "/stats"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":{"users":1,"files":1}}`, w.Body.String())
}
