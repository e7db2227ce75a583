package interfaces

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-screener/domain"
	"resume-screener/infrastructure"
)

// promptScoredGenerator answers with a score picked by inspecting the
// prompt, so each uploaded file can get a distinct result.
type promptScoredGenerator struct {
	scores map[string]int
}

func (g *promptScoredGenerator) Generate(_ context.Context, prompt string) (string, error) {
	for marker, score := range g.scores {
		if strings.Contains(prompt, marker) {
			return fmt.Sprintf(`{
				"overall_score": %d,
				"sub_scores": {"skills": %d, "experience": 5, "education": 5, "domain_knowledge": 5},
				"summary": "scored %d",
				"skills": {"matched": [], "missing": [], "recommended_improvements": []}
			}`, score, score, score), nil
		}
	}
	return "no json here", nil
}

func newTestRouter(t *testing.T, gen infrastructure.Generator) (*gin.Engine, *infrastructure.RecordStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := infrastructure.NewSQLiteConnection(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	store := infrastructure.NewRecordStore(db)
	engine := infrastructure.NewEvaluationEngine(gen, time.Second)

	router := gin.New()
	NewHTTPHandler(router, store, engine, 2)
	return router, store
}

func postForm(router *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func registerUser(t *testing.T, router *gin.Engine, username, password string) {
	t.Helper()
	w := postForm(router, "/register", url.Values{"username": {username}, "password": {password}})
	require.Equal(t, http.StatusCreated, w.Code)
}

func multipartUpload(t *testing.T, jd string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("jd", jd))
	for name, content := range files {
		part, err := writer.CreateFormFile("resumes", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestRegisterAndLogin(t *testing.T) {
	router, _ := newTestRouter(t, &promptScoredGenerator{})

	registerUser(t, router, "alice", "secret")

	// Duplicate registration is rejected distinguishably.
	w := postForm(router, "/register", url.Values{"username": {"alice"}, "password": {"other"}})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = postForm(router, "/login", url.Values{"username": {"alice"}, "password": {"secret"}})
	assert.Equal(t, http.StatusOK, w.Code)

	w = postForm(router, "/login", url.Values{"username": {"alice"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterValidation(t *testing.T) {
	router, _ := newTestRouter(t, &promptScoredGenerator{})

	w := postForm(router, "/register", url.Values{"username": {"alice"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadRequiresAuth(t *testing.T) {
	router, _ := newTestRouter(t, &promptScoredGenerator{})

	body, contentType := multipartUpload(t, "jd", map[string]string{"cv.txt": "resume"})
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUploadBatchRanksAndPersists(t *testing.T) {
	gen := &promptScoredGenerator{scores: map[string]int{
		"alpha resume body": 3,
		"beta resume body":  7,
	}}
	router, store := newTestRouter(t, gen)
	registerUser(t, router, "alice", "secret")

	body, contentType := multipartUpload(t, "Senior Go Engineer", map[string]string{
		"alpha.txt": "alpha resume body",
		"beta.txt":  "beta resume body",
	})
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.SetBasicAuth("alice", "secret")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Results  []domain.EvaluationResult `json:"results"`
		TopScore int                       `json:"top_score"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	// One result per submitted file, highest score first.
	require.Len(t, resp.Results, 2)
	assert.Equal(t, 7, resp.TopScore)
	assert.Equal(t, "beta.txt", resp.Results[0].Filename)
	assert.Equal(t, "alpha.txt", resp.Results[1].Filename)

	// Both evaluations persisted for the authenticated user.
	user, err := store.FindUserByUsername("alice")
	require.NoError(t, err)
	latest, err := store.FetchLatestByFilename(user.ID, "beta.txt")
	require.NoError(t, err)
	assert.Equal(t, 7, latest.OverallScore)
}

func TestUploadUnparseableModelOutputYieldsFallback(t *testing.T) {
	// Generator returns prose for unknown resumes; the batch still
	// returns one fully-shaped result for the file.
	router, _ := newTestRouter(t, &promptScoredGenerator{})
	registerUser(t, router, "alice", "secret")

	body, contentType := multipartUpload(t, "jd text", map[string]string{"cv.txt": "unknown"})
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.SetBasicAuth("alice", "secret")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Results  []domain.EvaluationResult `json:"results"`
		TopScore int                       `json:"top_score"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, 0, resp.Results[0].OverallScore)
	assert.Equal(t, domain.FallbackSummary, resp.Results[0].Summary)
	assert.Equal(t, 0, resp.TopScore)
}

func TestUploadMissingJD(t *testing.T) {
	router, _ := newTestRouter(t, &promptScoredGenerator{})
	registerUser(t, router, "alice", "secret")

	body, contentType := multipartUpload(t, "", map[string]string{"cv.txt": "resume"})
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.SetBasicAuth("alice", "secret")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHistoryAndDashboard(t *testing.T) {
	gen := &promptScoredGenerator{scores: map[string]int{"resume body": 6}}
	router, _ := newTestRouter(t, gen)
	registerUser(t, router, "alice", "secret")

	body, contentType := multipartUpload(t, "jd", map[string]string{"cv.txt": "resume body"})
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.SetBasicAuth("alice", "secret")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/history", nil)
	req.SetBasicAuth("alice", "secret")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var history struct {
		Results []struct {
			Filename string                  `json:"filename"`
			Result   domain.EvaluationResult `json:"result"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	require.Len(t, history.Results, 1)
	assert.Equal(t, "cv.txt", history.Results[0].Filename)
	assert.Equal(t, 6, history.Results[0].Result.OverallScore)

	req = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.SetBasicAuth("alice", "secret")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var dashboard struct {
		Data []struct {
			Filename string `json:"filename"`
			Score    int    `json:"score"`
			Skills   int    `json:"skills"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dashboard))
	require.Len(t, dashboard.Data, 1)
	assert.Equal(t, 6, dashboard.Data[0].Score)
	assert.Equal(t, 6, dashboard.Data[0].Skills)
}

func TestHistoryScopedToUser(t *testing.T) {
	gen := &promptScoredGenerator{scores: map[string]int{"resume body": 6}}
	router, _ := newTestRouter(t, gen)
	registerUser(t, router, "alice", "secret")
	registerUser(t, router, "bob", "hunter2")

	body, contentType := multipartUpload(t, "jd", map[string]string{"cv.txt": "resume body"})
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.SetBasicAuth("alice", "secret")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/history", nil)
	req.SetBasicAuth("bob", "hunter2")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var history struct {
		Results []json.RawMessage `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	assert.Empty(t, history.Results)
}

func TestDownloadMissingReport(t *testing.T) {
	router, _ := newTestRouter(t, &promptScoredGenerator{})
	registerUser(t, router, "alice", "secret")

	req := httptest.NewRequest(http.MethodGet, "/download/nope.pdf", nil)
	req.SetBasicAuth("alice", "secret")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"cv.pdf", "cv.pdf"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\me\cv.pdf`, "cv.pdf"},
		{"my resume (final).pdf", "my_resume__final_.pdf"},
		{"..", "upload"},
		{"", "upload"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeFilename(tt.in), "input %q", tt.in)
	}
}
