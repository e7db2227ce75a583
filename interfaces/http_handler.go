package interfaces

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"resume-screener/domain"
	"resume-screener/infrastructure"
)

const userKey = "currentUser"

type HTTPHandler struct {
	Store   *infrastructure.RecordStore
	Engine  *infrastructure.EvaluationEngine
	Workers int
}

func NewHTTPHandler(router *gin.Engine, store *infrastructure.RecordStore, engine *infrastructure.EvaluationEngine, workers int) {
	if workers < 1 {
		workers = 1
	}
	h := &HTTPHandler{Store: store, Engine: engine, Workers: workers}

	router.POST("/register", h.Register)
	router.POST("/login", h.Login)

	auth := router.Group("/", h.RequireUser)
	auth.POST("/upload", h.Upload)
	auth.GET("/history", h.History)
	auth.GET("/dashboard", h.Dashboard)
	auth.GET("/download/:filename", h.Download)
}

// RequireUser authenticates the request with HTTP Basic credentials and
// stores the resolved user in the request context.
func (h *HTTPHandler) RequireUser(c *gin.Context) {
	username, password, ok := c.Request.BasicAuth()
	if !ok {
		c.Header("WWW-Authenticate", `Basic realm="resume-screener"`)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	user, ok := h.Store.VerifyCredentials(username, password)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	c.Set(userKey, user)
	c.Next()
}

func currentUser(c *gin.Context) domain.User {
	return c.MustGet(userKey).(domain.User)
}

func (h *HTTPHandler) Register(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")
	if username == "" || password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	err := h.Store.CreateUser(username, password, c.PostForm("fullname"), c.PostForm("email"))
	if errors.Is(err, infrastructure.ErrUsernameTaken) {
		c.JSON(http.StatusConflict, gin.H{"error": "username already exists"})
		return
	}
	if err != nil {
		logrus.WithError(err).Error("failed to create user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "registration successful"})
}

func (h *HTTPHandler) Login(c *gin.Context) {
	user, ok := h.Store.VerifyCredentials(strings.TrimSpace(c.PostForm("username")), c.PostForm("password"))
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": user.ID, "username": user.Username})
}

// Upload evaluates a batch of resumes against one job description. The
// response carries exactly one result per submitted file, ranked by
// overall score; individual failures surface as fallback results, never
// as missing entries.
func (h *HTTPHandler) Upload(c *gin.Context) {
	user := currentUser(c)

	jd := strings.TrimSpace(c.PostForm("jd"))
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}
	files := form.File["resumes"]
	if jd == "" || len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "job description and at least one resume are required"})
		return
	}

	results := make([]domain.EvaluationResult, len(files))
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.SetLimit(h.Workers)
	for i, header := range files {
		g.Go(func() error {
			filename := sanitizeFilename(header.Filename)
			text, err := readAndExtract(header)
			if err != nil {
				logrus.WithField("filename", filename).WithError(err).Warn("text extraction failed, evaluating empty text")
				text = ""
			}
			result := h.Engine.Evaluate(ctx, text, jd)
			result.Filename = filename
			results[i] = result
			return nil
		})
	}
	// Workers never return errors; failures degrade to fallback results.
	_ = g.Wait()

	for _, result := range results {
		if err := h.Store.SaveEvaluation(user.ID, result.Filename, jd, result); err != nil {
			logrus.WithField("filename", result.Filename).WithError(err).Error("failed to persist evaluation")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save evaluation"})
			return
		}
	}

	ranked, topScore := domain.Rank(results)
	c.JSON(http.StatusOK, gin.H{"results": ranked, "top_score": topScore})
}

func (h *HTTPHandler) History(c *gin.Context) {
	user := currentUser(c)

	recs, err := h.Store.FetchAll(user.ID)
	if err != nil {
		logrus.WithError(err).Error("failed to fetch history")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch history"})
		return
	}

	results := make([]gin.H, 0, len(recs))
	for _, rec := range recs {
		result, err := domain.DecodeResult([]byte(rec.ResultJSON))
		if err != nil {
			logrus.WithField("id", rec.ID).WithError(err).Warn("skipping undecodable evaluation record")
			continue
		}
		results = append(results, gin.H{
			"filename": rec.Filename,
			"date":     rec.CreatedAt,
			"result":   result,
		})
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (h *HTTPHandler) Dashboard(c *gin.Context) {
	user := currentUser(c)

	recs, err := h.Store.FetchAll(user.ID)
	if err != nil {
		logrus.WithError(err).Error("failed to fetch dashboard data")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch dashboard data"})
		return
	}

	data := make([]gin.H, 0, len(recs))
	for _, rec := range recs {
		result, err := domain.DecodeResult([]byte(rec.ResultJSON))
		if err != nil {
			logrus.WithField("id", rec.ID).WithError(err).Warn("skipping undecodable evaluation record")
			continue
		}
		data = append(data, gin.H{
			"filename":         rec.Filename,
			"score":            result.OverallScore,
			"skills":           result.SubScores[domain.CriterionSkills],
			"experience":       result.SubScores[domain.CriterionExperience],
			"education":        result.SubScores[domain.CriterionEducation],
			"domain_knowledge": result.SubScores[domain.CriterionDomainKnowledge],
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": data})
}

// Download rebuilds the PDF report for the latest evaluation of the
// given filename.
func (h *HTTPHandler) Download(c *gin.Context) {
	user := currentUser(c)
	filename := sanitizeFilename(c.Param("filename"))

	result, err := h.Store.FetchLatestByFilename(user.ID, filename)
	if errors.Is(err, infrastructure.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}
	if err != nil {
		logrus.WithError(err).Error("failed to fetch evaluation")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch evaluation"})
		return
	}

	pdfBytes, err := infrastructure.BuildReport(result)
	if err != nil {
		logrus.WithError(err).Error("failed to build report")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build report"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s_report.pdf"`, filename))
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

func readAndExtract(header *multipart.FileHeader) (string, error) {
	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	return infrastructure.ExtractText(data, header.Filename)
}

// sanitizeFilename reduces an uploaded name to a safe base name.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	clean := b.String()
	if clean == "" || clean == "." || clean == ".." {
		return "upload"
	}
	return clean
}
