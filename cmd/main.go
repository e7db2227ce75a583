package main

import (
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"resume-screener/infrastructure"
	"resume-screener/interfaces"
)

func main() {
	_ = godotenv.Load()

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		logrus.Fatal("GEMINI_API_KEY environment variable not set")
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "evaluations.db"
	}
	db, err := infrastructure.NewSQLiteConnection(dbPath)
	if err != nil {
		logrus.WithError(err).Fatal("failed to open database")
	}
	store := infrastructure.NewRecordStore(db)

	timeout := time.Duration(envInt("GEMINI_TIMEOUT_SECONDS", 60)) * time.Second
	gemini := infrastructure.NewGeminiClient(apiKey, timeout)
	engine := infrastructure.NewEvaluationEngine(gemini, timeout)

	router := gin.Default()
	interfaces.NewHTTPHandler(router, store, engine, envInt("EVAL_WORKERS", 4))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	logrus.Infof("server running on http://localhost:%s", port)
	if err := router.Run(":" + port); err != nil {
		logrus.Fatal(err)
	}
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		logrus.Warnf("invalid %s=%q, using %d", key, v, def)
		return def
	}
	return n
}
