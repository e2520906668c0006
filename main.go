package main

import (
	"context"
	"log"
	"os"
	"time"

	"todust/database"
	"todust/handlers"
	"todust/middleware"
	"todust/repository"
	"todust/views"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	// Create context with timeout for initial connection
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.Connect(ctx, databaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	repo := repository.New(db)

	r := gin.Default()
	r.SetHTMLTemplate(views.Templates())

	r.GET("/health", handlers.HealthCheck)

	// HTML views
	r.GET("/", handlers.IndexPage(repo))
	r.GET("/project/:project", handlers.ProjectPage(repo))
	r.GET("/entry/:uuid", handlers.EntryPage(repo))

	api := r.Group("/api/v1")
	api.GET("/list/:project", handlers.ListEntries(repo))
	api.GET("/entries/:uuid", handlers.GetEntry(repo))
	api.GET("/projects", handlers.ProjectSummary(repo))
	api.GET("/export/:project", handlers.ExportProject(repo))

	mutating := api.Group("")
	if token := os.Getenv("TODUST_API_TOKEN"); token != "" {
		mutating.Use(middleware.AuthRequired(token))
	}
	mutating.POST("/entries", handlers.AddEntry(repo))
	mutating.PUT("/entries/:uuid/text", handlers.EditText(repo))
	mutating.PUT("/entries/:uuid/project", handlers.MoveEntry(repo))
	mutating.PUT("/entries/:uuid/done", handlers.SetDone(repo))
	mutating.PUT("/entries/:uuid/due", handlers.SetDue(repo))
	mutating.POST("/projects/rename", handlers.RenameProject(repo))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Println("Server starting on :" + port)
	r.Run(":" + port)
}
