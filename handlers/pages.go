package handlers

import (
	"net/http"

	"todust/repository"
	"todust/views"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HTML page handlers. Read-only consumers of the repository; all display
// fields are derived through the views package.

func IndexPage(repo *repository.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		counts, err := repo.ProjectCounts(c.Request.Context())
		if err != nil {
			renderError(c, err)
			return
		}

		c.HTML(http.StatusOK, "index.html", gin.H{
			"Projects": counts,
		})
	}
}

func ProjectPage(repo *repository.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		project := c.Param("project")

		active, done, err := repo.ListEntries(c.Request.Context(), project, showDone(c))
		if err != nil {
			renderError(c, err)
			return
		}

		c.HTML(http.StatusOK, "project.html", gin.H{
			"Project": project,
			"Active":  views.NewEntryViews(active),
			"Done":    views.NewEntryViews(done),
		})
	}
}

func EntryPage(repo *repository.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("uuid"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entry UUID"})
			return
		}

		entry, err := repo.GetEntry(c.Request.Context(), id)
		if err != nil {
			renderError(c, err)
			return
		}

		c.HTML(http.StatusOK, "entry.html", gin.H{
			"Entry": views.NewEntryView(*entry),
		})
	}
}
