package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"todust/models"
	"todust/repository"
	"todust/views"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// renderError maps the error taxonomy onto status codes: unknown uuid is
// 404, validation failures 400, everything else a generic 500 so store
// details never leak to clients.
func renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
	case errors.Is(err, models.ErrInvalidProject):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "service failure"})
	}
}

func entryUUID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entry UUID"})
		return uuid.Nil, false
	}
	return id, true
}

func showDone(c *gin.Context) bool {
	switch c.Query("show_done") {
	case "1", "true", "yes":
		return true
	}
	return false
}

func AddEntry(repo *repository.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.AddEntryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		entry, err := repo.AddEntry(c.Request.Context(), req.Project, req.Text)
		if err != nil {
			renderError(c, err)
			return
		}

		c.JSON(http.StatusCreated, entry)
	}
}

func GetEntry(repo *repository.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := entryUUID(c)
		if !ok {
			return
		}

		entry, err := repo.GetEntry(c.Request.Context(), id)
		if err != nil {
			renderError(c, err)
			return
		}

		c.JSON(http.StatusOK, entry)
	}
}

func ListEntries(repo *repository.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		project := c.Param("project")

		active, done, err := repo.ListEntries(c.Request.Context(), project, showDone(c))
		if err != nil {
			renderError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.ListResponse{
			Project: project,
			Active:  active,
			Done:    done,
		})
	}
}

func EditText(repo *repository.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := entryUUID(c)
		if !ok {
			return
		}

		var req models.EditTextRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		entry, err := repo.EditText(c.Request.Context(), id, req.Text, req.UpdateTime)
		if err != nil {
			renderError(c, err)
			return
		}

		c.JSON(http.StatusOK, entry)
	}
}

func MoveEntry(repo *repository.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := entryUUID(c)
		if !ok {
			return
		}

		var req models.MoveEntryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		entry, err := repo.MoveProject(c.Request.Context(), id, req.Project)
		if err != nil {
			renderError(c, err)
			return
		}

		c.JSON(http.StatusOK, entry)
	}
}

func SetDone(repo *repository.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := entryUUID(c)
		if !ok {
			return
		}

		var req models.SetDoneRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		entry, err := repo.SetDone(c.Request.Context(), id, req.Done)
		if err != nil {
			renderError(c, err)
			return
		}

		c.JSON(http.StatusOK, entry)
	}
}

func SetDue(repo *repository.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := entryUUID(c)
		if !ok {
			return
		}

		var req models.SetDueRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var due *time.Time
		if req.Due != "" {
			parsed, err := time.Parse("2006-01-02", req.Due)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "due date must be in 2006-01-02 form"})
				return
			}
			due = &parsed
		}

		entry, err := repo.SetDue(c.Request.Context(), id, due)
		if err != nil {
			renderError(c, err)
			return
		}

		c.JSON(http.StatusOK, entry)
	}
}

func RenameProject(repo *repository.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.RenameProjectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		moved, err := repo.RenameProject(c.Request.Context(), req.From, req.To)
		if err != nil {
			renderError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"moved": moved})
	}
}

func ProjectSummary(repo *repository.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		counts, err := repo.ProjectCounts(c.Request.Context())
		if err != nil {
			renderError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.ProjectsResponse{
			Projects: counts,
			Total:    len(counts),
		})
	}
}

func ExportProject(repo *repository.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		project := c.Param("project")

		active, done, err := repo.ListEntries(c.Request.Context(), project, showDone(c))
		if err != nil {
			renderError(c, err)
			return
		}

		c.Data(http.StatusOK, "text/asciidoc; charset=utf-8", []byte(views.RenderDocument(active, done)))
	}
}
