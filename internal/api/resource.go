package api

import (
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"

	"team-dashboard/backend/internal/models"
	"team-dashboard/backend/internal/service"
	"team-dashboard/backend/internal/view"
	apperrors "team-dashboard/backend/pkg/errors"
	"team-dashboard/backend/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// ResourceController handles the scene and character galleries
type ResourceController struct {
	resources  *service.ResourceService
	identity   *service.IdentityService
	timeLayout string
}

// NewResourceController creates a new resource controller. timeLayout
// formats upload dates on rendered cards.
func NewResourceController(resources *service.ResourceService, identity *service.IdentityService, timeLayout string) *ResourceController {
	return &ResourceController{
		resources:  resources,
		identity:   identity,
		timeLayout: timeLayout,
	}
}

// RegisterRoutesV1 registers the gallery routes
func (c *ResourceController) RegisterRoutesV1(group *gin.RouterGroup) {
	resources := group.Group("/resources/:collection")
	{
		resources.GET("", c.ListResources)
		resources.POST("", c.UploadResources)
		resources.DELETE("/:id", c.RemoveResource)
		resources.GET("/:id/preview", c.PreviewResource)
		resources.GET("/:id/download", c.DownloadResource)
	}
}

func collectionParam(ctx *gin.Context) (models.Collection, bool) {
	coll, ok := models.ParseCollection(ctx.Param("collection"))
	if !ok {
		abortWithError(ctx, apperrors.NewNotFoundError("UNKNOWN_COLLECTION", "Unknown resource collection: "+ctx.Param("collection")))
	}
	return coll, ok
}

// ListResources returns the collection without the embedded payloads
func (c *ResourceController) ListResources(ctx *gin.Context) {
	coll, ok := collectionParam(ctx)
	if !ok {
		return
	}

	resources, err := c.resources.LoadAll(ctx.Request.Context(), middleware.Scope(ctx).ProfileID, coll)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	summaries := make([]models.ResourceSummary, 0, len(resources))
	for _, r := range resources {
		summaries = append(summaries, r.Summary())
	}

	ctx.JSON(http.StatusOK, gin.H{
		"collection": coll,
		"resources":  summaries,
		"count":      len(summaries),
	})
}

// UploadResources stores every image and video of the multipart "files"
// field and returns a gallery card per stored file
func (c *ResourceController) UploadResources(ctx *gin.Context) {
	coll, ok := collectionParam(ctx)
	if !ok {
		return
	}

	form, err := ctx.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			abortWithError(ctx, err)
			return
		}
		abortWithError(ctx, apperrors.NewBadRequestError("INVALID_UPLOAD", "Expected a multipart form with files").Wrap(err))
		return
	}

	uploads := make([]models.Upload, 0, len(form.File["files"]))
	for _, fh := range form.File["files"] {
		uploads = append(uploads, newUpload(fh))
	}

	scope := middleware.Scope(ctx)
	uploader, err := c.identity.Get(ctx.Request.Context(), scope.ProfileID)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	stored, uploadErr := c.resources.Upload(ctx.Request.Context(), scope, coll, uploader, uploads)
	if uploadErr != nil && len(stored) == 0 {
		abortWithError(ctx, uploadErr)
		return
	}

	summaries := make([]models.ResourceSummary, 0, len(stored))
	cards := make([]string, 0, len(stored))
	for _, r := range stored {
		card, err := view.RenderResource(view.NewResourceView(coll, r, c.timeLayout))
		if err != nil {
			abortWithError(ctx, err)
			return
		}
		summaries = append(summaries, r.Summary())
		cards = append(cards, card)
	}

	response := gin.H{
		"resources": summaries,
		"html":      cards,
	}
	if uploadErr != nil {
		response["error"] = apperrors.FromError(toAppError(uploadErr))
	} else {
		response["skipped"] = len(uploads) - len(stored)
	}

	status := http.StatusCreated
	if len(stored) == 0 {
		status = http.StatusOK
	}
	ctx.JSON(status, response)
}

func newUpload(fh *multipart.FileHeader) models.Upload {
	return models.Upload{
		Name: fh.Filename,
		Type: fh.Header.Get("Content-Type"),
		Size: fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// RemoveResource deletes one resource; removing an unknown id reports false
func (c *ResourceController) RemoveResource(ctx *gin.Context) {
	coll, ok := collectionParam(ctx)
	if !ok {
		return
	}

	removed, err := c.resources.Remove(ctx.Request.Context(), middleware.Scope(ctx), coll, ctx.Param("id"))
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"removed": removed})
}

func (c *ResourceController) lookup(ctx *gin.Context) (*models.Resource, bool) {
	coll, ok := collectionParam(ctx)
	if !ok {
		return nil, false
	}

	r, err := c.resources.Get(ctx.Request.Context(), middleware.Scope(ctx).ProfileID, coll, ctx.Param("id"))
	if err != nil {
		abortWithError(ctx, err)
		return nil, false
	}
	return r, true
}

// PreviewResource returns a fresh overlay for one resource
func (c *ResourceController) PreviewResource(ctx *gin.Context) {
	r, ok := c.lookup(ctx)
	if !ok {
		return
	}

	preview := c.resources.Preview(*r)
	html, err := view.RenderPreview(preview)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"overlayId": preview.OverlayID,
		"video":     preview.Video,
		"autoplay":  preview.Autoplay,
		"html":      html,
	})
}

// DownloadResource serves the decoded payload as an attachment
func (c *ResourceController) DownloadResource(ctx *gin.Context) {
	r, ok := c.lookup(ctx)
	if !ok {
		return
	}

	download, err := c.resources.Download(*r)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": download.Name}))
	ctx.Data(http.StatusOK, download.ContentType, download.Body)
}
