package middleware

import (
	"context"
	"net/http"

	"team-dashboard/backend/internal/models"
	"team-dashboard/backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// ProfileCookie names the cookie that ties a browser profile to its state
	ProfileCookie = "tb_profile"
	// PageHeader carries the id of the page instance making the request
	PageHeader = "X-Page-ID"

	profileKey = "profileID"
	pageKey    = "pageID"

	profileMaxAge = 10 * 365 * 24 * 60 * 60
)

type scopeKey struct{}

// ProfileOptions configures the profile cookie
type ProfileOptions struct {
	Secure bool
}

// ProfileMiddleware resolves the browser profile from its cookie, issuing a
// new one on first visit, and the page instance from the X-Page-ID header or
// the pageId query parameter.
func ProfileMiddleware(opts ProfileOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		profileID, err := c.Cookie(ProfileCookie)
		if err != nil || uuid.Validate(profileID) != nil {
			profileID = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(ProfileCookie, profileID, profileMaxAge, "/", "", opts.Secure, true)
		}

		pageID := c.GetHeader(PageHeader)
		if pageID == "" {
			pageID = c.Query("pageId")
		}

		c.Set(profileKey, profileID)
		c.Set(pageKey, pageID)

		scope := models.Scope{ProfileID: profileID, PageID: pageID}
		ctx := context.WithValue(c.Request.Context(), scopeKey{}, scope)

		log := logger.FromContext(ctx)
		if l, ok := c.Get("logger"); ok {
			log = l.(*logger.Logger)
		}
		log = log.WithProfile(profileID)
		if pageID != "" {
			log = log.WithPage(pageID)
		}
		c.Set("logger", log)
		c.Request = c.Request.WithContext(logger.IntoContext(ctx, log))

		c.Next()
	}
}

// Scope returns the profile and page of the request
func Scope(c *gin.Context) models.Scope {
	return models.Scope{
		ProfileID: c.GetString(profileKey),
		PageID:    c.GetString(pageKey),
	}
}

// ScopeFromContext extracts the scope stored by ProfileMiddleware
func ScopeFromContext(ctx context.Context) models.Scope {
	if ctx == nil {
		return models.Scope{}
	}
	scope, _ := ctx.Value(scopeKey{}).(models.Scope)
	return scope
}

// BodyLimit caps request bodies at max bytes
func BodyLimit(max int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if max > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max)
		}
		c.Next()
	}
}
