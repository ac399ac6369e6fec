package response

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/peach-brawl/pkg/errors"
)

// Envelope represents the common response contract.
type Envelope struct {
	Data  interface{}            `json:"data,omitempty"`
	Error *appErrors.Error       `json:"error,omitempty"`
	Meta  map[string]interface{} `json:"meta,omitempty"`
}

// JSON sends a success response with optional metadata.
func JSON(c *gin.Context, status int, data interface{}, meta ...map[string]interface{}) {
	noStore(c)
	envelope := Envelope{Data: data}
	if len(meta) > 0 && meta[0] != nil {
		envelope.Meta = meta[0]
	}
	c.JSON(status, envelope)
}

// Accepted responds with HTTP 202 Accepted.
func Accepted(c *gin.Context, data interface{}, meta ...map[string]interface{}) {
	JSON(c, http.StatusAccepted, data, meta...)
}

// Error sends an error response converting the error to the common structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	noStore(c)
	_ = c.Error(err)
	status := appErr.Status
	if status < 400 || status > 599 {
		status = http.StatusBadGateway
	}
	c.JSON(status, Envelope{Error: appErr})
}

// HTML writes a markup fragment that browsers and the service worker must revalidate.
func HTML(c *gin.Context, status int, fragment template.HTML) {
	noStore(c)
	c.Data(status, "text/html; charset=utf-8", []byte(fragment))
}

// Attachment sends a downloadable file.
func Attachment(c *gin.Context, filename, contentType string, body []byte) {
	noStore(c)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, body)
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}
