// Static widget asset handlers.
//
// The embed scripts are what integrators paste into their pages; they must
// be served with an explicit JavaScript content type so browsers execute
// them when included cross-origin.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/webchat/go-chat-widget/web"
)

// EmbedScript serves one of the bundled widget scripts by file name.
func EmbedScript(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		b, err := web.Assets.ReadFile(name)
		if err != nil {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "asset not found")
			return
		}
		c.Data(http.StatusOK, "application/javascript", b)
	}
}

// DemoPage serves the static integration demo.
func DemoPage() gin.HandlerFunc {
	return func(c *gin.Context) {
		b, err := web.Assets.ReadFile("demo.html")
		if err != nil {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "asset not found")
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", b)
	}
}
