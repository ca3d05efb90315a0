package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIDocs serves the OpenAPI document and a Swagger UI page that loads it.
type APIDocs struct {
	spec []byte
}

// NewAPIDocs wraps an OpenAPI YAML document. A nil spec makes both routes 404.
func NewAPIDocs(spec []byte) *APIDocs {
	return &APIDocs{spec: spec}
}

// Spec serves the raw OpenAPI YAML.
func (d *APIDocs) Spec(c *gin.Context) {
	if d.spec == nil {
		c.String(http.StatusNotFound, "OpenAPI spec not loaded")
		return
	}
	c.Data(http.StatusOK, "application/x-yaml", d.spec)
}

// UI serves the Swagger UI page.
func (d *APIDocs) UI(c *gin.Context) {
	if d.spec == nil {
		c.String(http.StatusNotFound, "OpenAPI spec not loaded")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(swaggerPage))
}

const swaggerPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Digital Delivery Gateway - API Docs</title>
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({
      url: '/swagger/spec',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis, SwaggerUIBundle.SwaggerUIStandalonePreset],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
