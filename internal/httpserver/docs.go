package httpserver

import (
	"html/template"
	"net/http"

	"minishop/catalog/internal/httpserver/openapi"
)

var docsPage = template.Must(template.New("docs").Parse(`<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>MiniShop API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-standalone-preset.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        urls: [{{range .}}{url: "/openapi/{{.}}", name: "{{.}}"},{{end}}],
        dom_id: '#swagger-ui',
        presets: [SwaggerUIBundle.presets.apis, SwaggerUIStandalonePreset],
        layout: "StandaloneLayout"
      });
    </script>
  </body>
</html>`))

func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	doc, ok := openapi.Document(r.PathValue("document"))
	if !ok {
		writeProblem(w, r, http.StatusNotFound, "resource not found")
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(doc)
}

func (s *Server) handleDocs(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := docsPage.Execute(w, openapi.Names()); err != nil {
		s.logger.Error("render docs", "err", err)
	}
}
