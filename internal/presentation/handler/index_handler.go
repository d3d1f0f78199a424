package handler

import (
	"bytes"
	"html/template"
	"net/http"

	"xetproxy"

	"github.com/labstack/echo/v4"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>XET Proxy Server</title>
    <style>
        body { font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px; }
        h1 { color: #333; }
        pre { background: #f4f4f4; padding: 15px; border-radius: 5px; overflow-x: auto; }
        code { background: #f4f4f4; padding: 2px 6px; border-radius: 3px; }
        .endpoint { margin: 20px 0; }
    </style>
</head>
<body>
    <h1>XET Protocol HTTP Proxy Server</h1>
    <p>Version: {{.Version}}</p>

    <h2>Endpoints</h2>

    <div class="endpoint">
        <h3>Health Check</h3>
        <code>GET /health</code>
        <p>Returns server health status</p>
    </div>

    <div class="endpoint">
        <h3>Download by Repository and Path</h3>
        <code>GET /download/:owner/:repo/*file</code>
        <p>Download a file from the Hugging Face Hub by repository and file path</p>
        <pre>curl {{.Base}}/download/jedisct1/MiMo-7B-RL-GGUF/MiMo-7B-RL-Q8_0.gguf -o model.gguf</pre>
    </div>

    <div class="endpoint">
        <h3>Download by XET Hash</h3>
        <code>GET /download-hash/:hash</code>
        <p>Download a file directly by its XET hash (64 hex characters)</p>
        <pre>curl {{.Base}}/download-hash/89dbfa4888600b29be17ddee8bdbf9c48999c81cb811964eee6b057d8467f927 -o model.safetensors</pre>
    </div>
</body>
</html>
`))

// HandleIndex handles GET / requests with a usage page.
func HandleIndex(c echo.Context) error {
	var page bytes.Buffer

	err := indexTemplate.Execute(&page, struct {
		Version string
		Base    string
	}{
		Version: xetproxy.StringVersion(),
		Base:    c.Scheme() + "://" + c.Request().Host,
	})
	if err != nil {
		return err
	}

	return c.HTMLBlob(http.StatusOK, page.Bytes())
}
