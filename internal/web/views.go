// Package web holds the embedded page templates and static assets and the
// fiber view engine that renders them.
package web

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/template/html/v2"
)

// Layout wraps every full page. Pages are rendered into it with {{embed}}.
const Layout = "layouts/main"

//go:embed templates
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Static returns the embedded assets rooted at the static directory.
func Static() http.FileSystem {
	return subFS(staticFS, "static")
}

// NewEngine returns the view engine over the embedded templates. Pages are
// named by their path without the extension, e.g. "home" or "partials/card".
func NewEngine() *html.Engine {
	engine := html.NewFileSystem(subFS(templateFS, "templates"), ".html")
	engine.AddFuncMap(funcs)
	return engine
}

func subFS(fsys fs.FS, dir string) http.FileSystem {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

// funcs available to every template.
var funcs = map[string]interface{}{
	"date": func(ms int64) string {
		return time.UnixMilli(ms).Format("2 Jan 2006")
	},
	"dict": func(kv ...any) (map[string]any, error) {
		if len(kv)%2 != 0 {
			return nil, fmt.Errorf("dict: odd number of arguments")
		}
		m := make(map[string]any, len(kv)/2)
		for i := 0; i < len(kv); i += 2 {
			k, ok := kv[i].(string)
			if !ok {
				return nil, fmt.Errorf("dict: key %v is not a string", kv[i])
			}
			m[k] = kv[i+1]
		}
		return m, nil
	},
	"lines": func(s string) []string {
		return strings.Split(s, "\n")
	},
}
