package tracking

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ignite/awaresim/internal/pkg/httputil"
)

var landingTmpl = template.Must(template.New("landing").Parse(`<!DOCTYPE html>
<html>
  <head><meta charset="utf-8"><meta name="robots" content="noindex"><title>{{.Slug}}</title></head>
  <body style="font-family:Arial,sans-serif;text-align:center;padding:50px;">
    <p>Thanks for visiting campaign {{.Slug}}.</p>
    {{- if .Token}}
    <form method="post" action="/t/{{.Token}}/submit">
      <button type="submit">Confirm</button>
    </form>
    <img src="/t/{{.Token}}/landing-view" alt="." width="1" height="1" style="opacity:0;position:absolute;left:-9999px;top:-9999px;">
    {{- end}}
  </body>
</html>
`))

var submitAckHTML = []byte(`<!DOCTYPE html><html><body style="font-family:Arial,sans-serif;text-align:center;padding:50px;">
	<p>Thank you for your confirmation.</p>
</body></html>`)

// HandleLanding renders the campaign landing page. The token is optional;
// when it is a well-formed token the page embeds the landing-view beacon and
// the submit form. The page itself records nothing.
func (h *Handler) HandleLanding(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Slug  string
		Token string
	}{Slug: chi.URLParam(r, "slug")}

	if t := r.URL.Query().Get("t"); t != "" {
		if _, err := uuid.Parse(t); err == nil {
			data.Token = t
		}
	}

	var buf bytes.Buffer
	if err := landingTmpl.Execute(&buf, data); err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.NoStore(w)
	httputil.HTML(w, buf.Bytes())
}
