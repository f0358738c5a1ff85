package inspect

import (
	"html/template"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/vk/hotswap/internal/ledger"
	"github.com/vk/hotswap/internal/perf"
	"github.com/vk/hotswap/internal/registry"
)

// recentEntries is how many ledger entries the index page shows.
const recentEntries = 20

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>hotswap · {{.Instance}}</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem; color: #222; }
table { border-collapse: collapse; margin-bottom: 2rem; }
th, td { border: 1px solid #ccc; padding: .3rem .6rem; text-align: left; }
code { background: #f4f4f4; padding: 0 .2rem; }
</style>
</head>
<body>
<h1>hotswap</h1>
<p>Instance <code>{{.Instance}}</code></p>
<h2>Summary</h2>
<table>
<tr><th>Capabilities</th><td>{{.Summary.CapabilityCount}}</td></tr>
<tr><th>Modifications</th><td>{{.Summary.TotalModifications}}</td></tr>
<tr><th>Learning events</th><td>{{.Summary.LearningEventCount}}</td></tr>
<tr><th>Success rate</th><td>{{printf "%.2f" .Summary.SuccessRate}}</td></tr>
</table>
<h2>Capabilities</h2>
<table>
<tr><th>Name</th><th>Version</th><th>Description</th></tr>
{{range .Capabilities}}<tr><td><a href="/api/capabilities/{{.Name}}/history">{{.Name}}</a></td><td>{{.Version}}</td><td>{{.Description}}</td></tr>
{{else}}<tr><td colspan="3">none registered</td></tr>
{{end}}</table>
<h2>Recent ledger entries</h2>
<ul>
{{range .Entries}}<li>{{.String}}</li>
{{else}}<li>empty</li>
{{end}}</ul>
</body>
</html>
`))

type indexData struct {
	Instance     string
	Summary      perf.Summary
	Capabilities []registry.Listing
	Entries      []ledger.Entry
}

func (s *Server) index(c *gin.Context) {
	since := uint64(0)
	if st := s.deps.Ledger.Stats(); st.LastSeq > recentEntries {
		since = st.LastSeq - recentEntries
	}
	entries := slices.Collect(s.deps.Ledger.Query(ledger.Filter{SinceSeq: since}))
	slices.Reverse(entries)

	data := indexData{
		Instance:     s.deps.Instance,
		Summary:      s.deps.Perf.Summary(),
		Capabilities: s.deps.Registry.List(),
		Entries:      entries,
	}
	c.HTML(http.StatusOK, "index", data)
}
