package inspect

import (
	"errors"
	"net/http"
	"runtime"
	"slices"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vk/hotswap/internal/analyzer"
	"github.com/vk/hotswap/internal/ledger"
	"github.com/vk/hotswap/internal/registry"
	"github.com/vk/hotswap/modules/sysinfo"
)

// endpoints is reported by /api/server-data.
var endpoints = []string{
	"/api/capabilities",
	"/api/capabilities/:name/history",
	"/api/capabilities/:name/diff",
	"/api/summary",
	"/api/ledger",
	"/api/system-info",
	"/api/server-data",
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": timestamp()})
}

func (s *Server) listCapabilities(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"capabilities": s.deps.Registry.List()})
}

func (s *Server) history(c *gin.Context) {
	name := c.Param("name")
	revs, err := s.deps.Registry.History(name)
	if err != nil {
		s.registryError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name, "revisions": revs})
}

// diff compares the sources of two revisions. Without query parameters it
// compares the active revision with the one before it.
func (s *Server) diff(c *gin.Context) {
	name := c.Param("name")
	revs, err := s.deps.Registry.History(name)
	if err != nil {
		s.registryError(c, err)
		return
	}

	active := revs[len(revs)-1].Version
	from, ok := versionParam(c, "from", active-1)
	if !ok {
		return
	}
	to, ok := versionParam(c, "to", active)
	if !ok {
		return
	}

	find := func(v int) (registry.Revision, bool) {
		i := slices.IndexFunc(revs, func(r registry.Revision) bool { return r.Version == v })
		if i < 0 {
			return registry.Revision{}, false
		}
		return revs[i], true
	}
	a, okA := find(from)
	b, okB := find(to)
	if !okA || !okB {
		c.JSON(http.StatusNotFound, errorBody(http.StatusNotFound, "Not Found", "revision is not in the retained history"))
		return
	}
	if a.Source == "" || b.Source == "" {
		c.JSON(http.StatusUnprocessableEntity, errorBody(http.StatusUnprocessableEntity,
			"Unprocessable Entity", "only revisions with source text can be compared"))
		return
	}

	cmp, err := analyzer.Compare(
		analyzer.Source{Name: name, Text: a.Source},
		analyzer.Source{Name: name, Text: b.Source},
	)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, errorBody(http.StatusUnprocessableEntity, "Unprocessable Entity", err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name, "from": from, "to": to, "comparison": cmp})
}

func versionParam(c *gin.Context, key string, def int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		c.JSON(http.StatusBadRequest, errorBody(http.StatusBadRequest, "Bad Request", key+" must be a positive integer"))
		return 0, false
	}
	return v, true
}

func (s *Server) summary(c *gin.Context) {
	c.JSON(http.StatusOK, s.deps.Perf.Summary())
}

func (s *Server) ledgerEntries(c *gin.Context) {
	f := ledger.Filter{
		Kind:       ledger.Kind(c.Query("kind")),
		Capability: c.Query("capability"),
	}
	switch f.Kind {
	case "", ledger.KindModification, ledger.KindFeedback:
	default:
		c.JSON(http.StatusBadRequest, errorBody(http.StatusBadRequest, "Bad Request", "kind must be 'modification' or 'feedback'"))
		return
	}
	if raw := c.Query("since"); raw != "" {
		since, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorBody(http.StatusBadRequest, "Bad Request", "since must be a sequence id"))
			return
		}
		f.SinceSeq = since
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, errorBody(http.StatusBadRequest, "Bad Request", "limit must be a non-negative integer"))
			return
		}
		f.Limit = limit
	}

	entries := slices.Collect(s.deps.Ledger.Query(f))
	if entries == nil {
		entries = []ledger.Entry{}
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "stats": s.deps.Ledger.Stats()})
}

func (s *Server) systemInfo(c *gin.Context) {
	c.JSON(http.StatusOK, sysinfo.Snapshot())
}

func (s *Server) serverData(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "online",
		"timestamp":  timestamp(),
		"server":     "hotswap inspection server",
		"instance":   s.deps.Instance,
		"go_version": runtime.Version(),
		"uptime":     time.Since(s.deps.StartedAt).Round(time.Second).String(),
		"admission":  s.deps.Registry.Admission().String(),
		"message":    "Server is running successfully",
		"endpoints":  endpoints,
	})
}

func (s *Server) registryError(c *gin.Context, err error) {
	if errors.Is(err, registry.ErrNotFound) {
		c.JSON(http.StatusNotFound, errorBody(http.StatusNotFound, "Not Found", "capability "+strconv.Quote(c.Param("name"))+" is not registered"))
		return
	}
	s.deps.Logger.Error("Registry query failed.", "error", err)
	c.JSON(http.StatusInternalServerError, errorBody(http.StatusInternalServerError, "Internal Server Error", "An unexpected error occurred"))
}
