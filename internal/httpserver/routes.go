package httpserver

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
)

const (
	defaultAPIVersion    = 1
	supportedAPIVersions = "1.0, 2.0"
)

var versionSegment = regexp.MustCompile(`^v(\d+)(?:\.0)?$`)

// apiRequest is what a versioned handler learns from routing.
type apiRequest struct {
	version int
	prefix  string
	id      int64
}

type versionedHandler func(w http.ResponseWriter, r *http.Request, req apiRequest)

type route struct {
	method string
	path   string
	write  bool
	handle versionedHandler
}

// match reports whether path fits the route, capturing an integer {id}.
func (rt route) match(method, path string) (int64, bool) {
	if rt.method != method {
		return 0, false
	}
	want := strings.Split(strings.Trim(rt.path, "/"), "/")
	got := strings.Split(strings.Trim(path, "/"), "/")
	if len(want) != len(got) {
		return 0, false
	}
	var id int64
	for i, seg := range want {
		if seg == "{id}" {
			n, err := strconv.ParseInt(got[i], 10, 64)
			if err != nil {
				return 0, false
			}
			id = n
			continue
		}
		if seg != got[i] {
			return 0, false
		}
	}
	return id, true
}

// versionBindings is the static dispatch table. Each version owns its routes;
// an operation missing from a version is not found, never served by another.
func (s *Server) versionBindings() map[int][]route {
	return map[int][]route{
		1: {
			{method: http.MethodGet, path: "/products", handle: s.handleListProductsV1},
			{method: http.MethodPost, path: "/products", write: true, handle: s.handleCreateProductV1},
			{method: http.MethodGet, path: "/products/{id}", handle: s.handleGetProductV1},
			{method: http.MethodDelete, path: "/products/{id}", write: true, handle: s.handleDeleteProductV1},
		},
		2: {
			{method: http.MethodGet, path: "/products", handle: s.handleListProductsV2},
		},
	}
}

// splitVersion extracts the version token from paths shaped like
// [/api]/v{major}[.0]/rest. Paths without a token use the default version.
func splitVersion(path string) (version int, prefix, rest string, ok bool) {
	rest = path
	if rest == "/api" || strings.HasPrefix(rest, "/api/") {
		prefix = "/api"
		rest = strings.TrimPrefix(rest, "/api")
	}

	seg, remainder, _ := strings.Cut(strings.TrimPrefix(rest, "/"), "/")
	m := versionSegment.FindStringSubmatch(seg)
	if m == nil {
		if prefix != "" {
			return 0, "", "", false
		}
		return defaultAPIVersion, "", path, true
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, "", "", false
	}
	return v, prefix + "/" + seg, "/" + remainder, true
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request) {
	version, prefix, rest, ok := splitVersion(r.URL.Path)
	if !ok {
		writeProblem(w, r, http.StatusNotFound, "resource not found")
		return
	}
	routes, known := s.bindings[version]
	if !known {
		writeProblem(w, r, http.StatusNotFound, "unsupported API version")
		return
	}
	w.Header().Set("api-supported-versions", supportedAPIVersions)

	for _, rt := range routes {
		id, matched := rt.match(r.Method, rest)
		if !matched {
			continue
		}
		if rt.write && !s.authorize(w, r) {
			return
		}
		rt.handle(w, r, apiRequest{version: version, prefix: prefix, id: id})
		return
	}
	writeProblem(w, r, http.StatusNotFound, "resource not found")
}
