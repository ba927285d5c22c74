// Package router assembles the gin engine of the shop API.
package router

import (
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
)

// RouteRegistrar mounts its routes on a gin group
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router mounts route registrars under /api/<version>
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
}

// RouterOption configures a Router
type RouterOption func(*Router)

// WithAPIVersion overrides the default "v1" version segment
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) { r.apiVersion = version }
}

func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{engine: engine, apiVersion: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register queues registrars for Setup
func (r *Router) Register(registrars ...RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrars...)
	return r
}

func (r *Router) BasePath() string {
	return "/api/" + r.apiVersion
}

// Setup mounts every registered group on the engine. Call it once.
func (r *Router) Setup() {
	api := r.engine.Group(r.BasePath())
	for _, reg := range r.registrars {
		reg.RegisterRoutes(api)
	}
}

// Route is one endpoint of a DomainGroup, path relative to the group
type Route struct {
	Method   string
	Path     string
	handlers []gin.HandlerFunc
}

// DomainGroup is a declarative route table for one area of the API
// (user, basket, orders, ...). Nothing touches gin until RegisterRoutes.
type DomainGroup struct {
	name       string
	prefix     string
	middleware []gin.HandlerFunc
	table      []Route
	children   []*DomainGroup
}

func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

func (dg *DomainGroup) Name() string   { return dg.name }
func (dg *DomainGroup) Prefix() string { return dg.prefix }

// Use attaches middleware that runs for this group and its children
func (dg *DomainGroup) Use(middleware ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, middleware...)
	return dg
}

func (dg *DomainGroup) add(method, p string, handlers []gin.HandlerFunc) *DomainGroup {
	dg.table = append(dg.table, Route{Method: method, Path: p, handlers: handlers})
	return dg
}

func (dg *DomainGroup) GET(p string, h ...gin.HandlerFunc) *DomainGroup {
	return dg.add(http.MethodGet, p, h)
}

func (dg *DomainGroup) POST(p string, h ...gin.HandlerFunc) *DomainGroup {
	return dg.add(http.MethodPost, p, h)
}

func (dg *DomainGroup) PUT(p string, h ...gin.HandlerFunc) *DomainGroup {
	return dg.add(http.MethodPut, p, h)
}

func (dg *DomainGroup) PATCH(p string, h ...gin.HandlerFunc) *DomainGroup {
	return dg.add(http.MethodPatch, p, h)
}

func (dg *DomainGroup) DELETE(p string, h ...gin.HandlerFunc) *DomainGroup {
	return dg.add(http.MethodDelete, p, h)
}

// Group returns a child table mounted below this group's prefix
func (dg *DomainGroup) Group(name, prefix string) *DomainGroup {
	child := NewDomainGroup(name, prefix)
	dg.children = append(dg.children, child)
	return child
}

// Routes lists the endpoints of the group and its children with paths
// relative to the parent the group is mounted on.
func (dg *DomainGroup) Routes() []Route {
	out := make([]Route, 0, len(dg.table))
	dg.walk("/", func(base string, r Route) {
		out = append(out, Route{Method: r.Method, Path: joinPath(base, r.Path)})
	})
	return out
}

func (dg *DomainGroup) walk(base string, fn func(base string, r Route)) {
	base = joinPath(base, dg.prefix)
	for _, r := range dg.table {
		fn(base, r)
	}
	for _, child := range dg.children {
		child.walk(base, fn)
	}
}

// RegisterRoutes implements RouteRegistrar
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group(dg.prefix, dg.middleware...)
	for _, r := range dg.table {
		g.Handle(r.Method, r.Path, r.handlers...)
	}
	for _, child := range dg.children {
		child.RegisterRoutes(g)
	}
}

// joinPath joins like gin does, keeping a trailing slash on rel
func joinPath(base, rel string) string {
	if rel == "" {
		return base
	}
	joined := path.Join(base, rel)
	if rel[len(rel)-1] == '/' && joined[len(joined)-1] != '/' {
		return joined + "/"
	}
	return joined
}
