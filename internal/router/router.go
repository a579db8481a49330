// Package router, route grupları ve route bazlı middleware destekleyen
// küçük bir HTTP router'ıdır. Path parametreleri {id} biçimindedir.
package router

import (
	"context"
	"net/http"
	"strings"

	"github.com/biyonik/ticketbox-core/internal/http/request"
	"github.com/biyonik/ticketbox-core/internal/http/response"
	"github.com/biyonik/ticketbox-core/internal/middleware"
)

// HandlerFunc, *request.Request alan handler tipi.
type HandlerFunc func(http.ResponseWriter, *request.Request)

// Router, route tablosu ve global middleware zinciri.
type Router struct {
	routes      []*Route
	middlewares []middleware.Middleware
}

// Route, tek bir method + path eşleşmesi.
type Route struct {
	method      string
	path        string
	handler     http.Handler
	middlewares []middleware.Middleware
}

// RouteGroup, ortak prefix ve middleware paylaşan route'lar.
type RouteGroup struct {
	prefix      string
	middlewares []middleware.Middleware
	router      *Router
}

func New() *Router {
	return &Router{}
}

// Use, her isteğe uygulanacak global middleware ekler.
func (r *Router) Use(m middleware.Middleware) {
	r.middlewares = append(r.middlewares, m)
}

func (r *Router) GET(path string, handler HandlerFunc) *Route {
	return r.addRoute(http.MethodGet, path, handler, nil)
}

func (r *Router) POST(path string, handler HandlerFunc) *Route {
	return r.addRoute(http.MethodPost, path, handler, nil)
}

func (r *Router) PUT(path string, handler HandlerFunc) *Route {
	return r.addRoute(http.MethodPut, path, handler, nil)
}

func (r *Router) DELETE(path string, handler HandlerFunc) *Route {
	return r.addRoute(http.MethodDelete, path, handler, nil)
}

// Handle, http.Handler'ı (ör. /metrics) doğrudan bağlar.
func (r *Router) Handle(method, path string, h http.Handler) *Route {
	route := &Route{method: method, path: path, handler: h}
	r.routes = append(r.routes, route)
	return route
}

func (r *Router) addRoute(method, path string, handler HandlerFunc, group []middleware.Middleware) *Route {
	route := &Route{
		method: method,
		path:   path,
		handler: http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			handler(w, request.New(req))
		}),
		middlewares: append([]middleware.Middleware(nil), group...),
	}
	r.routes = append(r.routes, route)
	return route
}

// Middleware, route'a middleware ekler. Grup middleware'lerinden sonra
// çalışır.
//
//	api.PUT("/events/{id}/approve", h).Middleware(middleware.Approver())
func (route *Route) Middleware(m middleware.Middleware) *Route {
	route.middlewares = append(route.middlewares, m)
	return route
}

// Group, prefix altında yeni bir grup açar.
func (r *Router) Group(prefix string) *RouteGroup {
	return &RouteGroup{prefix: prefix, router: r}
}

// Group, alt grup açar; üst grubun middleware'lerini devralır.
func (g *RouteGroup) Group(prefix string) *RouteGroup {
	return &RouteGroup{
		prefix:      g.prefix + prefix,
		middlewares: append([]middleware.Middleware(nil), g.middlewares...),
		router:      g.router,
	}
}

// Use, yalnızca bu noktadan sonra tanımlanan route'lara uygulanır.
func (g *RouteGroup) Use(m middleware.Middleware) {
	g.middlewares = append(g.middlewares, m)
}

func (g *RouteGroup) GET(path string, handler HandlerFunc) *Route {
	return g.router.addRoute(http.MethodGet, g.prefix+path, handler, g.middlewares)
}

func (g *RouteGroup) POST(path string, handler HandlerFunc) *Route {
	return g.router.addRoute(http.MethodPost, g.prefix+path, handler, g.middlewares)
}

func (g *RouteGroup) PUT(path string, handler HandlerFunc) *Route {
	return g.router.addRoute(http.MethodPut, g.prefix+path, handler, g.middlewares)
}

func (g *RouteGroup) DELETE(path string, handler HandlerFunc) *Route {
	return g.router.addRoute(http.MethodDelete, g.prefix+path, handler, g.middlewares)
}

// ServeHTTP, global zinciri uygular ve isteği eşleşen route'a yönlendirir.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	middleware.Chain(http.HandlerFunc(r.dispatch), r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) dispatch(w http.ResponseWriter, req *http.Request) {
	pathMatched := false

	for _, route := range r.routes {
		params, ok := matchRoute(route.path, req.URL.Path)
		if !ok {
			continue
		}
		pathMatched = true
		if route.method != req.Method {
			continue
		}

		ctx := context.WithValue(req.Context(), request.RequestParamsKey, params)
		middleware.Chain(route.handler, route.middlewares...).ServeHTTP(w, req.WithContext(ctx))
		return
	}

	if pathMatched {
		response.Error(w, http.StatusMethodNotAllowed, "Bu method desteklenmiyor")
		return
	}
	response.NotFound(w, "Endpoint bulunamadı")
}

// matchRoute, pattern'i path ile karşılaştırır ve {param}'ları çıkarır.
//
//	/api/events/{id}/tickets
func matchRoute(pattern, path string) (map[string]string, bool) {
	patternParts := strings.Split(strings.Trim(pattern, "/"), "/")
	pathParts := strings.Split(strings.Trim(path, "/"), "/")

	if len(patternParts) != len(pathParts) {
		return nil, false
	}

	params := make(map[string]string)
	for i, part := range patternParts {
		if strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}") {
			if pathParts[i] == "" {
				return nil, false
			}
			params[strings.Trim(part, "{}")] = pathParts[i]
			continue
		}
		if part != pathParts[i] {
			return nil, false
		}
	}
	return params, true
}
