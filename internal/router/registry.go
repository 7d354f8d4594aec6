package router

import "github.com/gin-gonic/gin"

// Registry collects feature modules and mounts them on the engine. API
// modules live under /api behind the registry middleware; operational
// modules (health, metrics) are mounted at the root without it.
type Registry struct {
	Engine *gin.Engine
	API    *gin.RouterGroup

	middlewares []gin.HandlerFunc
	modules     []Module
	ops         []Module
}

func NewRegistry(engine *gin.Engine) *Registry {
	return &Registry{Engine: engine, API: engine.Group("/api")}
}

// Use adds middleware for the API group only.
func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.middlewares = append(r.middlewares, mw...)
}

func (r *Registry) Add(mod Module) {
	r.modules = append(r.modules, mod)
}

// AddOps registers a module at the engine root.
func (r *Registry) AddOps(mod Module) {
	r.ops = append(r.ops, mod)
}

func (r *Registry) RegisterAll() {
	if len(r.middlewares) > 0 {
		r.API.Use(r.middlewares...)
	}
	for _, m := range r.modules {
		m.Register(r.API)
	}
	root := &r.Engine.RouterGroup
	for _, m := range r.ops {
		m.Register(root)
	}
}
