package router

import "github.com/gin-gonic/gin"

// Module mounts the routes of one feature. Modules build their own route
// middleware (device session, auth, rate limits) in Register.
type Module interface {
	Register(rg *gin.RouterGroup)
}
