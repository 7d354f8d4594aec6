package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/vendor-directory/internal/interface/http"
)

// LiveModule serves the websocket state stream at /live.
type LiveModule struct {
	Handler *handlers.LiveHandler
	Device  gin.HandlerFunc
}

func NewLiveModule(h *handlers.LiveHandler, device gin.HandlerFunc) *LiveModule {
	return &LiveModule{Handler: h, Device: device}
}

func (m *LiveModule) Register(rg *gin.RouterGroup) {
	rg.GET("/live", m.Device, m.Handler.Stream)
}
