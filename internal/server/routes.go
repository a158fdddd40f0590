package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/braude/garage/pkg/types"
)

func (s *Server) routes() {
	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})

	api := s.engine.Group("/api")
	register(api, newResource(s, types.TableClients, types.ClientID))
	register(api, newResource(s, types.TableCars, types.CarID))
	register(api, newResource(s, types.TableCarServices, types.CarServiceID))

	s.engine.NoRoute(func(c *gin.Context) {
		writeProblem(c, types.Problem{Status: http.StatusNotFound, Message: "error.http.404"})
	})
}

// register mounts the endpoints of one resource.
func register[E any](api *gin.RouterGroup, r *resource[E]) {
	api.GET("/"+r.name, r.list)
	api.GET("/"+r.name+"/count", r.count)
	api.GET("/"+r.name+"/:id", r.get)
	api.POST("/"+r.name, r.create)
	api.PUT("/"+r.name, r.update)
	api.DELETE("/"+r.name+"/:id", r.delete)
	api.GET("/_search/"+r.name, r.search)
}
