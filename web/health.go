package web

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zeptools/gw-dbconn/db"
	"github.com/zeptools/gw-dbconn/db/sqldb"
)

// ConnProvider is satisfied by *sqldb.Provider
type ConnProvider interface {
	WithConn(ctx context.Context, fn func(conn *sqldb.Conn, scope *db.Scope) error) error
}

func NewRouter(provider ConnProvider) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/ping", Ping)
	h := &healthHandler{provider: provider}
	r.GET("/db/health", h.DBHealth)
	return r
}

func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

type healthHandler struct {
	provider ConnProvider
}

// DBHealth opens a fresh session, pings it and releases it
func (h *healthHandler) DBHealth(c *gin.Context) {
	ctx := c.Request.Context()
	var dbType string
	err := h.provider.WithConn(ctx, func(conn *sqldb.Conn, _ *db.Scope) error {
		dbType = conn.DBType()
		return conn.Ping(ctx)
	})
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "error",
			"kind":   sqldb.KindOf(err).String(),
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "type": dbType})
}
