package conf

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/zeptools/gw-dbconn/db"
	"github.com/zeptools/gw-dbconn/db/sqldb"
	"github.com/zeptools/gw-dbconn/db/sqldb/impls"
	"github.com/zeptools/gw-dbconn/svc"
	"github.com/zeptools/gw-dbconn/uds"
	"github.com/zeptools/gw-dbconn/web"
)

const (
	DefaultAppName = "gwdb"
	DefaultListen  = "127.0.0.1:8080"
	EnvListen      = "GW_LISTEN"
)

// Core - common config
type Core struct {
	AppName            string             `json:"app_name"`
	Listen             string             `json:"listen"`               // HTTP Server Listen IP:PORT Address
	DBProperties       string             `json:"db_properties"`        // db properties file. relative paths are under AppRoot
	ShutdownTimeoutSec int                `json:"shutdown_timeout_sec"` // for in-flight http requests
	AdminSocket        string             `json:"admin_socket"`         // unix socket path. no admin service if empty
	AppRoot            string             `json:"-"`
	RootCtx            context.Context    `json:"-"` // Global Context with RootCancel
	RootCancel         context.CancelFunc `json:"-"` // CancelFunc for RootCtx
	DBProvider         *sqldb.Provider    `json:"-"` // PrepareDBProvider
	WebService         *web.Service       `json:"-"` // PrepareWebService
	UDSService         *uds.Service       `json:"-"` // PrepareUDSService
	Resources          *db.Scope          `json:"-"` // long-lived resources, released by ResourceCleanUp

	services []svc.Service // Services to Manage
	done     chan error
}

// BaseInit - 1st step for initialization
// 1. set AppRoot
// 2. load config/.core.json file if present
// 3. apply env overrides and defaults
// 4. Start ShutdownSignalListener
func (c *Core) BaseInit(appRoot string, rootCtx context.Context, rootCancel context.CancelFunc) error {
	c.AppRoot = appRoot
	confFilePath := filepath.Join(appRoot, "config", ".core.json")
	confBytes, err := os.ReadFile(confFilePath)
	switch {
	case err == nil:
		if err = json.Unmarshal(confBytes, c); err != nil {
			return fmt.Errorf("%s: %w", confFilePath, err)
		}
	case errors.Is(err, os.ErrNotExist):
		log.Printf("[INFO][CORE] %s not found, using defaults", confFilePath)
	default:
		return err
	}
	c.applyEnv()
	c.RootCtx = rootCtx
	c.RootCancel = rootCancel
	c.Resources = db.NewScope(c.AppName + " resources")
	c.startShutdownSignalListener()
	return nil
}

func (c *Core) applyEnv() {
	if v := os.Getenv(EnvListen); v != "" {
		c.Listen = v
	}
	if v := os.Getenv(sqldb.EnvConfPath); v != "" {
		c.DBProperties = v
	}
	if c.AppName == "" {
		c.AppName = DefaultAppName
	}
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
}

func (c *Core) AddService(s svc.Service) {
	log.Printf("[INFO] adding service: %s", s.Name())
	c.services = append(c.services, s)
	log.Printf("[INFO] total services: %d", len(c.services))
}

func (c *Core) StartServices() error {
	c.done = make(chan error, len(c.services))
	for _, s := range c.services {
		err := s.Start()
		if err != nil {
			return err
		}
		go func(s svc.Service) {
			err := <-s.Done()
			c.done <- err
		}(s)
	}
	return nil
}

func (c *Core) WaitServicesDone() error {
	for i := 0; i < len(c.services); i++ {
		if err := <-c.done; err != nil {
			return err
		}
	}
	return nil
}

func (c *Core) StopServices() {
	for _, s := range c.services {
		s.Stop()
	}
}

var once sync.Once

func (c *Core) startShutdownSignalListener() {
	once.Do(func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			sig := <-sigs
			log.Printf("[INFO] got signal [%s]. shutting down app [%s] ...", sig, c.AppName)
			c.RootCancel() // broadcast to all child services via Context.Done()
		}()
	})
	log.Printf("[INFO][CORE] shutdown signal listener started")
}

// DBPropertiesPath resolves DBProperties against AppRoot
func (c *Core) DBPropertiesPath() string {
	path := sqldb.ConfPath(c.DBProperties)
	if !filepath.IsAbs(path) && c.AppRoot != "" {
		path = filepath.Join(c.AppRoot, path)
	}
	return path
}

// PrepareDBProvider registers the supported dialects and builds DBProvider.
// Nothing is opened here. Every Connect reloads the properties file.
func (c *Core) PrepareDBProvider() {
	impls.RegisterAll()
	c.DBProvider = sqldb.NewProvider(c.DBPropertiesPath())
	log.Printf("[INFO][CORE] db provider ready (%s), dialects: %v", c.DBProvider.ConfPath, sqldb.Types())
}

// PrepareWebService
// Prerequisite: DBProvider
func (c *Core) PrepareWebService() error {
	if c.DBProvider == nil {
		return errors.New("db provider not ready")
	}
	c.WebService = web.NewService(c.RootCtx, c.Listen, web.NewRouter(c.DBProvider))
	if c.ShutdownTimeoutSec > 0 {
		c.WebService.ShutdownTimeout = time.Duration(c.ShutdownTimeoutSec) * time.Second
	}
	c.AddService(c.WebService)
	return nil
}

// PrepareUDSService wires the admin socket with the db commands.
// Does nothing when AdminSocket is empty.
// Prerequisite: DBProvider
func (c *Core) PrepareUDSService() error {
	if c.AdminSocket == "" {
		return nil
	}
	if c.DBProvider == nil {
		return errors.New("db provider not ready")
	}
	sockPath := c.AdminSocket
	if !filepath.IsAbs(sockPath) {
		sockPath = filepath.Join(c.AppRoot, sockPath)
	}
	c.UDSService = uds.NewService(c.RootCtx, sockPath, uds.DBCmdMap(c.DBProvider))
	c.AddService(c.UDSService)
	return nil
}

func (c *Core) ResourceCleanUp() {
	log.Println("[INFO] App Resource Cleaning Up...")
	if c.Resources != nil {
		_ = c.Resources.Close()
	}
	log.Println("[INFO] App Resource Cleanup Complete")
}
