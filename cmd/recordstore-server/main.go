package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	ginprometheus "github.com/zsais/go-gin-prometheus"

	"github.com/yowenter/recordstore/pkg/records"
	"github.com/yowenter/recordstore/pkg/store"
	"github.com/yowenter/recordstore/pkg/store/etcd"
	"github.com/yowenter/recordstore/pkg/store/jsonfile"
	"github.com/yowenter/recordstore/pkg/types"
)

var buildtime string
var version string

func main() {
	configFile := flag.String("config", records.DefaultServerConfig, "server config file")
	flag.Parse()

	log.Infof("Record Store Server version `%v`, buildtime `%v`", version, buildtime)
	records.InitPrometheus()

	conf, err := records.LoadServerConfig(*configFile)
	if err != nil {
		log.Fatalf("load server config failure %v", err)
	}

	if conf.Debug {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
		gin.SetMode(gin.ReleaseMode)
	}

	st, err := openStore(conf)
	if err != nil {
		log.Fatalf("open %v store failure %v", conf.StorageBackend, err)
	}

	controller := records.NewRecordController(st)

	r := gin.New()
	r.Use(gin.LoggerWithWriter(gin.DefaultWriter, "/api/health"), gin.Recovery())
	r.Use(corsMiddleware(conf))
	p := ginprometheus.NewPrometheus("gin")
	p.Use(r)

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"buildtime": buildtime,
			"version":   version,
			"name":      "record store server",
		})
	})
	controller.RegisterRoutes(r)

	ctx, cancel := context.WithCancel(context.Background())
	go controller.MetricsCollector(ctx)

	s := &http.Server{
		Addr:           conf.Listen,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server failure %v", err)
		}
	}()
	log.Infof("listening on %v, storage backend `%v`", conf.Listen, conf.StorageBackend)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Infof("received signal %v, shutting down..", sig)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		log.Errorf("http server shutdown err %v", err)
	}
	if err := st.Close(); err != nil {
		log.Errorf("store close err %v", err)
	}
	log.Info("record store server stopped")
}

func openStore(conf *types.ServerConfiguration) (store.Store, error) {
	switch conf.StorageBackend {
	case records.BACKEND_ETCD:
		return etcd.NewStore(&etcd.Config{
			Endpoints:    conf.EtcdEndpoints,
			DiscoverySrv: conf.EtcdDiscoverySrv,
			Username:     conf.EtcdUsername,
			Password:     conf.EtcdPassword,
			KeyFile:      conf.EtcdKeyFile,
			CertFile:     conf.EtcdCertFile,
			CACertFile:   conf.EtcdCACertFile,
		})
	case records.BACKEND_FILE:
		return jsonfile.Open(conf.DataFile)
	default:
		return nil, fmt.Errorf("unknown storage backend `%v`", conf.StorageBackend)
	}
}

// corsMiddleware opens the api to browser clients. Origins come from the
// config, "*" or an empty list means allow all.
func corsMiddleware(conf *types.ServerConfiguration) gin.HandlerFunc {
	cc := cors.DefaultConfig()
	cc.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	allowAll := len(conf.CORSAllowOrigins) == 0
	for _, origin := range conf.CORSAllowOrigins {
		if origin == "*" {
			allowAll = true
		}
	}
	if allowAll {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = conf.CORSAllowOrigins
	}
	return cors.New(cc)
}
