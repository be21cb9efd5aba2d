package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/agencyops/fakturo/internal/config"
	extraworkdomain "github.com/agencyops/fakturo/internal/extrawork/domain"
	"github.com/agencyops/fakturo/internal/invoice/render"
	"github.com/agencyops/fakturo/internal/invoice/workspace"
	issuancedomain "github.com/agencyops/fakturo/internal/issuance/domain"
	obscontext "github.com/agencyops/fakturo/internal/observability/context"
	"github.com/agencyops/fakturo/internal/observability/logger"
	"github.com/agencyops/fakturo/internal/observability/metrics"
	"github.com/agencyops/fakturo/internal/observability/tracing"
)

type Server struct {
	cfg       config.Config
	log       *zap.Logger
	workspace *workspace.Workspace
	extraWork extraworkdomain.Queue
	ledger    issuancedomain.Ledger
	renderer  render.Renderer
}

type Params struct {
	fx.In

	Config    config.Config
	Log       *zap.Logger
	Workspace *workspace.Workspace
	ExtraWork extraworkdomain.Queue
	Ledger    issuancedomain.Ledger
	Renderer  render.Renderer
}

func NewServer(p Params) *Server {
	return &Server{
		cfg:       p.Config,
		log:       p.Log.Named("server"),
		workspace: p.Workspace,
		extraWork: p.ExtraWork,
		ledger:    p.Ledger,
		renderer:  p.Renderer,
	}
}

func NewEngine(cfg config.Config, log *zap.Logger, m *metrics.BillingMetrics, genID *snowflake.Node) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(obscontext.GinMiddleware(genID))
	engine.Use(tracing.GinMiddleware())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(metrics.GinMiddleware(m))
	return engine
}

func RegisterRoutes(engine *gin.Engine, s *Server) {
	engine.NoRoute(func(c *gin.Context) { AbortWithError(c, ErrNotFound) })
	engine.GET("/healthz", s.Health)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api")
	{
		api.POST("/invoices/generate", s.GenerateInvoices)
		api.POST("/invoices/regenerate", s.RequestRegeneration)
		api.GET("/invoices", s.ListInvoices)
		api.POST("/invoices", s.AddInvoice)
		api.GET("/invoices/:invoiceID/preview", s.PreviewInvoice)
		api.POST("/invoices/:invoiceID/duplicate", s.DuplicateInvoice)
		api.DELETE("/invoices/:invoiceID", s.RemoveInvoice)

		api.POST("/invoices/:invoiceID/items", s.AddManualItem)
		api.PATCH("/invoices/:invoiceID/items/:itemID", s.UpdateLineItem)
		api.DELETE("/invoices/:invoiceID/items/:itemID", s.RemoveLineItem)
		api.POST("/invoices/:invoiceID/items/:itemID/duplicate", s.DuplicateLineItem)

		api.POST("/invoices/:invoiceID/select", s.SelectInvoice)
		api.DELETE("/invoices/:invoiceID/select", s.DeselectInvoice)
		api.GET("/invoices/selection", s.Selection)
		api.POST("/invoices/issue", s.IssueSelected)
		api.POST("/invoices/:invoiceID/reissue", s.ReissueInvoice)

		api.GET("/invoices/stats", s.InvoiceStats)
		api.GET("/issued", s.ListIssued)

		api.POST("/extra-work/:itemID/status", s.TransitionExtraWork)
	}
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "environment": s.cfg.Environment})
}

// RunHTTP binds the engine to the fx lifecycle.
func RunHTTP(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, engine *gin.Engine) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(NewServer, NewEngine),
	fx.Invoke(RegisterRoutes, RunHTTP),
)
