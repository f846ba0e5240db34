package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dealdesk/dealdesk/internal/activity"
	activitydomain "github.com/dealdesk/dealdesk/internal/activity/domain"
	"github.com/dealdesk/dealdesk/internal/catalog"
	catalogdomain "github.com/dealdesk/dealdesk/internal/catalog/domain"
	"github.com/dealdesk/dealdesk/internal/config"
	"github.com/dealdesk/dealdesk/internal/customer"
	customerdomain "github.com/dealdesk/dealdesk/internal/customer/domain"
	"github.com/dealdesk/dealdesk/internal/proposal"
	proposaldomain "github.com/dealdesk/dealdesk/internal/proposal/domain"
	"github.com/dealdesk/dealdesk/internal/task"
	taskdomain "github.com/dealdesk/dealdesk/internal/task/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	activity.Module,
	catalog.Module,
	customer.Module,
	proposal.Module,
	task.Module,
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) { s.RegisterRoutes() }),
	fx.Invoke(RunHTTP),
)

// NewEngine builds the gin engine with recovery, request logging and
// error mapping middleware plus the health and metrics endpoints.
func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log.Named("http")))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	db     *gorm.DB
	genID  *snowflake.Node

	customerSvc customerdomain.Service
	productSvc  catalogdomain.Service
	proposalSvc proposaldomain.Service
	taskSvc     taskdomain.Service
	activitySvc activitydomain.Service
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	DB          *gorm.DB
	GenID       *snowflake.Node
	CustomerSvc customerdomain.Service
	ProductSvc  catalogdomain.Service
	ProposalSvc proposaldomain.Service
	TaskSvc     taskdomain.Service
	ActivitySvc activitydomain.Service
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		db:          p.DB,
		genID:       p.GenID,
		customerSvc: p.CustomerSvc,
		productSvc:  p.ProductSvc,
		proposalSvc: p.ProposalSvc,
		taskSvc:     p.TaskSvc,
		activitySvc: p.ActivitySvc,
	}
}

func (s *Server) RegisterRoutes() {
	api := s.engine.Group("/api/v1")

	api.POST("/customers", s.CreateCustomer)
	api.GET("/customers", s.ListCustomers)
	api.GET("/customers/:id", s.GetCustomer)
	api.PATCH("/customers/:id", s.UpdateCustomer)
	api.DELETE("/customers/:id", s.DeleteCustomer)

	api.POST("/products", s.CreateProduct)
	api.POST("/products/bulk", s.BulkCreateProducts)
	api.GET("/products", s.ListProducts)
	api.GET("/products/:id", s.GetProduct)
	api.PATCH("/products/:id", s.UpdateProduct)
	api.POST("/products/:id/archive", s.ArchiveProduct)

	api.POST("/proposals", s.CreateProposal)
	api.GET("/proposals", s.ListProposals)
	api.GET("/proposals/:id", s.GetProposal)
	api.PATCH("/proposals/:id", s.UpdateProposal)
	api.DELETE("/proposals/:id", s.DeleteProposal)
	api.POST("/proposals/:id/recompute", s.RecomputeProposal)

	api.POST("/proposals/:id/line-items", s.AddLineItem)
	api.POST("/proposals/:id/line-items/batch", s.AddLineItems)
	api.PATCH("/proposals/:id/line-items/:entryID", s.UpdateLineItem)
	api.DELETE("/proposals/:id/line-items/:entryID", s.RemoveLineItem)

	api.POST("/proposals/:id/engineering", s.AddEngineeringEntry)
	api.PATCH("/proposals/:id/engineering/:entryID", s.UpdateEngineeringEntry)
	api.DELETE("/proposals/:id/engineering/:entryID", s.RemoveEngineeringEntry)

	api.POST("/proposals/:id/expenses", s.AddExpense)
	api.PATCH("/proposals/:id/expenses/:entryID", s.UpdateExpense)
	api.DELETE("/proposals/:id/expenses/:entryID", s.RemoveExpense)

	api.POST("/proposals/:id/taxes", s.AddTax)
	api.PATCH("/proposals/:id/taxes/:entryID", s.UpdateTax)
	api.DELETE("/proposals/:id/taxes/:entryID", s.RemoveTax)

	api.POST("/tasks", s.CreateTask)
	api.GET("/tasks", s.ListTasks)
	api.GET("/tasks/:id", s.GetTask)
	api.PATCH("/tasks/:id", s.UpdateTask)
	api.POST("/tasks/:id/complete", s.CompleteTask)
	api.DELETE("/tasks/:id", s.DeleteTask)

	api.GET("/activities", s.ListActivities)
}

func RunHTTP(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
