package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/MikeRez0/storefront/internal/core/domain"
	"github.com/MikeRez0/storefront/internal/core/port"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

type Router struct {
	*gin.Engine
	logger *zap.Logger
}

func NewRouter(
	tokenService port.TokenService,
	orderHandler *OrderHandler,
	logger *zap.Logger) (*Router, error) {

	router := gin.New()
	router.Use(gin.Recovery(), requestTracing(logger))

	// Swagger
	router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api")
	api.Use(authCheck(tokenService))
	{
		orders := api.Group("/orders")
		{
			orders.POST("", requireRole(domain.RoleCustomer), orderHandler.CreateOrder)
			orders.GET("", requireRole(domain.RoleAdmin), orderHandler.ListOrders)
			orders.GET("/my", requireRole(domain.RoleCustomer), orderHandler.ListMyOrders)
			orders.GET("/seller", requireRole(domain.RoleSeller), orderHandler.ListSellerOrders)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.PUT("/:id/status", requireRole(domain.RoleSeller, domain.RoleAdmin), orderHandler.UpdateStatus)
			orders.PUT("/:id/cancel", requireRole(domain.RoleCustomer), orderHandler.CancelOrder)
			orders.PUT("/:id/refund", requireRole(domain.RoleAdmin), orderHandler.UpdateRefund)
			orders.DELETE("/:id", requireRole(domain.RoleAdmin), orderHandler.DeleteOrder)
		}
	}

	return &Router{Engine: router, logger: logger}, nil
}

// Serve starts the HTTP server and shuts it down gracefully once ctx is done.
func (r *Router) Serve(ctx context.Context, listenAddr string) error {
	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           r.Engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		r.logger.Info("HTTP server listening", zap.String("addr", listenAddr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
