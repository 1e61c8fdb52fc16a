package cmd

import (
	"github.com/vibast-solutions/ms-go-shop/app/catalog"
	"github.com/vibast-solutions/ms-go-shop/app/controller"
	"github.com/vibast-solutions/ms-go-shop/app/database"
	"github.com/vibast-solutions/ms-go-shop/app/mediator"
	"github.com/vibast-solutions/ms-go-shop/app/middleware"
	"github.com/vibast-solutions/ms-go-shop/app/repository"
	"github.com/vibast-solutions/ms-go-shop/config"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Product catalog service",
}

var productsServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the product service HTTP server",
	Run:   runProductsServe,
}

func init() {
	productsCmd.AddCommand(productsServeCmd)
	rootCmd.AddCommand(productsCmd)
}

func runProductsServe(_ *cobra.Command, _ []string) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := configureLogging(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}

	dialector, err := database.Dialector(cfg.DBDriver, cfg.DSN)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to select database driver")
	}
	db, err := database.OpenGorm(dialector, database.PoolConfig{
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
	})
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	m := mediator.New(mediator.Logging(logrus.StandardLogger()))
	if err := catalog.NewHandlers(repository.NewProductRepository(db)).Register(m); err != nil {
		logrus.WithError(err).Fatal("Failed to register product handlers")
	}

	productController := controller.NewProductController(m)
	authMiddleware := middleware.NewAuthMiddleware(newIssuer(cfg))

	e := newEcho()

	products := e.Group("/api/products", authMiddleware.RequireAuth)
	products.GET("", productController.GetAll)
	products.GET("/filtersort", productController.GetFilteredSorted)
	products.POST("", productController.Create)
	products.PUT("", productController.Update)
	products.DELETE("/user", productController.DeleteUserProducts)
	products.GET("/:id", productController.GetByID)
	products.DELETE("/:id", productController.Delete)

	runServer(e, cfg.HTTPAddress())
}
