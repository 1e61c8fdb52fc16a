package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vibast-solutions/ms-go-shop/app/client"
	"github.com/vibast-solutions/ms-go-shop/app/controller"
	"github.com/vibast-solutions/ms-go-shop/app/middleware"
	"github.com/vibast-solutions/ms-go-shop/app/repository"
	"github.com/vibast-solutions/ms-go-shop/app/service"
	"github.com/vibast-solutions/ms-go-shop/app/token"
	"github.com/vibast-solutions/ms-go-shop/config"

	_ "github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "User and authentication service",
}

var usersServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the user service HTTP server",
	Run:   runUsersServe,
}

var usersRevokeCmd = &cobra.Command{
	Use:   "revoke <email>",
	Short: "Clear the refresh token of a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		cfg, db, err := openUsersDB()
		if err != nil {
			return err
		}
		defer db.Close()

		tokenService := service.NewTokenService(db, newIssuer(cfg))
		if err := tokenService.Revoke(context.Background(), args[0]); err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				return fmt.Errorf("user %q not found", args[0])
			}
			return err
		}

		fmt.Printf("refresh token revoked for %s\n", args[0])
		return nil
	},
}

var usersIssueTokenCmd = &cobra.Command{
	Use:   "issue-token <email>",
	Short: "Issue a bearer token for a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		cfg, db, err := openUsersDB()
		if err != nil {
			return err
		}
		defer db.Close()

		user, err := repository.NewUserRepository(db).FindByEmail(context.Background(), args[0])
		if err != nil {
			return err
		}
		if user == nil {
			return fmt.Errorf("user %q not found", args[0])
		}

		signed, err := newIssuer(cfg).GenerateBearerToken(user.ID, user.Email)
		if err != nil {
			return err
		}

		fmt.Printf("user_id: %s\n", user.ID)
		fmt.Printf("bearer_token: %s\n", signed.Token)
		fmt.Printf("expires_at: %s\n", signed.ExpiresAt.Format(time.RFC3339))
		return nil
	},
}

func init() {
	usersCmd.AddCommand(usersServeCmd)
	usersCmd.AddCommand(usersRevokeCmd)
	usersCmd.AddCommand(usersIssueTokenCmd)
	rootCmd.AddCommand(usersCmd)
}

func runUsersServe(_ *cobra.Command, _ []string) {
	cfg, db, err := openUsersDB()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to start user service")
	}
	defer db.Close()

	issuer := newIssuer(cfg)
	userRepo := repository.NewUserRepository(db)
	authService := service.NewAuthService(userRepo, issuer, cfg)
	tokenService := service.NewTokenService(db, issuer)
	productsClient := client.NewProductsClient(cfg.ProductServiceURL, cfg.ProductServiceTimeout)
	userService := service.NewUserService(userRepo, productsClient, cfg.CascadeFailurePolicy)
	notifier := service.NewNotifier(service.NewLogMailer(cfg.MailFrom, logrus.StandardLogger()))

	authController := controller.NewAuthController(authService, notifier, cfg.PublicBaseURL)
	tokenController := controller.NewTokenController(tokenService)
	userController := controller.NewUserController(userService)
	authMiddleware := middleware.NewAuthMiddleware(issuer)

	e := newEcho()

	auth := e.Group("/api/auth")
	auth.POST("/register", authController.Register)
	auth.POST("/login", authController.Login)
	auth.GET("/confirmemail", authController.ConfirmEmail)
	auth.POST("/forgotpassword", authController.ForgotPassword)
	auth.GET("/resetpassword", authController.ResetPasswordForm)
	auth.POST("/resetpassword", authController.ResetPassword)

	tokens := e.Group("/api/tokens")
	tokens.POST("/refresh", tokenController.Refresh)
	tokens.POST("/revoke", tokenController.Revoke, authMiddleware.RequireAuth)

	users := e.Group("/api/users", authMiddleware.RequireAuth)
	users.GET("", userController.GetAll)
	users.POST("", userController.Create)
	users.PUT("", userController.Update)
	users.GET("/:id", userController.GetByID)
	users.DELETE("/:id", userController.Delete)

	runServer(e, cfg.HTTPAddress())
}

// openUsersDB loads configuration and opens the MySQL user store.
func openUsersDB() (*config.Config, *sql.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, errors.Wrap(err, "load configuration")
	}
	if err := configureLogging(cfg); err != nil {
		return nil, nil, err
	}

	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open database")
	}
	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, errors.Wrap(err, "ping database")
	}
	return cfg, db, nil
}

func newIssuer(cfg *config.Config) *token.Issuer {
	return token.NewIssuer(token.Config{
		SigningKey: []byte(cfg.JWTSecret),
		Issuer:     cfg.JWTIssuer,
		Audience:   cfg.JWTAudience,
		TTL:        cfg.JWTAccessTokenTTL,
	})
}
