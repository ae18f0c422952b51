package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pulse/pulse/config"
	"pulse/pulse/controllers"
	"pulse/pulse/realtime"
	"pulse/pulse/routes"
	"pulse/pulse/services/linkpreview"
	"pulse/pulse/sources/psql"
	"pulse/pulse/sources/psql/dao"
	"pulse/pulse/sources/storage"
	"pulse/pulse/utils/logging"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func main() {
	logging.InitLogger()
	cfg := config.LoadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	db, err := psql.NewDatabase(ctx, cfg)
	if err != nil {
		logging.ErrorLogger.Error("database connection error", zap.Error(err))
		os.Exit(1)
	}
	defer db.Close()

	avatars, err := storage.NewAvatarStore(cfg)
	if err != nil {
		logging.ErrorLogger.Error("minio connection error", zap.Error(err))
		os.Exit(1)
	}

	userDAO := dao.NewUserDAO(db.DB)
	postDAO := dao.NewPostDAO(db.DB)
	chatDAO := dao.NewChatDAO(db.DB)

	authCtrl := controllers.NewAuthController(userDAO, cfg)
	userCtrl := controllers.NewUserController(userDAO, avatars)
	feedCtrl := controllers.NewFeedController(postDAO, linkpreview.NewClient(0))
	chatCtrl := controllers.NewChatController(chatDAO, userDAO)
	healthCtrl := controllers.NewHealthController(db.DB)

	registry := realtime.NewRegistry()
	gateway := realtime.NewGateway(registry, chatCtrl, userDAO, cfg)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Mount("/health", routes.HealthRoutes(healthCtrl))
	r.Mount("/auth", routes.AuthRoutes(authCtrl))
	r.Mount("/users", routes.UserRoutes(userCtrl, cfg))
	r.Mount("/posts", routes.FeedRoutes(feedCtrl, cfg))
	r.Mount("/chat", routes.ChatRoutes(chatCtrl, gateway, cfg))

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: r,
	}
	go func() {
		logging.AppLogger.Info("server listening", zap.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.ErrorLogger.Error("server listen error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.ErrorLogger.Error("server shutdown error", zap.Error(err))
	}
	logging.AppLogger.Info("server shutdown complete")
}
