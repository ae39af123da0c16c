package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"paintsnap/internal/config"
	"paintsnap/internal/middleware"
	"paintsnap/internal/models"
	"paintsnap/internal/notify"
	"paintsnap/internal/prediction"
	"paintsnap/internal/queue"
	"paintsnap/internal/repository"
	"paintsnap/internal/service"
	"paintsnap/internal/storage"
)

type HandlerSet struct {
	log         zerolog.Logger
	cfg         *config.AppConfig
	auth        *service.AuthService
	profiles    *service.ProfileService
	transforms  *service.TransformationService
	commerceSvc *service.CommerceService
	uploads     *service.UploadService
	prefs       *notify.PreferenceStore
	db          *pgxpool.Pool
	cache       *redis.Client
	users       *repository.UserRepository
	sessions    *repository.SessionRepository
}

func NewHandlerSet(
	log zerolog.Logger,
	db *pgxpool.Pool,
	cache *redis.Client,
	store *storage.ObjectStore,
	apple service.AppleTokenVerifier,
	cfg *config.AppConfig,
) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	transformRepo := repository.NewTransformationRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)

	predictor := prediction.NewClient(cfg.Provider, log)
	jobs := queue.NewPublisher(cache, cfg.Queue.Stream)

	return HandlerSet{
		log:         log,
		cfg:         cfg,
		auth:        service.NewAuthService(userRepo, sessionRepo, apple, cfg, log),
		profiles:    service.NewProfileService(userRepo, log),
		transforms:  service.NewTransformationService(transformRepo, userRepo, predictor, jobs, log),
		commerceSvc: service.NewCommerceService(userRepo, ledgerRepo, cfg.Commerce, log),
		uploads:     service.NewUploadService(store, cfg, log),
		prefs:       notify.NewPreferenceStore(cache),
		db:          db,
		cache:       cache,
		users:       userRepo,
		sessions:    sessionRepo,
	}
}

func (h HandlerSet) Mount(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", h.Register)
	auth.POST("/login", h.Login)
	auth.POST("/apple", h.AppleSignIn)
	auth.POST("/refresh", h.Refresh)
	auth.POST("/logout", h.Logout)

	protectedAuth := v1.Group("/auth")
	protectedAuth.Use(middleware.Auth(h.cfg, h.users, h.sessions))
	protectedAuth.GET("/me", h.Me)
	protectedAuth.DELETE("/account", h.DeleteAccount)

	v1.GET("/styles", h.ListStyles)

	// Commerce webhooks authenticate with a body signature, not a user
	// token.
	v1.POST("/commerce/webhook", h.CommerceWebhook)

	protected := v1.Group("")
	protected.Use(middleware.Auth(h.cfg, h.users, h.sessions))

	protected.GET("/profile", h.GetProfile)
	protected.PATCH("/profile", h.UpdateProfile)

	protected.POST("/media/upload", h.UploadPhoto)

	protected.POST("/transformations", h.SubmitTransformation)
	protected.GET("/transformations", h.ListTransformations)
	protected.GET("/transformations/:id", h.GetTransformation)

	protected.POST("/commerce/restore", h.RestorePurchases)

	protected.GET("/notifications/preferences", h.GetNotificationPreferences)
	protected.PUT("/notifications/preferences", h.SetNotificationPreferences)

	admin := v1.Group("/admin")
	admin.Use(
		middleware.Auth(h.cfg, h.users, h.sessions),
		middleware.RequireRoles(models.UserRoleAdmin),
	)
	admin.GET("/transformations", h.AdminListTransformations)
}

func currentUser(c *gin.Context) (models.User, bool) {
	userVal, exists := c.Get("current_user")
	if !exists {
		return models.User{}, false
	}
	user, ok := userVal.(models.User)
	return user, ok
}
