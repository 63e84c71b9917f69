package api

import (
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/campushub/events-api/docs"
	v1 "github.com/campushub/events-api/internal/api/handler/v1"
	"github.com/campushub/events-api/internal/api/middleware"
	"github.com/campushub/events-api/internal/clock"
	"github.com/campushub/events-api/internal/config"
	"github.com/campushub/events-api/internal/gateway"
	"github.com/campushub/events-api/internal/repository"
	"github.com/campushub/events-api/internal/repository/dao"
	"github.com/campushub/events-api/internal/service"
	"github.com/campushub/events-api/internal/sideeffect"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
}

func NewServer(conf *config.AppConfig, db *gorm.DB) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	authHandler := s.initAuthHandler(db)
	userHandler := s.initUserHandler(db)
	eventHandler := s.initEventHandler(db)
	registrationHandler := s.initRegistrationHandler(db)
	s.MountHandlers(authHandler, userHandler, eventHandler, registrationHandler)

	return s
}

func (s *Server) initAuthHandler(db *gorm.DB) *v1.AuthHandler {
	userDAO := dao.NewUserDAO(db)
	repo := repository.NewUserRepository(userDAO)
	svc := service.NewAuthService(repo)
	handler := v1.NewAuthHandler(s.Config.API, svc)

	return handler
}

func (s *Server) initUserHandler(db *gorm.DB) *v1.UserHandler {
	userDAO := dao.NewUserDAO(db)
	repo := repository.NewUserRepository(userDAO)
	svc := service.NewUserService(repo)
	handler := v1.NewUserHandler(svc)

	return handler
}

func (s *Server) initEventHandler(db *gorm.DB) *v1.EventHandler {
	eventDAO := dao.NewEventDAO(db)
	repo := repository.NewEventRepository(eventDAO)
	svc := service.NewEventService(repo)
	uSvc := service.NewUserService(repository.NewUserRepository(dao.NewUserDAO(db)))
	handler := v1.NewEventHandler(svc, uSvc)

	return handler
}

func (s *Server) initRegistrationHandler(db *gorm.DB) *v1.RegistrationHandler {
	clk := clock.NewSystem()
	ledger := repository.NewRegistrationRepository(db)
	stripeClient := gateway.NewStripeClient(s.Config.Stripe)

	eligibility := service.NewEligibilityService(clk)
	payments := service.NewPaymentService(stripeClient)
	svc := service.NewRegistrationService(
		ledger,
		eligibility,
		payments,
		sideeffect.NewLogCalendarSync(),
		sideeffect.NewLogNotificationSink(),
		clk,
	)

	uSvc := service.NewUserService(repository.NewUserRepository(dao.NewUserDAO(db)))
	handler := v1.NewRegistrationHandler(svc, uSvc)

	return handler
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(authHandler *v1.AuthHandler, userHandler *v1.UserHandler, eventHandler *v1.EventHandler, registrationHandler *v1.RegistrationHandler) {
	const basePath = "/api/v1"

	auth := s.Router.Group(basePath)
	{
		auth.POST("/auth/signup", authHandler.HandleSignup)
		auth.POST("/auth/login", authHandler.HandleLogin)
	}

	users := s.Router.Group(basePath, middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	{
		users.GET("/users/:userID", userHandler.HandleGetUser)
		users.GET("/users/:userID/wallet", userHandler.HandleGetWallet)
	}

	events := s.Router.Group(basePath, middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	{
		events.GET("/events", eventHandler.HandleListEvents)
		events.GET("/events/:eventID", eventHandler.HandleGetEvent)
		events.POST("/events", eventHandler.HandleCreateEvent)
	}

	registrations := s.Router.Group(basePath, middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	{
		registrations.GET("/registrations", registrationHandler.HandleListOwnRegistrations)
		registrations.POST("/registrations", registrationHandler.HandleRegister)
		registrations.POST("/registrations/batch", registrationHandler.HandleRegisterBatch)
		registrations.POST("/registrations/:registrationID/cancel", registrationHandler.HandleCancel)
		registrations.PATCH("/registrations/:registrationID/status", registrationHandler.HandleUpdateStatus)
	}

	s.Router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	docs.SwaggerInfo.BasePath = basePath
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
