package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/mzalewski/examtrainer/config"
	"github.com/mzalewski/examtrainer/database"
	adminctrl "github.com/mzalewski/examtrainer/internal/controller/admin"
	authctrl "github.com/mzalewski/examtrainer/internal/controller/auth"
	quizctrl "github.com/mzalewski/examtrainer/internal/controller/quiz"
	resultsctrl "github.com/mzalewski/examtrainer/internal/controller/results"
	"github.com/mzalewski/examtrainer/internal/dto"
	"github.com/mzalewski/examtrainer/internal/logger"
	"github.com/mzalewski/examtrainer/internal/middleware"
	"github.com/mzalewski/examtrainer/internal/model"
	"github.com/mzalewski/examtrainer/internal/repository"
	"github.com/mzalewski/examtrainer/internal/service"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title Exam Trainer API
// @version 1.0
// @description JSON API for exam preparation: question bank with adaptive selection, answer verification, progress tracking and attempt history.
// @contact.name API Support
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.Init()

	app := fx.New(
		fx.Provide(
			config.NewConfig,
			database.NewDatabase,
			NewGinEngine,
		),

		// Repositories
		fx.Provide(
			repository.NewUserRepository,
			repository.NewTokenRepository,
			repository.NewSubjectRepository,
			repository.NewQuestionRepository,
			repository.NewAnswerRepository,
			repository.NewProgressRepository,
			repository.NewAttemptRepository,
		),

		// Services
		fx.Provide(
			service.NewCommonPasswordChecker,
			service.NewGoogleVerifier,
			service.NewEmailService,
			service.NewTokenService,
			service.NewAuthService,
			service.NewScoreService,
			service.NewQuestionService,
			service.NewAnswerService,
			service.NewProgressService,
			service.NewAttemptService,
			service.NewExplanationService,
			service.NewAdminService,
		),

		// Controllers
		fx.Provide(
			authctrl.NewAuthController,
			quizctrl.NewQuizController,
			resultsctrl.NewResultsController,
			adminctrl.NewAdminController,
		),

		fx.Invoke(RegisterRoutesAndStartServer),
		fx.Invoke(AutoMigrateDB),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewGinEngine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("user_agent", param.Request.UserAgent()).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Unsupported methods on known paths answer 405 with the standard envelope.
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(ctx *gin.Context) {
		ctx.JSON(http.StatusMethodNotAllowed, dto.Error("Method not allowed"))
	})
	r.NoRoute(func(ctx *gin.Context) {
		ctx.JSON(http.StatusNotFound, dto.Error("Not found"))
	})

	// Swagger UI at /swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// RegisterRoutesAndStartServer configures API routes and manages the server
// lifecycle through fx hooks.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	users repository.UserRepository,
	authCtrl *authctrl.AuthController,
	quizCtrl *quizctrl.QuizController,
	resultsCtrl *resultsctrl.ResultsController,
	adminCtrl *adminctrl.AdminController,
) {
	requireAuth := middleware.RequireAuth(cfg, users)
	optionalAuth := middleware.OptionalAuth(cfg, users)

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", authCtrl.Register)
		authGroup.POST("/login", authCtrl.Login)
		authGroup.POST("/google", authCtrl.GoogleSignIn)
		authGroup.GET("/verify-email", authCtrl.VerifyEmail)
		authGroup.POST("/password-reset/request", authCtrl.RequestPasswordReset)
		authGroup.POST("/password-reset/confirm", authCtrl.ResetPassword)
		authGroup.GET("/email-change/confirm", authCtrl.ConfirmEmailChange)

		authGroup.POST("/logout", requireAuth, authCtrl.Logout)
		authGroup.GET("/me", requireAuth, authCtrl.Me)
		authGroup.POST("/password-change", requireAuth, authCtrl.ChangePassword)
		authGroup.POST("/email-change/request", requireAuth, authCtrl.RequestEmailChange)
		authGroup.DELETE("/account", requireAuth, authCtrl.DeleteAccount)
	}

	// Quiz surface. Single-question and personalized-test fetches accept
	// anonymous users for the random mode; the service layer gates the
	// adaptive modes.
	router.GET("/question/:exam_code", optionalAuth, quizCtrl.GetQuestion)
	router.GET("/test/full/:exam_code", optionalAuth, quizCtrl.GetFullExam)
	router.GET("/test/personalized/:exam_code", optionalAuth, quizCtrl.GetPersonalizedTest)
	router.POST("/check-answer", optionalAuth, quizCtrl.CheckAnswer)

	router.POST("/save-test-result", requireAuth, resultsCtrl.SaveTestResult)
	router.POST("/save-progress-bulk", requireAuth, resultsCtrl.SaveProgressBulk)
	router.GET("/stats", requireAuth, resultsCtrl.GetStats)
	router.GET("/attempts", requireAuth, resultsCtrl.GetAttempts)

	adminGroup := router.Group("/admin", requireAuth, middleware.RequireAdmin())
	{
		adminGroup.POST("/subjects", adminCtrl.CreateSubject)
		adminGroup.POST("/questions", adminCtrl.CreateQuestion)
		adminGroup.POST("/questions/:question_id/explanation", adminCtrl.BackfillExplanation)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Exam trainer API starting on port %s", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.User{},
		&model.ActionToken{},
		&model.Subject{},
		&model.Question{},
		&model.Answer{},
		&model.UserProgress{},
		&model.ExamAttempt{},
		&model.ExamAttemptTopic{},
		&model.ExamAttemptAnswer{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
