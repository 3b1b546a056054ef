package main

import (
	"bookstore/src/boot"
	"bookstore/src/common"
	"bookstore/src/config"
	"bookstore/src/db"
	"bookstore/src/lib"
	"bookstore/src/lib/mailer"
	"bookstore/src/middlewares"
	"bookstore/src/types"
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path"
	"regexp"
	"strconv"
	"syscall"
	"time"

	"github.com/covalenthq/lumberjack"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	apiPrefix string = "/api/v1"
)

var (
	services  *common.Services
	scheduler *lib.Scheduler
	appMailer common.Mailer
)

var orderStatusValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	status, ok := fl.Field().Interface().(types.OrderStatus)
	return ok && status.Valid()
}

func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("orderstatus", orderStatusValidatorFunc)
	}
}

func setupRouter() *gin.Engine {
	router := gin.Default()
	router.Use(middlewares.SecureHeaders)
	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, "ok")
	})
	return router
}

func maintenanceModeMiddleware(g *gin.Engine) *gin.Engine {
	g.Use(func(ctx *gin.Context) {
		mm := os.Getenv("MAINTENANCE_MODE")
		if mm == "" {
			return
		}
		on, err := strconv.ParseBool(mm)
		if err != nil || on {
			err := errors.New("server is under maintenance")
			log.Println(err.Error())
			ctx.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
	})
	return g
}

func apiv1Group(g *gin.Engine) *gin.RouterGroup {
	apiv1 := g.Group(apiPrefix)
	return apiv1
}

func actorFrom(ctx *gin.Context) common.Actor {
	role, _ := ctx.Get("role")
	r, _ := role.(types.Role)
	return common.Actor{
		ID:    ctx.GetUint("id"),
		Email: ctx.GetString("email"),
		Role:  r,
		State: ctx.GetString("state"),
	}
}

func registerRoutes(router *gin.Engine) {
	router = maintenanceModeMiddleware(router)

	public := apiv1Group(router)
	guestAuthRoutes(public)
	publicProductHandlers(public)

	flutterwavePublicRoutes(router)

	authorized := router.Group(apiPrefix)
	authorized.Use(middlewares.AuthMiddleware)
	{
		flutterwaveHandlers(authorized)
		orderHandlers(authorized)
		adminOrderHandlers(authorized)
		productHandlers(authorized)
	}
}

func initLogger() {
	cwd, _ := os.Getwd()
	logsDir := path.Join(cwd, "logs")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		log.Printf("Error creating logs directory: %s\n", err.Error())
		return
	}
	gin.ForceConsoleColor()

	f, err := os.Create(path.Join(logsDir, "api.log"))
	if err == nil {
		gin.DefaultWriter = io.MultiWriter(f, os.Stdout)
	}
	log.SetOutput(&lumberjack.Logger{
		Filename:   path.Join(logsDir, "server.log"),
		MaxSize:    500,
		MaxBackups: 3,
		MaxAge:     30,
		Compress:   true,
	})
}

func corsMiddleware(apiEnv string) gin.HandlerFunc {
	if apiEnv == string(types.Local) {
		return cors.Default()
	}
	appHost := os.Getenv("APP_HOST")
	cc := cors.DefaultConfig()
	cc.AllowMethods = append(cc.AllowMethods, "GET", "POST", "PATCH", "PUT", "DELETE", "HEAD")
	cc.AllowHeaders = append(cc.AllowHeaders, "Origin", "Authorization", config.FLUTTERWAVE_SIGNATURE_HEADER)
	cc.AllowOriginFunc = func(origin string) bool {
		if appHost == "" {
			return false
		}
		match, _ := regexp.MatchString(appHost, origin)
		return match
	}
	cc.AllowCredentials = true
	cc.AllowAllOrigins = false
	return cors.New(cc)
}

func main() {
	apiEnv := config.APIEnv()
	if apiEnv == string(types.Local) {
		cwd, _ := os.Getwd()
		if err := godotenv.Load(path.Join(cwd, ".env")); err != nil {
			panic(err)
		}
	}
	initLogger()

	boot.InitDb()

	var err error
	scheduler, err = boot.InitScheduler(nil)
	if err != nil {
		log.Fatalf("Failed to start scheduler: %s", err)
	}

	publisher := lib.GetEventPublisher()
	m := mailer.New()
	appMailer = m
	log.Printf("Mailer mode: %s\n", m.Mode())
	services = common.NewServices(common.Deps{
		DB:                db.GetDb(),
		Gateway:           lib.GetPaymentGateway(),
		Clock:             scheduler.Clock(),
		Locker:            lib.GetLocker(),
		Publisher:         publisher,
		Mailer:            m,
		VerifyAttempts:    config.VerifyMaxAttempts(),
		VerifyDelay:       config.VerifyRetryDelay(),
		StrictTransitions: config.StrictOrderTransitions(),
		EventsTopic:       config.EventsTopic(),
	})

	if err := boot.ScheduleReconciliation(scheduler, services.Reconciler, config.ReconcileInterval()); err != nil {
		log.Fatalf("Failed to schedule reconciliation: %s", err)
	}
	brokerCtx, stopBroker := context.WithCancel(context.Background())
	go boot.InitBroker(brokerCtx, m)
	scheduler.Start()

	registerValidators()
	router := setupRouter()
	router.Use(corsMiddleware(apiEnv))
	registerRoutes(router)

	srv := &http.Server{
		Addr:    ":" + config.Port(),
		Handler: router,
	}
	go func() {
		log.Printf("Server listening on %s\n", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %s", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Error shutting down server: %s\n", err.Error())
	}
	stopBroker()
	boot.StopScheduler(scheduler)
	publisher.Close()
	db.Close()
}
