package server

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	mwecho "github.com/labstack/echo/v4/middleware"
	mwsvc "winsbygroup.com/prodreg/internal/middleware"

	"winsbygroup.com/prodreg/internal/account"
	"winsbygroup.com/prodreg/internal/backup"
	"winsbygroup.com/prodreg/internal/claim"
	"winsbygroup.com/prodreg/internal/config"
	"winsbygroup.com/prodreg/internal/demodata"
	"winsbygroup.com/prodreg/internal/dispatch"
	"winsbygroup.com/prodreg/internal/importer"
	"winsbygroup.com/prodreg/internal/maintenance"
	"winsbygroup.com/prodreg/internal/notify"
	"winsbygroup.com/prodreg/internal/product"
	"winsbygroup.com/prodreg/internal/proof"
	"winsbygroup.com/prodreg/internal/registration"
	"winsbygroup.com/prodreg/internal/sqlite"
	"winsbygroup.com/prodreg/static"

	adminhttp "winsbygroup.com/prodreg/internal/http/admin"
	clienthttp "winsbygroup.com/prodreg/internal/http/client"
	webhttp "winsbygroup.com/prodreg/internal/http/web"
)

type Server struct {
	Echo  *echo.Echo
	HTTP  *http.Server
	DB    *sqlx.DB
	Redis *redis.Client // nil when sessions are kept in memory
}

// Close releases the database and the session store connection.
func (s *Server) Close() error {
	var errs []error
	if s.Redis != nil {
		errs = append(errs, s.Redis.Close())
	}
	errs = append(errs, s.DB.Close())
	return errors.Join(errs...)
}

func Build(cfg *config.Config) (*Server, error) {
	//
	// Validate required environment variables
	//
	if os.Getenv("ADMIN_API_KEY") == "" {
		return nil, errors.New("ADMIN_API_KEY environment variable is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("AUTH_JWT_SECRET environment variable is required")
	}

	//
	// Database
	//
	isNewDB := false
	if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
		isNewDB = true
		log.Printf("Creating database '%s' (from %s setting)", cfg.DBPath, cfg.DBPathSource)
	} else {
		log.Printf("Opening database '%s' (from %s setting)", cfg.DBPath, cfg.DBPathSource)
	}
	db, err := sqlite.Open(cfg.DBPath, "WAL")
	if err != nil {
		return nil, err
	}

	// Load demo data if requested and database is new
	if cfg.DemoMode && isNewDB {
		if err := demodata.Load(db.DB); err != nil {
			db.Close()
			return nil, errors.New("failed to load demo data: " + err.Error())
		}
		log.Print("Demo data loaded")
		logDemoToken(cfg.JWTSecret)
	}

	//
	// Proof storage, mail and sessions
	//
	store, err := newProofStore(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = mwsvc.ConnectRedis(mwsvc.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			db.Close()
			return nil, err
		}
		mwsvc.SetSessionStore(mwsvc.NewRedisSessionStore(rdb))
		log.Printf("Operator sessions stored in redis at %s", cfg.Redis.Addr)
	}

	//
	// Domain services
	//
	registrationSvc := registration.NewService(db)
	productSvc := product.NewService(db)
	accountSvc := account.NewService(db)
	importSvc := importer.NewService(registrationSvc)

	notifier := notify.NewNotifier(newMailer(cfg), cfg.Mail.OperatorEmail)
	claimSvc := claim.NewService(
		registrationSvc,
		productSvc,
		accountSvc,
		store,
		proof.Policy{MaxBytes: cfg.MaxUploadBytes()},
		notifier,
	)
	maintSvc := maintenance.NewService(registrationSvc, importSvc, productSvc, accountSvc)
	dispatcher := dispatch.New(claimSvc, maintSvc)
	backupSvc := backup.NewService(db, cfg.BackupDir(), cfg.BackupKeep)

	//
	// Handlers
	//
	clientHandler := clienthttp.NewHandler(dispatcher)
	adminSvc := adminhttp.NewService(dispatcher, claimSvc, maintSvc, backupSvc)
	adminHandler := adminhttp.NewHandler(adminSvc)
	webHandler := webhttp.NewHandler(adminSvc)

	//
	// Echo
	//
	e := echo.New()
	e.HideBanner = true

	// Health endpoints
	e.GET("/livez", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	e.GET("/readyz", func(c echo.Context) error {
		if err := db.Ping(); err != nil {
			return c.String(http.StatusServiceUnavailable, "DB not ready")
		}
		return c.String(http.StatusOK, "Ready")
	})

	// Middleware
	e.Use(mwecho.Logger())
	e.Use(mwecho.Recover())
	// multipart overhead on top of the largest proof or import file
	e.Use(mwecho.BodyLimit(strconv.FormatInt(cfg.Proof.MaxUploadMB+1, 10) + "M"))

	// Storefront
	clientGroup := e.Group("/reg")
	if len(cfg.CORSOrigins) > 0 {
		clientGroup.Use(mwecho.CORSWithConfig(mwecho.CORSConfig{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost},
			AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization, "X-CSRF-Token"},
			AllowCredentials: true,
		}))
	}
	clientGroup.Use(mwsvc.UserAuth(cfg.JWTSecret))
	clientGroup.Use(mwsvc.PageInfo())
	clientGroup.Use(mwecho.CSRFWithConfig(mwecho.CSRFConfig{
		TokenLookup:    "header:X-CSRF-Token,form:_csrf",
		CookieName:     "_csrf",
		CookiePath:     "/",
		CookieSecure:   true,
		CookieHTTPOnly: true,
		CookieSameSite: http.SameSiteLaxMode,
	}))
	clientGroup.Use(mwsvc.CSRF())
	limiter := mwsvc.NewIPRateLimiter(rate.Limit(cfg.ValidateRate), cfg.ValidateBurst)
	clienthttp.RegisterRoutes(clientGroup, clientHandler, mwsvc.RateLimit(limiter))

	// Admin API
	adminGroup := e.Group("/api/admin")
	adminGroup.Use(mwsvc.AdminAPIKeyAuth())
	adminhttp.RegisterRoutes(adminGroup, adminHandler)

	// Web UI
	webGroup := e.Group("/web")
	webGroup.Use(mwsvc.WebAuth())
	webGroup.Use(mwsvc.PageInfo())
	webGroup.Use(mwecho.CSRFWithConfig(mwecho.CSRFConfig{
		TokenLookup:    "header:X-CSRF-Token,form:_csrf",
		CookieName:     "_csrf",
		CookiePath:     "/",
		CookieSecure:   true,
		CookieHTTPOnly: true,
		CookieSameSite: http.SameSiteStrictMode,
		Skipper: func(c echo.Context) bool {
			// Skip CSRF for login page (user not authenticated yet)
			return strings.HasPrefix(c.Path(), "/web/login")
		},
	}))
	webGroup.Use(mwsvc.CSRF()) // Copy CSRF token to request context for templates
	webhttp.RegisterRoutes(webGroup, webHandler)

	// Static files (embedded)
	jsFS, _ := fs.Sub(static.Files, "js")
	e.GET("/static/js/*", echo.WrapHandler(http.StripPrefix("/static/js/", http.FileServer(http.FS(jsFS)))))
	cssFS, _ := fs.Sub(static.Files, "css")
	e.GET("/static/css/*", echo.WrapHandler(http.StripPrefix("/static/css/", http.FileServer(http.FS(cssFS)))))

	// Purchase proofs kept on local disk, unless another host serves them
	if ds, ok := store.(*proof.DiskStore); ok && strings.HasPrefix(cfg.Proof.BaseURL, "/") {
		prefix := strings.TrimRight(cfg.Proof.BaseURL, "/") + "/"
		e.GET(prefix+"*", echo.WrapHandler(http.StripPrefix(prefix, http.FileServer(http.Dir(ds.Dir())))))
	}

	//
	// HTTP server
	//
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      e,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &Server{
		Echo:  e,
		HTTP:  srv,
		DB:    db,
		Redis: rdb,
	}, nil
}

func newProofStore(cfg *config.Config) (proof.Store, error) {
	switch cfg.Proof.Backend {
	case "s3":
		s, err := proof.NewS3Store(&proof.S3Config{
			Endpoint:        cfg.S3.Endpoint,
			Region:          cfg.S3.Region,
			Bucket:          cfg.S3.Bucket,
			Prefix:          cfg.S3.Prefix,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			URLExpiry:       cfg.S3.URLExpiry,
		})
		if err != nil {
			return nil, fmt.Errorf("proof storage: %w", err)
		}
		log.Printf("Purchase proofs stored in bucket '%s'", cfg.S3.Bucket)
		return s, nil
	default:
		s, err := proof.NewDiskStore(cfg.Proof.Dir, cfg.Proof.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("proof storage: %w", err)
		}
		log.Printf("Purchase proofs stored in '%s'", cfg.Proof.Dir)
		return s, nil
	}
}

func newMailer(cfg *config.Config) notify.Mailer {
	if cfg.Mail.SMTPHost == "" {
		log.Print("SMTP not configured, notification mails are logged only")
		return notify.LogMailer{}
	}
	return notify.NewSMTPMailer(notify.SMTPConfig{
		Host:     cfg.Mail.SMTPHost,
		Port:     strconv.Itoa(cfg.Mail.SMTPPort),
		Username: cfg.Mail.SMTPUsername,
		Password: cfg.Mail.SMTPPassword,
		From:     cfg.Mail.From,
		FromName: cfg.Mail.FromName,
	})
}

// logDemoToken prints a customer token for the demo account so the storefront
// page can be tried without a shop in front of it.
func logDemoToken(secret string) {
	token, err := mwsvc.IssueUserToken(secret, demodata.CustomerID, 7*24*time.Hour)
	if err != nil {
		log.Printf("demo token: %v", err)
		return
	}
	log.Printf("Demo customer token (user %d): %s", demodata.CustomerID, token)
}
