package main

import (
	"context"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	"app/internal/infra/filestore"
	infraRepo "app/internal/infra/repository"
	"app/internal/logger"
	"app/internal/notify"
	"app/internal/payments"
	repo "app/internal/repository"
	"app/internal/server"
	"app/internal/usecase"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

type jwtIssuer struct {
	secret    []byte
	accessTTL time.Duration
}

func newJWTIssuer(secret string) *jwtIssuer {
	return &jwtIssuer{
		secret:    []byte(secret),
		accessTTL: 12 * time.Hour,
	}
}

func (i *jwtIssuer) Issue(email string, name string, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.MapClaims{
		"sub":  email,
		"name": name,
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// バックエンド一式。起動時に一度だけ選択する
type repositories struct {
	backend  string
	orders   repo.OrderRepository
	archives repo.ArchiveRepository
	products repo.ProductRepository
	admins   repo.AdminUserRepository
	tx       repo.TransactionManager
}

func buildRepositories(cfg config.Config) (repositories, error) {
	if cfg.UsesRelational() {
		gormDB, err := db.Connect(cfg.PostgresDSN())
		if err != nil {
			return repositories{}, err
		}
		if err := gormDB.AutoMigrate(
			&model.Order{},
			&model.ArchivedOrder{},
			&model.Product{},
			&model.AdminUser{},
		); err != nil {
			return repositories{}, err
		}
		return repositories{
			backend:  "relational",
			orders:   infraRepo.NewOrderGormRepository(gormDB),
			archives: infraRepo.NewArchiveGormRepository(gormDB),
			products: infraRepo.NewProductGormRepository(gormDB),
			admins:   infraRepo.NewAdminUserGormRepository(gormDB),
			tx:       infraRepo.NewTxManagerGorm(gormDB),
		}, nil
	}

	st, err := filestore.New(cfg.DataDir)
	if err != nil {
		return repositories{}, err
	}
	return repositories{
		backend:  "file",
		orders:   filestore.NewOrderRepoFile(st),
		archives: filestore.NewArchiveRepoFile(st),
		products: filestore.NewProductRepoFile(st),
		admins:   filestore.NewAdminUserRepoFile(st),
		tx:       filestore.NewTxManagerFile(st),
	}, nil
}

func main() {
	// .envは無くてもよい
	_ = godotenv.Load()

	cfg := config.Load()

	log, err := logger.Initialize(cfg.LogLevel, cfg.GoEnv)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	repos, err := buildRepositories(cfg)
	if err != nil {
		log.Fatal("storage init failed", zap.Error(err))
	}
	log.Info("storage backend selected", zap.String("backend", repos.backend))

	clock := &realClock{}
	idGen := &uuidGenerator{}

	//決済プロセッサ（未設定ならnilのまま、該当APIは503）
	var processor payments.Processor
	if cfg.StripeSecretKey != "" {
		stripeProc, err := payments.NewStripeProcessor(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
		if err != nil {
			log.Fatal("stripe init failed", zap.Error(err))
		}
		processor = stripeProc
	} else {
		log.Warn("STRIPE_SECRET_KEY not set, payment endpoints disabled")
	}

	//メール通知（未設定ならNop）
	var notifier notify.Notifier = notify.NopNotifier{}
	if cfg.SMTPHost != "" {
		mailer, err := notify.NewMailer(notify.MailerConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
		if err != nil {
			log.Fatal("mailer init failed", zap.Error(err))
		}
		notifier = mailer
	}

	//JWT issuer
	issuer := newJWTIssuer(cfg.JWTSecret)

	//管理者シード
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if _, err := usecase.SeedAdmin(context.Background(), repos.admins, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminName); err != nil {
			log.Fatal("admin seed failed", zap.Error(err))
		}
		log.Info("admin user seeded", zap.String("email", cfg.AdminEmail))
	}

	//Usecase生成
	orderUC := usecase.NewOrderUsecase(repos.orders, notifier, clock, log)
	checkoutUC := usecase.NewCheckoutUsecase(repos.tx, processor, notifier, clock, idGen, log, cfg.BaseURL)
	archiveUC := usecase.NewArchiveUsecase(repos.archives, log)
	productUC := usecase.NewProductUsecase(repos.products)
	paymentUC := usecase.NewPaymentUsecase(repos.orders, processor, log)
	authUC := usecase.NewAuthUsecase(repos.admins, issuer, clock)

	//Handler生成とルート登録
	e := server.New(log)
	handler.NewOrderHandler(orderUC).RegisterRoutes(e, cfg)
	handler.NewProductHandler(productUC).RegisterRoutes(e, cfg)
	handler.NewCheckoutHandler(checkoutUC).RegisterRoutes(e)
	handler.NewPaymentHandler(paymentUC, cfg.StripePublishableKey).RegisterRoutes(e)
	handler.NewAdminArchiveHandler(archiveUC).RegisterRoutes(e, cfg)
	handler.NewAuthHandler(authUC).RegisterRoutes(e)
	handler.NewHealthHandler(repos.backend).RegisterRoutes(e)

	addr := ":" + cfg.Port
	log.Info("server starting", zap.String("addr", addr))
	if err := server.Start(e, addr); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
