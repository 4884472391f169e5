package main

import (
	"log"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"royalgate-platform/internal/config"
	"royalgate-platform/internal/httpapi"
	"royalgate-platform/internal/logger"
	"royalgate-platform/internal/server"
	"royalgate-platform/pkg/db"
	"royalgate-platform/pkg/gen"
	"royalgate-platform/pkg/health"
	"royalgate-platform/services/ledger"
	"royalgate-platform/services/media"
	"royalgate-platform/services/member"
	"royalgate-platform/services/mining"
	"royalgate-platform/services/quiz"
	"royalgate-platform/services/quota"
	"royalgate-platform/services/settings"
	"royalgate-platform/services/withdrawal"
)

func main() {
	opts := []fx.Option{
		config.Module,
		logger.Module,
		db.Module,
		gen.Module,

		ledger.Module,
		member.Module,
		quota.Module,
		mining.Module,
		media.Module,
		quiz.Module,
		settings.Module,
		withdrawal.Module,

		health.Module,
		httpapi.Module,
		server.Module,

		fx.Invoke(migrate),
		fxLogger,
	}

	if err := fx.ValidateApp(opts...); err != nil {
		log.Fatalf("fx validation failed: %v", err)
	}

	app := fx.New(opts...)

	app.Run()
}

var fxLogger = fx.WithLogger(func(cfg *config.Config, logger *zap.Logger) fxevent.Logger {
	return fxevent.NopLogger
})

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&member.Member{},
		&member.Referral{},
		&ledger.Transaction{},
		&ledger.Balance{},
		&media.PlaybackSession{},
		&quiz.Question{},
		&settings.Settings{},
		&settings.Song{},
		&withdrawal.Request{},
	)
}
