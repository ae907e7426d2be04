package app

import (
	"os"
	"runtime/debug"
	"time"
	_ "time/tzdata"

	"github.com/asaskevich/EventBus"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"

	"github.com/bjo163/warungpos/config"
	"github.com/bjo163/warungpos/internal/catalog"
	"github.com/bjo163/warungpos/internal/domain"
	"github.com/bjo163/warungpos/internal/notify"
	"github.com/bjo163/warungpos/internal/payment"
	"github.com/bjo163/warungpos/internal/pos"
	"github.com/bjo163/warungpos/internal/report"
	"github.com/bjo163/warungpos/internal/webserver"
	"github.com/bjo163/warungpos/pkg/metrics"
)

// Application is the container wiring storage, the event bus and the POS
// services together.
type Application struct {
	appConfig     *config.AppConfig
	gormDB        *gorm.DB
	sched         *cron.Cron
	configManager *ConfigManager
	bus           EventBus.Bus

	posManager     *pos.Manager
	catalogService *catalog.Service
	paymentStore   payment.Store
	paymentService *payment.Service
	reportService  *report.Service
	notifyService  *notify.Service
}

// Ensure Application implements all interfaces
var (
	_ DBProvider            = (*Application)(nil)
	_ ConfigProvider        = (*Application)(nil)
	_ SettingsProvider      = (*Application)(nil)
	_ SchedulerProvider     = (*Application)(nil)
	_ ConfigManagerProvider = (*Application)(nil)
	_ webserver.AppContext  = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) DB() *gorm.DB {
	return a.gormDB
}

// OverrideDB replaces the application's database handle (used in tests).
func (a *Application) OverrideDB(db *gorm.DB) {
	a.gormDB = db
}

func (a *Application) Init(cfg *config.AppConfig) {
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	// Initialize zap logger
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	// Build logger with file rotation if enabled
	var logger *zap.Logger
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}

		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	} else {
		logger, err = zapConfig.Build(zap.AddCaller(), zap.AddCallerSkip(1))
		if err != nil {
			panic(err)
		}
	}

	zap.ReplaceGlobals(logger)

	// Initialize metrics with workdir convention
	err = metrics.InitMetrics(cfg.System.Workdir)
	if err != nil {
		zap.S().Warn("Failed to initialize metrics:", err)
	}

	// Initialize database connection
	a.gormDB = getDatabase(cfg.Database)
	zap.S().Info("Database connection successful")

	// Ensure database schema is migrated before loading configs
	if err := a.MigrateDB(false); err != nil {
		zap.S().Errorf("database migration failed: %v", err)
	}

	// seed defaults once the schema is in place, before serving requests
	a.checkSuper()
	a.checkSettings()
	a.checkCatalog()

	// Initialize the configuration manager
	a.configManager = NewConfigManager(a)

	// Wire the POS services over the shared bus
	a.bus = EventBus.New()
	a.posManager = pos.NewManager()
	a.catalogService = catalog.NewService(catalog.NewGormRepository(a.gormDB), a.bus)
	a.paymentStore = payment.NewGormStore(a.gormDB)
	a.paymentService = payment.NewService(payment.Config{
		DelaySource:  cfg.Payment.DelaySource,
		PendingDelay: cfg.Payment.PendingDelay(),
		StoreDelay:   cfg.Payment.StoreDelay(),
		DisplayDelay: cfg.Payment.DisplayDelay(),
	}, a.paymentStore, a.bus)
	a.reportService = report.NewService(a.gormDB)
	a.notifyService, err = notify.NewService(cfg, a.paymentStore, a.bus)
	if err != nil {
		zap.S().Errorf("notify service init failed: %v", err)
	}

	a.initJob()
}

func (a *Application) MigrateDB(track bool) (err error) {
	defer func() {
		if err1 := recover(); err1 != nil {
			if os.Getenv("GO_DEGUB_TRACE") != "" {
				debug.PrintStack()
			}
			err2, ok := err1.(error)
			if ok {
				err = err2
				zap.S().Error(err2.Error())
			}
		}
	}()
	if track {
		if err := a.gormDB.Debug().Migrator().AutoMigrate(domain.Tables...); err != nil {
			zap.S().Error(err)
		}
	} else {
		if err := a.gormDB.Migrator().AutoMigrate(domain.Tables...); err != nil {
			zap.S().Error(err)
		}
	}
	return nil
}

func (a *Application) DropAll() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
}

func (a *Application) InitDb() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
	err := a.gormDB.Migrator().AutoMigrate(domain.Tables...)
	if err != nil {
		zap.S().Error(err)
	}
}

// ConfigMgr returns the configuration manager
func (a *Application) ConfigMgr() *ConfigManager {
	return a.configManager
}

// Scheduler returns the cron scheduler
func (a *Application) Scheduler() *cron.Cron {
	return a.sched
}

// GetSettingsStringValue retrieves a string configuration value
func (a *Application) GetSettingsStringValue(category, key string) string {
	return a.configManager.GetString(category, key)
}

// GetSettingsInt64Value retrieves an int64 configuration value
func (a *Application) GetSettingsInt64Value(category, key string) int64 {
	return a.configManager.GetInt64(category, key)
}

// GetSettingsBoolValue retrieves a boolean configuration value
func (a *Application) GetSettingsBoolValue(category, key string) bool {
	return a.configManager.GetBool(category, key)
}

func (a *Application) Bus() EventBus.Bus {
	return a.bus
}

func (a *Application) PosManager() *pos.Manager {
	return a.posManager
}

func (a *Application) CatalogService() *catalog.Service {
	return a.catalogService
}

func (a *Application) PaymentService() *payment.Service {
	return a.paymentService
}

func (a *Application) PaymentStore() payment.Store {
	return a.paymentStore
}

func (a *Application) ReportService() *report.Service {
	return a.reportService
}

func (a *Application) NotifyService() *notify.Service {
	return a.notifyService
}

// Release releases application resources
func (a *Application) Release() {
	if a.sched != nil {
		a.sched.Stop()
	}

	if a.notifyService != nil {
		a.notifyService.Stop()
	}

	_ = metrics.Close()
	_ = zap.L().Sync()
}
