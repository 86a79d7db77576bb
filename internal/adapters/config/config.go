package config

import (
	"fmt"
	"log"
	"os"
	"time"

	postgresStorage "github.com/ggorockee/reviewmaps-alerts/internal/adapters/database/postgres"
	redisStorage "github.com/ggorockee/reviewmaps-alerts/internal/adapters/database/redis"
	"github.com/ggorockee/reviewmaps-alerts/pkg/logger"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

type Config struct {
	Database *gorm.DB
	Redis    *redisStorage.Client
	Location *time.Location
}

func initConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		panic(err)
	}

	viper.SetDefault("settings.timezone", "Asia/Seoul")
	viper.SetDefault("alerts.cron.activity", "0 9 * * *")
	viper.SetDefault("alerts.cron.keyword-update", "*/10 * * * *")
	viper.SetDefault("alerts.cron.keyword-dispatch", "5-59/10 * * * *")
	viper.SetDefault("alerts.keyword.high", 100)
	viper.SetDefault("alerts.keyword.low", 10)
}

func Get() *Config {
	initConfig()

	location, err := time.LoadLocation(viper.GetString("settings.timezone"))
	if err != nil {
		panic(err)
	}

	err = logger.Init(logger.Config{
		Debug:        viper.GetBool("settings.debug"),
		TimeLocation: location,
		LogToFile:    viper.GetBool("settings.log-to-file"),
		LogsDir:      viper.GetString("settings.logs-dir"),
	})
	if err != nil {
		panic(err)
	}

	// TranslateError turns the dedup index violation into
	// gorm.ErrDuplicatedKey, which the alert storage relies on.
	gormConfig := &gorm.Config{TranslateError: true}
	if viper.GetBool("settings.debug") {
		gormConfig.Logger = gormLogger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			gormLogger.Config{
				SlowThreshold: time.Second,
				LogLevel:      gormLogger.Info,
				Colorful:      true,
			},
		)
	}

	dsn := fmt.Sprintf("user=%s password=%s dbname=%s host=%s port=%d sslmode=disable TimeZone=%s",
		viper.GetString("service.database.user"),
		viper.GetString("service.database.password"),
		viper.GetString("service.database.name"),
		viper.GetString("service.database.host"),
		viper.GetInt("service.database.port"),
		viper.GetString("settings.timezone"),
	)

	database, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		logger.Log.Panicf("Failed to connect to the database: %v", err)
	} else {
		logger.Log.Info("Successfully connected to the database")
	}

	errMigrate := database.AutoMigrate(postgresStorage.Migrations...)
	if errMigrate != nil {
		logger.Log.Panicf("Failed to migrate database: %v", errMigrate)
	}

	redisDB, err := redisStorage.New(redisStorage.Options{
		Host:     viper.GetString("service.redis.host"),
		Port:     viper.GetString("service.redis.port"),
		Password: viper.GetString("service.redis.password"),
	})
	if err != nil {
		logger.Log.Panicf("Failed to connect to redis: %v", err)
	} else {
		logger.Log.Info("Successfully connected to redis")
	}

	return &Config{
		Database: database,
		Redis:    redisDB,
		Location: location,
	}
}
