package database

import (
	"github.com/amoylab/nextcrm/internal/common/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func postgresDialector(cfg *config.DatabaseConfig) gorm.Dialector {
	return postgres.Open(cfg.GetDSN())
}
