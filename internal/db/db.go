package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/rajivgeraev/skillswap-api/internal/config"
)

// Pool представляет пул соединений с базой данных
var Pool *pgxpool.Pool

const schemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
    collection TEXT NOT NULL,
    id TEXT NOT NULL,
    data JSONB NOT NULL DEFAULT '{}'::jsonb,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS documents_data_idx ON documents USING GIN (data jsonb_path_ops);
`

// InitDB инициализирует соединение с базой данных
func InitDB(cfg *config.Config, log *logrus.Entry) error {
	var err error

	log.WithFields(logrus.Fields{
		"host":     cfg.DatabaseConfig.Host,
		"database": cfg.DatabaseConfig.Name,
	}).Info("Подключение к базе данных")

	// Создаем контекст с таймаутом для подключения
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Настраиваем конфигурацию пула соединений
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("ошибка при разборе URL базы данных: %w", err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2

	Pool, err = pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return fmt.Errorf("ошибка при создании пула соединений: %w", err)
	}

	if err = Pool.Ping(ctx); err != nil {
		return fmt.Errorf("ошибка при проверке соединения: %w", err)
	}

	if _, err = Pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ошибка при создании схемы: %w", err)
	}

	log.Info("✅ Успешное подключение к базе данных")
	return nil
}

// CloseDB закрывает соединение с базой данных
func CloseDB() {
	if Pool != nil {
		Pool.Close()
	}
}

// GetContext возвращает контекст с таймаутом для запросов к базе данных
func GetContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}
