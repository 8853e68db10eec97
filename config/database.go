package config

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"
)

func InitDB() (*sql.DB, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

func RunMigrations(db *sql.DB) error {
	migrations := []string{
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			username VARCHAR(255) UNIQUE NOT NULL,
			firstname VARCHAR(255) NOT NULL,
			lastname VARCHAR(255) NOT NULL,
			email VARCHAR(255) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			role VARCHAR(50) NOT NULL DEFAULT 'user',
			currency VARCHAR(10) NOT NULL DEFAULT 'USD',
			avatar TEXT,
			contact VARCHAR(100),
			address TEXT,
			city VARCHAR(100),
			postal_code VARCHAR(20),
			country VARCHAR(100),
			last_login TIMESTAMP,
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS incomes (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			title VARCHAR(50) NOT NULL,
			amount NUMERIC(14,2) NOT NULL CHECK (amount > 0),
			date TIMESTAMP NOT NULL,
			category VARCHAR(100) NOT NULL,
			description VARCHAR(200),
			email VARCHAR(255) NOT NULL,
			currency VARCHAR(10) NOT NULL DEFAULT 'USD',
			tags TEXT[] DEFAULT '{}',
			is_recurring BOOLEAN DEFAULT FALSE,
			recurrence_type VARCHAR(10),
			next_occurrence TIMESTAMP,
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS expenses (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			title VARCHAR(50) NOT NULL,
			amount NUMERIC(14,2) NOT NULL CHECK (amount > 0),
			date TIMESTAMP NOT NULL,
			category VARCHAR(100) NOT NULL,
			description VARCHAR(200),
			email VARCHAR(255) NOT NULL,
			currency VARCHAR(10) NOT NULL DEFAULT 'USD',
			tags TEXT[] DEFAULT '{}',
			is_recurring BOOLEAN DEFAULT FALSE,
			recurrence_type VARCHAR(10),
			next_occurrence TIMESTAMP,
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS budgets (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			email VARCHAR(255) NOT NULL,
			category VARCHAR(100) NOT NULL,
			currency VARCHAR(10) NOT NULL DEFAULT 'USD',
			budget NUMERIC(14,2) NOT NULL CHECK (budget >= 0),
			remaining_budget NUMERIC(14,2) NOT NULL,
			start_date TIMESTAMP NOT NULL,
			end_date TIMESTAMP NOT NULL,
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW(),
			UNIQUE(email, category, start_date, end_date)
		)`,

		`CREATE TABLE IF NOT EXISTS goals (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			email VARCHAR(255) NOT NULL,
			title VARCHAR(100) NOT NULL,
			image TEXT,
			currency VARCHAR(10) NOT NULL DEFAULT 'USD',
			target_value NUMERIC(14,2) NOT NULL,
			saved_value NUMERIC(14,2) NOT NULL DEFAULT 0,
			remaining_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
			description VARCHAR(200),
			is_completed BOOLEAN DEFAULT FALSE,
			completed_at TIMESTAMP,
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS total_savings (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			email VARCHAR(255) UNIQUE NOT NULL,
			currency VARCHAR(10) NOT NULL,
			saved_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS tags (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			name VARCHAR(100) NOT NULL,
			transaction_id UUID NOT NULL,
			transaction_type VARCHAR(10) NOT NULL,
			created_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS currencies (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			value VARCHAR(10) UNIQUE NOT NULL,
			label VARCHAR(100) NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS categories (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			name VARCHAR(100) UNIQUE NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_incomes_email ON incomes(email)`,
		`CREATE INDEX IF NOT EXISTS idx_incomes_recurring ON incomes(is_recurring, next_occurrence)`,
		`CREATE INDEX IF NOT EXISTS idx_expenses_email ON expenses(email)`,
		`CREATE INDEX IF NOT EXISTS idx_expenses_category_date ON expenses(email, category, date)`,
		`CREATE INDEX IF NOT EXISTS idx_expenses_recurring ON expenses(is_recurring, next_occurrence)`,
		`CREATE INDEX IF NOT EXISTS idx_budgets_email_category ON budgets(email, category)`,
		`CREATE INDEX IF NOT EXISTS idx_goals_email ON goals(email)`,
		`CREATE INDEX IF NOT EXISTS idx_tags_transaction_id ON tags(transaction_id)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}

	return nil
}
