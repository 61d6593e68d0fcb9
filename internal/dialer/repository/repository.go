// Package repository provides pgx-backed data access for the dialer
// bounded context: leads, call history, the caller-ID number pool, and
// daily call stats.
package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound        = errors.New("lead not found")
	ErrNumberNotFound  = errors.New("pool number not found")
	ErrDuplicateNumber = errors.New("phone number already in pool")
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}
