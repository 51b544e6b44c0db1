// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/yomira-publish/internal/platform/apperr"
)

// SQLSTATE codes the repositories care about.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
)

/*
Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].

It hides internal database details from the client while classifying the
error type. resource names the entity in not-found and conflict messages.
*/
func Wrap(err error, resource string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(resource).WithCause(err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return apperr.Conflict(resource + " already exists").WithCause(err)
		case codeForeignKeyViolation, codeCheckViolation:
			return apperr.Unprocessable(resource + " violates a data constraint").WithCause(err)
		}
	}

	return apperr.Internal(err)
}
