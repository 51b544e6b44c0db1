// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
PostgreSQL implementation of the comic document store.

Comics and pages live in the 'publish' schema. Nested values (image assets,
panels, on-chain references) are stored as JSONB so a page or comic is read
and written in a single round-trip, which keeps every call atomic on its own.
*/
package comic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/yomira-publish/internal/platform/apperr"
	"github.com/taibuivan/yomira-publish/internal/platform/database/schema"
	"github.com/taibuivan/yomira-publish/internal/platform/dberr"
)

// # PostgreSQL Repository

// postgresRepository implements the [Repository] interface using pgx.
type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed comic store.
func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

// setBuilder accumulates "column = $n" fragments for partial updates.
type setBuilder struct {
	clauses []string
	args    []any
}

func (builder *setBuilder) set(column string, value any) {
	builder.args = append(builder.args, value)
	builder.clauses = append(builder.clauses, fmt.Sprintf("%s = $%d", column, len(builder.args)))
}

func (builder *setBuilder) raw(clause string) {
	builder.clauses = append(builder.clauses, clause)
}

// # Comic Queries

/*
FindComicByID returns the comic with the given ID.

Parameters:
  - context: context.Context
  - id: string (UUID)

Returns:
  - *Comic: The hydrated entity, with OnChain decoded from JSONB
  - error: NOT_FOUND when no row matches
*/
func (repository *postgresRepository) FindComicByID(context context.Context, id string) (*Comic, error) {
	table := schema.PublishComic
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		strings.Join(table.Columns(), ", "), table.Table, table.ID)

	comic := &Comic{}
	var (
		genres          []string
		coverCID        *string
		coverGatewayURL *string
		onChainJSON     []byte
	)

	err := repository.pool.QueryRow(context, query, id).Scan(
		&comic.ID,
		&comic.Slug,
		&comic.Title,
		&comic.Description,
		&genres,
		&comic.Visibility,
		&comic.Status,
		&coverCID,
		&coverGatewayURL,
		&comic.TotalPages,
		&onChainJSON,
		&comic.CreatorID,
		&comic.PublishedAt,
		&comic.CreatedAt,
		&comic.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "Comic")
	}

	comic.Genres = make([]Genre, len(genres))
	for i, genre := range genres {
		comic.Genres[i] = Genre(genre)
	}

	if coverCID != nil && *coverCID != "" {
		comic.Cover = &CoverImage{CID: *coverCID}
		if coverGatewayURL != nil {
			comic.Cover.GatewayURL = *coverGatewayURL
		}
	}

	if len(onChainJSON) > 0 {
		comic.OnChain = &OnChainData{}
		if err := json.Unmarshal(onChainJSON, comic.OnChain); err != nil {
			return nil, fmt.Errorf("postgres: failed to unmarshal on-chain data: %w", err)
		}
	}

	return comic, nil
}

/*
UpdateComic applies a partial update to a comic.

Only the fields the publish pipeline owns can be patched: status, publish
time and on-chain reference. The table's CHECK constraints reject a
published status without a publish time.
*/
func (repository *postgresRepository) UpdateComic(context context.Context, id string, patch ComicPatch) error {
	if patch.IsEmpty() {
		return nil
	}

	table := schema.PublishComic
	builder := &setBuilder{}
	builder.raw(fmt.Sprintf("%s = NOW()", table.UpdatedAt))

	if patch.Status != nil {
		if !patch.Status.IsValid() {
			return apperr.ValidationError("Validation failed", apperr.FieldError{Field: "status", Message: "Unknown status"})
		}
		builder.set(table.Status, string(*patch.Status))
	}

	if patch.ClearPublishedAt {
		builder.raw(fmt.Sprintf("%s = NULL", table.PublishedAt))
	} else if patch.PublishedAt != nil {
		builder.set(table.PublishedAt, *patch.PublishedAt)
	}

	if patch.OnChain != nil {
		payload, err := json.Marshal(patch.OnChain)
		if err != nil {
			return fmt.Errorf("postgres: failed to marshal on-chain data: %w", err)
		}
		builder.set(table.OnChain, payload)
	}

	builder.args = append(builder.args, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d",
		table.Table, strings.Join(builder.clauses, ", "), table.ID, len(builder.args))

	response, err := repository.pool.Exec(context, query, builder.args...)
	if err != nil {
		return dberr.Wrap(err, "Comic")
	}

	if response.RowsAffected() == 0 {
		return apperr.NotFound("Comic")
	}

	return nil
}

// # Page Queries

/*
FindPagesByComicID returns a comic's pages ordered by page number.

Parameters:
  - context: context.Context
  - comicID: string (UUID)
  - filter: PageFilter (OnlyUnpinned skips confirmed pages)

Returns:
  - []*ComicPage: Ordered pages; empty when the comic has none
  - error: Storage or decoding failures
*/
func (repository *postgresRepository) FindPagesByComicID(context context.Context, comicID string, filter PageFilter) ([]*ComicPage, error) {
	table := schema.PublishPage

	var queryBuilder strings.Builder
	queryBuilder.WriteString(fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		strings.Join(table.Columns(), ", "), table.Table, table.ComicID))

	if filter.OnlyUnpinned {
		queryBuilder.WriteString(fmt.Sprintf(" AND NOT %s", table.IsPinned))
	}
	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY %s ASC", table.PageNumber))

	rows, err := repository.pool.Query(context, queryBuilder.String(), comicID)
	if err != nil {
		return nil, dberr.Wrap(err, "Comic page")
	}
	defer rows.Close()

	pages := make([]*ComicPage, 0)
	for rows.Next() {
		page, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "Comic page")
	}

	return pages, nil
}

func scanPage(row pgx.Row) (*ComicPage, error) {
	page := &ComicPage{}
	var imageJSON, panelsJSON []byte

	err := row.Scan(
		&page.ID,
		&page.ComicID,
		&page.PageNumber,
		&imageJSON,
		&page.AltText,
		&page.Transcript,
		&page.Captions,
		&page.IsPinned,
		&page.PinnedAt,
		&panelsJSON,
		&page.CreatedAt,
		&page.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "Comic page")
	}

	if len(imageJSON) > 0 {
		if err := json.Unmarshal(imageJSON, &page.Image); err != nil {
			return nil, fmt.Errorf("postgres: failed to unmarshal page %s image: %w", page.ID, err)
		}
	}

	if len(panelsJSON) > 0 {
		if err := json.Unmarshal(panelsJSON, &page.Panels); err != nil {
			return nil, fmt.Errorf("postgres: failed to unmarshal page %s panels: %w", page.ID, err)
		}
	}

	return page, nil
}

/*
UpdatePage applies a partial update to one page.

Panels are validated before any SQL runs so duplicate order values never
reach the table.
*/
func (repository *postgresRepository) UpdatePage(context context.Context, id string, patch PagePatch) error {
	if patch.IsEmpty() {
		return nil
	}

	table := schema.PublishPage
	builder := &setBuilder{}
	builder.raw(fmt.Sprintf("%s = NOW()", table.UpdatedAt))

	if patch.Image != nil {
		payload, err := json.Marshal(patch.Image)
		if err != nil {
			return fmt.Errorf("postgres: failed to marshal page image: %w", err)
		}
		builder.set(table.Image, payload)
	}

	if patch.IsPinned != nil {
		builder.set(table.IsPinned, *patch.IsPinned)
	}

	if patch.PinnedAt != nil {
		builder.set(table.PinnedAt, *patch.PinnedAt)
	}

	if patch.Panels != nil {
		if err := ValidatePanels(patch.Panels); err != nil {
			return apperr.ValidationError("Validation failed", apperr.FieldError{Field: "panels", Message: err.Error()})
		}
		payload, err := json.Marshal(patch.Panels)
		if err != nil {
			return fmt.Errorf("postgres: failed to marshal panels: %w", err)
		}
		builder.set(table.Panels, payload)
	}

	builder.args = append(builder.args, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d",
		table.Table, strings.Join(builder.clauses, ", "), table.ID, len(builder.args))

	response, err := repository.pool.Exec(context, query, builder.args...)
	if err != nil {
		return dberr.Wrap(err, "Comic page")
	}

	if response.RowsAffected() == 0 {
		return apperr.NotFound("Comic page")
	}

	return nil
}

// CountPagesByComicID returns how many pages a comic has.
func (repository *postgresRepository) CountPagesByComicID(context context.Context, comicID string) (int, error) {
	table := schema.PublishPage
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1`, table.Table, table.ComicID)

	var count int
	if err := repository.pool.QueryRow(context, query, comicID).Scan(&count); err != nil {
		return 0, dberr.Wrap(err, "Comic page")
	}
	return count, nil
}
