// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package publish

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/yomira-publish/internal/asset"
	"github.com/taibuivan/yomira-publish/internal/contentstore"
	"github.com/taibuivan/yomira-publish/internal/core/comic"
	"github.com/taibuivan/yomira-publish/internal/platform/apperr"
	"github.com/taibuivan/yomira-publish/internal/platform/constants"
	"github.com/taibuivan/yomira-publish/internal/platform/ctxutil"
	"github.com/taibuivan/yomira-publish/internal/platform/middleware"
	requestutil "github.com/taibuivan/yomira-publish/internal/platform/request"
	"github.com/taibuivan/yomira-publish/internal/platform/respond"
	"github.com/taibuivan/yomira-publish/internal/platform/sec"
	"github.com/taibuivan/yomira-publish/internal/platform/validate"
)

// # Handler Implementation

// PageAttacher pins a new image for an existing page.
type PageAttacher interface {
	AttachPageImage(ctx context.Context, comicID string, pageNumber int, data []byte, filename, mimeType string) (*comic.ComicPage, error)
}

// Handler exposes the publish pipeline over HTTP.
type Handler struct {
	orchestrator *Orchestrator
	attacher     PageAttacher
	gateways     contentstore.Gateways
}

// NewHandler constructs a [Handler].
func NewHandler(orchestrator *Orchestrator, attacher PageAttacher, gateways contentstore.Gateways) *Handler {
	return &Handler{orchestrator: orchestrator, attacher: attacher, gateways: gateways}
}

// Routes returns a [chi.Router] with the publish endpoints.
//
// # Routing Strategy
//
//   - Public: gateway resolution.
//   - Restricted: everything touching a comic requires [sec.RoleAuthor].
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/gateways/{cid}", handler.resolveGateways)

	router.Group(func(author chi.Router) {
		author.Use(middleware.RequireRole(sec.RoleAuthor))

		author.Get("/comics/{comicID}/preflight", handler.preflight)
		author.Post("/comics/{comicID}/publish", handler.publish)
		author.Post("/comics/{comicID}/unpublish", handler.unpublish)
		author.Put("/comics/{comicID}/pages/{pageNumber}/image", handler.attachPageImage)
	})

	return router
}

// # Request Payloads

// publishRequest is the optional body of a publish call.
type publishRequest struct {
	Mint            bool   `json:"mint"`
	Network         string `json:"network"`
	OwnerAddress    string `json:"owner_address"`
	ContractAddress string `json:"contract_address"`
}

// # Endpoints

/*
GET /api/v1/comics/{comicID}/preflight.

Response:
  - 200: PreflightReport
  - 400: Invalid comic id
*/
func (handler *Handler) preflight(writer http.ResponseWriter, request *http.Request) {
	comicID := requestutil.Param(request, "comicID")
	if err := new(validate.Validator).UUID("comicID", comicID).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	report, err := handler.orchestrator.Preflight(request.Context(), comicID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, report)
}

/*
POST /api/v1/comics/{comicID}/publish.

Description: Runs the publish saga. The body is optional; an empty body
publishes without minting.

Request (Body):
  - publishRequest: JSON object

Response:
  - 200: Result: The run completed (errors may list non-fatal failures)
  - 422: Result: The run failed; steps show where
  - 409: Another run holds the comic
*/
func (handler *Handler) publish(writer http.ResponseWriter, request *http.Request) {
	comicID := requestutil.Param(request, "comicID")

	var input publishRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err := new(validate.Validator).
		UUID("comicID", comicID).
		MaxLen("network", input.Network, 64).
		Address("owner_address", input.OwnerAddress).
		Address("contract_address", input.ContractAddress).
		Err()
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	actorID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	ctxutil.GetLogger(request.Context()).InfoContext(request.Context(), "publish_requested",
		slog.String("comic_id", comicID),
		slog.String("actor_id", actorID),
		slog.Bool("mint", input.Mint),
	)

	ctx, cancel := context.WithTimeout(request.Context(), constants.PublishRequestTimeout)
	defer cancel()

	result, err := handler.orchestrator.Publish(ctx, comicID, Options{
		Mint:            input.Mint,
		Network:         strings.TrimSpace(input.Network),
		OwnerAddress:    input.OwnerAddress,
		ContractAddress: input.ContractAddress,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if !result.Succeeded() {
		respond.Status(writer, http.StatusUnprocessableEntity, result)
		return
	}
	respond.OK(writer, result)
}

/*
POST /api/v1/comics/{comicID}/unpublish.

Response:
  - 200: Comic: The comic, back in draft
  - 404: Comic not found
*/
func (handler *Handler) unpublish(writer http.ResponseWriter, request *http.Request) {
	comicID := requestutil.Param(request, "comicID")
	if err := new(validate.Validator).UUID("comicID", comicID).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	actorID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	ctxutil.GetLogger(request.Context()).InfoContext(request.Context(), "unpublish_requested",
		slog.String("comic_id", comicID),
		slog.String("actor_id", actorID),
	)

	updated, err := handler.orchestrator.Unpublish(request.Context(), comicID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, updated)
}

/*
PUT /api/v1/comics/{comicID}/pages/{pageNumber}/image.

Request (multipart):
  - file: The page image (JPEG, PNG, WEBP or GIF, at most 20 MiB)

Response:
  - 200: ComicPage: The page with its pinned asset
  - 413: Upload too large
  - 422: Asset rejected
  - 502: Content store failure
*/
func (handler *Handler) attachPageImage(writer http.ResponseWriter, request *http.Request) {
	comicID := requestutil.Param(request, "comicID")
	if err := new(validate.Validator).UUID("comicID", comicID).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}
	pageNumber, err := requestutil.IntParam(request, "pageNumber")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	data, filename, mimeType, err := requestutil.File(writer, request, "file", asset.MaxAssetBytes)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}
	if err := asset.Validate(data, mimeType).Err(); err != nil {
		respond.Error(writer, request, assetHTTPError(err))
		return
	}

	page, err := handler.attacher.AttachPageImage(request.Context(), comicID, pageNumber, data, filename, mimeType)
	if err != nil {
		respond.Error(writer, request, assetHTTPError(err))
		return
	}
	respond.OK(writer, page)
}

/*
GET /api/v1/gateways/{cid}.

Response:
  - 200: The CID's URL on every configured mirror
*/
func (handler *Handler) resolveGateways(writer http.ResponseWriter, request *http.Request) {
	cid := requestutil.Param(request, "cid")
	if err := new(validate.Validator).CID("cid", cid).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{
		"cid":      cid,
		"ipfs_uri": contentstore.IPFSURI(cid),
		"urls":     handler.gateways.ResolveAll(cid),
	})
}

// assetHTTPError maps pinning failures to client-facing errors.
func assetHTTPError(err error) error {
	var assetErr *asset.AssetError
	if !errors.As(err, &assetErr) {
		return err
	}
	if assetErr.Op == "validate" {
		return apperr.Unprocessable(assetErr.Err.Error()).WithCause(err)
	}
	if contentstore.IsTimeout(err) {
		return apperr.GatewayTimeout("Content store", err)
	}
	return apperr.BadGateway("Content store", err)
}
