// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package requestutil provides utilities for extracting data from HTTP requests.

It hides chi's parameter extraction and the JSON/multipart decoding rules used
by the publish routes behind a few helpers with consistent errors.
*/
package requestutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/yomira-publish/internal/platform/apperr"
	"github.com/taibuivan/yomira-publish/internal/platform/ctxutil"
	"github.com/taibuivan/yomira-publish/internal/platform/validate"
)

/*
DecodeJSON reads the request body and decodes it into target.

An empty body leaves target untouched, so optional publish options can be
omitted entirely.

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target any) error {
	if request.Body == nil {
		return nil
	}
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
IntParam retrieves a named URL parameter and parses it as a positive integer.
*/
func IntParam(request *http.Request, name string) (int, error) {
	raw := chi.URLParam(request, name)
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return 0, validate.RequiredError(name, "Must be a positive integer")
	}
	return value, nil
}

/*
File reads one multipart file field into memory, refusing bodies over maxBytes.

Returns:
  - []byte: file contents
  - string: client filename
  - string: declared Content-Type of the part
  - error: validation or payload-size errors
*/
func File(writer http.ResponseWriter, request *http.Request, field string, maxBytes int64) ([]byte, string, string, error) {

	// Leave headroom for multipart boundaries and other fields.
	request.Body = http.MaxBytesReader(writer, request.Body, maxBytes+1<<20)

	file, header, err := request.FormFile(field)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, "", "", apperr.PayloadTooLarge(fmt.Sprintf("Upload exceeds %d bytes", maxBytes))
		}
		return nil, "", "", validate.RequiredError(field, "A file upload is required")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return nil, "", "", apperr.Internal(err)
	}

	return data, header.Filename, header.Header.Get("Content-Type"), nil
}

/*
RequiredUserID returns the User ID of the currently authenticated caller.
*/
func RequiredUserID(request *http.Request) (string, error) {
	claims := ctxutil.GetAuthUser(request.Context())
	if claims == nil {
		return "", apperr.Unauthorized("Authentication required")
	}
	return claims.UserID, nil
}
