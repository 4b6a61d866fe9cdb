// Package handler implements the REST endpoints.
package handler

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/agorahq/agora/internal/database/types"
	"github.com/bytedance/sonic"
	"github.com/uptrace/bunrouter"
)

const maxBodyBytes = 1 << 20

// decodeBody reads a JSON request body into v.
func decodeBody(req bunrouter.Request, v any) error {
	data, err := io.ReadAll(io.LimitReader(req.Body, maxBodyBytes+1))
	if err != nil {
		return fmt.Errorf("%w: failed to read body: %w", types.ErrInvalidArgument, err)
	}
	if len(data) > maxBodyBytes {
		return fmt.Errorf("%w: body too large", types.ErrInvalidArgument)
	}
	if err := sonic.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: malformed JSON: %w", types.ErrInvalidArgument, err)
	}
	return nil
}

// pathID parses a positive integer route parameter.
func pathID(req bunrouter.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(req.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s", types.ErrInvalidArgument, name)
	}
	return id, nil
}

// queryInt parses an optional integer query parameter.
func queryInt(req bunrouter.Request, name string, fallback int) (int, error) {
	raw := req.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s", types.ErrInvalidArgument, name)
	}
	return value, nil
}

func created(w http.ResponseWriter, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	return bunrouter.JSON(w, v)
}
