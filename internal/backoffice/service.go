// Package backoffice implements the back-office resource views on top of the gateway
// client. Every endpoint has exactly one adapter that turns its envelope into typed values.
package backoffice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"castella/internal/logging"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidInput = errors.New("invalid input")
)

// API is the subset of the gateway client the views use.
type API interface {
	Get(ctx context.Context, path string) (json.RawMessage, error)
	Post(ctx context.Context, path string, body any) (json.RawMessage, error)
	Put(ctx context.Context, path string, body any) (json.RawMessage, error)
	Delete(ctx context.Context, path string) (json.RawMessage, error)
}

// Service groups the resource views. It holds no view state; every call fetches.
type Service struct {
	api API
	log *zap.Logger
}

func NewService(api API, log *zap.Logger) *Service {
	return &Service{api: api, log: logging.OrNop(log)}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func requireID(kind, id string) error {
	if strings.TrimSpace(id) == "" {
		return invalid("%s id is required", kind)
	}
	return nil
}

// pageNumber turns an optional 1-based page into the value the backend expects.
func pageNumber(page int) string {
	if page < 1 {
		page = 1
	}
	return strconv.Itoa(page)
}

func seg(value string) string {
	return url.PathEscape(strings.TrimSpace(value))
}
