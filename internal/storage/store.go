// Package storage holds the device key-value store: string keys, string
// values, whole-value overwrite. It has no schema versioning.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
)

var ErrNotFound = errors.New("storage: key not found")

// Reserved keys.
const (
	KeyLocalCart       = "local_cart"
	KeyServerOrders    = "server_orders"
	KeyStatusOverrides = "order_status_overrides"
	KeyAuthToken       = "auth_token"
	KeyCatalogPrefix   = "catalog:"
)

type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// GetJSON decodes the value under key into dest, which must be a non-nil
// pointer. A missing key returns ErrNotFound. On a decode error dest is
// reset to its zero value, so a half-decoded value never leaks out.
func GetJSON(ctx context.Context, s Store, key string, dest any) error {
	val, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		if rv := reflect.ValueOf(dest); rv.Kind() == reflect.Pointer && !rv.IsNil() {
			rv.Elem().SetZero()
		}
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func SetJSON(ctx context.Context, s Store, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, string(data))
}
