package client

import (
	"context"
	"net/http"

	"github.com/prudhivi99/Distributed-Systems/storefront/internal/models"
)

const (
	profilePath       = "/users/profile/"
	notificationsPath = "/users/notifications/"
)

func (c *Client) GetProfile(ctx context.Context) (*models.Profile, error) {
	var p models.Profile
	if err := c.do(ctx, http.MethodGet, profilePath, authRequired, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.Profile, error) {
	var p models.Profile
	if err := c.do(ctx, http.MethodPatch, profilePath, authRequired, upd, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) GetNotificationPreferences(ctx context.Context) (*models.NotificationPreferences, error) {
	var prefs models.NotificationPreferences
	if err := c.do(ctx, http.MethodGet, notificationsPath, authRequired, nil, &prefs); err != nil {
		return nil, err
	}
	return &prefs, nil
}

func (c *Client) UpdateNotificationPreferences(ctx context.Context, upd models.NotificationPreferencesUpdate) (*models.NotificationPreferences, error) {
	var prefs models.NotificationPreferences
	if err := c.do(ctx, http.MethodPatch, notificationsPath, authRequired, upd, &prefs); err != nil {
		return nil, err
	}
	return &prefs, nil
}
