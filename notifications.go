package swclient

import (
	"context"
	"net/http"
	"strconv"
)

// Notification is one entry of the user's notification feed.
type Notification struct {
	ID        int64  `json:"id"`
	Type      string `json:"type,omitempty"`
	Title     string `json:"title"`
	Message   string `json:"message,omitempty"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"created_at,omitempty"`
}

// NotificationsService reads and acknowledges notifications.
type NotificationsService struct {
	client *Client
}

func notificationPath(id int64) string {
	return apiPrefix + "/notifications/" + strconv.FormatInt(id, 10)
}

// List returns the Session user's notifications.
func (s *NotificationsService) List(ctx context.Context) ([]Notification, error) {
	return getJSON[[]Notification](ctx, s.client, apiPrefix+"/notifications")
}

// MarkRead flags one notification as read.
func (s *NotificationsService) MarkRead(ctx context.Context, id int64) error {
	_, err := s.client.Request(ctx, http.MethodPatch, notificationPath(id)+"/read", nil)
	return err
}

// Delete removes a notification.
func (s *NotificationsService) Delete(ctx context.Context, id int64) error {
	_, err := s.client.Delete(ctx, notificationPath(id))
	return err
}
