package focusmode

import (
	"context"
	"errors"
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/ayoisaiah/focusguard/blocking"
)

const (
	notificationsName = "org.freedesktop.Notifications"
	notificationsPath = dbus.ObjectPath("/org/freedesktop/Notifications")

	methodInhibit   = notificationsName + ".Inhibit"
	methodUnInhibit = notificationsName + ".UnInhibit"
	methodHasOwner  = "org.freedesktop.DBus.NameHasOwner"

	errAccessDenied = "org.freedesktop.DBus.Error.AccessDenied"
)

// SessionBus inhibits notifications through the desktop notification service
// on the D-Bus session bus.
type SessionBus struct {
	conn    *dbus.Conn
	appName string
	mu      sync.Mutex
}

// NewSessionBus returns an inhibitor that identifies itself as appName. The
// bus connection is established on first use.
func NewSessionBus(appName string) *SessionBus {
	return &SessionBus{appName: appName}
}

func (b *SessionBus) connect() (*dbus.Conn, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.conn != nil && b.conn.Connected() {
		return b.conn, nil
	}

	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, err
	}

	b.conn = conn

	return conn, nil
}

// Available reports whether the notification service owns its bus name.
func (b *SessionBus) Available(ctx context.Context) bool {
	conn, err := b.connect()
	if err != nil {
		return false
	}

	var owned bool

	err = conn.BusObject().
		CallWithContext(ctx, methodHasOwner, 0, notificationsName).
		Store(&owned)

	return err == nil && owned
}

func (b *SessionBus) Inhibit(
	ctx context.Context,
	reason string,
	hints map[string]any,
) (uint32, error) {
	conn, err := b.connect()
	if err != nil {
		return 0, err
	}

	variants := make(map[string]dbus.Variant, len(hints))
	for k, v := range hints {
		variants[k] = dbus.MakeVariant(v)
	}

	var cookie uint32

	err = conn.Object(notificationsName, notificationsPath).
		CallWithContext(ctx, methodInhibit, 0, b.appName, reason, variants).
		Store(&cookie)
	if err != nil {
		return 0, mapError(err)
	}

	return cookie, nil
}

func (b *SessionBus) UnInhibit(ctx context.Context, cookie uint32) error {
	conn, err := b.connect()
	if err != nil {
		return err
	}

	call := conn.Object(notificationsName, notificationsPath).
		CallWithContext(ctx, methodUnInhibit, 0, cookie)

	return mapError(call.Err)
}

// Close releases the bus connection.
func (b *SessionBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.conn == nil {
		return nil
	}

	err := b.conn.Close()
	b.conn = nil

	return err
}

func mapError(err error) error {
	if err == nil {
		return nil
	}

	var dbusErr dbus.Error
	if errors.As(err, &dbusErr) && dbusErr.Name == errAccessDenied {
		return blocking.ErrAuthorizationDenied.Fmt(blocking.FocusMode).Wrap(err)
	}

	return err
}
