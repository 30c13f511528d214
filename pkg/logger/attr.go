package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// TenantID records the tenant identifier under the key "tenant_id".
func TenantID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("tenant_id", id)
}

// UserID records the user identifier under the key "user_id".
func UserID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("user_id", id)
}

// EventID records the event identifier under the key "event_id".
func EventID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("event_id", id)
}

// RegistrationID records the registration identifier under the key "registration_id".
func RegistrationID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("registration_id", id)
}
