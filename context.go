package goJWT

import "context"

type clientIPContextKey struct{}
type requestIDContextKey struct{}

// WithClientIP attaches the caller's IP address to ctx. Audit events for
// operations run with ctx carry it as the "client_ip" metadata entry.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

// WithRequestID attaches a host request identifier to ctx. Audit events carry it
// as the "request_id" metadata entry so a host can join them with its own logs.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey{}, id)
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	id, _ := ctx.Value(requestIDContextKey{}).(string)
	return id
}

// auditMetadata collects the context values audit events carry. It returns nil
// when none are set.
func auditMetadata(ctx context.Context) map[string]string {
	var md map[string]string
	set := func(k, v string) {
		if v == "" {
			return
		}
		if md == nil {
			md = make(map[string]string, 2)
		}
		md[k] = v
	}
	set("client_ip", clientIPFromContext(ctx))
	set("request_id", requestIDFromContext(ctx))
	return md
}
