package logging

import "context"

type debugKey struct{}

// EnableDebugMode marks ctx so that CDebugw calls carrying it are logged whatever the logger's
// level. The tag names who asked for it and defaults to "debug".
func EnableDebugMode(ctx context.Context, tag string) context.Context {
	if tag == "" {
		tag = "debug"
	}
	return context.WithValue(ctx, debugKey{}, tag)
}

// IsDebugMode reports whether ctx was marked by EnableDebugMode.
func IsDebugMode(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	tag, _ := ctx.Value(debugKey{}).(string)
	return tag != ""
}
