//go:build !amd64 && !arm64

package hostinfo

func features() []string { return nil }
