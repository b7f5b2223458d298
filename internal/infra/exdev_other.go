//go:build !unix && !windows

package infra

func isEXDEV(err error) bool { return false }
