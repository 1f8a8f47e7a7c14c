//go:build !windows

package control

func supported() error { return nil }
