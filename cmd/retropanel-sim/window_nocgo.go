//go:build !cgo

package main

import "errors"

func runWindow(s *sim, scale int) error {
	return errors.New("built without cgo, no window support; use -headless")
}
