package services_test

import (
	"errors"
	"testing"

	"watchflip/internal/services"
)

func TestOperatorAuth(t *testing.T) {
	if _, err := services.HashPassword("short"); !errors.Is(err, services.ErrWeakPassword) {
		t.Fatalf("want ErrWeakPassword, got %v", err)
	}
	hash, err := services.HashPassword("Flip-W4tches!")
	if err != nil {
		t.Fatal(err)
	}
	auth := services.NewAuthService("", hash)
	if auth.Open() {
		t.Fatal("configured hash should close the gate")
	}
	if err := auth.Check("operator", "Flip-W4tches!"); err != nil {
		t.Fatalf("valid creds rejected: %v", err)
	}
	if err := auth.Check("operator", "wrong"); !errors.Is(err, services.ErrBadCreds) {
		t.Fatalf("want ErrBadCreds, got %v", err)
	}
	if err := auth.Check("admin", "Flip-W4tches!"); !errors.Is(err, services.ErrBadCreds) {
		t.Fatalf("want ErrBadCreds for wrong user, got %v", err)
	}
	if !services.NewAuthService("", "").Open() {
		t.Fatal("no hash means open")
	}
}
