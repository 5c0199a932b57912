package keyring

import (
	"errors"
	"testing"

	gokeyring "github.com/zalando/go-keyring"
)

func TestSetGetDelete(t *testing.T) {
	gokeyring.MockInit()
	creds := Default()

	want := "postgres://me@localhost:5432/dayprompt?sslmode=disable"
	if err := creds.Set(want); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := creds.Get()
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != want {
		t.Errorf("Get() = %q, want %q", got, want)
	}

	if err := creds.Delete(); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := creds.Get(); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
	if err := creds.Delete(); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestSetRejectsEmpty(t *testing.T) {
	gokeyring.MockInit()
	if err := Default().Set("   "); err == nil {
		t.Error("Set(blank) should fail")
	}
}

func TestUnavailableKeyring(t *testing.T) {
	gokeyring.MockInitWithError(errors.New("no dbus"))
	creds := Default()

	if creds.Available() {
		t.Error("Available() = true with a failing keyring")
	}
	if _, err := creds.Get(); !errors.Is(err, ErrKeyringUnavailable) {
		t.Errorf("Get() error = %v, want ErrKeyringUnavailable", err)
	}
}

func TestAvailable(t *testing.T) {
	gokeyring.MockInit()
	if !Default().Available() {
		t.Error("Available() = false with the mock keyring")
	}
}

func TestRedact(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"postgres://me:secret@db:5432/x", "postgres://***@db:5432/x"},
		{"host=db user=me password=secret dbname=x", "host=db user=me password=*** dbname=x"},
		{"/home/me/.config/dayprompt/dayprompt.db", "/home/me/.config/dayprompt/dayprompt.db"},
	}
	for _, tt := range tests {
		if got := Redact(tt.in); got != tt.want {
			t.Errorf("Redact(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
