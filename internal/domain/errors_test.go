package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrOrderUpdateNotSupported_Message(t *testing.T) {
	if got := ErrOrderUpdateNotSupported.Error(); got != "Order can't be updated" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestIsOperationNotSupported(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "update rejection",
			err:  ErrOrderUpdateNotSupported,
			want: true,
		},
		{
			name: "wrapped update rejection",
			err:  fmt.Errorf("amend order: %w", ErrOrderUpdateNotSupported),
			want: true,
		},
		{
			name: "class sentinel",
			err:  ErrOperationNotSupported,
			want: true,
		},
		{
			name: "other error",
			err:  ErrOrderNotFound,
			want: false,
		},
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsOperationNotSupported(tt.err); got != tt.want {
				t.Errorf("IsOperationNotSupported() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "not found",
			err:  ErrOrderNotFound,
			want: true,
		},
		{
			name: "joined not found",
			err:  errors.Join(ErrOrderNotFound, errors.New("additional context")),
			want: true,
		},
		{
			name: "unsupported",
			err:  ErrOrderUpdateNotSupported,
			want: false,
		},
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFound(tt.err); got != tt.want {
				t.Errorf("IsNotFound() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUnsupportedOperationError_As(t *testing.T) {
	var target *UnsupportedOperationError
	if !errors.As(fmt.Errorf("wrap: %w", ErrOrderUpdateNotSupported), &target) {
		t.Fatal("expected errors.As to find UnsupportedOperationError")
	}
	if target.Operation != "update" {
		t.Fatalf("unexpected operation: %s", target.Operation)
	}
}
