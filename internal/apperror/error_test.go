package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNew_DefaultStatusCodes(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeNodeUnreachable, http.StatusServiceUnavailable},
		{CodeInvalidNodeURL, http.StatusBadRequest},
		{CodeChainNotFound, http.StatusNotFound},
		{CodeFallbackUnavailable, http.StatusServiceUnavailable},
		{CodeCircuitOpen, http.StatusServiceUnavailable},
		{CodeRateLimited, http.StatusTooManyRequests},
		{CodeConfigPersistFailed, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := New(tt.code).StatusCode; got != tt.want {
				t.Errorf("status = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestWrap_PreservesCodeAndCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Wrap(cause, CodeNodeUnreachable, "eth_chainId")

	if !errors.Is(err, cause) {
		t.Error("expected wrapped cause to be reachable with errors.Is")
	}
	if GetCode(fmt.Errorf("cycle: %w", err)) != CodeNodeUnreachable {
		t.Errorf("expected code to survive fmt wrapping")
	}

	again := Wrap(err, CodeInternalError, "ignored")
	if again.Code != CodeNodeUnreachable {
		t.Errorf("expected existing AppError to be kept, got %s", again.Code)
	}
}

func TestHasCode(t *testing.T) {
	if HasCode(nil, CodeNodeRPCError) {
		t.Error("nil error must not carry a code")
	}
	if !HasCode(New(CodeNodeRPCError), CodeNodeRPCError) {
		t.Error("expected code match")
	}
	if HasCode(errors.New("plain"), CodeNodeRPCError) {
		t.Error("plain error must not match")
	}
}
