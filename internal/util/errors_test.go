package util_test

import (
	"errors"
	"fmt"
	"testing"

	"inhouse/internal/util"
)

func TestErrPublicIs(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", util.ErrPublic("boom"))
	if !errors.Is(err, util.ErrPublic("")) {
		t.Error("a wrapped ErrPublic should match the ErrPublic class")
	}

	if errors.Is(errors.New("boom"), util.ErrPublic("")) {
		t.Error("a plain error should not match ErrPublic")
	}
}

func TestConcatErrors(t *testing.T) {
	if err := util.ConcatErrors(nil); err != nil {
		t.Errorf("no errors should concat to nil, got %v", err)
	}

	sentinel := util.ErrPublic("first")
	err := util.ConcatErrors([]error{sentinel, errors.New("second")})
	if err == nil {
		t.Fatal("expected a combined error")
	}
	if !errors.Is(err, sentinel) {
		t.Error("the combined error should match its parts")
	}
}
