package errors

import (
	"fmt"
	"testing"
)

func TestErrorIs(t *testing.T) {
	cases := map[string]struct {
		kind      *Error
		err       error
		wantMatch bool
	}{
		"instance of the same root": {
			kind:      ErrNotFound,
			err:       ErrNotFound,
			wantMatch: true,
		},
		"wrapped instance of the same root": {
			kind:      ErrNotFound,
			err:       Wrap(ErrNotFound, "gone"),
			wantMatch: true,
		},
		"deeply wrapped instance": {
			kind:      ErrNotFound,
			err:       Wrap(Wrap(ErrNotFound, "gone"), "outer"),
			wantMatch: true,
		},
		"different root": {
			kind:      ErrNotFound,
			err:       ErrUnauthorized,
			wantMatch: false,
		},
		"wrapped different root": {
			kind:      ErrNotFound,
			err:       Wrap(ErrUnauthorized, "nope"),
			wantMatch: false,
		},
		"stdlib error": {
			kind:      ErrNotFound,
			err:       fmt.Errorf("stdlib"),
			wantMatch: false,
		},
		"nil kind matches nil error": {
			kind:      nil,
			err:       nil,
			wantMatch: true,
		},
		"non-nil error against nil kind": {
			kind:      nil,
			err:       ErrNotFound,
			wantMatch: false,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if got := tc.kind.Is(tc.err); got != tc.wantMatch {
				t.Fatalf("unexpected match result: %v", got)
			}
		})
	}
}

func TestWrapNil(t *testing.T) {
	if err := Wrap(nil, "description"); err != nil {
		t.Fatalf("wrapping nil must return nil, got %+v", err)
	}
	if err := Wrapf(nil, "description %d", 42); err != nil {
		t.Fatalf("wrapping nil must return nil, got %+v", err)
	}
}

func TestWrapPreservesMessage(t *testing.T) {
	err := Wrap(ErrAmount, "negative deposit")
	const want = "negative deposit: invalid amount"
	if got := err.Error(); got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
}

func TestRegisterDuplicatedCodePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("panic expected")
		}
	}()
	// Code 2 is already taken by ErrUnauthorized.
	Register(2, "conflicting")
}

func TestRecover(t *testing.T) {
	var err error
	func() {
		defer Recover(&err)
		panic("boom")
	}()
	if !ErrPanic.Is(err) {
		t.Fatalf("want a panic error, got %+v", err)
	}
}

func TestNewAttachesStackTrace(t *testing.T) {
	err := ErrState.New("terminal request")
	if stackTrace(err) == nil {
		t.Fatal("want a stack trace attached")
	}
	// Wrapping again must not attach a second trace, the original
	// (deepest) one is the valuable one.
	outer := Wrap(err, "outer")
	if stackTrace(outer) == nil {
		t.Fatal("stack trace lost during wrapping")
	}
}
