package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"new", New(ErrCodeRangeTooLarge, "range spans %d blocks", 101), "RANGE_TOO_LARGE: range spans 101 blocks"},
		{"wrap", Wrap(ErrCodeNetwork, errors.New("connection refused"), "fetch %d..%d", 1, 2), "NETWORK_ERROR: fetch 1..2: connection refused"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("panel: %w", Wrap(ErrCodeNetwork, cause, "fetch"))

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause through both wraps")
	}
	if !Is(err, ErrCodeNetwork) || GetCode(err) != ErrCodeNetwork {
		t.Errorf("code lost through fmt wrapping: %v", GetCode(err))
	}
	if got := UserMessage(err); got != "fetch" {
		t.Errorf("UserMessage() = %q, want %q", got, "fetch")
	}
}

func TestCodeLookup(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code Code
		msg  string
	}{
		{"coded", New(ErrCodeEmptyResult, "no points in 5..9"), ErrCodeEmptyResult, "no points in 5..9"},
		{"outermost code wins", Wrap(ErrCodeNetwork, New(ErrCodeInvalidInput, "inner"), "outer"), ErrCodeNetwork, "outer"},
		{"plain", errors.New("plain"), "", "plain"},
		{"nil", nil, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.code {
				t.Errorf("GetCode() = %q, want %q", got, tt.code)
			}
			if tt.code != "" && !Is(tt.err, tt.code) {
				t.Errorf("Is(%q) = false", tt.code)
			}
			if Is(tt.err, ErrCodeSuperseded) {
				t.Error("Is matched an unrelated code")
			}
			if tt.err != nil {
				if got := UserMessage(tt.err); got != tt.msg {
					t.Errorf("UserMessage() = %q, want %q", got, tt.msg)
				}
			}
		})
	}
}

func TestClassification(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantInput bool
		wantFetch bool
		wantEmpty bool
	}{
		{"range too large", New(ErrCodeRangeTooLarge, "101 blocks"), true, false, false},
		{"invalid range", New(ErrCodeInvalidRange, "reversed"), true, false, false},
		{"network", Wrap(ErrCodeNetwork, errors.New("refused"), "fetch"), false, true, false},
		{"status", New(ErrCodeHTTPStatus, "502"), false, true, false},
		{"malformed", New(ErrCodeMalformedPayload, "not a list"), false, true, false},
		{"empty", New(ErrCodeEmptyResult, "no points"), false, false, true},
		{"plain", errors.New("plain"), false, false, false},
		{"nil", nil, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsInputValidation(tt.err); got != tt.wantInput {
				t.Errorf("IsInputValidation() = %v, want %v", got, tt.wantInput)
			}
			if got := IsFetch(tt.err); got != tt.wantFetch {
				t.Errorf("IsFetch() = %v, want %v", got, tt.wantFetch)
			}
			if got := IsEmptyResult(tt.err); got != tt.wantEmpty {
				t.Errorf("IsEmptyResult() = %v, want %v", got, tt.wantEmpty)
			}
		})
	}
}

func TestStatusError(t *testing.T) {
	err := &StatusError{StatusCode: 503, URL: "http://provider/points"}
	expected := "unexpected status 503 from http://provider/points"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
	if err.Code() != ErrCodeHTTPStatus {
		t.Errorf("Code() = %v, want %v", err.Code(), ErrCodeHTTPStatus)
	}
}
