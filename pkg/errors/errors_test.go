package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "WithoutCause",
			err:  New(ErrCodeInvalidColumnCount, "column count must be positive, got %d", -1),
			want: "INVALID_COLUMN_COUNT: column count must be positive, got -1",
		},
		{
			name: "WithCause",
			err:  Wrap(ErrCodeInternal, stderrors.New("boom"), "partition failed"),
			want: "INTERNAL_ERROR: partition failed: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIs(t *testing.T) {
	err := New(ErrCodeInvalidItem, "bad item")
	if !Is(err, ErrCodeInvalidItem) {
		t.Error("Is() = false, want true for matching code")
	}
	if Is(err, ErrCodeNotFound) {
		t.Error("Is() = true, want false for non-matching code")
	}
	if Is(stderrors.New("plain"), ErrCodeInvalidItem) {
		t.Error("Is() = true, want false for plain error")
	}
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("root cause")
	err := Wrap(ErrCodeInternal, cause, "wrapped")
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is did not find wrapped cause")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeDegenerateHeight, "nan height")); got != ErrCodeDegenerateHeight {
		t.Errorf("GetCode() = %q, want %q", got, ErrCodeDegenerateHeight)
	}
	if got := GetCode(stderrors.New("plain")); got != "" {
		t.Errorf("GetCode() = %q, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeInvalidFeed, "feed is empty")
	if got := UserMessage(err); got != "feed is empty" {
		t.Errorf("UserMessage() = %q", got)
	}
	if got := UserMessage(stderrors.New("plain")); got != "plain" {
		t.Errorf("UserMessage() = %q", got)
	}
}

func TestValidateItemID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"Valid", "photo-123", false},
		{"ValidUUID", "0f8fad5b-d9cb-469f-a165-70867728950e", false},
		{"Empty", "", true},
		{"TooLong", strings.Repeat("a", 257), true},
		{"ControlChar", "photo\x01", true},
		{"PathTraversal", "../etc/passwd", true},
		{"Slash", "a/b", true},
		{"Backslash", `a\b`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateItemID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateItemID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidItem) {
				t.Errorf("error code = %q, want INVALID_ITEM", GetCode(err))
			}
		})
	}
}

func TestValidateColumnCount(t *testing.T) {
	tests := []struct {
		k       int
		wantErr bool
	}{
		{1, false},
		{5, false},
		{64, false},
		{0, true},
		{-3, true},
		{65, true},
	}

	for _, tt := range tests {
		err := ValidateColumnCount(tt.k)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateColumnCount(%d) error = %v, wantErr %v", tt.k, err, tt.wantErr)
		}
	}
}
