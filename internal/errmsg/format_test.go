package errmsg

import (
	"testing"

	"github.com/cockroachdb/errors"
)

func TestFormat(t *testing.T) {
	got := Format(OpSeek, errors.New("not seekable"))
	want := "failed to seek: not seekable"
	if got != want {
		t.Errorf("Format = %q, want %q", got, want)
	}
}

func TestFormatNilError(t *testing.T) {
	if got := Format(OpPlay, nil); got != "" {
		t.Errorf("Format(nil) = %q, want empty", got)
	}
}
