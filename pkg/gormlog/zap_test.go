package gormlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShortCaller(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/home/ci/src/internal/platform/db/db.go:38", "internal/platform/db/db.go:38"},
		{"/go/pkg/mod/gorm.io/gorm@v1.31.1/callbacks.go:12", "pkg/mod/gorm.io/gorm@v1.31.1/callbacks.go:12"},
		{"/a/b/c/d.go:1", "b/c/d.go:1"},
		{"d.go:7", "d.go:7"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, shortCaller(tc.in))
		})
	}
}
