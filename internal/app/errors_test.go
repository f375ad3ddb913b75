package app

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joacominatel/studiodb/internal/database"
)

func TestErrors_MessagesAndUnwrap(t *testing.T) {
	engine := errors.New(`near "SELEC": syntax error`)

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"connection with path", &ErrConnection{Path: "/sites/blog/.ht.sqlite", Cause: database.ErrNotFound}, "open database /sites/blog/.ht.sqlite: " + database.ErrNotFound.Error()},
		{"connection without path", &ErrConnection{Cause: database.ErrNotFound}, "open database: " + database.ErrNotFound.Error()},
		{"statement", &ErrQuery{Query: "SELEC 1", Cause: engine}, `statement failed: near "SELEC": syntax error`},
		{"config with op", &ErrConfig{Op: "load", Cause: engine}, `configuration: load: near "SELEC": syntax error`},
		{"config without op", &ErrConfig{Cause: engine}, `configuration: near "SELEC": syntax error`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			assert.NotNil(t, errors.Unwrap(tt.err))
		})
	}
}
