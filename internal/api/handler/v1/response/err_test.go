package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/songcontest/songcontest-api/internal/domain"
)

func TestFromError(t *testing.T) {
	partial := domain.NewPartialBatchError("persist scores", 3, map[uint]error{7: errors.New("timeout")})

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unauthenticated", domain.ErrUnauthenticated, http.StatusUnauthorized},
		{"not host", fmt.Errorf("%w: not host", domain.ErrUnauthorized), http.StatusForbidden},
		{"not found", fmt.Errorf("%w: edition 3", domain.ErrNotFound), http.StatusNotFound},
		{"conflict", fmt.Errorf("%w: duplicate", domain.ErrConflict), http.StatusConflict},
		{"conflict over integrity", fmt.Errorf("%w: %w: capacity", domain.ErrConflict, domain.ErrIntegrity), http.StatusConflict},
		{"integrity", fmt.Errorf("%w: bad row", domain.ErrIntegrity), http.StatusUnprocessableEntity},
		{"invalid input", fmt.Errorf("%w: empty title", domain.ErrInvalidInput), http.StatusBadRequest},
		{"partial batch", fmt.Errorf("s.persistScores -> %w", partial), http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromError(tt.err).HTTPStatusCode)
		})
	}

	assert.Equal(t, []uint{7}, FromError(partial).FailedIDs)
}

func TestRenderErr(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(requestid.New())
	router.GET("/boom", func(ctx *gin.Context) {
		RenderErr(ctx, ErrInternalServerError(errors.New("db password leaked")))
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body Err
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal server error", body.ErrorText)
	assert.NotEmpty(t, body.RequestID)
	assert.NotContains(t, rec.Body.String(), "leaked")
}
