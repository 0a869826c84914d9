package models

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResponse(t *testing.T) {
	response := NewResponse(http.StatusOK, "payload", "OK")

	assert.Equal(t, http.StatusOK, response.Code)
	assert.Equal(t, "payload", response.Data)
	assert.Equal(t, "OK", response.Text)
	assert.Equal(t, 2, response.Version)
	assert.NotZero(t, response.CurrentTime)
}

func TestNewEntryResponseWrapsData(t *testing.T) {
	response := NewEntryResponse(map[string]int{"value": 7})

	b, err := json.Marshal(response)
	require.NoError(t, err)

	var decoded struct {
		Data struct {
			Entry map[string]int `json:"entry"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, 7, decoded.Data.Entry["value"])
}

func TestNewListResponseWrapsData(t *testing.T) {
	response := NewListResponse([]string{"a", "b"}, true)

	b, err := json.Marshal(response)
	require.NoError(t, err)

	var decoded struct {
		Data struct {
			List          []string `json:"list"`
			LimitExceeded bool     `json:"limitExceeded"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, []string{"a", "b"}, decoded.Data.List)
	assert.True(t, decoded.Data.LimitExceeded)
}
