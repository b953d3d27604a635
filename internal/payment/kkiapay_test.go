package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyTransaction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/transactions/status", r.URL.Path)
		assert.Equal(t, "sk_test_123", r.Header.Get("x-private-key"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "TX-1", body["transactionId"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"transactionId": "TX-1",
			"status":        "SUCCESS",
			"amount":        4000,
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "sk_test_123")
	resp, err := client.VerifyTransaction(context.Background(), "TX-1")
	require.NoError(t, err)
	assert.Equal(t, "SUCCESS", resp.Status)
	assert.Equal(t, 4000.0, resp.Amount)
}

func TestVerifyTransactionNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "bad-key")
	_, err := client.VerifyTransaction(context.Background(), "TX-1")
	assert.Error(t, err)
}
