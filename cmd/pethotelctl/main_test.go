package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalog = "../../catalog.yaml"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--catalog", testCatalog}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestQuoteVip(t *testing.T) {
	// 50 + 15*450 = 6800, +100 fee = 6900, -10% = 6210
	out, err := run(t, "quote", "vip", "--service", "taxi-vip", "--from", "Istanbul", "--to", "Ankara")
	require.NoError(t, err)
	assert.Contains(t, out, "distance:   450.0 km")
	assert.Contains(t, out, "discount:  -690.00")
	assert.Contains(t, out, "total:      6210.00")

	out, err = run(t, "quote", "vip", "--service", "taxi-vip", "--from", "Istanbul", "--to", "Ankara", "--round-trip")
	require.NoError(t, err)
	assert.Contains(t, out, "round trip: 13600.00")
	assert.Contains(t, out, "total:      12330.00")
}

func TestQuoteVip_UnmappedRoute(t *testing.T) {
	_, err := run(t, "quote", "vip", "--service", "taxi-vip", "--from", "Bursa", "--to", "Trabzon")
	require.Error(t, err)

	out, err := run(t, "quote", "vip", "--service", "taxi-vip", "--from", "Bursa", "--to", "Trabzon", "--fallback-km", "100")
	require.NoError(t, err)
	assert.Contains(t, out, "total:      1550.00")
}

func TestQuoteShared(t *testing.T) {
	out, err := run(t, "quote", "shared", "--schedule", "run-ist-ank-1", "--seats", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Istanbul -> Ankara")
	assert.Contains(t, out, "2 seat(s): 700.00")

	_, err = run(t, "quote", "shared", "--schedule", "run-ist-ank-1", "--seats", "9")
	assert.Error(t, err)
}

func TestQuoteHotel(t *testing.T) {
	out, err := run(t, "quote", "hotel", "--room", "room-standard-1", "--check-in", "2030-03-01", "--check-out", "2030-03-04")
	require.NoError(t, err)
	assert.Equal(t, "Cozy Corner, 3 night(s): 450.00\n", out)

	_, err = run(t, "quote", "hotel", "--room", "room-standard-1", "--check-in", "2030-03-04", "--check-out", "2030-03-01")
	assert.Error(t, err)
}

func TestCardCheck(t *testing.T) {
	out, err := run(t, "card", "check", "4532015112830366")
	require.NoError(t, err)
	assert.Equal(t, "card number: ok\n", out)

	_, err = run(t, "card", "check", "4532015112830367")
	assert.Error(t, err)

	out, err = run(t, "card", "check", "4532015112830366", "--expiry", "12/99", "--holder", "Ada Lovelace", "--cvv", "123")
	require.NoError(t, err)
	assert.Equal(t, "card ending 0366: ok\n", out)
}
