package controllers

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageParams(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		page, offset := pageParams(c, catalogPageSize)
		return c.JSON(fiber.Map{"page": page, "offset": offset})
	})

	cases := []struct {
		query      string
		wantPage   int
		wantOffset int
	}{
		{"", 1, 0},
		{"?page=1", 1, 0},
		{"?page=3", 3, 18},
		{"?page=0", 1, 0},
		{"?page=-2", 1, 0},
		{"?page=abc", 1, 0},
	}

	for _, tc := range cases {
		resp, err := app.Test(httptest.NewRequest("GET", "/"+tc.query, nil))
		require.NoError(t, err)

		var result map[string]int
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Equal(t, tc.wantPage, result["page"], tc.query)
		assert.Equal(t, tc.wantOffset, result["offset"], tc.query)
	}
}
