package middleware

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/vortex07x/steamsurf/internal/model"
)

// Input limits.
const (
	MaxSearchLen = 200
	MaxTags      = 20
	MaxTagLen    = 50
)

// ErrorResponse is a helper that returns a standard API error response.
func ErrorResponse(c fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

// ValidateUUID checks that an id path parameter is a UUID and returns it in
// canonical lower-case form.
func ValidateUUID(id, field string) (string, string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", field + " is required"
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", field + " must be a valid UUID"
	}
	return parsed.String(), ""
}

// ParsePositiveInt parses an optional positive integer query value.
func ParsePositiveInt(raw string, fallback int, field string) (int, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, ""
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, field + " must be a positive integer"
	}
	return n, ""
}

// ValidateSort checks sortBy and order against the whitelist.
func ValidateSort(sortBy, order string) (model.SortKey, string, string) {
	key := model.SortKey(strings.TrimSpace(sortBy))
	if key == "" {
		key = model.SortCreatedAt
	}
	if _, ok := model.DefaultOrder[key]; !ok {
		return "", "", "sortBy must be one of createdAt, views, likes, title, duration"
	}

	order = strings.ToUpper(strings.TrimSpace(order))
	switch order {
	case "":
		order = model.DefaultOrder[key]
	case "ASC", "DESC":
	default:
		return "", "", "order must be asc or desc"
	}
	return key, order, ""
}

// ValidateCategory accepts an empty value or "all" (no filter) and any known category.
func ValidateCategory(raw string) (model.Category, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "all") {
		return "", ""
	}
	c := model.Category(raw)
	if !model.ValidCategories[c] {
		return "", "Invalid category"
	}
	return c, ""
}

// ValidateSearch trims a search term and enforces its length.
func ValidateSearch(raw string) (string, string) {
	raw = strings.TrimSpace(raw)
	if len(raw) > MaxSearchLen {
		return "", "search must be at most 200 characters"
	}
	return raw, ""
}

// ParseTagList splits a comma-separated tag list.
func ParseTagList(raw string) ([]string, string) {
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return checkTags(tags)
}

// ParseTagsField reads an upload form's tags value, which may be a JSON
// array or a comma-separated list.
func ParseTagsField(raw string) ([]string, string) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "[") {
		var tags []string
		if err := json.Unmarshal([]byte(raw), &tags); err != nil {
			return nil, "tags must be a JSON array of strings"
		}
		return checkTags(tags)
	}
	return ParseTagList(raw)
}

func checkTags(tags []string) ([]string, string) {
	if len(tags) > MaxTags {
		return nil, "at most 20 tags are allowed"
	}
	for _, t := range tags {
		if len(strings.TrimSpace(t)) > MaxTagLen {
			return nil, "tags must be at most 50 characters"
		}
	}
	return tags, ""
}
