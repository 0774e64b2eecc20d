package mapper

import (
	"fmt"
	"strconv"
	"time"

	"github.com/3Eeeecho/memoryshare/internal/models"
)

// SpaceToMap 将 models.Space 展平为 Redis 哈希字段，时间统一用 RFC3339Nano
func SpaceToMap(space *models.Space) map[string]any {
	return map[string]any{
		"id":                 space.ID,
		"url_slug":           space.URLSlug,
		"user_id":            space.UserID,
		"first_name":         space.FirstName,
		"last_name":          space.LastName,
		"partner_first_name": space.PartnerFirstName,
		"partner_last_name":  space.PartnerLastName,
		"event_date":         formatTime(space.EventDate),
		"event_type":         space.EventType,
		"is_public":          strconv.FormatBool(space.IsPublic),
		"plan":               space.Plan,
		"created_at":         formatTime(space.CreatedAt),
		"updated_at":         formatTime(space.UpdatedAt),
	}
}

// MapToSpace 将 Redis 哈希还原为 models.Space，缺少 id 视为损坏的缓存
func MapToSpace(m map[string]string) (*models.Space, error) {
	if m["id"] == "" {
		return nil, fmt.Errorf("缓存中缺少 id 字段")
	}
	isPublic, err := strconv.ParseBool(m["is_public"])
	if err != nil {
		return nil, fmt.Errorf("解析 is_public 失败: %w", err)
	}
	eventDate, err := parseTime(m["event_date"])
	if err != nil {
		return nil, fmt.Errorf("解析 event_date 失败: %w", err)
	}
	createdAt, err := parseTime(m["created_at"])
	if err != nil {
		return nil, fmt.Errorf("解析 created_at 失败: %w", err)
	}
	updatedAt, err := parseTime(m["updated_at"])
	if err != nil {
		return nil, fmt.Errorf("解析 updated_at 失败: %w", err)
	}
	return &models.Space{
		ID:               m["id"],
		URLSlug:          m["url_slug"],
		UserID:           m["user_id"],
		FirstName:        m["first_name"],
		LastName:         m["last_name"],
		PartnerFirstName: m["partner_first_name"],
		PartnerLastName:  m["partner_last_name"],
		EventDate:        eventDate,
		EventType:        m["event_type"],
		IsPublic:         isPublic,
		Plan:             m["plan"],
		CreatedAt:        createdAt,
		UpdatedAt:        updatedAt,
	}, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
