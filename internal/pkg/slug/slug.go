// Package slug 负责空间访问地址 (url slug) 的规范化与候选生成
package slug

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// MaxSuffix 数字后缀最多尝试到 base20，之后改用时间戳
const MaxSuffix = 20

const maxLen = 100

var (
	ErrEmptySlug = errors.New("slug cannot be empty")

	nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)
	validSlug    = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// Slugify 规范化输入，输入规范化后为空时使用 fallback
func Slugify(input, fallback string) (string, error) {
	s := slugify(input)
	if s == "" {
		s = slugify(fallback)
	}
	if s == "" {
		return "", ErrEmptySlug
	}
	return s, nil
}

func slugify(s string) string {
	lower := strings.ToLower(strings.TrimSpace(s))
	out := nonSlugChars.ReplaceAllString(lower, "-")
	out = strings.Trim(out, "-")
	if len(out) > maxLen {
		out = strings.TrimRight(out[:maxLen], "-")
	}
	return out
}

// Valid 已经是规范形式的 slug
func Valid(s string) bool {
	return len(s) <= maxLen && validSlug.MatchString(s)
}

// FromNames 由双方名字首字母加活动年份生成默认 slug，例如 Ama + Kofi, 2025 -> ak2025
func FromNames(firstName, partnerFirstName string, eventDate time.Time) string {
	var b strings.Builder
	for _, name := range []string{firstName, partnerFirstName} {
		if r, ok := firstLetter(name); ok {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	if !eventDate.IsZero() {
		b.WriteString(strconv.Itoa(eventDate.Year()))
	}
	return slugify(b.String())
}

func firstLetter(s string) (rune, bool) {
	for _, r := range strings.TrimSpace(s) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return r, true
		}
		return 0, false
	}
	return 0, false
}

// Candidates 按尝试顺序返回候选：base, base1 ... base20, base<unix 秒>
func Candidates(base string, now time.Time) []string {
	out := make([]string, 0, MaxSuffix+2)
	out = append(out, base)
	for i := 1; i <= MaxSuffix; i++ {
		out = append(out, base+strconv.Itoa(i))
	}
	out = append(out, Timestamped(base, now))
	return out
}

// Timestamped 数字后缀用尽后的兜底候选
func Timestamped(base string, now time.Time) string {
	return base + strconv.FormatInt(now.Unix(), 10)
}
