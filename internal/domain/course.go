package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FallbackThumbnail is shown when a course has no usable thumbnail URL.
const FallbackThumbnail = "https://images.pexels.com/photos/1181675/pexels-photo-1181675.jpeg"

// ID is the server-assigned course identifier in canonical string form.
// The backend may send it as a JSON number or string; the zero value means "no id".
type ID string

func (id ID) Valid() bool { return id != "" }

func (id ID) String() string { return string(id) }

// MarshalJSON keeps integer ids as JSON numbers so they round-trip unchanged.
func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id *ID) UnmarshalJSON(b []byte) error {
	var v any
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return err
	}
	*id = idFromValue(v)
	return nil
}

// Course is the catalog listing as the backend returns it.
type Course struct {
	ID          ID      `json:"id"`
	Title       string  `json:"title"`
	Category    string  `json:"category"`
	Level       string  `json:"level"`
	Thumbnail   string  `json:"thumbnail"`
	Description string  `json:"description"`
	Duration    string  `json:"duration"`
	Price       float64 `json:"price"`
}

// UnmarshalJSON is lenient: the backend is not strict about field types, so
// numbers land in text fields as their decimal form and a numeric price may
// arrive as a string.
func (c *Course) UnmarshalJSON(b []byte) error {
	var m map[string]any
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&m); err != nil {
		return fmt.Errorf("domain: decode course: %w", err)
	}
	*c = CourseFromMap(m)
	return nil
}

// CourseFromMap maps a loosely typed JSON object into a Course.
func CourseFromMap(m map[string]any) Course {
	c := Course{
		ID:          idFromValue(m["id"]),
		Title:       getString(m, "title"),
		Category:    getString(m, "category"),
		Level:       getString(m, "level"),
		Thumbnail:   getString(m, "thumbnail"),
		Description: getString(m, "description"),
		Duration:    getString(m, "duration"),
	}
	switch t := m["price"].(type) {
	case json.Number:
		if f, err := t.Float64(); err == nil {
			c.Price = clampPrice(f)
		}
	case float64:
		c.Price = clampPrice(t)
	case string:
		c.Price = ParsePrice(t)
	}
	return c
}

// ThumbnailURL returns the thumbnail when it looks like an http(s) URL,
// and FallbackThumbnail otherwise.
func (c Course) ThumbnailURL() string {
	t := strings.TrimSpace(c.Thumbnail)
	if strings.HasPrefix(t, "http") {
		return t
	}
	return FallbackThumbnail
}

// CoursePayload is the body of create and update requests: every course field except id.
type CoursePayload struct {
	Title       string  `json:"title"`
	Category    string  `json:"category"`
	Level       string  `json:"level"`
	Thumbnail   string  `json:"thumbnail"`
	Description string  `json:"description"`
	Duration    string  `json:"duration"`
	Price       float64 `json:"price"`
}

// CourseForm holds raw user input for the create and edit forms.
type CourseForm struct {
	Title       string
	Category    string
	Level       string
	Thumbnail   string
	Description string
	Duration    string
	Price       string
}

// Payload converts the form into a request body. Price input that is not a
// number is coerced to 0, never rejected.
func (f CourseForm) Payload() CoursePayload {
	return CoursePayload{
		Title:       f.Title,
		Category:    f.Category,
		Level:       f.Level,
		Thumbnail:   f.Thumbnail,
		Description: f.Description,
		Duration:    f.Duration,
		Price:       ParsePrice(f.Price),
	}
}

// FormFromCourse pre-fills an edit form.
func FormFromCourse(c Course) CourseForm {
	return CourseForm{
		Title:       c.Title,
		Category:    c.Category,
		Level:       c.Level,
		Thumbnail:   c.Thumbnail,
		Description: c.Description,
		Duration:    c.Duration,
		Price:       strconv.FormatFloat(c.Price, 'f', -1, 64),
	}
}

// ParsePrice coerces form input into a price. Empty, non-numeric, NaN and
// infinite input give 0; negative amounts are clamped to 0.
func ParsePrice(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return clampPrice(f)
}

func clampPrice(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}

// FormatPrice renders a price the way the catalog shows it: "Gratis" for
// free courses, otherwise rupiah with dot thousands separators.
func FormatPrice(p float64) string {
	if p == 0 {
		return "Gratis"
	}
	// max 3 fraction digits, rounded before grouping so carries reach the whole part
	p = math.Round(p*1000) / 1000
	whole := math.Trunc(p)
	frac := p - whole

	digits := strconv.FormatFloat(whole, 'f', 0, 64)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if frac > 0 {
		// id-ID uses a comma as decimal separator
		fs := strconv.FormatFloat(frac, 'f', 3, 64)
		fs = strings.TrimRight(strings.TrimPrefix(fs, "0."), "0")
		if fs != "" {
			b.WriteByte(',')
			b.WriteString(fs)
		}
	}
	return "Rp " + b.String()
}

func idFromValue(v any) ID {
	switch t := v.(type) {
	case string:
		return ID(t)
	case json.Number:
		if f, err := t.Float64(); err == nil && f == 0 {
			return ""
		}
		return ID(t.String())
	case float64:
		if t == 0 {
			return ""
		}
		return ID(strconv.FormatFloat(t, 'f', -1, 64))
	}
	return ""
}

func getString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			switch t := v.(type) {
			case string:
				return t
			default:
				return fmt.Sprintf("%v", t)
			}
		}
	}
	return ""
}
