package domain

import (
	"encoding/json"
	"testing"
)

func TestParsePrice(t *testing.T) {
	testCases := []struct {
		input    string
		expected float64
	}{
		{"abc", 0},
		{"150000", 150000},
		{"", 0},
		{"   ", 0},
		{" 2500 ", 2500},
		{"99.5", 99.5},
		{"NaN", 0},
		{"Inf", 0},
		{"-100", 0},
		{"12abc", 0},
	}

	for _, tc := range testCases {
		result := ParsePrice(tc.input)
		if result != tc.expected {
			t.Errorf("ParsePrice(%q) = %v, want %v", tc.input, result, tc.expected)
		}
	}
}

func TestCourseFormPayload(t *testing.T) {
	form := CourseForm{
		Title:       "Belajar Go",
		Category:    "Backend",
		Level:       "Pemula",
		Thumbnail:   "https://example.com/go.png",
		Description: "Dasar-dasar Go",
		Duration:    "10 jam",
		Price:       "free-text",
	}

	p := form.Payload()
	if p.Title != "Belajar Go" {
		t.Errorf("Expected Title to be 'Belajar Go', got '%s'", p.Title)
	}
	if p.Duration != "10 jam" {
		t.Errorf("Expected Duration to be '10 jam', got '%s'", p.Duration)
	}
	if p.Price != 0 {
		t.Errorf("Expected Price to be coerced to 0, got %v", p.Price)
	}

	b, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, ok := m["id"]; ok {
		t.Error("Expected payload to carry no id")
	}
}

func TestCourseUnmarshalLenient(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		wantID    ID
		wantPrice float64
		wantDur   string
	}{
		{"numeric id", `{"id":1,"title":"A","price":150000,"duration":"5 jam"}`, "1", 150000, "5 jam"},
		{"string id", `{"id":"abc","price":"2500"}`, "abc", 2500, ""},
		{"missing id", `{"title":"B"}`, "", 0, ""},
		{"null id", `{"id":null}`, "", 0, ""},
		{"zero id", `{"id":0}`, "", 0, ""},
		{"string zero id", `{"id":"0"}`, "0", 0, ""},
		{"numeric duration", `{"id":3,"duration":12}`, "3", 0, "12"},
		{"negative price", `{"id":4,"price":-5}`, "4", 0, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var c Course
			if err := json.Unmarshal([]byte(tc.input), &c); err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if c.ID != tc.wantID {
				t.Errorf("Expected ID %q, got %q", tc.wantID, c.ID)
			}
			if c.Price != tc.wantPrice {
				t.Errorf("Expected Price %v, got %v", tc.wantPrice, c.Price)
			}
			if c.Duration != tc.wantDur {
				t.Errorf("Expected Duration %q, got %q", tc.wantDur, c.Duration)
			}
		})
	}
}

func TestCourseUnmarshalRejectsNonObject(t *testing.T) {
	var c Course
	if err := json.Unmarshal([]byte(`"nope"`), &c); err == nil {
		t.Error("Expected error for non-object course")
	}
}

func TestIDMarshalJSON(t *testing.T) {
	testCases := []struct {
		id       ID
		expected string
	}{
		{"9", `9`},
		{"abc", `"abc"`},
		{"", `null`},
	}

	for _, tc := range testCases {
		b, err := json.Marshal(tc.id)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if string(b) != tc.expected {
			t.Errorf("Marshal(%q) = %s, want %s", tc.id, b, tc.expected)
		}
	}
}

func TestFormatPrice(t *testing.T) {
	testCases := []struct {
		input    float64
		expected string
	}{
		{0, "Gratis"},
		{500, "Rp 500"},
		{150000, "Rp 150.000"},
		{1250000, "Rp 1.250.000"},
		{1.5, "Rp 1,5"},
		{1.25, "Rp 1,25"},
		{1.9999, "Rp 2"},
		{999.9996, "Rp 1.000"},
		{0.0004, "Rp 0"},
		{1e19, "Rp 10.000.000.000.000.000.000"},
	}

	for _, tc := range testCases {
		result := FormatPrice(tc.input)
		if result != tc.expected {
			t.Errorf("FormatPrice(%v) = %q, want %q", tc.input, result, tc.expected)
		}
	}
}

func TestThumbnailURL(t *testing.T) {
	c := Course{Thumbnail: "  https://example.com/a.png "}
	if c.ThumbnailURL() != "https://example.com/a.png" {
		t.Errorf("Expected trimmed thumbnail, got %q", c.ThumbnailURL())
	}

	c.Thumbnail = "a.png"
	if c.ThumbnailURL() != FallbackThumbnail {
		t.Errorf("Expected fallback thumbnail, got %q", c.ThumbnailURL())
	}
}

func TestFormFromCourse(t *testing.T) {
	c := Course{ID: "7", Title: "X", Price: 150000}
	f := FormFromCourse(c)
	if f.Price != "150000" {
		t.Errorf("Expected Price '150000', got %q", f.Price)
	}
	if f.Payload().Price != 150000 {
		t.Errorf("Expected round-trip price 150000, got %v", f.Payload().Price)
	}
}
