package usecase

import "testing"

func TestNormalizePrice(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		want  float64
		found bool
	}{
		{name: "plain number", raw: "89.99", want: 89.99, found: true},
		{name: "currency symbol", raw: "$89.99", want: 89.99, found: true},
		{name: "trailing currency code", raw: "$1299.00 USD", want: 1299, found: true},
		{name: "comma splits the run", raw: "$1,299.00", want: 1, found: true},
		{name: "integer", raw: "45", want: 45, found: true},
		{name: "embedded in text", raw: "Now only 19.95 while stocks last", want: 19.95, found: true},
		{name: "multiple dots keep prefix", raw: "1.2.3", want: 1.2, found: true},
		{name: "trailing dot", raw: "19.", want: 19, found: true},
		{name: "dots only", raw: "...", found: false},
		{name: "no digits", raw: "call for price", found: false},
		{name: "empty", raw: "", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := NormalizePrice(tt.raw)
			if found != tt.found {
				t.Fatalf("NormalizePrice(%q) found = %v, want %v", tt.raw, found, tt.found)
			}
			if found && got != tt.want {
				t.Errorf("NormalizePrice(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizePriceValue(t *testing.T) {
	t.Run("numeric input", func(t *testing.T) {
		got, found := NormalizePriceValue(89.99)
		if !found || got != 89.99 {
			t.Errorf("NormalizePriceValue(89.99) = %v, %v; want 89.99, true", got, found)
		}
	})

	t.Run("string input", func(t *testing.T) {
		got, found := NormalizePriceValue("€45.50")
		if !found || got != 45.50 {
			t.Errorf("NormalizePriceValue(€45.50) = %v, %v; want 45.5, true", got, found)
		}
	})

	t.Run("nil input", func(t *testing.T) {
		if _, found := NormalizePriceValue(nil); found {
			t.Error("NormalizePriceValue(nil) found = true, want false")
		}
	})
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "plain text untouched", raw: "Blue Denim Jacket", want: "Blue Denim Jacket"},
		{name: "tags removed", raw: "<b>Blue</b> Denim <span>Jacket</span>", want: "Blue Denim Jacket"},
		{name: "entities decoded", raw: "Tom &amp; Jerry", want: "Tom & Jerry"},
		{name: "whitespace trimmed", raw: "  <p> padded </p>  ", want: "padded"},
		{name: "empty", raw: "", want: ""},
		{name: "whitespace only", raw: "   \n\t", want: ""},
		{name: "markup only", raw: "<div><img src='x.png'/></div>", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripHTML(tt.raw); got != tt.want {
				t.Errorf("StripHTML(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
