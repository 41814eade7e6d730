package conversation

import "testing"

func TestParseMode(t *testing.T) {
	tests := []struct {
		raw     string
		want    Mode
		wantErr bool
	}{
		{"ai", ModeAI, false},
		{"human", ModeHuman, false},
		{"", "", true},
		{"bot", "", true},
		{"AI", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestModeValid(t *testing.T) {
	if !ModeAI.Valid() || !ModeHuman.Valid() {
		t.Error("ai and human must both be valid modes")
	}
	if Mode("hybrid").Valid() {
		t.Error("unknown mode must be invalid")
	}
}

func TestMetadataEmpty(t *testing.T) {
	if !(Metadata{}).Empty() {
		t.Error("zero metadata should be empty")
	}
	if (Metadata{ProductImage: "https://cdn.example.com/p.png"}).Empty() {
		t.Error("metadata with product image is not empty")
	}
	if (Metadata{Extra: map[string]string{"sku": "A1"}}).Empty() {
		t.Error("metadata with extra keys is not empty")
	}
}
