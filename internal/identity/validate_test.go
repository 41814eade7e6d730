package identity

import "testing"

func TestIsValidCPF(t *testing.T) {
	tests := []struct {
		name string
		cpf  string
		want bool
	}{
		{"known valid", "11144477735", true},
		{"repeated digits rejected", "11111111111", false},
		{"all zeros rejected", "00000000000", false},
		{"first check digit wrong", "11144477745", false},
		{"second check digit wrong", "11144477736", false},
		{"checksum fails", "12345678900", false},
		{"too short", "1114447773", false},
		{"too long", "111444777351", false},
		{"non numeric", "1114447773a", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidCPF(tt.cpf); got != tt.want {
				t.Errorf("IsValidCPF(%q) = %v, want %v", tt.cpf, got, tt.want)
			}
		})
	}
}

func TestIsValidCNPJ(t *testing.T) {
	tests := []struct {
		name string
		cnpj string
		want bool
	}{
		{"known valid", "11222333000181", true},
		{"all zeros rejected", "00000000000000", false},
		{"repeated digits rejected", "11111111111111", false},
		{"first check digit wrong", "11222333000191", false},
		{"second check digit wrong", "11222333000182", false},
		{"too short", "1122233300018", false},
		{"non numeric", "11222333.00018", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidCNPJ(tt.cnpj); got != tt.want {
				t.Errorf("IsValidCNPJ(%q) = %v, want %v", tt.cnpj, got, tt.want)
			}
		})
	}
}

func TestIsValidDDD(t *testing.T) {
	valid := []string{"11", "21", "31", "47", "51", "61", "71", "85", "99"}
	for _, ddd := range valid {
		if !IsValidDDD(ddd) {
			t.Errorf("IsValidDDD(%q) = false, want true", ddd)
		}
	}

	invalid := []string{"00", "10", "20", "23", "25", "26", "29", "30", "36", "39", "40", "50", "52", "56", "57", "58", "59", "60", "70", "72", "76", "78", "80", "90", ""}
	for _, ddd := range invalid {
		if IsValidDDD(ddd) {
			t.Errorf("IsValidDDD(%q) = true, want false", ddd)
		}
	}
}

func TestIsValidPhone(t *testing.T) {
	tests := []struct {
		name   string
		digits string
		want   bool
	}{
		{"valid mobile", "11987654321", true},
		{"valid landline", "2133334444", true},
		{"unassigned ddd", "20987654321", false},
		{"nine digits", "198765432", false},
		{"twelve digits", "119876543210", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidPhone(tt.digits); got != tt.want {
				t.Errorf("IsValidPhone(%q) = %v, want %v", tt.digits, got, tt.want)
			}
		})
	}
}
