package identity

import "testing"

func TestNormalizeContactAllFields(t *testing.T) {
	ids := Normalize(RawContact{
		Phone: "+55 (11) 98765-4321",
		Email: "  Ana@Example.COM ",
		CPF:   "111.444.777-35",
		CNPJ:  "11.222.333/0001-81",
	})

	if ids.Phone != "11987654321" {
		t.Errorf("Phone = %q, want 11987654321", ids.Phone)
	}
	if ids.Email != "ana@example.com" {
		t.Errorf("Email = %q, want ana@example.com", ids.Email)
	}
	if ids.CPF != "11144477735" {
		t.Errorf("CPF = %q, want 11144477735", ids.CPF)
	}
	if ids.CNPJ != "11222333000181" {
		t.Errorf("CNPJ = %q, want 11222333000181", ids.CNPJ)
	}
}

func TestNormalizeContactDashedCPF(t *testing.T) {
	ids := Normalize(RawContact{CPF: "111-444-777-35"})
	if ids.CPF != "11144477735" {
		t.Errorf("CPF = %q, want 11144477735", ids.CPF)
	}
}

func TestNormalizeContactDropsInvalidFields(t *testing.T) {
	ids := Normalize(RawContact{
		Phone: "20 98765-4321", // unassigned DDD
		CPF:   "12345678900",   // checksum fails
		CNPJ:  "00000000000000",
	})

	if ids.Phone != "" {
		t.Errorf("Phone = %q, want empty (invalid DDD)", ids.Phone)
	}
	if ids.CPF != "" {
		t.Errorf("CPF = %q, want empty (checksum)", ids.CPF)
	}
	if ids.CNPJ != "" {
		t.Errorf("CNPJ = %q, want empty (repeated digits)", ids.CNPJ)
	}
	if !ids.Empty() {
		t.Error("expected Empty() for all-invalid contact")
	}
}

func TestNormalizeContactEmailAlwaysCarried(t *testing.T) {
	ids := Normalize(RawContact{Email: "whatever"})
	if ids.Email != "whatever" {
		t.Errorf("Email = %q, want passthrough with no validation", ids.Email)
	}
	if ids.Empty() {
		t.Error("contact with email should not be empty")
	}
}

func TestPairsPriorityOrder(t *testing.T) {
	ids := Identifiers{
		Phone: "11987654321",
		Email: "ana@example.com",
		CPF:   "11144477735",
		CNPJ:  "11222333000181",
	}

	pairs := ids.Pairs()
	wantKinds := []Kind{KindPhone, KindEmail, KindCPF, KindCNPJ}
	if len(pairs) != len(wantKinds) {
		t.Fatalf("len(pairs) = %d, want %d", len(pairs), len(wantKinds))
	}
	for i, k := range wantKinds {
		if pairs[i].Kind != k {
			t.Errorf("pairs[%d].Kind = %q, want %q", i, pairs[i].Kind, k)
		}
	}
}

func TestPairsSkipsEmptyFields(t *testing.T) {
	ids := Identifiers{Email: "ana@example.com", CNPJ: "11222333000181"}
	pairs := ids.Pairs()
	if len(pairs) != 2 {
		t.Fatalf("len(pairs) = %d, want 2", len(pairs))
	}
	if pairs[0].Kind != KindEmail || pairs[1].Kind != KindCNPJ {
		t.Errorf("pairs = %+v, want email then cnpj", pairs)
	}
}
