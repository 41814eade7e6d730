package identity

// Kind names a canonical identifier field. The zero value is not a valid kind.
type Kind string

const (
	KindPhone Kind = "phone"
	KindEmail Kind = "email"
	KindCPF   Kind = "cpf"
	KindCNPJ  Kind = "cnpj"
)

// RawContact is the contact payload a channel adapter delivers, before any
// cleanup. Fields may be empty, formatted arbitrarily, or plain garbage.
type RawContact struct {
	Phone string `json:"phone"`
	Email string `json:"email"`
	CPF   string `json:"cpf"`
	CNPJ  string `json:"cnpj"`
}

// Identifiers is the canonical identifier set. A field is populated only
// when it passed normalization and validation: phone must be 10 or 11
// digits with an assigned DDD, cpf/cnpj must pass their checksums, email is
// carried through whenever present (lower-cased and trimmed, unvalidated).
type Identifiers struct {
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
	CPF   string `json:"cpf,omitempty"`
	CNPJ  string `json:"cnpj,omitempty"`
}

// Pair is one (kind, value) entry of a canonical identifier set.
type Pair struct {
	Kind  Kind
	Value string
}

// Normalize converts a raw contact payload into the canonical identifier
// set. It never fails; fields that cannot be canonicalized are left empty.
func Normalize(raw RawContact) Identifiers {
	var ids Identifiers

	if phone := NormalizePhone(raw.Phone); IsValidPhone(phone) {
		ids.Phone = phone
	}
	if email := NormalizeEmail(raw.Email); email != "" {
		ids.Email = email
	}
	if cpf := NormalizeCPF(raw.CPF); IsValidCPF(cpf) {
		ids.CPF = cpf
	}
	if cnpj := NormalizeCNPJ(raw.CNPJ); IsValidCNPJ(cnpj) {
		ids.CNPJ = cnpj
	}
	return ids
}

// Empty reports whether no identifier survived normalization.
func (ids Identifiers) Empty() bool {
	return ids.Phone == "" && ids.Email == "" && ids.CPF == "" && ids.CNPJ == ""
}

// Pairs returns the populated identifiers in matching priority order:
// phone first, then email, cpf, cnpj.
func (ids Identifiers) Pairs() []Pair {
	pairs := make([]Pair, 0, 4)
	if ids.Phone != "" {
		pairs = append(pairs, Pair{KindPhone, ids.Phone})
	}
	if ids.Email != "" {
		pairs = append(pairs, Pair{KindEmail, ids.Email})
	}
	if ids.CPF != "" {
		pairs = append(pairs, Pair{KindCPF, ids.CPF})
	}
	if ids.CNPJ != "" {
		pairs = append(pairs, Pair{KindCNPJ, ids.CNPJ})
	}
	return pairs
}
