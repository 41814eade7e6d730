package identity

// validDDDs is the set of assigned Brazilian area codes. Phone numbers
// whose first two digits fall outside this set are kept by the normalizer
// but rejected by IsValidPhone.
var validDDDs = map[string]struct{}{
	"11": {}, "12": {}, "13": {}, "14": {}, "15": {}, "16": {}, "17": {}, "18": {}, "19": {},
	"21": {}, "22": {}, "24": {}, "27": {}, "28": {},
	"31": {}, "32": {}, "33": {}, "34": {}, "35": {}, "37": {}, "38": {},
	"41": {}, "42": {}, "43": {}, "44": {}, "45": {}, "46": {}, "47": {}, "48": {}, "49": {},
	"51": {}, "53": {}, "54": {}, "55": {},
	"61": {}, "62": {}, "63": {}, "64": {}, "65": {}, "66": {}, "67": {}, "68": {}, "69": {},
	"71": {}, "73": {}, "74": {}, "75": {}, "77": {}, "79": {},
	"81": {}, "82": {}, "83": {}, "84": {}, "85": {}, "86": {}, "87": {}, "88": {}, "89": {},
	"91": {}, "92": {}, "93": {}, "94": {}, "95": {}, "96": {}, "97": {}, "98": {}, "99": {},
}

// IsValidDDD reports whether the two-digit area code is assigned.
func IsValidDDD(ddd string) bool {
	_, ok := validDDDs[ddd]
	return ok
}

// IsValidPhone reports whether a normalized phone number is usable as a
// matching key: 10 or 11 digits with an assigned area code.
func IsValidPhone(digits string) bool {
	if len(digits) != landlineDigits && len(digits) != mobileDigits {
		return false
	}
	return IsValidDDD(digits[:2])
}

// IsValidCPF verifies the two CPF check digits. Expects exactly 11 digits;
// anything else is invalid.
func IsValidCPF(cpf string) bool {
	if len(cpf) != cpfDigits || !allNumeric(cpf) {
		return false
	}
	if allSameDigit(cpf) {
		return false
	}

	// First check digit: digits 0..8 weighted 10 down to 2.
	sum := 0
	for i := 0; i < 9; i++ {
		sum += int(cpf[i]-'0') * (10 - i)
	}
	if checkDigit(sum) != int(cpf[9]-'0') {
		return false
	}

	// Second check digit: digits 0..9 weighted 11 down to 2.
	sum = 0
	for i := 0; i < 10; i++ {
		sum += int(cpf[i]-'0') * (11 - i)
	}
	return checkDigit(sum) == int(cpf[10]-'0')
}

// cnpjWeights is the cyclic weight sequence for the first CNPJ check digit;
// the second digit uses the same sequence shifted to start at 6.
var cnpjWeights = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}

// IsValidCNPJ verifies the two CNPJ check digits. Expects exactly 14 digits;
// anything else is invalid.
func IsValidCNPJ(cnpj string) bool {
	if len(cnpj) != cnpjDigits || !allNumeric(cnpj) {
		return false
	}
	if allSameDigit(cnpj) {
		return false
	}

	sum := 0
	for i := 0; i < 12; i++ {
		sum += int(cnpj[i]-'0') * cnpjWeights[i]
	}
	if checkDigit(sum) != int(cnpj[12]-'0') {
		return false
	}

	sum = int(cnpj[0]-'0') * 6
	for i := 1; i < 13; i++ {
		sum += int(cnpj[i]-'0') * cnpjWeights[i-1]
	}
	return checkDigit(sum) == int(cnpj[13]-'0')
}

// checkDigit applies the shared mod-11 rounding rule: remainders below 2
// become 0, everything else is the complement to 11.
func checkDigit(sum int) int {
	r := sum % 11
	if r < 2 {
		return 0
	}
	return 11 - r
}

func allSameDigit(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}

func allNumeric(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
