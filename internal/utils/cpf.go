package utils

import "strings"

// cpfLength is the number of digits in a canonical CPF
const cpfLength = 11

// UnmaskCPF returns only the digit characters of the input, in order.
// It never fails; input without digits yields an empty string.
func UnmaskCPF(input string) string {
	return digitsOnly(input)
}

func digitsOnly(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	for i := 0; i < len(input); i++ {
		if input[i] >= '0' && input[i] <= '9' {
			b.WriteByte(input[i])
		}
	}
	return b.String()
}

// FormatCPF renders the digits of the input in the 000.000.000-00 mask.
// Extra digits beyond 11 are dropped and partial input gets a partial mask,
// so it can be applied on every keystroke.
func FormatCPF(input string) string {
	digits := UnmaskCPF(input)
	if len(digits) > cpfLength {
		digits = digits[:cpfLength]
	}

	switch n := len(digits); {
	case n <= 3:
		return digits
	case n <= 6:
		return digits[:3] + "." + digits[3:]
	case n <= 9:
		return digits[:3] + "." + digits[3:6] + "." + digits[6:]
	default:
		return digits[:3] + "." + digits[3:6] + "." + digits[6:9] + "-" + digits[9:]
	}
}

// ValidateCPF validates a CPF number.
// The input is unmasked first; it must have 11 digits, not all identical,
// and both check digits must match.
func ValidateCPF(cpf string) bool {
	cpf = UnmaskCPF(cpf)
	if len(cpf) != cpfLength {
		return false
	}

	allSame := true
	for i := 1; i < len(cpf); i++ {
		if cpf[i] != cpf[0] {
			allSame = false
			break
		}
	}
	if allSame {
		return false
	}

	return cpfCheckDigit(cpf[:9]) == int(cpf[9]-'0') &&
		cpfCheckDigit(cpf[:10]) == int(cpf[10]-'0')
}

// cpfCheckDigit computes the check digit that follows the given digits.
// Weights descend from len(digits)+1 down to 2.
func cpfCheckDigit(digits string) int {
	sum := 0
	weight := len(digits) + 1
	for i := 0; i < len(digits); i++ {
		sum += int(digits[i]-'0') * (weight - i)
	}
	remainder := (sum * 10) % 11
	if remainder == 10 {
		return 0
	}
	return remainder
}
