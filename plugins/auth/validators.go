package auth

import "errors"

var (
	errInvalidBSN = errors.New("geçersiz BSN")
	errInvalidKvK = errors.New("geçersiz KvK numarası")
)

// validateBSN 9 haneli BSN'yi elfproef (11 testi) ile doğrular.
func validateBSN(value string) error {
	if len(value) != 9 {
		return errInvalidBSN
	}
	sum := 0
	for i, r := range value {
		if r < '0' || r > '9' {
			return errInvalidBSN
		}
		digit := int(r - '0')
		if i == 8 {
			sum -= digit
		} else {
			sum += digit * (9 - i)
		}
	}
	if sum%11 != 0 {
		return errInvalidBSN
	}
	return nil
}

// validateKvK 8 haneli KvK numarasını doğrular.
func validateKvK(value string) error {
	if len(value) != 8 {
		return errInvalidKvK
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return errInvalidKvK
		}
	}
	return nil
}
