// Package validation содержит функции валидации входных данных.
package validation

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinPasswordLength минимальная длина пароля в символах.
const MinPasswordLength = 6

// OrderIDPrefix префикс идентификаторов заказов.
const OrderIDPrefix = "ORD"

// IsValidEmail выполняет базовую проверку адреса: наличие '@' и '.'.
func IsValidEmail(email string) bool {
	return strings.Contains(email, "@") && strings.Contains(email, ".")
}

// IsValidPassword проверяет минимальную длину пароля.
func IsValidPassword(password string) bool {
	return utf8.RuneCountInString(password) >= MinPasswordLength
}

// IsValidUserID проверяет, что идентификатор непустой и не содержит пробельных символов.
func IsValidUserID(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		if unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// ParseOrderSequence извлекает числовую часть идентификатора заказа вида ORD001.
func ParseOrderSequence(id string) (int, bool) {
	digits, ok := strings.CutPrefix(id, OrderIDPrefix)
	if !ok || digits == "" {
		return 0, false
	}
	for _, ch := range digits {
		if !unicode.IsDigit(ch) {
			return 0, false
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}
