// Package textsearch liste filtrelerinde isim araması için ortak
// SQL parçası üretir.
package textsearch

import "strings"

// SQLFilter verilen sütun için büyük/küçük harf duyarsız LIKE filtresi
// döndürür. Dönen parça gorm Where() çağrısına args ile verilir.
func SQLFilter(column string, term string) (string, []any) {
	pattern := "%" + strings.TrimSpace(term) + "%"
	return "LOWER(" + column + ") LIKE LOWER(?)", []any{pattern}
}
