package formio

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// multipleSeparator çoklu değerlerin görüntülenirken birleştirildiği ayraç.
const multipleSeparator = "; "

// FormatValue dönüştürülmüş değeri e-posta/rapor çıktıları için okunur
// metne çevirir. Önce ToNative uygulanır, sonra native tip formatlanır.
func FormatValue(component Component, value any) string {
	native := ToNative(component, value)
	if items, ok := native.([]any); ok {
		parts := make([]string, 0, len(items))
		for _, item := range items {
			if item == nil {
				continue
			}
			parts = append(parts, formatSingle(item))
		}
		return strings.Join(parts, multipleSeparator)
	}
	if keys, ok := native.([]string); ok {
		return strings.Join(keys, multipleSeparator)
	}
	if native == nil {
		return ""
	}
	return formatSingle(native)
}

func formatSingle(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		if v {
			return "Evet"
		}
		return "Hayır"
	case decimal.Decimal:
		return v.StringFixed(2)
	case time.Time:
		// Yıl 0 ise sadece saat bileşeni taşıyan bir değerdir.
		if v.Year() == 0 {
			return v.Format("15:04")
		}
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 {
			return v.Format("02-01-2006")
		}
		return v.Format("15:04:05 02-01-2006")
	default:
		return fmt.Sprint(v)
	}
}
