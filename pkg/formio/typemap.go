// Package formio form bileşeni tanımlarını (component descriptor) native Go
// tiplerine dönüştürür. Bileşen kataloğu dışarıdan genişletilebilir olduğu
// için bilinmeyen tipler hata yerine olduğu gibi geçirilir.
package formio

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Component ham bileşen tanımı. En azından "type" alanı, opsiyonel olarak
// "multiple" bayrağı ve "appointments" alt konfigürasyonu içerir.
type Component = map[string]any

// converter tek bir değeri bileşen tipine göre dönüştürür.
// Dönüştürülemeyen girdi hata üretmez, ham değer geri döner.
type converter func(component Component, value any) any

// typeMap init sırasında kurulan kapalı dispatch tablosu.
var typeMap map[string]converter

func init() {
	typeMap = map[string]converter{
		"textfield":    toString,
		"textarea":     toString,
		"iban":         toString,
		"phoneNumber":  toString,
		"bsn":          toString,
		"postcode":     toString,
		"email":        toString,
		"password":     toString,
		"licenseplate": toString,
		"radio":        toString,
		"signature":    toString, // data-URI string, olduğu gibi
		"number":       passthrough,
		"file":         passthrough, // ek (attachment) tanım listesi
		"map":          passthrough, // (lng, lat) koordinat listesi
		"currency":     toDecimal,
		"date":         toDate,
		"time":         toTimeOfDay,
		"checkbox":     toBool,
		"select":       toSelect,
		"selectboxes":  toSelectBoxes,
	}
}

// ToNative ham gönderi değerini bileşen tanımına göre native tipe çevirir.
// multiple=true ise dönüştürücü her elemana ayrı uygulanır; boş eleman
// (nil veya "") hata yerine nil olur. Randevu (appointments) bileşenleri
// yapısal payload taşıdığı için tip dönüşümünü atlar.
func ToNative(component Component, value any) any {
	if appt := appointmentConfig(component); appt != nil {
		switch {
		case truthy(appt["showDates"]):
			return applyConverter(component, value, toDate)
		case truthy(appt["showTimes"]):
			return applyConverter(component, value, toDateTime)
		default:
			// showProducts, showLocations veya kısmi konfigürasyon:
			// payload yapısal bir nesnedir, dokunulmaz.
			return value
		}
	}

	componentType, _ := component["type"].(string)
	conv, ok := typeMap[componentType]
	if !ok {
		// Katalog dışı bileşen tipi: değer olduğu gibi geçer.
		return value
	}
	return applyConverter(component, value, conv)
}

func applyConverter(component Component, value any, conv converter) any {
	multiple, _ := component["multiple"].(bool)
	if !multiple {
		if value == nil {
			return nil
		}
		return conv(component, value)
	}

	items, ok := value.([]any)
	if !ok {
		if value == nil {
			return nil
		}
		return conv(component, value)
	}
	result := make([]any, len(items))
	for i, item := range items {
		if isEmptySentinel(item) {
			result[i] = nil
			continue
		}
		result[i] = conv(component, item)
	}
	return result
}

func isEmptySentinel(value any) bool {
	if value == nil {
		return true
	}
	s, ok := value.(string)
	return ok && s == ""
}

// appointmentConfig dolu bir appointments alt konfigürasyonu varsa döndürür.
func appointmentConfig(component Component) map[string]any {
	appt, ok := component["appointments"].(map[string]any)
	if !ok || len(appt) == 0 {
		return nil
	}
	return appt
}

func truthy(value any) bool {
	b, ok := value.(bool)
	return ok && b
}

// --- Dönüştürücüler ---

func toString(_ Component, value any) any {
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

func passthrough(_ Component, value any) any {
	return value
}

func toDecimal(_ Component, value any) any {
	d, err := decimal.NewFromString(fmt.Sprint(value))
	if err != nil {
		return value
	}
	return d
}

func toDate(_ Component, value any) any {
	s, ok := value.(string)
	if !ok || s == "" {
		return value
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		}
	}
	return value
}

func toTimeOfDay(_ Component, value any) any {
	s, ok := value.(string)
	if !ok || s == "" {
		return value
	}
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return time.Date(0, time.January, 1, t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
	}
	return value
}

func toDateTime(_ Component, value any) any {
	s, ok := value.(string)
	if !ok || s == "" {
		return value
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return value
}

func toBool(_ Component, value any) any {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return value
}

// toSelect yapısal (map) değer taşıyan select bileşenlerini olduğu gibi
// geçirir, aksi halde string'e çevirir.
func toSelect(component Component, value any) any {
	if _, ok := value.(map[string]any); ok {
		return value
	}
	return toString(component, value)
}

// toSelectBoxes işaretli seçeneklerin key listesini üretir.
// JSON map sırası korunamadığı için liste deterministik olsun diye sıralanır.
func toSelectBoxes(_ Component, value any) any {
	checked, ok := value.(map[string]any)
	if !ok {
		return value
	}
	var keys []string
	for key, val := range checked {
		if truthy(val) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}
