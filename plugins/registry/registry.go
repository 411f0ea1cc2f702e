// Package registry string identifier ile plugin instance'larını eşleyen
// generic kayıt defterini sağlar. Her plugin alanı (auth, payment,
// registration) kendi registry instance'ını kullanır.
//
// Registry process açılışında bir kez doldurulur (plugins.NewDefaultSet)
// ve sonrasında salt-okunur kabul edilir; lookup'lar için kilit gerekmez.
package registry

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateRegistration aynı identifier ile ikinci kayıt denemesi.
	ErrDuplicateRegistration = errors.New("plugin identifier zaten kayıtlı")
	// ErrPluginNotFound bilinmeyen identifier ile lookup.
	ErrPluginNotFound = errors.New("plugin bulunamadı")
)

// Plugin tüm plugin alanlarının ortak sözleşmesi.
type Plugin interface {
	Identifier() string
	VerboseName() string
	IsDemoPlugin() bool
}

// Choice UI listelerinde (örn. form tasarım ekranındaki seçim kutusu)
// gösterilecek (identifier, isim) ikilisi.
type Choice struct {
	Identifier  string
	VerboseName string
}

// Registry identifier -> plugin eşlemesi. Lookup O(1), iterasyon kayıt
// sırasına göre deterministiktir.
type Registry[P Plugin] struct {
	plugins map[string]P
	order   []string
}

// New boş bir registry oluşturur.
func New[P Plugin]() *Registry[P] {
	return &Registry[P]{plugins: make(map[string]P)}
}

// Register plugin'i verilen identifier altında kaydeder.
func (r *Registry[P]) Register(identifier string, plugin P) error {
	if identifier == "" {
		return fmt.Errorf("boş plugin identifier kaydedilemez")
	}
	if _, exists := r.plugins[identifier]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateRegistration, identifier)
	}
	r.plugins[identifier] = plugin
	r.order = append(r.order, identifier)
	return nil
}

// MustRegister açılış sırasında kullanılan, hata durumunda panic'leyen kayıt.
func (r *Registry[P]) MustRegister(identifier string, plugin P) {
	if err := r.Register(identifier, plugin); err != nil {
		panic(err)
	}
}

// Get identifier ile plugin'i döndürür.
func (r *Registry[P]) Get(identifier string) (P, error) {
	plugin, ok := r.plugins[identifier]
	if !ok {
		var zero P
		return zero, fmt.Errorf("%w: %q", ErrPluginNotFound, identifier)
	}
	return plugin, nil
}

// All plugin'leri kayıt sırasına göre döndürür.
func (r *Registry[P]) All() []P {
	result := make([]P, 0, len(r.order))
	for _, identifier := range r.order {
		result = append(result, r.plugins[identifier])
	}
	return result
}

// Choices UI seçim listesi için (identifier, isim) ikililerini üretir.
func (r *Registry[P]) Choices() []Choice {
	choices := make([]Choice, 0, len(r.order))
	for _, plugin := range r.All() {
		choices = append(choices, Choice{
			Identifier:  plugin.Identifier(),
			VerboseName: plugin.VerboseName(),
		})
	}
	return choices
}
