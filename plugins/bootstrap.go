// Package plugins plugin registry'lerini kurar. Kayıtlar import yan
// etkisiyle değil, process açılışında bu paket üzerinden açıkça yapılır;
// dönen Set sonrasında salt-okunur kabul edilir.
package plugins

import (
	"gorm.io/gorm"

	"formulier.link/plugins/auth"
	"formulier.link/plugins/payment"
	"formulier.link/plugins/registration"
	"formulier.link/plugins/registry"
)

// Set alan başına bir registry: authentication, payment, registration.
type Set struct {
	Auth         *registry.Registry[auth.Plugin]
	Payment      *registry.Registry[payment.Plugin]
	Registration *registry.Registry[registration.Plugin]
}

// NewDefaultSet varsayılan plugin'lerle dolu registry seti kurar.
// main.go açılışta bir kez çağırır; testler kendi setlerini kurar.
func NewDefaultSet(db *gorm.DB, mailer registration.Mailer) *Set {
	set := &Set{
		Auth:         auth.NewRegistry(),
		Payment:      payment.NewRegistry(),
		Registration: registration.NewRegistry(),
	}

	demoBSN := auth.NewDemoBSN()
	set.Auth.MustRegister(demoBSN.Identifier(), demoBSN)
	demoKvK := auth.NewDemoKvK()
	set.Auth.MustRegister(demoKvK.Identifier(), demoKvK)

	demoPayment := payment.NewDemo(db)
	set.Payment.MustRegister(demoPayment.Identifier(), demoPayment)

	email := registration.NewEmail(mailer)
	set.Registration.MustRegister(email.Identifier(), email)

	return set
}
