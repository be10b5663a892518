package auth

import (
	"github.com/goliatone/go-persistence-bun"
)

// RegisterModels registers every model with the persistence layer so
// host applications can run the embedded migrations and fixtures
// pipeline against them.
func RegisterModels() {
	persistence.RegisterModel((*User)(nil))
	persistence.RegisterModel((*Organization)(nil))
	persistence.RegisterModel((*Membership)(nil))
	persistence.RegisterModel((*Session)(nil))
	persistence.RegisterModel((*PasswordReset)(nil))
}
