package repository

import "errors"

// ErrDNIDuplicado reports that a create collided with the unique natural key,
// typically because a concurrent writer inserted the same DNI between lookup
// and insert.
var ErrDNIDuplicado = errors.New("dni ya registrado")
