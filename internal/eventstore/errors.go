package eventstore

import (
	"git.home.luguber.info/inful/docagent/internal/foundation/errors"
)

// Journal failures. Each is returned with the underlying cause attached.
var (
	ErrOpen    = errors.EventStoreError("could not open generation journal").Build()
	ErrSchema  = errors.EventStoreError("could not create generation journal tables").Build()
	ErrAppend  = errors.EventStoreError("could not append to generation journal").Build()
	ErrQuery   = errors.EventStoreError("could not read generation journal").Build()
	ErrDecode  = errors.EventStoreError("could not decode generation journal row").Build()
	ErrPayload = errors.EventStoreError("could not encode journal payload").Build()
)
