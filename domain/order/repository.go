package order

import "storefront/domain/shared"

// Repository is the key the order repository is registered under.
// Resolve it with shared.RepositoryFor(uow, order.Repository).
var Repository = shared.NewRepositoryKey[*Order]("orders")
