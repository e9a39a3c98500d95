package domain

// Operator is the single account allowed to mutate inventory.
type Operator struct {
	Username string
	Hash     string
}

// Open reports whether no password has been configured.
func (o Operator) Open() bool { return o.Hash == "" }
