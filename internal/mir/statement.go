package mir

// StatementKind enumerates statement kinds.
type StatementKind uint8

const (
	// StatementAssign overwrites a place with a right-hand value.
	StatementAssign StatementKind = iota
	// StatementFakeRead marks a place as inspected without reading it at runtime.
	StatementFakeRead
	// StatementStorageLive opens the storage region of a local.
	StatementStorageLive
	// StatementStorageDead closes the storage region of a local.
	StatementStorageDead
	// StatementNop does nothing.
	StatementNop
)

// Statement is one non-terminator instruction of a basic block.
type Statement struct {
	Kind StatementKind

	Assign      AssignStatement
	FakeRead    FakeReadStatement
	StorageLive StorageStatement
	StorageDead StorageStatement
}

// AssignStatement represents `place = value`.
type AssignStatement struct {
	Place Place
	Value RValue
}

// FakeReadStatement represents an observation of a place for borrow purposes.
type FakeReadStatement struct {
	Place Place
}

// StorageStatement names the local whose storage region opens or closes.
type StorageStatement struct {
	Local LocalID
}
